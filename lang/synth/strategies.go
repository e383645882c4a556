// Glfuzz
// Copyright (C) James Shubin and the project contributors
// Written by James Shubin <james@shubin.ca> and the project contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package synth

import (
	"fmt"

	"github.com/purpleidea/glfuzz/lang/ast"
	"github.com/purpleidea/glfuzz/lang/facts"
	"github.com/purpleidea/glfuzz/lang/types"
	"github.com/purpleidea/glfuzz/util/errwrap"
)

// The names of the strategies, as used in logs and metrics.
const (
	StrategyLiteral       = "literal"
	StrategyFreshVariable = "fresh_variable"
	StrategyKnownVariable = "known_variable"
	StrategyFreshFunction = "fresh_function"
	StrategyKnownFunction = "known_function"
	StrategyAdditive      = "additive"
	StrategyLoop          = "loop"
)

// strategyFunc builds an expression for the value, or declines by returning a
// nil expression and a nil error. An error is fatal to the whole call.
type strategyFunc func(scope *facts.Scope, point Point, value types.Value) (ast.Expr, error)

type strategy struct {
	name string
	fn   strategyFunc
}

// literal embeds the value directly.
func (obj *Generator) literal(scope *facts.Scope, point Point, value types.Value) (ast.Expr, error) {
	return obj.Literal.Literal(value.Type(), value)
}

// knownVariable references a variable that is known to hold the value.
func (obj *Generator) knownVariable(scope *facts.Scope, point Point, value types.Value) (ast.Expr, error) {
	candidates := scope.LookupVariable(value)
	if len(candidates) == 0 {
		return nil, nil
	}
	fact := candidates[obj.Rand.Intn(len(candidates))]
	return &ast.Ident{Name: fact.Name}, nil
}

// knownFunction calls a function that is known to return the value when it is
// passed its recorded arguments.
func (obj *Generator) knownFunction(scope *facts.Scope, point Point, value types.Value) (ast.Expr, error) {
	candidates := scope.LookupFunction(value)
	if len(candidates) == 0 {
		return nil, nil
	}
	fact := candidates[obj.Rand.Intn(len(candidates))]
	args, err := obj.args(scope, point, fact.Args)
	if err != nil {
		return nil, err
	}
	obj.addCall(point.Function, fact.Name)
	return &ast.Call{Name: fact.Name, Args: args}, nil
}

// freshVariable declares a new variable initialized to the value. It is
// global if the scope is, or on a coin flip.
func (obj *Generator) freshVariable(scope *facts.Scope, point Point, value types.Value) (ast.Expr, error) {
	global := scope.IsGlobal() || obj.Rand.Bool()
	target := scope
	if global {
		target = scope.Global()
	}
	name := obj.varName(value, global)

	init, err := obj.synthesize(target, point, value)
	if err != nil {
		return nil, err
	}
	decl := &ast.VarDecl{
		Type: value.Type(),
		Name: name,
		Init: init,
	}
	if global {
		if err := obj.Program.InsertBefore(point.Function, decl); err != nil {
			return nil, err
		}
	} else if err := obj.insert(point, &ast.DeclStmt{Decl: decl}); err != nil {
		return nil, err
	}
	target.AddVariableFact(&facts.VariableFact{
		Value: value,
		Name:  name,
		Decl:  decl,
	})
	return &ast.Ident{Name: name}, nil
}

// freshFunction declares a new function that returns the value, and calls it.
// The parameters get random types and random values, and the body only sees
// the parameters and the globals.
func (obj *Generator) freshFunction(scope *facts.Scope, point Point, value types.Value) (ast.Expr, error) {
	name := obj.functionName(value)
	fnScope := obj.Global.NewFunctionScope()

	params := []*ast.Param{}
	args := []types.Value{}
	n := obj.Rand.Intn(obj.Config.MaxFunctionParams)
	for i := 0; i < n; i++ {
		typ := obj.paramTypes[obj.Rand.Intn(len(obj.paramTypes))]
		v, err := types.Fuzz(obj.Rand, typ)
		if err != nil {
			return nil, errwrap.Wrapf(err, "can't fuzz a %s param", typ)
		}
		param := &ast.Param{
			Type: typ,
			Name: obj.paramName(typ, v.IsUnknown()),
		}
		params = append(params, param)
		args = append(args, v)
		fnScope.AddVariableFact(facts.NewParameterFact(param, v))
	}

	fn := ast.NewFunction(name, value.Type(), params...)
	if err := obj.Program.InsertBefore(point.Function, fn); err != nil {
		return nil, err
	}
	obj.callGraph.AddVertex(obj.vertex(name))
	if obj.Metrics != nil {
		obj.Metrics.IncFunctionsTotal()
	}

	// the return statement is the insertion point of the body
	ret := &ast.ReturnStmt{}
	fn.Body.Append(ret)
	expr, err := obj.synthesize(fnScope, Point{Function: fn, Stmt: ret}, value)
	if err != nil {
		return nil, err
	}
	ret.X = expr

	obj.Global.AddFunctionFact(&facts.FunctionFact{
		Value: value,
		Name:  name,
		Proto: fn.Proto,
		Args:  args,
	})

	exprs, err := obj.args(scope, point, args)
	if err != nil {
		return nil, err
	}
	obj.addCall(point.Function, name)
	return &ast.Call{Name: name, Args: exprs}, nil
}

// additive splits a number into two numbers that add up to it.
func (obj *Generator) additive(scope *facts.Scope, point Point, value types.Value) (ast.Expr, error) {
	kind := value.Type().Kind
	if kind != types.KindInt && kind != types.KindFloat {
		return nil, nil
	}
	left, right := obj.pairSum(value)
	x, err := obj.synthesize(scope, point, left)
	if err != nil {
		return nil, err
	}
	y, err := obj.synthesize(scope, point, right)
	if err != nil {
		return nil, err
	}
	return &ast.Paren{X: &ast.Binary{Op: ast.OpAdd, X: x, Y: y}}, nil
}

// loop accumulates a known positive int in a counted loop. It needs to insert
// statements, so it declines in the global scope.
func (obj *Generator) loop(scope *facts.Scope, point Point, value types.Value) (ast.Expr, error) {
	x, ok := value.(*types.IntValue)
	if !ok || x.Unknown || x.V < 1 || scope.IsGlobal() {
		return nil, nil
	}
	original := int(x.V)

	name := obj.varName(value, false)
	counter := obj.loopCounterName()
	up := obj.Rand.Bool()
	divisor, iterations, remainder := obj.loopSplit(original)

	init, err := obj.synthesize(scope, point, types.NewInt(0))
	if err != nil {
		return nil, err
	}
	if err := obj.insert(point, &ast.DeclStmt{Decl: &ast.VarDecl{
		Type: types.TypeInt,
		Name: name,
		Init: init,
	}}); err != nil {
		return nil, err
	}

	// count up over [0, iterations) or down over [iterations, 1]
	start, end := 0, iterations
	cmp, step := ast.OpLt, ast.OpInc
	if !up {
		start, end = iterations, 1
		cmp, step = ast.OpGe, ast.OpDec
	}
	startExpr, err := obj.synthesize(scope, point, types.NewInt(int32(start)))
	if err != nil {
		return nil, err
	}
	endExpr, err := obj.synthesize(scope, point, types.NewInt(int32(end)))
	if err != nil {
		return nil, err
	}
	divisorExpr, err := obj.synthesize(scope, point, types.NewInt(int32(divisor)))
	if err != nil {
		return nil, err
	}
	forStmt := &ast.ForStmt{
		Init: &ast.DeclStmt{Decl: &ast.VarDecl{
			Type: types.TypeInt,
			Name: counter,
			Init: startExpr,
		}},
		Cond: &ast.Binary{Op: cmp, X: &ast.Ident{Name: counter}, Y: endExpr},
		Incr: &ast.Unary{Op: step, X: &ast.Ident{Name: counter}, Postfix: true},
		Body: &ast.Block{Stmts: []ast.Stmt{
			&ast.ExprStmt{X: &ast.Binary{
				Op: ast.OpAddAssign,
				X:  &ast.Ident{Name: name},
				Y:  divisorExpr,
			}},
		}},
	}
	if err := obj.insert(point, forStmt); err != nil {
		return nil, err
	}

	if remainder > 0 {
		remainderExpr, err := obj.synthesize(scope, point, types.NewInt(int32(remainder)))
		if err != nil {
			return nil, err
		}
		if err := obj.insert(point, &ast.ExprStmt{X: &ast.Binary{
			Op: ast.OpAddAssign,
			X:  &ast.Ident{Name: name},
			Y:  remainderExpr,
		}}); err != nil {
			return nil, err
		}
	}

	return &ast.Ident{Name: name}, nil
}

// args synthesizes one argument expression per value.
func (obj *Generator) args(scope *facts.Scope, point Point, values []types.Value) ([]ast.Expr, error) {
	exprs := []ast.Expr{}
	for i, v := range values {
		expr, err := obj.synthesize(scope, point, v)
		if err != nil {
			return nil, errwrap.Wrapf(err, "arg %d", i)
		}
		exprs = append(exprs, expr)
	}
	return exprs, nil
}

// insert adds a statement right before the statement of the point. The point
// is looked up again each time since earlier insertions move it.
func (obj *Generator) insert(point Point, stmt ast.Stmt) error {
	body := point.Function.Body
	index := body.IndexOf(point.Stmt)
	if index < 0 {
		return fmt.Errorf("lost the insertion point in `%s`", point.Function.Name())
	}
	body.InsertBefore(index, stmt)
	return nil
}

// pairSum splits a number into two numbers of the same type that add up to
// it, following a = a/b + (a - a/b). Unknown numbers split into two unknowns.
func (obj *Generator) pairSum(value types.Value) (types.Value, types.Value) {
	switch x := value.(type) {
	case *types.IntValue:
		if x.Unknown {
			return &types.IntValue{Unknown: true}, &types.IntValue{Unknown: true}
		}
		b := int32(max(1, obj.Rand.Intn(obj.Config.AdditiveDivisor)))
		left := x.V / b // truncates toward zero
		return types.NewInt(left), types.NewInt(x.V - left)

	case *types.FloatValue:
		if x.Unknown {
			return &types.FloatValue{Unknown: true}, &types.FloatValue{Unknown: true}
		}
		b := float32(max(1, obj.Rand.Intn(obj.Config.AdditiveDivisor)))
		left := x.V / b
		return types.NewFloat(left), types.NewFloat(x.V - left)
	}
	panic("pair sum of a " + value.Type().String()) // guarded by the caller
}

// loopSplit picks the divisor of a loop accumulation so that
// divisor * iterations + remainder == original with divisor >= 1.
func (obj *Generator) loopSplit(original int) (divisor, iterations, remainder int) {
	divisor = max(1, obj.Rand.Intn(original))
	return divisor, original / divisor, original % divisor
}
