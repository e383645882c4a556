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

// Package interpret contains a reference evaluator for the program tree. It is
// used to check that synthesized code computes the values it was built for.
package interpret

import (
	"fmt"

	"github.com/purpleidea/glfuzz/lang/ast"
	"github.com/purpleidea/glfuzz/lang/types"
	"github.com/purpleidea/glfuzz/util"
	"github.com/purpleidea/glfuzz/util/errwrap"
)

const (
	// ErrTooManySteps is returned when a run exceeds its step budget.
	ErrTooManySteps = util.Error("too many steps")

	// DefaultMaxSteps is the step budget used when none is given.
	DefaultMaxSteps = 10000000
)

// Interpreter runs a translation unit. It follows GLSL semantics for the
// subset of the language that the synthesizer emits: int and uint arithmetic
// wraps at 32 bits and float arithmetic is done in single precision. Create a
// new one for each run.
type Interpreter struct {
	Program *ast.TranslationUnit

	// MaxSteps bounds the number of statements and loop iterations that
	// can run. If zero, DefaultMaxSteps is used.
	MaxSteps int

	// Debug represents if we're running in debug mode or not.
	Debug bool

	// Logf is a logger which should be used.
	Logf func(format string, v ...interface{})

	globals *env
	steps   int
}

// env is a lexical environment. Function bodies chain to the globals only.
type env struct {
	vars   map[string]types.Value
	parent *env
}

func newEnv(parent *env) *env {
	return &env{
		vars:   make(map[string]types.Value),
		parent: parent,
	}
}

func (obj *env) lookup(name string) (*env, bool) {
	for e := obj; e != nil; e = e.parent {
		if _, exists := e.vars[name]; exists {
			return e, true
		}
	}
	return nil, false
}

// Init evaluates the global variables in declaration order. It is called by
// Run if needed.
func (obj *Interpreter) Init() error {
	if obj.Program == nil {
		return fmt.Errorf("the Program is nil")
	}
	if obj.Logf == nil {
		obj.Logf = func(format string, v ...interface{}) {} // noop
	}
	if obj.MaxSteps == 0 {
		obj.MaxSteps = DefaultMaxSteps
	}
	obj.steps = 0
	obj.globals = newEnv(nil)
	for _, decl := range obj.Program.Globals() {
		if err := obj.declare(obj.globals, decl); err != nil {
			return errwrap.Wrapf(err, "global `%s`", decl.Name)
		}
	}
	return nil
}

// Run initializes the globals, runs main and returns the final value of every
// global variable.
func (obj *Interpreter) Run() (map[string]types.Value, error) {
	if err := obj.Init(); err != nil {
		return nil, err
	}
	if obj.Program.Main() == nil {
		return nil, fmt.Errorf("no %s function", ast.MainFunction)
	}
	if _, err := obj.Call(ast.MainFunction); err != nil {
		return nil, err
	}
	if obj.Debug {
		obj.Logf("ran %d steps", obj.steps)
	}
	result := make(map[string]types.Value)
	for k, v := range obj.globals.vars {
		result[k] = v
	}
	return result, nil
}

// Call runs the named function with the arguments. Init must have run. It
// returns nil for a void function.
func (obj *Interpreter) Call(name string, args ...types.Value) (types.Value, error) {
	if obj.globals == nil {
		return nil, fmt.Errorf("not initialized")
	}
	fn := obj.Program.Function(name)
	if fn == nil {
		return nil, fmt.Errorf("function `%s` not found", name)
	}
	params := fn.Proto.Params
	if len(args) != len(params) {
		return nil, fmt.Errorf("function `%s` takes %d args, got %d", name, len(params), len(args))
	}
	e := newEnv(obj.globals)
	for i, p := range params {
		if err := p.Type.Cmp(args[i].Type()); err != nil {
			return nil, errwrap.Wrapf(err, "arg %d of `%s`", i, name)
		}
		e.vars[p.Name] = args[i]
	}
	ret, returned, err := obj.block(e, fn.Body)
	if err != nil {
		return nil, errwrap.Wrapf(err, "in `%s`", name)
	}
	if fn.Proto.ReturnType == nil {
		return nil, nil
	}
	if !returned || ret == nil {
		return nil, fmt.Errorf("function `%s` did not return a value", name)
	}
	if err := fn.Proto.ReturnType.Cmp(ret.Type()); err != nil {
		return nil, errwrap.Wrapf(err, "function `%s` returned a %s", name, ret.Type())
	}
	return ret, nil
}

// Eval evaluates a single expression in the global environment.
func (obj *Interpreter) Eval(expr ast.Expr) (types.Value, error) {
	if obj.globals == nil {
		return nil, fmt.Errorf("not initialized")
	}
	return obj.eval(obj.globals, expr)
}

func (obj *Interpreter) step() error {
	obj.steps++
	if obj.steps > obj.MaxSteps {
		return ErrTooManySteps
	}
	return nil
}

func (obj *Interpreter) declare(e *env, decl *ast.VarDecl) error {
	if _, exists := e.vars[decl.Name]; exists {
		return fmt.Errorf("variable `%s` redeclared", decl.Name)
	}
	if decl.Init == nil {
		v, err := Zero(decl.Type)
		if err != nil {
			return err
		}
		e.vars[decl.Name] = v
		return nil
	}
	v, err := obj.eval(e, decl.Init)
	if err != nil {
		return err
	}
	if err := decl.Type.Cmp(v.Type()); err != nil {
		return errwrap.Wrapf(err, "can't initialize `%s` with a %s", decl.Name, v.Type())
	}
	e.vars[decl.Name] = v
	return nil
}

// block runs the statements in a new environment. It returns the returned
// value, and true if a return statement ran.
func (obj *Interpreter) block(parent *env, block *ast.Block) (types.Value, bool, error) {
	e := newEnv(parent)
	for _, x := range block.Stmts {
		ret, returned, err := obj.exec(e, x)
		if err != nil || returned {
			return ret, returned, err
		}
	}
	return nil, false, nil
}

func (obj *Interpreter) exec(e *env, stmt ast.Stmt) (types.Value, bool, error) {
	if err := obj.step(); err != nil {
		return nil, false, err
	}
	switch x := stmt.(type) {
	case *ast.DeclStmt:
		return nil, false, obj.declare(e, x.Decl)

	case *ast.ExprStmt:
		if x.X == nil {
			return nil, false, nil
		}
		_, err := obj.eval(e, x.X)
		return nil, false, err

	case *ast.ReturnStmt:
		if x.X == nil {
			return nil, true, nil
		}
		v, err := obj.eval(e, x.X)
		return v, true, err

	case *ast.Block:
		return obj.block(e, x)

	case *ast.ForStmt:
		loop := newEnv(e)
		if x.Init != nil {
			if _, _, err := obj.exec(loop, x.Init); err != nil {
				return nil, false, err
			}
		}
		for {
			if err := obj.step(); err != nil {
				return nil, false, err
			}
			if x.Cond != nil {
				c, err := obj.eval(loop, x.Cond)
				if err != nil {
					return nil, false, err
				}
				b, ok := c.(*types.BoolValue)
				if !ok {
					return nil, false, fmt.Errorf("loop condition is a %s", c.Type())
				}
				if !b.V {
					return nil, false, nil
				}
			}
			ret, returned, err := obj.block(loop, x.Body)
			if err != nil || returned {
				return ret, returned, err
			}
			if x.Incr != nil {
				if _, err := obj.eval(loop, x.Incr); err != nil {
					return nil, false, err
				}
			}
		}
	}

	return nil, false, fmt.Errorf("unexpected statement %T", stmt)
}

func (obj *Interpreter) eval(e *env, expr ast.Expr) (types.Value, error) {
	switch x := expr.(type) {
	case *ast.IntLit:
		return types.NewInt(int32(x.V)), nil // wraps

	case *ast.UintLit:
		return types.NewUint(x.V), nil

	case *ast.FloatLit:
		return types.NewFloat(x.V), nil

	case *ast.BoolLit:
		return types.NewBool(x.V), nil

	case *ast.Ident:
		scope, exists := e.lookup(x.Name)
		if !exists {
			return nil, fmt.Errorf("variable `%s` not found", x.Name)
		}
		return scope.vars[x.Name], nil

	case *ast.Paren:
		return obj.eval(e, x.X)

	case *ast.Call:
		args := []types.Value{}
		for _, a := range x.Args {
			v, err := obj.eval(e, a)
			if err != nil {
				return nil, err
			}
			args = append(args, v)
		}
		return obj.Call(x.Name, args...)

	case *ast.Constructor:
		elems := []types.Value{}
		for _, a := range x.Args {
			v, err := obj.eval(e, a)
			if err != nil {
				return nil, err
			}
			elems = append(elems, v)
		}
		return types.NewComposite(x.Type, elems...)

	case *ast.Unary:
		return obj.unary(e, x)

	case *ast.Binary:
		return obj.binary(e, x)
	}

	return nil, fmt.Errorf("unexpected expression %T", expr)
}

func (obj *Interpreter) assign(e *env, target ast.Expr, v types.Value) error {
	ident, ok := target.(*ast.Ident)
	if !ok {
		return fmt.Errorf("can't assign to %T", target)
	}
	scope, exists := e.lookup(ident.Name)
	if !exists {
		return fmt.Errorf("variable `%s` not found", ident.Name)
	}
	if err := scope.vars[ident.Name].Type().Cmp(v.Type()); err != nil {
		return errwrap.Wrapf(err, "can't assign a %s to `%s`", v.Type(), ident.Name)
	}
	scope.vars[ident.Name] = v
	return nil
}

func (obj *Interpreter) unary(e *env, x *ast.Unary) (types.Value, error) {
	v, err := obj.eval(e, x.X)
	if err != nil {
		return nil, err
	}
	switch x.Op {
	case ast.OpNeg:
		return Neg(v)

	case ast.OpInc, ast.OpDec:
		one, err := oneOf(v.Type())
		if err != nil {
			return nil, err
		}
		if x.Op == ast.OpDec {
			if one, err = Neg(one); err != nil {
				return nil, err
			}
		}
		next, err := Add(v, one)
		if err != nil {
			return nil, err
		}
		if err := obj.assign(e, x.X, next); err != nil {
			return nil, err
		}
		if x.Postfix {
			return v, nil
		}
		return next, nil
	}
	return nil, fmt.Errorf("unknown unary operator `%s`", x.Op)
}

func (obj *Interpreter) binary(e *env, x *ast.Binary) (types.Value, error) {
	if x.Op == ast.OpAssign {
		v, err := obj.eval(e, x.Y)
		if err != nil {
			return nil, err
		}
		return v, obj.assign(e, x.X, v)
	}

	a, err := obj.eval(e, x.X)
	if err != nil {
		return nil, err
	}
	b, err := obj.eval(e, x.Y)
	if err != nil {
		return nil, err
	}
	switch x.Op {
	case ast.OpAdd:
		return Add(a, b)

	case ast.OpAddAssign:
		v, err := Add(a, b)
		if err != nil {
			return nil, err
		}
		return v, obj.assign(e, x.X, v)

	case ast.OpLt, ast.OpGe:
		c, err := Compare(a, b)
		if err != nil {
			return nil, err
		}
		if x.Op == ast.OpLt {
			return types.NewBool(c < 0), nil
		}
		return types.NewBool(c >= 0), nil
	}
	return nil, fmt.Errorf("unknown binary operator `%s`", x.Op)
}
