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

// Package synth builds expressions that evaluate to a requested value. It
// recursively picks among several strategies, splices any declarations it
// needs into the program, and records what it built as facts so that later
// requests can reuse it.
package synth

import (
	"fmt"

	"github.com/purpleidea/glfuzz/lang/ast"
	"github.com/purpleidea/glfuzz/lang/facts"
	"github.com/purpleidea/glfuzz/lang/literal"
	"github.com/purpleidea/glfuzz/lang/types"
	"github.com/purpleidea/glfuzz/pgraph"
	"github.com/purpleidea/glfuzz/prometheus"
	"github.com/purpleidea/glfuzz/util"
	"github.com/purpleidea/glfuzz/util/errwrap"
	"github.com/purpleidea/glfuzz/util/random"

	"github.com/sanity-io/litter"
)

const (
	// ErrExhaustedStrategies is returned when no strategy produced an
	// expression within the attempt budget. It means that a strategy
	// declined when it should always apply, which is a bug.
	ErrExhaustedStrategies = util.Error("exhausted strategies")

	// CallGraphName is the name of the graph returned by CallGraph.
	CallGraphName = "calls"
)

// LiteralProvider turns a value into an expression made of literals. If the
// value is nil or unknown, any literal of the type will do.
type LiteralProvider interface {
	Literal(typ *types.Type, value types.Value) (ast.Expr, error)
}

// Point is where synthesized code goes. Statements are inserted into the body
// of Function right before Stmt, which must be a top level statement of that
// body. Global declarations are inserted right before Function.
type Point struct {
	Function *ast.FunctionDef
	Stmt     ast.Stmt
}

// FunctionVertex is a function in the call graph.
type FunctionVertex struct {
	Name string
}

// String returns the name of the function.
func (obj *FunctionVertex) String() string { return obj.Name }

// Generator is a synthesis session. It owns the program, the global scope, the
// depth counter, the id counter and the random source, and it must not be used
// concurrently. Run Init() on it.
type Generator struct {
	// Program is the translation unit that is modified.
	Program *ast.TranslationUnit

	// Global is the global scope. If nil, a new one is created.
	Global *facts.Scope

	// Config holds the tunables. If nil, DefaultConfig is used.
	Config *Config

	// Literal builds the leaves. If nil, a literal.Fuzzer that shares
	// Rand is used.
	Literal LiteralProvider

	// Rand is the only source of randomness of the session.
	Rand random.Source

	// Metrics is optional.
	Metrics *prometheus.Prometheus

	// Debug represents if we're running in debug mode or not.
	Debug bool

	// Logf is a logger which should be used.
	Logf func(format string, v ...interface{})

	paramTypes   []*types.Type
	strategies   []*strategy
	depth        int
	maxDepthSeen int
	id           int

	callGraph *pgraph.Graph
	vertices  map[string]*FunctionVertex
}

// Init validates the struct and sets the defaults.
func (obj *Generator) Init() error {
	if obj.Program == nil {
		return fmt.Errorf("the Program is nil")
	}
	if obj.Rand == nil {
		return fmt.Errorf("the Rand is nil")
	}
	if obj.Logf == nil {
		obj.Logf = func(format string, v ...interface{}) {} // noop
	}
	if obj.Config == nil {
		obj.Config = DefaultConfig()
	}
	if err := obj.Config.Validate(); err != nil {
		return errwrap.Wrapf(err, "invalid config")
	}
	paramTypes, err := obj.Config.Types()
	if err != nil {
		return err
	}
	obj.paramTypes = paramTypes
	if obj.Global == nil {
		obj.Global = facts.NewGlobal()
	}
	if !obj.Global.IsGlobal() {
		return fmt.Errorf("the Global scope is a local scope")
	}
	if obj.Literal == nil {
		obj.Literal = &literal.Fuzzer{Rand: obj.Rand}
	}

	// the order matches the numbering of the pick
	obj.strategies = []*strategy{
		{name: StrategyLiteral, fn: obj.literal},
		{name: StrategyFreshVariable, fn: obj.freshVariable},
		{name: StrategyKnownVariable, fn: obj.knownVariable},
		{name: StrategyFreshFunction, fn: obj.freshFunction},
		{name: StrategyKnownFunction, fn: obj.knownFunction},
		{name: StrategyAdditive, fn: obj.additive},
		{name: StrategyLoop, fn: obj.loop},
	}

	obj.callGraph = pgraph.NewGraph(CallGraphName)
	obj.vertices = make(map[string]*FunctionVertex)
	for _, fn := range obj.Program.Functions() {
		obj.callGraph.AddVertex(obj.vertex(fn.Name()))
	}
	return nil
}

// Synthesize returns an expression that evaluates to the value when it is
// placed at the point. The scope must be the global scope, or a scope that
// belongs to the function of the point. The value and its type are checked
// before anything is modified, so an error from a bad request leaves both the
// program and the facts untouched. Local facts describe variables declared
// before the point they were created for, so a local scope must only be used
// again at that point or at a later one in the same function.
func (obj *Generator) Synthesize(scope *facts.Scope, point Point, value types.Value) (ast.Expr, error) {
	if scope == nil {
		return nil, fmt.Errorf("the scope is nil")
	}
	if scope.Global() != obj.Global {
		return nil, fmt.Errorf("the scope is not part of this session")
	}
	if err := types.Validate(value); err != nil {
		return nil, err
	}
	if err := value.Type().Supported(); err != nil {
		return nil, err
	}
	if point.Function == nil || point.Stmt == nil {
		return nil, fmt.Errorf("incomplete insertion point")
	}
	if obj.Program.IndexOf(point.Function) < 0 {
		return nil, fmt.Errorf("function `%s` is not in the program", point.Function.Name())
	}
	if point.Function.Body.IndexOf(point.Stmt) < 0 {
		return nil, fmt.Errorf("statement is not in the body of `%s`", point.Function.Name())
	}

	return obj.synthesize(scope, point, value)
}

// CallGraph returns the graph of calls between functions that synthesis has
// created so far. The arrows point from the caller to the callee.
func (obj *Generator) CallGraph() *pgraph.Graph {
	return obj.callGraph
}

// Depth returns the current nesting of synthesis calls. It is zero between two
// calls to Synthesize.
func (obj *Generator) Depth() int {
	return obj.depth
}

// MaxDepthSeen returns the deepest nesting of synthesis calls so far. It never
// exceeds MaxDepth + 1.
func (obj *Generator) MaxDepthSeen() int {
	return obj.maxDepthSeen
}

// synthesize is the recursive entry point. The depth is shared by every call
// of the session, including those that build the body of a new function.
func (obj *Generator) synthesize(scope *facts.Scope, point Point, value types.Value) (ast.Expr, error) {
	obj.depth++
	defer func() { obj.depth-- }()
	if obj.depth > obj.maxDepthSeen {
		obj.maxDepthSeen = obj.depth
	}
	if obj.Debug {
		obj.Logf("synthesize (depth %d): %s", obj.depth, litter.Sdump(value))
	}

	if obj.depth > obj.Config.MaxDepth { // only non-recursive strategies
		for i := 0; i < obj.Config.MaxAttempts; i++ {
			s := obj.strategies[0] // literal
			if !obj.Rand.Bool() {
				s = obj.strategies[2] // known variable
			}
			expr, err := obj.try(s, scope, point, value)
			if err != nil || expr != nil {
				return expr, err
			}
		}
		return nil, errwrap.Wrapf(ErrExhaustedStrategies, "at depth %d for %s", obj.depth, value)
	}

	for i := 0; i < obj.Config.MaxAttempts; i++ {
		s := obj.strategies[obj.Rand.Intn(len(obj.strategies))]
		expr, err := obj.try(s, scope, point, value)
		if err != nil || expr != nil {
			return expr, err
		}
	}
	return nil, errwrap.Wrapf(ErrExhaustedStrategies, "for %s", value)
}

// try runs one strategy. A nil expression with a nil error is a decline.
func (obj *Generator) try(s *strategy, scope *facts.Scope, point Point, value types.Value) (ast.Expr, error) {
	expr, err := s.fn(scope, point, value)
	if err != nil {
		return nil, errwrap.Wrapf(err, "strategy %s failed", s.name)
	}
	if obj.Metrics != nil {
		if err := obj.Metrics.UpdateStrategyTotal(s.name, expr == nil); err != nil {
			obj.Logf("could not update metrics: %+v", err)
		}
	}
	if obj.Debug && expr != nil {
		obj.Logf("strategy %s: %s", s.name, expr)
	}
	return expr, nil
}

// vertex returns the call graph vertex of a function, creating it if needed.
func (obj *Generator) vertex(name string) *FunctionVertex {
	v, exists := obj.vertices[name]
	if !exists {
		v = &FunctionVertex{Name: name}
		obj.vertices[name] = v
	}
	return v
}

func (obj *Generator) addCall(caller *ast.FunctionDef, callee string) {
	obj.callGraph.AddEdge(obj.vertex(caller.Name()), obj.vertex(callee), pgraph.NewEdge("call"))
}
