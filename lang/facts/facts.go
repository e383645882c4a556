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

// Package facts records which synthesized variables and functions are known to
// produce which values, so that later synthesis can reuse them.
package facts

import (
	"fmt"

	"github.com/purpleidea/glfuzz/lang/ast"
	"github.com/purpleidea/glfuzz/lang/types"
)

// VariableFact says that reading the named variable yields the value. It is
// also used for function parameters, in which case Param is set and Decl is
// nil.
type VariableFact struct {
	Value types.Value
	Name  string

	Decl  *ast.VarDecl
	Param *ast.Param
}

// String returns a short description of the fact.
func (obj *VariableFact) String() string {
	return fmt.Sprintf("%s == %s", obj.Name, obj.Value)
}

// NewParameterFact builds the fact of a function parameter that was passed the
// value.
func NewParameterFact(param *ast.Param, value types.Value) *VariableFact {
	return &VariableFact{
		Value: value,
		Name:  param.Name,
		Param: param,
	}
}

// FunctionFact says that calling the named function with arguments that
// evaluate to Args returns the value.
type FunctionFact struct {
	Value types.Value
	Name  string
	Proto *ast.FunctionProto

	// Args are the values of the parameters, in order.
	Args []types.Value
}

// String returns a short description of the fact.
func (obj *FunctionFact) String() string {
	return fmt.Sprintf("%s(%d args) == %s", obj.Name, len(obj.Args), obj.Value)
}

// Scope is a node of the fact store. There is one global scope per session and
// one local scope per synthesized function body. A local scope only ever
// consults itself and the global scope. Facts are never removed.
type Scope struct {
	global *Scope // nil if this is the global scope

	variables map[string][]*VariableFact
	functions map[string][]*FunctionFact
}

// NewGlobal returns a new empty global scope.
func NewGlobal() *Scope {
	return &Scope{
		variables: make(map[string][]*VariableFact),
		functions: make(map[string][]*FunctionFact),
	}
}

// NewFunctionScope returns a new empty local scope that falls back to the
// global scope of this one. It is not chained to the scope it was created from.
func (obj *Scope) NewFunctionScope() *Scope {
	return &Scope{
		global:    obj.Global(),
		variables: make(map[string][]*VariableFact),
	}
}

// Global returns the global scope.
func (obj *Scope) Global() *Scope {
	if obj.global == nil {
		return obj
	}
	return obj.global
}

// IsGlobal returns true if this is the global scope.
func (obj *Scope) IsGlobal() bool { return obj.global == nil }

// AddVariableFact records a variable fact in this scope.
func (obj *Scope) AddVariableFact(fact *VariableFact) {
	key := fact.Value.Key()
	obj.variables[key] = append(obj.variables[key], fact)
}

// AddFunctionFact records a function fact. Functions are global, so this panics
// if it is called on a local scope.
func (obj *Scope) AddFunctionFact(fact *FunctionFact) {
	if !obj.IsGlobal() {
		panic("function fact added to a local scope")
	}
	key := fact.Value.Key()
	obj.functions[key] = append(obj.functions[key], fact)
}

// LookupVariable returns the variable facts for the value, local ones first.
// Two unknown values of the same type match each other.
func (obj *Scope) LookupVariable(value types.Value) []*VariableFact {
	key := value.Key()
	result := []*VariableFact{}
	result = append(result, obj.variables[key]...)
	if !obj.IsGlobal() {
		result = append(result, obj.global.variables[key]...)
	}
	return result
}

// LookupFunction returns the function facts for the value. Only the global
// scope holds them.
func (obj *Scope) LookupFunction(value types.Value) []*FunctionFact {
	return append([]*FunctionFact{}, obj.Global().functions[value.Key()]...)
}

// Variables returns the number of variable facts stored in this scope only.
func (obj *Scope) Variables() int {
	count := 0
	for _, x := range obj.variables {
		count += len(x)
	}
	return count
}

// Functions returns the number of function facts.
func (obj *Scope) Functions() int {
	count := 0
	for _, x := range obj.Global().functions {
		count += len(x)
	}
	return count
}
