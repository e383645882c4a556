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

// Package ast contains the program tree of a GLSL shader. Synthesized code is
// spliced into this tree and printed back out as source.
package ast

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/purpleidea/glfuzz/lang/types"
	"github.com/purpleidea/glfuzz/util"
)

const (
	// DefaultVersion is the version directive printed at the top of each
	// translation unit unless it was overridden.
	DefaultVersion = "300 es"

	// MainFunction is the name of the entry point.
	MainFunction = "main"
)

// Node represents any element of the tree.
type Node interface {
	fmt.Stringer

	// Apply is a general purpose iterator method that operates on any
	// node. Children are visited before their parent.
	Apply(fn func(Node) error) error
}

// Expr is an expression node.
type Expr interface {
	Node
	expr()
}

// Stmt is a statement node that can live in a block.
type Stmt interface {
	Node
	stmt()
}

// Decl is an external declaration that can live at the top level of a
// translation unit.
type Decl interface {
	Node
	decl()
}

// TranslationUnit is a whole shader.
type TranslationUnit struct {
	// Version is printed after `#version`. If empty, no directive is
	// printed.
	Version string

	Decls []Decl
}

// NewTranslationUnit returns a translation unit with the default version.
func NewTranslationUnit(decls ...Decl) *TranslationUnit {
	return &TranslationUnit{
		Version: DefaultVersion,
		Decls:   decls,
	}
}

// String prints the shader source.
func (obj *TranslationUnit) String() string {
	sb := &strings.Builder{}
	if obj.Version != "" {
		fmt.Fprintf(sb, "#version %s\n", obj.Version)
	}
	for _, x := range obj.Decls {
		if _, ok := x.(*FunctionDef); ok {
			sb.WriteString("\n")
		}
		sb.WriteString(x.String())
		sb.WriteString("\n")
	}
	return sb.String()
}

// Apply is a general purpose iterator method that operates on any node.
func (obj *TranslationUnit) Apply(fn func(Node) error) error {
	for _, x := range obj.Decls {
		if err := x.Apply(fn); err != nil {
			return err
		}
	}
	return fn(obj)
}

// IndexOf returns the position of a top level declaration, or -1.
func (obj *TranslationUnit) IndexOf(decl Decl) int {
	for i, x := range obj.Decls {
		if x == decl {
			return i
		}
	}
	return -1
}

// InsertBefore adds a declaration immediately before the given function.
func (obj *TranslationUnit) InsertBefore(fn *FunctionDef, decl Decl) error {
	if decl == nil {
		return fmt.Errorf("nil declaration")
	}
	index := obj.IndexOf(fn)
	if index < 0 {
		return fmt.Errorf("function `%s` is not in the translation unit", fn.Name())
	}
	obj.Decls = append(obj.Decls, nil)
	copy(obj.Decls[index+1:], obj.Decls[index:])
	obj.Decls[index] = decl
	return nil
}

// Function returns the first function definition with this name, or nil.
func (obj *TranslationUnit) Function(name string) *FunctionDef {
	for _, x := range obj.Decls {
		if fn, ok := x.(*FunctionDef); ok && fn.Name() == name {
			return fn
		}
	}
	return nil
}

// Main returns the entry point, or nil if there isn't one.
func (obj *TranslationUnit) Main() *FunctionDef {
	return obj.Function(MainFunction)
}

// Functions returns all the function definitions in order.
func (obj *TranslationUnit) Functions() []*FunctionDef {
	fns := []*FunctionDef{}
	for _, x := range obj.Decls {
		if fn, ok := x.(*FunctionDef); ok {
			fns = append(fns, fn)
		}
	}
	return fns
}

// Globals returns all the global variable declarations in order.
func (obj *TranslationUnit) Globals() []*VarDecl {
	vars := []*VarDecl{}
	for _, x := range obj.Decls {
		if v, ok := x.(*VarDecl); ok {
			vars = append(vars, v)
		}
	}
	return vars
}

// PrecisionDecl is a default precision statement such as
// `precision mediump float;`.
type PrecisionDecl struct {
	Precision string
	Type      *types.Type
}

func (obj *PrecisionDecl) decl() {}

// String prints the declaration.
func (obj *PrecisionDecl) String() string {
	return fmt.Sprintf("precision %s %s;", obj.Precision, obj.Type)
}

// Apply is a general purpose iterator method that operates on any node.
func (obj *PrecisionDecl) Apply(fn func(Node) error) error { return fn(obj) }

// VarDecl declares a single variable. It is used as a global declaration, and
// wrapped in a DeclStmt when it is local.
type VarDecl struct {
	// Qualifier is printed before the type, for example `out` or
	// `layout(location = 0) out`.
	Qualifier string

	Type *types.Type
	Name string

	// Init is optional.
	Init Expr
}

func (obj *VarDecl) decl() {}

// String prints the declaration.
func (obj *VarDecl) String() string {
	s := fmt.Sprintf("%s %s", obj.Type, obj.Name)
	if obj.Qualifier != "" {
		s = obj.Qualifier + " " + s
	}
	if obj.Init != nil {
		s += " = " + obj.Init.String()
	}
	return s + ";"
}

// Apply is a general purpose iterator method that operates on any node.
func (obj *VarDecl) Apply(fn func(Node) error) error {
	if obj.Init != nil {
		if err := obj.Init.Apply(fn); err != nil {
			return err
		}
	}
	return fn(obj)
}

// Param is a function parameter.
type Param struct {
	Type *types.Type
	Name string
}

// String prints the parameter.
func (obj *Param) String() string { return fmt.Sprintf("%s %s", obj.Type, obj.Name) }

// Apply is a general purpose iterator method that operates on any node.
func (obj *Param) Apply(fn func(Node) error) error { return fn(obj) }

// FunctionProto is the signature of a function. A nil return type is void.
type FunctionProto struct {
	Name       string
	ReturnType *types.Type
	Params     []*Param
}

// String prints the signature.
func (obj *FunctionProto) String() string {
	ret := "void"
	if obj.ReturnType != nil {
		ret = obj.ReturnType.String()
	}
	params := []string{}
	for _, x := range obj.Params {
		params = append(params, x.String())
	}
	return fmt.Sprintf("%s %s(%s)", ret, obj.Name, strings.Join(params, ", "))
}

// Apply is a general purpose iterator method that operates on any node.
func (obj *FunctionProto) Apply(fn func(Node) error) error {
	for _, x := range obj.Params {
		if err := x.Apply(fn); err != nil {
			return err
		}
	}
	return fn(obj)
}

// FunctionDef is a function with a body.
type FunctionDef struct {
	Proto *FunctionProto
	Body  *Block
}

// NewFunction builds an empty function definition.
func NewFunction(name string, ret *types.Type, params ...*Param) *FunctionDef {
	return &FunctionDef{
		Proto: &FunctionProto{
			Name:       name,
			ReturnType: ret,
			Params:     params,
		},
		Body: &Block{},
	}
}

func (obj *FunctionDef) decl() {}

// Name returns the name of the function.
func (obj *FunctionDef) Name() string {
	if obj == nil || obj.Proto == nil {
		return ""
	}
	return obj.Proto.Name
}

// String prints the function.
func (obj *FunctionDef) String() string {
	return obj.Proto.String() + "\n" + obj.Body.String()
}

// Apply is a general purpose iterator method that operates on any node.
func (obj *FunctionDef) Apply(fn func(Node) error) error {
	if err := obj.Proto.Apply(fn); err != nil {
		return err
	}
	if err := obj.Body.Apply(fn); err != nil {
		return err
	}
	return fn(obj)
}

// Block is an ordered list of statements. Statements are addressed by their
// index when inserting.
type Block struct {
	Stmts []Stmt
}

func (obj *Block) stmt() {}

// String prints the block with its contents indented.
func (obj *Block) String() string {
	if len(obj.Stmts) == 0 {
		return "{\n}"
	}
	lines := []string{}
	for _, x := range obj.Stmts {
		lines = append(lines, x.String())
	}
	return "{\n" + util.Indent(strings.Join(lines, "\n")) + "\n}"
}

// Apply is a general purpose iterator method that operates on any node.
func (obj *Block) Apply(fn func(Node) error) error {
	for _, x := range obj.Stmts {
		if err := x.Apply(fn); err != nil {
			return err
		}
	}
	return fn(obj)
}

// IndexOf returns the index of the statement in this block, or -1. Only the
// top level of the block is searched.
func (obj *Block) IndexOf(stmt Stmt) int {
	for i, x := range obj.Stmts {
		if x == stmt {
			return i
		}
	}
	return -1
}

// InsertBefore inserts a statement at the index, and returns the new index of
// the statement that used to be there. An index equal to the length appends.
func (obj *Block) InsertBefore(index int, stmt Stmt) int {
	if index < 0 || index > len(obj.Stmts) {
		panic(fmt.Sprintf("block index %d out of range [0, %d]", index, len(obj.Stmts)))
	}
	obj.Stmts = append(obj.Stmts, nil)
	copy(obj.Stmts[index+1:], obj.Stmts[index:])
	obj.Stmts[index] = stmt
	return index + 1
}

// Append adds statements to the end of the block.
func (obj *Block) Append(stmts ...Stmt) {
	obj.Stmts = append(obj.Stmts, stmts...)
}

// DeclStmt is a local variable declaration.
type DeclStmt struct {
	Decl *VarDecl
}

func (obj *DeclStmt) stmt() {}

// String prints the declaration.
func (obj *DeclStmt) String() string { return obj.Decl.String() }

// Apply is a general purpose iterator method that operates on any node.
func (obj *DeclStmt) Apply(fn func(Node) error) error {
	if err := obj.Decl.Apply(fn); err != nil {
		return err
	}
	return fn(obj)
}

// ExprStmt is an expression evaluated for its side effects, usually an
// assignment.
type ExprStmt struct {
	X Expr
}

func (obj *ExprStmt) stmt() {}

// String prints the statement.
func (obj *ExprStmt) String() string {
	if obj.X == nil {
		return ";"
	}
	return obj.X.String() + ";"
}

// Apply is a general purpose iterator method that operates on any node.
func (obj *ExprStmt) Apply(fn func(Node) error) error {
	if obj.X != nil {
		if err := obj.X.Apply(fn); err != nil {
			return err
		}
	}
	return fn(obj)
}

// ForStmt is a counted loop.
type ForStmt struct {
	Init Stmt
	Cond Expr
	Incr Expr
	Body *Block
}

func (obj *ForStmt) stmt() {}

// String prints the loop.
func (obj *ForStmt) String() string {
	init := ";"
	if obj.Init != nil {
		init = obj.Init.String()
	}
	cond, incr := "", ""
	if obj.Cond != nil {
		cond = " " + obj.Cond.String()
	}
	if obj.Incr != nil {
		incr = " " + obj.Incr.String()
	}
	return fmt.Sprintf("for (%s%s;%s)\n%s", init, cond, incr, obj.Body)
}

// Apply is a general purpose iterator method that operates on any node.
func (obj *ForStmt) Apply(fn func(Node) error) error {
	for _, x := range []Node{obj.Init, obj.Cond, obj.Incr} {
		if x == nil {
			continue
		}
		if err := x.Apply(fn); err != nil {
			return err
		}
	}
	if err := obj.Body.Apply(fn); err != nil {
		return err
	}
	return fn(obj)
}

// ReturnStmt returns from a function. The expression is nil in a void
// function.
type ReturnStmt struct {
	X Expr
}

func (obj *ReturnStmt) stmt() {}

// String prints the statement.
func (obj *ReturnStmt) String() string {
	if obj.X == nil {
		return "return;"
	}
	return "return " + obj.X.String() + ";"
}

// Apply is a general purpose iterator method that operates on any node.
func (obj *ReturnStmt) Apply(fn func(Node) error) error {
	if obj.X != nil {
		if err := obj.X.Apply(fn); err != nil {
			return err
		}
	}
	return fn(obj)
}

// IntLit is a signed integer literal. Negative numbers are expressed with a
// unary minus, so V is a magnitude that may exceed the int32 range by one.
type IntLit struct {
	V int64
}

func (obj *IntLit) expr() {}

// String prints the literal.
func (obj *IntLit) String() string { return strconv.FormatInt(obj.V, 10) }

// Apply is a general purpose iterator method that operates on any node.
func (obj *IntLit) Apply(fn func(Node) error) error { return fn(obj) }

// UintLit is an unsigned integer literal.
type UintLit struct {
	V uint32
}

func (obj *UintLit) expr() {}

// String prints the literal.
func (obj *UintLit) String() string { return strconv.FormatUint(uint64(obj.V), 10) + "u" }

// Apply is a general purpose iterator method that operates on any node.
func (obj *UintLit) Apply(fn func(Node) error) error { return fn(obj) }

// FloatLit is a floating point literal.
type FloatLit struct {
	V float32
}

func (obj *FloatLit) expr() {}

// String prints the literal.
func (obj *FloatLit) String() string { return types.FormatFloat(obj.V) }

// Apply is a general purpose iterator method that operates on any node.
func (obj *FloatLit) Apply(fn func(Node) error) error { return fn(obj) }

// BoolLit is a boolean literal.
type BoolLit struct {
	V bool
}

func (obj *BoolLit) expr() {}

// String prints the literal.
func (obj *BoolLit) String() string { return strconv.FormatBool(obj.V) }

// Apply is a general purpose iterator method that operates on any node.
func (obj *BoolLit) Apply(fn func(Node) error) error { return fn(obj) }

// Ident is a reference to a variable or parameter.
type Ident struct {
	Name string
}

func (obj *Ident) expr() {}

// String prints the name.
func (obj *Ident) String() string { return obj.Name }

// Apply is a general purpose iterator method that operates on any node.
func (obj *Ident) Apply(fn func(Node) error) error { return fn(obj) }

// Call is a call of a user defined function.
type Call struct {
	Name string
	Args []Expr
}

func (obj *Call) expr() {}

// String prints the call.
func (obj *Call) String() string { return obj.Name + "(" + joinExprs(obj.Args) + ")" }

// Apply is a general purpose iterator method that operates on any node.
func (obj *Call) Apply(fn func(Node) error) error {
	for _, x := range obj.Args {
		if err := x.Apply(fn); err != nil {
			return err
		}
	}
	return fn(obj)
}

// Constructor is a type constructor such as `vec2(1.0, 2.0)`.
type Constructor struct {
	Type *types.Type
	Args []Expr
}

func (obj *Constructor) expr() {}

// String prints the constructor.
func (obj *Constructor) String() string {
	return obj.Type.String() + "(" + joinExprs(obj.Args) + ")"
}

// Apply is a general purpose iterator method that operates on any node.
func (obj *Constructor) Apply(fn func(Node) error) error {
	for _, x := range obj.Args {
		if err := x.Apply(fn); err != nil {
			return err
		}
	}
	return fn(obj)
}

// The binary operators that the synthesizer emits.
const (
	OpAdd       = "+"
	OpAssign    = "="
	OpAddAssign = "+="
	OpLt        = "<"
	OpGe        = ">="
)

// Binary is a binary operation. No parentheses are added when printing, so
// callers wrap operands in a Paren where the precedence requires it.
type Binary struct {
	Op string
	X  Expr
	Y  Expr
}

func (obj *Binary) expr() {}

// String prints the operation.
func (obj *Binary) String() string {
	return fmt.Sprintf("%s %s %s", obj.X, obj.Op, obj.Y)
}

// Apply is a general purpose iterator method that operates on any node.
func (obj *Binary) Apply(fn func(Node) error) error {
	if err := obj.X.Apply(fn); err != nil {
		return err
	}
	if err := obj.Y.Apply(fn); err != nil {
		return err
	}
	return fn(obj)
}

// The unary operators that the synthesizer emits.
const (
	OpNeg = "-"
	OpInc = "++"
	OpDec = "--"
)

// Unary is a unary operation. Increment and decrement are postfix.
type Unary struct {
	Op      string
	X       Expr
	Postfix bool
}

func (obj *Unary) expr() {}

// String prints the operation.
func (obj *Unary) String() string {
	if obj.Postfix {
		return obj.X.String() + obj.Op
	}
	return obj.Op + obj.X.String()
}

// Apply is a general purpose iterator method that operates on any node.
func (obj *Unary) Apply(fn func(Node) error) error {
	if err := obj.X.Apply(fn); err != nil {
		return err
	}
	return fn(obj)
}

// Paren is a parenthesized expression.
type Paren struct {
	X Expr
}

func (obj *Paren) expr() {}

// String prints the expression in parentheses.
func (obj *Paren) String() string { return "(" + obj.X.String() + ")" }

// Apply is a general purpose iterator method that operates on any node.
func (obj *Paren) Apply(fn func(Node) error) error {
	if err := obj.X.Apply(fn); err != nil {
		return err
	}
	return fn(obj)
}

func joinExprs(exprs []Expr) string {
	s := []string{}
	for _, x := range exprs {
		s = append(s, x.String())
	}
	return strings.Join(s, ", ")
}
