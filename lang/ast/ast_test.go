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

package ast

import (
	"fmt"
	"testing"

	"github.com/purpleidea/glfuzz/lang/types"
	"github.com/purpleidea/glfuzz/util"
)

func testProgram() (*TranslationUnit, *FunctionDef, *ExprStmt) {
	main := NewFunction(MainFunction, nil)
	color := &ExprStmt{
		X: &Binary{
			Op: OpAssign,
			X:  &Ident{Name: "_GLF_color"},
			Y: &Constructor{
				Type: types.TypeVec4,
				Args: []Expr{
					&FloatLit{V: 1},
					&Unary{Op: OpNeg, X: &FloatLit{V: 0.5}},
					&FloatLit{V: 0},
					&FloatLit{V: 1},
				},
			},
		},
	}
	main.Body.Append(color)
	tu := NewTranslationUnit(
		&PrecisionDecl{Precision: "mediump", Type: types.TypeFloat},
		&VarDecl{Qualifier: "layout(location = 0) out", Type: types.TypeVec4, Name: "_GLF_color"},
		main,
	)
	return tu, main, color
}

func TestPrint0(t *testing.T) {
	tu, main, color := testProgram()

	index := main.Body.IndexOf(color)
	if index != 0 {
		t.Errorf("unexpected index: %d", index)
		return
	}
	index = main.Body.InsertBefore(index, &DeclStmt{
		Decl: &VarDecl{Type: types.TypeInt, Name: "x", Init: &IntLit{V: 1}},
	})
	index = main.Body.InsertBefore(index, &ForStmt{
		Init: &DeclStmt{Decl: &VarDecl{Type: types.TypeInt, Name: "c", Init: &IntLit{V: 0}}},
		Cond: &Binary{Op: OpLt, X: &Ident{Name: "c"}, Y: &IntLit{V: 3}},
		Incr: &Unary{Op: OpInc, X: &Ident{Name: "c"}, Postfix: true},
		Body: &Block{Stmts: []Stmt{
			&ExprStmt{X: &Binary{Op: OpAddAssign, X: &Ident{Name: "x"}, Y: &IntLit{V: 2}}},
		}},
	})
	if index != 2 || main.Body.IndexOf(color) != 2 {
		t.Errorf("unexpected index: %d", index)
	}

	fn := NewFunction("f", types.TypeUint, &Param{Type: types.TypeBool, Name: "b"}, &Param{Type: types.TypeVec2, Name: "v"})
	fn.Body.Append(&ReturnStmt{X: &Paren{X: &Binary{Op: OpAdd, X: &UintLit{V: 1}, Y: &Call{Name: "g"}}}})
	if err := tu.InsertBefore(main, fn); err != nil {
		t.Errorf("could not insert: %+v", err)
		return
	}

	exp := util.Code(`
	#version 300 es
	precision mediump float;
	layout(location = 0) out vec4 _GLF_color;

	uint f(bool b, vec2 v)
	{
		return (1u + g());
	}

	void main()
	{
		int x = 1;
		for (int c = 0; c < 3; c++)
		{
			x += 2;
		}
		_GLF_color = vec4(1.0, -0.5, 0.0, 1.0);
	}
	`)
	if s := tu.String(); s != exp {
		t.Errorf("program did not match")
		t.Logf("got:\n%s", s)
		t.Logf("exp:\n%s", exp)
	}
}

func TestBlockInsertBefore0(t *testing.T) {
	a := &ExprStmt{X: &Ident{Name: "a"}}
	b := &ExprStmt{X: &Ident{Name: "b"}}
	c := &ExprStmt{X: &Ident{Name: "c"}}
	block := &Block{}
	if i := block.InsertBefore(0, c); i != 1 {
		t.Errorf("unexpected index: %d", i)
	}
	if i := block.InsertBefore(0, a); i != 1 {
		t.Errorf("unexpected index: %d", i)
	}
	if i := block.InsertBefore(1, b); i != 2 {
		t.Errorf("unexpected index: %d", i)
	}
	for i, x := range []Stmt{a, b, c} {
		if j := block.IndexOf(x); j != i {
			t.Errorf("statement %s is at %d, expected %d", x, j, i)
		}
	}
	if block.IndexOf(&ExprStmt{}) != -1 {
		t.Errorf("found a statement that isn't there")
	}

	defer func() {
		if r := recover(); r == nil {
			t.Errorf("expected a panic")
		}
	}()
	block.InsertBefore(4, a)
}

func TestTranslationUnit0(t *testing.T) {
	tu, main, _ := testProgram()
	if tu.Main() != main {
		t.Errorf("main not found")
	}
	if tu.Function("nope") != nil {
		t.Errorf("found a missing function")
	}
	if err := tu.InsertBefore(NewFunction("other", nil), &VarDecl{Type: types.TypeInt, Name: "x"}); err == nil {
		t.Errorf("expected an error when inserting before a missing function")
	}
	if err := tu.InsertBefore(main, nil); err == nil {
		t.Errorf("expected an error when inserting nil")
	}
	g := &VarDecl{Type: types.TypeInt, Name: "g", Init: &IntLit{V: 3}}
	if err := tu.InsertBefore(main, g); err != nil {
		t.Errorf("could not insert: %+v", err)
	}
	if i, j := tu.IndexOf(g), tu.IndexOf(main); i != j-1 {
		t.Errorf("global at %d, main at %d", i, j)
	}
	if l := len(tu.Globals()); l != 2 {
		t.Errorf("expected two globals, got %d", l)
	}
	if l := len(tu.Functions()); l != 1 {
		t.Errorf("expected one function, got %d", l)
	}
}

func TestApply0(t *testing.T) {
	tu, _, _ := testProgram()
	count := map[string]int{}
	err := tu.Apply(func(n Node) error {
		count[fmt.Sprintf("%T", n)]++
		return nil
	})
	if err != nil {
		t.Errorf("apply failed: %+v", err)
		return
	}
	if count["*ast.FloatLit"] != 4 || count["*ast.TranslationUnit"] != 1 || count["*ast.Unary"] != 1 {
		t.Errorf("unexpected node counts: %+v", count)
	}

	stop := fmt.Errorf("stop")
	if err := tu.Apply(func(n Node) error { return stop }); err != stop {
		t.Errorf("expected apply to stop early, got: %v", err)
	}
}

func TestGlobalInitToMain0(t *testing.T) {
	tu, main, _ := testProgram()
	g := &VarDecl{Type: types.TypeInt, Name: "g", Init: &Call{Name: "f"}}
	if err := tu.InsertBefore(main, g); err != nil {
		t.Errorf("could not insert: %+v", err)
		return
	}
	if err := GlobalInitToMain(tu, g); err != nil {
		t.Errorf("could not move initializer: %+v", err)
		return
	}
	if g.Init != nil {
		t.Errorf("initializer was not removed")
	}
	if s := main.Body.Stmts[0].String(); s != "g = f();" {
		t.Errorf("unexpected first statement: %s", s)
	}
	if err := GlobalInitToMain(tu, g); err == nil {
		t.Errorf("expected an error for a missing initializer")
	}
	local := &VarDecl{Type: types.TypeInt, Name: "l", Init: &IntLit{V: 1}}
	if err := GlobalInitToMain(tu, local); err == nil {
		t.Errorf("expected an error for a variable that isn't global")
	}
}

func TestAllGlobalInitsToMain0(t *testing.T) {
	tu, main, _ := testProgram()
	a := &VarDecl{Type: types.TypeInt, Name: "a", Init: &IntLit{V: 1}}
	b := &VarDecl{Type: types.TypeInt, Name: "b", Init: &Ident{Name: "a"}}
	for _, x := range []*VarDecl{a, b} {
		if err := tu.InsertBefore(main, x); err != nil {
			t.Errorf("could not insert: %+v", err)
			return
		}
	}
	before := len(main.Body.Stmts)
	count, err := AllGlobalInitsToMain(tu)
	if err != nil {
		t.Errorf("could not move initializers: %+v", err)
		return
	}
	if count < 2 || len(main.Body.Stmts) != before+count {
		t.Errorf("moved %d initializers", count)
	}
	// the order of the declarations is kept
	ia, ib := -1, -1
	for i, x := range main.Body.Stmts {
		switch x.String() {
		case "a = 1;":
			ia = i
		case "b = a;":
			ib = i
		}
	}
	if ia < 0 || ib < 0 || ia > ib {
		t.Errorf("bad order in:\n%s", main.Body)
	}
	if n, err := AllGlobalInitsToMain(tu); err != nil || n != 0 {
		t.Errorf("expected nothing left to move, got %d, %+v", n, err)
	}
}
