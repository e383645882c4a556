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
	"github.com/purpleidea/glfuzz/lang/types"
	"github.com/purpleidea/glfuzz/util/errwrap"
)

const (
	// OutputName is the fragment shader output that gets the color.
	OutputName = "_GLF_color"

	// DefaultPrecision is the default float precision of a shader.
	DefaultPrecision = "mediump"
)

// DefaultColor is the color that a generated shader writes by default.
var DefaultColor = []float32{0.46, 0.82, 0.15, 1.0}

// NewShaderProgram returns the skeleton of a fragment shader: a precision
// declaration, the color output, and an empty main.
func NewShaderProgram() *ast.TranslationUnit {
	return ast.NewTranslationUnit(
		&ast.PrecisionDecl{Precision: DefaultPrecision, Type: types.TypeFloat},
		&ast.VarDecl{Qualifier: "layout(location = 0) out", Type: types.TypeVec4, Name: OutputName},
		ast.NewFunction(ast.MainFunction, nil),
	)
}

// GenerateColor appends `_GLF_color = vec4(r, g, b, a);` to main, where each
// channel is synthesized from the given color. The channels share one local
// scope of main so that later channels can reuse earlier work.
func (obj *Generator) GenerateColor(color []float32) error {
	if len(color) != types.TypeVec4.Size {
		return fmt.Errorf("expected %d channels, got %d", types.TypeVec4.Size, len(color))
	}
	main := obj.Program.Main()
	if main == nil {
		return fmt.Errorf("no %s function", ast.MainFunction)
	}

	stmt := &ast.ExprStmt{}
	main.Body.Append(stmt)
	point := Point{Function: main, Stmt: stmt}
	scope := obj.Global.NewFunctionScope()

	args := []ast.Expr{}
	for i, c := range color {
		expr, err := obj.Synthesize(scope, point, types.NewFloat(c))
		if err != nil {
			return errwrap.Wrapf(err, "channel %d", i)
		}
		args = append(args, expr)
	}
	stmt.X = &ast.Binary{
		Op: ast.OpAssign,
		X:  &ast.Ident{Name: OutputName},
		Y:  &ast.Constructor{Type: types.TypeVec4, Args: args},
	}
	return nil
}
