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
)

// GlobalInitToMain moves the initializer of a global variable into an
// assignment at the top of main. The declaration stays where it is, without an
// initializer. This is useful when a global initializer isn't a constant
// expression, which GLSL ES doesn't allow.
func GlobalInitToMain(tu *TranslationUnit, decl *VarDecl) error {
	if decl == nil {
		return fmt.Errorf("nil declaration")
	}
	if tu.IndexOf(decl) < 0 {
		return fmt.Errorf("variable `%s` is not a global", decl.Name)
	}
	if decl.Init == nil {
		return fmt.Errorf("variable `%s` has no initializer", decl.Name)
	}
	main := tu.Main()
	if main == nil {
		return fmt.Errorf("no %s function", MainFunction)
	}
	if tu.IndexOf(main) < tu.IndexOf(decl) {
		return fmt.Errorf("variable `%s` is declared after %s", decl.Name, MainFunction)
	}

	assign := &ExprStmt{
		X: &Binary{
			Op: OpAssign,
			X:  &Ident{Name: decl.Name},
			Y:  decl.Init,
		},
	}
	decl.Init = nil
	main.Body.InsertBefore(0, assign)
	return nil
}

// AllGlobalInitsToMain runs GlobalInitToMain on every initialized global that
// is declared before main. The assignments keep the order of the declarations.
func AllGlobalInitsToMain(tu *TranslationUnit) (int, error) {
	main := tu.Main()
	if main == nil {
		return 0, fmt.Errorf("no %s function", MainFunction)
	}
	limit := tu.IndexOf(main)
	globals := tu.Globals()
	count := 0
	for i := len(globals) - 1; i >= 0; i-- { // each one goes on top
		decl := globals[i]
		if decl.Init == nil || tu.IndexOf(decl) > limit {
			continue
		}
		if err := GlobalInitToMain(tu, decl); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}
