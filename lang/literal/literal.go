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

// Package literal turns values into literal expressions. It is the leaf of
// every synthesized expression.
package literal

import (
	"fmt"
	"math"
	"strconv"

	"github.com/purpleidea/glfuzz/lang/ast"
	"github.com/purpleidea/glfuzz/lang/types"
	"github.com/purpleidea/glfuzz/util/errwrap"
	"github.com/purpleidea/glfuzz/util/random"
)

// Fuzzer builds literals. Values that aren't known are replaced by random
// literals of the right type.
type Fuzzer struct {
	Rand random.Source
}

// Literal returns an expression made only of literals that evaluates to the
// value. If the value is nil or unknown, any literal of the type is returned.
// Struct and array types are not supported.
func (obj *Fuzzer) Literal(typ *types.Type, value types.Value) (ast.Expr, error) {
	if err := typ.Supported(); err != nil {
		return nil, err
	}
	if value != nil {
		if err := value.Type().Cmp(typ); err != nil {
			return nil, errwrap.Wrapf(types.ErrMalformedValue, "literal of %s for a %s value", typ, value.Type())
		}
	}
	if value == nil || value.IsUnknown() {
		return obj.random(typ)
	}

	switch x := value.(type) {
	case *types.BoolValue:
		return &ast.BoolLit{V: x.V}, nil

	case *types.IntValue:
		if x.V < 0 {
			return &ast.Unary{Op: ast.OpNeg, X: &ast.IntLit{V: -int64(x.V)}}, nil
		}
		return &ast.IntLit{V: int64(x.V)}, nil

	case *types.UintValue:
		return &ast.UintLit{V: x.V}, nil

	case *types.FloatValue:
		return floatLit(x.V), nil

	case *types.CompositeValue:
		args := []ast.Expr{}
		for _, elem := range x.V {
			arg, err := obj.Literal(typ.Elem, elem)
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
		}
		return &ast.Constructor{Type: typ, Args: args}, nil
	}

	return nil, fmt.Errorf("unexpected value %T", value)
}

func (obj *Fuzzer) random(typ *types.Type) (ast.Expr, error) {
	switch typ.Kind {
	case types.KindBool:
		return &ast.BoolLit{V: obj.Rand.Bool()}, nil

	case types.KindInt:
		return &ast.IntLit{V: int64(obj.Rand.Intn(types.IntMax-types.IntMin) + types.IntMin)}, nil

	case types.KindUint:
		return &ast.UintLit{V: uint32(obj.Rand.Intn(types.IntMax-types.IntMin) + types.IntMin)}, nil

	case types.KindFloat:
		s := types.RandomFloatString(obj.Rand)
		f, err := strconv.ParseFloat(s, 32)
		if err != nil {
			return nil, errwrap.Wrapf(err, "bad random float `%s`", s)
		}
		return floatLit(float32(f)), nil

	case types.KindVector:
		args := []ast.Expr{}
		for i := 0; i < typ.Size; i++ {
			arg, err := obj.random(typ.Elem)
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
		}
		return &ast.Constructor{Type: typ, Args: args}, nil
	}

	return nil, errwrap.Wrapf(types.ErrUnsupportedType, "no literal for %s", typ)
}

func floatLit(f float32) ast.Expr {
	if math.Signbit(float64(f)) {
		return &ast.Unary{Op: ast.OpNeg, X: &ast.FloatLit{V: -f}}
	}
	return &ast.FloatLit{V: f}
}
