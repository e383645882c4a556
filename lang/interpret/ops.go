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

package interpret

import (
	"fmt"
	"math"

	"github.com/purpleidea/glfuzz/lang/types"
	"github.com/purpleidea/glfuzz/util/errwrap"
)

// FloatTolerance is the relative error allowed by Check when it compares
// floats. Synthesized float sums are only exact up to rounding.
const FloatTolerance = 1e-4

// Zero returns the zero value of a type.
func Zero(typ *types.Type) (types.Value, error) {
	if err := typ.Supported(); err != nil {
		return nil, err
	}
	switch typ.Kind {
	case types.KindBool:
		return types.NewBool(false), nil
	case types.KindInt:
		return types.NewInt(0), nil
	case types.KindUint:
		return types.NewUint(0), nil
	case types.KindFloat:
		return types.NewFloat(0), nil
	}
	elems := []types.Value{}
	for i := 0; i < typ.Size; i++ {
		v, err := Zero(typ.Elem)
		if err != nil {
			return nil, err
		}
		elems = append(elems, v)
	}
	return types.NewComposite(typ, elems...)
}

func oneOf(typ *types.Type) (types.Value, error) {
	switch typ.Kind {
	case types.KindInt:
		return types.NewInt(1), nil
	case types.KindUint:
		return types.NewUint(1), nil
	case types.KindFloat:
		return types.NewFloat(1), nil
	}
	return nil, fmt.Errorf("can't step a %s", typ)
}

// Neg negates a numeric value. Vectors are negated element-wise.
func Neg(v types.Value) (types.Value, error) {
	switch x := v.(type) {
	case *types.IntValue:
		return types.NewInt(-x.V), nil
	case *types.UintValue:
		return types.NewUint(-x.V), nil
	case *types.FloatValue:
		return types.NewFloat(-x.V), nil
	case *types.CompositeValue:
		elems := []types.Value{}
		for _, e := range x.V {
			n, err := Neg(e)
			if err != nil {
				return nil, err
			}
			elems = append(elems, n)
		}
		return types.NewComposite(x.T, elems...)
	}
	return nil, fmt.Errorf("can't negate a %s", v.Type())
}

// Add adds two numeric values of the same type. Vectors are added
// element-wise.
func Add(a, b types.Value) (types.Value, error) {
	if err := a.Type().Cmp(b.Type()); err != nil {
		return nil, errwrap.Wrapf(err, "can't add a %s and a %s", a.Type(), b.Type())
	}
	switch x := a.(type) {
	case *types.IntValue:
		return types.NewInt(x.V + b.(*types.IntValue).V), nil
	case *types.UintValue:
		return types.NewUint(x.V + b.(*types.UintValue).V), nil
	case *types.FloatValue:
		return types.NewFloat(x.V + b.(*types.FloatValue).V), nil
	case *types.CompositeValue:
		y := b.(*types.CompositeValue)
		elems := []types.Value{}
		for i := range x.V {
			s, err := Add(x.V[i], y.V[i])
			if err != nil {
				return nil, err
			}
			elems = append(elems, s)
		}
		return types.NewComposite(x.T, elems...)
	}
	return nil, fmt.Errorf("can't add a %s", a.Type())
}

// Compare returns -1, 0 or 1 as a is less than, equal to, or greater than b.
// Only scalar numbers can be compared.
func Compare(a, b types.Value) (int, error) {
	if err := a.Type().Cmp(b.Type()); err != nil {
		return 0, errwrap.Wrapf(err, "can't compare a %s and a %s", a.Type(), b.Type())
	}
	var x, y float64
	switch v := a.(type) {
	case *types.IntValue:
		x, y = float64(v.V), float64(b.(*types.IntValue).V)
	case *types.UintValue:
		x, y = float64(v.V), float64(b.(*types.UintValue).V)
	case *types.FloatValue:
		x, y = float64(v.V), float64(b.(*types.FloatValue).V)
	default:
		return 0, fmt.Errorf("can't compare a %s", a.Type())
	}
	switch {
	case x < y:
		return -1, nil
	case x > y:
		return 1, nil
	}
	return 0, nil
}

// Check returns an error if the computed value doesn't satisfy the target. An
// unknown target, or an unknown element of a target, is satisfied by anything
// of the right type. Floats are compared with FloatTolerance, everything else
// must match exactly.
func Check(target, got types.Value) error {
	if target == nil || got == nil {
		return fmt.Errorf("nil value")
	}
	if err := target.Type().Cmp(got.Type()); err != nil {
		return errwrap.Wrapf(err, "got a %s, expected a %s", got.Type(), target.Type())
	}
	if target.IsUnknown() {
		return nil
	}
	switch x := target.(type) {
	case *types.FloatValue:
		y, ok := got.(*types.FloatValue)
		if !ok {
			return fmt.Errorf("got a %T", got)
		}
		diff := math.Abs(float64(x.V) - float64(y.V))
		if diff > FloatTolerance*math.Max(1, math.Abs(float64(x.V))) {
			return fmt.Errorf("got %s, expected %s", y, x)
		}
		return nil

	case *types.CompositeValue:
		y, ok := got.(*types.CompositeValue)
		if !ok || y.Unknown || len(y.V) != len(x.V) {
			return fmt.Errorf("got %s, expected %s", got, target)
		}
		for i := range x.V {
			if err := Check(x.V[i], y.V[i]); err != nil {
				return errwrap.Wrapf(err, "element %d", i)
			}
		}
		return nil
	}

	if err := target.Cmp(got); err != nil {
		return errwrap.Wrapf(err, "got %s, expected %s", got, target)
	}
	return nil
}
