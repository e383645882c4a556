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

package types

import (
	"strconv"
	"strings"

	"github.com/purpleidea/glfuzz/util/errwrap"
	"github.com/purpleidea/glfuzz/util/random"
)

const (
	// IntMin is the smallest integer that Fuzz and the literal fuzzer pick.
	IntMin = 0

	// IntMax is the bound (exclusive) of the integers that Fuzz and the
	// literal fuzzer pick.
	IntMax = 1 << 17

	// maxDigitsEitherSide bounds the digits before and after the decimal
	// point of a random float.
	maxDigitsEitherSide = 5
)

// Fuzz returns a random value of the given type. With probability one half
// the value is unknown. Known vectors are fuzzed element by element, so an
// individual element can itself be unknown.
func Fuzz(src random.Source, typ *Type) (Value, error) {
	if err := typ.Supported(); err != nil {
		return nil, err
	}
	unknown := src.Bool()

	switch typ.Kind {
	case KindBool:
		if unknown {
			return &BoolValue{Unknown: true}, nil
		}
		return NewBool(src.Bool()), nil

	case KindInt:
		if unknown {
			return &IntValue{Unknown: true}, nil
		}
		return NewInt(int32(src.Intn(IntMax-IntMin) + IntMin)), nil

	case KindUint:
		if unknown {
			return &UintValue{Unknown: true}, nil
		}
		return NewUint(uint32(src.Intn(IntMax-IntMin) + IntMin)), nil

	case KindFloat:
		if unknown {
			return &FloatValue{Unknown: true}, nil
		}
		s := RandomFloatString(src)
		f, err := strconv.ParseFloat(s, 32)
		if err != nil { // programming error
			return nil, errwrap.Wrapf(err, "bad random float `%s`", s)
		}
		return NewFloat(float32(f)), nil

	case KindVector:
		if unknown {
			return &CompositeValue{T: typ, Unknown: true}, nil
		}
		elems := []Value{}
		for i := 0; i < typ.Size; i++ {
			v, err := Fuzz(src, typ.Elem) // recurse
			if err != nil {
				return nil, err
			}
			elems = append(elems, v)
		}
		return NewComposite(typ, elems...)
	}

	return nil, errwrap.Wrapf(ErrUnsupportedType, "can't fuzz %s", typ)
}

// RandomFloatString builds a random decimal string such as `-803.14`. It has
// the same number of digits on either side of the decimal point and never has
// a redundant leading zero.
func RandomFloatString(src random.Source) string {
	sb := &strings.Builder{}
	if src.Bool() {
		sb.WriteString("-")
	}
	digits := src.Intn(maxDigitsEitherSide)
	if digits < 1 {
		digits = 1
	}
	for i := 0; i < digits; i++ {
		var candidate int
		if i == 0 && digits > 1 { // no leading zero
			candidate = 1 + src.Intn(9)
		} else {
			candidate = src.Intn(10)
		}
		sb.WriteString(strconv.Itoa(candidate))
	}
	sb.WriteString(".")
	for i := 0; i < digits; i++ {
		sb.WriteString(strconv.Itoa(src.Intn(10)))
	}
	return sb.String()
}
