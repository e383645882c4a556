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
	"fmt"
	"math"
	"testing"

	"github.com/purpleidea/glfuzz/util/errwrap"
	"github.com/purpleidea/glfuzz/util/random"
)

func vec(typ *Type, elems ...Value) Value {
	v, err := NewComposite(typ, elems...)
	if err != nil {
		panic(err)
	}
	return v
}

func TestPrint1(t *testing.T) {
	testCases := map[Value]string{
		NewBool(true):              "true",
		NewBool(false):             "false",
		&BoolValue{Unknown: true}:  "unknown",
		NewInt(0):                  "0",
		NewInt(42):                 "42",
		NewInt(-13):                "-13",
		NewUint(7):                 "7u",
		NewFloat(0):                "0.0",
		NewFloat(-4.2):             "-4.2",
		NewFloat(1.5):              "1.5",
		NewFloat(7):                "7.0",
		&FloatValue{Unknown: true}: "unknown",
		vec(TypeVec2, NewFloat(1), NewFloat(-0.5)): "vec2(1.0, -0.5)",
		&CompositeValue{T: TypeVec3, Unknown: true}:    "unknown",
	}

	for v, exp := range testCases {
		if s := v.String(); s != exp {
			t.Errorf("value printed as `%s`, expected `%s`", s, exp)
		}
	}
}

func TestFragment0(t *testing.T) {
	testCases := []struct {
		value    Value
		fragment string
	}{
		{NewInt(7), "_7"},
		{NewInt(-103), "_NEGATIVE_103"},
		{NewUint(12), "_12"},
		{NewFloat(0.45), "_0_45"},
		{NewFloat(-0.45), "_NEGATIVE_0_45"},
		{NewFloat(1), "_1_0"},
		{NewBool(true), "_true"},
		{&IntValue{Unknown: true}, "_unknown"},
		{&CompositeValue{T: TypeVec4, Unknown: true}, "_unknown"},
		{vec(TypeVec2, NewFloat(1), &FloatValue{Unknown: true}), "_1_0_unknown"},
		{vec(NewType("ivec2"), NewInt(-1), NewInt(2)), "_NEGATIVE_1_2"},
	}
	for index, tc := range testCases {
		if s := tc.value.Fragment(); s != tc.fragment {
			t.Errorf("test #%d: fragment of %s was `%s`, expected `%s`", index, tc.value, s, tc.fragment)
		}
	}
}

func TestNewValue0(t *testing.T) {
	type test struct { // an individual test
		name    string
		typ     *Type
		payload interface{}
		fail    bool
		exp     Value
	}
	testCases := []test{
		{"unknown bool", TypeBool, nil, false, &BoolValue{Unknown: true}},
		{"bool", TypeBool, true, false, NewBool(true)},
		{"int", TypeInt, 5, false, NewInt(5)},
		{"int32", TypeInt, int32(-5), false, NewInt(-5)},
		{"int overflow", TypeInt, int64(math.MaxInt32) + 1, true, nil},
		{"uint", TypeUint, uint32(5), false, NewUint(5)},
		{"negative uint", TypeUint, -1, true, nil},
		{"float64", TypeFloat, 0.5, false, NewFloat(0.5)},
		{"float32", TypeFloat, float32(0.25), false, NewFloat(0.25)},
		{"float from int", TypeFloat, 1, true, nil},
		{"infinite float", TypeFloat, math.Inf(1), true, nil},
		{"float overflow", TypeFloat, 1e40, true, nil},
		{"nan float", TypeFloat, float32(math.NaN()), true, nil},
		{"bool from int", TypeBool, 1, true, nil},
		{"int from string", TypeInt, "1", true, nil},
		{"vec2", TypeVec2, []Value{NewFloat(1), NewFloat(2)}, false, vec(TypeVec2, NewFloat(1), NewFloat(2))},
		{"vec2 short", TypeVec2, []Value{NewFloat(1)}, true, nil},
		{"vec2 long", TypeVec2, []Value{NewFloat(1), NewFloat(2), NewFloat(3)}, true, nil},
		{"vec2 of ints", TypeVec2, []Value{NewInt(1), NewInt(2)}, true, nil},
		{"vec2 nil elem", TypeVec2, []Value{NewFloat(1), nil}, true, nil},
		{"vec2 from floats", TypeVec2, []float32{1, 2}, true, nil},
		{"unknown vec3", TypeVec3, nil, false, &CompositeValue{T: TypeVec3, Unknown: true}},
		{"unknown struct", NewType("struct S"), nil, false, &CompositeValue{T: NewType("struct S"), Unknown: true}},
		{"known struct", NewType("struct S"), []Value{}, true, nil},
		{"known array", NewType("int[1]"), []Value{NewInt(1)}, true, nil},
		{"nil type", nil, 1, true, nil},
	}

	for index, tc := range testCases {
		t.Run(fmt.Sprintf("test #%d (%s)", index, tc.name), func(t *testing.T) {
			v, err := NewValue(tc.typ, tc.payload)
			if tc.fail {
				if err == nil {
					t.Errorf("test #%d: expected failure, got: %s", index, v)
					return
				}
				if !errwrap.Is(err, ErrMalformedValue) {
					t.Errorf("test #%d: expected a malformed value error, got: %+v", index, err)
				}
				return
			}
			if err != nil {
				t.Errorf("test #%d: unexpected error: %+v", index, err)
				return
			}
			if err := v.Cmp(tc.exp); err != nil {
				t.Errorf("test #%d: value %s did not match %s: %+v", index, v, tc.exp, err)
			}
		})
	}
}

func TestValidate0(t *testing.T) {
	bad := []Value{
		nil,
		&CompositeValue{},
		&CompositeValue{T: TypeInt},
		&CompositeValue{T: TypeVec2, Unknown: true, V: []Value{NewFloat(1), NewFloat(2)}},
		&CompositeValue{T: TypeVec2, V: []Value{NewFloat(1), &CompositeValue{T: TypeVec2, Unknown: true}}},
		NewFloat(float32(math.Inf(1))),
		NewFloat(float32(math.Inf(-1))),
		NewFloat(float32(math.NaN())),
		&CompositeValue{T: TypeVec2, V: []Value{NewFloat(1), NewFloat(float32(math.NaN()))}},
	}
	for index, v := range bad {
		if err := Validate(v); !errwrap.Is(err, ErrMalformedValue) {
			t.Errorf("test #%d: expected a malformed value, got: %v", index, err)
		}
	}
}

func TestCmp0(t *testing.T) {
	testCases := []struct {
		a, b  Value
		equal bool
	}{
		{NewInt(1), NewInt(1), true},
		{NewInt(1), NewInt(2), false},
		{NewInt(1), NewUint(1), false},
		{NewInt(1), &IntValue{Unknown: true}, false},
		{&IntValue{Unknown: true}, &IntValue{Unknown: true}, true},
		{&IntValue{Unknown: true}, &FloatValue{Unknown: true}, false},
		{NewFloat(0.1), NewFloat(0.1), true},
		{NewFloat(0.1), NewFloat(0.2), false},
		{NewBool(true), NewBool(true), true},
		{NewBool(true), NewBool(false), false},
		{&CompositeValue{T: TypeVec2, Unknown: true}, &CompositeValue{T: TypeVec2, Unknown: true}, true},
		{&CompositeValue{T: TypeVec2, Unknown: true}, &CompositeValue{T: TypeVec3, Unknown: true}, false},
		// structural, not by reference
		{vec(TypeVec2, NewFloat(1), NewFloat(2)), vec(TypeVec2, NewFloat(1), NewFloat(2)), true},
		{vec(TypeVec2, NewFloat(1), NewFloat(2)), vec(TypeVec2, NewFloat(2), NewFloat(1)), false},
		{vec(TypeVec2, NewFloat(1), NewFloat(2)), &CompositeValue{T: TypeVec2, Unknown: true}, false},
		{vec(TypeVec2, NewFloat(1), &FloatValue{Unknown: true}), vec(TypeVec2, NewFloat(1), &FloatValue{Unknown: true}), true},
	}
	for index, tc := range testCases {
		err := tc.a.Cmp(tc.b)
		if tc.equal && err != nil {
			t.Errorf("test #%d: expected %s == %s: %+v", index, tc.a, tc.b, err)
		}
		if !tc.equal && err == nil {
			t.Errorf("test #%d: expected %s != %s", index, tc.a, tc.b)
		}
		// the hash key must agree with the comparison
		if same := tc.a.Key() == tc.b.Key(); same != tc.equal {
			t.Errorf("test #%d: key of %s and %s disagrees with cmp", index, tc.a, tc.b)
		}
		if err := tc.a.Cmp(nil); err == nil {
			t.Errorf("test #%d: expected an error when comparing to nil", index)
		}
	}
}

func TestCopy0(t *testing.T) {
	a := vec(TypeVec2, NewFloat(1), NewFloat(2))
	b := a.Copy()
	if err := a.Cmp(b); err != nil {
		t.Errorf("copy is different: %+v", err)
	}
	b.(*CompositeValue).V[0] = NewFloat(3)
	if err := a.Cmp(vec(TypeVec2, NewFloat(1), NewFloat(2))); err != nil {
		t.Errorf("copy was not deep: %+v", err)
	}
}

func TestFuzz0(t *testing.T) {
	src := random.New(7)
	for _, typ := range ParamTypes() {
		known, unknown := 0, 0
		for i := 0; i < 200; i++ {
			v, err := Fuzz(src, typ)
			if err != nil {
				t.Errorf("could not fuzz %s: %+v", typ, err)
				return
			}
			if err := Validate(v); err != nil {
				t.Errorf("fuzzed an invalid value: %+v", err)
				return
			}
			if err := v.Type().Cmp(typ); err != nil {
				t.Errorf("fuzzed value %s has the wrong type: %+v", v, err)
				return
			}
			if v.IsUnknown() {
				unknown++
				continue
			}
			known++
			switch x := v.(type) {
			case *IntValue:
				if x.V < IntMin || x.V >= IntMax {
					t.Errorf("int out of range: %d", x.V)
				}
			case *UintValue:
				if x.V >= IntMax {
					t.Errorf("uint out of range: %d", x.V)
				}
			}
		}
		if known == 0 || unknown == 0 {
			t.Errorf("fuzzing %s is lopsided: %d known, %d unknown", typ, known, unknown)
		}
	}

	if _, err := Fuzz(src, NewType("struct S")); !errwrap.Is(err, ErrUnsupportedType) {
		t.Errorf("expected unsupported type, got: %v", err)
	}
}

func TestRandomFloatString0(t *testing.T) {
	src := &random.Scripted{
		Bools: []bool{true},
		Ints:  []int{3, 0, 5, 2, 1, 4, 9}, // three digits each side, first one is 1+0
	}
	if s := RandomFloatString(src); s != "-152.149" {
		t.Errorf("unexpected float string: %s", s)
	}
	for i := 0; i < 100; i++ {
		s := RandomFloatString(random.New(int64(i)))
		if len(s) > 1 && s[0] == '0' && s[1] != '.' {
			t.Errorf("leading zero in %s", s)
		}
	}
}
