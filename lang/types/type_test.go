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
	"testing"

	"github.com/purpleidea/glfuzz/util/errwrap"
)

func TestTypeParse0(t *testing.T) {
	testCases := map[string]*Type{
		"bool":  {Kind: KindBool},
		"int":   {Kind: KindInt},
		"uint":  {Kind: KindUint},
		"float": {Kind: KindFloat},
		"vec2":  {Kind: KindVector, Elem: &Type{Kind: KindFloat}, Size: 2},
		"vec4":  {Kind: KindVector, Elem: &Type{Kind: KindFloat}, Size: 4},
		"ivec3": {Kind: KindVector, Elem: &Type{Kind: KindInt}, Size: 3},
		"uvec2": {Kind: KindVector, Elem: &Type{Kind: KindUint}, Size: 2},
		"bvec4": {Kind: KindVector, Elem: &Type{Kind: KindBool}, Size: 4},

		"struct S":  {Kind: KindStruct, Name: "S"},
		"float[3]":  {Kind: KindArray, Elem: &Type{Kind: KindFloat}, Size: 3},
		"vec2[2]":   {Kind: KindArray, Elem: &Type{Kind: KindVector, Elem: &Type{Kind: KindFloat}, Size: 2}, Size: 2},
		" int ":     {Kind: KindInt},
		"int[1][2]": {Kind: KindArray, Elem: &Type{Kind: KindArray, Elem: &Type{Kind: KindInt}, Size: 1}, Size: 2},
	}

	for s, exp := range testCases {
		typ := NewType(s)
		if typ == nil {
			t.Errorf("type `%s` did not parse", s)
			continue
		}
		if err := typ.Cmp(exp); err != nil {
			t.Errorf("type `%s` did not match expected: %+v", s, err)
		}
	}
}

func TestTypeParse1(t *testing.T) {
	invalid := []string{
		"",
		"vec",
		"vec1",
		"vec5",
		"ivec",
		"double",
		"struct ",
		"[3]",
		"int[0]",
		"int[x]",
		"foo[2]",
	}
	for _, s := range invalid {
		if typ := NewType(s); typ != nil {
			t.Errorf("type `%s` should not parse, got: %s", s, typ)
		}
	}
}

func TestTypeString0(t *testing.T) {
	values := []string{
		"bool",
		"int",
		"uint",
		"float",
		"vec2",
		"vec3",
		"vec4",
		"ivec4",
		"uvec3",
		"bvec2",
		"struct Light",
		"float[4]",
	}
	for _, s := range values {
		if str := NewType(s).String(); str != s {
			t.Errorf("type `%s` printed as `%s`", s, str)
		}
	}
}

func TestTypeCmp0(t *testing.T) {
	testCases := []struct {
		a, b string
		fail bool
	}{
		{"int", "int", false},
		{"int", "uint", true},
		{"vec2", "vec2", false},
		{"vec2", "vec3", true},
		{"vec2", "ivec2", true},
		{"struct A", "struct A", false},
		{"struct A", "struct B", true},
		{"int[2]", "int[3]", true},
	}
	for index, tc := range testCases {
		err := NewType(tc.a).Cmp(NewType(tc.b))
		if tc.fail && err == nil {
			t.Errorf("test #%d: expected `%s` != `%s`", index, tc.a, tc.b)
		}
		if !tc.fail && err != nil {
			t.Errorf("test #%d: expected `%s` == `%s`: %+v", index, tc.a, tc.b, err)
		}
	}
	if err := TypeInt.Cmp(nil); err == nil {
		t.Errorf("expected an error when comparing to nil")
	}
}

func TestTypeSupported0(t *testing.T) {
	for _, typ := range ParamTypes() {
		if err := typ.Supported(); err != nil {
			t.Errorf("type %s should be supported: %+v", typ, err)
		}
	}
	for _, s := range []string{"struct S", "float[2]", "bvec3", "uvec4"} {
		typ := NewType(s)
		err := typ.Supported()
		if typ.Kind == KindVector {
			if err != nil {
				t.Errorf("type %s should be supported: %+v", s, err)
			}
			continue
		}
		if !errwrap.Is(err, ErrUnsupportedType) {
			t.Errorf("type %s should be unsupported, got: %v", s, err)
		}
	}
	var typ *Type
	if err := typ.Supported(); !errwrap.Is(err, ErrUnsupportedType) {
		t.Errorf("nil type should be unsupported")
	}
}

func TestTypeCopy0(t *testing.T) {
	typ := NewType("ivec3")
	cp := typ.Copy()
	cp.Elem.Kind = KindFloat
	if typ.String() != "ivec3" {
		t.Errorf("copy was not deep: %s", typ)
	}
	if s := fmt.Sprintf("%s", cp); s != "vec3" {
		t.Errorf("unexpected copy: %s", s)
	}
}
