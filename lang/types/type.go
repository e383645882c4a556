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

// Package types provides the type and value model used by the expression
// synthesis engine. A value is a type plus an optional concrete payload.
package types

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/purpleidea/glfuzz/util"
	"github.com/purpleidea/glfuzz/util/errwrap"
)

const (
	// ErrMalformedValue is returned when the payload of a value does not
	// match the shape of its type. This is a programming error.
	ErrMalformedValue = util.Error("malformed value")

	// ErrUnsupportedType is returned when a struct or array type is used
	// somewhere that only scalar and vector types can be synthesized.
	ErrUnsupportedType = util.Error("unsupported type")
)

// Basic types defined here as a convenience for use with Type.Cmp(X).
var (
	TypeBool  = NewType("bool")
	TypeInt   = NewType("int")
	TypeUint  = NewType("uint")
	TypeFloat = NewType("float")
	TypeVec2  = NewType("vec2")
	TypeVec3  = NewType("vec3")
	TypeVec4  = NewType("vec4")
)

// The Kind represents the base type of each value.
type Kind int

// Each Kind represents a type in the shading language type system.
const (
	KindNil Kind = iota
	KindBool
	KindInt
	KindUint
	KindFloat
	KindVector
	KindStruct
	KindArray
)

// String returns a short name for the kind.
func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindUint:
		return "uint"
	case KindFloat:
		return "float"
	case KindVector:
		return "vector"
	case KindStruct:
		return "struct"
	case KindArray:
		return "array"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Type is the datastructure representing any type. Vectors and arrays nest an
// element type.
type Type struct {
	Kind Kind

	Elem *Type  // if Kind == Vector or Array
	Size int    // if Kind == Vector (2, 3 or 4) or Array (length)
	Name string // if Kind == Struct
}

// vectorPrefixes maps a scalar element kind onto the vector name prefix.
var vectorPrefixes = map[Kind]string{
	KindFloat: "vec",
	KindInt:   "ivec",
	KindUint:  "uvec",
	KindBool:  "bvec",
}

// NewType creates the type from the string representation. It returns nil if
// the string can't be parsed. Recognized forms are the scalar names, the
// vector names such as vec3 or bvec2, `struct NAME` and `T[N]` arrays.
func NewType(s string) *Type {
	s = strings.TrimSpace(s)

	switch s {
	case "bool":
		return &Type{Kind: KindBool}
	case "int":
		return &Type{Kind: KindInt}
	case "uint":
		return &Type{Kind: KindUint}
	case "float":
		return &Type{Kind: KindFloat}
	}

	if strings.HasPrefix(s, "struct ") {
		name := strings.TrimSpace(strings.TrimPrefix(s, "struct "))
		if name == "" || strings.ContainsAny(name, " []") {
			return nil
		}
		return &Type{Kind: KindStruct, Name: name}
	}

	if strings.HasSuffix(s, "]") {
		ix := strings.LastIndex(s, "[")
		if ix <= 0 {
			return nil
		}
		n, err := strconv.Atoi(s[ix+1 : len(s)-1])
		if err != nil || n < 1 {
			return nil
		}
		elem := NewType(s[:ix]) // recurse
		if elem == nil {
			return nil
		}
		return &Type{Kind: KindArray, Elem: elem, Size: n}
	}

	for kind, prefix := range vectorPrefixes {
		if !strings.HasPrefix(s, prefix) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimPrefix(s, prefix))
		if err != nil || n < 2 || n > 4 {
			continue // vec vs ivec share a suffix, keep looking
		}
		return &Type{Kind: KindVector, Elem: &Type{Kind: kind}, Size: n}
	}

	return nil
}

// String returns the textual representation for this type. It is the same
// string that the shading language uses.
func (obj *Type) String() string {
	if obj == nil {
		return "<nil>"
	}
	switch obj.Kind {
	case KindBool, KindInt, KindUint, KindFloat:
		return obj.Kind.String()

	case KindVector:
		if obj.Elem == nil {
			return "<malformed vector>"
		}
		prefix, exists := vectorPrefixes[obj.Elem.Kind]
		if !exists {
			return "<malformed vector>"
		}
		return fmt.Sprintf("%s%d", prefix, obj.Size)

	case KindStruct:
		return "struct " + obj.Name

	case KindArray:
		return fmt.Sprintf("%s[%d]", obj.Elem.String(), obj.Size)
	}

	return "<nil>"
}

// Cmp compares this type to another one. It returns nil if they are equal.
func (obj *Type) Cmp(typ *Type) error {
	if obj == nil || typ == nil {
		return fmt.Errorf("cannot compare to nil")
	}
	if obj.Kind != typ.Kind {
		return fmt.Errorf("base kind does not match (%s != %s)", obj.Kind, typ.Kind)
	}
	switch obj.Kind {
	case KindVector, KindArray:
		if obj.Size != typ.Size {
			return fmt.Errorf("size does not match (%d != %d)", obj.Size, typ.Size)
		}
		if err := obj.Elem.Cmp(typ.Elem); err != nil {
			return errwrap.Wrapf(err, "element type does not match")
		}
	case KindStruct:
		if obj.Name != typ.Name {
			return fmt.Errorf("struct name does not match (%s != %s)", obj.Name, typ.Name)
		}
	}
	return nil
}

// Copy copies this type so that you can mutate it without side effects.
func (obj *Type) Copy() *Type {
	if obj == nil {
		return nil
	}
	return &Type{
		Kind: obj.Kind,
		Elem: obj.Elem.Copy(),
		Size: obj.Size,
		Name: obj.Name,
	}
}

// IsScalar returns true for bool, int, uint and float.
func (obj *Type) IsScalar() bool {
	switch obj.Kind {
	case KindBool, KindInt, KindUint, KindFloat:
		return true
	}
	return false
}

// IsNumeric returns true for the scalar int, uint and float types.
func (obj *Type) IsNumeric() bool {
	switch obj.Kind {
	case KindInt, KindUint, KindFloat:
		return true
	}
	return false
}

// NumElements returns the number of components of a vector, or one for a
// scalar.
func (obj *Type) NumElements() int {
	if obj.Kind == KindVector {
		return obj.Size
	}
	return 1
}

// Supported returns nil if values of this type can be synthesized. Structs and
// arrays, as well as anything malformed, return ErrUnsupportedType.
func (obj *Type) Supported() error {
	if obj == nil {
		return errwrap.Wrapf(ErrUnsupportedType, "nil type")
	}
	switch obj.Kind {
	case KindBool, KindInt, KindUint, KindFloat:
		return nil
	case KindVector:
		if obj.Elem == nil || !obj.Elem.IsScalar() || obj.Size < 2 || obj.Size > 4 {
			return errwrap.Wrapf(ErrUnsupportedType, "malformed vector type")
		}
		return nil
	}
	return errwrap.Wrapf(ErrUnsupportedType, "type `%s`", obj.String())
}

// ParamTypes returns the default list of types which generated functions may
// take as parameters.
func ParamTypes() []*Type {
	return []*Type{
		TypeBool,
		TypeInt,
		TypeUint,
		TypeFloat,
		TypeVec2,
		TypeVec3,
		TypeVec4,
	}
}
