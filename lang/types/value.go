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
	"strconv"
	"strings"

	"github.com/purpleidea/glfuzz/util/errwrap"
)

// Value represents a type plus an optional concrete payload. A value whose
// payload is unknown stands for any runtime value of that type. The set of
// implementations is closed: BoolValue, IntValue, UintValue, FloatValue and
// CompositeValue.
type Value interface {
	fmt.Stringer // String() string (for display purposes)
	Type() *Type

	// IsUnknown returns true if the payload is unconstrained.
	IsUnknown() bool

	// Cmp returns an error if the two values aren't the same. Two unknown
	// values of the same type are the same.
	Cmp(Value) error

	// Copy returns a copy of this value.
	Copy() Value

	// Key returns a canonical string such that two values have the same
	// key if and only if Cmp returns nil. It is used as a map key.
	Key() string

	// Fragment returns the piece of an identifier that describes this
	// value, for example `_NEGATIVE_0_45` or `_unknown`.
	Fragment() string

	value() // seal the interface
}

const (
	unknownStr      = "unknown"
	negativeStr     = "_NEGATIVE"
	unknownFragment = "_" + unknownStr
)

// NewValue builds a value of the given type from a golang payload. A nil
// payload builds an unknown value. Scalars accept bool, int, int32, int64,
// uint, uint32, float32 and float64 payloads of the matching kind. Vectors
// accept a []Value of the right length and element type. The result is
// validated and ErrMalformedValue is returned if the payload doesn't fit.
func NewValue(typ *Type, payload interface{}) (Value, error) {
	if typ == nil {
		return nil, errwrap.Wrapf(ErrMalformedValue, "nil type")
	}
	var v Value
	switch typ.Kind {
	case KindBool:
		if payload == nil {
			return &BoolValue{Unknown: true}, nil
		}
		b, ok := payload.(bool)
		if !ok {
			return nil, errwrap.Wrapf(ErrMalformedValue, "bool payload of %T", payload)
		}
		v = &BoolValue{V: b}

	case KindInt:
		if payload == nil {
			return &IntValue{Unknown: true}, nil
		}
		i, err := toInt64(payload)
		if err != nil || i < math.MinInt32 || i > math.MaxInt32 {
			return nil, errwrap.Wrapf(ErrMalformedValue, "int payload %v", payload)
		}
		v = &IntValue{V: int32(i)}

	case KindUint:
		if payload == nil {
			return &UintValue{Unknown: true}, nil
		}
		i, err := toInt64(payload)
		if err != nil || i < 0 || i > math.MaxUint32 {
			return nil, errwrap.Wrapf(ErrMalformedValue, "uint payload %v", payload)
		}
		v = &UintValue{V: uint32(i)}

	case KindFloat:
		if payload == nil {
			return &FloatValue{Unknown: true}, nil
		}
		switch x := payload.(type) {
		case float32:
			v = &FloatValue{V: x}
		case float64:
			v = &FloatValue{V: float32(x)}
		default:
			return nil, errwrap.Wrapf(ErrMalformedValue, "float payload of %T", payload)
		}
		if err := Validate(v); err != nil {
			return nil, err
		}

	default: // vectors, structs, arrays
		if payload == nil {
			v = &CompositeValue{T: typ, Unknown: true}
			break
		}
		values, ok := payload.([]Value)
		if !ok {
			return nil, errwrap.Wrapf(ErrMalformedValue, "%s payload of %T", typ, payload)
		}
		v = &CompositeValue{T: typ, V: values}
	}

	if err := Validate(v); err != nil {
		return nil, err
	}
	return v, nil
}

// Unknown returns the unknown value of the given type.
func Unknown(typ *Type) (Value, error) {
	return NewValue(typ, nil)
}

// MustValue is like NewValue, but it panics on error. It is only meant for
// tests and for package level constants.
func MustValue(typ *Type, payload interface{}) Value {
	v, err := NewValue(typ, payload)
	if err != nil {
		panic(err)
	}
	return v
}

// Validate checks the shape invariant of a value recursively. A known
// composite must have exactly as many elements as its type, and each element
// must have the element type. Known payloads are only defined for vectors.
func Validate(v Value) error {
	switch x := v.(type) {
	case nil:
		return errwrap.Wrapf(ErrMalformedValue, "nil value")

	case *BoolValue, *IntValue, *UintValue:
		return nil

	case *FloatValue:
		// no literal exists for these
		if !x.Unknown && (math.IsInf(float64(x.V), 0) || math.IsNaN(float64(x.V))) {
			return errwrap.Wrapf(ErrMalformedValue, "non-finite float %v", x.V)
		}
		return nil

	case *CompositeValue:
		if x.T == nil {
			return errwrap.Wrapf(ErrMalformedValue, "composite without a type")
		}
		if x.T.IsScalar() {
			return errwrap.Wrapf(ErrMalformedValue, "composite of scalar type %s", x.T)
		}
		if x.Unknown {
			if x.V != nil {
				return errwrap.Wrapf(ErrMalformedValue, "unknown %s has a payload", x.T)
			}
			return nil
		}
		if x.T.Kind != KindVector {
			return errwrap.Wrapf(ErrMalformedValue, "known payload for %s", x.T)
		}
		if len(x.V) != x.T.Size {
			return errwrap.Wrapf(ErrMalformedValue, "%s has %d elements", x.T, len(x.V))
		}
		for i, elem := range x.V {
			if elem == nil {
				return errwrap.Wrapf(ErrMalformedValue, "element %d of %s is nil", i, x.T)
			}
			if err := elem.Type().Cmp(x.T.Elem); err != nil {
				return errwrap.Wrapf(ErrMalformedValue, "element %d of %s is a %s", i, x.T, elem.Type())
			}
			if err := Validate(elem); err != nil {
				return errwrap.Wrapf(err, "element %d of %s", i, x.T)
			}
		}
		return nil
	}

	return errwrap.Wrapf(ErrMalformedValue, "unexpected value %T", v)
}

func toInt64(payload interface{}) (int64, error) {
	switch x := payload.(type) {
	case int:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case int64:
		return x, nil
	case uint:
		if uint64(x) > math.MaxInt64 {
			return 0, fmt.Errorf("overflow")
		}
		return int64(x), nil
	case uint32:
		return int64(x), nil
	}
	return 0, fmt.Errorf("not an integer: %T", payload)
}

// numberFragment formats a magnitude for use in an identifier.
func numberFragment(negative bool, digits string) string {
	s := ""
	if negative {
		s = negativeStr
	}
	return s + "_" + strings.Replace(digits, ".", "_", -1)
}

// cmpCommon does the checks that are shared by all the variants.
func cmpCommon(obj, val Value) error {
	if val == nil {
		return fmt.Errorf("cannot cmp to nil")
	}
	if err := obj.Type().Cmp(val.Type()); err != nil {
		return errwrap.Wrapf(err, "cannot cmp types")
	}
	if obj.IsUnknown() != val.IsUnknown() {
		return fmt.Errorf("known value compared with unknown value")
	}
	return nil
}

// BoolValue represents a boolean value.
type BoolValue struct {
	V       bool
	Unknown bool
}

// NewBool creates a new known boolean value.
func NewBool(b bool) *BoolValue { return &BoolValue{V: b} }

func (obj *BoolValue) value() {}

// String returns a visual representation of this value.
func (obj *BoolValue) String() string {
	if obj.Unknown {
		return unknownStr
	}
	return strconv.FormatBool(obj.V)
}

// Type returns the type data structure that represents this type of value.
func (obj *BoolValue) Type() *Type { return &Type{Kind: KindBool} }

// IsUnknown returns true if the payload is unconstrained.
func (obj *BoolValue) IsUnknown() bool { return obj.Unknown }

// Cmp returns an error if this value isn't the same as the arg passed in.
func (obj *BoolValue) Cmp(val Value) error {
	if err := cmpCommon(obj, val); err != nil {
		return err
	}
	if obj.Unknown {
		return nil
	}
	x, ok := val.(*BoolValue)
	if !ok {
		return fmt.Errorf("value is not a %T", obj)
	}
	if obj.V != x.V {
		return fmt.Errorf("values are different")
	}
	return nil
}

// Copy returns a copy of this value.
func (obj *BoolValue) Copy() Value {
	return &BoolValue{V: obj.V, Unknown: obj.Unknown}
}

// Key returns a canonical string for hashing.
func (obj *BoolValue) Key() string { return "bool:" + obj.String() }

// Fragment returns the identifier fragment for this value.
func (obj *BoolValue) Fragment() string {
	if obj.Unknown {
		return unknownFragment
	}
	return "_" + strconv.FormatBool(obj.V)
}

// IntValue represents a signed 32 bit integer value.
type IntValue struct {
	V       int32
	Unknown bool
}

// NewInt creates a new known integer value.
func NewInt(i int32) *IntValue { return &IntValue{V: i} }

func (obj *IntValue) value() {}

// String returns a visual representation of this value.
func (obj *IntValue) String() string {
	if obj.Unknown {
		return unknownStr
	}
	return strconv.FormatInt(int64(obj.V), 10)
}

// Type returns the type data structure that represents this type of value.
func (obj *IntValue) Type() *Type { return &Type{Kind: KindInt} }

// IsUnknown returns true if the payload is unconstrained.
func (obj *IntValue) IsUnknown() bool { return obj.Unknown }

// Cmp returns an error if this value isn't the same as the arg passed in.
func (obj *IntValue) Cmp(val Value) error {
	if err := cmpCommon(obj, val); err != nil {
		return err
	}
	if obj.Unknown {
		return nil
	}
	x, ok := val.(*IntValue)
	if !ok {
		return fmt.Errorf("value is not a %T", obj)
	}
	if obj.V != x.V {
		return fmt.Errorf("values are different (%d != %d)", obj.V, x.V)
	}
	return nil
}

// Copy returns a copy of this value.
func (obj *IntValue) Copy() Value {
	return &IntValue{V: obj.V, Unknown: obj.Unknown}
}

// Key returns a canonical string for hashing.
func (obj *IntValue) Key() string { return "int:" + obj.String() }

// Fragment returns the identifier fragment for this value.
func (obj *IntValue) Fragment() string {
	if obj.Unknown {
		return unknownFragment
	}
	mag := int64(obj.V)
	if mag < 0 {
		mag = -mag
	}
	return numberFragment(obj.V < 0, strconv.FormatInt(mag, 10))
}

// UintValue represents an unsigned 32 bit integer value.
type UintValue struct {
	V       uint32
	Unknown bool
}

// NewUint creates a new known unsigned integer value.
func NewUint(i uint32) *UintValue { return &UintValue{V: i} }

func (obj *UintValue) value() {}

// String returns a visual representation of this value.
func (obj *UintValue) String() string {
	if obj.Unknown {
		return unknownStr
	}
	return strconv.FormatUint(uint64(obj.V), 10) + "u"
}

// Type returns the type data structure that represents this type of value.
func (obj *UintValue) Type() *Type { return &Type{Kind: KindUint} }

// IsUnknown returns true if the payload is unconstrained.
func (obj *UintValue) IsUnknown() bool { return obj.Unknown }

// Cmp returns an error if this value isn't the same as the arg passed in.
func (obj *UintValue) Cmp(val Value) error {
	if err := cmpCommon(obj, val); err != nil {
		return err
	}
	if obj.Unknown {
		return nil
	}
	x, ok := val.(*UintValue)
	if !ok {
		return fmt.Errorf("value is not a %T", obj)
	}
	if obj.V != x.V {
		return fmt.Errorf("values are different (%d != %d)", obj.V, x.V)
	}
	return nil
}

// Copy returns a copy of this value.
func (obj *UintValue) Copy() Value {
	return &UintValue{V: obj.V, Unknown: obj.Unknown}
}

// Key returns a canonical string for hashing.
func (obj *UintValue) Key() string { return "uint:" + obj.String() }

// Fragment returns the identifier fragment for this value.
func (obj *UintValue) Fragment() string {
	if obj.Unknown {
		return unknownFragment
	}
	return numberFragment(false, strconv.FormatUint(uint64(obj.V), 10))
}

// FloatValue represents a 32 bit floating point value.
type FloatValue struct {
	V       float32
	Unknown bool
}

// NewFloat creates a new known floating point value.
func NewFloat(f float32) *FloatValue { return &FloatValue{V: f} }

func (obj *FloatValue) value() {}

// String returns a visual representation of this value. It always contains a
// decimal point, so it is also a valid float literal for a non-negative value.
func (obj *FloatValue) String() string {
	if obj.Unknown {
		return unknownStr
	}
	return FormatFloat(obj.V)
}

// Type returns the type data structure that represents this type of value.
func (obj *FloatValue) Type() *Type { return &Type{Kind: KindFloat} }

// IsUnknown returns true if the payload is unconstrained.
func (obj *FloatValue) IsUnknown() bool { return obj.Unknown }

// Cmp returns an error if this value isn't the same as the arg passed in. The
// comparison is on the bit pattern so that it agrees with Key.
func (obj *FloatValue) Cmp(val Value) error {
	if err := cmpCommon(obj, val); err != nil {
		return err
	}
	if obj.Unknown {
		return nil
	}
	x, ok := val.(*FloatValue)
	if !ok {
		return fmt.Errorf("value is not a %T", obj)
	}
	if math.Float32bits(obj.V) != math.Float32bits(x.V) {
		return fmt.Errorf("values are different (%s != %s)", FormatFloat(obj.V), FormatFloat(x.V))
	}
	return nil
}

// Copy returns a copy of this value.
func (obj *FloatValue) Copy() Value {
	return &FloatValue{V: obj.V, Unknown: obj.Unknown}
}

// Key returns a canonical string for hashing.
func (obj *FloatValue) Key() string {
	if obj.Unknown {
		return "float:" + unknownStr
	}
	return "float:" + strconv.FormatUint(uint64(math.Float32bits(obj.V)), 16)
}

// Fragment returns the identifier fragment for this value.
func (obj *FloatValue) Fragment() string {
	if obj.Unknown {
		return unknownFragment
	}
	f := obj.V
	negative := f < 0
	if negative {
		f = -f
	}
	return numberFragment(negative, FormatFloat(f))
}

// FormatFloat prints a float in plain decimal notation with at least one digit
// after the decimal point.
func FormatFloat(f float32) string {
	s := strconv.FormatFloat(float64(f), 'f', -1, 32)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// CompositeValue represents a vector value, or an unknown struct or array. The
// elements are stored in order.
type CompositeValue struct {
	T       *Type
	V       []Value
	Unknown bool
}

// NewComposite creates a new known vector from its elements.
func NewComposite(typ *Type, elems ...Value) (*CompositeValue, error) {
	v, err := NewValue(typ, elems)
	if err != nil {
		return nil, err
	}
	x, ok := v.(*CompositeValue)
	if !ok {
		return nil, errwrap.Wrapf(ErrMalformedValue, "%s is not a composite", typ)
	}
	return x, nil
}

func (obj *CompositeValue) value() {}

// String returns a visual representation of this value.
func (obj *CompositeValue) String() string {
	if obj.Unknown {
		return unknownStr
	}
	elems := []string{}
	for _, x := range obj.V {
		elems = append(elems, x.String())
	}
	return fmt.Sprintf("%s(%s)", obj.T.String(), strings.Join(elems, ", "))
}

// Type returns the type data structure that represents this type of value.
func (obj *CompositeValue) Type() *Type { return obj.T }

// IsUnknown returns true if the payload is unconstrained.
func (obj *CompositeValue) IsUnknown() bool { return obj.Unknown }

// Cmp returns an error if this value isn't the same as the arg passed in. The
// elements are compared structurally and in order.
func (obj *CompositeValue) Cmp(val Value) error {
	if err := cmpCommon(obj, val); err != nil {
		return err
	}
	if obj.Unknown {
		return nil
	}
	x, ok := val.(*CompositeValue)
	if !ok {
		return fmt.Errorf("value is not a %T", obj)
	}
	if len(obj.V) != len(x.V) {
		return fmt.Errorf("lengths differ (%d != %d)", len(obj.V), len(x.V))
	}
	for i := range obj.V {
		if err := obj.V[i].Cmp(x.V[i]); err != nil {
			return errwrap.Wrapf(err, "element %d is different", i)
		}
	}
	return nil
}

// Copy returns a copy of this value.
func (obj *CompositeValue) Copy() Value {
	v := &CompositeValue{T: obj.T.Copy(), Unknown: obj.Unknown}
	if obj.V != nil {
		v.V = []Value{}
		for _, x := range obj.V {
			v.V = append(v.V, x.Copy())
		}
	}
	return v
}

// Key returns a canonical string for hashing.
func (obj *CompositeValue) Key() string {
	if obj.Unknown {
		return obj.T.String() + ":" + unknownStr
	}
	keys := []string{}
	for _, x := range obj.V {
		keys = append(keys, x.Key())
	}
	return obj.T.String() + ":[" + strings.Join(keys, ",") + "]"
}

// Fragment returns the identifier fragment for this value. A known vector is
// described by the concatenation of the fragments of its elements.
func (obj *CompositeValue) Fragment() string {
	if obj.Unknown {
		return unknownFragment
	}
	s := ""
	for _, x := range obj.V {
		s += x.Fragment()
	}
	return s
}
