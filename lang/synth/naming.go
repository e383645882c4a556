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
	"strconv"

	"github.com/purpleidea/glfuzz/lang/types"

	"github.com/iancoleman/strcase"
)

// The prefixes of the generated names.
const (
	PrefixVariable       = "_GLF_PRIMITIVE"
	PrefixGlobalVariable = "_GLF_PRIMITIVE_GLOBAL"
	PrefixFunction       = "_GLF_COMPUTE"
	PrefixParam          = "_GLF_PARAM"
	PrefixUnknownParam   = "_GLF_UNKNOWN_PARAM"
	PrefixLoopCounter    = "_GLF_LOOP_COUNTER"

	idSep = "_id_"
)

// freshID returns the next id of the session.
func (obj *Generator) freshID() string {
	id := obj.id
	obj.id++
	return idSep + strconv.Itoa(id)
}

// varName names a variable after its value, for example
// _GLF_PRIMITIVE_int_NEGATIVE_103_id_18.
func (obj *Generator) varName(value types.Value, global bool) string {
	prefix := PrefixVariable
	if global {
		prefix = PrefixGlobalVariable
	}
	return prefix + "_" + value.Type().String() + value.Fragment() + obj.freshID()
}

// functionName names a function after its return value, for example
// _GLF_COMPUTE_float_1_0_id_0.
func (obj *Generator) functionName(value types.Value) string {
	return PrefixFunction + "_" + value.Type().String() + value.Fragment() + obj.freshID()
}

// paramName names a parameter after its type, for example _GLF_PARAM_INT_id_62.
func (obj *Generator) paramName(typ *types.Type, unknown bool) string {
	prefix := PrefixParam
	if unknown {
		prefix = PrefixUnknownParam
	}
	return prefix + "_" + strcase.ToScreamingSnake(typ.String()) + obj.freshID()
}

// loopCounterName names the counter of an accumulation loop.
func (obj *Generator) loopCounterName() string {
	return PrefixLoopCounter + obj.freshID()
}
