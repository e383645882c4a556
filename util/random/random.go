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

// Package random provides the seedable source of randomness that every
// generator in this project draws from.
package random

import (
	"math/rand"
)

// Source is the minimal interface of a random source. It must be
// deterministic for a given seed so that runs can be reproduced.
type Source interface {
	// Intn returns a uniform integer in [0, n). If n <= 0, it returns 0.
	Intn(n int) int

	// Bool returns a uniform boolean.
	Bool() bool
}

// Rand is the default Source, based on math/rand.
type Rand struct {
	r *rand.Rand
}

// New returns a new seeded random source.
func New(seed int64) *Rand {
	return &Rand{
		r: rand.New(rand.NewSource(seed)),
	}
}

// Intn returns a uniform integer in [0, n).
func (obj *Rand) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return obj.r.Intn(n)
}

// Bool returns a uniform boolean.
func (obj *Rand) Bool() bool {
	return obj.r.Intn(2) == 1
}

// Int63 returns a non-negative pseudo-random 63-bit integer. It is useful for
// deriving the seeds of independent child sources.
func (obj *Rand) Int63() int64 {
	return obj.r.Int63()
}

// Scripted replays a fixed list of answers before deferring to a fallback
// source. Integers and booleans are queued separately. A scripted integer is
// reduced modulo n so that it always stays in range. This is mostly useful to
// force a particular decision in a test.
type Scripted struct {
	Ints  []int
	Bools []bool

	// Fallback is used once the script is exhausted. If nil, zero values
	// are returned.
	Fallback Source
}

// Intn returns the next scripted integer, or asks the fallback.
func (obj *Scripted) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	if len(obj.Ints) > 0 {
		x := obj.Ints[0]
		obj.Ints = obj.Ints[1:]
		if x < 0 {
			x = -x
		}
		return x % n
	}
	if obj.Fallback == nil {
		return 0
	}
	return obj.Fallback.Intn(n)
}

// Bool returns the next scripted boolean, or asks the fallback.
func (obj *Scripted) Bool() bool {
	if len(obj.Bools) > 0 {
		b := obj.Bools[0]
		obj.Bools = obj.Bools[1:]
		return b
	}
	if obj.Fallback == nil {
		return false
	}
	return obj.Fallback.Bool()
}
