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

// Package semaphore contains a counting semaphore that bounds how many shaders
// are generated at the same time.
package semaphore

import (
	"context"
	"sync"

	"github.com/purpleidea/glfuzz/util"
)

// ErrClosed is returned when acquiring from a closed semaphore.
const ErrClosed = util.Error("semaphore closed")

// Semaphore is a counting semaphore. Build it with NewSemaphore.
type Semaphore struct {
	c      chan struct{}
	closed chan struct{}
	once   *sync.Once
}

// NewSemaphore creates a new semaphore with this many resources. A size below
// one is treated as one.
func NewSemaphore(size int) *Semaphore {
	return &Semaphore{
		c:      make(chan struct{}, max(1, size)),
		closed: make(chan struct{}),
		once:   &sync.Once{},
	}
}

// Size returns the number of resources.
func (obj *Semaphore) Size() int { return cap(obj.c) }

// Held returns the number of resources that are currently acquired.
func (obj *Semaphore) Held() int { return len(obj.c) }

// Acquire blocks until a resource is free. It errors if the context is done or
// if the semaphore was closed first.
func (obj *Semaphore) Acquire(ctx context.Context) error {
	select {
	case <-obj.closed:
		return ErrClosed
	default:
	}
	select {
	case obj.c <- struct{}{}:
		return nil
	case <-obj.closed:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release gives back a resource. It panics if nothing was acquired.
func (obj *Semaphore) Release() {
	select {
	case <-obj.c:
	default:
		panic("semaphore: release without acquire")
	}
}

// Close wakes up everyone waiting in Acquire. It can be called more than once.
// Resources that are held can still be released.
func (obj *Semaphore) Close() {
	obj.once.Do(func() { close(obj.closed) })
}
