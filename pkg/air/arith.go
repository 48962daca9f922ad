// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package air provides the machinery for describing algebraic constraints
// over adjacent rows of an execution trace.  A constraint description is
// written once against the Arith interface, and can then be instantiated over
// concrete field elements (to check a trace, or to build a proof) or over an
// expression graph (so the same check can be replayed inside a recursive
// verifier).  Both instantiations necessarily encode identical logic, since
// they share a single description.
package air

import (
	"github.com/consensys/go-zkevm/pkg/util/field"
)

// Arith abstracts the handful of operations a constraint description is
// allowed to use.  Implementations must be pure: no call may depend on any
// state beyond its operands.
type Arith[T any] interface {
	// Add x + y
	Add(x, y T) T
	// Sub x - y
	Sub(x, y T) T
	// Mul x * y
	Mul(x, y T) T
	// Constant embeds a small constant.
	Constant(val uint64) T
	// One is the multiplicative identity.
	One() T
}

// FieldArith instantiates Arith directly over elements of a prime field.
// This is the "checking" mode: evaluating a constraint description with it
// yields the concrete value each constraint takes on a given row pair.
type FieldArith[F field.Element[F]] struct{}

// Add implementation for the Arith interface.
func (FieldArith[F]) Add(x, y F) F { return x.Add(y) }

// Sub implementation for the Arith interface.
func (FieldArith[F]) Sub(x, y F) F { return x.Sub(y) }

// Mul implementation for the Arith interface.
func (FieldArith[F]) Mul(x, y F) F { return x.Mul(y) }

// Constant implementation for the Arith interface.
func (FieldArith[F]) Constant(val uint64) F { return field.Uint64[F](val) }

// One implementation for the Arith interface.
func (FieldArith[F]) One() F { return field.One[F]() }
