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
package air

import (
	"github.com/consensys/go-zkevm/pkg/util/field"
)

// Domain determines which rows of a trace a given constraint applies to.
type Domain int

const (
	// AllRows constraints must vanish on every row.
	AllRows Domain = iota
	// Transitions constraints must vanish on every row except the last
	// (whose successor wraps around to the first row).
	Transitions
	// FirstRow constraints must vanish on the first row only.
	FirstRow
)

func (d Domain) String() string {
	switch d {
	case AllRows:
		return "all"
	case Transitions:
		return "transition"
	case FirstRow:
		return "first"
	default:
		return "?"
	}
}

// Accumulator receives the constraints produced by a constraint description,
// one at a time.  What "receiving" means depends on the mode: a Checker
// evaluates each constraint against concrete row values, whilst a Builder
// simply records the expression for later use.
type Accumulator[T any] interface {
	// Constrain a value to be zero on rows selected by the given domain.
	Constrain(handle string, domain Domain, value T)
}

// Checker is the checking-mode accumulator: it walks a trace row by row and
// records a Failure for every constraint which does not vanish where its
// domain says it must.  Failing to satisfy a constraint is an expected
// outcome for an untrusted trace, not a Go error.
type Checker[F field.Element[F]] struct {
	// Row currently being checked.
	row uint
	// Height of the trace being checked.
	height uint
	// Failures accumulated so far.
	failures []Failure
}

// NewChecker constructs a checker for a trace of the given height.
func NewChecker[F field.Element[F]](height uint) *Checker[F] {
	return &Checker[F]{height: height}
}

// SetRow positions this checker on a given row, prior to evaluating the
// constraint description for that row and its successor.
func (p *Checker[F]) SetRow(row uint) {
	p.row = row
}

// Constrain implementation for the Accumulator interface.
func (p *Checker[F]) Constrain(handle string, domain Domain, value F) {
	switch domain {
	case Transitions:
		if p.row == p.height-1 {
			return
		}
	case FirstRow:
		if p.row != 0 {
			return
		}
	}
	//
	if !value.IsZero() {
		p.failures = append(p.failures, Failure{
			Handle: handle,
			Row:    p.row,
			Msg:    "constraint does not vanish (evaluates to " + value.String() + ")",
		})
	}
}

// Failures returns the failures accumulated by this checker, in row order.
func (p *Checker[F]) Failures() []Failure {
	return p.failures
}

// Constraint pairs a built expression with its handle and domain, as produced
// by a Builder.
type Constraint[F field.Element[F]] struct {
	// Handle is a unique identifier for this constraint, useful for
	// debugging and reporting.
	Handle string
	// Domain determines which rows the expression must vanish on.
	Domain Domain
	// Term is the expression which must vanish.
	Term Expr[F]
}

// Builder is the symbolic-mode accumulator: it records every constraint as an
// expression graph.  Construction itself cannot fail; a recorded graph only
// acquires a truth value when later evaluated against concrete rows.
type Builder[F field.Element[F]] struct {
	constraints []Constraint[F]
}

// NewBuilder constructs an empty builder.
func NewBuilder[F field.Element[F]]() *Builder[F] {
	return &Builder[F]{}
}

// Constrain implementation for the Accumulator interface.
func (p *Builder[F]) Constrain(handle string, domain Domain, value Expr[F]) {
	p.constraints = append(p.constraints, Constraint[F]{handle, domain, value})
}

// Constraints returns the constraints recorded so far, in the order they were
// produced.
func (p *Builder[F]) Constraints() []Constraint[F] {
	return p.constraints
}
