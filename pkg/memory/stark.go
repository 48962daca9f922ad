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
package memory

import (
	"fmt"

	"github.com/consensys/go-zkevm/pkg/air"
	"github.com/consensys/go-zkevm/pkg/segments"
	"github.com/consensys/go-zkevm/pkg/util/field"
)

// MaxConstraintDegree bounds the total degree of every constraint produced by
// EvalConstraints.  Products are built stepwise so no intermediate exceeds
// it.
const MaxConstraintDegree = 3

// EvalConstraints describes every algebraic invariant of the memory table
// over one pair of adjacent rows.  The description is written once against
// the Arith interface: instantiated with FieldArith it checks concrete rows,
// and with ExprArith it builds the expression graphs replayed inside the
// recursive verifier.  Identical logic in both modes is therefore structural
// rather than maintained by hand.
func EvalConstraints[T any](a air.Arith[T], lv, nv []T, acc air.Accumulator[T]) {
	var (
		one = a.One()
		//
		active       = lv[ColActive]
		isRead       = lv[ColIsRead]
		timestamp    = lv[ColTimestamp]
		timestampInv = lv[ColTimestampInv]
		context      = lv[ColAddrContext]
		segment      = lv[ColAddrSegment]
		virt         = lv[ColAddrVirtual]
		//
		nextIsRead    = nv[ColIsRead]
		nextTimestamp = nv[ColTimestamp]
		nextContext   = nv[ColAddrContext]
		nextSegment   = nv[ColAddrSegment]
		nextVirt      = nv[ColAddrVirtual]
	)
	// The active flag must be 0 or 1.
	acc.Constrain("active-boolean", air.AllRows, a.Mul(active, a.Sub(active, one)))
	// The read flag must be 0 or 1.
	acc.Constrain("is-read-boolean", air.AllRows, a.Mul(isRead, a.Sub(isRead, one)))
	// Synthetic rows must be reads: the prover may insert reads the machine
	// never performed (harmless), but never writes.
	acc.Constrain("synthetic-row-is-read", air.AllRows,
		a.Mul(a.Sub(one, active), a.Sub(one, isRead)))
	//
	var (
		contextChange = lv[ColContextFirstChange]
		segmentChange = lv[ColSegmentFirstChange]
		virtualChange = lv[ColVirtualFirstChange]
		unchanged     = a.Sub(a.Sub(a.Sub(one, contextChange), segmentChange), virtualChange)
		//
		notUnchanged = a.Sub(one, unchanged)
		//
		contextDelta = a.Sub(nextContext, context)
		segmentDelta = a.Sub(nextSegment, segment)
		virtualDelta = a.Sub(nextVirt, virt)
	)
	// Ordering, first family: the change flags (and their complement sum)
	// are boolean, making them mutually exclusive.
	acc.Constrain("context-change-boolean", air.AllRows,
		a.Mul(contextChange, a.Sub(contextChange, one)))
	acc.Constrain("segment-change-boolean", air.AllRows,
		a.Mul(segmentChange, a.Sub(segmentChange, one)))
	acc.Constrain("virtual-change-boolean", air.AllRows,
		a.Mul(virtualChange, a.Sub(virtualChange, one)))
	acc.Constrain("address-unchanged-boolean", air.AllRows,
		a.Mul(unchanged, notUnchanged))
	// Ordering, second family: nothing above the flagged component may
	// change.
	acc.Constrain("segment-change-context-fixed", air.Transitions,
		a.Mul(segmentChange, contextDelta))
	acc.Constrain("virtual-change-context-fixed", air.Transitions,
		a.Mul(virtualChange, contextDelta))
	acc.Constrain("virtual-change-segment-fixed", air.Transitions,
		a.Mul(virtualChange, segmentDelta))
	acc.Constrain("unchanged-context-fixed", air.Transitions,
		a.Mul(unchanged, contextDelta))
	acc.Constrain("unchanged-segment-fixed", air.Transitions,
		a.Mul(unchanged, segmentDelta))
	acc.Constrain("unchanged-virtual-fixed", air.Transitions,
		a.Mul(unchanged, virtualDelta))
	// Ordering, third family: the stored range check equals the delta of the
	// flagged component (minus one), or the timestamp delta when the address
	// is unchanged.
	rangeCheck := a.Add(
		a.Add(
			a.Mul(contextChange, a.Sub(contextDelta, one)),
			a.Mul(segmentChange, a.Sub(segmentDelta, one))),
		a.Add(
			a.Mul(virtualChange, a.Sub(virtualDelta, one)),
			a.Mul(unchanged, a.Sub(nextTimestamp, timestamp))))
	acc.Constrain("range-check-value", air.Transitions,
		a.Sub(lv[ColRangeCheck], rangeCheck))
	// The preinitialized-segment products are reconstructed from the next
	// segment against the four preinitialized ordinals, in two steps to stay
	// within the degree bound.
	preinit := segments.PreinitializedSegments
	//
	acc.Constrain("preinitialized-aux-product", air.Transitions,
		a.Sub(lv[ColPreinitSegmentsAux],
			a.Mul(
				a.Sub(nextSegment, a.Constant(preinit[2].Ordinal())),
				a.Sub(nextSegment, a.Constant(preinit[3].Ordinal())))))
	acc.Constrain("preinitialized-product", air.Transitions,
		a.Sub(lv[ColPreinitSegments],
			a.Mul(
				a.Mul(
					a.Sub(nextSegment, a.Constant(preinit[0].Ordinal())),
					a.Sub(nextSegment, a.Constant(preinit[1].Ordinal()))),
				lv[ColPreinitSegmentsAux])))
	// The zero-initialization selector fires when the next row opens a fresh
	// address with a read outside the preinitialized segments.
	acc.Constrain("initialize-aux-value", air.Transitions,
		a.Sub(lv[ColInitializeAux],
			a.Mul(a.Mul(lv[ColPreinitSegments], notUnchanged), nextIsRead)))
	//
	for i := 0; i < NumValueLimbs; i++ {
		var (
			limb     = lv[ColValueLimb(i)]
			nextLimb = nv[ColValueLimb(i)]
		)
		// A read of an unchanged address observes the previous value.
		acc.Constrain(fmt.Sprintf("read-consistency-limb-%d", i), air.Transitions,
			a.Mul(a.Mul(nextIsRead, unchanged), a.Sub(nextLimb, limb)))
		// A first read outside the preinitialized segments observes zero.
		acc.Constrain(fmt.Sprintf("zero-initialization-limb-%d", i), air.Transitions,
			a.Mul(lv[ColInitializeAux], nextLimb))
	}
	// Final-state candidacy: active, last for its address, not stale.
	acc.Constrain("final-state-candidate", air.Transitions,
		a.Add(lv[ColMaybeInMemAfter],
			a.Mul(a.Mul(active, notUnchanged), a.Sub(lv[ColIsStale], one))))
	// The final-state filter must be 0 or 1.
	acc.Constrain("final-state-filter-boolean", air.AllRows,
		a.Mul(lv[ColMemAfterFilter], a.Sub(lv[ColMemAfterFilter], one)))
	// The filter may deviate from candidacy only for zero values outside the
	// preinitialized segments.
	for i := 0; i < NumValueLimbs; i++ {
		acc.Constrain(fmt.Sprintf("final-state-filter-limb-%d", i), air.AllRows,
			a.Mul(
				a.Sub(lv[ColMemAfterFilter], lv[ColMaybeInMemAfter]),
				a.Mul(lv[ColPreinitSegments], lv[ColValueLimb(i)])))
	}
	// The timestamp inverse feeds the initial-state selector, so its value
	// is pinned: t * (t * t⁻¹ - 1) = 0.
	acc.Constrain("timestamp-inverse", air.AllRows,
		a.Mul(timestamp, a.Sub(a.Mul(timestamp, timestampInv), one)))
	// The counter opens at zero and increments by one, forming the
	// range-check table 0..height-1.
	acc.Constrain("counter-first-row", air.FirstRow, lv[ColCounter])
	acc.Constrain("counter-increment", air.Transitions,
		a.Sub(a.Sub(nv[ColCounter], lv[ColCounter]), one))
}

// SymbolicConstraints instantiates the constraint description over expression
// graphs, producing the algebraic form consumed by the recursive verifier.
func SymbolicConstraints[F field.Element[F]]() []air.Constraint[F] {
	var (
		builder = air.NewBuilder[F]()
		lv      = make([]air.Expr[F], NumColumns)
		nv      = make([]air.Expr[F], NumColumns)
	)
	//
	for i := 0; i < NumColumns; i++ {
		lv[i] = air.NewAccess[F](i)
		nv[i] = air.NewNextAccess[F](i)
	}
	//
	EvalConstraints[air.Expr[F]](air.ExprArith[F]{}, lv, nv, builder)
	//
	return builder.Constraints()
}

// Lookups declares the two lookup arguments tying row-local values to their
// frequency tables: every range-checked value (and every post-change offset
// baseline) must appear in the counter table, and every stale row's context
// must appear in the stale-context table.
func Lookups() []air.Lookup {
	return []air.Lookup{
		air.NewLookup("range-check",
			[]air.Column{
				air.NewColumn(ColRangeCheck),
				air.NewColumnNextRow(ColAddrVirtual),
			},
			[]air.Filter{
				air.NewFilterAlways(),
				air.NewFilter(ColContextFirstChange, ColSegmentFirstChange),
			},
			air.NewColumn(ColCounter),
			air.NewColumn(ColFrequencies)),
		air.NewLookup("stale-contexts",
			[]air.Column{
				air.NewColumnWithOffset(ColAddrContext, 1),
			},
			[]air.Filter{
				air.NewFilter(ColIsStale),
			},
			air.NewColumn(ColStaleContexts),
			air.NewColumn(ColStaleContextFrequencies)),
	}
}

// Check verifies a generated (or untrusted) trace against every constraint
// and both lookups.  An empty result means the trace is accepted; otherwise
// each failure identifies the rejecting constraint and row.  Rejection is a
// normal outcome, not an error.
func Check[F field.Element[F]](tr *Trace[F]) []air.Failure {
	var (
		height  = tr.Height()
		arith   = air.FieldArith[F]{}
		checker = air.NewChecker[F](height)
		//
		lv = make([]F, NumColumns)
		nv = make([]F, NumColumns)
	)
	//
	for i := uint(0); i < height; i++ {
		next := (i + 1) % height
		//
		for c := 0; c < NumColumns; c++ {
			lv[c] = tr.Columns[c][i]
			nv[c] = tr.Columns[c][next]
		}
		//
		checker.SetRow(i)
		EvalConstraints[F](arith, lv, nv, checker)
	}
	//
	failures := checker.Failures()
	//
	for _, lookup := range Lookups() {
		failures = append(failures, air.VerifyLookup(tr.Columns, lookup)...)
	}
	//
	return failures
}

// InitialStateFilter computes, per row, the selector 1 - t·t⁻¹ which is 1
// exactly on initial-state rows (timestamp 0).  Downstream composition uses
// it to project the injected pre-existing state back out of the table.
func InitialStateFilter[F field.Element[F]](tr *Trace[F]) []F {
	var (
		one    = field.One[F]()
		filter = make([]F, tr.Height())
	)
	//
	for i := range filter {
		filter[i] = one.Sub(tr.Columns[ColTimestamp][i].Mul(tr.Columns[ColTimestampInv][i]))
	}
	//
	return filter
}

// PrunedContexts reads back the stale contexts recorded in the trace, in slot
// order.
func PrunedContexts[F field.Element[F]](tr *Trace[F]) []uint64 {
	var pruned []uint64
	//
	for i := uint(0); i < tr.Height(); i++ {
		if tr.Columns[ColIsPruned][i].IsOne() {
			pruned = append(pruned, tr.Columns[ColStaleContexts][i].Uint64()-1)
		}
	}
	//
	return pruned
}
