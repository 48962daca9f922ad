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
	"slices"

	"github.com/consensys/go-zkevm/pkg/segments"
	"github.com/consensys/go-zkevm/pkg/util"
	"github.com/consensys/go-zkevm/pkg/util/field"
	"github.com/holiman/uint256"
)

// Trace is the finished memory table in column-major form, together with the
// final-state view extracted from it.  A trace is immutable once generated.
type Trace[F field.Element[F]] struct {
	// Columns of the table, indexed by the Col* constants; every column has
	// the same power-of-two height.
	Columns [][]F
	// MemAfter is the final memory state: the last value of every address
	// still visible after pruning and zero-filtering.
	MemAfter []StateEntry
	// UnpaddedLength counts the rows backed by operations (real or
	// gap-filling), i.e. everything except padding.
	UnpaddedLength int
}

// Height returns the number of rows in this trace.
func (p *Trace[F]) Height() uint {
	return uint(len(p.Columns[0]))
}

// GenerateTrace runs the full pipeline: initial-state injection, sorting, gap
// filling, padding, row building, flag generation, and the column-major
// passes.  The operation log is the unordered access log of one execution;
// memBefore holds the pre-existing memory contents (injected as timestamp-0
// writes); staleContexts names the contexts whose final state must be
// excluded from the output view (e.g. rolled-back call frames), and must be
// duplicate-free.
//
// Generation is deterministic.  A non-nil error is always an *InvariantError
// and indicates a defect in this subsystem or its caller, not untrusted
// input; the partial trace is never returned alongside one.
func GenerateTrace[F field.Element[F]](ops []Op, memBefore []StateEntry,
	staleContexts []uint64) (*Trace[F], error) {
	//
	stats := util.NewPerfStats()
	// Inject pre-existing state at the reserved timestamp 0.
	for _, entry := range memBefore {
		ops = append(ops, Op{
			Address:   entry.Address,
			Value:     entry.Value,
			Timestamp: 0,
			Kind:      Write,
			Active:    true,
		})
	}
	//
	if len(ops) == 0 {
		return nil, invariantViolated("non-empty-log", "no operations to prove")
	}
	// Bound every sort-order gap, then bring the synthetic reads into
	// position.
	ops = fillGaps(ops)
	unpadded := len(ops)
	sortOps(ops)
	// Pad to a power of two; padding sorts after every real operation, but
	// re-sort anyway so the invariant does not rest on that.
	ops = padOps(ops)
	sortOps(ops)
	// Row-major passes.
	rows := buildRows[F](ops)
	//
	if err := generateChangeFlags(rows); err != nil {
		return nil, err
	}
	//
	if err := insertStaleContexts(rows, staleContexts); err != nil {
		return nil, err
	}
	// Column-major passes.
	columns := util.Transpose(rows)
	// Timestamp inverses: one field inversion for the entire column.
	inverses := slices.Clone(columns[ColTimestamp])
	field.BatchInvert(inverses)
	columns[ColTimestampInv] = inverses
	//
	if err := generateColumns(columns); err != nil {
		return nil, err
	}
	//
	trace := &Trace[F]{
		Columns:        columns,
		MemAfter:       extractMemAfter(columns),
		UnpaddedLength: unpadded,
	}
	//
	stats.Log("generated memory trace")
	//
	return trace, nil
}

// insertStaleContexts stores each stale context ctx as ctx+1 in row slot ctx
// of the stale-context table column, so that 0 remains the value of non-stale
// slots, and flags those rows as carrying a table entry.
func insertStaleContexts[F field.Element[F]](rows [][]F, staleContexts []uint64) error {
	seen := make(map[uint64]bool, len(staleContexts))
	//
	for _, ctx := range staleContexts {
		if seen[ctx] {
			return invariantViolated("distinct-stale-contexts", "context %d listed twice", ctx)
		}
		//
		seen[ctx] = true
		//
		if ctx >= uint64(len(rows)) {
			return invariantViolated("stale-context-slot",
				"context %d has no row slot in a trace of height %d", ctx, len(rows))
		}
		//
		rows[ctx][ColStaleContexts] = field.Uint64[F](ctx + 1)
		rows[ctx][ColIsPruned] = field.One[F]()
	}
	//
	return nil
}

// generateColumns fills the columns whose values depend on the whole table:
// the counter (which doubles as the range-check table), both frequency
// columns, the staleness flags, and the final-state membership flags.
func generateColumns[F field.Element[F]](columns [][]F) error {
	var (
		height = len(columns[0])
		one    = field.One[F]()
	)
	//
	for i := 0; i < height; i++ {
		columns[ColCounter][i] = field.Uint64[F](uint64(i))
	}
	//
	for i := 0; i < height; i++ {
		// Discharge this row's range check against the counter table.
		rc := columns[ColRangeCheck][i].Uint64()
		//
		if rc >= uint64(height) {
			return invariantViolated("range-check-bound",
				"row %d checks %d against a trace of height %d", i, rc, height)
		}
		//
		columns[ColFrequencies][rc] = columns[ColFrequencies][rc].Add(one)
		// A context or segment change resets the offset baseline, so the
		// next row's offset is itself range checked against the same table.
		if columns[ColContextFirstChange][i].IsOne() || columns[ColSegmentFirstChange][i].IsOne() {
			bump := uint64(0)
			//
			if i+1 < height {
				bump = columns[ColAddrVirtual][i+1].Uint64()
			}
			//
			if bump >= uint64(height) {
				return invariantViolated("offset-baseline-bound",
					"row %d rebases offset %d against a trace of height %d", i, bump, height)
			}
			//
			columns[ColFrequencies][bump] = columns[ColFrequencies][bump].Add(one)
		}
		//
		var (
			ctx     = columns[ColAddrContext][i]
			ctxSlot = ctx.Uint64()
		)
		// Contexts beyond the table height have no slot, hence cannot be
		// stale.
		if ctxSlot < uint64(height) && ctx.Add(one).Cmp(columns[ColStaleContexts][ctxSlot]) == 0 {
			// Context is stale: the row leaves the final-state view, and its
			// lookup into the stale-context table is recorded.
			columns[ColIsStale][i] = one
			columns[ColStaleContextFrequencies][ctxSlot] =
				columns[ColStaleContextFrequencies][ctxSlot].Add(one)
		} else if columns[ColActive][i].IsOne() &&
			(columns[ColContextFirstChange][i].IsOne() ||
				columns[ColSegmentFirstChange][i].IsOne() ||
				columns[ColVirtualFirstChange][i].IsOne()) {
			// Last active access to this address, and not stale: a candidate
			// for the final-state view.
			columns[ColMaybeInMemAfter][i] = one
			// Zero values outside the preinitialized segments are the
			// default state and need not be re-asserted.
			nonZero := false
			//
			for limb := 0; limb < NumValueLimbs; limb++ {
				nonZero = nonZero || !columns[ColValueLimb(limb)][i].IsZero()
			}
			//
			segment, _ := segments.SegmentOf(columns[ColAddrSegment][i].Uint64())
			//
			if nonZero || segment.Preinitialized() {
				columns[ColMemAfterFilter][i] = one
			}
		}
	}
	//
	return nil
}

// extractMemAfter reads back the (address, value) pairs selected for the
// final-state view, in row (i.e. address) order.
func extractMemAfter[F field.Element[F]](columns [][]F) []StateEntry {
	var entries []StateEntry
	//
	for i := 0; i < len(columns[0]); i++ {
		if !columns[ColMemAfterFilter][i].IsOne() {
			continue
		}
		//
		var value uint256.Int
		//
		for j := 0; j < NumValueLimbs; j++ {
			limb := columns[ColValueLimb(j)][i].Uint64()
			value[j/2] |= limb << (32 * (j % 2))
		}
		//
		entries = append(entries, StateEntry{
			Address: Address{
				Context: columns[ColAddrContext][i].Uint64(),
				Segment: columns[ColAddrSegment][i].Uint64(),
				Virt:    columns[ColAddrVirtual][i].Uint64(),
			},
			Value: value,
		})
	}
	//
	return entries
}
