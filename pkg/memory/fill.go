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
	"math/bits"

	"github.com/holiman/uint256"
)

// The trace orders rows by (context, segment, offset, timestamp) and proves
// the ordering by range checking, for each adjacent pair, the delta of the
// first component that changed.  The range check is a lookup into the counter
// column, so it can only express values below the trace height.  fillGaps
// inserts synthetic reads between operations whose delta would be too large,
// bounding every gap.
//
// For example, with 32 operations, an address accessed at timestamps 20 and
// 100 would need a delta of 80 checked.  Two synthetic reads of that address
// at intermediate timestamps reduce every delta below the bound.
//
// The result is unsorted; callers re-sort before building rows.
func fillGaps(ops []Op) []Op {
	sortOps(ops)
	// The first offset accessed must itself pass a range check, otherwise a
	// trace could open at an unreachable offset.  Anchor it with a read of
	// cell (0,0,0).
	if ops[0].Address.Virt != 0 {
		anchor := NewDummyRead(Address{}, 1, uint256.Int{})
		ops = append([]Op{anchor}, ops...)
	}
	// Each round scans every adjacent pair and collects the synthetic reads
	// needed to bound its gap.  Insertions create new adjacencies, so rounds
	// repeat until a full scan inserts nothing.  The bound can only grow
	// between rounds, so earlier insertions stay valid.
	for {
		sortOps(ops)
		//
		var (
			maxGap   = nextPowerOfTwo(uint64(len(ops))) - 1
			inserted []Op
		)
		//
		for i := 0; i+1 < len(ops); i++ {
			curr, next := ops[i], ops[i+1]
			//
			switch {
			case curr.Address.Context != next.Address.Context ||
				curr.Address.Segment != next.Address.Segment:
				// Context and segment deltas are always small (a handful of
				// segments, bounded call depth), but the next offset restarts
				// from an arbitrary value and must be stepped down to within
				// the bound.
				for next.Address.Virt > maxGap {
					addr := next.Address
					addr.Virt -= maxGap
					//
					dummy := NewDummyRead(addr, curr.Timestamp+1, uint256.Int{})
					inserted = append(inserted, dummy)
					next = dummy
				}
			case curr.Address.Virt != next.Address.Virt:
				// Same region, distant offsets: step upwards.
				for next.Address.Virt-curr.Address.Virt-1 > maxGap {
					addr := curr.Address
					addr.Virt += maxGap + 1
					//
					dummy := NewDummyRead(addr, curr.Timestamp+1, uint256.Int{})
					inserted = append(inserted, dummy)
					curr = dummy
				}
			default:
				// Same cell, distant timestamps: step the timestamp, carrying
				// the value forward so read consistency still holds across
				// the synthetic reads.
				for next.Timestamp-curr.Timestamp > maxGap {
					dummy := NewDummyRead(curr.Address, curr.Timestamp+maxGap, curr.Value)
					inserted = append(inserted, dummy)
					curr = dummy
				}
			}
		}
		//
		if len(inserted) == 0 {
			return ops
		}
		//
		ops = append(ops, inserted...)
	}
}

// padOps extends a sorted, gap-filled operation list to a power-of-two length
// by repeating a synthetic read one cell beyond the last operation.  The
// padded length strictly exceeds the input length, guaranteeing at least one
// padding row so the last real operation gets its transition flags.
func padOps(ops []Op) []Op {
	last := ops[len(ops)-1]
	// Shift the padding one offset along so the last real operation remains
	// the final access to its own cell.
	padding := Op{
		Address: Address{
			Context: last.Address.Context,
			Segment: last.Address.Segment,
			Virt:    last.Address.Virt + 1,
		},
		Timestamp: last.Timestamp + 1,
		Kind:      Read,
	}
	//
	height := int(nextPowerOfTwo(uint64(len(ops) + 1)))
	//
	for len(ops) < height {
		ops = append(ops, padding)
	}
	//
	return ops
}

// nextPowerOfTwo returns the smallest power of two >= n.
func nextPowerOfTwo(n uint64) uint64 {
	if n <= 1 {
		return 1
	}
	//
	return 1 << bits.Len64(n-1)
}
