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

// NumValueLimbs is the number of 32bit limbs a 256bit memory value is
// decomposed into within the trace.
const NumValueLimbs = 8

// Column indices of the trace table.  Rows are laid out as flat slices of
// NumColumns field elements; downstream consumers bind columns by these
// names.
const (
	// ColActive is 1 for operations the machine performed, 0 for synthetic
	// rows.
	ColActive = iota
	// ColTimestamp is the timestamp of the operation.
	ColTimestamp
	// ColTimestampInv is the inverse of the timestamp, or 0 for the
	// reserved timestamp 0.  Together they give a degree-2 selector for
	// initial-state rows.
	ColTimestampInv
	// ColIsRead is 1 for reads, 0 for writes.
	ColIsRead
	// ColAddrContext is the context component of the address.
	ColAddrContext
	// ColAddrSegment is the segment component of the address.
	ColAddrSegment
	// ColAddrVirtual is the offset component of the address.
	ColAddrVirtual
	// ColValueLimbsStart is the first of NumValueLimbs consecutive value
	// limb columns, least-significant limb first.
	ColValueLimbsStart
)

const (
	// ColRangeCheck holds the delta proving the sort order, which must lie
	// in 0..height-1.
	ColRangeCheck = ColValueLimbsStart + NumValueLimbs + iota
	// ColCounter is the row index, doubling as the range-check table.
	ColCounter
	// ColFrequencies records how many range-checked values landed on each
	// counter value.
	ColFrequencies
	// ColContextFirstChange is 1 when the context differs on the next row.
	ColContextFirstChange
	// ColSegmentFirstChange is 1 when the segment differs on the next row
	// (and the context does not).
	ColSegmentFirstChange
	// ColVirtualFirstChange is 1 when the offset differs on the next row
	// (and neither context nor segment does).
	ColVirtualFirstChange
	// ColInitializeAux is non-zero exactly when the next row must be
	// zero-initialized: its address is fresh, it is a read, and its segment
	// is not preinitialized.
	ColInitializeAux
	// ColPreinitSegments is the product of (next segment - s) over all four
	// preinitialized segment ordinals s; zero exactly on preinitialized
	// segments.
	ColPreinitSegments
	// ColPreinitSegmentsAux is the partial product over the two linked-list
	// segments, keeping the full product within degree bounds.
	ColPreinitSegmentsAux
	// ColStaleContexts holds, at row i, the value i+1 when context i is
	// stale and 0 otherwise; it is the table side of the staleness lookup.
	ColStaleContexts
	// ColStaleContextFrequencies records how many rows looked up each stale
	// context entry.
	ColStaleContextFrequencies
	// ColIsStale is 1 on rows whose context is stale.
	ColIsStale
	// ColIsPruned is 1 on rows carrying a stale-context table entry.
	ColIsPruned
	// ColMaybeInMemAfter is 1 on rows which are candidates for the final
	// state view: active, last for their address, and not stale.
	ColMaybeInMemAfter
	// ColMemAfterFilter narrows the candidates: zero values outside the
	// preinitialized segments are implicit and excluded.
	ColMemAfterFilter
	// NumColumns is the total number of columns.
	NumColumns
)

// ColValueLimb returns the column index of the given value limb.
func ColValueLimb(i int) int {
	return ColValueLimbsStart + i
}
