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
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
)

func writeOp(ctx, seg, virt, timestamp, value uint64) Op {
	return Op{
		Address:   Address{ctx, seg, virt},
		Value:     *uint256.NewInt(value),
		Timestamp: timestamp,
		Kind:      Write,
		Active:    true,
	}
}

func readOp(ctx, seg, virt, timestamp, value uint64) Op {
	return Op{
		Address:   Address{ctx, seg, virt},
		Value:     *uint256.NewInt(value),
		Timestamp: timestamp,
		Kind:      Read,
		Active:    true,
	}
}

// checkGapsBounded confirms the postcondition of gap filling: once sorted,
// every adjacent pair is within the range-check bound implied by the final
// length.
func checkGapsBounded(t *testing.T, ops []Op) {
	t.Helper()
	//
	sortOps(ops)
	//
	maxGap := nextPowerOfTwo(uint64(len(ops))) - 1
	//
	for i := 0; i+1 < len(ops); i++ {
		curr, next := ops[i], ops[i+1]
		//
		switch {
		case curr.Address.Context != next.Address.Context ||
			curr.Address.Segment != next.Address.Segment:
			assert.LessOrEqual(t, next.Address.Virt, maxGap,
				"offset not rebased at row %d", i)
		case curr.Address.Virt != next.Address.Virt:
			assert.LessOrEqual(t, next.Address.Virt-curr.Address.Virt-1, maxGap,
				"offset gap too large at row %d", i)
		default:
			assert.LessOrEqual(t, next.Timestamp-curr.Timestamp, maxGap,
				"timestamp gap too large at row %d", i)
		}
	}
}

func TestFillGapsAnchorsFirstOffset(t *testing.T) {
	ops := fillGaps([]Op{writeOp(0, 6, 100, 1, 5)})
	sortOps(ops)
	// First sorted operation must open at offset zero.
	assert.Equal(t, uint64(0), ops[0].Address.Virt)
	assert.False(t, ops[0].Active)
	//
	checkGapsBounded(t, ops)
}

func TestFillGapsNoAnchorWhenZero(t *testing.T) {
	ops := fillGaps([]Op{writeOp(0, 6, 0, 1, 5)})
	// Already anchored; nothing to insert.
	assert.Len(t, ops, 1)
}

func TestFillGapsTimestampChain(t *testing.T) {
	// Two accesses to one cell, far apart in time.
	ops := fillGaps([]Op{
		writeOp(0, 6, 0, 1, 5),
		readOp(0, 6, 0, 1000, 5),
	})
	//
	checkGapsBounded(t, ops)
	// Synthetic reads must carry the value forward.
	for _, op := range ops {
		if !op.Active {
			assert.Equal(t, Read, op.Kind)
			assert.Equal(t, uint64(5), op.Value.Uint64())
		}
	}
}

func TestFillGapsDistantOffsets(t *testing.T) {
	ops := fillGaps([]Op{
		writeOp(0, 6, 0, 1, 5),
		writeOp(0, 6, 5000, 2, 7),
	})
	//
	checkGapsBounded(t, ops)
}

func TestFillGapsSegmentRestart(t *testing.T) {
	// Crossing a segment boundary restarts the offset baseline, which must
	// then be stepped down to within the bound.
	ops := fillGaps([]Op{
		writeOp(0, 3, 0, 1, 5),
		writeOp(0, 6, 4000, 2, 7),
	})
	//
	checkGapsBounded(t, ops)
}

func TestFillGapsSyntheticAreReads(t *testing.T) {
	ops := fillGaps([]Op{
		writeOp(1, 6, 900, 50, 5),
		writeOp(3, 4, 2500, 60, 7),
	})
	//
	for _, op := range ops {
		if !op.Active {
			assert.Equal(t, Read, op.Kind)
		}
	}
	//
	checkGapsBounded(t, ops)
}

func TestFillGapsIdempotent(t *testing.T) {
	ops := fillGaps([]Op{
		writeOp(0, 6, 100, 1, 5),
		readOp(0, 6, 100, 2000, 5),
		writeOp(3, 4, 900, 17, 8),
	})
	// A second pass over already-filled operations inserts nothing.
	assert.Len(t, fillGaps(ops), len(ops))
}

func TestPadOpsPowerOfTwo(t *testing.T) {
	for n := 1; n <= 9; n++ {
		ops := make([]Op, n)
		//
		for i := range ops {
			ops[i] = writeOp(0, 6, uint64(i), uint64(i+1), 5)
		}
		//
		padded := padOps(ops)
		height := uint64(len(padded))
		// Power of two with at least one padding row.
		assert.Equal(t, nextPowerOfTwo(height), height)
		assert.Greater(t, len(padded), n)
		// Padding sits one offset beyond the last operation.
		last := padded[len(padded)-1]
		assert.Equal(t, uint64(n), last.Address.Virt)
		assert.False(t, last.Active)
		assert.Equal(t, Read, last.Kind)
	}
}

func TestNextPowerOfTwo(t *testing.T) {
	assert.Equal(t, uint64(1), nextPowerOfTwo(0))
	assert.Equal(t, uint64(1), nextPowerOfTwo(1))
	assert.Equal(t, uint64(2), nextPowerOfTwo(2))
	assert.Equal(t, uint64(4), nextPowerOfTwo(3))
	assert.Equal(t, uint64(8), nextPowerOfTwo(8))
	assert.Equal(t, uint64(16), nextPowerOfTwo(9))
}

func TestSortOpsKey(t *testing.T) {
	ops := []Op{
		readOp(0, 6, 100, 2, 5),
		writeOp(0, 6, 100, 1, 5),
		writeOp(0, 3, 7, 9, 1),
		writeOp(1, 0, 0, 3, 2),
	}
	//
	sortOps(ops)
	//
	for i := 0; i+1 < len(ops); i++ {
		assert.LessOrEqual(t, cmpOps(ops[i], ops[i+1]), 0)
	}
	// Timestamp breaks ties within a cell.
	assert.Equal(t, Write, ops[1].Kind)
	assert.Equal(t, Read, ops[2].Kind)
}
