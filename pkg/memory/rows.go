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
	"runtime"

	"github.com/consensys/go-zkevm/pkg/segments"
	"github.com/consensys/go-zkevm/pkg/util/field"
)

// buildRow maps one operation onto its trace row.  Only columns determined by
// the operation itself are filled here; columns depending on the neighbouring
// row (change flags, range check) or on the whole table (counter,
// frequencies) are generated afterwards.
func buildRow[F field.Element[F]](op Op) []F {
	row := make([]F, NumColumns)
	//
	row[ColActive] = field.FromBool[F](op.Active)
	row[ColTimestamp] = field.Uint64[F](op.Timestamp)
	// ColTimestampInv is filled by a batched pass once the table is
	// column-major.
	row[ColIsRead] = field.FromBool[F](op.Kind == Read)
	row[ColAddrContext] = field.Uint64[F](op.Address.Context)
	row[ColAddrSegment] = field.Uint64[F](op.Address.Segment)
	row[ColAddrVirtual] = field.Uint64[F](op.Address.Virt)
	//
	for j := 0; j < NumValueLimbs; j++ {
		limb := uint32(op.Value[j/2] >> (32 * (j % 2)))
		row[ColValueLimb(j)] = field.Uint64[F](uint64(limb))
	}
	// Remaining columns filled by later passes; the zero value of F is 0.
	return row
}

// buildRows maps every operation onto its row.  Rows are mutually
// independent, so the work is fanned out across one goroutine per CPU.
func buildRows[F field.Element[F]](ops []Op) [][]F {
	var (
		rows  = make([][]F, len(ops))
		chunk = max(1, (len(ops)+runtime.NumCPU()-1)/runtime.NumCPU())
		// Construct a communication channel for job completion.
		done  = make(chan struct{}, 64)
		njobs = 0
	)
	//
	for begin := 0; begin < len(ops); begin += chunk {
		end := min(begin+chunk, len(ops))
		//
		go func(begin, end int) {
			for i := begin; i < end; i++ {
				rows[i] = buildRow[F](ops[i])
			}
			// Signal completion
			done <- struct{}{}
		}(begin, end)
		//
		njobs++
	}
	// Collect up all the results
	for i := 0; i < njobs; i++ {
		<-done
	}
	//
	return rows
}

// generateChangeFlags performs the sequential pass over sorted rows filling,
// for each row, the first-change flags against its successor, the range-check
// delta those flags select, and the preinitialized-segment gating products.
// The successor of the last row wraps around to the first; its range check is
// forced to zero since padding leaves no gap to prove there.
//
// An oversized delta at this point is a defect in gap filling (or in the
// caller's operation log), never a property of the trace itself, hence the
// fatal error.
func generateChangeFlags[F field.Element[F]](rows [][]F) error {
	var (
		one    = field.One[F]()
		height = uint64(len(rows))
	)
	//
	for i := range rows {
		var (
			row  = rows[i]
			next = rows[(i+1)%len(rows)]
			//
			context   = row[ColAddrContext]
			segment   = row[ColAddrSegment]
			virt      = row[ColAddrVirtual]
			timestamp = row[ColTimestamp]
			//
			nextContext   = next[ColAddrContext]
			nextSegment   = next[ColAddrSegment]
			nextVirt      = next[ColAddrVirtual]
			nextTimestamp = next[ColTimestamp]
		)
		//
		var (
			contextChange = context.Cmp(nextContext) != 0
			segmentChange = segment.Cmp(nextSegment) != 0 && !contextChange
			virtualChange = virt.Cmp(nextVirt) != 0 && !segmentChange && !contextChange
		)
		//
		row[ColContextFirstChange] = field.FromBool[F](contextChange)
		row[ColSegmentFirstChange] = field.FromBool[F](segmentChange)
		row[ColVirtualFirstChange] = field.FromBool[F](virtualChange)
		//
		switch {
		case i == len(rows)-1:
			row[ColRangeCheck] = field.Zero[F]()
		case contextChange:
			row[ColRangeCheck] = nextContext.Sub(context).Sub(one)
		case segmentChange:
			row[ColRangeCheck] = nextSegment.Sub(segment).Sub(one)
		case virtualChange:
			row[ColRangeCheck] = nextVirt.Sub(virt).Sub(one)
		default:
			row[ColRangeCheck] = nextTimestamp.Sub(timestamp)
		}
		//
		if rc := row[ColRangeCheck]; !rc.IsUint64() || rc.Uint64() >= height {
			return invariantViolated("range-check-bound",
				"row %d checks %s against a trace of height %d", i, rc, height)
		}
		// Gating products for the zero-initialization rule.  Both vanish
		// exactly when the next segment is preinitialized; splitting the
		// four-term product keeps every constraint within degree three.
		preinit := segments.PreinitializedSegments
		//
		row[ColPreinitSegmentsAux] = nextSegment.
			Sub(field.Uint64[F](preinit[2].Ordinal())).
			Mul(nextSegment.Sub(field.Uint64[F](preinit[3].Ordinal())))
		//
		row[ColPreinitSegments] = nextSegment.
			Sub(field.Uint64[F](preinit[0].Ordinal())).
			Mul(nextSegment.Sub(field.Uint64[F](preinit[1].Ordinal()))).
			Mul(row[ColPreinitSegmentsAux])
		//
		addressChange := row[ColContextFirstChange].
			Add(row[ColSegmentFirstChange]).
			Add(row[ColVirtualFirstChange])
		//
		row[ColInitializeAux] = row[ColPreinitSegments].Mul(addressChange).Mul(next[ColIsRead])
	}
	//
	return nil
}
