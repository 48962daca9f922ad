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

	"github.com/consensys/go-zkevm/pkg/air"
	"github.com/consensys/go-zkevm/pkg/util/field"
	gl "github.com/consensys/go-zkevm/pkg/util/field/goldilocks"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// checkAccepted generates a trace from the given log and confirms every
// constraint and lookup holds on it.
func checkAccepted(t *testing.T, ops []Op, memBefore []StateEntry, staleContexts []uint64) {
	t.Helper()
	//
	trace := generate(t, ops, memBefore, staleContexts)
	failures := Check(trace)
	//
	for _, failure := range failures {
		t.Errorf("unexpected failure: %s", failure)
	}
}

// checkRejectedBy generates a trace from the given log and confirms the named
// constraint rejects it.
func checkRejectedBy(t *testing.T, handle string, ops []Op) {
	t.Helper()
	//
	trace := generate(t, ops, nil, nil)
	failures := Check(trace)
	//
	for _, failure := range failures {
		if failure.Handle == handle {
			return
		}
	}
	//
	t.Errorf("expected rejection by %q, got %v", handle, failures)
}

func TestCheckWriteThenRead(t *testing.T) {
	checkAccepted(t, []Op{
		writeOp(0, 6, 100, 1, 5),
		readOp(0, 6, 100, 2, 5),
	}, nil, nil)
}

func TestCheckDistantTimestamps(t *testing.T) {
	checkAccepted(t, []Op{
		writeOp(0, 6, 100, 1000, 5),
	}, nil, nil)
}

func TestCheckOverwrite(t *testing.T) {
	checkAccepted(t, []Op{
		writeOp(0, 6, 100, 1, 5),
		writeOp(0, 6, 100, 2, 9),
		readOp(0, 6, 100, 3, 9),
	}, nil, nil)
}

func TestCheckMultipleContexts(t *testing.T) {
	checkAccepted(t, []Op{
		writeOp(0, 6, 1, 1, 5),
		writeOp(1, 3, 40, 2, 6),
		readOp(1, 3, 40, 3, 6),
		writeOp(2, 6, 1, 4, 7),
	}, nil, nil)
}

func TestCheckPreinitializedRead(t *testing.T) {
	// Segment 7 is preinitialized, so its first read may observe a value
	// the trace never wrote.
	checkAccepted(t, []Op{
		readOp(0, 7, 50, 1, 99),
	}, nil, nil)
}

func TestCheckStaleContexts(t *testing.T) {
	checkAccepted(t, []Op{
		writeOp(0, 6, 1, 1, 5),
		writeOp(2, 6, 1, 2, 7),
	}, nil, []uint64{2})
}

func TestCheckMemBefore(t *testing.T) {
	checkAccepted(t, []Op{
		readOp(0, 3, 0, 5, 42),
	}, []StateEntry{
		{Address{0, 3, 0}, *uint256.NewInt(42)},
	}, nil)
}

func TestCheckRejectsInconsistentRead(t *testing.T) {
	// The read claims to observe 7 where 5 was written.
	checkRejectedBy(t, "read-consistency-limb-0", []Op{
		writeOp(0, 6, 100, 1, 5),
		readOp(0, 6, 100, 2, 7),
	})
}

func TestCheckRejectsUninitializedRead(t *testing.T) {
	// First read of a fresh cell outside the preinitialized segments must
	// observe zero.
	checkRejectedBy(t, "zero-initialization-limb-0", []Op{
		readOp(0, 6, 50, 1, 99),
	})
}

func TestCheckRejectsTamperedCounter(t *testing.T) {
	trace := generate(t, []Op{
		writeOp(0, 6, 100, 1, 5),
		readOp(0, 6, 100, 2, 5),
	}, nil, nil)
	//
	trace.Columns[ColCounter][1] = field.Uint64[gl.Element](7)
	//
	failures := Check(trace)
	require.NotEmpty(t, failures)
	//
	handles := make(map[string]bool)
	//
	for _, failure := range failures {
		handles[failure.Handle] = true
	}
	//
	assert.True(t, handles["counter-increment"])
}

func TestCheckRejectsTamperedFrequencies(t *testing.T) {
	trace := generate(t, []Op{
		writeOp(0, 6, 100, 1, 5),
	}, nil, nil)
	//
	one := field.One[gl.Element]()
	trace.Columns[ColFrequencies][0] = trace.Columns[ColFrequencies][0].Add(one)
	//
	failures := Check(trace)
	require.NotEmpty(t, failures)
	assert.Equal(t, "range-check", failures[0].Handle)
}

func TestCheckRejectsTamperedActiveFlag(t *testing.T) {
	trace := generate(t, []Op{
		writeOp(0, 6, 100, 1, 5),
	}, nil, nil)
	//
	trace.Columns[ColActive][0] = field.Uint64[gl.Element](2)
	//
	failures := Check(trace)
	require.NotEmpty(t, failures)
	//
	handles := make(map[string]bool)
	//
	for _, failure := range failures {
		handles[failure.Handle] = true
	}
	//
	assert.True(t, handles["active-boolean"])
}

// recorder captures the concrete value of every constraint on one row pair,
// keyed by handle.
type recorder struct {
	domains map[string]air.Domain
	values  map[string]gl.Element
}

func (p *recorder) Constrain(handle string, domain air.Domain, value gl.Element) {
	p.domains[handle] = domain
	p.values[handle] = value
}

// The two instantiations of the constraint description share one code path,
// so the expressions built symbolically must evaluate to exactly the values
// the checker sees.
func TestSymbolicMatchesConcrete(t *testing.T) {
	trace := generate(t, []Op{
		writeOp(0, 6, 100, 1, 5),
		readOp(0, 6, 100, 2, 5),
		writeOp(2, 7, 30, 3, 9),
	}, nil, []uint64{2})
	//
	var (
		height      = trace.Height()
		constraints = SymbolicConstraints[gl.Element]()
		//
		lv = make([]gl.Element, NumColumns)
		nv = make([]gl.Element, NumColumns)
	)
	//
	require.NotEmpty(t, constraints)
	//
	for i := uint(0); i < height; i++ {
		next := (i + 1) % height
		//
		for c := 0; c < NumColumns; c++ {
			lv[c] = trace.Columns[c][i]
			nv[c] = trace.Columns[c][next]
		}
		//
		rec := &recorder{
			domains: make(map[string]air.Domain),
			values:  make(map[string]gl.Element),
		}
		//
		EvalConstraints[gl.Element](air.FieldArith[gl.Element]{}, lv, nv, rec)
		require.Equal(t, len(constraints), len(rec.values))
		//
		for _, constraint := range constraints {
			var (
				concrete = rec.values[constraint.Handle]
				symbolic = constraint.Term.EvalAt(lv, nv)
			)
			//
			assert.Equal(t, constraint.Domain, rec.domains[constraint.Handle])
			assert.Zero(t, concrete.Cmp(symbolic),
				"%s diverges on row %d (%s vs %s)", constraint.Handle, i, concrete, symbolic)
		}
	}
}

func TestConstraintDegreeBound(t *testing.T) {
	for _, constraint := range SymbolicConstraints[gl.Element]() {
		assert.LessOrEqual(t, constraint.Term.Degree(), uint(MaxConstraintDegree),
			"constraint %s", constraint.Handle)
	}
}

func TestLookupDeclarations(t *testing.T) {
	lookups := Lookups()
	require.Len(t, lookups, 2)
	//
	assert.Equal(t, "range-check", lookups[0].Handle)
	assert.Equal(t, "stale-contexts", lookups[1].Handle)
}
