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

// Package memory implements the memory consistency argument of the prover:
// given the log of every memory access performed during an execution, it
// builds a trace table whose algebraic constraints hold exactly when the log
// is internally consistent: every read observes the most recent write to its
// address, addresses outside the preinitialized segments read as zero on
// first access, and the table is a faithful reordering of the log.
package memory

import (
	"fmt"
	"slices"

	"github.com/holiman/uint256"
)

// Address locates one memory cell within the machine: an execution context,
// a segment within that context, and a virtual offset within that segment.
// Addresses are ordered lexicographically on (context, segment, offset).
type Address struct {
	// Context is the execution context (e.g. call frame) owning the cell.
	Context uint64
	// Segment is the memory region within the context.
	Segment uint64
	// Virt is the offset of the cell within its segment.
	Virt uint64
}

// Cmp returns 1 if a > o, 0 if a = o and -1 if a < o, in lexicographic
// order.
func (a Address) Cmp(o Address) int {
	if c := cmpUint64(a.Context, o.Context); c != 0 {
		return c
	}
	//
	if c := cmpUint64(a.Segment, o.Segment); c != 0 {
		return c
	}
	//
	return cmpUint64(a.Virt, o.Virt)
}

func (a Address) String() string {
	return fmt.Sprintf("(%d,%d,%d)", a.Context, a.Segment, a.Virt)
}

// OpKind distinguishes reads from writes.
type OpKind uint8

const (
	// Read observes the current value of a cell.
	Read OpKind = iota
	// Write replaces the current value of a cell.
	Write
)

func (k OpKind) String() string {
	if k == Read {
		return "read"
	}
	//
	return "write"
}

// Op is one memory access: the cell touched, the 256bit value read or
// written, the timestamp of the access and its kind.  Ops with Active unset
// are synthetic, inserted during gap filling or padding, and invisible to
// the machine being proved.  Timestamp 0 is reserved for initial-state
// writes; every runtime access has timestamp >= 1.
type Op struct {
	// Address of the cell being accessed.
	Address Address
	// Value being read or written.
	Value uint256.Int
	// Timestamp of the access.
	Timestamp uint64
	// Kind of access.
	Kind OpKind
	// Active holds for accesses performed by the machine, and fails for
	// synthetic ones.
	Active bool
}

// NewDummyRead constructs a synthetic read of the given cell.  Synthetic
// operations are always reads: a synthetic write could corrupt the log.
func NewDummyRead(address Address, timestamp uint64, value uint256.Int) Op {
	return Op{
		Address:   address,
		Value:     value,
		Timestamp: timestamp,
		Kind:      Read,
	}
}

// StateEntry is one (address, value) pair of a memory snapshot: either the
// pre-existing state handed in by the execution collaborator, or the final
// state view extracted from the trace.
type StateEntry struct {
	// Address of the cell.
	Address Address
	// Value held at that address.
	Value uint256.Int
}

// cmpOps orders operations by (context, segment, offset, timestamp).  The
// trace sorts by this key; any tie between distinct operations would make the
// ordering argument ambiguous.
func cmpOps(a, b Op) int {
	if c := a.Address.Cmp(b.Address); c != 0 {
		return c
	}
	//
	return cmpUint64(a.Timestamp, b.Timestamp)
}

// sortOps sorts operations in place by their sort key.  The sort is stable so
// that identical operations (e.g. repeated padding reads) keep their relative
// order.
func sortOps(ops []Op) {
	slices.SortStableFunc(ops, cmpOps)
}

func cmpUint64(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
