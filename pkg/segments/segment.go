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

// Package segments enumerates the memory regions of the virtual machine.
// Every memory address names one of these segments as its middle component,
// and a handful of them are "preinitialized": their contents are supplied
// externally (e.g. contract code, or trie data preloaded by the kernel)
// rather than being implicitly zero.
package segments

import "fmt"

// Segment identifies a region of the virtual machine's memory.  Segments form
// a closed enumeration; their ordinals are stable since they appear as
// comparison constants inside algebraic constraints.
type Segment uint64

const (
	// RegistersStates holds the registers of the machine before and after
	// each instruction.
	RegistersStates Segment = iota
	// Code holds the bytecode of the context's current code.
	Code
	// Stack holds the execution stack.
	Stack
	// MainMemory is the general-purpose memory of a context.
	MainMemory
	// Calldata holds the input data of the current call.
	Calldata
	// Returndata holds the output data of the last call.
	Returndata
	// GlobalMetadata holds cross-context bookkeeping values.
	GlobalMetadata
	// TrieData holds state/transaction/receipt trie payloads preloaded by
	// the kernel.
	TrieData
	// AccountsLinkedList is the linked-list backed table of accounts.
	AccountsLinkedList
	// StorageLinkedList is the linked-list backed table of storage slots.
	StorageLinkedList
	// ContextMetadata holds per-context bookkeeping values.
	ContextMetadata
	// JumpdestBits flags valid jump destinations in the current code.
	JumpdestBits
	// NumSegments counts the above.
	NumSegments
)

// PreinitializedSegments lists (in declaration order) the segments whose
// initial contents are externally supplied.  A first read from any other
// segment must observe zero.
var PreinitializedSegments = [4]Segment{Code, TrieData, AccountsLinkedList, StorageLinkedList}

// SegmentOf converts a raw ordinal (e.g. read back from a trace column) into
// a Segment, indicating whether the ordinal is within range.
func SegmentOf(ordinal uint64) (Segment, bool) {
	if ordinal >= uint64(NumSegments) {
		return 0, false
	}
	//
	return Segment(ordinal), true
}

// Ordinal returns the numeric identifier of this segment, as it appears in
// trace columns.
func (s Segment) Ordinal() uint64 {
	return uint64(s)
}

// Preinitialized reports whether this segment is preloaded with external
// content, exempting it from the zero-initialization rule.
func (s Segment) Preinitialized() bool {
	for _, p := range PreinitializedSegments {
		if s == p {
			return true
		}
	}
	//
	return false
}

func (s Segment) String() string {
	switch s {
	case RegistersStates:
		return "RegistersStates"
	case Code:
		return "Code"
	case Stack:
		return "Stack"
	case MainMemory:
		return "MainMemory"
	case Calldata:
		return "Calldata"
	case Returndata:
		return "Returndata"
	case GlobalMetadata:
		return "GlobalMetadata"
	case TrieData:
		return "TrieData"
	case AccountsLinkedList:
		return "AccountsLinkedList"
	case StorageLinkedList:
		return "StorageLinkedList"
	case ContextMetadata:
		return "ContextMetadata"
	case JumpdestBits:
		return "JumpdestBits"
	default:
		return fmt.Sprintf("Segment(%d)", uint64(s))
	}
}
