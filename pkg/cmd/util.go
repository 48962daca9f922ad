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
package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path"

	"github.com/consensys/go-zkevm/pkg/memory"
	"github.com/holiman/uint256"
	"github.com/spf13/cobra"
)

// Get an expected flag, or panic if an error arises.
func getFlag(cmd *cobra.Command, flag string) bool {
	r, err := cmd.Flags().GetBool(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// jsonMemoryLog mirrors the on-disk layout of a memory log file.  Values are
// given as strings so they can exceed 64 bits ("0x.." or decimal).
type jsonMemoryLog struct {
	Ops           []jsonMemoryOp    `json:"ops"`
	MemBefore     []jsonMemoryState `json:"memBefore"`
	StaleContexts []uint64          `json:"staleContexts"`
}

type jsonMemoryOp struct {
	Context   uint64 `json:"context"`
	Segment   uint64 `json:"segment"`
	Virtual   uint64 `json:"virtual"`
	Timestamp uint64 `json:"timestamp"`
	Kind      string `json:"kind"`
	Value     string `json:"value"`
}

type jsonMemoryState struct {
	Context uint64 `json:"context"`
	Segment uint64 `json:"segment"`
	Virtual uint64 `json:"virtual"`
	Value   string `json:"value"`
}

// Parse a memory log file using a parser based on the extension of the
// filename.
func readMemoryLogFile(filename string) ([]memory.Op, []memory.StateEntry, []uint64) {
	bytes, err := os.ReadFile(filename)
	if err == nil {
		// Check file extension
		ext := path.Ext(filename)
		//
		switch ext {
		case ".json":
			return parseJsonMemoryLog(bytes)
		default:
			err = fmt.Errorf("unknown memory log format: %s", ext)
		}
	}
	// Handle error
	fmt.Println(err)
	os.Exit(2)
	// unreachable
	return nil, nil, nil
}

func parseJsonMemoryLog(bytes []byte) ([]memory.Op, []memory.StateEntry, []uint64) {
	var parsed jsonMemoryLog
	//
	if err := json.Unmarshal(bytes, &parsed); err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	//
	ops := make([]memory.Op, len(parsed.Ops))
	//
	for i, op := range parsed.Ops {
		kind, err := parseOpKind(op.Kind)
		if err != nil {
			fmt.Println(err)
			os.Exit(2)
		}
		//
		ops[i] = memory.Op{
			Address: memory.Address{
				Context: op.Context,
				Segment: op.Segment,
				Virt:    op.Virtual,
			},
			Value:     parseValue(op.Value),
			Timestamp: op.Timestamp,
			Kind:      kind,
			Active:    true,
		}
	}
	//
	memBefore := make([]memory.StateEntry, len(parsed.MemBefore))
	//
	for i, entry := range parsed.MemBefore {
		memBefore[i] = memory.StateEntry{
			Address: memory.Address{
				Context: entry.Context,
				Segment: entry.Segment,
				Virt:    entry.Virtual,
			},
			Value: parseValue(entry.Value),
		}
	}
	//
	return ops, memBefore, parsed.StaleContexts
}

func parseOpKind(kind string) (memory.OpKind, error) {
	switch kind {
	case "read":
		return memory.Read, nil
	case "write":
		return memory.Write, nil
	default:
		return memory.Read, fmt.Errorf("unknown memory op kind: %q", kind)
	}
}

func parseValue(value string) uint256.Int {
	if value == "" {
		return uint256.Int{}
	}
	//
	parsed, err := uint256.FromDecimal(value)
	if err != nil {
		parsed, err = uint256.FromHex(value)
	}
	//
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	//
	return *parsed
}
