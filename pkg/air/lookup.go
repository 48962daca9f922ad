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
package air

import (
	"fmt"

	"github.com/consensys/go-zkevm/pkg/util/field"
)

// Column selects, for each row of a trace, one value to take part in a lookup
// argument.  The selected value is a cell of the named column, taken from the
// row itself or from its successor (wrapping around at the end of the trace),
// optionally shifted by a small constant.
type Column struct {
	// Index of the underlying trace column.
	index int
	// nextRow indicates the cell is read from the successor row.
	nextRow bool
	// offset is added to the cell value.
	offset uint64
}

// NewColumn selects the cell of the given column on each row.
func NewColumn(index int) Column {
	return Column{index: index}
}

// NewColumnNextRow selects the cell of the given column on each row's
// successor.
func NewColumnNextRow(index int) Column {
	return Column{index: index, nextRow: true}
}

// NewColumnWithOffset selects the cell of the given column on each row,
// shifted by a constant.
func NewColumnWithOffset(index int, offset uint64) Column {
	return Column{index: index, offset: offset}
}

// Filter gates which rows of a trace take part in a lookup.  An empty filter
// selects every row; otherwise the filter value is the sum of the named flag
// columns, which the constraint system elsewhere confines to 0/1.
type Filter struct {
	flags []int
}

// NewFilterAlways constructs the trivial filter selecting every row.
func NewFilterAlways() Filter {
	return Filter{}
}

// NewFilter constructs a filter selecting rows on which the sum of the given
// flag columns is non-zero.
func NewFilter(flags ...int) Filter {
	return Filter{flags}
}

// Lookup declares that, on every row its filter selects, the value of each
// looking column appears somewhere in the table column, with the declared
// frequency column recording, per table row, how many looking values landed
// there.  The number of filters must match the number of looking columns;
// anything else is a programming defect.
type Lookup struct {
	// Handle is a unique identifier for this lookup, useful for debugging
	// and reporting.
	Handle string
	// Columns are the looking columns.
	Columns []Column
	// Filters gate each looking column, positionally.
	Filters []Filter
	// Table is the column holding the permitted values.
	Table Column
	// Frequencies is the column recording, for each table row, how many
	// looking values matched it.
	Frequencies Column
}

// NewLookup declares a lookup, checking that looking columns and filters pair
// up.
func NewLookup(handle string, columns []Column, filters []Filter, table, frequencies Column) Lookup {
	if len(columns) != len(filters) {
		panic("inconsistent number of lookup columns and filters")
	}
	//
	return Lookup{handle, columns, filters, table, frequencies}
}

// columnValue reads the cell a Column selects on a given row.
func columnValue[F field.Element[F]](c Column, row uint, columns [][]F, height uint) F {
	r := row
	//
	if c.nextRow {
		r = (row + 1) % height
	}
	//
	return columns[c.index][r].Add(field.Uint64[F](c.offset))
}

// filterValue reads the multiplicity a Filter assigns to a given row.
func filterValue[F field.Element[F]](f Filter, row uint, columns [][]F) F {
	if len(f.flags) == 0 {
		return field.One[F]()
	}
	//
	val := field.Zero[F]()
	//
	for _, flag := range f.flags {
		val = val.Add(columns[flag][row])
	}
	//
	return val
}

// VerifyLookup checks a column-major trace against a lookup declaration.  It
// confirms that every filtered looking value appears in the table column, and
// that the frequency column records exactly the observed multiplicities.  Any
// discrepancy is reported as a Failure against the lookup's handle.
func VerifyLookup[F field.Element[F]](columns [][]F, lookup Lookup) []Failure {
	var (
		failures []Failure
		height   = uint(len(columns[0]))
		// Multiset of looking values, keyed by canonical text.
		looking = make(map[string]uint64)
	)
	// Accumulate filtered looking values.
	for row := uint(0); row < height; row++ {
		for i, col := range lookup.Columns {
			mult := filterValue(lookup.Filters[i], row, columns)
			//
			if !mult.IsUint64() {
				failures = append(failures, Failure{lookup.Handle, row,
					fmt.Sprintf("filter %d multiplicity out of range", i)})
				//
				return failures
			}
			//
			if m := mult.Uint64(); m != 0 {
				looking[columnValue(col, row, columns, height).String()] += m
			}
		}
	}
	// Discharge against the table and its frequencies.
	for row := uint(0); row < height; row++ {
		var (
			val  = columnValue(lookup.Table, row, columns, height).String()
			freq = columnValue(lookup.Frequencies, row, columns, height)
		)
		//
		if !freq.IsUint64() {
			failures = append(failures, Failure{lookup.Handle, row, "frequency out of range"})
			return failures
		}
		//
		if f := freq.Uint64(); f != 0 {
			if looking[val] < f {
				failures = append(failures, Failure{lookup.Handle, row,
					fmt.Sprintf("frequency of %s overstated (%d recorded, %d looking)", val, f, looking[val])})
			} else {
				looking[val] -= f
				//
				if looking[val] == 0 {
					delete(looking, val)
				}
			}
		}
	}
	// Anything left over never matched a table row.
	for val, count := range looking {
		failures = append(failures, Failure{lookup.Handle, 0,
			fmt.Sprintf("%d looking occurrence(s) of %s unmatched by table", count, val)})
	}
	//
	return failures
}
