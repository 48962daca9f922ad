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
package util

// Transpose flips a rectangular matrix between row-major and column-major
// layouts.  All inner slices must have equal length.
func Transpose[T any](matrix [][]T) [][]T {
	if len(matrix) == 0 {
		return nil
	}
	//
	var (
		rows = len(matrix)
		cols = len(matrix[0])
		//
		transposed = make([][]T, cols)
	)
	//
	for i := 0; i < cols; i++ {
		transposed[i] = make([]T, rows)
		//
		for j := 0; j < rows; j++ {
			transposed[i][j] = matrix[j][i]
		}
	}
	//
	return transposed
}
