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
package field

// BatchInvert inverts the list of elements s in place, using a single field
// inversion plus three multiplications per element (Montgomery's trick).
// Zero entries stay zero.
func BatchInvert[T Element[T]](s []T) {
	if len(s) == 0 {
		return
	}
	//
	var (
		zero = Zero[T]()
		one  = One[T]()
		// identifies entries which are zero
		isZero = make([]bool, len(s))
		// m[i] = s[i] * s[i+1] * ...
		m = make([]T, len(s))
	)
	//
	for i := len(s) - 1; i >= 0; i-- {
		isZero[i] = s[i].IsZero()
		// Substitute 1 so the running product stays invertible.
		if isZero[i] {
			s[i] = one
		}
		//
		if i == len(s)-1 {
			m[i] = s[i]
		} else {
			m[i] = m[i+1].Mul(s[i])
		}
	}
	// inv = s[0]⁻¹ * s[1]⁻¹ * ...
	inv := m[0].Inverse()
	//
	for i := 0; i < len(s)-1; i++ {
		// inv = s[i]⁻¹ * s[i+1]⁻¹ * ...
		newInv := inv.Mul(s[i])
		s[i] = inv.Mul(m[i+1])
		inv = newInv
		//
		if isZero[i] {
			s[i] = zero
		}
	}
	//
	s[len(s)-1] = inv
	//
	if isZero[len(s)-1] {
		s[len(s)-1] = zero
	}
}
