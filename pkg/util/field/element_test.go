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

import (
	"math/rand"
	"testing"

	"github.com/consensys/go-zkevm/pkg/util/field/goldilocks"
	"github.com/stretchr/testify/assert"
)

func TestBatchInvert(t *testing.T) {
	s := make([]goldilocks.Element, 200)
	sInv := make([]goldilocks.Element, len(s))
	scratch := make([]goldilocks.Element, len(s))

	for i := range s {
		s[i] = Uint64[goldilocks.Element](rand.Uint64() % 1000)
		sInv[i] = s[i].Inverse()

		copy(scratch[:i], s)
		BatchInvert(scratch[:i])

		for j := range i {
			assert.Equal(t, 0, sInv[j].Cmp(scratch[j]), "at index %d of %d", j, i)
		}
	}
}

func TestBatchInvertEmpty(t *testing.T) {
	BatchInvert([]goldilocks.Element{})
}

func TestFromBool(t *testing.T) {
	assert.True(t, FromBool[goldilocks.Element](true).IsOne())
	assert.True(t, FromBool[goldilocks.Element](false).IsZero())
}
