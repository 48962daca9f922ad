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

import "fmt"

// Failure records the rejection of a trace by one constraint or lookup on one
// row.  Failures are ordinary values rather than Go errors: rejecting an
// untrusted trace is an expected outcome of verification, in contrast to the
// fatal invariant violations raised during trace generation.
type Failure struct {
	// Handle of the constraint or lookup which rejected the trace.
	Handle string
	// Row on which the rejection occurred.
	Row uint
	// Msg describes the rejection.
	Msg string
}

// Message returns a human-readable description of this failure.
func (p Failure) Message() string {
	return fmt.Sprintf("%s (row %d): %s", p.Handle, p.Row, p.Msg)
}

func (p Failure) String() string {
	return p.Message()
}
