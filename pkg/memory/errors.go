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

import "fmt"

// InvariantError signals that trace generation observed a state which a
// correct subsystem (or caller) can never produce: an oversized range-check
// delta, an empty operation log, a duplicated stale context.  It aborts
// generation: coercing such a state into valid-looking columns would yield an
// unsound proof.  It is distinct from a constraint Failure, which is the
// normal rejection of an untrusted trace during checking.
type InvariantError struct {
	// Invariant names the violated invariant.
	Invariant string
	// Observed describes the offending value.
	Observed string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("invariant %q violated: %s", e.Invariant, e.Observed)
}

func invariantViolated(invariant, format string, args ...any) *InvariantError {
	return &InvariantError{invariant, fmt.Sprintf(format, args...)}
}
