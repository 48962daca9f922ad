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
	"errors"
	"fmt"
	"os"

	"github.com/consensys/go-zkevm/pkg/memory"
	gl "github.com/consensys/go-zkevm/pkg/util/field/goldilocks"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check [flags] log_file",
	Short: "Generate a memory trace from a log and check it.",
	Long: `Generate a memory trace from a given access log and check it
	against the memory constraints and lookups.  Logs are given as JSON
	files holding the access log, the pre-existing memory state and the
	stale contexts.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}
		//
		report := getFlag(cmd, "report")
		// Parse memory log
		ops, memBefore, staleContexts := readMemoryLogFile(args[0])
		// Generate trace
		trace, err := memory.GenerateTrace[gl.Element](ops, memBefore, staleContexts)
		//
		var invariant *memory.InvariantError
		//
		switch {
		case errors.As(err, &invariant):
			fmt.Printf("malformed memory log (%s): %s\n", invariant.Invariant, invariant.Observed)
			os.Exit(2)
		case err != nil:
			fmt.Println(err)
			os.Exit(2)
		}
		// Check trace
		failures := memory.Check(trace)
		//
		if len(failures) != 0 {
			for _, failure := range failures {
				if report {
					fmt.Println(failure.String())
				}
			}
			//
			fmt.Printf("rejected: %d constraint failures\n", len(failures))
			os.Exit(1)
		}
		//
		log.Infof("accepted memory trace (%d rows, %d in final state)",
			trace.Height(), len(trace.MemAfter))
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().Bool("report", false, "report details of each constraint failure")
}
