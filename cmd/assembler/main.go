// This file is part of syntheticasm.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command assembler compiles syntheticasm source into a binary image.
//
// Usage: assembler <input> [output]
//
// Exit status is 0 on success, 1 on any fatal assembly error.
package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/RaidTheWeb/syntheticasm/asm"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		atExit(err)
	}
}

func newRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "assembler <input> [output]",
		Short: "Assemble syntheticasm source into a binary image",
		Example: `  assembler main.asm
  assembler main.asm main.out`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			input := args[0]
			output := "a.out"
			if len(args) == 2 {
				output = args[1]
			}
			if _, err := os.Stat(input); err != nil {
				return errors.Errorf("input file `%s` does not exist.", input)
			}
			return asm.AssembleToFile(input, output)
		},
	}
}

func atExit(err error) {
	fmt.Fprintf(os.Stderr, "%v\n", err)
	os.Exit(1)
}
