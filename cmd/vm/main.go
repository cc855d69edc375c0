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

// Command vm interprets a syntheticasm binary image.
//
// Usage: vm <image>
//
// Exit status is 0 on a clean halt, 1 on invalid register, division by
// zero, negative subtraction/decrement, or a malformed image.
package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/RaidTheWeb/syntheticasm/internal/image"
	"github.com/RaidTheWeb/syntheticasm/vm"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		atExit(err)
	}
}

func newRootCmd() *cobra.Command {
	var disassemble bool
	var trace bool

	cmd := &cobra.Command{
		Use:   "vm <image>",
		Short: "Run a syntheticasm binary image",
		Example: `  vm a.out
  vm --disassemble a.out`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if _, err := os.Stat(path); err != nil {
				return errors.Errorf("image `%s` does not exist.", path)
			}
			img, err := image.Load(path)
			if err != nil {
				return err
			}
			if disassemble {
				for _, line := range img.DisassembleAll() {
					fmt.Println(line)
				}
				return nil
			}

			opts := []vm.Option{vm.Output(os.Stdout)}
			if trace {
				opts = append(opts, vm.Trace(os.Stderr))
			}
			m, err := vm.New(img, opts...)
			if err != nil {
				return err
			}
			return m.Run()
		},
	}
	cmd.Flags().BoolVar(&disassemble, "disassemble", false, "print a disassembly listing instead of executing the image")
	cmd.Flags().BoolVar(&trace, "trace", false, "print a disassembly trace of each executed instruction to stderr")
	return cmd
}

func atExit(err error) {
	fmt.Fprintf(os.Stderr, "%v\n", err)
	os.Exit(1)
}
