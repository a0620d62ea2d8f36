// Copyright 2025 6flow Studio
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

package examples

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/6flow-studio/6flow-convergence-sub000/internal/examples"
)

// NewCommand creates the examples command
func NewCommand() *cobra.Command {
	var copyTo string

	cmd := &cobra.Command{
		Use:   "examples [name]",
		Short: "List or export example workflow documents",
		Long: `Examples lists the workflow documents embedded in the binary.

With a name, the example is printed to stdout; --copy writes it to a
file instead, ready for flowpreview run -f.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return listExamples(cmd)
			}
			return showExample(cmd, args[0], copyTo)
		},
	}

	cmd.Flags().StringVar(&copyTo, "copy", "", "Write the example to this path instead of stdout")

	return cmd
}

func listExamples(cmd *cobra.Command) error {
	list, err := examples.List()
	if err != nil {
		return err
	}

	cmd.Println("Available examples:")
	for _, ex := range list {
		cmd.Printf("  %-22s %s\n", ex.Name, ex.Description)
	}
	cmd.Println()
	cmd.Println("Run one with: flowpreview examples <name> --copy doc.yaml")
	return nil
}

func showExample(cmd *cobra.Command, name, copyTo string) error {
	if !examples.Exists(name) {
		return fmt.Errorf("example %q not found; run 'flowpreview examples' to list them", name)
	}

	if copyTo != "" {
		if err := examples.CopyTo(name, copyTo); err != nil {
			return err
		}
		cmd.Printf("Wrote %s\n", copyTo)
		return nil
	}

	content, err := examples.Get(name)
	if err != nil {
		return err
	}
	cmd.Print(string(content))
	return nil
}
