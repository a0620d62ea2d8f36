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

package run

import (
	"github.com/spf13/cobra"

	"github.com/6flow-studio/6flow-convergence-sub000/internal/commands/shared"
)

// NewCommand creates the run command
func NewCommand() *cobra.Command {
	var (
		file       string
		nodeID     string
		selectExpr string
		watch      bool
		output     string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute a single-node preview",
		Annotations: map[string]string{
			"group": "execution",
		},
		Long: `Run loads a workflow document, executes the selected node for real,
and prints the preview.

The node's upstream references ({{nodeId.path}}) resolve against the
last execution memoized on each referenced node, so preview downstream
nodes in order: each successful preview feeds the next.

Watch Mode:
  --watch re-runs the preview every time the document file changes.
  Press Ctrl-C to stop.

Selection:
  --select applies a jq expression to the normalized result, e.g.
  flowpreview run -f doc.yaml --node fetch --select '.body.items[0]'

Output formats:
  -o pretty  Human-readable summary (default)
  -o json    Full preview result as JSON`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				return shared.NewInvalidUsageError("--file is required")
			}
			if nodeID == "" {
				return shared.NewInvalidUsageError("--node is required")
			}
			if output != "pretty" && output != "json" {
				return shared.NewInvalidUsageError("--output must be json or pretty")
			}
			opts := options{
				file:       file,
				nodeID:     nodeID,
				selectExpr: selectExpr,
				watch:      watch,
				output:     output,
			}
			return runPreview(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Workflow document (JSON or YAML)")
	cmd.Flags().StringVar(&nodeID, "node", "", "ID of the node to preview")
	cmd.Flags().StringVar(&selectExpr, "select", "", "jq expression applied to the normalized result")
	cmd.Flags().BoolVar(&watch, "watch", false, "Re-run the preview when the document changes")
	cmd.Flags().StringVarP(&output, "output", "o", "pretty", "Output format (json, pretty)")

	return cmd
}
