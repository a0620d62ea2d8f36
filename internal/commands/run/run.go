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
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/6flow-studio/6flow-convergence-sub000/internal/commands/shared"
	"github.com/6flow-studio/6flow-convergence-sub000/internal/jq"
	"github.com/6flow-studio/6flow-convergence-sub000/internal/log"
	"github.com/6flow-studio/6flow-convergence-sub000/pkg/preview"
	"github.com/6flow-studio/6flow-convergence-sub000/pkg/workflow"
)

// debounceWindow collapses fsnotify event bursts from editors that write
// a file in several syscalls.
const debounceWindow = 150 * time.Millisecond

type options struct {
	file       string
	nodeID     string
	selectExpr string
	watch      bool
	output     string
}

func runPreview(cmd *cobra.Command, opts options) error {
	logger := log.New(cliLogConfig())

	jqExec := jq.NewExecutor(0, 0)
	if opts.selectExpr != "" {
		if err := jqExec.Validate(opts.selectExpr); err != nil {
			return shared.NewInvalidUsageError(fmt.Sprintf("invalid --select expression: %v", err))
		}
	}

	svc := preview.NewService(preview.Config{Logger: logger})

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if !opts.watch {
		return executeOnce(ctx, cmd, svc, jqExec, opts)
	}
	return watchLoop(ctx, cmd, svc, jqExec, opts)
}

// executeOnce loads the document, previews the node, and prints the result.
func executeOnce(ctx context.Context, cmd *cobra.Command, svc *preview.Service, jqExec *jq.Executor, opts options) error {
	doc, err := workflow.LoadFile(opts.file)
	if err != nil {
		return shared.NewInvalidWorkflowError(fmt.Sprintf("failed to load %s", opts.file), err)
	}

	result, err := svc.Preview(ctx, doc, opts.nodeID)
	if err != nil {
		return shared.NewPreviewFailedError(fmt.Sprintf("preview of node %q failed", opts.nodeID), err)
	}

	if opts.selectExpr != "" {
		selected, err := jqExec.Execute(ctx, opts.selectExpr, result.NormalizedResult)
		if err != nil {
			return shared.NewPreviewFailedError("selection failed", err)
		}
		return printJSON(cmd, selected)
	}

	if opts.output == "json" {
		return printJSON(cmd, result)
	}
	return printPretty(cmd, doc, result)
}

// watchLoop re-runs the preview whenever the document file changes.
// A failed preview is reported but does not end the loop.
func watchLoop(ctx context.Context, cmd *cobra.Command, svc *preview.Service, jqExec *jq.Executor, opts options) error {
	absPath, err := filepath.Abs(opts.file)
	if err != nil {
		return shared.NewInvalidUsageError(fmt.Sprintf("failed to resolve %s: %v", opts.file, err))
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: editors commonly replace the file on save,
	// which drops a watch registered on the file itself.
	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(absPath), err)
	}

	reportOnce := func() {
		if err := executeOnce(ctx, cmd, svc, jqExec, opts); err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err.Error())
		}
	}

	reportOnce()
	if !shared.GetQuiet() {
		cmd.PrintErrf("Watching %s for changes (Ctrl-C to stop)\n", opts.file)
	}

	var debounce *time.Timer
	pending := make(chan struct{}, 1)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != absPath {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(debounceWindow, func() {
				select {
				case pending <- struct{}{}:
				default:
				}
			})
		case <-pending:
			reportOnce()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintln(os.Stderr, "Watch error:", err.Error())
		}
	}
}

func printJSON(cmd *cobra.Command, v any) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	return nil
}

func printPretty(cmd *cobra.Command, doc *workflow.Workflow, result *preview.Result) error {
	kind := ""
	if node := doc.Node(result.NodeID); node != nil {
		kind = string(node.Kind)
	}

	cmd.Printf("Preview %s\n", result.PreviewID)
	cmd.Printf("  node:     %s (%s)\n", result.NodeID, kind)
	cmd.Printf("  executed: %s\n", result.ExecutedAt.Format(time.RFC3339))
	if result.Truncated {
		cmd.Println("  note:     result truncated to preview limits")
	}
	for _, w := range result.Warnings {
		cmd.Printf("  warning:  %s\n", w)
	}
	cmd.Println()
	return printJSON(cmd, result.NormalizedResult)
}

func cliLogConfig() *log.Config {
	cfg := log.FromEnv()
	cfg.Format = log.FormatText
	if shared.GetVerbose() {
		cfg.Level = "debug"
	}
	if shared.GetQuiet() {
		cfg.Level = "error"
	}
	return cfg
}
