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

package main

import (
	"github.com/6flow-studio/6flow-convergence-sub000/internal/cli"
	examplescmd "github.com/6flow-studio/6flow-convergence-sub000/internal/commands/examples"
	"github.com/6flow-studio/6flow-convergence-sub000/internal/commands/run"
	versioncmd "github.com/6flow-studio/6flow-convergence-sub000/internal/commands/version"
)

// Version information (injected via ldflags at build time)
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	cli.SetVersion(version, commit, buildDate)

	rootCmd := cli.NewRootCommand()
	rootCmd.AddCommand(
		run.NewCommand(),
		examplescmd.NewCommand(),
		versioncmd.NewVersionCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		cli.HandleExitError(err)
	}
}
