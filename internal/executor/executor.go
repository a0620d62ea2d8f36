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

// Package executor runs a single workflow node against its real backend
// and captures the raw and normalized artifacts of that one attempt.
//
// Exactly three node kinds are executable: httpRequest, evmRead, and
// evmWrite. Everything else is rejected up front; the registry is a closed
// allow-list, not a plugin point. Each execution is one external call
// under one deadline, with no retries.
package executor

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/6flow-studio/6flow-convergence-sub000/internal/log"
	"github.com/6flow-studio/6flow-convergence-sub000/internal/secrets"
	"github.com/6flow-studio/6flow-convergence-sub000/pkg/errors"
	"github.com/6flow-studio/6flow-convergence-sub000/pkg/httpclient"
	"github.com/6flow-studio/6flow-convergence-sub000/pkg/workflow"
)

// DefaultTimeout bounds a node execution when the node does not carry its
// own timeout.
const DefaultTimeout = 30 * time.Second

// maxResponseBytes caps how much of an HTTP response body is read.
const maxResponseBytes = 10 << 20

// Result is the artifact of one node execution, before sanitization.
type Result struct {
	// Raw is the protocol-level artifact (HTTP status/headers/body text,
	// chain call return data).
	Raw any

	// Normalized is the value downstream reference expressions will see.
	Normalized any

	// Warnings are non-fatal caveats observed during execution.
	Warnings []string
}

type execFunc func(ctx context.Context, e *Executor, wf *workflow.Workflow, node *workflow.Node) (*Result, error)

// registry maps each executable kind to its executor. The zero entries for
// every other kind are deliberate; adding one requires a new executor.
var registry = map[workflow.Kind]execFunc{
	workflow.KindHTTPRequest: execHTTPRequest,
	workflow.KindEVMRead:     execEVMRead,
	workflow.KindEVMWrite:    execEVMWrite,
}

// Config configures an Executor. Zero fields fall back to production
// defaults; tests substitute fakes.
type Config struct {
	Logger         *slog.Logger
	HTTPClient     *http.Client
	Secrets        *secrets.Resolver
	Dial           Dialer
	DefaultTimeout time.Duration
}

// Executor executes individual workflow nodes.
type Executor struct {
	logger         *slog.Logger
	client         *http.Client
	secrets        *secrets.Resolver
	dial           Dialer
	defaultTimeout time.Duration
}

// New creates an Executor, filling defaults for unset config fields.
func New(cfg Config) *Executor {
	e := &Executor{
		logger:         cfg.Logger,
		client:         cfg.HTTPClient,
		secrets:        cfg.Secrets,
		dial:           cfg.Dial,
		defaultTimeout: cfg.DefaultTimeout,
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.client == nil {
		// Per-call deadlines come from context.WithTimeout; the client's
		// own timeout is only a backstop above any node-level override.
		clientCfg := httpclient.DefaultConfig()
		clientCfg.Timeout = 5 * time.Minute
		client, err := httpclient.New(clientCfg)
		if err != nil {
			client = http.DefaultClient
		}
		e.client = client
	}
	if e.secrets == nil {
		e.secrets = secrets.NewResolver()
	}
	if e.dial == nil {
		e.dial = EthDial
	}
	if e.defaultTimeout <= 0 {
		e.defaultTimeout = DefaultTimeout
	}
	return e
}

// Supports reports whether the kind has an executor.
func Supports(kind workflow.Kind) bool {
	_, ok := registry[kind]
	return ok
}

// Execute runs one node under a per-call deadline. A deadline overrun
// always surfaces as an execution_timeout, regardless of where in the
// attempt it struck.
func (e *Executor) Execute(ctx context.Context, wf *workflow.Workflow, node *workflow.Node) (*Result, error) {
	fn, ok := registry[node.Kind]
	if !ok {
		return nil, errors.Newf(errors.CodeUnsupportedNodeKind,
			"node %q has kind %q, which cannot be executed; only httpRequest, evmRead and evmWrite can", node.ID, node.Kind)
	}

	timeout := e.timeoutFor(node)
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	logger := e.logger.With(log.NodeIDKey, node.ID, log.NodeKindKey, string(node.Kind))
	logger.Debug("executing node", "timeout", timeout.String())

	start := time.Now()
	res, err := fn(ctx, e, wf, node)
	elapsed := time.Since(start)

	if err != nil {
		if stderrors.Is(ctx.Err(), context.DeadlineExceeded) || stderrors.Is(err, context.DeadlineExceeded) {
			timeoutErr := errors.Newf(errors.CodeExecutionTimeout,
				"node %q timed out after %s", node.ID, timeout)
			timeoutErr.Cause = err
			logger.Warn("node execution timed out", log.DurationKey, elapsed.String())
			return nil, timeoutErr
		}
		logger.Warn("node execution failed", log.Error(err), log.DurationKey, elapsed.String())
		return nil, err
	}

	logger.Info("node executed", log.DurationKey, elapsed.String(), "warnings", len(res.Warnings))
	return res, nil
}

// timeoutFor derives the per-call deadline: the node's own timeout when it
// declares a positive one, the executor default otherwise.
func (e *Executor) timeoutFor(node *workflow.Node) time.Duration {
	if cfg, ok := node.Data.Config.(*workflow.HTTPRequestConfig); ok && cfg.Timeout > 0 {
		return time.Duration(cfg.Timeout) * time.Second
	}
	return e.defaultTimeout
}

func configError(node *workflow.Node, format string, args ...any) error {
	return errors.Newf(errors.CodeInvalidConfiguration,
		"node %q: %s", node.ID, fmt.Sprintf(format, args...))
}
