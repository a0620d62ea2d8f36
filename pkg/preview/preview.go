// Package preview executes a single workflow node for real and returns a
// bounded, schema-annotated picture of what it produced. It is the public
// facade over graph traversal, expression resolution, node execution,
// sanitization and schema inference.
package preview

import (
	"context"
	stderrors "errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/6flow-studio/6flow-convergence-sub000/internal/executor"
	"github.com/6flow-studio/6flow-convergence-sub000/internal/graph"
	"github.com/6flow-studio/6flow-convergence-sub000/internal/infer"
	"github.com/6flow-studio/6flow-convergence-sub000/internal/log"
	"github.com/6flow-studio/6flow-convergence-sub000/internal/sanitize"
	"github.com/6flow-studio/6flow-convergence-sub000/pkg/errors"
	"github.com/6flow-studio/6flow-convergence-sub000/pkg/workflow"
)

// Result is one completed node preview.
type Result struct {
	// PreviewID uniquely identifies this preview attempt.
	PreviewID string `json:"previewId"`

	// NodeID is the node that was executed.
	NodeID string `json:"nodeId"`

	// RawResult is the bounded protocol-level artifact.
	RawResult any `json:"rawResult"`

	// NormalizedResult is the bounded value downstream references see.
	NormalizedResult any `json:"normalizedResult"`

	// Warnings are non-fatal caveats. A preview with warnings still
	// succeeded.
	Warnings []string `json:"warnings,omitempty"`

	// Schema is the structural schema inferred from NormalizedResult.
	Schema *workflow.DataSchema `json:"schema,omitempty"`

	// Truncated reports whether sanitization cut or redacted anything
	// in the results.
	Truncated bool `json:"truncated"`

	// ExecutedAt is when the preview completed, UTC.
	ExecutedAt time.Time `json:"executedAt"`
}

// Config configures a Service. Zero fields fall back to production
// defaults.
type Config struct {
	Logger   *slog.Logger
	Executor executor.Config
	Tracer   trace.Tracer
}

// Service executes node previews against a workflow document.
type Service struct {
	logger *slog.Logger
	exec   *executor.Executor
	tracer trace.Tracer
}

// NewService creates a preview Service.
func NewService(cfg Config) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Executor.Logger == nil {
		cfg.Executor.Logger = logger
	}
	tracer := cfg.Tracer
	if tracer == nil {
		tracer = otel.Tracer("preview")
	}
	return &Service{
		logger: log.WithComponent(logger, "preview"),
		exec:   executor.New(cfg.Executor),
		tracer: tracer,
	}
}

// Preview executes one node of the document and memoizes the bounded
// result onto the node. Every failure leaving this method is a
// *errors.PreviewError; panics inside execution surface as
// execution_failed rather than crashing the caller.
func (s *Service) Preview(ctx context.Context, doc *workflow.Workflow, nodeID string) (result *Result, err error) {
	previewID := uuid.NewString()
	logger := log.WithPreviewContext(s.logger, previewID, nodeID)

	ctx, span := s.tracer.Start(ctx, "preview.execute", trace.WithAttributes(
		attribute.String("preview.id", previewID),
		attribute.String("node.id", nodeID),
	))
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			err = errors.Newf(errors.CodeExecutionFailed, "preview panicked: %v", r)
		}
		if err != nil {
			err = classify(err)
			span.SetStatus(codes.Error, err.Error())
			logger.Warn("preview failed", log.Error(err))
			result = nil
		}
	}()

	node := doc.Node(nodeID)
	if node == nil {
		return nil, errors.Newf(errors.CodeNodeNotFound, "node %q does not exist in the workflow", nodeID)
	}
	span.SetAttributes(attribute.String("node.kind", string(node.Kind)))

	outcome, err := s.exec.Execute(ctx, doc, node)
	if err != nil {
		return nil, err
	}

	boundedRaw, cutRaw := sanitize.Bound(outcome.Raw)
	boundedNormalized, cutNormalized := sanitize.Bound(outcome.Normalized)
	schema := infer.Schema(boundedNormalized)
	executedAt := time.Now().UTC()

	// Memoized on success only; a failed preview leaves the previous
	// memo in place for downstream references.
	node.LastExecution = &workflow.NodeExecution{
		RawResult:        boundedRaw,
		NormalizedResult: boundedNormalized,
		Warnings:         outcome.Warnings,
		OutputSchema:     schema,
		ExecutedAt:       executedAt,
	}

	logger.Info("preview complete",
		log.NodeKindKey, string(node.Kind),
		"truncated", cutRaw || cutNormalized,
		"warnings", len(outcome.Warnings))

	return &Result{
		PreviewID:        previewID,
		NodeID:           nodeID,
		RawResult:        boundedRaw,
		NormalizedResult: boundedNormalized,
		Warnings:         outcome.Warnings,
		Schema:           schema,
		Truncated:        cutRaw || cutNormalized,
		ExecutedAt:       executedAt,
	}, nil
}

// UpstreamSchemas reports the executed or declared output shapes of every
// node reachable backward from the target, closest first.
func (s *Service) UpstreamSchemas(doc *workflow.Workflow, nodeID string) []workflow.Ancestor {
	return graph.ResolveUpstream(nodeID, doc.Nodes, doc.Edges)
}

// classify guarantees the closed error taxonomy at the service boundary.
func classify(err error) *errors.PreviewError {
	if pe, ok := errors.AsPreview(err); ok {
		return pe
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.WrapCode(err, errors.CodeExecutionTimeout, "preview deadline exceeded")
	}
	return errors.WrapCode(err, errors.CodeExecutionFailed, "preview failed")
}
