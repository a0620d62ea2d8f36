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

package server

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/6flow-studio/6flow-convergence-sub000/internal/log"
	"github.com/6flow-studio/6flow-convergence-sub000/pkg/errors"
	"github.com/6flow-studio/6flow-convergence-sub000/pkg/workflow"
)

// maxRequestBytes bounds a preview request body.
const maxRequestBytes = 20 << 20

type previewRequest struct {
	Workflow json.RawMessage `json:"workflow"`
	NodeID   string          `json:"nodeId"`
}

type errorResponse struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
	Status  int         `json:"status"`
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	doc, req, ok := s.decodeRequest(w, r)
	if !ok {
		return
	}

	kind := "unknown"
	if node := doc.Node(req.NodeID); node != nil {
		kind = string(node.Kind)
	}

	start := time.Now()
	result, err := s.svc.Preview(r.Context(), doc, req.NodeID)
	elapsed := time.Since(start)

	if err != nil {
		s.metrics.observe(kind, "error", elapsed)
		s.writeError(w, err)
		return
	}

	s.metrics.observe(kind, "success", elapsed)
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleUpstreamSchemas(w http.ResponseWriter, r *http.Request) {
	doc, req, ok := s.decodeRequest(w, r)
	if !ok {
		return
	}

	ancestors := s.svc.UpstreamSchemas(doc, req.NodeID)
	s.writeJSON(w, http.StatusOK, map[string]any{"ancestors": ancestors})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) decodeRequest(w http.ResponseWriter, r *http.Request) (*workflow.Workflow, previewRequest, bool) {
	var req previewRequest

	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes))
	if err != nil {
		s.writeError(w, errors.Newf(errors.CodeInvalidConfiguration, "reading request: %v", err))
		return nil, req, false
	}
	if err := json.Unmarshal(body, &req); err != nil {
		s.writeError(w, errors.Newf(errors.CodeInvalidConfiguration, "request is not valid JSON: %v", err))
		return nil, req, false
	}
	if req.NodeID == "" {
		s.writeError(w, errors.New(errors.CodeInvalidConfiguration, "nodeId is required"))
		return nil, req, false
	}
	if len(req.Workflow) == 0 {
		s.writeError(w, errors.New(errors.CodeInvalidConfiguration, "workflow is required"))
		return nil, req, false
	}

	doc, err := workflow.Parse(req.Workflow)
	if err != nil {
		s.writeError(w, errors.WrapCode(err, errors.CodeInvalidConfiguration, "parsing workflow"))
		return nil, req, false
	}
	return doc, req, true
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	pe, ok := errors.AsPreview(err)
	if !ok {
		pe = errors.WrapCode(err, errors.CodeExecutionFailed, "preview failed")
	}

	s.logger.Warn("request failed", log.Error(pe), "code", string(pe.Code))
	s.writeJSON(w, int(pe.Status), errorResponse{
		Code:    pe.Code,
		Message: pe.Message,
		Status:  int(pe.Status),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("writing response", log.Error(err))
	}
}
