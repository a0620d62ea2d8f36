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
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/6flow-studio/6flow-convergence-sub000/pkg/preview"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	s := New(Config{}, preview.NewService(preview.Config{}), nil)
	ts := httptest.NewServer(s.httpSrv.Handler)
	t.Cleanup(ts.Close)
	return ts
}

func workflowDoc(nodeURL string) string {
	return fmt.Sprintf(`{
		"id": "wf-1",
		"name": "test",
		"nodes": [
			{
				"id": "fetch",
				"type": "httpRequest",
				"position": {"x": 0, "y": 0},
				"data": {
					"label": "Fetch",
					"config": {"method": "GET", "url": %q}
				}
			}
		],
		"edges": []
	}`, nodeURL)
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", bytes.NewBufferString(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHandlePreview(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"greeting": "hello"}`))
	}))
	defer backend.Close()

	ts := newTestServer(t)

	body := fmt.Sprintf(`{"workflow": %s, "nodeId": "fetch"}`, workflowDoc(backend.URL))
	resp := postJSON(t, ts.URL+"/api/preview", body)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result preview.Result
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.NotEmpty(t, result.PreviewID)
	assert.Equal(t, "fetch", result.NodeID)

	normalized := result.NormalizedResult.(map[string]any)
	assert.Equal(t, float64(200), normalized["statusCode"])
}

func TestHandlePreviewNodeNotFound(t *testing.T) {
	ts := newTestServer(t)

	body := fmt.Sprintf(`{"workflow": %s, "nodeId": "ghost"}`, workflowDoc("http://example.com"))
	resp := postJSON(t, ts.URL+"/api/preview", body)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	var errResp errorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&errResp))
	assert.Equal(t, "node_not_found", string(errResp.Code))
	assert.Equal(t, http.StatusNotFound, errResp.Status)
	assert.Contains(t, errResp.Message, "ghost")
}

func TestHandlePreviewBadRequests(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"not json", `{{{`},
		{"missing nodeId", fmt.Sprintf(`{"workflow": %s}`, workflowDoc("http://example.com"))},
		{"missing workflow", `{"nodeId": "fetch"}`},
		{"invalid workflow", `{"workflow": {"id": "w", "nodes": [{"id": "a", "type": "noSuchKind", "data": {"config": {}}}]}, "nodeId": "a"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, ts.URL+"/api/preview", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestHandleUpstreamSchemas(t *testing.T) {
	ts := newTestServer(t)

	doc := `{
		"id": "wf-1",
		"nodes": [
			{"id": "cron", "type": "cronTrigger", "data": {"config": {"schedule": "* * * * *"}}},
			{"id": "fetch", "type": "httpRequest", "data": {"config": {"url": "http://example.com"}}}
		],
		"edges": [{"id": "e1", "source": "cron", "target": "fetch"}]
	}`
	resp := postJSON(t, ts.URL+"/api/upstream-schemas",
		fmt.Sprintf(`{"workflow": %s, "nodeId": "fetch"}`, doc))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var payload struct {
		Ancestors []map[string]any `json:"ancestors"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	require.Len(t, payload.Ancestors, 1)
	assert.Equal(t, "cron", payload.Ancestors[0]["nodeId"])
}

func TestHandleHealthz(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
