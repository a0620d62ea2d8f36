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

package executor

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/6flow-studio/6flow-convergence-sub000/internal/secrets"
	"github.com/6flow-studio/6flow-convergence-sub000/pkg/errors"
	"github.com/6flow-studio/6flow-convergence-sub000/pkg/workflow"
)

func TestHTTPRequestJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "1", r.URL.Query().Get("page"))

		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"name":"alice"}`, string(body))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": 7, "ok": true}`))
	}))
	defer server.Close()

	node := httpNode("req", &workflow.HTTPRequestConfig{
		Method:          "post",
		URL:             server.URL,
		QueryParameters: map[string]string{"page": "1"},
		Body: &workflow.HTTPBodyConfig{
			ContentType: "json",
			Data:        `{"name":"alice"}`,
		},
	})
	wf := singleNodeWorkflow(node, workflow.GlobalConfig{})

	res, err := New(Config{}).Execute(context.Background(), wf, node)
	require.NoError(t, err)

	normalized, ok := res.Normalized.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 200, normalized["statusCode"])
	assert.Equal(t, map[string]any{"id": float64(7), "ok": true}, normalized["body"])

	headers, ok := normalized["headers"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "application/json", headers["content-type"])
}

func TestHTTPRequestResolvesReferences(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/42", r.URL.Path)
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	upstream := &workflow.Node{
		ID:   "lookup",
		Kind: workflow.KindJSONParse,
		Data: workflow.NodeData{Config: &workflow.JSONParseConfig{}},
		LastExecution: &workflow.NodeExecution{
			NormalizedResult: map[string]any{"userId": float64(42)},
		},
	}
	node := httpNode("req", &workflow.HTTPRequestConfig{
		URL: server.URL + "/users/{{lookup.userId}}",
	})
	wf := &workflow.Workflow{
		ID:    "wf-1",
		Nodes: []*workflow.Node{upstream, node},
	}

	_, err := New(Config{}).Execute(context.Background(), wf, node)
	require.NoError(t, err)
}

func TestHTTPRequestBearerSecret(t *testing.T) {
	var receivedAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	node := httpNode("req", &workflow.HTTPRequestConfig{
		URL: server.URL,
		Authentication: &workflow.HTTPAuthConfig{
			Type:        "bearerToken",
			TokenSecret: "apiKey",
		},
	})
	wf := singleNodeWorkflow(node, workflow.GlobalConfig{
		Secrets: []workflow.SecretReference{{Name: "apiKey", EnvVariable: "TEST_API_KEY"}},
	})

	resolver := secrets.NewResolverWithLookup(func(key string) (string, bool) {
		if key == "TEST_API_KEY" {
			return "tok-123", true
		}
		return "", false
	})

	_, err := New(Config{Secrets: resolver}).Execute(context.Background(), wf, node)
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", receivedAuth)
}

func TestHTTPRequestMasksEchoedSecret(t *testing.T) {
	// Debug endpoints that echo request headers must not surface the
	// resolved token in the preview.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"echoedAuth": %q}`, r.Header.Get("Authorization"))
	}))
	defer server.Close()

	node := httpNode("req", &workflow.HTTPRequestConfig{
		URL: server.URL,
		Authentication: &workflow.HTTPAuthConfig{
			Type:        "bearerToken",
			TokenSecret: "apiKey",
		},
	})
	wf := singleNodeWorkflow(node, workflow.GlobalConfig{
		Secrets: []workflow.SecretReference{{Name: "apiKey", EnvVariable: "TEST_API_KEY"}},
	})

	resolver := secrets.NewResolverWithLookup(func(key string) (string, bool) {
		if key == "TEST_API_KEY" {
			return "tok-123", true
		}
		return "", false
	})

	result, err := New(Config{Secrets: resolver}).Execute(context.Background(), wf, node)
	require.NoError(t, err)

	body := result.Normalized.(map[string]any)["body"].(map[string]any)
	assert.Equal(t, "Bearer ***", body["echoedAuth"])

	rawBody := result.Raw.(map[string]any)["body"].(string)
	assert.NotContains(t, rawBody, "tok-123")
}

func TestHTTPRequestUndeclaredSecret(t *testing.T) {
	node := httpNode("req", &workflow.HTTPRequestConfig{
		URL: "http://127.0.0.1:0",
		Authentication: &workflow.HTTPAuthConfig{
			Type:        "bearerToken",
			TokenSecret: "missing",
		},
	})
	wf := singleNodeWorkflow(node, workflow.GlobalConfig{})

	_, err := New(Config{}).Execute(context.Background(), wf, node)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeSecretNotDeclared))
}

func TestHTTPRequestUnexpectedStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	node := httpNode("req", &workflow.HTTPRequestConfig{URL: server.URL})
	wf := singleNodeWorkflow(node, workflow.GlobalConfig{})

	_, err := New(Config{}).Execute(context.Background(), wf, node)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeUnexpectedHTTPStatus))
	assert.Contains(t, err.Error(), "503")
	assert.Contains(t, err.Error(), "[200]")
}

func TestHTTPRequestExpectedStatusList(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"created": true}`))
	}))
	defer server.Close()

	node := httpNode("req", &workflow.HTTPRequestConfig{
		URL:                 server.URL,
		ExpectedStatusCodes: []int{200, 201},
	})
	wf := singleNodeWorkflow(node, workflow.GlobalConfig{})

	res, err := New(Config{}).Execute(context.Background(), wf, node)
	require.NoError(t, err)
	assert.Equal(t, 201, res.Normalized.(map[string]any)["statusCode"])
}

func TestHTTPRequestInvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>not json</html>`))
	}))
	defer server.Close()

	node := httpNode("req", &workflow.HTTPRequestConfig{URL: server.URL})
	wf := singleNodeWorkflow(node, workflow.GlobalConfig{})

	_, err := New(Config{}).Execute(context.Background(), wf, node)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeInvalidJSONResponse))
}

func TestHTTPRequestTextFormat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("plain text, not json"))
	}))
	defer server.Close()

	node := httpNode("req", &workflow.HTTPRequestConfig{
		URL:            server.URL,
		ResponseFormat: "text",
	})
	wf := singleNodeWorkflow(node, workflow.GlobalConfig{})

	res, err := New(Config{}).Execute(context.Background(), wf, node)
	require.NoError(t, err)
	assert.Equal(t, "plain text, not json", res.Normalized.(map[string]any)["body"])
}

func TestHTTPRequestBinaryFormat(t *testing.T) {
	payload := []byte{0x00, 0x01, 0xff}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	}))
	defer server.Close()

	node := httpNode("req", &workflow.HTTPRequestConfig{
		URL:            server.URL,
		ResponseFormat: "binary",
	})
	wf := singleNodeWorkflow(node, workflow.GlobalConfig{})

	res, err := New(Config{}).Execute(context.Background(), wf, node)
	require.NoError(t, err)
	assert.Equal(t, base64.StdEncoding.EncodeToString(payload),
		res.Normalized.(map[string]any)["body"])
}

func TestHTTPRequestFormBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "alice", r.PostForm.Get("name"))
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	node := httpNode("req", &workflow.HTTPRequestConfig{
		Method: "POST",
		URL:    server.URL,
		Body: &workflow.HTTPBodyConfig{
			ContentType: "form",
			Data:        "name=alice",
		},
	})
	wf := singleNodeWorkflow(node, workflow.GlobalConfig{})

	_, err := New(Config{}).Execute(context.Background(), wf, node)
	require.NoError(t, err)
}

func TestHTTPRequestPreviewWarnings(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	yes := true
	no := false
	node := httpNode("req", &workflow.HTTPRequestConfig{
		URL:             server.URL,
		IgnoreSSL:       &yes,
		FollowRedirects: &no,
	})
	wf := singleNodeWorkflow(node, workflow.GlobalConfig{})

	res, err := New(Config{}).Execute(context.Background(), wf, node)
	require.NoError(t, err)
	require.Len(t, res.Warnings, 2)
	assert.Contains(t, res.Warnings[0], "ignoreSsl")
	assert.Contains(t, res.Warnings[1], "followRedirects")
}

func TestHTTPRequestMissingURL(t *testing.T) {
	node := httpNode("req", &workflow.HTTPRequestConfig{})
	wf := singleNodeWorkflow(node, workflow.GlobalConfig{})

	_, err := New(Config{}).Execute(context.Background(), wf, node)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeInvalidConfiguration))
}

func TestHTTPRequestBadScheme(t *testing.T) {
	node := httpNode("req", &workflow.HTTPRequestConfig{URL: "file:///etc/passwd"})
	wf := singleNodeWorkflow(node, workflow.GlobalConfig{})

	_, err := New(Config{}).Execute(context.Background(), wf, node)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeInvalidConfiguration))
}
