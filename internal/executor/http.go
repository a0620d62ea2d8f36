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
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/6flow-studio/6flow-convergence-sub000/internal/expression"
	"github.com/6flow-studio/6flow-convergence-sub000/pkg/errors"
	"github.com/6flow-studio/6flow-convergence-sub000/pkg/workflow"
)

// execHTTPRequest performs one outbound HTTP request. Expressions in the
// url, headers, query parameters and body resolve against upstream preview
// results before the request is built.
func execHTTPRequest(ctx context.Context, e *Executor, wf *workflow.Workflow, node *workflow.Node) (*Result, error) {
	cfg, ok := node.Data.Config.(*workflow.HTTPRequestConfig)
	if !ok {
		return nil, configError(node, "configuration is not an httpRequest configuration")
	}
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, configError(node, "url is required")
	}

	resolver := expression.NewResolver(wf)

	rawURL, err := resolver.ResolveString(cfg.URL)
	if err != nil {
		return nil, err
	}
	target, err := url.Parse(rawURL)
	if err != nil {
		return nil, configError(node, "url %q does not parse: %v", rawURL, err)
	}
	if target.Scheme != "http" && target.Scheme != "https" {
		return nil, configError(node, "url scheme %q is not supported", target.Scheme)
	}

	headers, err := resolver.ResolveStringMap(cfg.Headers)
	if err != nil {
		return nil, err
	}
	query, err := resolver.ResolveStringMap(cfg.QueryParameters)
	if err != nil {
		return nil, err
	}
	if len(query) > 0 {
		q := target.Query()
		for k, v := range query {
			q.Set(k, v)
		}
		target.RawQuery = q.Encode()
	}

	method := strings.ToUpper(strings.TrimSpace(cfg.Method))
	if method == "" {
		method = http.MethodGet
	}

	body, bodyContentType, err := buildBody(resolver, cfg.Body)
	if err != nil {
		return nil, errors.WrapCode(err, errors.CodeInvalidConfiguration,
			"node "+node.ID+": building request body")
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), strings.NewReader(body))
	if err != nil {
		return nil, configError(node, "building request: %v", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	if bodyContentType != "" && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", bodyContentType)
	}

	if cfg.Authentication != nil && strings.EqualFold(cfg.Authentication.Type, "bearerToken") {
		token, err := e.secrets.Resolve(wf.GlobalConfig, cfg.Authentication.TokenSecret)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	var warnings []string
	if cfg.IgnoreSSL != nil && *cfg.IgnoreSSL {
		warnings = append(warnings, "ignoreSsl is not honored by preview; TLS certificates are always verified")
	}
	if cfg.FollowRedirects != nil && !*cfg.FollowRedirects {
		warnings = append(warnings, "followRedirects=false is not honored by preview; redirects are always followed")
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, errors.WrapCode(err, errors.CodeExecutionFailed,
			"node "+node.ID+": http request failed")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, errors.WrapCode(err, errors.CodeExecutionFailed,
			"node "+node.ID+": reading response body")
	}

	expected := cfg.ExpectedStatusCodes
	if len(expected) == 0 {
		expected = []int{http.StatusOK}
	}
	if !containsInt(expected, resp.StatusCode) {
		return nil, errors.Newf(errors.CodeUnexpectedHTTPStatus,
			"node %q: got status %d, expected one of %v", node.ID, resp.StatusCode, expected)
	}

	parsedBody, rawBody, err := decodeBody(node, raw, cfg.ResponseFormat)
	if err != nil {
		return nil, err
	}

	// Targets that echo request headers would leak resolved secret
	// values into the preview.
	masker := e.secrets.MaskerFor(wf.GlobalConfig)

	respHeaders := flattenHeaders(resp.Header)
	return &Result{
		Raw: masker.MaskValue(map[string]any{
			"statusCode": resp.StatusCode,
			"headers":    respHeaders,
			"body":       rawBody,
		}),
		Normalized: masker.MaskValue(map[string]any{
			"statusCode": resp.StatusCode,
			"body":       parsedBody,
			"headers":    respHeaders,
		}),
		Warnings: warnings,
	}, nil
}

// buildBody renders the request body from its content-type discriminant.
// It returns the body text and, when the discriminant implies one, the
// Content-Type header value.
func buildBody(resolver *expression.Resolver, body *workflow.HTTPBodyConfig) (string, string, error) {
	if body == nil || body.Data == "" {
		return "", "", nil
	}

	switch strings.ToLower(body.ContentType) {
	case "", "raw":
		text, err := resolver.ResolveString(body.Data)
		return text, "", err

	case "json":
		resolved, err := resolver.Resolve(body.Data)
		if err != nil {
			return "", "", err
		}
		if s, ok := resolved.(string); ok {
			// Reference already rendered JSON text, or the author wrote
			// literal JSON; send it as-is.
			return s, "application/json", nil
		}
		data, err := json.Marshal(resolved)
		if err != nil {
			return "", "", err
		}
		return string(data), "application/json", nil

	case "form":
		resolved, err := resolver.Resolve(body.Data)
		if err != nil {
			return "", "", err
		}
		switch v := resolved.(type) {
		case string:
			return v, "application/x-www-form-urlencoded", nil
		case map[string]any:
			form := url.Values{}
			for k, item := range v {
				form.Set(k, stringifyFormValue(item))
			}
			return form.Encode(), "application/x-www-form-urlencoded", nil
		default:
			return "", "", errors.Newf(errors.CodeInvalidConfiguration,
				"form body must be text or a record, got %T", resolved)
		}

	default:
		return "", "", errors.Newf(errors.CodeInvalidConfiguration,
			"unknown body contentType %q", body.ContentType)
	}
}

func stringifyFormValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return ""
		}
		return strings.Trim(string(data), `"`)
	}
}

// decodeBody interprets the response per the declared format: json parses
// (failure is typed), text passes through, binary renders base64. The raw
// artifact always carries a string rendition.
func decodeBody(node *workflow.Node, raw []byte, format string) (parsed any, rawText string, err error) {
	switch strings.ToLower(format) {
	case "", "json":
		rawText = string(raw)
		if len(raw) == 0 {
			return nil, rawText, nil
		}
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, "", errors.Newf(errors.CodeInvalidJSONResponse,
				"node %q: response body is not valid JSON: %v", node.ID, err)
		}
		return v, rawText, nil

	case "text":
		rawText = string(raw)
		return rawText, rawText, nil

	case "binary":
		encoded := base64.StdEncoding.EncodeToString(raw)
		return encoded, encoded, nil

	default:
		return nil, "", configError(node, "unknown responseFormat %q", format)
	}
}

// flattenHeaders keeps the first value per header, lowercasing names the
// way workflow authors reference them.
func flattenHeaders(h http.Header) map[string]any {
	out := make(map[string]any, len(h))
	for name, values := range h {
		if len(values) == 0 {
			continue
		}
		out[strings.ToLower(name)] = values[0]
	}
	return out
}

func containsInt(list []int, n int) bool {
	for _, item := range list {
		if item == n {
			return true
		}
	}
	return false
}
