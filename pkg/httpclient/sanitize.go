package httpclient

import (
	"net/url"
	"regexp"
)

// sensitiveParam matches query parameter names that must never reach logs.
// The same pattern family guards preview results in internal/sanitize.
var sensitiveParam = regexp.MustCompile(`(?i)secret|token|auth|password|signature|credential|key`)

// sanitizeURL redacts sensitive query parameter values before a URL is
// logged. The URL itself is never mutated.
func sanitizeURL(u *url.URL) string {
	if u == nil {
		return ""
	}
	if u.RawQuery == "" {
		return u.String()
	}

	q := u.Query()
	for param := range q {
		if isSensitiveParam(param) {
			q.Set(param, "[REDACTED]")
		}
	}

	safe := *u
	safe.RawQuery = q.Encode()
	return safe.String()
}

func isSensitiveParam(param string) bool {
	return sensitiveParam.MatchString(param)
}
