package httpclient

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNew_ValidConfig(t *testing.T) {
	cfg := DefaultConfig()
	client, err := New(cfg)

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if client == nil {
		t.Fatal("expected non-nil client")
	}

	if client.Timeout != cfg.Timeout {
		t.Errorf("expected timeout %v, got %v", cfg.Timeout, client.Timeout)
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Timeout = 0 // Invalid

	client, err := New(cfg)

	if err == nil {
		t.Fatal("expected error for invalid config")
	}

	if client != nil {
		t.Error("expected nil client on error")
	}
}

func TestNew_SingleAttempt(t *testing.T) {
	client, err := New(DefaultConfig())
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	// Server errors must not trigger a second request.
	var attempts int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	resp, err := client.Get(server.URL)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if attempts != 1 {
		t.Errorf("expected exactly 1 attempt, got %d", attempts)
	}
}

func TestNew_SetsUserAgent(t *testing.T) {
	cfg := DefaultConfig()
	cfg.UserAgent = "test-client/2.0"

	client, err := New(cfg)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	var receivedUserAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedUserAgent = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	resp, err := client.Get(server.URL)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if receivedUserAgent != "test-client/2.0" {
		t.Errorf("expected User-Agent %q, got %q", "test-client/2.0", receivedUserAgent)
	}
}

func TestNew_FollowRedirects(t *testing.T) {
	final := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer final.Close()

	redirecting := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, final.URL, http.StatusFound)
	}))
	defer redirecting.Close()

	client, err := New(DefaultConfig())
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	resp, err := client.Get(redirecting.URL)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected redirect to be followed, got status %d", resp.StatusCode)
	}

	cfg := DefaultConfig()
	cfg.FollowRedirects = false
	client, err = New(cfg)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	resp, err = client.Get(redirecting.URL)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusFound {
		t.Errorf("expected redirect response itself, got status %d", resp.StatusCode)
	}
}

func TestNew_ConnectionPooling(t *testing.T) {
	client, err := New(DefaultConfig())
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	// Make multiple requests to verify connection pooling works
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	for i := 0; i < 5; i++ {
		resp, err := client.Get(server.URL)
		if err != nil {
			t.Fatalf("request %d failed: %v", i, err)
		}
		resp.Body.Close()
	}
}

func TestNew_Timeout(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Timeout = 50 * time.Millisecond

	client, err := New(cfg)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	_, err = client.Get(server.URL)
	if err == nil {
		t.Fatal("expected timeout error")
	}

	// Check for timeout or canceled in error message (both indicate timeout)
	errMsg := err.Error()
	if !contains(errMsg, "deadline") && !contains(errMsg, "timeout") && !contains(errMsg, "canceled") {
		t.Errorf("expected timeout/canceled error, got %v", err)
	}
}
