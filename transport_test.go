package goAuthClient

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/MrEthical07/goAuthClient/gateway/fake"
)

type recordingAPI struct {
	mu      sync.Mutex
	tokens  []string
	bodies  []string
	rejects int
}

func (a *recordingAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	a.mu.Lock()
	a.tokens = append(a.tokens, strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
	a.bodies = append(a.bodies, string(body))
	reject := a.rejects > 0
	if reject {
		a.rejects--
	}
	a.mu.Unlock()

	if reject {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	_, _ = io.WriteString(w, "ok")
}

func TestTransportRefreshesAndReplaysOnce(t *testing.T) {
	h := newHarness(t)
	if _, err := h.client.Login(context.Background(), adminCreds); err != nil {
		t.Fatalf("Login: %v", err)
	}
	api := &recordingAPI{rejects: 1}
	srv := httptest.NewServer(api)
	defer srv.Close()

	httpClient := &http.Client{Transport: h.client.Transport(nil)}
	resp, err := httpClient.Post(srv.URL+"/advising/notes", "text/plain", strings.NewReader("hello"))
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected replay to succeed, got %d", resp.StatusCode)
	}
	if len(api.tokens) != 2 || api.tokens[0] == api.tokens[1] || api.tokens[0] == "" {
		t.Fatalf("expected two requests with different tokens, got %v", api.tokens)
	}
	if api.bodies[1] != "hello" {
		t.Fatalf("expected body replayed, got %q", api.bodies[1])
	}
	if h.fake.Calls(fake.OpRefresh) != 1 || h.client.Metrics().Value(MetricRequestRetried) != 1 {
		t.Fatalf("expected one refresh and one retry")
	}
}

func TestTransportReturnsSecondUnauthorized(t *testing.T) {
	h := newHarness(t)
	if _, err := h.client.Login(context.Background(), adminCreds); err != nil {
		t.Fatalf("Login: %v", err)
	}
	api := &recordingAPI{rejects: 5}
	srv := httptest.NewServer(api)
	defer srv.Close()

	httpClient := &http.Client{Transport: h.client.Transport(nil)}
	resp, err := httpClient.Get(srv.URL + "/advising/notes")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized || len(api.tokens) != 2 {
		t.Fatalf("expected exactly one replay, got %d requests and status %d", len(api.tokens), resp.StatusCode)
	}
}

func TestTransportRequiresSession(t *testing.T) {
	h := newHarness(t)
	srv := httptest.NewServer(&recordingAPI{})
	defer srv.Close()

	httpClient := &http.Client{Transport: h.client.Transport(nil)}
	if _, err := httpClient.Get(srv.URL); err == nil {
		t.Fatalf("expected error without a session")
	}
}
