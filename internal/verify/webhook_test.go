package verify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/entity-registry/entity_registry/internal/logging"
)

func TestWebhookStartPostsPayload(t *testing.T) {
	var got webhookPayload
	var auth string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	p := NewWebhookProvider("secret", ts.URL, time.Second, logging.Discard())
	if err := p.Start(context.Background(), "+15551111111"); err != nil {
		t.Fatalf("start: %v", err)
	}

	if auth != "Bearer secret" {
		t.Fatalf("unexpected authorization header %q", auth)
	}
	if got.PhoneNumber != "+15551111111" || got.Code != "" {
		t.Fatalf("unexpected payload %+v", got)
	}
}

func TestWebhookStartRejectedByService(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	p := NewWebhookProvider("secret", ts.URL, time.Second, logging.Discard())
	if err := p.Start(context.Background(), "+15551111111"); err == nil {
		t.Fatal("expected delivery failure")
	}
}

func TestWebhookCheckApproved(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload webhookPayload
		_ = json.NewDecoder(r.Body).Decode(&payload)
		if payload.Code == "000000" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer ts.Close()

	p := NewWebhookProvider("secret", ts.URL, time.Second, logging.Discard())

	ok, err := p.Check(context.Background(), "+15551111111", "000000")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !ok {
		t.Fatal("expected valid code to be approved")
	}

	ok, err = p.Check(context.Background(), "+15551111111", "999999")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if ok {
		t.Fatal("expected wrong code to be rejected")
	}
}

func TestWebhookCheckTransportFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	ts.Close() // refuse connections

	p := NewWebhookProvider("secret", ts.URL, time.Second, logging.Discard())
	if _, err := p.Check(context.Background(), "+15551111111", "000000"); err == nil {
		t.Fatal("expected transport failure to surface as an error")
	}
}

func TestWebhookTimeoutBounded(t *testing.T) {
	release := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
	}))
	defer func() {
		close(release)
		ts.Close()
	}()

	p := NewWebhookProvider("secret", ts.URL, 50*time.Millisecond, logging.Discard())

	start := time.Now()
	err := p.Start(context.Background(), "+15551111111")
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("request not bounded by timeout, took %s", elapsed)
	}
}
