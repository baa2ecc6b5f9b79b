package metrics

import (
	"io"
	"net/http"
	"strings"
	"testing"
)

func TestServeExposesRegistry(t *testing.T) {
	reg := NewWorkerRegistry()
	NewOutboxMetrics(reg).Inc("published")

	srv, err := Serve("127.0.0.1:0", reg, nil)
	if err != nil {
		t.Fatalf("Serve: %v", err)
	}
	defer srv.Stop()

	resp, err := http.Get("http://" + srv.Addr() + "/metrics")
	if err != nil {
		t.Fatalf("scrape: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `localdrop_outbox_events_total{outcome="published"} 1`) {
		t.Fatalf("outbox counter missing from scrape:\n%s", body)
	}
	if !strings.Contains(string(body), "go_goroutines") {
		t.Fatalf("runtime collector missing from scrape")
	}
}

func TestServeDisabled(t *testing.T) {
	srv, err := Serve("", NewWorkerRegistry(), nil)
	if err != nil {
		t.Fatalf("Serve: %v", err)
	}
	if srv != nil || srv.Addr() != "" {
		t.Fatalf("expected disabled server")
	}
	srv.Stop()
}
