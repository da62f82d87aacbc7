package probe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/iurisrag/healthcheck/internal/config"
	"github.com/iurisrag/healthcheck/internal/health"
)

func endpoint(name, url string, timeout time.Duration) config.Endpoint {
	return config.Endpoint{Name: name, URL: url, Timeout: config.Duration(timeout)}
}

func TestEndpointProbe_MixedOutcomesKeepDeclaredOrder(t *testing.T) {
	ok := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// slower than the failing one; order must still be declared order
		time.Sleep(50 * time.Millisecond)
		w.WriteHeader(200)
	}))
	defer ok.Close()
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", 500)
	}))
	defer bad.Close()

	p := &EndpointProbe{Endpoints: []config.Endpoint{
		endpoint("slow-ok", ok.URL, 2*time.Second),
		endpoint("bad", bad.URL, 2*time.Second),
	}}
	results := p.Run(context.Background())

	if len(results) != 2 {
		t.Fatalf("want 2 results, got %d", len(results))
	}
	if results[0].Name != "endpoint:slow-ok" || results[1].Name != "endpoint:bad" {
		t.Fatalf("order not declared order: %s, %s", results[0].Name, results[1].Name)
	}
	if results[0].Status != health.Pass {
		t.Fatalf("slow-ok should pass: %+v", results[0])
	}
	if results[1].Status != health.Fail || !strings.Contains(results[1].Message, "500") {
		t.Fatalf("bad should fail with status: %+v", results[1])
	}
	if results[0].Detail == nil || *results[0].Detail < 0 {
		t.Fatalf("latency detail missing: %+v", results[0])
	}
}

func TestEndpointProbe_TimeoutIsFail(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.WriteHeader(200)
	}))
	defer slow.Close()

	p := &EndpointProbe{Endpoints: []config.Endpoint{endpoint("slow", slow.URL, 50*time.Millisecond)}}
	results := p.Run(context.Background())

	if len(results) != 1 || results[0].Status != health.Fail {
		t.Fatalf("timeout must fail: %+v", results)
	}
	if !strings.Contains(results[0].Message, "timed out") {
		t.Fatalf("want timed out message, got %q", results[0].Message)
	}
}

func TestEndpointProbe_UnreachableIsFail(t *testing.T) {
	p := &EndpointProbe{Endpoints: []config.Endpoint{
		endpoint("gone", "http://127.0.0.1:1/readyz", time.Second),
	}}
	results := p.Run(context.Background())
	if len(results) != 1 || results[0].Status != health.Fail {
		t.Fatalf("unreachable must fail: %+v", results)
	}
}

func TestEndpointProbe_NoneDeclaredIsSingleWarning(t *testing.T) {
	p := &EndpointProbe{}
	results := p.Run(context.Background())
	if len(results) != 1 || results[0].Status != health.Warning {
		t.Fatalf("want single WARNING, got %+v", results)
	}
}
