package geo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestEnrichSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"success","country":"United States","city":"Mountain View","lat":37.4,"lon":-122.0}`))
	}))
	defer srv.Close()

	e := NewEnricher(srv.URL, time.Second)
	point := e.Enrich(context.Background(), "8.8.8.8")
	if point == nil {
		t.Fatal("expected a location")
	}
	if point.City != "Mountain View" || point.Country != "United States" {
		t.Errorf("point: %+v", point)
	}
}

func TestEnrichFailureIsNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	e := NewEnricher(srv.URL, time.Second)
	if point := e.Enrich(context.Background(), "8.8.8.8"); point != nil {
		t.Fatalf("failed lookup should be nil, got %+v", point)
	}

	// Upstream-reported failure is also nil.
	srv2 := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"fail"}`))
	}))
	defer srv2.Close()

	e2 := NewEnricher(srv2.URL, time.Second)
	if point := e2.Enrich(context.Background(), "8.8.8.8"); point != nil {
		t.Fatalf("fail status should be nil, got %+v", point)
	}
}

func TestEnrichPrivateRanges(t *testing.T) {
	var requests atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.Write([]byte(`{"status":"success","country":"X","city":"Y","lat":1,"lon":2}`))
	}))
	defer srv.Close()

	e := NewEnricher(srv.URL, time.Second)
	for _, ip := range []string{"10.0.0.1", "192.168.1.1", "172.16.0.1", "172.31.9.9", "127.0.0.1", "169.254.0.1", ""} {
		if point := e.Enrich(context.Background(), ip); point != nil {
			t.Errorf("private IP %q should not resolve", ip)
		}
	}
	if requests.Load() != 0 {
		t.Errorf("private ranges must not hit the upstream, got %d requests", requests.Load())
	}

	// 172.32.x is public.
	if point := e.Enrich(context.Background(), "172.32.0.1"); point == nil {
		t.Error("172.32.0.1 is public and should resolve")
	}
}

func TestEnrichCaches(t *testing.T) {
	var requests atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.Write([]byte(`{"status":"success","country":"X","city":"Y","lat":1,"lon":2}`))
	}))
	defer srv.Close()

	e := NewEnricher(srv.URL, time.Second)
	for i := 0; i < 5; i++ {
		if e.Enrich(context.Background(), "8.8.8.8") == nil {
			t.Fatal("lookup failed")
		}
	}
	if requests.Load() != 1 {
		t.Errorf("repeated lookups should be served from cache, got %d requests", requests.Load())
	}
}

func TestEnrichCacheExpires(t *testing.T) {
	var requests atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.Write([]byte(`{"status":"success","country":"X","city":"Y","lat":1,"lon":2}`))
	}))
	defer srv.Close()

	e := NewEnricher(srv.URL, time.Second)
	base := time.Now()
	e.now = func() time.Time { return base }

	if e.Enrich(context.Background(), "8.8.8.8") == nil {
		t.Fatal("lookup failed")
	}
	if e.Enrich(context.Background(), "8.8.8.8") == nil {
		t.Fatal("cached lookup failed")
	}
	if requests.Load() != 1 {
		t.Fatalf("fresh entry should be served from cache, got %d requests", requests.Load())
	}

	base = base.Add(cacheTTL + time.Second)
	if e.Enrich(context.Background(), "8.8.8.8") == nil {
		t.Fatal("post-expiry lookup failed")
	}
	if requests.Load() != 2 {
		t.Errorf("expired entry should be refetched, got %d requests", requests.Load())
	}
}
