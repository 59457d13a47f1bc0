package probes

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const geoBody = `{
  "ip": "8.8.8.8",
  "city": "Mountain View",
  "region": "California",
  "country_name": "United States",
  "country_code": "US",
  "latitude": 37.4056,
  "longitude": -122.0775,
  "timezone": "America/Los_Angeles",
  "currency": "USD",
  "languages": "en-US,es-US,haw,fr",
  "asn": "AS15169",
  "org": "GOOGLE"
}`

func TestGeoLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/8.8.8.8/json/" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Write([]byte(geoBody))
	}))
	defer srv.Close()

	c := NewGeoClient(srv.URL, 2*time.Second)
	info, err := c.Lookup(context.Background(), "8.8.8.8")
	if err != nil {
		t.Fatal(err)
	}

	if info.IP != "8.8.8.8" {
		t.Errorf("ip = %q", info.IP)
	}
	if info.Location.Country != "United States" || info.Location.City != "Mountain View" {
		t.Errorf("location: %+v", info.Location)
	}
	if info.Location.Lat != 37.4056 || info.Location.Lon != -122.0775 {
		t.Errorf("coordinates: %+v", info.Location)
	}
	if info.Timezone != "America/Los_Angeles" || info.Currency != "USD" {
		t.Errorf("timezone/currency: %+v", info)
	}
	if info.Language != "en-US" {
		t.Errorf("language = %q, want first entry", info.Language)
	}
	if info.Network.ASN != "AS15169" || info.Network.ISP != "GOOGLE" {
		t.Errorf("network: %+v", info.Network)
	}
}

func TestGeoNon200IsHardFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "throttled", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewGeoClient(srv.URL, 2*time.Second)
	_, err := c.Lookup(context.Background(), "8.8.8.8")

	var perr *Error
	if !errors.As(err, &perr) || perr.Kind != ErrUpstream {
		t.Fatalf("got %v, want ErrUpstream", err)
	}
}

func TestGeoUpstreamErrorFlag(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error": true, "reason": "Reserved IP Address"}`))
	}))
	defer srv.Close()

	c := NewGeoClient(srv.URL, 2*time.Second)
	_, err := c.Lookup(context.Background(), "127.0.0.1")

	var perr *Error
	if !errors.As(err, &perr) || perr.Kind != ErrUpstream {
		t.Fatalf("got %v, want ErrUpstream", err)
	}
}
