package geocode

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"oohdesk/ports"
)

// TestGeocodeSuccess tests query construction and response parsing
func TestGeocodeSuccess(t *testing.T) {
	var gotQuery, gotAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"lat":"-23.5613","lon":"-46.6558","display_name":"Avenida Paulista, São Paulo"}]`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "oohdesk-test")
	result, err := client.Geocode(context.Background(), "Av. Paulista, 1000")
	if err != nil {
		t.Fatalf("Geocode failed: %v", err)
	}

	if gotQuery != "Av. Paulista, 1000" {
		t.Errorf("Unexpected query: %q", gotQuery)
	}
	if gotAgent != "oohdesk-test" {
		t.Errorf("Expected identifying User-Agent, got %q", gotAgent)
	}
	if result.Latitude != -23.5613 || result.Longitude != -46.6558 {
		t.Errorf("Unexpected coordinates: %+v", result)
	}
	if result.FormattedAddress != "Avenida Paulista, São Paulo" {
		t.Errorf("Unexpected formatted address: %q", result.FormattedAddress)
	}
}

// TestGeocodeRateLimited tests quota rejections map to the sentinel
func TestGeocodeRateLimited(t *testing.T) {
	for _, status := range []int{http.StatusTooManyRequests, http.StatusServiceUnavailable} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))

		client := NewClient(server.URL, "oohdesk-test")
		_, err := client.Geocode(context.Background(), "anywhere")
		if !errors.Is(err, ports.ErrRateLimited) {
			t.Errorf("Status %d: expected ErrRateLimited, got %v", status, err)
		}
		server.Close()
	}
}

// TestGeocodeNoMatch tests the empty-result sentinel
func TestGeocodeNoMatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "oohdesk-test")
	_, err := client.Geocode(context.Background(), "Rua Inexistente 99999")
	if !errors.Is(err, ports.ErrNoMatch) {
		t.Errorf("Expected ErrNoMatch, got %v", err)
	}
}

// TestGeocodeServerError tests non-quota failures are plain errors
func TestGeocodeServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, "oohdesk-test")
	_, err := client.Geocode(context.Background(), "anywhere")
	if err == nil {
		t.Fatal("Expected error for 500 response")
	}
	if errors.Is(err, ports.ErrRateLimited) || errors.Is(err, ports.ErrNoMatch) {
		t.Errorf("Expected plain error, got sentinel: %v", err)
	}
}
