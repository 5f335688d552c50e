package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testClient(url string) *Client {
	return NewClient(Config{BaseURL: url, Timeout: 2 * time.Second, BreakerFailures: 3, BreakerOpenFor: time.Minute})
}

func TestFetchDecodesSnapshot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/.json" {
			t.Errorf("path = %s, want /.json", r.URL.Path)
		}
		io.WriteString(w, `{"sensors":{"soil_moisture":42},"controls":{"pump":true},"ai":{"recommendation":"water less"}}`)
	}))
	defer srv.Close()

	snap, err := testClient(srv.URL).Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if got := snap.Sensors["soil_moisture"]; got != float64(42) {
		t.Errorf("soil_moisture = %v, want 42", got)
	}
	if got := snap.Controls["pump"]; got != true {
		t.Errorf("pump = %v, want true", got)
	}
	if snap.AI.Recommendation != "water less" {
		t.Errorf("recommendation = %q", snap.AI.Recommendation)
	}
}

func TestFetchNon2xxIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Fetch(context.Background())
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
}

func TestFetchMalformedBodyIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, `{"sensors":`)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Fetch(context.Background())
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
}

func TestWriteControlsMethodsAndBody(t *testing.T) {
	var gotMethod string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/controls.json" {
			t.Errorf("path = %s, want /controls.json", r.URL.Path)
		}
		gotMethod = r.Method
		gotBody = nil
		json.NewDecoder(r.Body).Decode(&gotBody)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	if err := c.PatchControls(context.Background(), map[string]any{"pump": true}); err != nil {
		t.Fatalf("PatchControls: %v", err)
	}
	if gotMethod != http.MethodPatch || gotBody["pump"] != true {
		t.Errorf("got %s %v", gotMethod, gotBody)
	}

	if err := c.PutControls(context.Background(), map[string]any{"mode": "manual"}); err != nil {
		t.Fatalf("PutControls: %v", err)
	}
	if gotMethod != http.MethodPut || gotBody["mode"] != "manual" {
		t.Errorf("got %s %v", gotMethod, gotBody)
	}
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	for i := 0; i < 5; i++ {
		c.Fetch(context.Background())
	}
	if hits > 3 {
		t.Errorf("upstream hit %d times, breaker should stop after 3", hits)
	}
	if _, err := c.Fetch(context.Background()); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("breaker-open fetch err = %v, want ErrUnavailable", err)
	}
}
