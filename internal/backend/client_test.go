package backend

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestFetchDecodesSuccessfulResponse(t *testing.T) {
	var gotQuery map[string]string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/news" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		q := r.URL.Query()
		gotQuery = map[string]string{
			"country":       q.Get("country"),
			"range":         q.Get("range"),
			"per_feed":      q.Get("per_feed"),
			"translate":     q.Get("translate"),
			"force_refresh": q.Get("force_refresh"),
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true,"country":"mercosur","items":[{"url":"http://a","title":"T","summary":"S","source":"X"}]}`))
	}))
	defer ts.Close()

	client := NewClient(ts.URL, 5*time.Second, "")
	res, err := client.Fetch(context.Background(), Params{
		Country:      "mercosur",
		Range:        "3d",
		PerFeed:      10,
		Translate:    "en",
		ForceRefresh: true,
	})
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if len(res.Items) != 1 || res.Items[0].URL != "http://a" {
		t.Fatalf("unexpected items: %+v", res.Items)
	}

	want := map[string]string{
		"country":       "mercosur",
		"range":         "3d",
		"per_feed":      "10",
		"translate":     "en",
		"force_refresh": "1",
	}
	for k, v := range want {
		if gotQuery[k] != v {
			t.Errorf("query %s = %q, want %q", k, gotQuery[k], v)
		}
	}
}

func TestFetchTranslateOffEncodesZero(t *testing.T) {
	var translate string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		translate = r.URL.Query().Get("translate")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true,"items":[]}`))
	}))
	defer ts.Close()

	client := NewClient(ts.URL, 5*time.Second, "")
	if _, err := client.Fetch(context.Background(), Params{Country: "uruguay", Range: "24h", PerFeed: 5, Translate: "none"}); err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if translate != "0" {
		t.Errorf("translate = %q, want %q", translate, "0")
	}
}

func TestFetchClassifiesNonJSONBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html><body>502 Bad Gateway</body></html>"))
	}))
	defer ts.Close()

	client := NewClient(ts.URL, 5*time.Second, "")
	_, err := client.Fetch(context.Background(), Params{Country: "uruguay", Range: "3d", PerFeed: 10})

	var be *Error
	if !errors.As(err, &be) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if be.Kind != KindProtocolMismatch {
		t.Errorf("kind = %q, want %q", be.Kind, KindProtocolMismatch)
	}
	if be.BackendTarget == "" {
		t.Error("expected backend target in error")
	}
}

func TestFetchSurfacesBackendReportedError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"ok":false,"error":"Backend is still running old code."}`))
	}))
	defer ts.Close()

	client := NewClient(ts.URL, 5*time.Second, "")
	_, err := client.Fetch(context.Background(), Params{Country: "uruguay", Range: "3d", PerFeed: 10})

	var be *Error
	if !errors.As(err, &be) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if be.Kind != KindUpstreamReported {
		t.Errorf("kind = %q, want %q", be.Kind, KindUpstreamReported)
	}
	if be.Message != "Backend is still running old code." {
		t.Errorf("message not surfaced verbatim: %q", be.Message)
	}
}

func TestFetchClassifiesTimeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true,"items":[]}`))
	}))
	defer ts.Close()

	client := NewClient(ts.URL, 50*time.Millisecond, "")
	_, err := client.Fetch(context.Background(), Params{Country: "uruguay", Range: "3d", PerFeed: 10})

	var be *Error
	if !errors.As(err, &be) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if be.Kind != KindTimeout {
		t.Errorf("kind = %q, want %q", be.Kind, KindTimeout)
	}
}

func TestFetchRetryClassifiesFinalAttemptOnly(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Header().Set("Content-Type", "text/html")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("<html>503</html>"))
			return
		}
		// Drop the second attempt mid-connection so the client sees a
		// transport failure rather than a response.
		hj, ok := w.(http.Hijacker)
		if !ok {
			t.Fatal("response writer does not support hijacking")
		}
		conn, _, err := hj.Hijack()
		if err != nil {
			t.Fatalf("hijack: %v", err)
		}
		conn.Close()
	}))
	defer ts.Close()

	client := NewClient(ts.URL, 5*time.Second, "")
	_, err := client.Fetch(context.Background(), Params{Country: "uruguay", Range: "3d", PerFeed: 10})

	var be *Error
	if !errors.As(err, &be) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if be.Kind != KindNetwork {
		t.Errorf("kind = %q, want %q (first attempt's 503 must not leak into classification)", be.Kind, KindNetwork)
	}
}

func TestFetchClassifiesConnectionFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close() // nothing listening anymore

	client := NewClient(ts.URL, 2*time.Second, "")
	_, err := client.Fetch(context.Background(), Params{Country: "uruguay", Range: "3d", PerFeed: 10})

	var be *Error
	if !errors.As(err, &be) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if be.Kind != KindNetwork {
		t.Errorf("kind = %q, want %q", be.Kind, KindNetwork)
	}
}
