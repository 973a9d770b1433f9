package httputil

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	cerrors "github.com/matzehuels/crimeviz/pkg/errors"
)

func testClient(cache *ResponseCache) *Client {
	c := NewClient(cache)
	c.Delay = time.Millisecond
	return c
}

func TestClientRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	body, err := testClient(nil).Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if string(body) != `[]` || calls.Load() != 3 {
		t.Errorf("body=%q calls=%d; want [] after 3 calls", body, calls.Load())
	}
}

func TestClientDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := testClient(nil).Get(context.Background(), srv.URL)
	if !cerrors.Is(err, cerrors.ErrCodeNetwork) {
		t.Errorf("error = %v, want NETWORK_ERROR", err)
	}
	var se *StatusError
	if !errors.As(err, &se) || se.Status != http.StatusNotFound {
		t.Errorf("error should carry the 404 status: %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}

func TestClientCache(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`[{"x":1}]`))
	}))
	defer srv.Close()

	cache, _ := NewResponseCache(t.TempDir(), time.Hour)
	c := testClient(cache)
	for range 3 {
		if _, err := c.Get(context.Background(), srv.URL); err != nil {
			t.Fatal(err)
		}
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1 with a warm cache", calls.Load())
	}
}

func TestClientStaleFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	cache, _ := NewResponseCache(t.TempDir(), time.Nanosecond)
	_ = cache.Set(srv.URL, []byte("old"))
	time.Sleep(time.Millisecond)

	body, err := testClient(cache).Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if string(body) != "old" {
		t.Errorf("body = %q, want stale fallback", body)
	}
}

func TestRetryStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Retry(ctx, 5, time.Hour, func() error {
		calls++
		cancel()
		return &RetryableError{Err: errors.New("flaky")}
	})
	if !errors.Is(err, context.Canceled) || calls != 1 {
		t.Errorf("Retry() = %v after %d calls; want context.Canceled after 1", err, calls)
	}
}

func TestRetryNonRetryable(t *testing.T) {
	calls := 0
	want := errors.New("fatal")
	err := Retry(context.Background(), 5, time.Millisecond, func() error {
		calls++
		return want
	})
	if err != want || calls != 1 {
		t.Errorf("Retry() = %v after %d calls", err, calls)
	}
}
