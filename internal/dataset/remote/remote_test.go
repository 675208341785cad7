package remote

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestIsURL(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"https://example.com/reviews.csv", true},
		{"http://localhost:8080/data.jsonl", true},
		{"reviews.csv", false},
		{"/data/https.csv", false},
		{"ftp://example.com/x.csv", false},
	}
	for _, tt := range tests {
		if got := IsURL(tt.path); got != tt.want {
			t.Errorf("IsURL(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestFetch_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("clean_words_mecab,target,category\n"))
	}))
	defer srv.Close()

	body, err := New("").Fetch(context.Background(), srv.URL+"/reviews.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(body) != "clean_words_mecab,target,category\n" {
		t.Fatalf("unexpected body: %q", body)
	}
}

func TestFetch_BearerAuth(t *testing.T) {
	var gotAuth atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth.Store(r.Header.Get("Authorization"))
	}))
	defer srv.Close()

	if _, err := New("secret-token-123").Fetch(context.Background(), srv.URL); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v, _ := gotAuth.Load().(string); v != "Bearer secret-token-123" {
		t.Fatalf("expected 'Bearer secret-token-123', got %q", v)
	}
}

func TestFetch_NoTokenNoHeader(t *testing.T) {
	var gotAuth atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth.Store(r.Header.Get("Authorization"))
	}))
	defer srv.Close()

	if _, err := New("").Fetch(context.Background(), srv.URL); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v, _ := gotAuth.Load().(string); v != "" {
		t.Fatalf("expected no Authorization header, got %q", v)
	}
}

func TestFetch_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("no such dataset"))
	}))
	defer srv.Close()

	_, err := New("").Fetch(context.Background(), srv.URL)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if apiErr.StatusCode != 404 || apiErr.Body != "no such dataset" {
		t.Fatalf("unexpected error: %+v", apiErr)
	}
}

func TestFetch_RetriesServerErrors(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	body, err := New("", WithBaseDelay(time.Millisecond)).Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(body) != "ok" || attempts.Load() != 3 {
		t.Fatalf("body=%q attempts=%d", body, attempts.Load())
	}
}

func TestFetch_RetriesExhausted(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := New("", WithBaseDelay(time.Millisecond)).Fetch(context.Background(), srv.URL)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != 503 {
		t.Fatalf("expected 503 APIError, got %v", err)
	}
	if got := attempts.Load(); got != maxRetries+1 {
		t.Fatalf("attempts = %d, want %d", got, maxRetries+1)
	}
}

func TestFetch_MaxBytes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("0123456789"))
	}))
	defer srv.Close()

	if _, err := New("", WithMaxBytes(5)).Fetch(context.Background(), srv.URL); err == nil {
		t.Fatal("expected error for oversized body")
	}
}

func TestFetch_ContextCancelledDuringBackoff(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := New("", WithBaseDelay(time.Hour)).Fetch(ctx, srv.URL)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestBackoffDelay(t *testing.T) {
	c := New("")
	tests := []struct {
		name    string
		attempt int
		lastErr *APIError
		want    time.Duration
	}{
		{"first retry", 1, nil, time.Second},
		{"second retry", 2, &APIError{StatusCode: 500}, 2 * time.Second},
		{"third retry", 3, &APIError{StatusCode: 502}, 4 * time.Second},
		{"429 with Retry-After", 1, &APIError{StatusCode: 429, retryAfter: "7"}, 7 * time.Second},
		{"429 with bad Retry-After", 2, &APIError{StatusCode: 429, retryAfter: "soon"}, 2 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.backoffDelay(tt.attempt, tt.lastErr); got != tt.want {
				t.Errorf("backoffDelay = %v, want %v", got, tt.want)
			}
		})
	}
}
