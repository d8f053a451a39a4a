package httpclient

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/crimson-sun/vitigate/internal/upstream"
)

func TestFetch_Success(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "text/csv")
		w.Write([]byte("nome\tano\nCabernet\t2020\n"))
	}))
	defer srv.Close()

	c := New(srv.URL + "/download")
	body, err := c.Fetch(context.Background(), "ProcessaViniferas")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/download/ProcessaViniferas.csv" {
		t.Fatalf("unexpected path: %q", gotPath)
	}
	if string(body) != "nome\tano\nCabernet\t2020\n" {
		t.Fatalf("unexpected body: %q", body)
	}
}

func TestFetch_TrailingSlashBaseURL(t *testing.T) {
	c := New("http://example.test/download/")
	if got := c.URL("Comercio"); got != "http://example.test/download/Comercio.csv" {
		t.Fatalf("unexpected URL: %q", got)
	}
}

func TestFetch_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(503)
		w.Write([]byte(strings.Repeat("x", 1000)))
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.Fetch(context.Background(), "ImpVinhos")
	if err == nil {
		t.Fatal("expected error")
	}
	var apiErr *upstream.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *upstream.APIError, got %T: %v", err, err)
	}
	if apiErr.StatusCode != 503 {
		t.Fatalf("expected status 503, got %d", apiErr.StatusCode)
	}
	if len(apiErr.Body) != 512 {
		t.Fatalf("expected body truncated to 512 bytes, got %d", len(apiErr.Body))
	}
}

func TestFetch_NoRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(500)
	}))
	defer srv.Close()

	c := New(srv.URL)
	if _, err := c.Fetch(context.Background(), "Comercio"); err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 1 {
		t.Fatalf("expected exactly 1 call, got %d", calls.Load())
	}
}

func TestFetch_Gzip(t *testing.T) {
	var gotEncoding string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotEncoding = r.Header.Get("Accept-Encoding")
		var buf bytes.Buffer
		zw := gzip.NewWriter(&buf)
		zw.Write([]byte("a;b\n1;2\n"))
		zw.Close()
		w.Header().Set("Content-Encoding", "gzip")
		w.Write(buf.Bytes())
	}))
	defer srv.Close()

	body, err := New(srv.URL).Fetch(context.Background(), "Comercio")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotEncoding != "gzip" {
		t.Fatalf("expected Accept-Encoding gzip, got %q", gotEncoding)
	}
	if string(body) != "a;b\n1;2\n" {
		t.Fatalf("unexpected body: %q", body)
	}
}

func TestFetch_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	if got := New(srv.URL).Timeout(); got != defaultTimeout {
		t.Fatalf("default timeout = %v, want %v", got, defaultTimeout)
	}
	c := New(srv.URL, WithTimeout(50*time.Millisecond))
	if c.Timeout() != 50*time.Millisecond {
		t.Fatalf("timeout = %v", c.Timeout())
	}
	start := time.Now()
	_, err := c.Fetch(context.Background(), "Comercio")
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if time.Since(start) > 2*time.Second {
		t.Fatalf("fetch did not honor timeout: %v", time.Since(start))
	}
}

func TestFetch_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("a\n1\n"))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(srv.URL).Fetch(ctx, "Comercio")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRegisteredAsHTTPSource(t *testing.T) {
	f, err := upstream.New(upstream.Config{Source: "http", BaseURL: "http://example.test/download", Timeout: time.Second})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c, ok := f.(*Client)
	if !ok {
		t.Fatalf("expected *Client, got %T", f)
	}
	if c.httpClient.Timeout != time.Second {
		t.Fatalf("expected timeout 1s, got %v", c.httpClient.Timeout)
	}
}
