package integrations

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/mavenclosure/pkg/cache"
)

func TestNewClient(t *testing.T) {
	c, _ := cache.NewFileCache(t.TempDir())
	defer c.Close()

	headers := map[string]string{"User-Agent": "mavenclosure-test"}
	client := NewClient(c, "maven", time.Hour, headers)

	if client.http == nil {
		t.Error("NewClient() http client is nil")
	}
	if client.cache != c {
		t.Error("NewClient() cache not set correctly")
	}
	if client.headers["User-Agent"] != "mavenclosure-test" {
		t.Error("NewClient() headers not set correctly")
	}
	if client.retries != 0 {
		t.Errorf("default retries = %d, want 0", client.retries)
	}
}

func TestNewClientNilCache(t *testing.T) {
	client := NewClient(nil, "maven", time.Hour, nil)
	if client.cache == nil {
		t.Fatal("nil cache should be replaced by a null cache")
	}
	if client.headers != nil {
		t.Error("NewClient() should allow nil headers")
	}
}

func TestClientGet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		w.Write([]byte("<project/>"))
	}))
	defer server.Close()

	client := NewClient(nil, "maven", time.Hour, nil, WithHTTPClient(server.Client()))

	data, err := client.Get(context.Background(), server.URL+"/a.pom")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if string(data) != "<project/>" {
		t.Errorf("Get() = %q", data)
	}
}

func TestClientGetWithHeadersOverridesDefaults(t *testing.T) {
	var receivedHeader string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedHeader = r.Header.Get("X-Override")
	}))
	defer server.Close()

	client := NewClient(nil, "maven", time.Hour, map[string]string{"X-Override": "default"})
	client.http = server.Client()

	if _, err := client.GetWithHeaders(context.Background(), server.URL, map[string]string{"X-Override": "overridden"}); err != nil {
		t.Fatalf("GetWithHeaders() error: %v", err)
	}
	if receivedHeader != "overridden" {
		t.Errorf("header = %q, want %q", receivedHeader, "overridden")
	}
}

func TestClientGet404(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(nil, "maven", time.Hour, nil, WithHTTPClient(server.Client()))

	_, err := client.Get(context.Background(), server.URL)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestClientGet500NotRetriedByDefault(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(nil, "maven", time.Hour, nil, WithHTTPClient(server.Client()))

	_, err := client.Get(context.Background(), server.URL)
	if !errors.Is(err, ErrNetwork) {
		t.Errorf("Get() error = %v, want ErrNetwork", err)
	}
	var retryErr *cache.RetryableError
	if !errors.As(err, &retryErr) {
		t.Errorf("Get() error should be RetryableError, got %T", err)
	}
	if calls.Load() != 1 {
		t.Errorf("server called %d times, want 1", calls.Load())
	}
}

func TestClientRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	client := NewClient(nil, "maven", time.Hour, nil,
		WithHTTPClient(server.Client()),
		WithRetries(2, time.Millisecond))

	data, err := client.Get(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if string(data) != "ok" || calls.Load() != 3 {
		t.Errorf("data %q after %d calls", data, calls.Load())
	}
}

func TestClientCached(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte("body"))
	}))
	defer server.Close()

	c := cache.NewMemoryCache(8, 0)
	client := NewClient(c, "maven", time.Hour, nil, WithHTTPClient(server.Client()))
	ctx := context.Background()

	for range 2 {
		data, err := client.Cached(ctx, server.URL+"/x", false, true)
		if err != nil || string(data) != "body" {
			t.Fatalf("Cached() = %q, %v", data, err)
		}
	}
	if calls.Load() != 1 {
		t.Errorf("server called %d times, want 1", calls.Load())
	}

	if _, err := client.Cached(ctx, server.URL+"/x", true, true); err != nil {
		t.Fatal(err)
	}
	if calls.Load() != 2 {
		t.Errorf("refresh should bypass the cache; calls = %d", calls.Load())
	}
}

func TestClientCachedNoStore(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte("body"))
	}))
	defer server.Close()

	client := NewClient(cache.NewMemoryCache(8, 0), "maven", time.Hour, nil, WithHTTPClient(server.Client()))
	for range 2 {
		if _, err := client.Cached(context.Background(), server.URL+"/snap", false, false); err != nil {
			t.Fatal(err)
		}
	}
	if calls.Load() != 2 {
		t.Errorf("unstored documents should be fetched every time; calls = %d", calls.Load())
	}
}

func TestClientLocal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.pom")
	if err := os.WriteFile(path, []byte("local"), 0644); err != nil {
		t.Fatal(err)
	}

	client := NewClient(nil, "maven", time.Hour, nil)
	ctx := context.Background()

	data, err := client.Get(ctx, path)
	if err != nil || string(data) != "local" {
		t.Fatalf("Get(path) = %q, %v", data, err)
	}

	data, err = client.Get(ctx, "file://"+filepath.ToSlash(path))
	if err != nil || string(data) != "local" {
		t.Fatalf("Get(file url) = %q, %v", data, err)
	}

	if _, err := client.Get(ctx, filepath.Join(dir, "missing.pom")); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing local file: err = %v, want ErrNotFound", err)
	}
}

func TestCheckStatus(t *testing.T) {
	tests := []struct {
		name       string
		code       int
		wantErr    error
		isRetryErr bool
	}{
		{"200 OK", 200, nil, false},
		{"404 Not Found", 404, ErrNotFound, false},
		{"410 Gone", 410, ErrNotFound, false},
		{"429 Too Many Requests", 429, ErrNetwork, true},
		{"500 Internal Server Error", 500, ErrNetwork, true},
		{"502 Bad Gateway", 502, ErrNetwork, true},
		{"400 Bad Request", 400, ErrNetwork, false},
		{"403 Forbidden", 403, ErrNetwork, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkStatus(tt.code)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("checkStatus() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("checkStatus() error = %v, want %v", err, tt.wantErr)
			}
			if got := cache.IsRetryable(err); got != tt.isRetryErr {
				t.Errorf("retryable = %v, want %v", got, tt.isRetryErr)
			}
		})
	}
}

func TestJoinURL(t *testing.T) {
	got := JoinURL("https://repo/maven2/", "org", "example", "1.0 beta")
	if got != "https://repo/maven2/org/example/1.0%20beta" {
		t.Errorf("JoinURL = %q", got)
	}
}

func TestLocalPath(t *testing.T) {
	if got := LocalPath("file:///tmp/repo"); got != filepath.FromSlash("/tmp/repo") {
		t.Errorf("LocalPath(file url) = %q", got)
	}
	if got := LocalPath("relative/repo"); got != "relative/repo" {
		t.Errorf("LocalPath(path) = %q", got)
	}
}
