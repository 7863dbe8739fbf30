package httputil

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/matzehuels/markstack/pkg/cache"
)

func TestClientGetBytes(t *testing.T) {
	var gotUA, gotExtra string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotExtra = r.Header.Get("X-Extra")
		w.Write([]byte("font-bytes"))
	}))
	defer server.Close()

	client := NewClient(nil, map[string]string{"User-Agent": "markstack/test"})
	client.WithHTTPClient(server.Client())

	data, err := client.GetBytesWithHeaders(context.Background(), server.URL, map[string]string{"X-Extra": "1"})
	if err != nil {
		t.Fatalf("GetBytes() error: %v", err)
	}
	if string(data) != "font-bytes" {
		t.Errorf("GetBytes() = %q", data)
	}
	if gotUA != "markstack/test" || gotExtra != "1" {
		t.Errorf("headers = %q, %q", gotUA, gotExtra)
	}
}

func TestClientStatusMapping(t *testing.T) {
	tests := []struct {
		status    int
		wantErr   error
		retryable bool
	}{
		{http.StatusNotFound, ErrNotFound, false},
		{http.StatusForbidden, ErrNetwork, false},
		{http.StatusBadGateway, ErrNetwork, true},
		{http.StatusTooManyRequests, ErrNetwork, true},
	}

	for _, tt := range tests {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
		}))

		client := NewClient(nil, nil).WithHTTPClient(server.Client())
		_, err := client.GetBytes(context.Background(), server.URL)
		server.Close()

		if !errors.Is(err, tt.wantErr) {
			t.Errorf("status %d: err = %v, want %v", tt.status, err, tt.wantErr)
		}
		if IsRetryable(err) != tt.retryable {
			t.Errorf("status %d: retryable = %v, want %v", tt.status, IsRetryable(err), tt.retryable)
		}
	}
}

func TestClientCached(t *testing.T) {
	ctx := context.Background()
	fc, _ := cache.NewFileCache(t.TempDir())
	client := NewClient(fc, nil)

	calls := 0
	fetch := func() ([]byte, error) {
		calls++
		return []byte("payload"), nil
	}

	for range 2 {
		data, err := client.Cached(ctx, "k", cache.TTLFont, fetch)
		if err != nil {
			t.Fatalf("Cached() error: %v", err)
		}
		if string(data) != "payload" {
			t.Errorf("Cached() = %q", data)
		}
	}
	if calls != 1 {
		t.Errorf("fetch called %d times, want 1", calls)
	}
}

func TestClientCachedError(t *testing.T) {
	client := NewClient(nil, nil)
	_, err := client.Cached(context.Background(), "k", 0, func() ([]byte, error) {
		return nil, ErrNotFound
	})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Cached() = %v, want ErrNotFound", err)
	}
}
