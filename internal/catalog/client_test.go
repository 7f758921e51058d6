package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchMenuAndVenue(t *testing.T) {
	var paths []string
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case MenuPath:
			_, _ = w.Write([]byte(sampleMenuJSON))
		case "/challenge/venue/9":
			_, _ = w.Write([]byte(`{"webSettings": {"bannerImage": "https://img.example/banner.png"}}`))
		default:
			http.NotFound(w, r)
		}
	})
	client := NewClient(srv.URL+"/", "9", WithHTTPClient(srv.Client()))

	menu, err := client.FetchMenu(context.Background())
	if err != nil {
		t.Fatalf("fetch menu: %v", err)
	}
	if len(menu.Topics) != 2 {
		t.Fatalf("len(topics) = %d, want 2", len(menu.Topics))
	}
	venue, err := client.FetchVenue(context.Background())
	if err != nil {
		t.Fatalf("fetch venue: %v", err)
	}
	if venue.BannerImage != "https://img.example/banner.png" {
		t.Fatalf("banner = %q", venue.BannerImage)
	}
	if strings.Join(paths, ",") != "/challenge/menu,/challenge/venue/9" {
		t.Fatalf("unexpected request paths %v", paths)
	}
}

func TestFetchMenuNon2xxIsFetchFailure(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream unavailable", http.StatusServiceUnavailable)
	})
	client := NewClient(srv.URL, "9", WithHTTPClient(srv.Client()))
	menu, err := client.FetchMenu(context.Background())
	if !errors.Is(err, ErrFetchFailure) {
		t.Fatalf("expected fetch failure, got %v", err)
	}
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected *FetchError, got %T", err)
	}
	if fetchErr.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", fetchErr.StatusCode)
	}
	if !strings.Contains(err.Error(), "upstream unavailable") {
		t.Fatalf("error should carry body snippet: %v", err)
	}
	if !menu.Empty() {
		t.Fatalf("failed fetch must not return topics")
	}
}

func TestFetchMenuSchemaMismatchNamesEndpoint(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"sections": [{"name": "no id", "items": []}]}`))
	})
	client := NewClient(srv.URL, "9", WithHTTPClient(srv.Client()))
	_, err := client.FetchMenu(context.Background())
	if !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("expected schema mismatch, got %v", err)
	}
	if errors.Is(err, ErrFetchFailure) {
		t.Fatalf("schema mismatch must not look like a transport failure")
	}
	if !strings.Contains(err.Error(), client.MenuEndpoint()) {
		t.Fatalf("error should name endpoint: %v", err)
	}
}

func TestFetchTransportErrorAndCancellation(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", "9", WithTimeout(time.Second))
	if _, err := client.FetchVenue(context.Background()); !errors.Is(err, ErrFetchFailure) {
		t.Fatalf("expected fetch failure for unreachable host, got %v", err)
	}

	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sampleMenuJSON))
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	client = NewClient(srv.URL, "9", WithHTTPClient(srv.Client()))
	_, err := client.FetchMenu(ctx)
	if !errors.Is(err, ErrFetchFailure) || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancelled fetch failure, got %v", err)
	}
}

func TestFetchRejectsOversizedBody(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sampleMenuJSON))
	})
	client := NewClient(srv.URL, "9", WithHTTPClient(srv.Client()), WithMaxBodyBytes(16))
	if _, err := client.FetchMenu(context.Background()); !errors.Is(err, ErrFetchFailure) {
		t.Fatalf("expected size limit failure, got %v", err)
	}
}

func TestFetchVenueRequiresVenueID(t *testing.T) {
	client := NewClient("http://example.invalid", " ")
	if _, err := client.FetchVenue(context.Background()); !errors.Is(err, ErrFetchFailure) {
		t.Fatalf("expected failure without venue id, got %v", err)
	}
}
