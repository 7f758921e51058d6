package fixture

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kingrea/storefront/internal/catalog"
	"github.com/kingrea/storefront/internal/config"
)

func clearFixtureEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"STOREFRONT_FIXTURE_HOST", "STOREFRONT_FIXTURE_PORT", "STOREFRONT_FIXTURE_PATH", "STOREFRONT_FIXTURE_FAIL"} {
		t.Setenv(key, "")
	}
}

func newHandlerServer(t *testing.T, settings Settings) *httptest.Server {
	t.Helper()
	srv, err := NewServer(settings)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func TestSettingsFromConfigHonorsEnv(t *testing.T) {
	clearFixtureEnv(t)
	t.Setenv("STOREFRONT_FIXTURE_PORT", "9001")
	t.Setenv("STOREFRONT_FIXTURE_HOST", "0.0.0.0")
	t.Setenv("STOREFRONT_FIXTURE_FAIL", "menu, VENUE")
	settings := SettingsFromConfig(&config.Config{})
	if settings.Port != 9001 {
		t.Fatalf("expected port 9001, got %d", settings.Port)
	}
	if settings.Host != "0.0.0.0" {
		t.Fatalf("expected host override, got %s", settings.Host)
	}
	if !settings.FailMenu || !settings.FailVenue {
		t.Fatalf("expected both endpoints to fail: %+v", settings)
	}
	if settings.URL() != "http://0.0.0.0:9001" {
		t.Fatalf("unexpected url %s", settings.URL())
	}
}

func TestSettingsFromConfigDefaults(t *testing.T) {
	clearFixtureEnv(t)
	settings := SettingsFromConfig(nil)
	if settings.Address() != "127.0.0.1:8080" {
		t.Fatalf("unexpected default address %s", settings.Address())
	}
	if settings.FailMenu || settings.FailVenue || settings.FixturePath != "" {
		t.Fatalf("unexpected defaults %+v", settings)
	}
}

func TestBundledSampleDecodesAsCatalog(t *testing.T) {
	ts := newHandlerServer(t, Settings{})
	client := catalog.NewClient(ts.URL, "9", catalog.WithHTTPClient(ts.Client()))

	menu, err := client.FetchMenu(context.Background())
	if err != nil {
		t.Fatalf("FetchMenu: %v", err)
	}
	if len(menu.Topics) != 3 {
		t.Fatalf("expected 3 topics, got %d", len(menu.Topics))
	}
	burgers, ok := menu.Topic("242403")
	if !ok || burgers.Name != "Burgers" {
		t.Fatalf("burgers topic missing: %+v", menu.Topics)
	}
	smash := burgers.Items[1]
	if smash.Orderable() || !smash.HasModifiers() {
		t.Fatalf("smash should be priced through its modifiers: %+v", smash)
	}
	if mod, ok := smash.Modifier("1625731"); !ok || mod.Price.String() != "36" {
		t.Fatalf("modifier lookup failed: %+v", mod)
	}

	venue, err := client.FetchVenue(context.Background())
	if err != nil {
		t.Fatalf("FetchVenue: %v", err)
	}
	if !venue.HasBanner() || !strings.HasSuffix(venue.BannerImage, ".png") {
		t.Fatalf("unexpected venue %+v", venue)
	}
}

func TestUnknownVenueIsNotFound(t *testing.T) {
	ts := newHandlerServer(t, Settings{})
	client := catalog.NewClient(ts.URL, "404", catalog.WithHTTPClient(ts.Client()))
	_, err := client.FetchVenue(context.Background())
	var fetchErr *catalog.FetchError
	if !errors.As(err, &fetchErr) || fetchErr.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 fetch failure, got %v", err)
	}
}

func TestFailFlagsAnswerServiceUnavailable(t *testing.T) {
	ts := newHandlerServer(t, Settings{FailMenu: true})
	client := catalog.NewClient(ts.URL, "9", catalog.WithHTTPClient(ts.Client()))
	if _, err := client.FetchMenu(context.Background()); !errors.Is(err, catalog.ErrFetchFailure) {
		t.Fatalf("expected fetch failure, got %v", err)
	}
	if _, err := client.FetchVenue(context.Background()); err != nil {
		t.Fatalf("venue should still load: %v", err)
	}
}

func TestMalformedFixtureSurfacesSchemaMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	body := `venues:
  "9":
    webSettings:
      bannerImage: https://example.com/banner.png
sections:
  - id: 1
    name: Broken
    items:
      - id: 2
        name: No price
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	ts := newHandlerServer(t, Settings{FixturePath: path})
	client := catalog.NewClient(ts.URL, "9", catalog.WithHTTPClient(ts.Client()))
	_, err := client.FetchMenu(context.Background())
	var schemaErr *catalog.SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected schema error, got %v", err)
	}
	if schemaErr.Path != "sections[0].items[0].price" {
		t.Fatalf("unexpected path %q", schemaErr.Path)
	}
}

func TestParseDocumentRequiresVenue(t *testing.T) {
	if _, err := ParseDocument([]byte("sections: []\n")); err == nil {
		t.Fatalf("expected error for fixture without venues")
	}
	if _, err := LoadDocument(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing fixture")
	}
}

func TestServerStartAndHealth(t *testing.T) {
	t.Parallel()
	fixed := time.Unix(1760000000, 0).UTC()
	var (
		logMu  sync.Mutex
		logged []string
	)
	settings := Settings{Host: "127.0.0.1", Port: 0, ReadTimeout: time.Second, WriteTimeout: time.Second, IdleTimeout: time.Second}
	srv, err := NewServer(settings,
		WithClock(func() time.Time { return fixed }),
		WithLogger(loggerFunc(func(format string, args ...any) {
			logMu.Lock()
			logged = append(logged, format)
			logMu.Unlock()
		})))
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("start server: %v", err)
	}
	if srv.Status() != StatusReady {
		t.Fatalf("expected ready status, got %s", srv.Status())
	}
	if err := srv.Start(context.Background()); err == nil {
		t.Fatalf("expected error on second start")
	}

	client := catalog.NewClient(srv.BaseURL(), "9")
	if _, err := client.FetchMenu(context.Background()); err != nil {
		t.Fatalf("FetchMenu over TCP: %v", err)
	}

	resp, err := http.Get(srv.BaseURL() + "/health")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	var health healthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	resp.Body.Close()
	if health.Status != string(StatusReady) || health.UptimeSeconds != 0 {
		t.Fatalf("unexpected health %+v", health)
	}

	if err := srv.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if srv.Addr() != "" {
		t.Fatalf("expected listener released")
	}
	if srv.Status() != StatusDraining {
		t.Fatalf("expected draining status, got %s", srv.Status())
	}
	logMu.Lock()
	defer logMu.Unlock()
	if len(logged) == 0 {
		t.Fatalf("expected lifecycle log lines")
	}
}

type loggerFunc func(format string, args ...any)

func (f loggerFunc) Printf(format string, args ...any) { f(format, args...) }
