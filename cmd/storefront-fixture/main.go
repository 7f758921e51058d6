// cmd/storefront-fixture/main.go
//
// Serves the catalog endpoints locally from a YAML fixture so the storefront
// can run without the real API:
//
//	storefront-fixture -port 8080 -fixture .storefront/fixtures/menu.yaml
//	storefront -api http://127.0.0.1:8080
//
// Set STOREFRONT_FIXTURE_FAIL=menu (or venue) to make an endpoint answer 503.

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/kingrea/storefront/internal/config"
	"github.com/kingrea/storefront/internal/fixture"
	"github.com/kingrea/storefront/internal/logging"
)

func main() {
	projectDir := flag.String("project", "", "directory holding .storefront (defaults to cwd)")
	host := flag.String("host", "", "bind host (overrides fixture.host)")
	port := flag.Int("port", -1, "bind port, 0 picks a free one (overrides fixture.port)")
	fixturePath := flag.String("fixture", "", "fixture YAML file (defaults to the bundled sample)")
	flag.Parse()

	project := *projectDir
	if project == "" {
		var err error
		project, err = os.Getwd()
		if err != nil {
			die("determine working directory: %v", err)
		}
	}
	absoluteProject, err := filepath.Abs(project)
	if err != nil {
		die("resolve project dir: %v", err)
	}
	if err := config.InitDir(absoluteProject); err != nil {
		die("init .storefront: %v", err)
	}
	cfg, err := config.NewConfig(absoluteProject)
	if err != nil {
		die("load config: %v", err)
	}

	settings := fixture.SettingsFromConfig(cfg)
	if *host != "" {
		settings.Host = *host
	}
	if *port >= 0 && *port <= 65535 {
		settings.Port = *port
	}
	if *fixturePath != "" {
		settings.FixturePath = *fixturePath
	}

	logger, err := logging.Open(cfg.LogsDir(), "fixture.log")
	if err != nil {
		die("open log: %v", err)
	}
	defer logger.Close()
	logger.Mirror(os.Stderr)

	srv, err := fixture.NewServer(settings, fixture.WithLogger(logger))
	if err != nil {
		die("load fixture: %v", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := srv.Start(ctx); err != nil {
		die("start fixture server: %v", err)
	}
	fmt.Printf("Serving menu at %s/challenge/menu\n", srv.BaseURL())

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("fixture: shutdown: %v", err)
	}
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
