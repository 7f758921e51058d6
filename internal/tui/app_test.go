package tui

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kingrea/storefront/internal/catalog"
	"github.com/kingrea/storefront/internal/config"
	"github.com/kingrea/storefront/internal/fixture"
	"github.com/kingrea/storefront/internal/logbook"
)

func TestInitLoadsMenuAndBanner(t *testing.T) {
	app := newTestApp(t, fixture.Settings{})
	app = runCommands(t, app, app.Init())

	store := app.Store()
	if !store.MenuLoaded() || len(store.Menu().Topics) != 3 {
		t.Fatalf("expected menu with 3 topics, got %+v", store.Menu())
	}
	if !store.Venue().HasBanner() {
		t.Fatalf("expected banner to load")
	}
	if app.loading() {
		t.Fatalf("loading flags must clear once both fetches land")
	}
	view := app.View()
	for _, want := range []string{"Menu", "Entrar", "Contato", "Burgers", "Drinks", "Carrinho", "Seu carrinho está vazio"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}
}

func TestMenuFailureLeavesTopicsEmpty(t *testing.T) {
	app := newTestApp(t, fixture.Settings{FailMenu: true})
	app = runCommands(t, app, app.Init())

	store := app.Store()
	if store.MenuLoaded() || len(store.Menu().Topics) != 0 {
		t.Fatalf("failed load must not populate topics: %+v", store.Menu())
	}
	if !store.Venue().HasBanner() {
		t.Fatalf("venue load is independent of the menu load")
	}
	if !strings.Contains(app.statusMsg, "Menu unavailable") {
		t.Fatalf("unexpected status %q", app.statusMsg)
	}
	lines, _ := app.logbook.Tail(20)
	if !containsLine(lines, "ERROR", "Menu · load failed") {
		t.Fatalf("expected error in logbook, got %v", lines)
	}
	if !strings.Contains(app.View(), "Menu unavailable. Press r to retry.") {
		t.Fatalf("expected retry hint in view")
	}
}

func TestExpandOpenAndAddToCart(t *testing.T) {
	app := newTestApp(t, fixture.Settings{})
	app = runCommands(t, app, app.Init())

	app = press(t, app, tea.KeyMsg{Type: tea.KeyEnter})
	if !app.Store().IsExpanded("242403") {
		t.Fatalf("enter on a topic header must expand it")
	}
	app = press(t, app, tea.KeyMsg{Type: tea.KeyDown})
	app = press(t, app, tea.KeyMsg{Type: tea.KeyEnter})
	draft, ok := app.Store().Draft()
	if !ok || draft.Item.Name != "Hard Core" {
		t.Fatalf("expected Hard Core draft, got %+v", draft)
	}
	app = press(t, app, runes("+"))
	app = press(t, app, runes("+"))
	if !strings.Contains(app.View(), "Add order • $ 99") {
		t.Fatalf("expected add button with draft total:\n%s", app.View())
	}
	app = press(t, app, tea.KeyMsg{Type: tea.KeyEnter})

	if app.Store().HasDraft() {
		t.Fatalf("commit must close the item view")
	}
	lines := app.Store().CartLines()
	if len(lines) != 1 || lines[0].Quantity != 3 || lines[0].UnitPrice.String() != "33" {
		t.Fatalf("unexpected cart %+v", lines)
	}
	if app.Store().Subtotal().String() != "99" {
		t.Fatalf("subtotal = %s", app.Store().Subtotal())
	}
	view := app.View()
	if strings.Contains(view, "Seu carrinho está vazio") || !strings.Contains(view, "Total     $ 99") {
		t.Fatalf("cart panel not updated:\n%s", view)
	}
}

func TestZeroPricedItemNeedsModifier(t *testing.T) {
	app := newTestApp(t, fixture.Settings{})
	app = runCommands(t, app, app.Init())
	app = press(t, app, tea.KeyMsg{Type: tea.KeyEnter})
	app = press(t, app, tea.KeyMsg{Type: tea.KeyDown})
	app = press(t, app, tea.KeyMsg{Type: tea.KeyDown})
	app = press(t, app, tea.KeyMsg{Type: tea.KeyEnter})
	draft, ok := app.Store().Draft()
	if !ok || draft.Item.Name != "Smash Brooks" {
		t.Fatalf("expected Smash Brooks draft, got %+v", draft)
	}
	if strings.Contains(app.View(), "Add order") {
		t.Fatalf("add action must be hidden for a zero effective price")
	}

	app = press(t, app, tea.KeyMsg{Type: tea.KeyEnter})
	if !app.Store().HasDraft() || app.Store().CartLen() != 0 {
		t.Fatalf("rejected commit must keep the draft and leave the cart empty")
	}
	logged, _ := app.logbook.Tail(20)
	if !containsLine(logged, "WARN", "not purchasable") {
		t.Fatalf("expected rejection in logbook, got %v", logged)
	}

	app = press(t, app, tea.KeyMsg{Type: tea.KeyDown})
	app = press(t, app, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	view := app.View()
	if !strings.Contains(view, "(•) 2 meats - $ 36") || !strings.Contains(view, "Add order • $ 36") {
		t.Fatalf("expected chosen modifier and add action:\n%s", view)
	}
	app = press(t, app, tea.KeyMsg{Type: tea.KeyEnter})
	lines := app.Store().CartLines()
	if len(lines) != 1 || lines[0].UnitPrice.String() != "36" || lines[0].Label() != "Smash Brooks (2 meats)" {
		t.Fatalf("unexpected cart %+v", lines)
	}
}

func TestEscClosesItemWithoutTouchingCart(t *testing.T) {
	app := newTestApp(t, fixture.Settings{})
	app = runCommands(t, app, app.Init())
	app = press(t, app, tea.KeyMsg{Type: tea.KeyEnter})
	app = press(t, app, tea.KeyMsg{Type: tea.KeyDown})
	app = press(t, app, tea.KeyMsg{Type: tea.KeyEnter})
	app = press(t, app, runes("q"))
	if !app.Store().HasDraft() {
		t.Fatalf("the item view captures keys; q must not close it")
	}
	app = press(t, app, tea.KeyMsg{Type: tea.KeyEsc})
	if app.Store().HasDraft() || app.Store().CartLen() != 0 {
		t.Fatalf("esc must discard the draft only")
	}
}

func TestCartKeysAdjustSelectedLine(t *testing.T) {
	app := newTestApp(t, fixture.Settings{})
	app = runCommands(t, app, app.Init())
	app = press(t, app, tea.KeyMsg{Type: tea.KeyEnter})
	app = press(t, app, tea.KeyMsg{Type: tea.KeyDown})
	// same item twice yields two lines
	for i := 0; i < 2; i++ {
		app = press(t, app, tea.KeyMsg{Type: tea.KeyEnter})
		app = press(t, app, tea.KeyMsg{Type: tea.KeyEnter})
	}
	if app.Store().CartLen() != 2 {
		t.Fatalf("expected two separate lines, got %d", app.Store().CartLen())
	}

	app = press(t, app, tea.KeyMsg{Type: tea.KeyTab})
	app = press(t, app, tea.KeyMsg{Type: tea.KeyUp})
	app = press(t, app, runes("+"))
	lines := app.Store().CartLines()
	if lines[0].Quantity != 2 || lines[1].Quantity != 1 {
		t.Fatalf("increase must hit the selected line: %d/%d", lines[0].Quantity, lines[1].Quantity)
	}
	for i := 0; i < 3; i++ {
		app = press(t, app, runes("-"))
	}
	lines = app.Store().CartLines()
	if len(lines) != 2 || lines[0].Quantity != 1 {
		t.Fatalf("decrease must floor at 1 and never remove lines: %+v", lines)
	}
	if app.Store().Subtotal().String() != "66" {
		t.Fatalf("subtotal = %s, want 66", app.Store().Subtotal())
	}
}

func TestOutdatedLoadIsDiscarded(t *testing.T) {
	app := newTestApp(t, fixture.Settings{})
	first := app.Init()
	second := app.reload()

	app = runCommands(t, app, first)
	if app.Store().MenuLoaded() {
		t.Fatalf("results from a superseded load must be discarded")
	}
	if !app.loading() {
		t.Fatalf("the newer load is still pending")
	}
	app = runCommands(t, app, second)
	if !app.Store().MenuLoaded() || app.loading() {
		t.Fatalf("current load should apply")
	}
}

func TestReloadKeepsExpandedTopic(t *testing.T) {
	app := newTestApp(t, fixture.Settings{})
	app = runCommands(t, app, app.Init())
	app = press(t, app, tea.KeyMsg{Type: tea.KeyEnter})
	model, cmd := app.Update(runes("r"))
	app = runCommands(t, model, cmd)
	if !app.Store().IsExpanded("242403") {
		t.Fatalf("topic still present after reload must stay expanded")
	}
}

func TestQuitCancelsInFlightLoads(t *testing.T) {
	app := newTestApp(t, fixture.Settings{})
	pending := app.Init()
	gen := app.Store().Generation()

	_, cmd := app.Update(runes("q"))
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
	if app.Store().Generation() == gen {
		t.Fatalf("quit must invalidate in-flight loads")
	}
	if app.ctx.Err() == nil {
		t.Fatalf("quit must cancel request context")
	}
	app = runCommands(t, app, pending)
	if app.Store().MenuLoaded() {
		t.Fatalf("no load may apply after quit")
	}
}

func TestSearchInputIsVisualOnly(t *testing.T) {
	app := newTestApp(t, fixture.Settings{})
	app = runCommands(t, app, app.Init())
	app = press(t, app, runes("/"))
	if app.focus != focusSearch {
		t.Fatalf("slash must focus search")
	}
	app = press(t, app, runes("b"))
	app = press(t, app, runes("r"))
	if app.search.Value() != "br" {
		t.Fatalf("search value = %q", app.search.Value())
	}
	if app.Store().Generation() != 1 {
		t.Fatalf("typing r in search must not reload")
	}
	app = press(t, app, tea.KeyMsg{Type: tea.KeyEsc})
	if app.focus != focusCatalog {
		t.Fatalf("esc must return focus to the catalog")
	}
	if len(app.catalogRows()) != 3 {
		t.Fatalf("search must not filter topics")
	}
}

func newTestApp(t *testing.T, settings fixture.Settings) *App {
	t.Helper()
	for _, key := range []string{"STOREFRONT_API_URL", "STOREFRONT_VENUE_ID", "STOREFRONT_API_TIMEOUT", "STOREFRONT_LOG_LINES"} {
		t.Setenv(key, "")
	}
	projectDir := t.TempDir()
	if err := config.InitDir(projectDir); err != nil {
		t.Fatalf("init storefront dir: %v", err)
	}
	srv, err := fixture.NewServer(settings)
	if err != nil {
		t.Fatalf("fixture server: %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	cfg, err := config.NewConfig(projectDir)
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	if err := cfg.Override(ts.URL, "9"); err != nil {
		t.Fatalf("override: %v", err)
	}
	lb, err := logbook.New(cfg.SessionLogPath())
	if err != nil {
		t.Fatalf("logbook: %v", err)
	}
	app, err := NewApp(cfg,
		WithClient(catalog.NewClient(cfg.BaseURL(), cfg.VenueID(), catalog.WithHTTPClient(ts.Client()))),
		WithLogbook(lb),
	)
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	return app
}

// runCommands drains cmd and everything it schedules. Spinner ticks are
// time-driven and skipped.
func runCommands(t *testing.T, model tea.Model, cmd tea.Cmd) *App {
	t.Helper()
	app, ok := model.(*App)
	if !ok {
		t.Fatalf("unexpected model type: %T", model)
	}
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		msg := next()
		switch msg := msg.(type) {
		case nil, spinner.TickMsg, tea.QuitMsg:
			continue
		case tea.BatchMsg:
			queue = append(queue, msg...)
			continue
		}
		nextModel, nextCmd := app.Update(msg)
		app, ok = nextModel.(*App)
		if !ok {
			t.Fatalf("unexpected model type: %T", nextModel)
		}
		queue = append(queue, nextCmd)
	}
	return app
}

func press(t *testing.T, app *App, msg tea.KeyMsg) *App {
	t.Helper()
	model, cmd := app.Update(msg)
	return runCommands(t, model, cmd)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func containsLine(lines []string, level, fragment string) bool {
	for _, line := range lines {
		if strings.Contains(line, " "+level) && strings.Contains(line, fragment) {
			return true
		}
	}
	return false
}
