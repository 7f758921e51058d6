// internal/tui/app.go
//
// This is the main TUI for the storefront. It uses bubbletea, which follows
// The Elm Architecture:
//
// 1. Model: the App below, which owns a storefront.Store
// 2. Update: maps messages (keys, fetch results) to Store operations
// 3. View: renders the Store to a string (see view.go)
//
// The App never edits catalog or cart data itself. Every change goes through
// a named Store operation so the same rules apply to tests and to the UI.

package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kingrea/storefront/internal/cart"
	"github.com/kingrea/storefront/internal/catalog"
	"github.com/kingrea/storefront/internal/config"
	"github.com/kingrea/storefront/internal/logbook"
	"github.com/kingrea/storefront/internal/storefront"
)

// focusArea is the panel that receives navigation keys.
type focusArea int

const (
	focusCatalog focusArea = iota
	focusCart
	focusSearch
)

type menuLoadedMsg struct {
	gen  uint64
	menu catalog.Menu
	err  error
}

type venueLoadedMsg struct {
	gen   uint64
	venue catalog.Venue
	err   error
}

// catalogRow is one selectable accordion line: a topic header (item < 0) or
// one of the expanded topic's items.
type catalogRow struct {
	topic catalog.Topic
	item  int
}

func (r catalogRow) isHeader() bool { return r.item < 0 }

// modifierRow flattens modifier groups for cursor navigation in the item view.
type modifierRow struct {
	group    catalog.ModifierGroup
	modifier catalog.Modifier
}

// AppOption customizes App construction for tests and alternate runtimes.
type AppOption func(*App)

// WithClient overrides the catalog client built from config.
func WithClient(client *catalog.Client) AppOption {
	return func(a *App) {
		if client != nil {
			a.client = client
		}
	}
}

// WithStore injects a pre-built store.
func WithStore(store *storefront.Store) AppOption {
	return func(a *App) {
		if store != nil {
			a.store = store
		}
	}
}

// WithLogbook overrides the session logbook.
func WithLogbook(lb *logbook.Logbook) AppOption {
	return func(a *App) {
		if lb != nil {
			a.logbook = lb
		}
	}
}

// WithContext sets the parent context for catalog requests. Quitting the
// App cancels it.
func WithContext(ctx context.Context) AppOption {
	return func(a *App) {
		if ctx != nil {
			a.parent = ctx
		}
	}
}

// App is the main application model. In bubbletea, this holds ALL your state.
type App struct {
	config  *config.Config
	store   *storefront.Store
	client  *catalog.Client
	logbook *logbook.Logbook

	parent context.Context
	ctx    context.Context
	cancel context.CancelFunc

	// UI components
	keys    keyMap
	help    help.Model
	spinner spinner.Model
	search  textinput.Model

	focus      focusArea
	lastFocus  focusArea
	rowCursor  int
	modCursor  int
	cartCursor int

	menuPending  bool
	venuePending bool
	statusMsg    string

	// Window size (we get this from bubbletea)
	width  int
	height int
}

// NewApp creates a new App backed by cfg.
func NewApp(cfg *config.Config, opts ...AppOption) (*App, error) {
	if cfg == nil {
		return nil, errors.New("tui: config is required")
	}
	search := textinput.New()
	search.Placeholder = "Search menu items"
	search.Prompt = "⌕ "
	search.CharLimit = 64
	search.Cursor.SetMode(cursor.CursorStatic)

	app := &App{
		config:  cfg,
		store:   storefront.New(),
		parent:  context.Background(),
		keys:    defaultKeyMap(),
		help:    help.New(),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		search:  search,
		focus:   focusCatalog,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(app)
		}
	}
	if app.client == nil {
		app.client = catalog.NewClient(cfg.BaseURL(), cfg.VenueID(), catalog.WithTimeout(cfg.Timeout()))
	}
	if app.logbook == nil {
		lb, err := logbook.New(cfg.SessionLogPath())
		if err != nil {
			app.statusMsg = fmt.Sprintf("Session log unavailable: %v", err)
		} else {
			app.logbook = lb
		}
	}
	app.ctx, app.cancel = context.WithCancel(app.parent)
	app.logInfo("Session opened · venue %s at %s", app.client.VenueID(), cfg.BaseURL())
	return app, nil
}

// Store exposes the underlying state aggregate.
func (a *App) Store() *storefront.Store {
	return a.store
}

func (a *App) logInfo(format string, args ...any) {
	if a.logbook == nil {
		return
	}
	a.logbook.Info(format, args...)
}

func (a *App) logWarn(format string, args ...any) {
	if a.logbook == nil {
		return
	}
	a.logbook.Warn(format, args...)
}

func (a *App) logError(format string, args ...any) {
	if a.logbook == nil {
		return
	}
	a.logbook.Error(format, args...)
}

// Init is called once when the program starts.
func (a *App) Init() tea.Cmd {
	return a.reload()
}

// Update is called when a message is received.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		a.search.Width = max(10, msg.Width/3)
		return a, nil

	case menuLoadedMsg:
		a.handleMenuLoaded(msg)
		return a, nil

	case venueLoadedMsg:
		a.handleVenueLoaded(msg)
		return a, nil

	case spinner.TickMsg:
		if !a.loading() {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	if a.focus == focusSearch {
		var cmd tea.Cmd
		a.search, cmd = a.search.Update(msg)
		return a, cmd
	}
	return a, nil
}

// reload starts a new load generation and fetches both catalog slices.
func (a *App) reload() tea.Cmd {
	gen := a.store.BeginLoad()
	a.menuPending = true
	a.venuePending = true
	a.statusMsg = "Loading menu..."
	return tea.Batch(a.fetchMenu(gen), a.fetchVenue(gen), a.spinner.Tick)
}

func (a *App) fetchMenu(gen uint64) tea.Cmd {
	client, ctx := a.client, a.ctx
	return func() tea.Msg {
		menu, err := client.FetchMenu(ctx)
		return menuLoadedMsg{gen: gen, menu: menu, err: err}
	}
}

func (a *App) fetchVenue(gen uint64) tea.Cmd {
	client, ctx := a.client, a.ctx
	return func() tea.Msg {
		venue, err := client.FetchVenue(ctx)
		return venueLoadedMsg{gen: gen, venue: venue, err: err}
	}
}

func (a *App) loading() bool {
	return a.menuPending || a.venuePending
}

func (a *App) handleMenuLoaded(msg menuLoadedMsg) {
	if msg.gen != a.store.Generation() {
		a.logInfo("Menu · discarded result of an outdated load")
		return
	}
	a.menuPending = false
	if msg.err != nil {
		a.logError("Menu · load failed: %v", msg.err)
		a.statusMsg = loadFailureStatus("Menu", msg.err)
		return
	}
	a.store.ApplyMenu(msg.gen, msg.menu)
	a.clampCursors()
	a.logInfo("Menu · loaded %d topics, %d items", len(msg.menu.Topics), msg.menu.ItemCount())
	a.statusMsg = fmt.Sprintf("Menu loaded · %d topics", len(msg.menu.Topics))
}

func (a *App) handleVenueLoaded(msg venueLoadedMsg) {
	if msg.gen != a.store.Generation() {
		a.logInfo("Venue · discarded result of an outdated load")
		return
	}
	a.venuePending = false
	if msg.err != nil {
		a.logError("Venue · load failed: %v", msg.err)
		if !a.menuPending {
			a.statusMsg = loadFailureStatus("Banner", msg.err)
		}
		return
	}
	a.store.ApplyVenue(msg.gen, msg.venue)
	a.logInfo("Venue · banner %s", msg.venue.BannerImage)
}

func loadFailureStatus(what string, err error) string {
	if errors.Is(err, catalog.ErrSchemaMismatch) {
		return fmt.Sprintf("%s data was malformed · press r to retry", what)
	}
	return fmt.Sprintf("%s unavailable · press r to retry", what)
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return a.quit()
	}
	if a.focus == focusSearch {
		return a.handleSearchKey(msg)
	}
	if a.store.HasDraft() {
		return a.handleItemKey(msg)
	}
	switch {
	case key.Matches(msg, a.keys.Quit):
		return a.quit()
	case key.Matches(msg, a.keys.Help):
		a.help.ShowAll = !a.help.ShowAll
		return a, nil
	case key.Matches(msg, a.keys.Reload):
		a.logInfo("Reload requested")
		return a, a.reload()
	case key.Matches(msg, a.keys.Search):
		a.lastFocus = a.focus
		a.focus = focusSearch
		return a, a.search.Focus()
	case key.Matches(msg, a.keys.Focus):
		if a.focus == focusCatalog {
			a.focus = focusCart
		} else {
			a.focus = focusCatalog
		}
		return a, nil
	}
	if a.focus == focusCart {
		return a.handleCartKey(msg)
	}
	return a.handleCatalogKey(msg)
}

func (a *App) quit() (tea.Model, tea.Cmd) {
	a.store.CancelLoads()
	a.menuPending = false
	a.venuePending = false
	if a.cancel != nil {
		a.cancel()
	}
	a.logInfo("Session closed · %d cart lines, total %s", a.store.CartLen(), a.money(a.store.Total()))
	return a, tea.Quit
}

func (a *App) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc, tea.KeyEnter:
		a.search.Blur()
		a.focus = a.lastFocus
		return a, nil
	}
	var cmd tea.Cmd
	a.search, cmd = a.search.Update(msg)
	return a, cmd
}

func (a *App) handleCatalogKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	rows := a.catalogRows()
	switch {
	case key.Matches(msg, a.keys.Up):
		if a.rowCursor > 0 {
			a.rowCursor--
		}
	case key.Matches(msg, a.keys.Down):
		if a.rowCursor < len(rows)-1 {
			a.rowCursor++
		}
	case key.Matches(msg, a.keys.Select):
		if len(rows) == 0 {
			return a, nil
		}
		row := rows[a.rowCursor]
		if row.isHeader() {
			a.store.ToggleTopic(row.topic.ID)
			a.focusTopic(row.topic.ID)
			return a, nil
		}
		item := row.topic.Items[row.item]
		a.store.OpenItem(item)
		a.modCursor = 0
		a.logInfo("Item · opened %s", item.Name)
	}
	return a, nil
}

func (a *App) handleItemKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	mods := a.modifierRows()
	switch {
	case key.Matches(msg, a.keys.Close):
		a.store.CloseDraft()
		a.statusMsg = ""
	case key.Matches(msg, a.keys.Up):
		if a.modCursor > 0 {
			a.modCursor--
		}
	case key.Matches(msg, a.keys.Down):
		if a.modCursor < len(mods)-1 {
			a.modCursor++
		}
	case key.Matches(msg, a.keys.Choose):
		if len(mods) > 0 {
			a.store.ChooseModifier(mods[a.modCursor].modifier)
		}
	case key.Matches(msg, a.keys.Increase):
		a.store.IncreaseQuantity()
	case key.Matches(msg, a.keys.Decrease):
		a.store.DecreaseQuantity()
	case key.Matches(msg, a.keys.Select):
		a.commitDraft()
	}
	return a, nil
}

func (a *App) commitDraft() {
	line, err := a.store.CommitToCart()
	switch {
	case errors.Is(err, storefront.ErrNotPurchasable):
		a.logWarn("Cart · %v", err)
		a.statusMsg = "Choose a priced option before adding this item"
	case err != nil:
		a.logError("Cart · add failed: %v", err)
		a.statusMsg = err.Error()
	default:
		a.logInfo("Cart · added %d × %s at %s", line.Quantity, line.Label(), a.money(line.UnitPrice))
		a.statusMsg = fmt.Sprintf("Added %s to cart", line.Label())
		a.cartCursor = a.store.CartLen() - 1
	}
}

func (a *App) handleCartKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Up):
		if a.cartCursor > 0 {
			a.cartCursor--
		}
	case key.Matches(msg, a.keys.Down):
		if a.cartCursor < a.store.CartLen()-1 {
			a.cartCursor++
		}
	case key.Matches(msg, a.keys.Increase):
		a.adjustCartLine(a.store.IncreaseLineQuantity)
	case key.Matches(msg, a.keys.Decrease):
		a.adjustCartLine(a.store.DecreaseLineQuantity)
	}
	return a, nil
}

// adjustCartLine resolves the cursor to a line id before mutating, so the
// change lands on the line the user sees selected.
func (a *App) adjustCartLine(op func(id string) (cart.Line, error)) {
	if a.store.CartLen() == 0 {
		return
	}
	line, err := a.store.CartLineAt(a.cartCursor)
	if err != nil {
		a.logError("Cart · %v", err)
		return
	}
	updated, err := op(line.ID)
	if err != nil {
		a.logError("Cart · %v", err)
		return
	}
	a.statusMsg = fmt.Sprintf("%s × %d", updated.Label(), updated.Quantity)
}

func (a *App) catalogRows() []catalogRow {
	var rows []catalogRow
	for _, topic := range a.store.Menu().Topics {
		rows = append(rows, catalogRow{topic: topic, item: -1})
		if !a.store.IsExpanded(topic.ID) {
			continue
		}
		for idx := range topic.Items {
			rows = append(rows, catalogRow{topic: topic, item: idx})
		}
	}
	return rows
}

func (a *App) modifierRows() []modifierRow {
	draft, ok := a.store.Draft()
	if !ok {
		return nil
	}
	var rows []modifierRow
	for _, group := range draft.Item.Modifiers {
		for _, mod := range group.Modifiers {
			rows = append(rows, modifierRow{group: group, modifier: mod})
		}
	}
	return rows
}

// focusTopic moves the cursor onto a topic header after the accordion changed shape.
func (a *App) focusTopic(id string) {
	for idx, row := range a.catalogRows() {
		if row.isHeader() && row.topic.ID == id {
			a.rowCursor = idx
			return
		}
	}
	a.clampCursors()
}

func (a *App) clampCursors() {
	a.rowCursor = clamp(a.rowCursor, len(a.catalogRows()))
	a.cartCursor = clamp(a.cartCursor, a.store.CartLen())
	a.modCursor = clamp(a.modCursor, len(a.modifierRows()))
}

func clamp(cursor, length int) int {
	if length <= 0 || cursor < 0 {
		return 0
	}
	if cursor >= length {
		return length - 1
	}
	return cursor
}

func (a *App) money(amount fmt.Stringer) string {
	symbol := strings.TrimSpace(a.config.CurrencySymbol())
	if symbol == "" {
		return amount.String()
	}
	return symbol + " " + amount.String()
}
