// internal/storefront/store.go
//
// Store is the single owned state aggregate behind the storefront UI:
//
//   - catalog slices (menu and venue), replaced wholesale by loads
//   - the expanded topic (single-open accordion)
//   - the item draft being configured, if any
//   - the committed cart
//
// Every mutation goes through a named operation below. The Store is not safe
// for concurrent use; it is driven from the UI event loop, which runs one
// transition at a time.

package storefront

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/kingrea/storefront/internal/cart"
	"github.com/kingrea/storefront/internal/catalog"
)

var (
	// ErrNoActiveDraft is returned when committing with no item open.
	ErrNoActiveDraft = errors.New("storefront: no active draft")
	// ErrNotPurchasable is returned when the draft's effective price is not positive.
	ErrNotPurchasable = errors.New("storefront: item is not purchasable")
	// ErrUnknownModifier is returned when a modifier id is not offered by the open item.
	ErrUnknownModifier = errors.New("storefront: unknown modifier")
)

// Store holds all mutable storefront state.
type Store struct {
	menu        catalog.Menu
	venue       catalog.Venue
	menuLoaded  bool
	venueLoaded bool
	generation  uint64

	expanded    string
	hasExpanded bool

	draft *Draft
	cart  *cart.Cart
}

// Option customizes a Store.
type Option func(*Store)

// WithCart seeds the store with a specific cart (tests pass carts with
// deterministic line ids).
func WithCart(c *cart.Cart) Option {
	return func(s *Store) {
		if c != nil {
			s.cart = c
		}
	}
}

// New creates an empty store: no catalog, nothing expanded, no draft, empty cart.
func New(opts ...Option) *Store {
	s := &Store{cart: cart.New()}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// BeginLoad starts a new load generation. Results must be applied with the
// returned token; anything tagged with an older token is discarded.
func (s *Store) BeginLoad() uint64 {
	s.generation++
	return s.generation
}

// CancelLoads invalidates every load that is still in flight.
func (s *Store) CancelLoads() {
	s.generation++
}

// Generation returns the current load token.
func (s *Store) Generation() uint64 {
	return s.generation
}

// ApplyMenu replaces the menu if gen is current. It reports whether the menu
// was applied.
func (s *Store) ApplyMenu(gen uint64, menu catalog.Menu) bool {
	if gen != s.generation {
		return false
	}
	s.menu = menu
	s.menuLoaded = true
	if s.hasExpanded {
		if _, ok := menu.Topic(s.expanded); !ok {
			s.expanded = ""
			s.hasExpanded = false
		}
	}
	return true
}

// ApplyVenue replaces the venue settings if gen is current.
func (s *Store) ApplyVenue(gen uint64, venue catalog.Venue) bool {
	if gen != s.generation {
		return false
	}
	s.venue = venue
	s.venueLoaded = true
	return true
}

// Menu returns the current menu (empty until a load succeeds).
func (s *Store) Menu() catalog.Menu {
	return s.menu
}

// Venue returns the current venue settings.
func (s *Store) Venue() catalog.Venue {
	return s.venue
}

// MenuLoaded reports whether at least one menu load succeeded.
func (s *Store) MenuLoaded() bool {
	return s.menuLoaded
}

// VenueLoaded reports whether at least one venue load succeeded.
func (s *Store) VenueLoaded() bool {
	return s.venueLoaded
}

// ToggleTopic collapses id if it is the expanded topic, otherwise expands it
// and collapses any other. Calling it twice with the same id restores the
// previous state.
func (s *Store) ToggleTopic(id string) {
	if s.hasExpanded && s.expanded == id {
		s.expanded = ""
		s.hasExpanded = false
		return
	}
	s.expanded = id
	s.hasExpanded = true
}

// ExpandedTopic returns the expanded topic id, if any.
func (s *Store) ExpandedTopic() (string, bool) {
	return s.expanded, s.hasExpanded
}

// IsExpanded reports whether id is the expanded topic.
func (s *Store) IsExpanded(id string) bool {
	return s.hasExpanded && s.expanded == id
}

// OpenItem starts a fresh draft for item, discarding any previous draft.
func (s *Store) OpenItem(item catalog.Item) {
	s.draft = &Draft{Item: item.Clone(), Quantity: 1}
}

// CloseDraft discards the current draft. The cart is not touched.
func (s *Store) CloseDraft() {
	s.draft = nil
}

// Draft returns a copy of the open draft.
func (s *Store) Draft() (Draft, bool) {
	if s.draft == nil {
		return Draft{}, false
	}
	return s.draft.clone(), true
}

// HasDraft reports whether an item is open.
func (s *Store) HasDraft() bool {
	return s.draft != nil
}

// IncreaseQuantity adds one unit to the draft. There is no upper bound.
func (s *Store) IncreaseQuantity() {
	if s.draft == nil {
		return
	}
	s.draft.Quantity++
}

// DecreaseQuantity removes one unit from the draft, never going below 1.
func (s *Store) DecreaseQuantity() {
	if s.draft == nil {
		return
	}
	if s.draft.Quantity > 1 {
		s.draft.Quantity--
	}
}

// ChooseModifier sets the draft's single modifier slot. Choosing from a
// second group replaces the first choice.
func (s *Store) ChooseModifier(mod catalog.Modifier) {
	if s.draft == nil {
		return
	}
	chosen := mod
	s.draft.Modifier = &chosen
}

// ChooseModifierByID looks mod up in the open item's groups before choosing it.
func (s *Store) ChooseModifierByID(id string) error {
	if s.draft == nil {
		return ErrNoActiveDraft
	}
	mod, ok := s.draft.Item.Modifier(id)
	if !ok {
		return fmt.Errorf("%w: %s on item %s", ErrUnknownModifier, id, s.draft.Item.ID)
	}
	s.ChooseModifier(mod)
	return nil
}

// EffectivePrice is the open draft's unit price, or zero without a draft.
func (s *Store) EffectivePrice() decimal.Decimal {
	if s.draft == nil {
		return decimal.Zero
	}
	return s.draft.EffectivePrice()
}

// DraftTotal is EffectivePrice × quantity for the open draft.
func (s *Store) DraftTotal() decimal.Decimal {
	if s.draft == nil {
		return decimal.Zero
	}
	return s.draft.Total()
}

// CanCommit reports whether CommitToCart would succeed.
func (s *Store) CanCommit() bool {
	return s.draft != nil && s.draft.Purchasable()
}

// CommitToCart appends the draft to the cart with its price frozen and closes
// the draft. A non-purchasable draft stays open and the cart is unchanged.
func (s *Store) CommitToCart() (cart.Line, error) {
	if s.draft == nil {
		return cart.Line{}, ErrNoActiveDraft
	}
	price := s.draft.EffectivePrice()
	if !price.IsPositive() {
		return cart.Line{}, fmt.Errorf("%w: %s has effective price %s", ErrNotPurchasable, s.draft.Item.Name, price.String())
	}
	snapshot := s.draft.clone()
	line, err := s.cart.Add(cart.Line{
		Item:      snapshot.Item,
		Modifier:  snapshot.Modifier,
		Quantity:  snapshot.Quantity,
		UnitPrice: price,
	})
	if err != nil {
		return cart.Line{}, err
	}
	s.draft = nil
	return line, nil
}

// CartLines returns the committed lines in display order.
func (s *Store) CartLines() []cart.Line {
	return s.cart.Lines()
}

// CartLen returns the number of committed lines.
func (s *Store) CartLen() int {
	return s.cart.Len()
}

// CartLineAt resolves a display position to a line.
func (s *Store) CartLineAt(index int) (cart.Line, error) {
	return s.cart.LineAt(index)
}

// IncreaseLineQuantity bumps a committed line's quantity.
func (s *Store) IncreaseLineQuantity(id string) (cart.Line, error) {
	return s.cart.Increase(id)
}

// DecreaseLineQuantity lowers a committed line's quantity, stopping at 1.
func (s *Store) DecreaseLineQuantity(id string) (cart.Line, error) {
	return s.cart.Decrease(id)
}

// Subtotal is Σ unit price × quantity over the cart.
func (s *Store) Subtotal() decimal.Decimal {
	return s.cart.Subtotal()
}

// Total equals Subtotal; there is no discount or tax stage.
func (s *Store) Total() decimal.Decimal {
	return s.cart.Total()
}
