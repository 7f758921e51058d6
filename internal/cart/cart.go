// internal/cart/cart.go
//
// The cart is an ordered list of committed, price-frozen lines. Lines are
// addressed by a stable id so that display position never doubles as
// identity.

package cart

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kingrea/storefront/internal/catalog"
)

var (
	// ErrLineNotFound is returned when a line id does not belong to the cart.
	ErrLineNotFound = errors.New("cart: line not found")
	// ErrIndexOutOfRange is returned for positional access outside the cart.
	ErrIndexOutOfRange = errors.New("cart: index out of range")
	// ErrInvalidLine is returned when a line cannot be appended as-is.
	ErrInvalidLine = errors.New("cart: invalid line")
)

// Line is a committed cart entry. Item and Modifier are snapshots taken at
// commit time; later catalog reloads never reach them.
type Line struct {
	ID        string
	Item      catalog.Item
	Modifier  *catalog.Modifier
	Quantity  int
	UnitPrice decimal.Decimal
}

// Total returns UnitPrice × Quantity.
func (l Line) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Label is the display name, including the modifier when one was chosen.
func (l Line) Label() string {
	if l.Modifier == nil {
		return l.Item.Name
	}
	return fmt.Sprintf("%s (%s)", l.Item.Name, l.Modifier.Name)
}

func (l Line) clone() Line {
	out := l
	out.Item = l.Item.Clone()
	if l.Modifier != nil {
		mod := *l.Modifier
		out.Modifier = &mod
	}
	return out
}

// Cart holds lines in insertion order. The zero value is an empty cart.
type Cart struct {
	lines []Line
	newID func() string
}

// Option customizes a cart.
type Option func(*Cart)

// WithIDGenerator overrides line id generation (tests use deterministic ids).
func WithIDGenerator(gen func() string) Option {
	return func(c *Cart) {
		if gen != nil {
			c.newID = gen
		}
	}
}

// New creates an empty cart.
func New(opts ...Option) *Cart {
	c := &Cart{}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Add appends a copy of line and returns the stored line. Identical lines are
// never merged.
func (c *Cart) Add(line Line) (Line, error) {
	if line.Quantity < 1 {
		return Line{}, fmt.Errorf("%w: quantity must be at least 1, got %d", ErrInvalidLine, line.Quantity)
	}
	if line.UnitPrice.IsNegative() {
		return Line{}, fmt.Errorf("%w: unit price must not be negative", ErrInvalidLine)
	}
	stored := line.clone()
	stored.ID = c.generateID()
	c.lines = append(c.lines, stored)
	return stored.clone(), nil
}

// Increase bumps the quantity of the line with the given id.
func (c *Cart) Increase(id string) (Line, error) {
	idx := c.indexOf(id)
	if idx < 0 {
		return Line{}, fmt.Errorf("%w: %s", ErrLineNotFound, id)
	}
	c.lines[idx].Quantity++
	return c.lines[idx].clone(), nil
}

// Decrease lowers the quantity of the line with the given id, stopping at 1.
// Lines are never removed.
func (c *Cart) Decrease(id string) (Line, error) {
	idx := c.indexOf(id)
	if idx < 0 {
		return Line{}, fmt.Errorf("%w: %s", ErrLineNotFound, id)
	}
	if c.lines[idx].Quantity > 1 {
		c.lines[idx].Quantity--
	}
	return c.lines[idx].clone(), nil
}

// LineAt returns the line displayed at position index.
func (c *Cart) LineAt(index int) (Line, error) {
	if c == nil || index < 0 || index >= len(c.lines) {
		return Line{}, fmt.Errorf("%w: %d (len %d)", ErrIndexOutOfRange, index, c.Len())
	}
	return c.lines[index].clone(), nil
}

// IncreaseAt is Increase addressed by display position.
func (c *Cart) IncreaseAt(index int) (Line, error) {
	line, err := c.LineAt(index)
	if err != nil {
		return Line{}, err
	}
	return c.Increase(line.ID)
}

// DecreaseAt is Decrease addressed by display position.
func (c *Cart) DecreaseAt(index int) (Line, error) {
	line, err := c.LineAt(index)
	if err != nil {
		return Line{}, err
	}
	return c.Decrease(line.ID)
}

// Line returns the line with the given id.
func (c *Cart) Line(id string) (Line, bool) {
	idx := c.indexOf(id)
	if idx < 0 {
		return Line{}, false
	}
	return c.lines[idx].clone(), true
}

// Lines returns copies of all lines in display order.
func (c *Cart) Lines() []Line {
	if c == nil || len(c.lines) == 0 {
		return nil
	}
	out := make([]Line, len(c.lines))
	for i, line := range c.lines {
		out[i] = line.clone()
	}
	return out
}

// Len returns the number of lines.
func (c *Cart) Len() int {
	if c == nil {
		return 0
	}
	return len(c.lines)
}

// Empty reports whether the cart has no lines.
func (c *Cart) Empty() bool {
	return c.Len() == 0
}

// Quantity returns the number of units across all lines.
func (c *Cart) Quantity() int {
	if c == nil {
		return 0
	}
	total := 0
	for _, line := range c.lines {
		total += line.Quantity
	}
	return total
}

// Subtotal is the sum of UnitPrice × Quantity over all lines.
func (c *Cart) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	if c == nil {
		return sum
	}
	for _, line := range c.lines {
		sum = sum.Add(line.Total())
	}
	return sum
}

// Total is what the customer pays. There is no discount or tax stage, so it
// equals Subtotal.
func (c *Cart) Total() decimal.Decimal {
	return c.Subtotal()
}

func (c *Cart) indexOf(id string) int {
	if c == nil || id == "" {
		return -1
	}
	for i := range c.lines {
		if c.lines[i].ID == id {
			return i
		}
	}
	return -1
}

func (c *Cart) generateID() string {
	if c.newID != nil {
		return c.newID()
	}
	return uuid.NewString()
}
