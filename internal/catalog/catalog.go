// internal/catalog/catalog.go
//
// Typed, read-only view of a venue's menu. Values in this package are
// produced by the fetch boundary (see client.go and schema.go) and are never
// mutated afterwards; a reload replaces the whole Menu.

package catalog

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Image is a single picture reference attached to a topic or item.
type Image struct {
	URL string
}

// Modifier is one option inside a ModifierGroup. A chosen modifier's price
// replaces the item price.
type Modifier struct {
	ID    string
	Name  string
	Price decimal.Decimal
}

// ModifierGroup is a single-choice option set scoped to one item.
type ModifierGroup struct {
	ID        string
	Name      string
	Modifiers []Modifier
}

// Item is an orderable (or merely listed) entry within a topic.
type Item struct {
	ID          string
	Name        string
	Description string
	Price       decimal.Decimal
	Images      []Image
	Modifiers   []ModifierGroup
}

// Topic is a menu section grouping items.
type Topic struct {
	ID     string
	Name   string
	Images []Image
	Items  []Item
}

// Menu is the ordered list of topics returned by the menu endpoint.
type Menu struct {
	Topics []Topic
}

// Venue carries the venue settings the storefront renders.
type Venue struct {
	ID          string
	BannerImage string
}

// Orderable reports whether the item's own price allows adding it directly.
func (i Item) Orderable() bool {
	return i.Price.IsPositive()
}

// HasModifiers reports whether the item exposes at least one option.
func (i Item) HasModifiers() bool {
	for _, group := range i.Modifiers {
		if len(group.Modifiers) > 0 {
			return true
		}
	}
	return false
}

// PrimaryImage returns the first image of the item, if any.
func (i Item) PrimaryImage() (Image, bool) {
	return firstImage(i.Images)
}

// Modifier finds an option by id across all of the item's groups.
func (i Item) Modifier(id string) (Modifier, bool) {
	for _, group := range i.Modifiers {
		for _, mod := range group.Modifiers {
			if mod.ID == id {
				return mod, true
			}
		}
	}
	return Modifier{}, false
}

// Clone returns a deep copy so callers can keep a snapshot that later
// catalog reloads cannot reach.
func (i Item) Clone() Item {
	out := i
	out.Images = append([]Image(nil), i.Images...)
	if i.Modifiers != nil {
		out.Modifiers = make([]ModifierGroup, len(i.Modifiers))
		for idx, group := range i.Modifiers {
			group.Modifiers = append([]Modifier(nil), group.Modifiers...)
			out.Modifiers[idx] = group
		}
	}
	return out
}

// PrimaryImage returns the first image of the topic, if any.
func (t Topic) PrimaryImage() (Image, bool) {
	return firstImage(t.Images)
}

// Topic looks up a topic by id.
func (m Menu) Topic(id string) (Topic, bool) {
	for _, topic := range m.Topics {
		if topic.ID == id {
			return topic, true
		}
	}
	return Topic{}, false
}

// ItemCount returns the number of items across all topics.
func (m Menu) ItemCount() int {
	total := 0
	for _, topic := range m.Topics {
		total += len(topic.Items)
	}
	return total
}

// Empty reports whether the menu has no topics.
func (m Menu) Empty() bool {
	return len(m.Topics) == 0
}

// HasBanner reports whether a banner reference is available.
func (v Venue) HasBanner() bool {
	return strings.TrimSpace(v.BannerImage) != ""
}

func firstImage(images []Image) (Image, bool) {
	for _, img := range images {
		if strings.TrimSpace(img.URL) != "" {
			return img, true
		}
	}
	return Image{}, false
}
