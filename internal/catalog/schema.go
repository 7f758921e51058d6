package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Wire shapes for the two endpoints. Pointers mark fields whose absence is a
// schema violation rather than a zero value.

type wireID string

// UnmarshalJSON accepts both numeric and string identifiers.
func (id *wireID) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*id = ""
		return nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*id = wireID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return fmt.Errorf("id must be a string or number, got %s", trimmed)
	}
	*id = wireID(n.String())
	return nil
}

type wireImage struct {
	Image string `json:"image"`
}

type wireModifier struct {
	ID    wireID           `json:"id"`
	Name  *string          `json:"name"`
	Price *decimal.Decimal `json:"price"`
}

type wireModifierGroup struct {
	ID    wireID          `json:"id"`
	Name  *string         `json:"name"`
	Items *[]wireModifier `json:"items"`
}

type wireItem struct {
	ID          wireID              `json:"id"`
	Name        *string             `json:"name"`
	Description string              `json:"description"`
	Price       *decimal.Decimal    `json:"price"`
	Images      []wireImage         `json:"images"`
	Modifiers   []wireModifierGroup `json:"modifiers"`
}

type wireTopic struct {
	ID     wireID      `json:"id"`
	Name   *string     `json:"name"`
	Images []wireImage `json:"images"`
	Items  *[]wireItem `json:"items"`
}

type menuDocument struct {
	Sections *[]wireTopic `json:"sections"`
}

type webSettings struct {
	BannerImage *string `json:"bannerImage"`
}

type venueDocument struct {
	WebSettings *webSettings `json:"webSettings"`
}

// DecodeMenu validates a menu payload and converts it into a Menu.
func DecodeMenu(data []byte) (Menu, error) {
	var doc menuDocument
	if err := decodeJSON(data, &doc); err != nil {
		return Menu{}, err
	}
	if doc.Sections == nil {
		return Menu{}, schemaErrorf("sections", "field is required")
	}
	menu := Menu{Topics: make([]Topic, 0, len(*doc.Sections))}
	seen := make(map[string]struct{}, len(*doc.Sections))
	for idx, raw := range *doc.Sections {
		path := fmt.Sprintf("sections[%d]", idx)
		topic, err := raw.convert(path)
		if err != nil {
			return Menu{}, err
		}
		if _, dup := seen[topic.ID]; dup {
			return Menu{}, schemaErrorf(path+".id", "duplicate topic id %q", topic.ID)
		}
		seen[topic.ID] = struct{}{}
		menu.Topics = append(menu.Topics, topic)
	}
	return menu, nil
}

// DecodeVenue validates a venue payload. venueID is recorded on the result
// since the payload itself is not required to echo it.
func DecodeVenue(data []byte, venueID string) (Venue, error) {
	var doc venueDocument
	if err := decodeJSON(data, &doc); err != nil {
		return Venue{}, err
	}
	if doc.WebSettings == nil {
		return Venue{}, schemaErrorf("webSettings", "field is required")
	}
	if doc.WebSettings.BannerImage == nil {
		return Venue{}, schemaErrorf("webSettings.bannerImage", "field is required")
	}
	return Venue{
		ID:          venueID,
		BannerImage: strings.TrimSpace(*doc.WebSettings.BannerImage),
	}, nil
}

func decodeJSON(data []byte, target any) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return schemaErrorf("$", "empty body")
	}
	if err := json.Unmarshal(data, target); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return schemaErrorf(typeErr.Field, "expected %s, got %s", typeErr.Type, typeErr.Value)
		}
		return schemaErrorf("$", "invalid JSON: %v", err)
	}
	return nil
}

func (t wireTopic) convert(path string) (Topic, error) {
	if t.ID == "" {
		return Topic{}, schemaErrorf(path+".id", "field is required")
	}
	if t.Name == nil {
		return Topic{}, schemaErrorf(path+".name", "field is required")
	}
	if t.Items == nil {
		return Topic{}, schemaErrorf(path+".items", "field is required")
	}
	topic := Topic{
		ID:     string(t.ID),
		Name:   strings.TrimSpace(*t.Name),
		Images: convertImages(t.Images),
		Items:  make([]Item, 0, len(*t.Items)),
	}
	for idx, raw := range *t.Items {
		item, err := raw.convert(fmt.Sprintf("%s.items[%d]", path, idx))
		if err != nil {
			return Topic{}, err
		}
		topic.Items = append(topic.Items, item)
	}
	return topic, nil
}

func (i wireItem) convert(path string) (Item, error) {
	if i.ID == "" {
		return Item{}, schemaErrorf(path+".id", "field is required")
	}
	if i.Name == nil {
		return Item{}, schemaErrorf(path+".name", "field is required")
	}
	price, err := convertPrice(path+".price", i.Price)
	if err != nil {
		return Item{}, err
	}
	item := Item{
		ID:          string(i.ID),
		Name:        strings.TrimSpace(*i.Name),
		Description: strings.TrimSpace(i.Description),
		Price:       price,
		Images:      convertImages(i.Images),
	}
	if len(i.Modifiers) > 0 {
		item.Modifiers = make([]ModifierGroup, 0, len(i.Modifiers))
	}
	for idx, raw := range i.Modifiers {
		group, err := raw.convert(fmt.Sprintf("%s.modifiers[%d]", path, idx))
		if err != nil {
			return Item{}, err
		}
		item.Modifiers = append(item.Modifiers, group)
	}
	return item, nil
}

func (g wireModifierGroup) convert(path string) (ModifierGroup, error) {
	if g.ID == "" {
		return ModifierGroup{}, schemaErrorf(path+".id", "field is required")
	}
	if g.Name == nil {
		return ModifierGroup{}, schemaErrorf(path+".name", "field is required")
	}
	if g.Items == nil {
		return ModifierGroup{}, schemaErrorf(path+".items", "field is required")
	}
	group := ModifierGroup{
		ID:        string(g.ID),
		Name:      strings.TrimSpace(*g.Name),
		Modifiers: make([]Modifier, 0, len(*g.Items)),
	}
	for idx, raw := range *g.Items {
		modPath := fmt.Sprintf("%s.items[%d]", path, idx)
		if raw.ID == "" {
			return ModifierGroup{}, schemaErrorf(modPath+".id", "field is required")
		}
		if raw.Name == nil {
			return ModifierGroup{}, schemaErrorf(modPath+".name", "field is required")
		}
		price, err := convertPrice(modPath+".price", raw.Price)
		if err != nil {
			return ModifierGroup{}, err
		}
		group.Modifiers = append(group.Modifiers, Modifier{
			ID:    string(raw.ID),
			Name:  strings.TrimSpace(*raw.Name),
			Price: price,
		})
	}
	return group, nil
}

func convertPrice(path string, price *decimal.Decimal) (decimal.Decimal, error) {
	if price == nil {
		return decimal.Zero, schemaErrorf(path, "field is required")
	}
	if price.IsNegative() {
		return decimal.Zero, schemaErrorf(path, "must not be negative, got %s", price.String())
	}
	return *price, nil
}

func convertImages(raw []wireImage) []Image {
	if len(raw) == 0 {
		return nil
	}
	images := make([]Image, 0, len(raw))
	for _, img := range raw {
		url := strings.TrimSpace(img.Image)
		if url == "" {
			continue
		}
		images = append(images, Image{URL: url})
	}
	return images
}
