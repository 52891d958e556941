// Package domain holds the entities shared by the bot services.
package domain

import (
	"strings"
	"time"
)

// MediaKind enumerates the supported Telegram media types.
type MediaKind string

const (
	MediaPhoto MediaKind = "photo"
	MediaGIF   MediaKind = "gif"
	MediaVideo MediaKind = "video"
)

// Media references a picture, animation or video either by Telegram file id
// or by a URL that has not been uploaded yet.
type Media struct {
	Kind   MediaKind `json:"kind,omitempty"`
	FileID string    `json:"file_id,omitempty"`
	URL    string    `json:"url,omitempty"`
}

// IsZero reports whether no media is attached.
func (m Media) IsZero() bool {
	return m.FileID == "" && m.URL == ""
}

// Category is a top-level catalog section.
type Category struct {
	ID    int64
	Name  string
	Emoji string
}

// Label returns the text shown on the main menu button.
func (c Category) Label() string {
	if c.Emoji == "" {
		return c.Name
	}
	return c.Emoji + " " + c.Name
}

// Matches reports whether text names the category, with or without its emoji.
func (c Category) Matches(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}

	return text == c.Name || text == c.Label() || text == c.Emoji+c.Name
}

// Subcategory belongs to a category. Custom subcategories ask for free text
// instead of listing items.
type Subcategory struct {
	ID         int64
	CategoryID int64
	Name       string
	IsCustom   bool
}

// Currency is a labelled unit used for prices and debts.
type Currency struct {
	ID    int64
	Name  string
	Emoji string
}

// Label returns "emoji name".
func (c Currency) Label() string {
	if c.Emoji == "" {
		return c.Name
	}
	return c.Emoji + " " + c.Name
}

// Item is a catalog entry. A zero price means the item is a gift.
type Item struct {
	ID            int64
	CategoryID    int64
	SubcategoryID *int64
	Title         string
	Description   string
	Media         Media
	PriceAmount   float64
	CurrencyID    *int64
	IsActive      bool
	CreatedAt     time.Time
}

// SpecialMenu is a broadcast offer. Only the latest published one is active.
type SpecialMenu struct {
	ID          int64
	Media       Media
	Description string
	PriceAmount float64
	CurrencyID  *int64
	IsActive    bool
	CreatedAt   time.Time
}
