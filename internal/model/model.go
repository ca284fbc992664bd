// Package model defines domain entities used by services, repositories and clients.
package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/and161185/stockkeeper/internal/errs"
	"github.com/gofrs/uuid/v5"
)

// DefaultCategory is assigned to items created without a category.
const DefaultCategory = "Other"

// Settings defaults and limits.
const (
	DefaultLowStock int64 = 5
	MinLowStock     int64 = 1
)

// Tokens collects issued access tokens.
type Tokens struct {
	AccessToken string
	ExpiresAt   time.Time // access token expiry (for diagnostics)
}

// User represents an account stored on the server.
type User struct {
	ID        uuid.UUID // PK
	Email     string    // unique, lower-cased
	PwdHash   []byte    // Argon2id(password, Salt)
	Salt      []byte    // per-user salt
	CreatedAt time.Time
}

// Item is a single inventory record within a namespace.
type Item struct {
	ID          uuid.UUID
	Name        string
	Quantity    int64
	Category    string
	ImageURL    *string // nil until an image is attached
	StoragePath *string // blob location, used only for cleanup
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewItem is a create intent.
type NewItem struct {
	Name     string
	Quantity int64
	Category string
}

// Normalize trims text fields, clamps the quantity and defaults the category.
func (n NewItem) Normalize() NewItem {
	n.Name = strings.TrimSpace(n.Name)
	n.Category = strings.TrimSpace(n.Category)
	if n.Category == "" {
		n.Category = DefaultCategory
	}
	n.Quantity = ClampQuantity(n.Quantity)
	return n
}

// Validate rejects an item whose name is empty after trimming.
func (n NewItem) Validate() error {
	if strings.TrimSpace(n.Name) == "" {
		return fmt.Errorf("%w: name is required", errs.ErrValidation)
	}
	return nil
}

// ItemPatch carries a partial update; nil fields are left untouched.
type ItemPatch struct {
	Name        *string
	Quantity    *int64
	Category    *string
	ImageURL    *string
	StoragePath *string
}

// Empty reports whether the patch changes nothing.
func (p ItemPatch) Empty() bool {
	return p.Name == nil && p.Quantity == nil && p.Category == nil &&
		p.ImageURL == nil && p.StoragePath == nil
}

// Settings is the single shared configuration record of a namespace.
type Settings struct {
	DarkMode  bool
	LowStock  int64
	UpdatedAt time.Time
}

// DefaultSettings is what every consumer sees before the record exists.
func DefaultSettings() Settings {
	return Settings{DarkMode: false, LowStock: DefaultLowStock}
}

// SettingsPatch is a merge update; nil fields are left untouched.
type SettingsPatch struct {
	DarkMode *bool
	LowStock *int64
}

// ClampQuantity floors q at zero.
func ClampQuantity(q int64) int64 {
	if q < 0 {
		return 0
	}
	return q
}

// NextQuantity applies delta to current and clamps at zero. The clamp is per
// step: decrementing past zero and incrementing back does not restore the deficit.
func NextQuantity(current, delta int64) int64 {
	return ClampQuantity(current + delta)
}

// ClampLowStock floors a threshold at MinLowStock.
func ClampLowStock(v int64) int64 {
	if v < MinLowStock {
		return MinLowStock
	}
	return v
}

// ParseQuantity parses user-entered quantity text.
func ParseQuantity(text string) (int64, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, nil
	}
	q, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: quantity %q is not a whole number", errs.ErrValidation, text)
	}
	if q < 0 {
		return 0, fmt.Errorf("%w: quantity must not be negative", errs.ErrValidation)
	}
	return q, nil
}
