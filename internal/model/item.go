package model

import (
	"fmt"
	"time"
)

// Item is a lost or found report posted by a user.
type Item struct {
	ID          string    `json:"_id" bson:"_id"`
	Title       string    `json:"title" bson:"title"`
	Description string    `json:"description" bson:"description"`
	Type        string    `json:"type" bson:"type"`
	Location    string    `json:"location" bson:"location"`
	Contact     string    `json:"contact" bson:"contact"`
	ImageURL    string    `json:"imageUrl,omitempty" bson:"imageUrl,omitempty"`
	ImageKey    string    `json:"-" bson:"imageKey,omitempty"`
	UserID      string    `json:"userId" bson:"userId"`
	Reporter    string    `json:"reporter" bson:"reporter"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Item types.
const (
	ItemTypeLost  = "lost"
	ItemTypeFound = "found"
)

// ValidateItemType reports whether t is a known item type.
func ValidateItemType(t string) error {
	if t != ItemTypeLost && t != ItemTypeFound {
		return fmt.Errorf("type must be %q or %q", ItemTypeLost, ItemTypeFound)
	}
	return nil
}

// Listing limits.
const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

// DefaultMaxUploadBytes caps an item submission, image included, when no
// limit is configured.
const DefaultMaxUploadBytes = 5 << 20

// ItemFilter narrows an item listing. Zero values match everything.
type ItemFilter struct {
	Type   string
	Query  string
	UserID string
	Limit  int
	Offset int
}

// Normalize clamps the paging fields into their allowed ranges.
func (f ItemFilter) Normalize() ItemFilter {
	if f.Limit <= 0 {
		f.Limit = DefaultListLimit
	}
	if f.Limit > MaxListLimit {
		f.Limit = MaxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}
