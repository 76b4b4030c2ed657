package model

import (
	"fmt"
	"strings"
)

// Category is the style category of a record.
type Category string

const (
	// CategoryLadies is the ladies style category.
	CategoryLadies Category = "ladies"
	// CategoryMens is the mens style category.
	CategoryMens Category = "mens"
)

// ParseCategory normalizes a raw category cell. Unknown values default to
// ladies, matching the portal's own form default.
func ParseCategory(raw string) Category {
	if strings.EqualFold(strings.TrimSpace(raw), string(CategoryMens)) {
		return CategoryMens
	}
	return CategoryLadies
}

// Record is one row of the input file: a single style to post.
type Record struct {
	ImageFile  string
	Stylist    string
	StyleName  string
	Category   Category
	Length     string
	Comment    string
	MenuDetail string
	Coupon     string
	Hashtags   string
}

// Validate validates the record required fields.
func (r *Record) Validate() error {
	if r.ImageFile == "" {
		return fmt.Errorf("image file is required: %w", ErrNotValid)
	}
	if r.Stylist == "" {
		return fmt.Errorf("stylist is required: %w", ErrNotValid)
	}
	if r.StyleName == "" {
		return fmt.Errorf("style name is required: %w", ErrNotValid)
	}
	if r.Length == "" {
		return fmt.Errorf("length is required: %w", ErrNotValid)
	}
	return nil
}

// Label returns the display name used for diagnostics.
func (r Record) Label() string {
	if r.StyleName != "" {
		return r.StyleName
	}
	return r.ImageFile
}

// HashtagList splits the comma separated hashtags, dropping empty entries.
func (r Record) HashtagList() []string {
	if r.Hashtags == "" {
		return nil
	}

	var tags []string
	for _, tag := range strings.Split(r.Hashtags, ",") {
		tag = strings.TrimSpace(tag)
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// Credentials are the portal sign-in secrets for a task. They are supplied
// at start time by the credential provider and must never be persisted or
// logged by this application.
type Credentials struct {
	UserID   string
	Password string

	// SalonID and SalonName select the salon on multi-salon accounts.
	// Either may be empty; matching is by id first, then name.
	SalonID   string
	SalonName string
}

// Validate validates the credentials.
func (c *Credentials) Validate() error {
	if c.UserID == "" {
		return fmt.Errorf("user id is required: %w", ErrNotValid)
	}
	if c.Password == "" {
		return fmt.Errorf("password is required: %w", ErrNotValid)
	}
	return nil
}

// HasSalonSelector returns true when the credentials carry a salon selector.
func (c Credentials) HasSalonSelector() bool {
	return c.SalonID != "" || c.SalonName != ""
}

// MatchesSalon returns true when a salon row's id or name matches the selector.
func (c Credentials) MatchesSalon(id, name string) bool {
	if c.SalonID != "" && strings.TrimSpace(id) == c.SalonID {
		return true
	}
	return c.SalonName != "" && strings.TrimSpace(name) == c.SalonName
}
