// Package site provides the StorageSite registry.
// Sites are the physical locations stock is held at.
package site

import (
	"context"
	"time"

	"stockgrid/internal/core/apperror"
	"stockgrid/internal/core/id"
)

// Site represents a physical storage location.
type Site struct {
	ID id.ID `db:"id" json:"id"`

	// Code is the unique short identifier
	Code string `db:"code" json:"code"`

	// Name is the display name
	Name string `db:"name" json:"name"`

	// Active indicates the site is operational. Inactive sites still accept
	// history-recording movements; callers are expected to only offer active
	// sites for new ones.
	Active bool `db:"active" json:"active"`

	// Address is the physical address
	Address *string `db:"address" json:"address,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// New creates a new active Site.
func New(code, name string) *Site {
	now := time.Now().UTC()
	return &Site{
		ID:        id.New(),
		Code:      code,
		Name:      name,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate checks site invariants.
func (s *Site) Validate(ctx context.Context) error {
	if s.Code == "" {
		return apperror.NewValidation("code is required").
			WithDetail("field", "code")
	}
	if s.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	return nil
}
