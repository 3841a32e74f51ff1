package models

import "time"

type Category struct {
	ID          int64     `json:"id" db:"id" readOnly:"true"`
	Name        string    `validate:"required,max=50" json:"name" db:"name"`
	DisplayName string    `validate:"required,max=100" json:"displayName" db:"display_name"`
	Color       string    `validate:"omitempty,hexcolor" json:"color" db:"color"`
	Icon        string    `validate:"max=50" json:"icon" db:"icon"`
	SortOrder   int       `validate:"min=0" json:"sortOrder" db:"sort_order"`
	IsActive    bool      `json:"isActive" db:"is_active"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at" readOnly:"true"`
}

func (Category) TableName() string {
	return "categories"
}

func (c Category) GetID() int64 {
	return c.ID
}

func (c Category) EmptySlice() interface{} {
	return &[]Category{}
}

type VenueCategory struct {
	ID          int64     `json:"id" db:"id" readOnly:"true"`
	Name        string    `validate:"required,max=50" json:"name" db:"name"`
	DisplayName string    `validate:"required,max=100" json:"displayName" db:"display_name"`
	Color       string    `validate:"omitempty,hexcolor" json:"color" db:"color"`
	Icon        string    `validate:"max=50" json:"icon" db:"icon"`
	Description string    `validate:"max=500" json:"description" db:"description"`
	SortOrder   int       `validate:"min=0" json:"sortOrder" db:"sort_order"`
	IsActive    bool      `json:"isActive" db:"is_active"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at" readOnly:"true"`
}

func (VenueCategory) TableName() string {
	return "venue_categories"
}

func (c VenueCategory) GetID() int64 {
	return c.ID
}

func (c VenueCategory) EmptySlice() interface{} {
	return &[]VenueCategory{}
}

// SortOrder assigns a display position to a category.
type SortOrder struct {
	ID        int64 `json:"id" validate:"required,min=1"`
	SortOrder int   `json:"sortOrder" validate:"min=0"`
}
