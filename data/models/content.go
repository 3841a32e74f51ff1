package models

import (
	"errors"
	"time"
)

type Feedback struct {
	ID        int64     `json:"id" db:"id" readOnly:"true"`
	Type      string    `validate:"required,oneof=suggestion complaint bug praise other" json:"type" db:"type"`
	Email     string    `validate:"omitempty,email" json:"email" db:"email"`
	Message   string    `validate:"required,min=3,max=5000" json:"message" db:"message"`
	IsRead    bool      `json:"isRead" db:"is_read"`
	CreatedAt time.Time `json:"createdAt" db:"created_at" readOnly:"true"`
}

func (Feedback) TableName() string {
	return "feedback"
}

func (f Feedback) GetID() int64 {
	return f.ID
}

func (f Feedback) EmptySlice() interface{} {
	return &[]Feedback{}
}

type Announcement struct {
	ID         int64      `json:"id" db:"id" readOnly:"true"`
	Title      string     `validate:"required,max=200" json:"title" db:"title"`
	Message    string     `validate:"required,max=5000" json:"message" db:"message"`
	ImageURL   string     `json:"imageUrl" db:"image_url"`
	ButtonText string     `validate:"max=100" json:"buttonText" db:"button_text"`
	ButtonURL  string     `validate:"max=500" json:"buttonUrl" db:"button_url"`
	IsActive   bool       `json:"isActive" db:"is_active"`
	ShowOnce   bool       `json:"showOnce" db:"show_once"`
	StartDate  *time.Time `json:"startDate" db:"start_date"`
	EndDate    *time.Time `json:"endDate" db:"end_date"`
	CreatedAt  time.Time  `json:"createdAt" db:"created_at" readOnly:"true"`
	UpdatedAt  time.Time  `json:"updatedAt" db:"updated_at" readOnly:"true"`
}

func (Announcement) TableName() string {
	return "announcements"
}

func (a Announcement) GetID() int64 {
	return a.ID
}

func (a Announcement) EmptySlice() interface{} {
	return &[]Announcement{}
}

func (a Announcement) Check() error {
	if a.StartDate != nil && a.EndDate != nil && a.EndDate.Before(*a.StartDate) {
		return errors.New("endDate must not be before startDate")
	}
	return nil
}

// Visible reports whether the announcement should be shown at t.
func (a Announcement) Visible(t time.Time) bool {
	if !a.IsActive {
		return false
	}
	if a.StartDate != nil && t.Before(*a.StartDate) {
		return false
	}
	if a.EndDate != nil && t.After(*a.EndDate) {
		return false
	}
	return true
}
