package models

import (
	"errors"
	"time"
)

type Event struct {
	ID               int64     `json:"id" db:"id" readOnly:"true"`
	Title            string    `validate:"required,max=200" json:"title" db:"title"`
	Description      string    `validate:"required,max=5000" json:"description" db:"description"`
	StartDate        Date      `json:"startDate" db:"start_date"`
	EndDate          *Date     `json:"endDate" db:"end_date"`
	StartTime        string    `validate:"max=8" json:"startTime" db:"start_time"`
	EndTime          string    `validate:"max=8" json:"endTime" db:"end_time"`
	Location         string    `validate:"required,max=200" json:"location" db:"location"`
	Address          string    `validate:"max=300" json:"address" db:"address"`
	Latitude         *float64  `validate:"omitempty,min=-90,max=90" json:"latitude" db:"latitude"`
	Longitude        *float64  `validate:"omitempty,min=-180,max=180" json:"longitude" db:"longitude"`
	OrganizerName    string    `validate:"max=200" json:"organizerName" db:"organizer_name"`
	OrganizerContact string    `validate:"max=200" json:"organizerContact" db:"organizer_contact"`
	CategoryID       int64     `json:"categoryId" db:"category_id"`
	Capacity         *int      `validate:"omitempty,min=0" json:"capacity" db:"capacity"`
	ImageURL         string    `json:"imageUrl" db:"image_url"`
	ImageURL2        string    `json:"imageUrl2" db:"image_url2"`
	ImageURL3        string    `json:"imageUrl3" db:"image_url3"`
	WebsiteURL       string    `json:"websiteUrl" db:"website_url"`
	TicketURL        string    `json:"ticketUrl" db:"ticket_url"`
	Tags             string    `json:"tags" db:"tags"`
	ParticipantType  string    `validate:"max=50" json:"participantType" db:"participant_type"`
	SubmitterName    string    `json:"submitterName" db:"submitter_name"`
	SubmitterEmail   string    `validate:"omitempty,email" json:"submitterEmail" db:"submitter_email"`
	SubmitterPhone   string    `json:"submitterPhone" db:"submitter_phone"`
	IsActive         bool      `json:"isActive" db:"is_active"`
	IsFeatured       bool      `json:"isFeatured" db:"is_featured"`
	CreatedAt        time.Time `json:"createdAt" db:"created_at" readOnly:"true"`
	UpdatedAt        time.Time `json:"updatedAt" db:"updated_at" readOnly:"true"`

	// Request-side category list; the join table is the source of truth.
	CategoryIDs []int64 `json:"categoryIds,omitempty" db:"-"`
	// Joined category rows, filled on reads.
	Categories []EventCategory `json:"categories,omitempty" db:"-"`
}

func (Event) TableName() string {
	return "events"
}

func (e Event) GetID() int64 {
	return e.ID
}

func (e Event) EmptySlice() interface{} {
	return &[]Event{}
}

func (e Event) Check() error {
	return checkSchedule(e.StartDate, e.EndDate)
}

// CategorySet returns the event's categories as a bounded set, preferring the
// explicit list over the single primary id.
func (e Event) CategorySet() CategorySet {
	return NewCategorySet(e.CategoryID, e.CategoryIDs)
}

// EventCategory is one row of the event/category join, flattened with the
// category's display fields.
type EventCategory struct {
	EventID     int64  `json:"-"`
	CategoryID  int64  `json:"categoryId"`
	Name        string `json:"categoryName"`
	DisplayName string `json:"categoryDisplayName"`
	Color       string `json:"categoryColor"`
	Icon        string `json:"categoryIcon"`
}

func checkSchedule(start Date, end *Date) error {
	if start.IsZero() {
		return errors.New("startDate is required")
	}
	if end != nil && !end.IsZero() && end.Before(start) {
		return errors.New("endDate must not be before startDate")
	}
	return nil
}
