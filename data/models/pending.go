package models

import "time"

// PendingEvent is an anonymous event suggestion awaiting review. It mirrors
// the events table; approval turns it into an Event.
type PendingEvent struct {
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
	SubmitterName    string    `validate:"max=200" json:"submitterName" db:"submitter_name"`
	SubmitterEmail   string    `validate:"omitempty,email" json:"submitterEmail" db:"submitter_email"`
	SubmitterPhone   string    `validate:"max=50" json:"submitterPhone" db:"submitter_phone"`
	IsActive         bool      `json:"isActive" db:"is_active"`
	IsFeatured       bool      `json:"isFeatured" db:"is_featured"`
	CreatedAt        time.Time `json:"createdAt" db:"created_at" readOnly:"true"`
	UpdatedAt        time.Time `json:"updatedAt" db:"updated_at" readOnly:"true"`

	CategoryIDs []int64 `json:"categoryIds,omitempty" db:"-"`
}

func (PendingEvent) TableName() string {
	return "pending_events"
}

func (p PendingEvent) GetID() int64 {
	return p.ID
}

func (p PendingEvent) EmptySlice() interface{} {
	return &[]PendingEvent{}
}

func (p PendingEvent) Check() error {
	return checkSchedule(p.StartDate, p.EndDate)
}

func (p PendingEvent) CategorySet() CategorySet {
	return NewCategorySet(p.CategoryID, p.CategoryIDs)
}

// ToEvent converts the suggestion into a live, active event filed under set.
func (p PendingEvent) ToEvent(set CategorySet) Event {
	return Event{
		Title:            p.Title,
		Description:      p.Description,
		StartDate:        p.StartDate,
		EndDate:          p.EndDate,
		StartTime:        p.StartTime,
		EndTime:          p.EndTime,
		Location:         p.Location,
		Address:          p.Address,
		Latitude:         p.Latitude,
		Longitude:        p.Longitude,
		OrganizerName:    p.OrganizerName,
		OrganizerContact: p.OrganizerContact,
		CategoryID:       set.Primary(),
		Capacity:         p.Capacity,
		ImageURL:         p.ImageURL,
		ImageURL2:        p.ImageURL2,
		ImageURL3:        p.ImageURL3,
		WebsiteURL:       p.WebsiteURL,
		TicketURL:        p.TicketURL,
		Tags:             p.Tags,
		ParticipantType:  p.ParticipantType,
		SubmitterName:    p.SubmitterName,
		SubmitterEmail:   p.SubmitterEmail,
		SubmitterPhone:   p.SubmitterPhone,
		IsActive:         true,
		IsFeatured:       p.IsFeatured,
		CategoryIDs:      set,
	}
}

// PendingVenue is an anonymous venue suggestion awaiting review.
type PendingVenue struct {
	ID             int64     `json:"id" db:"id" readOnly:"true"`
	Name           string    `validate:"required,max=200" json:"name" db:"name"`
	Description    string    `validate:"max=5000" json:"description" db:"description"`
	CategoryID     int64     `validate:"required,min=1" json:"categoryId" db:"category_id"`
	Address        string    `validate:"required,max=300" json:"address" db:"address"`
	Phone          string    `validate:"max=50" json:"phone" db:"phone"`
	Phone2         string    `validate:"max=50" json:"phone2" db:"phone2"`
	Email          string    `validate:"omitempty,email" json:"email" db:"email"`
	Website        string    `validate:"max=300" json:"website" db:"website"`
	Capacity       *int      `validate:"omitempty,min=0" json:"capacity" db:"capacity"`
	Amenities      string    `json:"amenities" db:"amenities"`
	ImageURL       string    `json:"imageUrl" db:"image_url"`
	ImageURL2      string    `json:"imageUrl2" db:"image_url2"`
	ImageURL3      string    `json:"imageUrl3" db:"image_url3"`
	Latitude       *float64  `validate:"omitempty,min=-90,max=90" json:"latitude" db:"latitude"`
	Longitude      *float64  `validate:"omitempty,min=-180,max=180" json:"longitude" db:"longitude"`
	OpeningHours   string    `json:"openingHours" db:"opening_hours"`
	SubmitterName  string    `validate:"max=200" json:"submitterName" db:"submitter_name"`
	SubmitterEmail string    `validate:"omitempty,email" json:"submitterEmail" db:"submitter_email"`
	SubmitterPhone string    `validate:"max=50" json:"submitterPhone" db:"submitter_phone"`
	IsActive       bool      `json:"isActive" db:"is_active"`
	IsFeatured     bool      `json:"isFeatured" db:"is_featured"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at" readOnly:"true"`
	UpdatedAt      time.Time `json:"updatedAt" db:"updated_at" readOnly:"true"`
}

func (PendingVenue) TableName() string {
	return "pending_venues"
}

func (p PendingVenue) GetID() int64 {
	return p.ID
}

func (p PendingVenue) EmptySlice() interface{} {
	return &[]PendingVenue{}
}

// ToVenue converts the suggestion into a live, active venue.
func (p PendingVenue) ToVenue() Venue {
	return Venue{
		Name:           p.Name,
		Description:    p.Description,
		CategoryID:     p.CategoryID,
		Address:        p.Address,
		Phone:          p.Phone,
		Phone2:         p.Phone2,
		Email:          p.Email,
		Website:        p.Website,
		Capacity:       p.Capacity,
		Amenities:      p.Amenities,
		ImageURL:       p.ImageURL,
		ImageURL2:      p.ImageURL2,
		ImageURL3:      p.ImageURL3,
		Latitude:       p.Latitude,
		Longitude:      p.Longitude,
		OpeningHours:   p.OpeningHours,
		SubmitterName:  p.SubmitterName,
		SubmitterEmail: p.SubmitterEmail,
		SubmitterPhone: p.SubmitterPhone,
		IsActive:       true,
		IsFeatured:     p.IsFeatured,
	}
}
