package models

import "time"

type Venue struct {
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
	Rating         float64   `validate:"min=0,max=5" json:"rating" db:"rating"`
	SubmitterName  string    `json:"submitterName" db:"submitter_name"`
	SubmitterEmail string    `validate:"omitempty,email" json:"submitterEmail" db:"submitter_email"`
	SubmitterPhone string    `json:"submitterPhone" db:"submitter_phone"`
	IsActive       bool      `json:"isActive" db:"is_active"`
	IsFeatured     bool      `json:"isFeatured" db:"is_featured"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at" readOnly:"true"`
	UpdatedAt      time.Time `json:"updatedAt" db:"updated_at" readOnly:"true"`
}

func (Venue) TableName() string {
	return "venues"
}

func (v Venue) GetID() int64 {
	return v.ID
}

func (v Venue) EmptySlice() interface{} {
	return &[]Venue{}
}
