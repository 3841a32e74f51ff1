package models

import "time"

type User struct {
	ID              int64      `json:"id" db:"id" readOnly:"true"`
	Name            string     `validate:"required,max=200" json:"name" db:"name"`
	Email           string     `validate:"required,email" json:"email" db:"email"`
	Phone           string     `validate:"max=50" json:"phone" db:"phone"`
	DateOfBirth     *Date      `json:"dateOfBirth" db:"date_of_birth"`
	Gender          string     `validate:"max=20" json:"gender" db:"gender"`
	City            string     `validate:"max=100" json:"city" db:"city"`
	District        string     `validate:"max=100" json:"district" db:"district"`
	Interests       string     `json:"interests" db:"interests"`
	IsActive        bool       `json:"isActive" db:"is_active"`
	EmailVerified   bool       `json:"emailVerified" db:"email_verified"`
	ProfileImageURL string     `json:"profileImageUrl" db:"profile_image_url"`
	LastLoginAt     *time.Time `json:"lastLoginAt" db:"last_login_at"`
	CreatedAt       time.Time  `json:"createdAt" db:"created_at" readOnly:"true"`
	UpdatedAt       time.Time  `json:"updatedAt" db:"updated_at" readOnly:"true"`
}

func (User) TableName() string {
	return "users"
}

func (u User) GetID() int64 {
	return u.ID
}

func (u User) EmptySlice() interface{} {
	return &[]User{}
}
