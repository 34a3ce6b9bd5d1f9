package models

import "time"

// Default values applied to new users when the corresponding field is unset.
const (
	DefaultUserPhoto = "https://e7.pngegg.com/pngimages/84/165/png-clipart-united-states-avatar-organization-information-user-avatar-service-computer-wallpaper-thumbnail.png"
	DefaultUserPhone = "+254"
	DefaultUserBio   = "Bio"

	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents an account holder. Products reference users by ID.
type User struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name      string    `json:"name" validate:"required"`
	Email     string    `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	Password  string    `json:"-" gorm:"type:varchar(255)" validate:"required,min=6"` // bcrypt hash; never serialized
	Photo     string    `json:"photo"`
	Phone     string    `json:"phone"`
	Bio       string    `json:"bio" validate:"max=250"`
	Role      string    `json:"role" validate:"omitempty,oneof=user admin"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ApplyDefaults fills unset profile fields with their defaults.
func (u *User) ApplyDefaults() {
	if u.Photo == "" {
		u.Photo = DefaultUserPhoto
	}
	if u.Phone == "" {
		u.Phone = DefaultUserPhone
	}
	if u.Bio == "" {
		u.Bio = DefaultUserBio
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
}
