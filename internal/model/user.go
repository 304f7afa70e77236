package model

import "time"

// Role grants access to admin operations
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User represents a registered shopper
type User struct {
	ID           string    `json:"id" gorm:"type:varchar(36);primaryKey" bson:"_id"`
	Email        string    `json:"email" gorm:"type:varchar(255);uniqueIndex;not null" bson:"email"`
	Name         string    `json:"name" gorm:"type:varchar(255)" bson:"name"`
	Role         Role      `json:"role" gorm:"type:varchar(20);not null;default:'user'" bson:"role"`
	PasswordHash string    `json:"-" gorm:"type:varchar(255);not null" bson:"passwordHash"`
	Addresses    []Address `json:"addresses" gorm:"type:text;serializer:json" bson:"addresses"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt" bson:"updatedAt"`
}

// IsAdmin reports whether the user holds the admin role
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
