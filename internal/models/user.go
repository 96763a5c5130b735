package models

import "time"

// User is a farmer profile.
type User struct {
	ID           uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	Email        string `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"type:varchar(128);not null" json:"-"`

	Name     string `gorm:"type:varchar(128)" json:"name"`
	Location string `gorm:"type:varchar(128)" json:"location"`
	LandSize string `gorm:"type:varchar(64)" json:"land_size,omitempty"`
	Crops    string `gorm:"type:varchar(255)" json:"crops,omitempty"`
	Language string `gorm:"type:varchar(8);default:en" json:"language"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string { return "users" }
