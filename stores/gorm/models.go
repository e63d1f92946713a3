//go:build !wasm
// +build !wasm

package gorm

import (
	"time"
)

// UserModel is the GORM model for local users
type UserModel struct {
	ID         string    `gorm:"primaryKey;size:64"`
	Email      string    `gorm:"size:255;index"`
	Name       string    `gorm:"size:255"`
	GivenName  string    `gorm:"size:255"`
	FamilyName string    `gorm:"size:255"`
	Picture    string    `gorm:"size:1024"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

func (UserModel) TableName() string {
	return "users"
}

// OauthProfileModel is the GORM model for provider profile snapshots
type OauthProfileModel struct {
	Sub         string    `gorm:"primaryKey;size:255"`
	UserID      string    `gorm:"size:64;index"`
	ProfileJSON string    `gorm:"type:text"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

func (OauthProfileModel) TableName() string {
	return "oauth_profiles"
}
