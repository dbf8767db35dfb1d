package model

import "time"

// User holds the credential for the downstream model provider (APIKey) and the
// single live access token. The token is reissued on every login, so the column
// value is always the only valid one.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"size:64;not null;uniqueIndex" json:"username"`
	Email        string    `gorm:"size:128;not null;uniqueIndex" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	APIKey       string    `gorm:"size:255" json:"-"`
	AccessToken  string    `gorm:"size:512;index" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
