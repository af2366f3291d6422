package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Username     string         `gorm:"uniqueIndex;size:64;not null" json:"username"`
	Email        string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string         `gorm:"size:255" json:"-"`
	WalletID     string         `gorm:"uniqueIndex;size:64;not null" json:"wallet_id"`
	Balance      int64          `gorm:"not null;default:0" json:"balance"` // satoshis
	IsAdmin      bool           `gorm:"not null;default:false" json:"is_admin"`
	IsBanned     bool           `gorm:"not null;default:false;index" json:"is_banned"`
	GoogleID     *string        `gorm:"uniqueIndex;size:255" json:"-"` // nil for email signups (avoids duplicate '' on unique index)
	AvatarURL    string         `gorm:"size:512" json:"avatar_url"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// PublicIdentity is the projection exposed alongside transactions and
// withdrawal queues; balance and flags stay private.
type PublicIdentity struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func (u *User) Public() PublicIdentity {
	return PublicIdentity{ID: u.ID, Username: u.Username, Email: u.Email}
}
