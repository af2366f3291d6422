package models

import (
	"time"

	"gorm.io/gorm"
)

type Post struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	AuthorID    uint           `gorm:"not null;index" json:"author_id"`
	ContentType string         `gorm:"size:50;not null" json:"content_type"` // text, image, video
	ContentURL  string         `gorm:"size:512" json:"content_url,omitempty"`
	Text        string         `gorm:"type:text" json:"text,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Author *User `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
}

// Reaction is the UI-facing engagement log. A tip reaction is an
// annotation only; the balance movement lives in transactions.
type Reaction struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	PostID       uint      `gorm:"not null;index" json:"post_id"`
	UserID       uint      `gorm:"not null;index" json:"user_id"`
	ReactionType string    `gorm:"size:50;not null" json:"reaction_type"` // like, tip
	Amount       int64     `gorm:"not null;default:0" json:"amount"`      // sats, tips only
	CreatedAt    time.Time `json:"created_at"`
}
