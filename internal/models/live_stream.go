package models

import (
	"time"

	"gorm.io/gorm"
)

type LiveStream struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	StreamerID  uint           `gorm:"not null;index" json:"streamer_id"`
	Title       string         `gorm:"size:255;not null" json:"title"`
	Description string         `gorm:"type:text" json:"description,omitempty"`
	IsActive    bool           `gorm:"not null;default:true;index" json:"is_active"`
	ViewerCount int            `gorm:"not null;default:0" json:"viewer_count"`
	TotalTips   int64          `gorm:"not null;default:0" json:"total_tips"` // sats tipped while live
	CreatedAt   time.Time      `json:"created_at"`
	EndedAt     *time.Time     `json:"ended_at,omitempty"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Streamer *User `gorm:"foreignKey:StreamerID" json:"streamer,omitempty"`
}
