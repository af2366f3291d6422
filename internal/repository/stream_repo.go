package repository

import (
	"time"

	"satstream/internal/models"

	"gorm.io/gorm"
)

type StreamRepository struct {
	db *gorm.DB
}

func NewStreamRepository(db *gorm.DB) *StreamRepository {
	return &StreamRepository{db: db}
}

func (r *StreamRepository) Create(s *models.LiveStream) error {
	return r.db.Create(s).Error
}

func (r *StreamRepository) GetByID(id uint) (*models.LiveStream, error) {
	var s models.LiveStream
	err := r.db.Preload("Streamer").First(&s, id).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *StreamRepository) ListActive() ([]models.LiveStream, error) {
	var streams []models.LiveStream
	err := r.db.Preload("Streamer").
		Where("is_active = ?", true).
		Order("created_at DESC").
		Find(&streams).Error
	return streams, err
}

// End marks a stream inactive. Only the streamer may end their own stream.
func (r *StreamRepository) End(id, streamerID uint) error {
	now := time.Now()
	res := r.db.Model(&models.LiveStream{}).
		Where("id = ? AND streamer_id = ? AND is_active = ?", id, streamerID, true).
		Updates(map[string]interface{}{"is_active": false, "ended_at": &now})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// IncrementViewers adjusts an active stream's viewer count as relay
// connections join and leave. Clamped at zero.
func (r *StreamRepository) IncrementViewers(id uint, delta int) error {
	return r.db.Model(&models.LiveStream{}).
		Where("id = ? AND is_active = ?", id, true).
		UpdateColumn("viewer_count", gorm.Expr("GREATEST(viewer_count + ?, 0)", delta)).Error
}
