package repository

import (
	"satstream/internal/domain"
	"satstream/internal/models"

	"gorm.io/gorm"
)

type PostRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) *PostRepository {
	return &PostRepository{db: db}
}

func (r *PostRepository) Create(p *models.Post) error {
	return r.db.Create(p).Error
}

func (r *PostRepository) GetByID(id uint) (*models.Post, error) {
	var p models.Post
	err := r.db.Preload("Author").First(&p, id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// FeedItem carries a post with its author and engagement counts.
type FeedItem struct {
	models.Post
	ReactionCount int64 `json:"reaction_count"`
	TipTotal      int64 `json:"tip_total"`
}

// Feed returns recent posts newest-first with author and reaction counts.
func (r *PostRepository) Feed(limit, offset int) ([]FeedItem, error) {
	var posts []models.Post
	err := r.db.Preload("Author").
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	items := make([]FeedItem, 0, len(posts))
	for _, p := range posts {
		item := FeedItem{Post: p}
		r.db.Model(&models.Reaction{}).Where("post_id = ?", p.ID).Count(&item.ReactionCount)
		r.db.Model(&models.Reaction{}).
			Where("post_id = ? AND reaction_type = ?", p.ID, domain.ReactionTip).
			Select("COALESCE(SUM(amount), 0)").Scan(&item.TipTotal)
		items = append(items, item)
	}
	return items, nil
}

func (r *PostRepository) CreateReaction(re *models.Reaction) error {
	return r.db.Create(re).Error
}

func (r *PostRepository) Reactions(postID uint) ([]models.Reaction, error) {
	var reactions []models.Reaction
	err := r.db.Where("post_id = ?", postID).Order("created_at DESC").Find(&reactions).Error
	return reactions, err
}
