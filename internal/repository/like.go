package repository

import (
	"context"

	"agora/internal/models"
	"agora/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LikeRepository defines persistence operations for likes.
type LikeRepository interface {
	// Create inserts the like atomically; an existing (user, post) pair is a CONFLICT.
	Create(ctx context.Context, like *models.Like) error
	GetByID(ctx context.Context, id uint) (*models.Like, error)
	Delete(ctx context.Context, userID, postID uint) error
	DeleteByID(ctx context.Context, id uint) error
	ListByUser(ctx context.Context, userID uint, page models.PageRequest) ([]models.Like, int64, error)
}

type likeRepository struct {
	db *gorm.DB
}

// NewLikeRepository returns a new LikeRepository implementation.
func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

func (r *likeRepository) Create(ctx context.Context, like *models.Like) error {
	res := r.db.WithContext(ctx).
		Omit("User", "Post").
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(like)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		observability.UniqueConflicts.WithLabelValues("likes").Inc()
		return models.NewConflictError("You have already liked this post")
	}
	return nil
}

func (r *likeRepository) GetByID(ctx context.Context, id uint) (*models.Like, error) {
	var like models.Like
	if err := r.db.WithContext(ctx).Preload("User").Preload("Post").First(&like, id).Error; err != nil {
		return nil, lookupError(err, "Like", id)
	}
	return &like, nil
}

func (r *likeRepository) Delete(ctx context.Context, userID, postID uint) error {
	res := r.db.WithContext(ctx).Where("user_id = ? AND post_id = ?", userID, postID).Delete(&models.Like{})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Like for post", postID)
	}
	return nil
}

func (r *likeRepository) DeleteByID(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Like{}, id)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Like", id)
	}
	return nil
}

func (r *likeRepository) ListByUser(ctx context.Context, userID uint, page models.PageRequest) ([]models.Like, int64, error) {
	var likes []models.Like
	total, err := paged(func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&models.Like{}).Where("user_id = ?", userID)
	}, page, &likes, func(q *gorm.DB) *gorm.DB {
		return q.Preload("User").Preload("Post").Order("created_at DESC, id DESC")
	})
	if err != nil {
		return nil, 0, err
	}
	return likes, total, nil
}
