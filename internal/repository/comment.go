package repository

import (
	"context"
	"time"

	"agora/internal/models"
	"agora/internal/observability"

	"gorm.io/gorm"
)

// CommentRepository defines persistence operations for comments.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	ListByPost(ctx context.Context, postID uint, page models.PageRequest) ([]models.Comment, int64, error)
	ListByUser(ctx context.Context, userID uint, page models.PageRequest) ([]models.Comment, int64, error)
	Update(ctx context.Context, comment *models.Comment) error
	Delete(ctx context.Context, id uint) error
}

type commentRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewCommentRepository returns a new CommentRepository implementation.
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db, log: observability.NewRepoLogger("comments")}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Omit("User", "Post").Create(comment).Error; err != nil {
		r.log.LogError(ctx, err, "create")
		return models.NewInternalError(err)
	}
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).Preload("User").First(&comment, id).Error; err != nil {
		return nil, lookupError(err, "Comment", id)
	}
	return &comment, nil
}

// ListByPost returns a post's comments oldest first.
func (r *commentRepository) ListByPost(ctx context.Context, postID uint, page models.PageRequest) ([]models.Comment, int64, error) {
	var comments []models.Comment
	total, err := paged(func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&models.Comment{}).Where("post_id = ?", postID)
	}, page, &comments, func(q *gorm.DB) *gorm.DB {
		return q.Preload("User").Order("created_at ASC, id ASC")
	})
	if err != nil {
		return nil, 0, err
	}
	return comments, total, nil
}

// ListByUser returns a user's comments newest first.
func (r *commentRepository) ListByUser(ctx context.Context, userID uint, page models.PageRequest) ([]models.Comment, int64, error) {
	var comments []models.Comment
	total, err := paged(func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&models.Comment{}).Where("user_id = ?", userID)
	}, page, &comments, func(q *gorm.DB) *gorm.DB {
		return q.Preload("User").Order("created_at DESC, id DESC")
	})
	if err != nil {
		return nil, 0, err
	}
	return comments, total, nil
}

// Update writes the content only.
func (r *commentRepository) Update(ctx context.Context, comment *models.Comment) error {
	err := r.db.WithContext(ctx).
		Model(&models.Comment{ID: comment.ID}).
		Updates(map[string]interface{}{
			"content":    comment.Content,
			"updated_at": time.Now().UTC(),
		}).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// Delete removes the comment and the notifications that reference it.
func (r *commentRepository) Delete(ctx context.Context, id uint) error {
	var notes int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("comment_id = ?", id).Delete(&models.Notification{})
		if res.Error != nil {
			return models.NewInternalError(res.Error)
		}
		notes = res.RowsAffected

		if res = tx.Delete(&models.Comment{}, id); res.Error != nil {
			return models.NewInternalError(res.Error)
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Comment", id)
		}
		return nil
	})
	if err != nil {
		return err
	}
	r.log.LogDelete(ctx, id, map[string]int64{"notifications": notes})
	return nil
}
