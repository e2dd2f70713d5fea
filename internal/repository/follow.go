package repository

import (
	"context"

	"agora/internal/models"
	"agora/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FollowRepository defines persistence operations for follow edges.
type FollowRepository interface {
	// Create inserts the edge atomically; an existing edge is a CONFLICT.
	Create(ctx context.Context, follow *models.Follow) error
	GetByID(ctx context.Context, id uint) (*models.Follow, error)
	Delete(ctx context.Context, followerID, followingID uint) error
	DeleteByID(ctx context.Context, id uint) error
	ListFollowers(ctx context.Context, userID uint, page models.PageRequest) ([]models.Follow, int64, error)
	ListFollowing(ctx context.Context, userID uint, page models.PageRequest) ([]models.Follow, int64, error)
	// FollowerIDs returns everyone who currently follows userID.
	FollowerIDs(ctx context.Context, userID uint) ([]uint, error)
}

type followRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewFollowRepository returns a new FollowRepository implementation.
func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db, log: observability.NewRepoLogger("follows")}
}

func (r *followRepository) Create(ctx context.Context, follow *models.Follow) error {
	res := r.db.WithContext(ctx).
		Omit("Follower", "Following").
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(follow)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		observability.UniqueConflicts.WithLabelValues("follows").Inc()
		return models.NewConflictError("You are already following this user")
	}
	return nil
}

func (r *followRepository) GetByID(ctx context.Context, id uint) (*models.Follow, error) {
	var follow models.Follow
	err := r.db.WithContext(ctx).Preload("Follower").Preload("Following").First(&follow, id).Error
	if err != nil {
		return nil, lookupError(err, "Follow", id)
	}
	return &follow, nil
}

func (r *followRepository) Delete(ctx context.Context, followerID, followingID uint) error {
	var follow models.Follow
	err := r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		First(&follow).Error
	if err != nil {
		return lookupError(err, "Follow of user", followingID)
	}
	return r.DeleteByID(ctx, follow.ID)
}

// DeleteByID removes the edge and the follow notifications it produced.
func (r *followRepository) DeleteByID(ctx context.Context, id uint) error {
	var notes int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("follow_id = ?", id).Delete(&models.Notification{})
		if res.Error != nil {
			return models.NewInternalError(res.Error)
		}
		notes = res.RowsAffected

		if res = tx.Delete(&models.Follow{}, id); res.Error != nil {
			return models.NewInternalError(res.Error)
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Follow", id)
		}
		return nil
	})
	if err != nil {
		return err
	}
	r.log.LogDelete(ctx, id, map[string]int64{"notifications": notes})
	return nil
}

func (r *followRepository) ListFollowers(ctx context.Context, userID uint, page models.PageRequest) ([]models.Follow, int64, error) {
	return r.list(ctx, "following_id = ?", userID, page)
}

func (r *followRepository) ListFollowing(ctx context.Context, userID uint, page models.PageRequest) ([]models.Follow, int64, error) {
	return r.list(ctx, "follower_id = ?", userID, page)
}

func (r *followRepository) list(ctx context.Context, cond string, userID uint, page models.PageRequest) ([]models.Follow, int64, error) {
	var follows []models.Follow
	total, err := paged(func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&models.Follow{}).Where(cond, userID)
	}, page, &follows, func(q *gorm.DB) *gorm.DB {
		return q.Preload("Follower").Preload("Following").Order("created_at DESC, id DESC")
	})
	if err != nil {
		return nil, 0, err
	}
	return follows, total, nil
}

func (r *followRepository) FollowerIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("following_id = ?", userID).
		Order("follower_id ASC").
		Pluck("follower_id", &ids).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}
