// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"agora/internal/database"
	"agora/internal/models"
	"agora/internal/observability"

	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, page models.PageRequest) ([]models.User, int64, error)
}

type userRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db, log: observability.NewRepoLogger("users")}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Preload("Profile").First(&user, id).Error; err != nil {
		return nil, lookupError(err, "User", id)
	}
	return &user, nil
}

// GetByEmail returns nil, nil when no user has the address.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

// Create inserts the user and its profile in one transaction. A duplicate
// username or email is reported as a CONFLICT naming the field.
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if user.Profile == nil {
		user.Profile = &models.Profile{}
	}
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return r.writeError(ctx, err, "create")
	}
	return nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now().UTC()
	err := r.db.WithContext(ctx).
		Model(user).
		Select("username", "email", "password", "updated_at").
		Updates(user).Error
	if err != nil {
		return r.writeError(ctx, err, "update")
	}
	return nil
}

func (r *userRepository) writeError(ctx context.Context, err error, op string) error {
	if database.IsUniqueViolation(err) {
		observability.UniqueConflicts.WithLabelValues("users").Inc()
		if strings.Contains(strings.ToLower(err.Error()), "email") {
			return models.NewConflictError("A user with that email already exists")
		}
		return models.NewConflictError("A user with that username already exists")
	}
	r.log.LogError(ctx, err, op)
	return models.NewInternalError(err)
}

// Delete removes the user and everything that references it: its profile,
// posts with their comments and likes, its own comments and likes, follow
// edges in both directions and notifications it sent or received.
func (r *userRepository) Delete(ctx context.Context, id uint) error {
	cascaded := map[string]int64{}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Take(&models.User{}, id)
		if res.Error != nil {
			return lookupError(res.Error, "User", id)
		}

		ownPosts := tx.Model(&models.Post{}).Select("id").Where("user_id = ?", id)
		touchedComments := tx.Model(&models.Comment{}).Select("id").
			Where("user_id = ? OR post_id IN (?)", id, ownPosts)
		edges := tx.Model(&models.Follow{}).Select("id").
			Where("follower_id = ? OR following_id = ?", id, id)

		steps := []struct {
			table string
			run   func() *gorm.DB
		}{
			{"notifications", func() *gorm.DB {
				return tx.Where(
					"recipient_id = ? OR sender_id = ? OR post_id IN (?) OR comment_id IN (?) OR follow_id IN (?)",
					id, id, ownPosts, touchedComments, edges,
				).Delete(&models.Notification{})
			}},
			{"likes", func() *gorm.DB {
				return tx.Where("user_id = ? OR post_id IN (?)", id, ownPosts).Delete(&models.Like{})
			}},
			{"comments", func() *gorm.DB {
				return tx.Where("user_id = ? OR post_id IN (?)", id, ownPosts).Delete(&models.Comment{})
			}},
			{"posts", func() *gorm.DB {
				return tx.Where("user_id = ?", id).Delete(&models.Post{})
			}},
			{"follows", func() *gorm.DB {
				return tx.Where("follower_id = ? OR following_id = ?", id, id).Delete(&models.Follow{})
			}},
			{"profiles", func() *gorm.DB {
				return tx.Where("user_id = ?", id).Delete(&models.Profile{})
			}},
		}
		for _, step := range steps {
			res := step.run()
			if res.Error != nil {
				return models.NewInternalError(res.Error)
			}
			cascaded[step.table] = res.RowsAffected
		}

		if err := tx.Delete(&models.User{}, id).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	r.log.LogDelete(ctx, id, cascaded)
	return nil
}

func (r *userRepository) List(ctx context.Context, page models.PageRequest) ([]models.User, int64, error) {
	var users []models.User
	total, err := paged(func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&models.User{})
	}, page, &users, func(q *gorm.DB) *gorm.DB {
		return q.Preload("Profile").Order("users.id ASC")
	})
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}
