package repository

import (
	"context"
	"time"

	"agora/internal/models"

	"gorm.io/gorm"
)

// ProfileRepository defines persistence operations for profiles.
type ProfileRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Profile, error)
	Update(ctx context.Context, profile *models.Profile) error
}

type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository returns a new ProfileRepository implementation.
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) GetByID(ctx context.Context, id uint) (*models.Profile, error) {
	var profile models.Profile
	err := r.db.WithContext(ctx).
		Select("profiles.*, users.username AS username").
		Joins("JOIN users ON users.id = profiles.user_id").
		Where("profiles.id = ?", id).
		Take(&profile).Error
	if err != nil {
		return nil, lookupError(err, "Profile", id)
	}
	return &profile, nil
}

// Update writes bio and image. The owning user never changes.
func (r *profileRepository) Update(ctx context.Context, profile *models.Profile) error {
	profile.UpdatedAt = time.Now().UTC()
	err := r.db.WithContext(ctx).
		Model(profile).
		Select("bio", "image", "updated_at").
		Updates(profile).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
