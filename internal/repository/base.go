package repository

import (
	"errors"

	"agora/internal/models"

	"gorm.io/gorm"
)

// lookupError maps a First/Take error to a NOT_FOUND or INTERNAL AppError.
func lookupError(err error, resource string, id interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(resource, id)
	}
	return models.NewInternalError(err)
}

// paged counts the rows matched by scope and loads one page of them into dest.
// scope must return a fresh query each call.
func paged[T any](scope func() *gorm.DB, page models.PageRequest, dest *[]T, load func(*gorm.DB) *gorm.DB) (int64, error) {
	var total int64
	if err := scope().Count(&total).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	if total == 0 || int64(page.Offset()) >= total {
		*dest = []T{}
		return total, nil
	}

	q := scope()
	if load != nil {
		q = load(q)
	}
	if err := q.Limit(page.Limit()).Offset(page.Offset()).Find(dest).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return total, nil
}
