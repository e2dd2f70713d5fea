// Package service holds the application's business rules. Every operation
// performed on behalf of a user takes that user's id (the principal) as an
// explicit argument.
package service

import (
	"context"

	"agora/internal/models"
)

// FanOut writes notifications for an event to the actor's followers.
// Implementations log failures instead of returning them, so a failed fan-out
// never undoes the entity that triggered it.
type FanOut interface {
	FanOut(ctx context.Context, actorID uint, kind models.NotificationType, refID uint)
}

func requireOwner(principal, owner uint, action string) error {
	if principal == 0 {
		return models.NewUnauthorizedError("Authentication required")
	}
	if principal != owner {
		return models.NewForbiddenError("You do not have permission to " + action)
	}
	return nil
}

func requirePrincipal(principal uint) error {
	if principal == 0 {
		return models.NewUnauthorizedError("Authentication required")
	}
	return nil
}

func result[T any](items []T, total int64, page models.PageRequest) models.Result[T] {
	return models.Result[T]{Items: items, Total: total, Page: page}
}
