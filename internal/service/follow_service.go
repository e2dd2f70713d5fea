package service

import (
	"context"

	"agora/internal/models"
	"agora/internal/repository"
)

type FollowService struct {
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
	fanOut     FanOut
}

func NewFollowService(followRepo repository.FollowRepository, userRepo repository.UserRepository, fanOut FanOut) *FollowService {
	return &FollowService{followRepo: followRepo, userRepo: userRepo, fanOut: fanOut}
}

// Follow makes the principal follow targetID and notifies the principal's followers.
func (s *FollowService) Follow(ctx context.Context, principal, targetID uint) (*models.Follow, error) {
	if err := requirePrincipal(principal); err != nil {
		return nil, err
	}
	if principal == targetID {
		return nil, models.NewValidationError("you cannot follow yourself")
	}
	if _, err := s.userRepo.GetByID(ctx, targetID); err != nil {
		return nil, err
	}

	follow := &models.Follow{FollowerID: principal, FollowingID: targetID}
	if err := s.followRepo.Create(ctx, follow); err != nil {
		return nil, err
	}

	s.fanOut.FanOut(ctx, principal, models.NotificationFollow, follow.ID)

	return s.followRepo.GetByID(ctx, follow.ID)
}

// Unfollow removes the edge from the principal to targetID.
func (s *FollowService) Unfollow(ctx context.Context, principal, targetID uint) error {
	if err := requirePrincipal(principal); err != nil {
		return err
	}
	return s.followRepo.Delete(ctx, principal, targetID)
}

// DeleteFollow removes an edge by id; only its follower may do so.
func (s *FollowService) DeleteFollow(ctx context.Context, principal, followID uint) error {
	if err := requirePrincipal(principal); err != nil {
		return err
	}
	follow, err := s.followRepo.GetByID(ctx, followID)
	if err != nil {
		return err
	}
	if err := requireOwner(principal, follow.FollowerID, "delete this follow"); err != nil {
		return err
	}
	return s.followRepo.DeleteByID(ctx, followID)
}

func (s *FollowService) ListFollowers(ctx context.Context, userID uint, page models.PageRequest) (models.Result[models.Follow], error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return models.Result[models.Follow]{}, err
	}
	follows, total, err := s.followRepo.ListFollowers(ctx, userID, page)
	if err != nil {
		return models.Result[models.Follow]{}, err
	}
	return result(follows, total, page), nil
}

func (s *FollowService) ListFollowing(ctx context.Context, userID uint, page models.PageRequest) (models.Result[models.Follow], error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return models.Result[models.Follow]{}, err
	}
	follows, total, err := s.followRepo.ListFollowing(ctx, userID, page)
	if err != nil {
		return models.Result[models.Follow]{}, err
	}
	return result(follows, total, page), nil
}
