package service

import (
	"context"

	"agora/internal/models"
	"agora/internal/repository"
)

type LikeService struct {
	likeRepo repository.LikeRepository
	postRepo repository.PostRepository
}

func NewLikeService(likeRepo repository.LikeRepository, postRepo repository.PostRepository) *LikeService {
	return &LikeService{likeRepo: likeRepo, postRepo: postRepo}
}

// Like records that the principal likes postID. A second like is a CONFLICT.
func (s *LikeService) Like(ctx context.Context, principal, postID uint) (*models.Like, error) {
	if err := requirePrincipal(principal); err != nil {
		return nil, err
	}
	if _, err := s.postRepo.GetByID(ctx, postID, 0); err != nil {
		return nil, err
	}

	like := &models.Like{UserID: principal, PostID: postID}
	if err := s.likeRepo.Create(ctx, like); err != nil {
		return nil, err
	}
	return s.likeRepo.GetByID(ctx, like.ID)
}

// Unlike removes the principal's like on postID.
func (s *LikeService) Unlike(ctx context.Context, principal, postID uint) error {
	if err := requirePrincipal(principal); err != nil {
		return err
	}
	return s.likeRepo.Delete(ctx, principal, postID)
}

// DeleteLike removes a like by id; only the user who liked may do so.
func (s *LikeService) DeleteLike(ctx context.Context, principal, likeID uint) error {
	if err := requirePrincipal(principal); err != nil {
		return err
	}
	like, err := s.likeRepo.GetByID(ctx, likeID)
	if err != nil {
		return err
	}
	if err := requireOwner(principal, like.UserID, "delete this like"); err != nil {
		return err
	}
	return s.likeRepo.DeleteByID(ctx, likeID)
}

func (s *LikeService) ListMine(ctx context.Context, principal uint, page models.PageRequest) (models.Result[models.Like], error) {
	if err := requirePrincipal(principal); err != nil {
		return models.Result[models.Like]{}, err
	}
	likes, total, err := s.likeRepo.ListByUser(ctx, principal, page)
	if err != nil {
		return models.Result[models.Like]{}, err
	}
	return result(likes, total, page), nil
}
