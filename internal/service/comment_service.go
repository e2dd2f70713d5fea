package service

import (
	"context"

	"agora/internal/models"
	"agora/internal/repository"
)

type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	fanOut      FanOut
}

func NewCommentService(commentRepo repository.CommentRepository, postRepo repository.PostRepository, fanOut FanOut) *CommentService {
	return &CommentService{commentRepo: commentRepo, postRepo: postRepo, fanOut: fanOut}
}

// CreateComment adds the principal's comment to an existing post and
// notifies the principal's followers.
func (s *CommentService) CreateComment(ctx context.Context, principal, postID uint, content string) (*models.Comment, error) {
	if err := requirePrincipal(principal); err != nil {
		return nil, err
	}
	content, err := cleanContent(content)
	if err != nil {
		return nil, err
	}
	if _, err := s.postRepo.GetByID(ctx, postID, 0); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		Content: content,
		UserID:  principal,
		PostID:  postID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	s.fanOut.FanOut(ctx, principal, models.NotificationComment, comment.ID)

	return s.commentRepo.GetByID(ctx, comment.ID)
}

func (s *CommentService) ListForPost(ctx context.Context, postID uint, page models.PageRequest) (models.Result[models.Comment], error) {
	if _, err := s.postRepo.GetByID(ctx, postID, 0); err != nil {
		return models.Result[models.Comment]{}, err
	}
	comments, total, err := s.commentRepo.ListByPost(ctx, postID, page)
	if err != nil {
		return models.Result[models.Comment]{}, err
	}
	return result(comments, total, page), nil
}

func (s *CommentService) ListMine(ctx context.Context, principal uint, page models.PageRequest) (models.Result[models.Comment], error) {
	if err := requirePrincipal(principal); err != nil {
		return models.Result[models.Comment]{}, err
	}
	comments, total, err := s.commentRepo.ListByUser(ctx, principal, page)
	if err != nil {
		return models.Result[models.Comment]{}, err
	}
	return result(comments, total, page), nil
}

// UpdateComment changes the content of the principal's own comment.
func (s *CommentService) UpdateComment(ctx context.Context, principal, commentID uint, content string) (*models.Comment, error) {
	if err := requirePrincipal(principal); err != nil {
		return nil, err
	}
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(principal, comment.UserID, "update this comment"); err != nil {
		return nil, err
	}
	content, err = cleanContent(content)
	if err != nil {
		return nil, err
	}

	comment.Content = content
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}
	return s.commentRepo.GetByID(ctx, commentID)
}

func (s *CommentService) DeleteComment(ctx context.Context, principal, commentID uint) error {
	if err := requirePrincipal(principal); err != nil {
		return err
	}
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if err := requireOwner(principal, comment.UserID, "delete this comment"); err != nil {
		return err
	}
	return s.commentRepo.Delete(ctx, commentID)
}
