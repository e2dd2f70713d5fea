package service

import (
	"context"
	"strings"

	"agora/internal/models"
	"agora/internal/repository"
	"agora/internal/validation"
)

const maxContentLen = 5000

type PostService struct {
	postRepo repository.PostRepository
	fanOut   FanOut
}

type CreatePostInput struct {
	Content string `json:"content" validate:"required,max=5000"`
	Media   string `json:"media" validate:"max=512"`
}

type UpdatePostInput struct {
	Content *string `json:"content" validate:"omitempty,max=5000"`
	Media   *string `json:"media" validate:"omitempty,max=512"`
}

func NewPostService(postRepo repository.PostRepository, fanOut FanOut) *PostService {
	return &PostService{postRepo: postRepo, fanOut: fanOut}
}

// CreatePost stores a post owned by the principal and notifies the
// principal's followers.
func (s *PostService) CreatePost(ctx context.Context, principal uint, in CreatePostInput) (*models.Post, error) {
	if err := requirePrincipal(principal); err != nil {
		return nil, err
	}
	content, err := cleanContent(in.Content)
	if err != nil {
		return nil, err
	}
	in.Content = content
	in.Media = strings.TrimSpace(in.Media)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	post := &models.Post{
		UserID:  principal,
		Content: in.Content,
		Media:   in.Media,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	s.fanOut.FanOut(ctx, principal, models.NotificationPost, post.ID)

	return s.postRepo.GetByID(ctx, post.ID, principal)
}

func (s *PostService) GetPost(ctx context.Context, id, viewerID uint) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, id, viewerID)
}

func (s *PostService) ListPosts(ctx context.Context, page models.PageRequest, viewerID uint) (models.Result[models.Post], error) {
	posts, total, err := s.postRepo.List(ctx, page, viewerID)
	if err != nil {
		return models.Result[models.Post]{}, err
	}
	return result(posts, total, page), nil
}

// SearchPosts combines every filter that is set.
func (s *PostService) SearchPosts(ctx context.Context, filter models.PostSearch, page models.PageRequest, viewerID uint) (models.Result[models.Post], error) {
	posts, total, err := s.postRepo.Search(ctx, filter, page, viewerID)
	if err != nil {
		return models.Result[models.Post]{}, err
	}
	return result(posts, total, page), nil
}

// UpdatePost changes content and media of the principal's own post.
func (s *PostService) UpdatePost(ctx context.Context, principal, postID uint, in UpdatePostInput) (*models.Post, error) {
	if err := requirePrincipal(principal); err != nil {
		return nil, err
	}
	post, err := s.postRepo.GetByID(ctx, postID, principal)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(principal, post.UserID, "update this post"); err != nil {
		return nil, err
	}

	if in.Content != nil {
		content, err := cleanContent(*in.Content)
		if err != nil {
			return nil, err
		}
		in.Content = &content
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if in.Content != nil {
		post.Content = *in.Content
	}
	if in.Media != nil {
		post.Media = strings.TrimSpace(*in.Media)
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, postID, principal)
}

// DeletePost removes the principal's own post with its comments, likes and notifications.
func (s *PostService) DeletePost(ctx context.Context, principal, postID uint) error {
	if err := requirePrincipal(principal); err != nil {
		return err
	}
	post, err := s.postRepo.GetByID(ctx, postID, 0)
	if err != nil {
		return err
	}
	if err := requireOwner(principal, post.UserID, "delete this post"); err != nil {
		return err
	}
	return s.postRepo.Delete(ctx, postID)
}

// cleanContent sanitizes user text and rejects what is empty afterwards.
func cleanContent(raw string) (string, error) {
	content := validation.SanitizeText(raw)
	if content == "" {
		return "", models.NewValidationError("content is required")
	}
	if len([]rune(content)) > maxContentLen {
		return "", models.NewValidationError("content must not exceed 5000 characters")
	}
	return content, nil
}
