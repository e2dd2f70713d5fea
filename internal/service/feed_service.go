package service

import (
	"context"

	"agora/internal/models"
	"agora/internal/observability"
	"agora/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// FeedService ranks the posts visible to a user: their own and those of
// everyone they follow.
type FeedService struct {
	postRepo repository.PostRepository
}

func NewFeedService(postRepo repository.PostRepository) *FeedService {
	return &FeedService{postRepo: postRepo}
}

// Feed orders by recency by default. Sorting by likes or comments orders by
// that count, then recency, then id, all descending.
func (s *FeedService) Feed(ctx context.Context, principal uint, sort models.FeedSort, page models.PageRequest) (models.Result[models.Post], error) {
	if err := requirePrincipal(principal); err != nil {
		return models.Result[models.Post]{}, err
	}
	switch sort {
	case models.FeedSortRecent, models.FeedSortLikes, models.FeedSortComments:
	default:
		return models.Result[models.Post]{}, models.NewValidationError("sort must be one of: likes, comments")
	}

	span, ctx := observability.NewSpan(ctx, "feed.rank",
		attribute.String("feed.sort", string(sort)),
		attribute.Int("feed.page", page.Page),
	)
	defer span.End()

	posts, total, err := s.postRepo.Feed(ctx, principal, sort, page)
	if err != nil {
		span.SetError(err)
		return models.Result[models.Post]{}, err
	}
	span.AddAttributes(attribute.Int64("feed.total", total))
	return result(posts, total, page), nil
}
