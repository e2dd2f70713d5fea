package repository

import (
	"context"
	"strings"
	"time"

	"agora/internal/models"
	"agora/internal/observability"

	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations.
// viewerID is 0 for anonymous reads; it only drives the computed Liked flag.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint, viewerID uint) (*models.Post, error)
	List(ctx context.Context, page models.PageRequest, viewerID uint) ([]models.Post, int64, error)
	Search(ctx context.Context, filter models.PostSearch, page models.PageRequest, viewerID uint) ([]models.Post, int64, error)
	Feed(ctx context.Context, viewerID uint, sort models.FeedSort, page models.PageRequest) ([]models.Post, int64, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint) error
}

type postRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db, log: observability.NewRepoLogger("posts")}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if !post.CreatedAt.IsZero() {
		post.CreatedAt = post.CreatedAt.UTC()
	}
	if err := r.db.WithContext(ctx).Omit("User").Create(post).Error; err != nil {
		r.log.LogError(ctx, err, "create")
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint, viewerID uint) (*models.Post, error) {
	var post models.Post
	err := applyPostDetails(r.db.WithContext(ctx), viewerID).
		Preload("User").
		Where("posts.id = ?", id).
		Take(&post).Error
	if err != nil {
		return nil, lookupError(err, "Post", id)
	}
	return &post, nil
}

func (r *postRepository) List(ctx context.Context, page models.PageRequest, viewerID uint) ([]models.Post, int64, error) {
	return r.page(func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&models.Post{})
	}, page, viewerID, recentFirst)
}

// Search applies every set filter. With no filter it behaves like List.
func (r *postRepository) Search(ctx context.Context, filter models.PostSearch, page models.PageRequest, viewerID uint) ([]models.Post, int64, error) {
	return r.page(func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&models.Post{})
		if filter.Query != "" {
			q = q.Where(`LOWER(posts.content) LIKE ? ESCAPE '\'`, "%"+likeEscaper.Replace(strings.ToLower(filter.Query))+"%")
		}
		if filter.Day != nil {
			q = q.Where("posts.created_at >= ? AND posts.created_at < ?", *filter.Day, filter.Day.Add(24*time.Hour))
		}
		if filter.TimeOfDay != "" {
			q = q.Where(timeOfDayExpr(r.db), filter.TimeOfDay)
		}
		return q
	}, page, viewerID, recentFirst)
}

// Feed returns posts by the viewer and by everyone the viewer follows.
func (r *postRepository) Feed(ctx context.Context, viewerID uint, sort models.FeedSort, page models.PageRequest) ([]models.Post, int64, error) {
	defer observability.TrackQuery("feed", "posts")()

	order := recentFirst
	switch sort {
	case models.FeedSortLikes:
		order = "likes_count DESC, posts.created_at DESC, posts.id DESC"
	case models.FeedSortComments:
		order = "comments_count DESC, posts.created_at DESC, posts.id DESC"
	}

	return r.page(func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&models.Post{}).
			Where("posts.user_id = ? OR posts.user_id IN (SELECT following_id FROM follows WHERE follower_id = ?)",
				viewerID, viewerID)
	}, page, viewerID, order)
}

const recentFirst = "posts.created_at DESC, posts.id DESC"

func (r *postRepository) page(scope func() *gorm.DB, page models.PageRequest, viewerID uint, order string) ([]models.Post, int64, error) {
	var posts []models.Post
	total, err := paged(scope, page, &posts, func(q *gorm.DB) *gorm.DB {
		return applyPostDetails(q, viewerID).Preload("User").Order(order)
	})
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// Update writes content and media only.
func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	err := r.db.WithContext(ctx).
		Model(&models.Post{ID: post.ID}).
		Updates(map[string]interface{}{
			"content":    post.Content,
			"media":      post.Media,
			"updated_at": time.Now().UTC(),
		}).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// Delete removes the post together with its comments, likes and every
// notification that references the post or one of its comments.
func (r *postRepository) Delete(ctx context.Context, id uint) error {
	cascaded := map[string]int64{}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		postComments := tx.Model(&models.Comment{}).Select("id").Where("post_id = ?", id)

		res := tx.Where("post_id = ? OR comment_id IN (?)", id, postComments).Delete(&models.Notification{})
		if res.Error != nil {
			return models.NewInternalError(res.Error)
		}
		cascaded["notifications"] = res.RowsAffected

		if res = tx.Where("post_id = ?", id).Delete(&models.Like{}); res.Error != nil {
			return models.NewInternalError(res.Error)
		}
		cascaded["likes"] = res.RowsAffected

		if res = tx.Where("post_id = ?", id).Delete(&models.Comment{}); res.Error != nil {
			return models.NewInternalError(res.Error)
		}
		cascaded["comments"] = res.RowsAffected

		if res = tx.Delete(&models.Post{}, id); res.Error != nil {
			return models.NewInternalError(res.Error)
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Post", id)
		}
		return nil
	})
	if err != nil {
		return err
	}
	r.log.LogDelete(ctx, id, cascaded)
	return nil
}

// likeEscaper makes LIKE match the query literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// applyPostDetails adds subqueries to fetch counts and liked status in a single query.
func applyPostDetails(db *gorm.DB, viewerID uint) *gorm.DB {
	selectQuery := "posts.*, " +
		"(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) AS comments_count, " +
		"(SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id) AS likes_count"

	if viewerID != 0 {
		return db.Select(selectQuery+", EXISTS(SELECT 1 FROM likes WHERE likes.post_id = posts.id AND likes.user_id = ?) AS liked", viewerID)
	}
	return db.Select(selectQuery + ", false AS liked")
}

// timeOfDayExpr renders the UTC "HH:MM" of posts.created_at for the active dialect.
func timeOfDayExpr(db *gorm.DB) string {
	if db.Dialector.Name() == "sqlite" {
		return "strftime('%H:%M', posts.created_at) = ?"
	}
	return "to_char(posts.created_at AT TIME ZONE 'UTC', 'HH24:MI') = ?"
}
