// Package seed fills the database with demo data for development.
// Everything is written through the services, so seeded posts, comments and
// follows produce notifications exactly like API traffic does.
package seed

import (
	"context"
	"fmt"
	"time"

	"agora/internal/middleware"
	"agora/internal/models"
	"agora/internal/repository"
	"agora/internal/service"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configures a generated run.
type Options struct {
	NumUsers int
	NumPosts int
	// MaxFollows caps how many users each user follows.
	MaxFollows int
	// MaxLikes caps likes per post; comments use MaxComments.
	MaxLikes    int
	MaxComments int
	// MaxDays spreads post creation times over this many days before now.
	MaxDays     int
	ShouldClean bool
	Password    string
	// Seed makes a run reproducible. Zero uses the clock.
	Seed int64
	// FastHash lowers the bcrypt cost; for tests and local demos.
	FastHash bool
}

// Report counts what a run created.
type Report struct {
	Users         int
	Follows       int
	Posts         int
	Likes         int
	Comments      int
	Notifications int64
}

// Seeder writes demo data through the service layer.
type Seeder struct {
	db      *gorm.DB
	opts    Options
	factory *Factory

	users    *service.UserService
	posts    *service.PostService
	comments *service.CommentService
	likes    *service.LikeService
	follows  *service.FollowService
}

// NewSeeder wires the services over db. Realtime hints are never published
// while seeding.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	followRepo := repository.NewFollowRepository(db)
	notifier := service.NewNotificationService(repository.NewNotificationRepository(db), followRepo, nil)

	users := service.NewUserService(userRepo, repository.NewProfileRepository(db))
	if opts.FastHash {
		users.WithHashCost(bcrypt.MinCost)
	}

	return &Seeder{
		db:       db,
		opts:     opts,
		factory:  NewFactory(opts.Seed, opts),
		users:    users,
		posts:    service.NewPostService(postRepo, notifier),
		comments: service.NewCommentService(repository.NewCommentRepository(db), postRepo, notifier),
		likes:    service.NewLikeService(repository.NewLikeRepository(db), postRepo),
		follows:  service.NewFollowService(followRepo, userRepo, notifier),
	}
}

// Run generates users, follows, posts, likes and comments in that order so
// that every post and comment reaches the author's followers.
func (s *Seeder) Run(ctx context.Context) (*Report, error) {
	middleware.Logger.InfoContext(ctx, "seeding database",
		"users", s.opts.NumUsers, "posts", s.opts.NumPosts, "clean", s.opts.ShouldClean)

	if s.opts.ShouldClean {
		if err := s.ClearAll(ctx); err != nil {
			return nil, err
		}
	}

	report := &Report{}

	users, err := s.createUsers(ctx, s.opts.NumUsers)
	if err != nil {
		return nil, fmt.Errorf("failed to create users: %w", err)
	}
	report.Users = len(users)
	if len(users) == 0 {
		return report, nil
	}

	if report.Follows, err = s.createFollows(ctx, users); err != nil {
		return nil, fmt.Errorf("failed to create follows: %w", err)
	}

	posts, err := s.createPosts(ctx, users, s.opts.NumPosts)
	if err != nil {
		return nil, fmt.Errorf("failed to create posts: %w", err)
	}
	report.Posts = len(posts)

	if report.Likes, report.Comments, err = s.createEngagement(ctx, users, posts); err != nil {
		return nil, fmt.Errorf("failed to create engagement: %w", err)
	}

	return s.finish(ctx, report)
}

// ApplyPlan writes a fixture plan. Follows go in before posts and comments.
func (s *Seeder) ApplyPlan(ctx context.Context, plan *Plan) (*Report, error) {
	if s.opts.ShouldClean {
		if err := s.ClearAll(ctx); err != nil {
			return nil, err
		}
	}

	password := plan.Password
	if password == "" {
		password = s.factory.password
	}

	report := &Report{}
	ids := make(map[string]uint, len(plan.Users))
	for _, u := range plan.Users {
		email := u.Email
		if email == "" {
			email = u.Username + "@example.com"
		}
		user, err := s.users.Register(ctx, service.RegisterInput{Username: u.Username, Email: email, Password: password})
		if err != nil {
			return nil, fmt.Errorf("user %s: %w", u.Username, err)
		}
		ids[u.Username] = user.ID
		report.Users++

		if u.Bio == "" && u.Image == "" {
			continue
		}
		in := service.UpdateProfileInput{Bio: &u.Bio, Image: &u.Image}
		if _, err := s.users.UpdateProfile(ctx, user.ID, user.Profile.ID, in); err != nil {
			return nil, fmt.Errorf("profile %s: %w", u.Username, err)
		}
	}

	for _, f := range plan.Follows {
		if _, err := s.follows.Follow(ctx, ids[f.Follower], ids[f.Following]); err != nil {
			return nil, fmt.Errorf("follow %s -> %s: %w", f.Follower, f.Following, err)
		}
		report.Follows++
	}

	posts := make(map[string]uint, len(plan.Posts))
	for _, p := range plan.Posts {
		post, err := s.posts.CreatePost(ctx, ids[p.Author], service.CreatePostInput{Content: p.Content, Media: p.Media})
		if err != nil {
			return nil, fmt.Errorf("post %s: %w", p.Key, err)
		}
		posts[p.Key] = post.ID
		report.Posts++
	}

	for _, l := range plan.Likes {
		if _, err := s.likes.Like(ctx, ids[l.User], posts[l.Post]); err != nil {
			return nil, fmt.Errorf("like %s -> %s: %w", l.User, l.Post, err)
		}
		report.Likes++
	}

	for _, c := range plan.Comments {
		if _, err := s.comments.CreateComment(ctx, ids[c.Author], posts[c.Post], c.Content); err != nil {
			return nil, fmt.Errorf("comment %s -> %s: %w", c.Author, c.Post, err)
		}
		report.Comments++
	}

	return s.finish(ctx, report)
}

// ClearAll removes every row from the application tables.
func (s *Seeder) ClearAll(ctx context.Context) error {
	db := s.db.WithContext(ctx)
	if db.Dialector.Name() == "postgres" {
		if err := db.Exec(
			"TRUNCATE TABLE notifications, likes, comments, follows, posts, profiles, users RESTART IDENTITY CASCADE",
		).Error; err != nil {
			return fmt.Errorf("failed to truncate tables: %w", err)
		}
		return nil
	}

	// Children first; other dialects may not enforce cascades.
	for _, model := range []interface{}{
		&models.Notification{}, &models.Like{}, &models.Comment{},
		&models.Follow{}, &models.Post{}, &models.Profile{}, &models.User{},
	} {
		if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
			return fmt.Errorf("failed to clear %T: %w", model, err)
		}
	}
	return nil
}

func (s *Seeder) createUsers(ctx context.Context, count int) ([]*models.User, error) {
	users := make([]*models.User, 0, count)
	for i := 0; i < count; i++ {
		in := s.factory.User(i + 1)
		user, err := s.users.Register(ctx, in)
		if err != nil {
			if models.ErrorCode(err) == models.CodeConflict {
				continue
			}
			return nil, fmt.Errorf("register %s: %w", in.Username, err)
		}
		if _, err := s.users.UpdateProfile(ctx, user.ID, user.Profile.ID, s.factory.Profile(user.Username)); err != nil {
			return nil, fmt.Errorf("profile %s: %w", user.Username, err)
		}
		users = append(users, user)

		if (i+1)%100 == 0 {
			middleware.Logger.InfoContext(ctx, "users created", "count", i+1)
		}
	}
	return users, nil
}

func (s *Seeder) createFollows(ctx context.Context, users []*models.User) (int, error) {
	limit := s.opts.MaxFollows
	if limit <= 0 {
		limit = 5
	}

	created := 0
	for i, u := range users {
		for _, j := range s.factory.Pick(len(users), s.factory.Intn(limit+1), i) {
			_, err := s.follows.Follow(ctx, u.ID, users[j].ID)
			if models.ErrorCode(err) == models.CodeConflict {
				continue
			}
			if err != nil {
				return created, err
			}
			created++
		}
	}
	return created, nil
}

func (s *Seeder) createPosts(ctx context.Context, users []*models.User, count int) ([]*models.Post, error) {
	now := time.Now()
	posts := make([]*models.Post, 0, count)
	for i := 0; i < count; i++ {
		author := users[s.factory.Intn(len(users))]
		post, err := s.posts.CreatePost(ctx, author.ID, s.factory.Post())
		if err != nil {
			return nil, err
		}

		// Spread posts over time so recency ordering is visible in the feed.
		createdAt := s.factory.CreatedAt(now)
		if err := s.db.WithContext(ctx).Model(&models.Post{}).
			Where("id = ?", post.ID).
			UpdateColumn("created_at", createdAt).Error; err != nil {
			return nil, err
		}
		post.CreatedAt = createdAt
		posts = append(posts, post)

		if (i+1)%100 == 0 {
			middleware.Logger.InfoContext(ctx, "posts created", "count", i+1)
		}
	}
	return posts, nil
}

func (s *Seeder) createEngagement(ctx context.Context, users []*models.User, posts []*models.Post) (int, int, error) {
	maxLikes := s.opts.MaxLikes
	if maxLikes <= 0 {
		maxLikes = 8
	}
	maxComments := s.opts.MaxComments
	if maxComments <= 0 {
		maxComments = 3
	}

	likes, comments := 0, 0
	for _, post := range posts {
		for _, j := range s.factory.Pick(len(users), s.factory.Intn(maxLikes+1), -1) {
			_, err := s.likes.Like(ctx, users[j].ID, post.ID)
			if models.ErrorCode(err) == models.CodeConflict {
				continue
			}
			if err != nil {
				return likes, comments, err
			}
			likes++
		}

		for n := s.factory.Intn(maxComments + 1); n > 0; n-- {
			author := users[s.factory.Intn(len(users))]
			if _, err := s.comments.CreateComment(ctx, author.ID, post.ID, s.factory.Comment()); err != nil {
				return likes, comments, err
			}
			comments++
		}
	}
	return likes, comments, nil
}

func (s *Seeder) finish(ctx context.Context, report *Report) (*Report, error) {
	if err := s.db.WithContext(ctx).Model(&models.Notification{}).Count(&report.Notifications).Error; err != nil {
		return nil, err
	}
	middleware.Logger.InfoContext(ctx, "seeding complete",
		"users", report.Users,
		"follows", report.Follows,
		"posts", report.Posts,
		"likes", report.Likes,
		"comments", report.Comments,
		"notifications", report.Notifications,
	)
	return report, nil
}
