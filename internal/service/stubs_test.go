package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"agora/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errUnexpectedCall = errors.New("unexpected call")

type userRepoStub struct {
	getByIDFn    func(ctx context.Context, id uint) (*models.User, error)
	getByEmailFn func(ctx context.Context, email string) (*models.User, error)
	createFn     func(ctx context.Context, user *models.User) error
	updateFn     func(ctx context.Context, user *models.User) error
	deleteFn     func(ctx context.Context, id uint) error
	listFn       func(ctx context.Context, page models.PageRequest) ([]models.User, int64, error)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id}, nil
		},
		getByEmailFn: func(context.Context, string) (*models.User, error) { return nil, nil },
		createFn:     func(context.Context, *models.User) error { return nil },
		updateFn:     func(context.Context, *models.User) error { return nil },
		deleteFn:     func(context.Context, uint) error { return nil },
		listFn: func(context.Context, models.PageRequest) ([]models.User, int64, error) {
			return nil, 0, nil
		},
	}
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}
func (s *userRepoStub) Delete(ctx context.Context, id uint) error { return s.deleteFn(ctx, id) }
func (s *userRepoStub) List(ctx context.Context, page models.PageRequest) ([]models.User, int64, error) {
	return s.listFn(ctx, page)
}

type profileRepoStub struct {
	getByIDFn func(ctx context.Context, id uint) (*models.Profile, error)
	updateFn  func(ctx context.Context, profile *models.Profile) error
}

func (s *profileRepoStub) GetByID(ctx context.Context, id uint) (*models.Profile, error) {
	return s.getByIDFn(ctx, id)
}
func (s *profileRepoStub) Update(ctx context.Context, profile *models.Profile) error {
	return s.updateFn(ctx, profile)
}

type postRepoStub struct {
	posts    map[uint]*models.Post
	created  []*models.Post
	updated  []*models.Post
	deleted  []uint
	feedFn   func(ctx context.Context, viewerID uint, sort models.FeedSort, page models.PageRequest) ([]models.Post, int64, error)
	searchFn func(ctx context.Context, filter models.PostSearch, page models.PageRequest, viewerID uint) ([]models.Post, int64, error)
}

func newPostRepoStub(posts ...*models.Post) *postRepoStub {
	s := &postRepoStub{posts: map[uint]*models.Post{}}
	for _, p := range posts {
		s.posts[p.ID] = p
	}
	return s
}

func (s *postRepoStub) Create(_ context.Context, post *models.Post) error {
	post.ID = uint(len(s.posts) + 100)
	s.posts[post.ID] = post
	s.created = append(s.created, post)
	return nil
}
func (s *postRepoStub) GetByID(_ context.Context, id uint, _ uint) (*models.Post, error) {
	p, ok := s.posts[id]
	if !ok {
		return nil, models.NewNotFoundError("Post", id)
	}
	cp := *p
	return &cp, nil
}
func (s *postRepoStub) List(context.Context, models.PageRequest, uint) ([]models.Post, int64, error) {
	return nil, 0, nil
}
func (s *postRepoStub) Search(ctx context.Context, filter models.PostSearch, page models.PageRequest, viewerID uint) ([]models.Post, int64, error) {
	if s.searchFn == nil {
		return nil, 0, errUnexpectedCall
	}
	return s.searchFn(ctx, filter, page, viewerID)
}
func (s *postRepoStub) Feed(ctx context.Context, viewerID uint, sort models.FeedSort, page models.PageRequest) ([]models.Post, int64, error) {
	if s.feedFn == nil {
		return nil, 0, errUnexpectedCall
	}
	return s.feedFn(ctx, viewerID, sort, page)
}
func (s *postRepoStub) Update(_ context.Context, post *models.Post) error {
	s.updated = append(s.updated, post)
	s.posts[post.ID] = post
	return nil
}
func (s *postRepoStub) Delete(_ context.Context, id uint) error {
	s.deleted = append(s.deleted, id)
	delete(s.posts, id)
	return nil
}

type commentRepoStub struct {
	comments map[uint]*models.Comment
	deleted  []uint
}

func newCommentRepoStub(comments ...*models.Comment) *commentRepoStub {
	s := &commentRepoStub{comments: map[uint]*models.Comment{}}
	for _, c := range comments {
		s.comments[c.ID] = c
	}
	return s
}

func (s *commentRepoStub) Create(_ context.Context, c *models.Comment) error {
	c.ID = uint(len(s.comments) + 200)
	s.comments[c.ID] = c
	return nil
}
func (s *commentRepoStub) GetByID(_ context.Context, id uint) (*models.Comment, error) {
	c, ok := s.comments[id]
	if !ok {
		return nil, models.NewNotFoundError("Comment", id)
	}
	cp := *c
	return &cp, nil
}
func (s *commentRepoStub) ListByPost(_ context.Context, postID uint, _ models.PageRequest) ([]models.Comment, int64, error) {
	var out []models.Comment
	for _, c := range s.comments {
		if c.PostID == postID {
			out = append(out, *c)
		}
	}
	return out, int64(len(out)), nil
}
func (s *commentRepoStub) ListByUser(_ context.Context, userID uint, _ models.PageRequest) ([]models.Comment, int64, error) {
	var out []models.Comment
	for _, c := range s.comments {
		if c.UserID == userID {
			out = append(out, *c)
		}
	}
	return out, int64(len(out)), nil
}
func (s *commentRepoStub) Update(_ context.Context, c *models.Comment) error {
	s.comments[c.ID] = c
	return nil
}
func (s *commentRepoStub) Delete(_ context.Context, id uint) error {
	s.deleted = append(s.deleted, id)
	delete(s.comments, id)
	return nil
}

// likeRepoStub enforces the (user, post) uniqueness the database provides.
type likeRepoStub struct {
	mu    sync.Mutex
	likes map[uint]*models.Like
	next  uint
}

func newLikeRepoStub() *likeRepoStub {
	return &likeRepoStub{likes: map[uint]*models.Like{}, next: 1}
}

func (s *likeRepoStub) Create(_ context.Context, like *models.Like) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.likes {
		if l.UserID == like.UserID && l.PostID == like.PostID {
			return models.NewConflictError("You have already liked this post")
		}
	}
	like.ID = s.next
	s.next++
	cp := *like
	s.likes[like.ID] = &cp
	return nil
}
func (s *likeRepoStub) GetByID(_ context.Context, id uint) (*models.Like, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.likes[id]
	if !ok {
		return nil, models.NewNotFoundError("Like", id)
	}
	cp := *l
	return &cp, nil
}
func (s *likeRepoStub) Delete(_ context.Context, userID, postID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, l := range s.likes {
		if l.UserID == userID && l.PostID == postID {
			delete(s.likes, id)
			return nil
		}
	}
	return models.NewNotFoundError("Like for post", postID)
}
func (s *likeRepoStub) DeleteByID(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.likes[id]; !ok {
		return models.NewNotFoundError("Like", id)
	}
	delete(s.likes, id)
	return nil
}
func (s *likeRepoStub) ListByUser(context.Context, uint, models.PageRequest) ([]models.Like, int64, error) {
	return nil, 0, nil
}
// countFor reports how many stored likes reference postID.
func (s *likeRepoStub) countFor(postID uint) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, l := range s.likes {
		if l.PostID == postID {
			n++
		}
	}
	return n
}

// followRepoStub keeps edges in memory and enforces pair uniqueness.
type followRepoStub struct {
	edges       map[uint]*models.Follow
	next        uint
	followerErr error
}

func newFollowRepoStub(edges ...models.Follow) *followRepoStub {
	s := &followRepoStub{edges: map[uint]*models.Follow{}, next: 1}
	for i := range edges {
		e := edges[i]
		if e.ID == 0 {
			e.ID = s.next
		}
		s.next = e.ID + 1
		s.edges[e.ID] = &e
	}
	return s
}

func (s *followRepoStub) Create(_ context.Context, f *models.Follow) error {
	for _, e := range s.edges {
		if e.FollowerID == f.FollowerID && e.FollowingID == f.FollowingID {
			return models.NewConflictError("You are already following this user")
		}
	}
	f.ID = s.next
	s.next++
	cp := *f
	s.edges[f.ID] = &cp
	return nil
}
func (s *followRepoStub) GetByID(_ context.Context, id uint) (*models.Follow, error) {
	e, ok := s.edges[id]
	if !ok {
		return nil, models.NewNotFoundError("Follow", id)
	}
	cp := *e
	return &cp, nil
}
func (s *followRepoStub) Delete(ctx context.Context, followerID, followingID uint) error {
	for id, e := range s.edges {
		if e.FollowerID == followerID && e.FollowingID == followingID {
			return s.DeleteByID(ctx, id)
		}
	}
	return models.NewNotFoundError("Follow of user", followingID)
}
func (s *followRepoStub) DeleteByID(_ context.Context, id uint) error {
	if _, ok := s.edges[id]; !ok {
		return models.NewNotFoundError("Follow", id)
	}
	delete(s.edges, id)
	return nil
}
func (s *followRepoStub) ListFollowers(context.Context, uint, models.PageRequest) ([]models.Follow, int64, error) {
	return nil, 0, nil
}
func (s *followRepoStub) ListFollowing(context.Context, uint, models.PageRequest) ([]models.Follow, int64, error) {
	return nil, 0, nil
}
func (s *followRepoStub) FollowerIDs(_ context.Context, userID uint) ([]uint, error) {
	if s.followerErr != nil {
		return nil, s.followerErr
	}
	var ids []uint
	for _, e := range s.edges {
		if e.FollowingID == userID {
			ids = append(ids, e.FollowerID)
		}
	}
	return ids, nil
}

type notificationRepoStub struct {
	created   []models.Notification
	createErr error
}

func (s *notificationRepoStub) CreateBatch(_ context.Context, notes []models.Notification) error {
	if s.createErr != nil {
		return s.createErr
	}
	for i := range notes {
		notes[i].ID = uint(len(s.created) + 1)
		s.created = append(s.created, notes[i])
	}
	return nil
}
func (s *notificationRepoStub) ListForRecipient(context.Context, uint, bool, models.PageRequest) ([]models.Notification, int64, error) {
	return nil, 0, nil
}
func (s *notificationRepoStub) MarkRead(context.Context, uint, uint) error          { return nil }
func (s *notificationRepoStub) MarkAllRead(context.Context, uint) (int64, error)    { return 0, nil }
func (s *notificationRepoStub) UnreadCount(context.Context, uint) (int64, error)    { return 0, nil }

type fanOutCall struct {
	actorID uint
	kind    models.NotificationType
	refID   uint
}

// fanOutRecorder records FanOut calls instead of writing notifications.
type fanOutRecorder struct {
	calls []fanOutCall
}

func (r *fanOutRecorder) FanOut(_ context.Context, actorID uint, kind models.NotificationType, refID uint) {
	r.calls = append(r.calls, fanOutCall{actorID, kind, refID})
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, code, models.ErrorCode(err), "error: %v", err)
}

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertCode(t, err, models.CodeValidation)
}

func assertForbiddenError(t *testing.T, err error) {
	t.Helper()
	assertCode(t, err, models.CodeForbidden)
}
