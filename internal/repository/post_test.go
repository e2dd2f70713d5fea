package repository

import (
	"context"
	"testing"
	"time"

	"agora/internal/models"
	"agora/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newPost(t *testing.T, db *gorm.DB, userID uint, content string, at time.Time) *models.Post {
	t.Helper()
	p := &models.Post{UserID: userID, Content: content, CreatedAt: at}
	require.NoError(t, NewPostRepository(db).Create(context.Background(), p))
	return p
}

func like(t *testing.T, db *gorm.DB, userID, postID uint) {
	t.Helper()
	require.NoError(t, NewLikeRepository(db).Create(context.Background(), &models.Like{UserID: userID, PostID: postID}))
}

func ids(posts []models.Post) []uint {
	out := make([]uint, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.ID)
	}
	return out
}

var base = time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)

func TestPostRepository_GetByIDComputesCounts(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	alice := newUser(t, db, "alice")
	bob := newUser(t, db, "bob")
	p := newPost(t, db, alice.ID, "hello", base)
	like(t, db, bob.ID, p.ID)
	require.NoError(t, NewCommentRepository(db).Create(ctx, &models.Comment{UserID: bob.ID, PostID: p.ID, Content: "hi"}))

	got, err := repo.GetByID(ctx, p.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.LikesCount)
	assert.Equal(t, 1, got.CommentsCount)
	assert.True(t, got.Liked)
	assert.Equal(t, "alice", got.User.Username)
	assert.True(t, got.CreatedAt.Equal(base))

	anon, err := repo.GetByID(ctx, p.ID, 0)
	require.NoError(t, err)
	assert.False(t, anon.Liked)

	_, err = repo.GetByID(ctx, 999, 0)
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))
}

func TestPostRepository_Feed(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	viewer := newUser(t, db, "viewer")
	followed := newUser(t, db, "followed")
	stranger := newUser(t, db, "stranger")
	fans := []*models.User{newUser(t, db, "fan1"), newUser(t, db, "fan2"), newUser(t, db, "fan3")}

	require.NoError(t, NewFollowRepository(db).Create(ctx, &models.Follow{FollowerID: viewer.ID, FollowingID: followed.ID}))

	p1 := newPost(t, db, viewer.ID, "p1", base)
	p2 := newPost(t, db, followed.ID, "p2", base.Add(time.Minute))
	p3 := newPost(t, db, followed.ID, "p3", base.Add(2*time.Minute))
	newPost(t, db, stranger.ID, "hidden", base.Add(3*time.Minute))

	// p1: 3 likes, p2: 1 like, p3: 3 likes
	for _, f := range fans {
		like(t, db, f.ID, p1.ID)
		like(t, db, f.ID, p3.ID)
	}
	like(t, db, fans[0].ID, p2.ID)

	page1 := models.PageRequest{Page: 1}

	recent, total, err := repo.Feed(ctx, viewer.ID, models.FeedSortRecent, page1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, []uint{p3.ID, p2.ID, p1.ID}, ids(recent))

	byLikes, _, err := repo.Feed(ctx, viewer.ID, models.FeedSortLikes, page1)
	require.NoError(t, err)
	// ties broken by newest first
	assert.Equal(t, []uint{p3.ID, p1.ID, p2.ID}, ids(byLikes))
	assert.Equal(t, 3, byLikes[0].LikesCount)
	assert.Equal(t, 1, byLikes[2].LikesCount)

	require.NoError(t, NewCommentRepository(db).Create(ctx, &models.Comment{UserID: fans[0].ID, PostID: p2.ID, Content: "c"}))
	byComments, _, err := repo.Feed(ctx, viewer.ID, models.FeedSortComments, page1)
	require.NoError(t, err)
	assert.Equal(t, []uint{p2.ID, p3.ID, p1.ID}, ids(byComments))

	lonely, total, err := repo.Feed(ctx, stranger.ID, models.FeedSortRecent, page1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, lonely, 1)
}

func TestPostRepository_FeedPagination(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	u := newUser(t, db, "alice")
	for i := 0; i < models.PageSize+2; i++ {
		newPost(t, db, u.ID, "post", base.Add(time.Duration(i)*time.Minute))
	}

	first, total, err := repo.Feed(ctx, u.ID, models.FeedSortRecent, models.PageRequest{Page: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(models.PageSize+2), total)
	assert.Len(t, first, models.PageSize)

	second, _, err := repo.Feed(ctx, u.ID, models.FeedSortRecent, models.PageRequest{Page: 2})
	require.NoError(t, err)
	assert.Len(t, second, 2)

	beyond, _, err := repo.Feed(ctx, u.ID, models.FeedSortRecent, models.PageRequest{Page: 5})
	require.NoError(t, err)
	assert.Empty(t, beyond)
}

func TestPostRepository_Search(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	u := newUser(t, db, "alice")
	morning := newPost(t, db, u.ID, "Learning Go today", time.Date(2024, 3, 9, 7, 5, 0, 0, time.UTC))
	evening := newPost(t, db, u.ID, "More go in the evening", time.Date(2024, 3, 9, 19, 45, 0, 0, time.UTC))
	nextDay := newPost(t, db, u.ID, "Rust day", time.Date(2024, 3, 10, 7, 5, 0, 0, time.UTC))

	search := func(q, date, tod string) []uint {
		t.Helper()
		f, err := models.ParsePostSearch(q, date, tod)
		require.NoError(t, err)
		posts, _, err := repo.Search(ctx, f, models.PageRequest{Page: 1}, 0)
		require.NoError(t, err)
		return ids(posts)
	}

	assert.Equal(t, []uint{nextDay.ID, evening.ID, morning.ID}, search("", "", ""))
	assert.Equal(t, []uint{evening.ID, morning.ID}, search("GO", "", ""))
	assert.Equal(t, []uint{evening.ID, morning.ID}, search("", "2024-03-09", ""))
	assert.Equal(t, []uint{nextDay.ID, morning.ID}, search("", "", "07:05"))
	assert.Equal(t, []uint{morning.ID}, search("go", "2024-03-09", "07:05"))
	assert.Empty(t, search("python", "", ""))
}

func TestPostRepository_SearchMatchesLiterally(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	u := newUser(t, db, "alice")
	plain := newPost(t, db, u.ID, "plain text", base)
	discount := newPost(t, db, u.ID, "discount 50% off", base.Add(time.Minute))
	snake := newPost(t, db, u.ID, "snake_case names", base.Add(2*time.Minute))
	slash := newPost(t, db, u.ID, `C:\temp`, base.Add(3*time.Minute))
	cartoon := newPost(t, db, u.ID, "Tom & Jerry: 1 < 2", base.Add(4*time.Minute))

	search := func(q string) []uint {
		t.Helper()
		posts, total, err := repo.Search(ctx, models.PostSearch{Query: q}, models.PageRequest{Page: 1}, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(len(posts)), total)
		return ids(posts)
	}

	assert.Equal(t, []uint{snake.ID}, search("_"))
	assert.Equal(t, []uint{discount.ID}, search("%"))
	assert.Equal(t, []uint{discount.ID}, search("50%"))
	assert.Empty(t, search("p%t"))
	assert.Empty(t, search("pl_in"))
	assert.Equal(t, []uint{slash.ID}, search(`\`))
	assert.Equal(t, []uint{cartoon.ID}, search("1 < 2"))
	assert.Equal(t, []uint{plain.ID}, search("PLAIN"))
}

func TestPostRepository_UpdateKeepsOwnerAndCreatedAt(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	u := newUser(t, db, "alice")
	p := newPost(t, db, u.ID, "before", base)

	require.NoError(t, repo.Update(ctx, &models.Post{ID: p.ID, UserID: 999, Content: "after", Media: "img/1.png", CreatedAt: base.Add(time.Hour)}))

	got, err := repo.GetByID(ctx, p.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, "after", got.Content)
	assert.Equal(t, "img/1.png", got.Media)
	assert.Equal(t, u.ID, got.UserID)
	assert.True(t, got.CreatedAt.Equal(base))
}

func TestPostRepository_DeleteCascades(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	posts := NewPostRepository(db)

	alice := newUser(t, db, "alice")
	bob := newUser(t, db, "bob")
	x := newPost(t, db, alice.ID, "X", base)
	keep := newPost(t, db, alice.ID, "keep", base)

	like(t, db, bob.ID, x.ID)
	like(t, db, bob.ID, keep.ID)
	c := &models.Comment{UserID: bob.ID, PostID: x.ID, Content: "on X"}
	require.NoError(t, NewCommentRepository(db).Create(ctx, c))
	require.NoError(t, NewNotificationRepository(db).CreateBatch(ctx, []models.Notification{
		{RecipientID: bob.ID, SenderID: alice.ID, Type: models.NotificationPost, PostID: &x.ID},
		{RecipientID: alice.ID, SenderID: bob.ID, Type: models.NotificationComment, CommentID: &c.ID},
		{RecipientID: bob.ID, SenderID: alice.ID, Type: models.NotificationPost, PostID: &keep.ID},
	}))

	require.NoError(t, posts.Delete(ctx, x.ID))

	var n int64
	db.Model(&models.Comment{}).Where("post_id = ?", x.ID).Count(&n)
	assert.Zero(t, n)
	db.Model(&models.Like{}).Where("post_id = ?", x.ID).Count(&n)
	assert.Zero(t, n)
	db.Model(&models.Notification{}).Where("post_id = ? OR comment_id = ?", x.ID, c.ID).Count(&n)
	assert.Zero(t, n)

	db.Model(&models.Like{}).Count(&n)
	assert.Equal(t, int64(1), n)
	db.Model(&models.Notification{}).Count(&n)
	assert.Equal(t, int64(1), n)

	err := posts.Delete(ctx, x.ID)
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))
}
