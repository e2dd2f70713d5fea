package models

import (
	"fmt"
	"time"
	"unicode/utf8"
)

// Response projections. Each external operation renders one of these
// explicitly so entity fields never leak by accident (password hashes,
// recipient ids, preload graphs).

// UserSummary is the minimal author reference embedded in other responses.
type UserSummary struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

// UserResponse is returned by register, get, list and update user.
type UserResponse struct {
	ID         uint             `json:"id"`
	Username   string           `json:"username"`
	Email      string           `json:"email"`
	DateJoined time.Time        `json:"date_joined"`
	Profile    *ProfileResponse `json:"profile,omitempty"`
}

func NewUserResponse(u *User) UserResponse {
	resp := UserResponse{
		ID:         u.ID,
		Username:   u.Username,
		Email:      u.Email,
		DateJoined: u.CreatedAt,
	}
	if u.Profile != nil {
		p := NewProfileResponse(u.Profile, u.Username)
		resp.Profile = &p
	}
	return resp
}

// ProfileResponse is returned by get and update profile.
type ProfileResponse struct {
	ID        uint      `json:"id"`
	UserID    uint      `json:"user_id"`
	Username  string    `json:"username,omitempty"`
	Bio       string    `json:"bio"`
	Image     string    `json:"image"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewProfileResponse(p *Profile, username string) ProfileResponse {
	return ProfileResponse{
		ID:        p.ID,
		UserID:    p.UserID,
		Username:  username,
		Bio:       p.Bio,
		Image:     p.Image,
		UpdatedAt: p.UpdatedAt,
	}
}

// PostResponse is returned by every post read and write.
type PostResponse struct {
	ID            uint      `json:"id"`
	AuthorID      uint      `json:"author_id"`
	AuthorName    string    `json:"author_name"`
	Content       string    `json:"content"`
	Media         string    `json:"media,omitempty"`
	LikesCount    int       `json:"likes_count"`
	CommentsCount int       `json:"comments_count"`
	Liked         bool      `json:"liked"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func NewPostResponse(p *Post) PostResponse {
	return PostResponse{
		ID:            p.ID,
		AuthorID:      p.UserID,
		AuthorName:    p.User.Username,
		Content:       p.Content,
		Media:         p.Media,
		LikesCount:    p.LikesCount,
		CommentsCount: p.CommentsCount,
		Liked:         p.Liked,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

// CommentResponse is returned by comment reads and writes.
type CommentResponse struct {
	ID         uint      `json:"id"`
	PostID     uint      `json:"post_id"`
	AuthorID   uint      `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func NewCommentResponse(c *Comment) CommentResponse {
	return CommentResponse{
		ID:         c.ID,
		PostID:     c.PostID,
		AuthorID:   c.UserID,
		AuthorName: c.User.Username,
		Content:    c.Content,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}

// LikeResponse is returned by like and list likes.
type LikeResponse struct {
	ID        uint      `json:"id"`
	PostID    uint      `json:"post_id"`
	PostInfo  string    `json:"post_info"`
	LikedBy   string    `json:"liked_by"`
	CreatedAt time.Time `json:"created_at"`
}

func NewLikeResponse(l *Like) LikeResponse {
	return LikeResponse{
		ID:        l.ID,
		PostID:    l.PostID,
		PostInfo:  excerpt(l.Post.Content, 80),
		LikedBy:   l.User.Username,
		CreatedAt: l.CreatedAt,
	}
}

// FollowResponse is returned by follow and the follower/following lists.
// Detail is phrased from the point of view of viewerID.
type FollowResponse struct {
	ID            uint      `json:"id"`
	FollowerID    uint      `json:"follower_id"`
	FollowerName  string    `json:"follower_name"`
	FollowingID   uint      `json:"following_id"`
	FollowingName string    `json:"following_name"`
	Detail        string    `json:"detail"`
	CreatedAt     time.Time `json:"created_at"`
}

func NewFollowResponse(f *Follow, viewerID uint) FollowResponse {
	detail := fmt.Sprintf("%s follows %s", f.Follower.Username, f.Following.Username)
	switch viewerID {
	case f.FollowingID:
		detail = fmt.Sprintf("%s follows you", f.Follower.Username)
	case f.FollowerID:
		detail = fmt.Sprintf("Following %s", f.Following.Username)
	}
	return FollowResponse{
		ID:            f.ID,
		FollowerID:    f.FollowerID,
		FollowerName:  f.Follower.Username,
		FollowingID:   f.FollowingID,
		FollowingName: f.Following.Username,
		Detail:        detail,
		CreatedAt:     f.CreatedAt,
	}
}

// NotificationResponse is returned by the notification list.
type NotificationResponse struct {
	ID         uint             `json:"id"`
	Type       NotificationType `json:"type"`
	SenderID   uint             `json:"sender_id"`
	SenderName string           `json:"sender_name"`
	PostID     *uint            `json:"post_id,omitempty"`
	CommentID  *uint            `json:"comment_id,omitempty"`
	FollowID   *uint            `json:"follow_id,omitempty"`
	Read       bool             `json:"read"`
	CreatedAt  time.Time        `json:"created_at"`
}

func NewNotificationResponse(n *Notification) NotificationResponse {
	return NotificationResponse{
		ID:         n.ID,
		Type:       n.Type,
		SenderID:   n.SenderID,
		SenderName: n.Sender.Username,
		PostID:     n.PostID,
		CommentID:  n.CommentID,
		FollowID:   n.FollowID,
		Read:       n.IsRead,
		CreatedAt:  n.CreatedAt,
	}
}

// TokenPairResponse is returned by token issuance and refresh.
type TokenPairResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

func excerpt(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max]) + "..."
}

// Map projects a slice of entities with fn.
func Map[E any, R any](items []E, fn func(E) R) []R {
	out := make([]R, 0, len(items))
	for _, item := range items {
		out = append(out, fn(item))
	}
	return out
}
