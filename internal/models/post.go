// Package models contains data structures for the application's domain models.
package models

import "time"

// Post is a text post owned by a user. Owner and creation time never change.
type Post struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	UserID  uint   `gorm:"not null;index" json:"user_id"`
	User    User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user"`
	Content string `gorm:"type:text;not null" json:"content"`
	// Media is an opaque reference to externally stored media.
	Media string `gorm:"size:512" json:"media"`
	// LikesCount is not persisted; computed at query time
	LikesCount int `gorm:"->;-:migration" json:"likes_count"`
	// CommentsCount is not persisted; computed at query time
	CommentsCount int `gorm:"->;-:migration" json:"comments_count"`
	// Liked reports whether the requesting user liked this post (computed)
	Liked     bool      `gorm:"->;-:migration" json:"liked"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FeedSort selects how the feed is ordered.
type FeedSort string

const (
	FeedSortRecent   FeedSort = ""
	FeedSortLikes    FeedSort = "likes"
	FeedSortComments FeedSort = "comments"
)

// ParseFeedSort validates a client supplied sort key.
func ParseFeedSort(raw string) (FeedSort, error) {
	switch FeedSort(raw) {
	case FeedSortRecent, FeedSortLikes, FeedSortComments:
		return FeedSort(raw), nil
	case "recent":
		return FeedSortRecent, nil
	}
	return "", NewValidationError("sort must be one of: likes, comments")
}
