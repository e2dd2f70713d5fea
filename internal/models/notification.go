package models

import "time"

// NotificationType is the event a notification was created for.
type NotificationType string

const (
	NotificationLike    NotificationType = "like"
	NotificationComment NotificationType = "comment"
	NotificationFollow  NotificationType = "follow"
	NotificationPost    NotificationType = "post"
)

// Notification is written by fan-out on behalf of Sender and read by Recipient.
// Exactly one of PostID, CommentID and FollowID is set, matching Type.
type Notification struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	RecipientID uint             `gorm:"not null;index:idx_notification_recipient" json:"recipient_id"`
	SenderID    uint             `gorm:"not null;index" json:"sender_id"`
	Type        NotificationType `gorm:"size:20;not null" json:"type"`
	PostID      *uint            `gorm:"index" json:"post_id,omitempty"`
	CommentID   *uint            `gorm:"index" json:"comment_id,omitempty"`
	FollowID    *uint            `gorm:"index" json:"follow_id,omitempty"`
	IsRead      bool             `gorm:"not null" json:"read"`
	CreatedAt   time.Time        `gorm:"index:idx_notification_recipient" json:"created_at"`

	Recipient User     `gorm:"foreignKey:RecipientID;constraint:OnDelete:CASCADE" json:"-"`
	Sender    User     `gorm:"foreignKey:SenderID;constraint:OnDelete:CASCADE" json:"sender"`
	Post      *Post    `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
	Comment   *Comment `gorm:"foreignKey:CommentID;constraint:OnDelete:CASCADE" json:"-"`
	Follow    *Follow  `gorm:"foreignKey:FollowID;constraint:OnDelete:CASCADE" json:"-"`
}

// Reference returns the id of the entity the notification points at.
func (n *Notification) Reference() (uint, bool) {
	switch {
	case n.PostID != nil:
		return *n.PostID, true
	case n.CommentID != nil:
		return *n.CommentID, true
	case n.FollowID != nil:
		return *n.FollowID, true
	}
	return 0, false
}

// Validate checks that exactly one reference is set and that it matches Type.
func (n *Notification) Validate() error {
	set := 0
	for _, ref := range []*uint{n.PostID, n.CommentID, n.FollowID} {
		if ref != nil {
			set++
		}
	}
	if set != 1 {
		return NewValidationError("notification must reference exactly one entity")
	}
	switch n.Type {
	case NotificationPost, NotificationLike:
		if n.PostID == nil {
			return NewValidationError("post notification must reference a post")
		}
	case NotificationComment:
		if n.CommentID == nil {
			return NewValidationError("comment notification must reference a comment")
		}
	case NotificationFollow:
		if n.FollowID == nil {
			return NewValidationError("follow notification must reference a follow")
		}
	default:
		return NewValidationError("unknown notification type")
	}
	return nil
}
