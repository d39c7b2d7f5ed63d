package models

import (
	"database/sql"
	"time"
)

// Post represents a submitted confession
type Post struct {
	ID               int64          `gorm:"primaryKey;autoIncrement;column:post_id"`
	Content          sql.NullString `gorm:"type:text;column:content"`
	Category         string         `gorm:"type:varchar(255);not null;column:category"`
	UserID           int64          `gorm:"not null;column:user_id"`
	CreatedAt        time.Time      `gorm:"not null;column:created_at"`
	Approved         sql.NullBool   `gorm:"column:approved"`
	PostNumber       sql.NullInt64  `gorm:"uniqueIndex:posts_ux_post_number;column:post_number"`
	ChannelMessageID sql.NullInt64  `gorm:"column:channel_message_id"`
	Flagged          bool           `gorm:"not null;default:false;column:flagged"`
	Likes            int64          `gorm:"not null;default:0;column:likes"`
	RejectionReason  sql.NullString `gorm:"type:varchar(500);column:rejection_reason"`
	MediaType        sql.NullString `gorm:"type:varchar(16);column:media_type"`
	MediaFileID      sql.NullString `gorm:"type:varchar(255);column:media_file_id"`
	MediaCaption     sql.NullString `gorm:"type:text;column:media_caption"`

	// Relationships
	Author   *User     `gorm:"foreignKey:UserID;references:ID"`
	Comments []Comment `gorm:"foreignKey:PostID;references:ID"`
}

// TableName specifies the table name for Post
func (Post) TableName() string {
	return "posts"
}

// IsPending reports whether the post has not yet been approved or rejected.
func (p *Post) IsPending() bool {
	return !p.Approved.Valid
}

// IsApproved reports whether the post is in the approved terminal state.
func (p *Post) IsApproved() bool {
	return p.Approved.Valid && p.Approved.Bool
}

// IsRejected reports whether the post is in the rejected terminal state.
func (p *Post) IsRejected() bool {
	return p.Approved.Valid && !p.Approved.Bool
}

// Media post type constants
const (
	MediaTypePhoto     = "photo"
	MediaTypeVideo     = "video"
	MediaTypeAnimation = "animation"
)
