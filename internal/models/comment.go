package models

import (
	"database/sql"
	"time"
)

// Comment represents a comment on a post. A comment with a parent is a reply;
// the schema assumes one level of nesting (replies to replies are stored but
// not specially rendered).
type Comment struct {
	ID              int64         `gorm:"primaryKey;autoIncrement;column:comment_id"`
	PostID          int64         `gorm:"not null;index;column:post_id"`
	UserID          int64         `gorm:"not null;column:user_id"`
	Content         string        `gorm:"type:text;not null;column:content"`
	ParentCommentID sql.NullInt64 `gorm:"index;column:parent_comment_id"`
	CreatedAt       time.Time     `gorm:"not null;column:created_at"`
	Likes           int64         `gorm:"not null;default:0;column:likes"`
	Dislikes        int64         `gorm:"not null;default:0;column:dislikes"`
	Flagged         bool          `gorm:"not null;default:false;column:flagged"`

	// Relationships
	Post    *Post     `gorm:"foreignKey:PostID;references:ID"`
	Parent  *Comment  `gorm:"foreignKey:ParentCommentID;references:ID"`
	Replies []Comment `gorm:"foreignKey:ParentCommentID;references:ID"`
}

// TableName specifies the table name for Comment
func (Comment) TableName() string {
	return "comments"
}

// IsReply reports whether the comment is a reply to another comment.
func (c *Comment) IsReply() bool {
	return c.ParentCommentID.Valid
}
