package models

import "time"

// Reaction represents a like or dislike on a post or comment. At most one
// reaction exists per (user, target) pair.
type Reaction struct {
	ID           int64     `gorm:"primaryKey;autoIncrement;column:reaction_id"`
	UserID       int64     `gorm:"not null;uniqueIndex:reactions_ux_user_target;column:user_id"`
	TargetType   string    `gorm:"type:varchar(16);not null;uniqueIndex:reactions_ux_user_target;column:target_type"`
	TargetID     int64     `gorm:"not null;uniqueIndex:reactions_ux_user_target;column:target_id"`
	ReactionType string    `gorm:"type:varchar(16);not null;column:reaction_type"`
	CreatedAt    time.Time `gorm:"not null;column:created_at"`
}

// TableName specifies the table name for Reaction
func (Reaction) TableName() string {
	return "reactions"
}

// Reaction target type constants
const (
	TargetTypePost    = "post"
	TargetTypeComment = "comment"
)

// Reaction type constants
const (
	ReactionLike    = "like"
	ReactionDislike = "dislike"
)
