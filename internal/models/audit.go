package models

import "time"

// AdminAction is an append-only audit record of a moderation action. Rows are
// never mutated or deleted by normal operation.
type AdminAction struct {
	ID          int64     `gorm:"primaryKey;autoIncrement;column:id"`
	AdminUserID int64     `gorm:"not null;column:admin_user_id"`
	ActionType  string    `gorm:"type:varchar(32);not null;column:action_type"`
	TargetType  string    `gorm:"type:varchar(16);not null;column:target_type"`
	TargetID    int64     `gorm:"not null;column:target_id"`
	Details     string    `gorm:"type:text;column:details"`
	CreatedAt   time.Time `gorm:"not null;column:created_at"`
}

// TableName specifies the table name for AdminAction
func (AdminAction) TableName() string {
	return "admin_actions"
}

// Audit action type constants
const (
	ActionDeletePost         = "DELETE_POST"
	ActionDeleteComment      = "DELETE_COMMENT"
	ActionReplaceComment     = "REPLACE_COMMENT"
	ActionClearReports       = "CLEAR_REPORTS"
	ActionBulkApprove        = "BULK_APPROVE"
	ActionBulkReject         = "BULK_REJECT"
	ActionBulkDeleteComments = "BULK_DELETE_COMMENTS"
	ActionBulkBlockUsers     = "BULK_BLOCK_USERS"
)
