package moderation

import "errors"

// ErrNotFound is returned when the primary target of an operation does not
// exist. It is a normal, user-facing outcome, not a storage failure.
var ErrNotFound = errors.New("target not found")

// Status identifies the outcome of an approval state transition. Conflict
// outcomes are informational: a second admin acting on an already-handled
// post gets the current state back, never an error.
type Status string

// Approval transition outcomes
const (
	StatusApproved        Status = "approved"
	StatusRejected        Status = "rejected"
	StatusAlreadyApproved Status = "already_approved"
	StatusAlreadyRejected Status = "already_rejected"
)

// ApproveResult describes the outcome of an approve call.
type ApproveResult struct {
	Status           Status
	PostNumber       int64
	ChannelMessageID *int64
	// Published is false when the post was approved but the channel publish
	// failed or the channel was unreachable (degraded success).
	Published       bool
	RejectionReason string
}

// RejectResult describes the outcome of a reject call.
type RejectResult struct {
	Status          Status
	PostNumber      int64
	RejectionReason string
}

// DeletionStats tallies the rows removed by a cascade deletion.
type DeletionStats struct {
	CommentsDeleted  int64
	RepliesDeleted   int64
	ReactionsDeleted int64
	ReportsDeleted   int64
	WasReply         bool
	// ChannelMessageID carries the pre-delete channel reference of a deleted
	// post so the caller can remove the external message afterwards.
	ChannelMessageID *int64
}

// ReplacementStats tallies the rows touched by an in-place comment replacement.
type ReplacementStats struct {
	CommentsReplaced int64
	RepliesReplaced  int64
	ReportsCleared   int64
}

// ReportResult describes the outcome of a report submission.
type ReportResult struct {
	// Duplicate is true when the reporter had already reported this target;
	// no new row is stored but Total still carries the current count.
	Duplicate bool
	Total     int64
	// Escalated is true when this submission observed the total at or above
	// the report threshold and triggered an admin fan-out.
	Escalated bool
}

// ReactionResult describes the outcome of a reaction toggle.
type ReactionResult struct {
	// Action is one of "added", "removed" or "changed".
	Action   string
	Likes    int64
	Dislikes int64
}

// BulkResult aggregates a bulk operation over many targets.
type BulkResult struct {
	Succeeded []int64
	Skipped   []int64
	Failed    []int64
}
