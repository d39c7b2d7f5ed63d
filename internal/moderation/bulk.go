package moderation

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/confessly/confessly/internal/db"
	"github.com/confessly/confessly/internal/models"
	"github.com/confessly/confessly/pkg/logging"
)

// BulkService applies a moderation action to many targets with per-item
// isolation: one failing item never aborts the rest. Each batch leaves a
// single summary audit entry listing what happened.
type BulkService struct {
	repo     *db.Repository
	approval *ApprovalService
	deletion *DeletionService
	users    *UserService
	logger   *zap.Logger
}

// NewBulkService creates a new bulk service
func NewBulkService(repo *db.Repository, approval *ApprovalService, deletion *DeletionService, users *UserService) *BulkService {
	return &BulkService{
		repo:     repo,
		approval: approval,
		deletion: deletion,
		users:    users,
		logger:   logging.WithComponent("bulk"),
	}
}

// BulkApprove approves every pending post in the list. Posts already in a
// terminal state are skipped, missing or failing posts are reported as failed.
func (s *BulkService) BulkApprove(ctx context.Context, postIDs []int64, adminID int64) (*BulkResult, error) {
	result := &BulkResult{}
	for _, id := range postIDs {
		res, err := s.approval.Approve(ctx, id, adminID)
		if err != nil {
			result.Failed = append(result.Failed, id)
			s.logger.Warn("Bulk approve item failed",
				zap.Int64("post_id", id), zap.Error(err))
			continue
		}
		if res.Status == StatusApproved {
			result.Succeeded = append(result.Succeeded, id)
		} else {
			result.Skipped = append(result.Skipped, id)
		}
	}
	s.auditBatch(ctx, adminID, models.ActionBulkApprove, models.TargetTypePost, result)
	return result, nil
}

// BulkReject rejects every pending post in the list with the same reason.
func (s *BulkService) BulkReject(ctx context.Context, postIDs []int64, adminID int64, reason string) (*BulkResult, error) {
	result := &BulkResult{}
	for _, id := range postIDs {
		res, err := s.approval.Reject(ctx, id, adminID, reason)
		if err != nil {
			result.Failed = append(result.Failed, id)
			s.logger.Warn("Bulk reject item failed",
				zap.Int64("post_id", id), zap.Error(err))
			continue
		}
		if res.Status == StatusRejected {
			result.Succeeded = append(result.Succeeded, id)
		} else {
			result.Skipped = append(result.Skipped, id)
		}
	}
	s.auditBatch(ctx, adminID, models.ActionBulkReject, models.TargetTypePost, result)
	return result, nil
}

// BulkDeleteComments cascade-deletes every comment in the list. Comments
// already removed by an earlier cascade in the same batch count as skipped.
func (s *BulkService) BulkDeleteComments(ctx context.Context, commentIDs []int64, adminID int64) (*BulkResult, error) {
	result := &BulkResult{}
	for _, id := range commentIDs {
		if _, err := s.deletion.DeleteComment(ctx, id, adminID); err != nil {
			if errors.Is(err, ErrNotFound) {
				result.Skipped = append(result.Skipped, id)
				continue
			}
			result.Failed = append(result.Failed, id)
			s.logger.Warn("Bulk comment deletion item failed",
				zap.Int64("comment_id", id), zap.Error(err))
			continue
		}
		result.Succeeded = append(result.Succeeded, id)
	}
	s.auditBatch(ctx, adminID, models.ActionBulkDeleteComments, models.TargetTypeComment, result)
	return result, nil
}

// BulkBlockUsers blocks every user in the list.
func (s *BulkService) BulkBlockUsers(ctx context.Context, userIDs []int64, adminID int64) (*BulkResult, error) {
	result := &BulkResult{}
	for _, id := range userIDs {
		if err := s.users.SetBlocked(ctx, id, true); err != nil {
			if errors.Is(err, ErrNotFound) {
				result.Skipped = append(result.Skipped, id)
				continue
			}
			result.Failed = append(result.Failed, id)
			s.logger.Warn("Bulk block item failed",
				zap.Int64("user_id", id), zap.Error(err))
			continue
		}
		result.Succeeded = append(result.Succeeded, id)
	}
	s.auditBatch(ctx, adminID, models.ActionBulkBlockUsers, "user", result)
	return result, nil
}

// auditBatch writes the summary entry for a bulk operation. Empty batches
// leave no entry.
func (s *BulkService) auditBatch(ctx context.Context, adminID int64, action, targetType string, result *BulkResult) {
	if len(result.Succeeded) == 0 && len(result.Skipped) == 0 && len(result.Failed) == 0 {
		return
	}
	err := auditWrite(ctx, s.repo.DB(), adminID, action, targetType, 0, map[string]interface{}{
		"succeeded": result.Succeeded,
		"skipped":   result.Skipped,
		"failed":    result.Failed,
	})
	if err != nil {
		s.logger.Error("Failed to write bulk audit entry",
			zap.String("action", action), zap.Error(err))
	}
}
