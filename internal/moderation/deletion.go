package moderation

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/confessly/confessly/internal/cache"
	"github.com/confessly/confessly/internal/db"
	"github.com/confessly/confessly/internal/models"
	"github.com/confessly/confessly/pkg/config"
	"github.com/confessly/confessly/pkg/logging"
	"github.com/confessly/confessly/pkg/telemetry"
)

// DeletionService removes moderated content and every row that references it.
// Each cascade runs in a single transaction together with its audit entry, so
// a failure anywhere leaves the content fully intact.
type DeletionService struct {
	repo     *db.Repository
	posts    *db.PostRepository
	comments *db.CommentRepository
	audits   *db.AuditRepository
	cache    *cache.Cache
	cfg      *config.ModerationConfig
	logger   *zap.Logger
}

// NewDeletionService creates a new deletion service
func NewDeletionService(repo *db.Repository, c *cache.Cache, cfg *config.ModerationConfig) *DeletionService {
	return &DeletionService{
		repo:     repo,
		posts:    db.NewPostRepository(repo),
		comments: db.NewCommentRepository(repo),
		audits:   db.NewAuditRepository(repo),
		cache:    c,
		cfg:      cfg,
		logger:   logging.WithComponent("deletion"),
	}
}

// DeletePost removes a post and everything hanging off it: all comments on the
// post (replies included), all reactions and reports against those comments,
// and all reactions and reports against the post itself. The audit entry
// commits in the same transaction. The returned stats carry the post's channel
// message reference so the caller can remove the external message afterwards.
func (s *DeletionService) DeletePost(ctx context.Context, postID, adminID int64) (*DeletionStats, error) {
	ctx, span := telemetry.StartSpan(ctx, "moderation.delete_post")
	defer span.End()

	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrNotFound
	}

	stats := &DeletionStats{}
	if post.ChannelMessageID.Valid {
		msgID := post.ChannelMessageID.Int64
		stats.ChannelMessageID = &msgID
	}

	err = s.repo.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var commentIDs []int64
		if err := tx.Model(&models.Comment{}).
			Where("post_id = ?", postID).
			Pluck("comment_id", &commentIDs).Error; err != nil {
			return err
		}

		if len(commentIDs) > 0 {
			res := tx.Where("target_type = ? AND target_id IN ?", models.TargetTypeComment, commentIDs).
				Delete(&models.Reaction{})
			if res.Error != nil {
				return res.Error
			}
			stats.ReactionsDeleted = res.RowsAffected

			res = tx.Where("target_type = ? AND target_id IN ?", models.TargetTypeComment, commentIDs).
				Delete(&models.Report{})
			if res.Error != nil {
				return res.Error
			}
			stats.ReportsDeleted = res.RowsAffected

			res = tx.Where("post_id = ?", postID).Delete(&models.Comment{})
			if res.Error != nil {
				return res.Error
			}
			stats.CommentsDeleted = res.RowsAffected
		}

		res := tx.Where("target_type = ? AND target_id = ?", models.TargetTypePost, postID).
			Delete(&models.Reaction{})
		if res.Error != nil {
			return res.Error
		}
		stats.ReactionsDeleted += res.RowsAffected

		res = tx.Where("target_type = ? AND target_id = ?", models.TargetTypePost, postID).
			Delete(&models.Report{})
		if res.Error != nil {
			return res.Error
		}
		stats.ReportsDeleted += res.RowsAffected

		if err := tx.Delete(&models.Post{}, postID).Error; err != nil {
			return err
		}

		return auditWrite(ctx, tx, adminID, models.ActionDeletePost, models.TargetTypePost, postID, map[string]interface{}{
			"content_preview":   contentPreview(post.Content.String, 100),
			"category":          post.Category,
			"comments_deleted":  stats.CommentsDeleted,
			"reactions_deleted": stats.ReactionsDeleted,
			"reports_deleted":   stats.ReportsDeleted,
		})
	})
	if err != nil {
		s.logger.Error("Post deletion failed",
			zap.Int64("post_id", postID),
			zap.Int64("admin_id", adminID),
			zap.Error(err))
		return nil, err
	}

	s.cache.InvalidateReportCount(models.TargetTypePost, postID)

	s.logger.Info("Post deleted",
		zap.Int64("post_id", postID),
		zap.Int64("admin_id", adminID),
		zap.Int64("comments_deleted", stats.CommentsDeleted),
		zap.Int64("reactions_deleted", stats.ReactionsDeleted),
		zap.Int64("reports_deleted", stats.ReportsDeleted))

	return stats, nil
}

// DeleteComment removes a comment, its direct replies, and all reactions and
// reports against any of them. Replies to replies are not followed; the thread
// model is one level deep and deeper rows are left orphaned on purpose.
func (s *DeletionService) DeleteComment(ctx context.Context, commentID, adminID int64) (*DeletionStats, error) {
	ctx, span := telemetry.StartSpan(ctx, "moderation.delete_comment")
	defer span.End()

	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment == nil {
		return nil, ErrNotFound
	}

	stats := &DeletionStats{WasReply: comment.IsReply()}

	err = s.repo.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var replyIDs []int64
		if err := tx.Model(&models.Comment{}).
			Where("parent_comment_id = ?", commentID).
			Pluck("comment_id", &replyIDs).Error; err != nil {
			return err
		}

		targetIDs := append([]int64{commentID}, replyIDs...)

		res := tx.Where("target_type = ? AND target_id IN ?", models.TargetTypeComment, targetIDs).
			Delete(&models.Reaction{})
		if res.Error != nil {
			return res.Error
		}
		stats.ReactionsDeleted = res.RowsAffected

		res = tx.Where("target_type = ? AND target_id IN ?", models.TargetTypeComment, targetIDs).
			Delete(&models.Report{})
		if res.Error != nil {
			return res.Error
		}
		stats.ReportsDeleted = res.RowsAffected

		if len(replyIDs) > 0 {
			res = tx.Where("comment_id IN ?", replyIDs).Delete(&models.Comment{})
			if res.Error != nil {
				return res.Error
			}
			stats.RepliesDeleted = res.RowsAffected
		}

		if err := tx.Delete(&models.Comment{}, commentID).Error; err != nil {
			return err
		}
		stats.CommentsDeleted = stats.RepliesDeleted + 1

		return auditWrite(ctx, tx, adminID, models.ActionDeleteComment, models.TargetTypeComment, commentID, map[string]interface{}{
			"content_preview":   contentPreview(comment.Content, 100),
			"post_id":           comment.PostID,
			"was_reply":         stats.WasReply,
			"replies_deleted":   stats.RepliesDeleted,
			"reactions_deleted": stats.ReactionsDeleted,
			"reports_deleted":   stats.ReportsDeleted,
		})
	})
	if err != nil {
		s.logger.Error("Comment deletion failed",
			zap.Int64("comment_id", commentID),
			zap.Int64("admin_id", adminID),
			zap.Error(err))
		return nil, err
	}

	s.cache.InvalidateReportCount(models.TargetTypeComment, commentID)

	s.logger.Info("Comment deleted",
		zap.Int64("comment_id", commentID),
		zap.Int64("admin_id", adminID),
		zap.Int64("replies_deleted", stats.RepliesDeleted),
		zap.Int64("reactions_deleted", stats.ReactionsDeleted))

	return stats, nil
}

// ReplaceComment redacts a comment in place instead of deleting it. The row
// keeps its ID, position and reaction counters so the thread shape survives;
// only the content changes, reports against it are cleared, and the flag is
// lifted. Direct replies get the reply notice and the same treatment.
func (s *DeletionService) ReplaceComment(ctx context.Context, commentID, adminID int64, replacement string) (*ReplacementStats, error) {
	ctx, span := telemetry.StartSpan(ctx, "moderation.replace_comment")
	defer span.End()

	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment == nil {
		return nil, ErrNotFound
	}

	if replacement == "" {
		replacement = s.cfg.CommentReplacementText
	}

	stats := &ReplacementStats{}

	err = s.repo.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var replyIDs []int64
		if err := tx.Model(&models.Comment{}).
			Where("parent_comment_id = ?", commentID).
			Pluck("comment_id", &replyIDs).Error; err != nil {
			return err
		}

		res := tx.Model(&models.Comment{}).
			Where("comment_id = ?", commentID).
			Updates(map[string]interface{}{"content": replacement, "flagged": false})
		if res.Error != nil {
			return res.Error
		}
		stats.CommentsReplaced = res.RowsAffected

		if len(replyIDs) > 0 {
			res = tx.Model(&models.Comment{}).
				Where("comment_id IN ?", replyIDs).
				Updates(map[string]interface{}{"content": s.cfg.ReplyReplacementText, "flagged": false})
			if res.Error != nil {
				return res.Error
			}
			stats.RepliesReplaced = res.RowsAffected
		}

		targetIDs := append([]int64{commentID}, replyIDs...)
		res = tx.Where("target_type = ? AND target_id IN ?", models.TargetTypeComment, targetIDs).
			Delete(&models.Report{})
		if res.Error != nil {
			return res.Error
		}
		stats.ReportsCleared = res.RowsAffected

		return auditWrite(ctx, tx, adminID, models.ActionReplaceComment, models.TargetTypeComment, commentID, map[string]interface{}{
			"content_preview":  contentPreview(comment.Content, 100),
			"post_id":          comment.PostID,
			"replies_replaced": stats.RepliesReplaced,
			"reports_cleared":  stats.ReportsCleared,
		})
	})
	if err != nil {
		s.logger.Error("Comment replacement failed",
			zap.Int64("comment_id", commentID),
			zap.Int64("admin_id", adminID),
			zap.Error(err))
		return nil, err
	}

	s.cache.InvalidateReportCount(models.TargetTypeComment, commentID)

	s.logger.Info("Comment replaced",
		zap.Int64("comment_id", commentID),
		zap.Int64("admin_id", adminID),
		zap.Int64("replies_replaced", stats.RepliesReplaced),
		zap.Int64("reports_cleared", stats.ReportsCleared))

	return stats, nil
}

// ClearReports dismisses every report against a target without touching the
// content. An audit entry is written only when reports were actually cleared;
// clearing an unreported target is a no-op.
func (s *DeletionService) ClearReports(ctx context.Context, targetType string, targetID, adminID int64) (int64, error) {
	var cleared int64
	err := s.repo.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("target_type = ? AND target_id = ?", targetType, targetID).
			Delete(&models.Report{})
		if res.Error != nil {
			return res.Error
		}
		cleared = res.RowsAffected

		if cleared == 0 {
			return nil
		}
		return auditWrite(ctx, tx, adminID, models.ActionClearReports, targetType, targetID, map[string]interface{}{
			"reports_cleared": cleared,
		})
	})
	if err != nil {
		return 0, err
	}

	s.cache.InvalidateReportCount(targetType, targetID)

	if cleared > 0 {
		s.logger.Info("Reports cleared",
			zap.String("target_type", targetType),
			zap.Int64("target_id", targetID),
			zap.Int64("admin_id", adminID),
			zap.Int64("count", cleared))
	}
	return cleared, nil
}

// AuditLog retrieves the most recent audit entries, up to limit.
func (s *DeletionService) AuditLog(ctx context.Context, limit int) ([]*models.AdminAction, error) {
	return s.audits.List(ctx, limit)
}
