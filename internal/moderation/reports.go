package moderation

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/confessly/confessly/internal/cache"
	"github.com/confessly/confessly/internal/db"
	"github.com/confessly/confessly/internal/models"
	"github.com/confessly/confessly/internal/notify"
	"github.com/confessly/confessly/pkg/config"
	"github.com/confessly/confessly/pkg/logging"
	"github.com/confessly/confessly/pkg/telemetry"
)

// ReportService records user reports against posts and comments, deduplicates
// them per reporter, and escalates to admins when a target accumulates enough
// distinct reports.
type ReportService struct {
	repo      *db.Repository
	reports   *db.ReportRepository
	posts     *db.PostRepository
	comments  *db.CommentRepository
	cache     *cache.Cache
	notifier  *notify.Notifier
	threshold int64
	logger    *zap.Logger
}

// NewReportService creates a new report service
func NewReportService(repo *db.Repository, c *cache.Cache, notifier *notify.Notifier, cfg *config.ModerationConfig) *ReportService {
	return &ReportService{
		repo:      repo,
		reports:   db.NewReportRepository(repo),
		posts:     db.NewPostRepository(repo),
		comments:  db.NewCommentRepository(repo),
		cache:     c,
		notifier:  notifier,
		threshold: int64(cfg.ReportThreshold),
		logger:    logging.WithComponent("reports"),
	}
}

// Submit records a report from a user against a target. A second report from
// the same reporter against the same target is a no-op that still returns the
// current count. Every non-duplicate submission that observes the count at or
// above the threshold fans out an admin alert; the alert is sent after the
// report has committed and its failure does not fail the submission.
func (s *ReportService) Submit(ctx context.Context, reporterID int64, targetType string, targetID int64, reason string) (*ReportResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "moderation.report")
	defer span.End()

	if targetType != models.TargetTypePost && targetType != models.TargetTypeComment {
		return nil, fmt.Errorf("invalid target type %q", targetType)
	}

	content, err := s.targetContent(ctx, targetType, targetID)
	if err != nil {
		return nil, err
	}

	result := &ReportResult{}

	err = s.repo.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.Report{}).
			Where("user_id = ? AND target_type = ? AND target_id = ?", reporterID, targetType, targetID).
			Count(&existing).Error; err != nil {
			return err
		}

		if existing == 0 {
			report := &models.Report{
				UserID:     reporterID,
				TargetType: targetType,
				TargetID:   targetID,
				Reason:     reason,
			}
			if err := tx.Create(report).Error; err != nil {
				return err
			}
		} else {
			result.Duplicate = true
		}

		return tx.Model(&models.Report{}).
			Where("target_type = ? AND target_id = ?", targetType, targetID).
			Count(&result.Total).Error
	})
	if err != nil {
		return nil, err
	}

	s.cache.SetReportCount(targetType, targetID, result.Total)

	if result.Duplicate {
		return result, nil
	}

	s.logger.Info("Report recorded",
		zap.Int64("reporter_id", reporterID),
		zap.String("target_type", targetType),
		zap.Int64("target_id", targetID),
		zap.String("reason", reason),
		zap.Int64("total", result.Total))

	if result.Total >= s.threshold {
		result.Escalated = true
		text := notify.ReportEscalationText(targetType, targetID, result.Total, contentPreview(content, 200))
		fanout := s.notifier.NotifyAdmins(ctx, text)
		s.logger.Warn("Report threshold reached",
			zap.String("target_type", targetType),
			zap.Int64("target_id", targetID),
			zap.Int64("total", result.Total),
			zap.Int("admins_notified", fanout.Sent),
			zap.Int("admins_failed", fanout.Failed))
	}

	return result, nil
}

// Count returns the number of reports against a target, served from cache
// when possible.
func (s *ReportService) Count(ctx context.Context, targetType string, targetID int64) (int64, error) {
	if count, ok := s.cache.GetReportCount(targetType, targetID); ok {
		return count, nil
	}
	count, err := s.reports.CountByTarget(ctx, targetType, targetID)
	if err != nil {
		return 0, err
	}
	s.cache.SetReportCount(targetType, targetID, count)
	return count, nil
}

// Dismiss drops every report against a target and resets its escalation
// state. Future reports count from zero and can escalate again.
func (s *ReportService) Dismiss(ctx context.Context, targetType string, targetID int64) (int64, error) {
	res := s.repo.DB().WithContext(ctx).
		Where("target_type = ? AND target_id = ?", targetType, targetID).
		Delete(&models.Report{})
	if res.Error != nil {
		return 0, res.Error
	}
	s.cache.InvalidateReportCount(targetType, targetID)
	if res.RowsAffected > 0 {
		s.logger.Info("Reports dismissed",
			zap.String("target_type", targetType),
			zap.Int64("target_id", targetID),
			zap.Int64("count", res.RowsAffected))
	}
	return res.RowsAffected, nil
}

// ListAll retrieves all open reports, newest first.
func (s *ReportService) ListAll(ctx context.Context) ([]*models.Report, error) {
	return s.reports.ListAll(ctx)
}

// targetContent loads the reported content for the escalation preview and
// verifies the target exists.
func (s *ReportService) targetContent(ctx context.Context, targetType string, targetID int64) (string, error) {
	switch targetType {
	case models.TargetTypePost:
		post, err := s.posts.GetByID(ctx, targetID)
		if err != nil {
			return "", err
		}
		if post == nil {
			return "", ErrNotFound
		}
		return post.Content.String, nil
	default:
		comment, err := s.comments.GetByID(ctx, targetID)
		if err != nil {
			return "", err
		}
		if comment == nil {
			return "", ErrNotFound
		}
		return comment.Content, nil
	}
}
