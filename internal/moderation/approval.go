package moderation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/confessly/confessly/internal/channel"
	"github.com/confessly/confessly/internal/db"
	"github.com/confessly/confessly/internal/models"
	"github.com/confessly/confessly/internal/notify"
	"github.com/confessly/confessly/pkg/config"
	"github.com/confessly/confessly/pkg/logging"
	"github.com/confessly/confessly/pkg/telemetry"
)

// ApprovalService drives the post approval state machine. Approval and
// rejection are terminal and idempotent: once a post leaves the pending
// state, further transitions report the existing state instead of acting.
type ApprovalService struct {
	repo     *db.Repository
	posts    *db.PostRepository
	comments *db.CommentRepository
	client   channel.Client
	notifier *notify.Notifier
	cfg      *config.ChannelConfig

	// mu serializes post number allocation so concurrent approvals can never
	// observe the same MAX(post_number).
	mu     sync.Mutex
	logger *zap.Logger
}

// NewApprovalService creates a new approval service
func NewApprovalService(repo *db.Repository, client channel.Client, notifier *notify.Notifier, cfg *config.ChannelConfig) *ApprovalService {
	return &ApprovalService{
		repo:     repo,
		posts:    db.NewPostRepository(repo),
		comments: db.NewCommentRepository(repo),
		client:   client,
		notifier: notifier,
		cfg:      cfg,
		logger:   logging.WithComponent("approval"),
	}
}

// Approve moves a pending post to the approved state, assigns it the next
// public post number and publishes it to the channel. The state transition
// commits before any external delivery; a failed publish degrades the result
// but never rolls back the approval.
func (s *ApprovalService) Approve(ctx context.Context, postID, adminID int64) (*ApproveResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "moderation.approve")
	defer span.End()

	var (
		result ApproveResult
		post   models.Post
	)

	s.mu.Lock()
	err := s.repo.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&post, postID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if post.IsApproved() {
			result.Status = StatusAlreadyApproved
			result.PostNumber = post.PostNumber.Int64
			result.Published = post.ChannelMessageID.Valid
			if post.ChannelMessageID.Valid {
				msgID := post.ChannelMessageID.Int64
				result.ChannelMessageID = &msgID
			}
			return nil
		}
		if post.IsRejected() {
			result.Status = StatusAlreadyRejected
			result.RejectionReason = post.RejectionReason.String
			return nil
		}

		var max *int64
		if err := tx.Model(&models.Post{}).
			Select("MAX(post_number)").
			Where("post_number IS NOT NULL").
			Scan(&max).Error; err != nil {
			return err
		}
		next := int64(1)
		if max != nil {
			next = *max + 1
		}

		if err := tx.Model(&models.Post{}).
			Where("post_id = ?", postID).
			Updates(map[string]interface{}{"approved": true, "post_number": next}).Error; err != nil {
			return err
		}

		result.Status = StatusApproved
		result.PostNumber = next
		return nil
	})
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	if result.Status != StatusApproved {
		s.logger.Info("Approval skipped, post already handled",
			zap.Int64("post_id", postID),
			zap.Int64("admin_id", adminID),
			zap.String("status", string(result.Status)))
		return &result, nil
	}

	s.logger.Info("Post approved",
		zap.Int64("post_id", postID),
		zap.Int64("admin_id", adminID),
		zap.Int64("post_number", result.PostNumber))

	// External delivery happens strictly after the commit. Any failure from
	// here on leaves an approved, numbered post without a channel reference.
	msg := s.publish(ctx, &post, result.PostNumber)
	if msg != nil {
		err := s.repo.DB().WithContext(ctx).
			Model(&models.Post{}).
			Where("post_id = ?", postID).
			Update("channel_message_id", msg.ID).Error
		if err != nil {
			s.logger.Error("Failed to store channel message reference",
				zap.Int64("post_id", postID),
				zap.Int64("message_id", msg.ID),
				zap.Error(err))
		} else {
			result.Published = true
			result.ChannelMessageID = &msg.ID
		}
	}

	s.notifySubmitter(ctx, &post, &result)

	return &result, nil
}

// Reject moves a pending post to the rejected state with a reason. Terminal
// states are reported back unchanged, same as Approve.
func (s *ApprovalService) Reject(ctx context.Context, postID, adminID int64, reason string) (*RejectResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "moderation.reject")
	defer span.End()

	var (
		result RejectResult
		post   models.Post
	)

	s.mu.Lock()
	err := s.repo.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&post, postID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if post.IsApproved() {
			result.Status = StatusAlreadyApproved
			result.PostNumber = post.PostNumber.Int64
			return nil
		}
		if post.IsRejected() {
			result.Status = StatusAlreadyRejected
			result.RejectionReason = post.RejectionReason.String
			return nil
		}

		if err := tx.Model(&models.Post{}).
			Where("post_id = ?", postID).
			Updates(map[string]interface{}{
				"approved":         false,
				"rejection_reason": sql.NullString{String: reason, Valid: reason != ""},
			}).Error; err != nil {
			return err
		}

		result.Status = StatusRejected
		result.RejectionReason = reason
		return nil
	})
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	if result.Status != StatusRejected {
		s.logger.Info("Rejection skipped, post already handled",
			zap.Int64("post_id", postID),
			zap.Int64("admin_id", adminID),
			zap.String("status", string(result.Status)))
		return &result, nil
	}

	s.logger.Info("Post rejected",
		zap.Int64("post_id", postID),
		zap.Int64("admin_id", adminID))

	s.notifier.NotifySubmitter(ctx, post.UserID, notify.RejectionText(post.Category, reason))

	return &result, nil
}

// Flag marks a post for review without changing its approval state.
func (s *ApprovalService) Flag(ctx context.Context, postID int64) error {
	res := s.repo.DB().WithContext(ctx).
		Model(&models.Post{}).
		Where("post_id = ?", postID).
		Update("flagged", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// FlaggedContent holds everything currently flagged for review.
type FlaggedContent struct {
	Posts    []*models.Post
	Comments []*models.Comment
}

// Flagged retrieves all flagged posts and comments.
func (s *ApprovalService) Flagged(ctx context.Context) (*FlaggedContent, error) {
	posts, err := s.posts.ListFlagged(ctx)
	if err != nil {
		return nil, err
	}
	comments, err := s.comments.ListFlagged(ctx)
	if err != nil {
		return nil, err
	}
	return &FlaggedContent{Posts: posts, Comments: comments}, nil
}

// publish sends the approved post to the channel and returns the message
// reference, or nil when delivery failed.
func (s *ApprovalService) publish(ctx context.Context, post *models.Post, postNumber int64) *channel.Message {
	caption := buildCaption(post, postNumber)

	var (
		msg *channel.Message
		err error
	)
	switch post.MediaType.String {
	case models.MediaTypePhoto:
		msg, err = s.client.SendPhoto(ctx, s.cfg.ChannelID, post.MediaFileID.String, caption)
	case models.MediaTypeVideo:
		msg, err = s.client.SendVideo(ctx, s.cfg.ChannelID, post.MediaFileID.String, caption)
	case models.MediaTypeAnimation:
		msg, err = s.client.SendAnimation(ctx, s.cfg.ChannelID, post.MediaFileID.String, caption)
	default:
		msg, err = s.client.SendMessage(ctx, s.cfg.ChannelID, caption)
	}
	if err != nil {
		s.logger.Warn("Channel publish failed",
			zap.Int64("post_id", post.ID),
			zap.Int64("post_number", postNumber),
			zap.Error(err))
		return nil
	}
	return msg
}

func (s *ApprovalService) notifySubmitter(ctx context.Context, post *models.Post, result *ApproveResult) {
	link := ""
	if result.ChannelMessageID != nil {
		chat, err := s.client.GetChat(ctx, s.cfg.ChannelID)
		if err != nil {
			s.logger.Warn("Could not resolve channel for deep link", zap.Error(err))
		} else {
			link = notify.DeepLink(chat, *result.ChannelMessageID)
		}
	}
	s.notifier.NotifySubmitter(ctx, post.UserID, notify.ApprovalText(result.PostNumber, post.Category, link))
}

// buildCaption renders the channel message for an approved post: the content,
// the public post number and the category hashtags.
func buildCaption(post *models.Post, postNumber int64) string {
	var b strings.Builder
	if post.Content.Valid && post.Content.String != "" {
		b.WriteString(post.Content.String)
	} else if post.MediaCaption.Valid && post.MediaCaption.String != "" {
		b.WriteString(post.MediaCaption.String)
	}
	if b.Len() > 0 {
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "Confess #%d\n%s", postNumber, hashtags(post.Category))
	return b.String()
}

// hashtags turns a comma-separated category list into channel hashtags.
func hashtags(categories string) string {
	var tags []string
	for _, c := range strings.Split(categories, ",") {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		tags = append(tags, "#"+strings.ReplaceAll(c, " ", ""))
	}
	return strings.Join(tags, " ")
}
