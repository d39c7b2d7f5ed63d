package moderation

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/confessly/confessly/internal/db"
	"github.com/confessly/confessly/internal/models"
	"github.com/confessly/confessly/pkg/logging"
)

// ReactionService toggles like and dislike reactions. A user holds at most
// one reaction per target: reacting again with the same kind removes it,
// reacting with the other kind flips it. Comment counters move in the same
// transaction as the reaction row.
type ReactionService struct {
	repo     *db.Repository
	posts    *db.PostRepository
	comments *db.CommentRepository
	logger   *zap.Logger
}

// NewReactionService creates a new reaction service
func NewReactionService(repo *db.Repository) *ReactionService {
	return &ReactionService{
		repo:     repo,
		posts:    db.NewPostRepository(repo),
		comments: db.NewCommentRepository(repo),
		logger:   logging.WithComponent("reactions"),
	}
}

// React applies a like or dislike from a user to a target.
func (s *ReactionService) React(ctx context.Context, userID int64, targetType string, targetID int64, kind string) (*ReactionResult, error) {
	if kind != models.ReactionLike && kind != models.ReactionDislike {
		return nil, fmt.Errorf("invalid reaction type %q", kind)
	}
	if targetType != models.TargetTypePost && targetType != models.TargetTypeComment {
		return nil, fmt.Errorf("invalid target type %q", targetType)
	}

	if err := s.checkTarget(ctx, targetType, targetID); err != nil {
		return nil, err
	}

	result := &ReactionResult{}

	err := s.repo.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Reaction
		err := tx.Where("user_id = ? AND target_type = ? AND target_id = ?", userID, targetType, targetID).
			First(&existing).Error
		found := err == nil
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		switch {
		case found && existing.ReactionType == kind:
			if err := tx.Delete(&models.Reaction{}, existing.ID).Error; err != nil {
				return err
			}
			if err := s.bumpCounter(tx, targetType, targetID, kind, -1); err != nil {
				return err
			}
			result.Action = "removed"

		case found:
			if err := tx.Model(&models.Reaction{}).
				Where("reaction_id = ?", existing.ID).
				Update("reaction_type", kind).Error; err != nil {
				return err
			}
			if err := s.bumpCounter(tx, targetType, targetID, existing.ReactionType, -1); err != nil {
				return err
			}
			if err := s.bumpCounter(tx, targetType, targetID, kind, 1); err != nil {
				return err
			}
			result.Action = "changed"

		default:
			reaction := &models.Reaction{
				UserID:       userID,
				TargetType:   targetType,
				TargetID:     targetID,
				ReactionType: kind,
			}
			if err := tx.Create(reaction).Error; err != nil {
				return err
			}
			if err := s.bumpCounter(tx, targetType, targetID, kind, 1); err != nil {
				return err
			}
			result.Action = "added"
		}

		return s.loadCounters(tx, targetType, targetID, result)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Reaction applied",
		zap.Int64("user_id", userID),
		zap.String("target_type", targetType),
		zap.Int64("target_id", targetID),
		zap.String("reaction", kind),
		zap.String("action", result.Action))

	return result, nil
}

func (s *ReactionService) checkTarget(ctx context.Context, targetType string, targetID int64) error {
	if targetType == models.TargetTypePost {
		post, err := s.posts.GetByID(ctx, targetID)
		if err != nil {
			return err
		}
		if post == nil {
			return ErrNotFound
		}
		return nil
	}
	comment, err := s.comments.GetByID(ctx, targetID)
	if err != nil {
		return err
	}
	if comment == nil {
		return ErrNotFound
	}
	return nil
}

// bumpCounter moves the denormalized like/dislike counter on the target.
// Posts only track likes; a post dislike keeps the row but no counter.
func (s *ReactionService) bumpCounter(tx *gorm.DB, targetType string, targetID int64, kind string, delta int64) error {
	if targetType == models.TargetTypePost {
		if kind != models.ReactionLike {
			return nil
		}
		return tx.Model(&models.Post{}).
			Where("post_id = ?", targetID).
			Update("likes", gorm.Expr("likes + ?", delta)).Error
	}

	column := "likes"
	if kind == models.ReactionDislike {
		column = "dislikes"
	}
	return tx.Model(&models.Comment{}).
		Where("comment_id = ?", targetID).
		Update(column, gorm.Expr(column+" + ?", delta)).Error
}

func (s *ReactionService) loadCounters(tx *gorm.DB, targetType string, targetID int64, result *ReactionResult) error {
	if targetType == models.TargetTypePost {
		var post models.Post
		if err := tx.First(&post, targetID).Error; err != nil {
			return err
		}
		result.Likes = post.Likes
		return nil
	}
	var comment models.Comment
	if err := tx.First(&comment, targetID).Error; err != nil {
		return err
	}
	result.Likes = comment.Likes
	result.Dislikes = comment.Dislikes
	return nil
}
