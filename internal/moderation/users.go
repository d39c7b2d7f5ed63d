package moderation

import (
	"context"

	"go.uber.org/zap"

	"github.com/confessly/confessly/internal/db"
	"github.com/confessly/confessly/internal/models"
	"github.com/confessly/confessly/pkg/logging"
)

// UserService manages the per-user block flag admins use to cut off abusive
// submitters.
type UserService struct {
	repo   *db.Repository
	users  *db.UserRepository
	logger *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(repo *db.Repository) *UserService {
	return &UserService{
		repo:   repo,
		users:  db.NewUserRepository(repo),
		logger: logging.WithComponent("users"),
	}
}

// SetBlocked blocks or unblocks a user.
func (s *UserService) SetBlocked(ctx context.Context, userID int64, blocked bool) error {
	res := s.repo.DB().WithContext(ctx).
		Model(&models.User{}).
		Where("user_id = ?", userID).
		Update("blocked", blocked)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	s.logger.Info("User block flag updated",
		zap.Int64("user_id", userID),
		zap.Bool("blocked", blocked))
	return nil
}

// IsBlocked reports whether a user is currently blocked. Unknown users are
// not blocked.
func (s *UserService) IsBlocked(ctx context.Context, userID int64) (bool, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return false, err
	}
	if user == nil {
		return false, nil
	}
	return user.Blocked, nil
}
