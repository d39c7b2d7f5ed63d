package moderation

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/confessly/confessly/internal/models"
	"github.com/confessly/confessly/pkg/logging"
)

// auditWrite appends an audit entry within the given transaction. Details must
// be JSON-serializable; the entry is the only externally-inspectable trace of
// the action, so a failed write fails the surrounding transaction.
func auditWrite(ctx context.Context, tx *gorm.DB, adminID int64, actionType, targetType string, targetID int64, details map[string]interface{}) error {
	payload, err := json.Marshal(details)
	if err != nil {
		return err
	}

	entry := &models.AdminAction{
		AdminUserID: adminID,
		ActionType:  actionType,
		TargetType:  targetType,
		TargetID:    targetID,
		Details:     string(payload),
		CreatedAt:   time.Now().UTC(),
	}

	if err := tx.WithContext(ctx).Create(entry).Error; err != nil {
		return err
	}

	logging.WithAdmin(adminID).Info("[AUDIT]",
		zap.String("action", actionType),
		zap.String("target_type", targetType),
		zap.Int64("target_id", targetID))

	return nil
}

// contentPreview truncates content for audit details and notifications.
func contentPreview(content string, max int) string {
	if len(content) > max {
		return content[:max] + "..."
	}
	return content
}
