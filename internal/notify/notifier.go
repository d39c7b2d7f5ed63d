// Package notify delivers best-effort notifications to admins and submitters.
// Every delivery is isolated: one unreachable recipient never aborts the rest,
// and no failure here propagates into a committed moderation decision.
package notify

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/confessly/confessly/internal/channel"
	"github.com/confessly/confessly/pkg/config"
	"github.com/confessly/confessly/pkg/logging"
)

// FanOutResult aggregates the outcome of a multi-recipient delivery.
type FanOutResult struct {
	Sent   int
	Failed int
}

// Notifier sends admin and submitter notifications through the channel client.
type Notifier struct {
	client   channel.Client
	adminIDs []int64
	logger   *zap.Logger
}

// NewNotifier creates a new notifier
func NewNotifier(client channel.Client, cfg *config.ModerationConfig) *Notifier {
	return &Notifier{
		client:   client,
		adminIDs: cfg.AdminIDs,
		logger:   logging.WithComponent("notify"),
	}
}

// NotifyAdmins sends the same message to every configured admin, one task per
// recipient, and reports how many deliveries succeeded.
func (n *Notifier) NotifyAdmins(ctx context.Context, text string) FanOutResult {
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		result FanOutResult
	)

	for _, adminID := range n.adminIDs {
		wg.Add(1)
		go func(adminID int64) {
			defer wg.Done()
			_, err := n.client.SendMessage(ctx, adminID, text)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failed++
				n.logger.Warn("Failed to notify admin",
					zap.Int64("admin_id", adminID),
					zap.Error(err))
				return
			}
			result.Sent++
		}(adminID)
	}

	wg.Wait()
	return result
}

// NotifySubmitter sends a message to a single user, best-effort.
func (n *Notifier) NotifySubmitter(ctx context.Context, userID int64, text string) {
	if userID == 0 {
		return
	}
	if _, err := n.client.SendMessage(ctx, userID, text); err != nil {
		n.logger.Warn("Could not notify submitter",
			zap.Int64("user_id", userID),
			zap.Error(err))
	}
}

// ReportEscalationText builds the admin alert for a target that reached the
// report threshold.
func ReportEscalationText(targetType string, targetID, reportCount int64, preview string) string {
	return fmt.Sprintf(
		"URGENT: %s #%d reported %d times\n\nContent:\n%s\n\nThis content has reached the report threshold and needs immediate review.",
		targetType, targetID, reportCount, preview)
}

// ApprovalText builds the submitter notice for an approved post.
func ApprovalText(postNumber int64, category, channelLink string) string {
	link := "Check the channel"
	if channelLink != "" {
		link = channelLink
	}
	return fmt.Sprintf(
		"Your confession in category %q has been approved and posted to the channel!\n\nPost Number: #%d\n\n%s",
		category, postNumber, link)
}

// RejectionText builds the submitter notice for a rejected post.
func RejectionText(category, reason string) string {
	return fmt.Sprintf(
		"Your confession in category %q was not approved for the following reason:\n\n%s\n\nYou can review the feedback and submit a new confession.",
		category, reason)
}

// DeepLink builds a link to a channel message. Private channels use the c/
// form with the -100 prefix stripped; public channels link by username.
func DeepLink(chat *channel.Chat, messageID int64) string {
	if chat == nil {
		return ""
	}
	if chat.Username != "" {
		return fmt.Sprintf("https://t.me/%s/%d", chat.Username, messageID)
	}
	id := chat.ID
	if id < -1000000000000 {
		id = -id - 1000000000000
	} else if id < 0 {
		id = -id
	}
	return fmt.Sprintf("https://t.me/c/%d/%d", id, messageID)
}
