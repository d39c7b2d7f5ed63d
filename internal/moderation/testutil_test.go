package moderation

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/confessly/confessly/internal/channel"
	"github.com/confessly/confessly/internal/db"
	"github.com/confessly/confessly/internal/models"
	"github.com/confessly/confessly/internal/notify"
	"github.com/confessly/confessly/pkg/config"
)

// newTestRepo opens a fresh in-memory database with the full schema applied.
// A single connection serializes access, matching sqlite's locking model.
func newTestRepo(t *testing.T) *db.Repository {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared",
		strings.NewReplacer("/", "_", " ", "_").Replace(t.Name()))
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("failed to access connection pool: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db.NewRepository(gdb)
}

func testModerationConfig() *config.ModerationConfig {
	return &config.ModerationConfig{
		ReportThreshold:        5,
		AdminIDs:               []int64{9001, 9002},
		CommentReplacementText: config.DefaultCommentReplacement,
		ReplyReplacementText:   config.DefaultReplyReplacement,
	}
}

func testChannelConfig() *config.ChannelConfig {
	return &config.ChannelConfig{
		BotUsername: "confessly_bot",
		ChannelID:   -1001234567890,
	}
}

// sentMessage records one delivery made through the fake client.
type sentMessage struct {
	Method string
	ChatID int64
	Text   string
}

// fakeClient is an in-memory channel.Client that records every delivery.
type fakeClient struct {
	mu       sync.Mutex
	sent     []sentMessage
	failSend bool
	nextID   int64
}

func (c *fakeClient) record(method string, chatID int64, text string) (*channel.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failSend {
		return nil, fmt.Errorf("delivery failed")
	}
	c.nextID++
	c.sent = append(c.sent, sentMessage{Method: method, ChatID: chatID, Text: text})
	return &channel.Message{ID: c.nextID, ChatID: chatID}, nil
}

func (c *fakeClient) SendMessage(ctx context.Context, chatID int64, text string) (*channel.Message, error) {
	return c.record("sendMessage", chatID, text)
}

func (c *fakeClient) SendPhoto(ctx context.Context, chatID int64, fileID, caption string) (*channel.Message, error) {
	return c.record("sendPhoto", chatID, caption)
}

func (c *fakeClient) SendVideo(ctx context.Context, chatID int64, fileID, caption string) (*channel.Message, error) {
	return c.record("sendVideo", chatID, caption)
}

func (c *fakeClient) SendAnimation(ctx context.Context, chatID int64, fileID, caption string) (*channel.Message, error) {
	return c.record("sendAnimation", chatID, caption)
}

func (c *fakeClient) EditMessageText(ctx context.Context, chatID, messageID int64, text string) error {
	_, err := c.record("editMessageText", chatID, text)
	return err
}

func (c *fakeClient) DeleteMessage(ctx context.Context, chatID, messageID int64) error {
	_, err := c.record("deleteMessage", chatID, "")
	return err
}

func (c *fakeClient) GetChat(ctx context.Context, chatID int64) (*channel.Chat, error) {
	return &channel.Chat{ID: chatID, Username: "confessions"}, nil
}

// sentTo returns the messages delivered to one chat.
func (c *fakeClient) sentTo(chatID int64) []sentMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []sentMessage
	for _, m := range c.sent {
		if m.ChatID == chatID {
			out = append(out, m)
		}
	}
	return out
}

func newTestNotifier(client channel.Client) *notify.Notifier {
	return notify.NewNotifier(client, testModerationConfig())
}

func seedUser(t *testing.T, repo *db.Repository, id int64) *models.User {
	t.Helper()
	user := &models.User{ID: id, JoinDate: time.Now().UTC()}
	if err := repo.DB().Create(user).Error; err != nil {
		t.Fatalf("failed to seed user %d: %v", id, err)
	}
	return user
}

func seedPost(t *testing.T, repo *db.Repository, userID int64, content string) *models.Post {
	t.Helper()
	post := &models.Post{
		Content:   sql.NullString{String: content, Valid: true},
		Category:  "General",
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
	if err := repo.DB().Create(post).Error; err != nil {
		t.Fatalf("failed to seed post: %v", err)
	}
	return post
}

func seedComment(t *testing.T, repo *db.Repository, postID, userID int64, content string, parentID int64) *models.Comment {
	t.Helper()
	comment := &models.Comment{
		PostID:    postID,
		UserID:    userID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	if parentID != 0 {
		comment.ParentCommentID = sql.NullInt64{Int64: parentID, Valid: true}
	}
	if err := repo.DB().Create(comment).Error; err != nil {
		t.Fatalf("failed to seed comment: %v", err)
	}
	return comment
}

func seedReaction(t *testing.T, repo *db.Repository, userID int64, targetType string, targetID int64, kind string) {
	t.Helper()
	reaction := &models.Reaction{
		UserID:       userID,
		TargetType:   targetType,
		TargetID:     targetID,
		ReactionType: kind,
		CreatedAt:    time.Now().UTC(),
	}
	if err := repo.DB().Create(reaction).Error; err != nil {
		t.Fatalf("failed to seed reaction: %v", err)
	}
}

func seedReport(t *testing.T, repo *db.Repository, reporterID int64, targetType string, targetID int64) {
	t.Helper()
	report := &models.Report{
		UserID:     reporterID,
		TargetType: targetType,
		TargetID:   targetID,
		Reason:     "spam",
		CreatedAt:  time.Now().UTC(),
	}
	if err := repo.DB().Create(report).Error; err != nil {
		t.Fatalf("failed to seed report: %v", err)
	}
}

func countRows(t *testing.T, repo *db.Repository, model interface{}) int64 {
	t.Helper()
	var count int64
	if err := repo.DB().Model(model).Count(&count).Error; err != nil {
		t.Fatalf("failed to count rows: %v", err)
	}
	return count
}

func lastAudit(t *testing.T, repo *db.Repository) *models.AdminAction {
	t.Helper()
	var action models.AdminAction
	if err := repo.DB().Order("id DESC").First(&action).Error; err != nil {
		t.Fatalf("no audit entry found: %v", err)
	}
	return &action
}
