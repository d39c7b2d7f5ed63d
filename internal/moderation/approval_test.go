package moderation

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/confessly/confessly/internal/models"
)

func TestApproveAssignsSequentialNumbers(t *testing.T) {
	repo := newTestRepo(t)
	client := &fakeClient{}
	svc := NewApprovalService(repo, client, newTestNotifier(client), testChannelConfig())
	ctx := context.Background()

	seedUser(t, repo, 1)
	first := seedPost(t, repo, 1, "first confession")
	second := seedPost(t, repo, 1, "second confession")

	res1, err := svc.Approve(ctx, first.ID, 42)
	if err != nil {
		t.Fatalf("Approve failed: %v", err)
	}
	res2, err := svc.Approve(ctx, second.ID, 42)
	if err != nil {
		t.Fatalf("Approve failed: %v", err)
	}

	if res1.Status != StatusApproved || res2.Status != StatusApproved {
		t.Fatalf("statuses = %v, %v, want approved", res1.Status, res2.Status)
	}
	if res1.PostNumber != 1 || res2.PostNumber != 2 {
		t.Errorf("post numbers = %d, %d, want 1, 2", res1.PostNumber, res2.PostNumber)
	}
	if !res1.Published || res1.ChannelMessageID == nil {
		t.Error("first approval did not record a channel message")
	}

	var got models.Post
	if err := repo.DB().First(&got, first.ID).Error; err != nil {
		t.Fatalf("failed to reload post: %v", err)
	}
	if !got.IsApproved() {
		t.Error("post not approved in storage")
	}
	if !got.ChannelMessageID.Valid || got.ChannelMessageID.Int64 != *res1.ChannelMessageID {
		t.Errorf("stored channel message = %v, want %d", got.ChannelMessageID, *res1.ChannelMessageID)
	}

	published := client.sentTo(testChannelConfig().ChannelID)
	if len(published) != 2 {
		t.Fatalf("channel received %d messages, want 2", len(published))
	}
	if !strings.Contains(published[0].Text, "Confess #1") {
		t.Errorf("channel message missing post number: %q", published[0].Text)
	}
	if !strings.Contains(published[0].Text, "#General") {
		t.Errorf("channel message missing category hashtag: %q", published[0].Text)
	}
}

func TestApproveIdempotent(t *testing.T) {
	repo := newTestRepo(t)
	client := &fakeClient{}
	svc := NewApprovalService(repo, client, newTestNotifier(client), testChannelConfig())
	ctx := context.Background()

	seedUser(t, repo, 1)
	post := seedPost(t, repo, 1, "confession")

	first, err := svc.Approve(ctx, post.ID, 42)
	if err != nil {
		t.Fatalf("Approve failed: %v", err)
	}
	again, err := svc.Approve(ctx, post.ID, 43)
	if err != nil {
		t.Fatalf("second Approve failed: %v", err)
	}

	if again.Status != StatusAlreadyApproved {
		t.Errorf("second status = %v, want already_approved", again.Status)
	}
	if again.PostNumber != first.PostNumber {
		t.Errorf("second call returned number %d, want %d", again.PostNumber, first.PostNumber)
	}
	if got := len(client.sentTo(testChannelConfig().ChannelID)); got != 1 {
		t.Errorf("channel received %d messages, want 1", got)
	}
}

func TestApproveAfterReject(t *testing.T) {
	repo := newTestRepo(t)
	client := &fakeClient{}
	svc := NewApprovalService(repo, client, newTestNotifier(client), testChannelConfig())
	ctx := context.Background()

	seedUser(t, repo, 1)
	post := seedPost(t, repo, 1, "confession")

	if _, err := svc.Reject(ctx, post.ID, 42, "off topic"); err != nil {
		t.Fatalf("Reject failed: %v", err)
	}

	res, err := svc.Approve(ctx, post.ID, 43)
	if err != nil {
		t.Fatalf("Approve failed: %v", err)
	}
	if res.Status != StatusAlreadyRejected {
		t.Errorf("status = %v, want already_rejected", res.Status)
	}
	if res.RejectionReason != "off topic" {
		t.Errorf("reason = %q, want %q", res.RejectionReason, "off topic")
	}
	if got := len(client.sentTo(testChannelConfig().ChannelID)); got != 0 {
		t.Errorf("rejected post published %d times", got)
	}
}

func TestRejectIdempotent(t *testing.T) {
	repo := newTestRepo(t)
	client := &fakeClient{}
	svc := NewApprovalService(repo, client, newTestNotifier(client), testChannelConfig())
	ctx := context.Background()

	seedUser(t, repo, 1)
	post := seedPost(t, repo, 1, "confession")

	first, err := svc.Reject(ctx, post.ID, 42, "spam")
	if err != nil {
		t.Fatalf("Reject failed: %v", err)
	}
	if first.Status != StatusRejected {
		t.Fatalf("status = %v, want rejected", first.Status)
	}

	again, err := svc.Reject(ctx, post.ID, 43, "different reason")
	if err != nil {
		t.Fatalf("second Reject failed: %v", err)
	}
	if again.Status != StatusAlreadyRejected {
		t.Errorf("second status = %v, want already_rejected", again.Status)
	}
	if again.RejectionReason != "spam" {
		t.Errorf("reason = %q, want original %q", again.RejectionReason, "spam")
	}
}

func TestApproveNotFound(t *testing.T) {
	repo := newTestRepo(t)
	client := &fakeClient{}
	svc := NewApprovalService(repo, client, newTestNotifier(client), testChannelConfig())

	if _, err := svc.Approve(context.Background(), 999, 42); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Approve error = %v, want ErrNotFound", err)
	}
}

func TestApprovePublishFailureDegrades(t *testing.T) {
	repo := newTestRepo(t)
	client := &fakeClient{failSend: true}
	svc := NewApprovalService(repo, client, newTestNotifier(client), testChannelConfig())
	ctx := context.Background()

	seedUser(t, repo, 1)
	post := seedPost(t, repo, 1, "confession")

	res, err := svc.Approve(ctx, post.ID, 42)
	if err != nil {
		t.Fatalf("Approve failed: %v", err)
	}
	if res.Status != StatusApproved {
		t.Fatalf("status = %v, want approved", res.Status)
	}
	if res.Published || res.ChannelMessageID != nil {
		t.Error("publish reported as successful despite delivery failure")
	}

	// The approval itself must survive the failed publish.
	var got models.Post
	if err := repo.DB().First(&got, post.ID).Error; err != nil {
		t.Fatalf("failed to reload post: %v", err)
	}
	if !got.IsApproved() || !got.PostNumber.Valid {
		t.Error("approval state lost after publish failure")
	}
	if got.ChannelMessageID.Valid {
		t.Error("channel message reference stored despite failed publish")
	}
}

func TestConcurrentApprovalsAllocateDistinctNumbers(t *testing.T) {
	repo := newTestRepo(t)
	client := &fakeClient{}
	svc := NewApprovalService(repo, client, newTestNotifier(client), testChannelConfig())
	ctx := context.Background()

	seedUser(t, repo, 1)
	const n = 10
	ids := make([]int64, n)
	for i := range ids {
		ids[i] = seedPost(t, repo, 1, "confession").ID
	}

	var wg sync.WaitGroup
	numbers := make(chan int64, n)
	for _, id := range ids {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			res, err := svc.Approve(ctx, id, 42)
			if err != nil {
				t.Errorf("Approve(%d) failed: %v", id, err)
				return
			}
			numbers <- res.PostNumber
		}(id)
	}
	wg.Wait()
	close(numbers)

	seen := make(map[int64]bool)
	for num := range numbers {
		if seen[num] {
			t.Fatalf("post number %d allocated twice", num)
		}
		seen[num] = true
	}
	for want := int64(1); want <= n; want++ {
		if !seen[want] {
			t.Errorf("post number %d never allocated", want)
		}
	}
}

func TestConcurrentApproveSameTarget(t *testing.T) {
	repo := newTestRepo(t)
	client := &fakeClient{}
	svc := NewApprovalService(repo, client, newTestNotifier(client), testChannelConfig())
	ctx := context.Background()

	seedUser(t, repo, 1)
	post := seedPost(t, repo, 1, "confession")

	var wg sync.WaitGroup
	results := make(chan Status, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := svc.Approve(ctx, post.ID, 42)
			if err != nil {
				t.Errorf("Approve failed: %v", err)
				return
			}
			results <- res.Status
		}()
	}
	wg.Wait()
	close(results)

	var approved, already int
	for status := range results {
		switch status {
		case StatusApproved:
			approved++
		case StatusAlreadyApproved:
			already++
		}
	}
	if approved != 1 || already != 1 {
		t.Errorf("outcomes = %d approved, %d already_approved, want 1 and 1", approved, already)
	}
	if got := len(client.sentTo(testChannelConfig().ChannelID)); got != 1 {
		t.Errorf("channel received %d messages, want 1", got)
	}
}

func TestFlag(t *testing.T) {
	repo := newTestRepo(t)
	client := &fakeClient{}
	svc := NewApprovalService(repo, client, newTestNotifier(client), testChannelConfig())
	ctx := context.Background()

	seedUser(t, repo, 1)
	post := seedPost(t, repo, 1, "confession")

	if err := svc.Flag(ctx, post.ID); err != nil {
		t.Fatalf("Flag failed: %v", err)
	}
	if err := svc.Flag(ctx, 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Flag(999) error = %v, want ErrNotFound", err)
	}

	flagged, err := svc.Flagged(ctx)
	if err != nil {
		t.Fatalf("Flagged failed: %v", err)
	}
	if len(flagged.Posts) != 1 || flagged.Posts[0].ID != post.ID {
		t.Errorf("flagged posts = %v, want only %d", flagged.Posts, post.ID)
	}
}

func TestApprovePublishesMediaPosts(t *testing.T) {
	repo := newTestRepo(t)
	client := &fakeClient{}
	svc := NewApprovalService(repo, client, newTestNotifier(client), testChannelConfig())
	ctx := context.Background()

	seedUser(t, repo, 1)
	post := seedPost(t, repo, 1, "")
	repo.DB().Model(post).Updates(map[string]interface{}{
		"content":       sql.NullString{},
		"media_type":    models.MediaTypePhoto,
		"media_file_id": "file-abc",
		"media_caption": "caption text",
	})

	if _, err := svc.Approve(ctx, post.ID, 42); err != nil {
		t.Fatalf("Approve failed: %v", err)
	}

	published := client.sentTo(testChannelConfig().ChannelID)
	if len(published) != 1 {
		t.Fatalf("channel received %d messages, want 1", len(published))
	}
	if published[0].Method != "sendPhoto" {
		t.Errorf("publish method = %q, want sendPhoto", published[0].Method)
	}
	if !strings.Contains(published[0].Text, "caption text") {
		t.Errorf("caption missing media caption: %q", published[0].Text)
	}
}

func TestHashtags(t *testing.T) {
	tests := []struct {
		name       string
		categories string
		want       string
	}{
		{"single", "General", "#General"},
		{"multiple", "Love, School Life", "#Love #SchoolLife"},
		{"empty parts", "General,,", "#General"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := hashtags(tt.categories); got != tt.want {
				t.Errorf("hashtags(%q) = %q, want %q", tt.categories, got, tt.want)
			}
		})
	}
}
