package moderation

import (
	"context"
	"testing"

	"github.com/confessly/confessly/internal/models"
)

func TestBulkApproveMixedOutcomes(t *testing.T) {
	repo := newTestRepo(t)
	client := &fakeClient{}
	approval := NewApprovalService(repo, client, newTestNotifier(client), testChannelConfig())
	deletion := NewDeletionService(repo, nil, testModerationConfig())
	users := NewUserService(repo)
	svc := NewBulkService(repo, approval, deletion, users)
	ctx := context.Background()

	seedUser(t, repo, 1)
	pending1 := seedPost(t, repo, 1, "one")
	pending2 := seedPost(t, repo, 1, "two")
	rejected := seedPost(t, repo, 1, "three")
	if _, err := approval.Reject(ctx, rejected.ID, 42, "spam"); err != nil {
		t.Fatalf("Reject failed: %v", err)
	}

	result, err := svc.BulkApprove(ctx, []int64{pending1.ID, pending2.ID, rejected.ID, 999}, 42)
	if err != nil {
		t.Fatalf("BulkApprove failed: %v", err)
	}
	if len(result.Succeeded) != 2 {
		t.Errorf("succeeded = %v, want 2 posts", result.Succeeded)
	}
	if len(result.Skipped) != 1 || result.Skipped[0] != rejected.ID {
		t.Errorf("skipped = %v, want [%d]", result.Skipped, rejected.ID)
	}
	if len(result.Failed) != 1 || result.Failed[0] != 999 {
		t.Errorf("failed = %v, want [999]", result.Failed)
	}

	if audit := lastAudit(t, repo); audit.ActionType != models.ActionBulkApprove {
		t.Errorf("audit action = %q, want %q", audit.ActionType, models.ActionBulkApprove)
	}
}

func TestBulkDeleteComments(t *testing.T) {
	repo := newTestRepo(t)
	client := &fakeClient{}
	approval := NewApprovalService(repo, client, newTestNotifier(client), testChannelConfig())
	deletion := NewDeletionService(repo, nil, testModerationConfig())
	svc := NewBulkService(repo, approval, deletion, NewUserService(repo))
	ctx := context.Background()

	seedUser(t, repo, 1)
	post := seedPost(t, repo, 1, "post")
	parent := seedComment(t, repo, post.ID, 2, "parent", 0)
	reply := seedComment(t, repo, post.ID, 3, "reply", parent.ID)
	other := seedComment(t, repo, post.ID, 4, "other", 0)

	// The reply is cascaded away by its parent before its own turn comes up.
	result, err := svc.BulkDeleteComments(ctx, []int64{parent.ID, reply.ID, other.ID}, 42)
	if err != nil {
		t.Fatalf("BulkDeleteComments failed: %v", err)
	}
	if len(result.Succeeded) != 2 {
		t.Errorf("succeeded = %v, want parent and other", result.Succeeded)
	}
	if len(result.Skipped) != 1 || result.Skipped[0] != reply.ID {
		t.Errorf("skipped = %v, want [%d]", result.Skipped, reply.ID)
	}
	if n := countRows(t, repo, &models.Comment{}); n != 0 {
		t.Errorf("comments remaining = %d, want 0", n)
	}
}

func TestBulkBlockUsers(t *testing.T) {
	repo := newTestRepo(t)
	client := &fakeClient{}
	approval := NewApprovalService(repo, client, newTestNotifier(client), testChannelConfig())
	deletion := NewDeletionService(repo, nil, testModerationConfig())
	users := NewUserService(repo)
	svc := NewBulkService(repo, approval, deletion, users)
	ctx := context.Background()

	seedUser(t, repo, 7)
	seedUser(t, repo, 8)

	result, err := svc.BulkBlockUsers(ctx, []int64{7, 8, 999}, 42)
	if err != nil {
		t.Fatalf("BulkBlockUsers failed: %v", err)
	}
	if len(result.Succeeded) != 2 || len(result.Skipped) != 1 {
		t.Errorf("result = %+v, want 2 succeeded, 1 skipped", result)
	}

	for _, id := range []int64{7, 8} {
		blocked, err := users.IsBlocked(ctx, id)
		if err != nil {
			t.Fatalf("IsBlocked failed: %v", err)
		}
		if !blocked {
			t.Errorf("user %d not blocked", id)
		}
	}
}

func TestBulkEmptyBatchLeavesNoAudit(t *testing.T) {
	repo := newTestRepo(t)
	client := &fakeClient{}
	approval := NewApprovalService(repo, client, newTestNotifier(client), testChannelConfig())
	deletion := NewDeletionService(repo, nil, testModerationConfig())
	svc := NewBulkService(repo, approval, deletion, NewUserService(repo))

	if _, err := svc.BulkApprove(context.Background(), nil, 42); err != nil {
		t.Fatalf("BulkApprove failed: %v", err)
	}
	if n := countRows(t, repo, &models.AdminAction{}); n != 0 {
		t.Errorf("audit rows = %d for empty batch, want 0", n)
	}
}
