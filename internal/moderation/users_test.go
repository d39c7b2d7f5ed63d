package moderation

import (
	"context"
	"errors"
	"testing"
)

func TestSetBlockedRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	svc := NewUserService(repo)
	ctx := context.Background()

	seedUser(t, repo, 7)

	if err := svc.SetBlocked(ctx, 7, true); err != nil {
		t.Fatalf("SetBlocked failed: %v", err)
	}
	blocked, err := svc.IsBlocked(ctx, 7)
	if err != nil {
		t.Fatalf("IsBlocked failed: %v", err)
	}
	if !blocked {
		t.Error("user not blocked")
	}

	if err := svc.SetBlocked(ctx, 7, false); err != nil {
		t.Fatalf("unblock failed: %v", err)
	}
	blocked, err = svc.IsBlocked(ctx, 7)
	if err != nil {
		t.Fatalf("IsBlocked failed: %v", err)
	}
	if blocked {
		t.Error("user still blocked after unblock")
	}
}

func TestSetBlockedUnknownUser(t *testing.T) {
	repo := newTestRepo(t)
	svc := NewUserService(repo)

	if err := svc.SetBlocked(context.Background(), 999, true); !errors.Is(err, ErrNotFound) {
		t.Fatalf("SetBlocked error = %v, want ErrNotFound", err)
	}

	blocked, err := svc.IsBlocked(context.Background(), 999)
	if err != nil {
		t.Fatalf("IsBlocked failed: %v", err)
	}
	if blocked {
		t.Error("unknown user reported as blocked")
	}
}
