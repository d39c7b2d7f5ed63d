package moderation

import (
	"context"
	"errors"
	"testing"

	"github.com/confessly/confessly/internal/models"
)

func TestSubmitDeduplicatesPerReporter(t *testing.T) {
	repo := newTestRepo(t)
	client := &fakeClient{}
	svc := NewReportService(repo, nil, newTestNotifier(client), testModerationConfig())
	ctx := context.Background()

	seedUser(t, repo, 1)
	post := seedPost(t, repo, 1, "post")
	comment := seedComment(t, repo, post.ID, 2, "rude comment", 0)

	res, err := svc.Submit(ctx, 555, models.TargetTypeComment, comment.ID, "harassment")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if res.Duplicate || res.Total != 1 {
		t.Errorf("first submit = {dup:%v total:%d}, want {dup:false total:1}", res.Duplicate, res.Total)
	}

	res, err = svc.Submit(ctx, 555, models.TargetTypeComment, comment.ID, "spam")
	if err != nil {
		t.Fatalf("duplicate Submit failed: %v", err)
	}
	if !res.Duplicate || res.Total != 1 {
		t.Errorf("repeat submit = {dup:%v total:%d}, want {dup:true total:1}", res.Duplicate, res.Total)
	}

	res, err = svc.Submit(ctx, 556, models.TargetTypeComment, comment.ID, "spam")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if res.Duplicate || res.Total != 2 {
		t.Errorf("second reporter = {dup:%v total:%d}, want {dup:false total:2}", res.Duplicate, res.Total)
	}

	if n := countRows(t, repo, &models.Report{}); n != 2 {
		t.Errorf("stored reports = %d, want 2", n)
	}
}

func TestSubmitEscalatesAtThreshold(t *testing.T) {
	repo := newTestRepo(t)
	client := &fakeClient{}
	cfg := testModerationConfig()
	svc := NewReportService(repo, nil, newTestNotifier(client), cfg)
	ctx := context.Background()

	seedUser(t, repo, 1)
	post := seedPost(t, repo, 1, "a post people keep reporting")

	for reporter := int64(100); reporter < 104; reporter++ {
		res, err := svc.Submit(ctx, reporter, models.TargetTypePost, post.ID, "spam")
		if err != nil {
			t.Fatalf("Submit failed: %v", err)
		}
		if res.Escalated {
			t.Fatalf("escalated at %d reports, threshold is %d", res.Total, cfg.ReportThreshold)
		}
	}
	if len(client.sent) != 0 {
		t.Fatalf("admins notified before threshold: %d messages", len(client.sent))
	}

	res, err := svc.Submit(ctx, 104, models.TargetTypePost, post.ID, "spam")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if !res.Escalated || res.Total != 5 {
		t.Fatalf("fifth report = {escalated:%v total:%d}, want {escalated:true total:5}", res.Escalated, res.Total)
	}
	if got := len(client.sent); got != len(cfg.AdminIDs) {
		t.Errorf("admin notifications = %d, want %d", got, len(cfg.AdminIDs))
	}

	// Every further distinct report re-alerts; duplicates stay silent.
	res, err = svc.Submit(ctx, 105, models.TargetTypePost, post.ID, "spam")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if !res.Escalated {
		t.Error("sixth distinct report did not escalate")
	}
	before := len(client.sent)
	if _, err := svc.Submit(ctx, 105, models.TargetTypePost, post.ID, "spam"); err != nil {
		t.Fatalf("duplicate Submit failed: %v", err)
	}
	if len(client.sent) != before {
		t.Error("duplicate report triggered notifications")
	}
}

func TestDismissResetsEscalation(t *testing.T) {
	repo := newTestRepo(t)
	client := &fakeClient{}
	svc := NewReportService(repo, nil, newTestNotifier(client), testModerationConfig())
	ctx := context.Background()

	seedUser(t, repo, 1)
	post := seedPost(t, repo, 1, "post")
	for reporter := int64(100); reporter < 105; reporter++ {
		if _, err := svc.Submit(ctx, reporter, models.TargetTypePost, post.ID, "spam"); err != nil {
			t.Fatalf("Submit failed: %v", err)
		}
	}

	dismissed, err := svc.Dismiss(ctx, models.TargetTypePost, post.ID)
	if err != nil {
		t.Fatalf("Dismiss failed: %v", err)
	}
	if dismissed != 5 {
		t.Errorf("dismissed = %d, want 5", dismissed)
	}

	count, err := svc.Count(ctx, models.TargetTypePost, post.ID)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 0 {
		t.Errorf("count after dismissal = %d, want 0", count)
	}

	// The same reporters can report again and the target escalates afresh.
	res, err := svc.Submit(ctx, 100, models.TargetTypePost, post.ID, "spam")
	if err != nil {
		t.Fatalf("Submit after dismissal failed: %v", err)
	}
	if res.Duplicate || res.Total != 1 || res.Escalated {
		t.Errorf("post-dismissal submit = %+v, want fresh count of 1", res)
	}
}

func TestSubmitTargetNotFound(t *testing.T) {
	repo := newTestRepo(t)
	client := &fakeClient{}
	svc := NewReportService(repo, nil, newTestNotifier(client), testModerationConfig())

	_, err := svc.Submit(context.Background(), 555, models.TargetTypePost, 999, "spam")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Submit error = %v, want ErrNotFound", err)
	}
}

func TestSubmitRejectsUnknownTargetType(t *testing.T) {
	repo := newTestRepo(t)
	client := &fakeClient{}
	svc := NewReportService(repo, nil, newTestNotifier(client), testModerationConfig())

	if _, err := svc.Submit(context.Background(), 555, "channel", 1, "spam"); err == nil {
		t.Fatal("Submit accepted an unknown target type")
	}
}
