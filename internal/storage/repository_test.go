package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"cardgenius/internal/core"
)

func testRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func testPost(scheduledAt time.Time) core.Post {
	return core.Post{
		CardSlug:    "hdfc-millennia",
		Platform:    core.PlatformTwitter,
		Body:        "5% cashback on Amazon with the Millennia card.",
		ScheduledAt: scheduledAt,
	}
}

func TestCreateAndGetPost(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	when := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	id, err := repo.CreatePost(ctx, testPost(when))
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}

	post, err := repo.GetPost(ctx, id)
	if err != nil {
		t.Fatalf("GetPost: %v", err)
	}
	if post.Status != core.PostPending {
		t.Errorf("Status = %q, want pending", post.Status)
	}
	if !post.ScheduledAt.Equal(when) {
		t.Errorf("ScheduledAt = %v, want %v", post.ScheduledAt, when)
	}
	if post.CardSlug != "hdfc-millennia" || post.Platform != core.PlatformTwitter {
		t.Errorf("post mapped wrong: %+v", post)
	}
}

func TestGetPostNotFound(t *testing.T) {
	repo := testRepo(t)
	if _, err := repo.GetPost(context.Background(), 999); !errors.Is(err, core.ErrPostNotFound) {
		t.Errorf("err = %v, want ErrPostNotFound", err)
	}
}

func TestDuePostsOnlyPendingAndDue(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	dueID, _ := repo.CreatePost(ctx, testPost(now.Add(-time.Hour)))
	repo.CreatePost(ctx, testPost(now.Add(time.Hour))) // future, not due
	claimedID, _ := repo.CreatePost(ctx, testPost(now.Add(-2*time.Hour)))
	repo.MarkPublishing(ctx, claimedID)

	due, err := repo.DuePosts(ctx, now, 10)
	if err != nil {
		t.Fatalf("DuePosts: %v", err)
	}
	if len(due) != 1 || due[0].ID != dueID {
		t.Errorf("due = %+v, want only post %d", due, dueID)
	}
}

func TestMarkPublishingClaimsOnce(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	id, _ := repo.CreatePost(ctx, testPost(time.Now().UTC()))

	if err := repo.MarkPublishing(ctx, id); err != nil {
		t.Fatalf("first claim: %v", err)
	}
	if err := repo.MarkPublishing(ctx, id); !errors.Is(err, core.ErrPostNotFound) {
		t.Errorf("second claim err = %v, want ErrPostNotFound", err)
	}
}

func TestPublishLifecycle(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	id, _ := repo.CreatePost(ctx, testPost(time.Now().UTC()))
	repo.MarkPublishing(ctx, id)

	at := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)
	if err := repo.MarkPublished(ctx, id, at); err != nil {
		t.Fatalf("MarkPublished: %v", err)
	}

	post, _ := repo.GetPost(ctx, id)
	if post.Status != core.PostPublished {
		t.Errorf("Status = %q, want published", post.Status)
	}
	if !post.PublishedAt.Equal(at) {
		t.Errorf("PublishedAt = %v, want %v", post.PublishedAt, at)
	}
}

func TestRecordFailureRetriesThenParks(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	id, _ := repo.CreatePost(ctx, testPost(time.Now().UTC()))

	for i := 1; i <= 3; i++ {
		failed, err := repo.RecordFailure(ctx, id, 3)
		if err != nil {
			t.Fatalf("RecordFailure #%d: %v", i, err)
		}
		wantFailed := i == 3
		if failed != wantFailed {
			t.Errorf("attempt %d: failed = %v, want %v", i, failed, wantFailed)
		}
	}

	post, _ := repo.GetPost(ctx, id)
	if post.Status != core.PostFailed || post.Retries != 3 {
		t.Errorf("post = %+v, want failed with 3 retries", post)
	}
}

func TestResetStalePublishing(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	id, _ := repo.CreatePost(ctx, testPost(time.Now().UTC()))
	repo.MarkPublishing(ctx, id)

	n, err := repo.ResetStalePublishing(ctx)
	if err != nil {
		t.Fatalf("ResetStalePublishing: %v", err)
	}
	if n != 1 {
		t.Errorf("reset %d posts, want 1", n)
	}
	post, _ := repo.GetPost(ctx, id)
	if post.Status != core.PostPending {
		t.Errorf("Status = %q, want pending after reset", post.Status)
	}
}

func TestListPostsFilterAndDelete(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	a, _ := repo.CreatePost(ctx, testPost(time.Now().UTC()))
	b, _ := repo.CreatePost(ctx, testPost(time.Now().UTC().Add(time.Hour)))
	repo.MarkPublishing(ctx, a)
	repo.MarkPublished(ctx, a, time.Now().UTC())

	pending, err := repo.ListPosts(ctx, core.PostPending)
	if err != nil {
		t.Fatalf("ListPosts: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != b {
		t.Errorf("pending = %+v, want only post %d", pending, b)
	}

	all, _ := repo.ListPosts(ctx, "")
	if len(all) != 2 {
		t.Errorf("all = %d posts, want 2", len(all))
	}

	if err := repo.DeletePost(ctx, b); err != nil {
		t.Fatalf("DeletePost: %v", err)
	}
	if err := repo.DeletePost(ctx, b); !errors.Is(err, core.ErrPostNotFound) {
		t.Errorf("second delete err = %v, want ErrPostNotFound", err)
	}
}
