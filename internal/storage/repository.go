// Package storage owns the SQLite-backed queue of scheduled posts.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"cardgenius/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// CreatePost inserts a pending post and returns its ID.
func (r *SQLiteRepository) CreatePost(ctx context.Context, p core.Post) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO posts (card_slug, platform, body, scheduled_at, status) VALUES (?, ?, ?, ?, ?)`,
		p.CardSlug, string(p.Platform), p.Body, p.ScheduledAt.UTC(), string(core.PostPending))
	if err != nil {
		return 0, fmt.Errorf("create post: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("create post id: %w", err)
	}

	slog.InfoContext(ctx, "Post scheduled",
		"id", id, "card_slug", p.CardSlug, "platform", p.Platform, "scheduled_at", p.ScheduledAt)
	return id, nil
}

// GetPost fetches one post by ID.
func (r *SQLiteRepository) GetPost(ctx context.Context, id int64) (core.Post, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, card_slug, platform, body, scheduled_at, status, retries, published_at, created_at
		 FROM posts WHERE id = ?`, id)
	post, err := scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Post{}, core.ErrPostNotFound
	}
	if err != nil {
		return core.Post{}, fmt.Errorf("get post %d: %w", id, err)
	}
	return post, nil
}

// ListPosts returns posts newest-first, optionally filtered by status.
func (r *SQLiteRepository) ListPosts(ctx context.Context, status core.PostStatus) ([]core.Post, error) {
	query := `SELECT id, card_slug, platform, body, scheduled_at, status, retries, published_at, created_at
		 FROM posts`
	args := []any{}
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY scheduled_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	var posts []core.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

// DeletePost removes a post from the queue.
func (r *SQLiteRepository) DeletePost(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete post %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrPostNotFound
	}
	return nil
}

// DuePosts returns up to limit pending posts whose schedule time has
// passed, oldest first.
func (r *SQLiteRepository) DuePosts(ctx context.Context, now time.Time, limit int) ([]core.Post, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, card_slug, platform, body, scheduled_at, status, retries, published_at, created_at
		 FROM posts WHERE status = ? AND scheduled_at <= ? ORDER BY scheduled_at ASC LIMIT ?`,
		string(core.PostPending), now.UTC(), limit)
	if err != nil {
		return nil, fmt.Errorf("due posts: %w", err)
	}
	defer rows.Close()

	var posts []core.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan due post: %w", err)
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

// MarkPublishing claims a pending post. Returns ErrPostNotFound when the
// post was already claimed or removed, so competing workers skip it.
func (r *SQLiteRepository) MarkPublishing(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE posts SET status = ? WHERE id = ? AND status = ?`,
		string(core.PostPublishing), id, string(core.PostPending))
	if err != nil {
		return fmt.Errorf("mark post %d publishing: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrPostNotFound
	}
	return nil
}

// MarkPublished finalizes a post.
func (r *SQLiteRepository) MarkPublished(ctx context.Context, id int64, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE posts SET status = ?, published_at = ? WHERE id = ?`,
		string(core.PostPublished), at.UTC(), id)
	if err != nil {
		return fmt.Errorf("mark post %d published: %w", id, err)
	}
	slog.InfoContext(ctx, "Post published", "id", id)
	return nil
}

// RecordFailure bumps the retry counter. The post goes back to pending
// until maxRetries is reached, then parks as failed. Reports whether the
// post is now terminally failed.
func (r *SQLiteRepository) RecordFailure(ctx context.Context, id int64, maxRetries int) (bool, error) {
	var retries int
	if err := r.db.QueryRowContext(ctx, `SELECT retries FROM posts WHERE id = ?`, id).Scan(&retries); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, core.ErrPostNotFound
		}
		return false, fmt.Errorf("read post %d retries: %w", id, err)
	}

	retries++
	status := core.PostPending
	failed := retries >= maxRetries
	if failed {
		status = core.PostFailed
	}

	_, err := r.db.ExecContext(ctx,
		`UPDATE posts SET status = ?, retries = ? WHERE id = ?`,
		string(status), retries, id)
	if err != nil {
		return false, fmt.Errorf("record post %d failure: %w", id, err)
	}

	slog.WarnContext(ctx, "Post publish attempt failed", "id", id, "retries", retries, "terminal", failed)
	return failed, nil
}

// ResetStalePublishing returns posts stuck in publishing (from a crashed
// worker) to pending.
func (r *SQLiteRepository) ResetStalePublishing(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE posts SET status = ? WHERE status = ?`,
		string(core.PostPending), string(core.PostPublishing))
	if err != nil {
		return 0, fmt.Errorf("reset stale publishing posts: %w", err)
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		slog.InfoContext(ctx, "Reset stale publishing posts", "count", n)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (core.Post, error) {
	var (
		p           core.Post
		platform    string
		status      string
		publishedAt sql.NullTime
	)
	err := row.Scan(&p.ID, &p.CardSlug, &platform, &p.Body, &p.ScheduledAt, &status, &p.Retries, &publishedAt, &p.CreatedAt)
	if err != nil {
		return core.Post{}, err
	}
	p.Platform = core.Platform(platform)
	p.Status = core.PostStatus(status)
	if publishedAt.Valid {
		p.PublishedAt = publishedAt.Time
	}
	return p, nil
}
