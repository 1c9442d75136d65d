// Package scheduler drives the scheduled-post queue: claiming due posts,
// publishing them, and recording the result.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"cardgenius/internal/amqp"
	"cardgenius/internal/calendar"
	"cardgenius/internal/core"
)

// Queue is the storage surface the processor needs.
type Queue interface {
	DuePosts(ctx context.Context, now time.Time, limit int) ([]core.Post, error)
	MarkPublishing(ctx context.Context, id int64) error
	MarkPublished(ctx context.Context, id int64, at time.Time) error
	RecordFailure(ctx context.Context, id int64, maxRetries int) (bool, error)
	ResetStalePublishing(ctx context.Context) (int64, error)
}

// Notifier announces published posts downstream.
type Notifier interface {
	PublishPostPublished(ctx context.Context, msg *amqp.PostPublishedMessage) error
}

// Publisher delivers a post to its social platform. A nil publisher
// means dry-run mode: posts are stamped published without an outbound
// call.
type Publisher interface {
	Publish(ctx context.Context, post core.Post) error
}

// LogPublisher writes outgoing posts to the log instead of a real
// platform API. It stands in until platform credentials are wired up.
type LogPublisher struct{}

func (LogPublisher) Publish(ctx context.Context, post core.Post) error {
	slog.InfoContext(ctx, "Publishing post",
		"post_id", post.ID,
		"card_slug", post.CardSlug,
		"platform", post.Platform,
		"chars", len(post.Body))
	return nil
}

// Config holds processor tuning knobs.
type Config struct {
	// PollInterval is how often to check for due posts.
	PollInterval time.Duration

	// BatchSize is the max number of posts claimed per poll cycle.
	BatchSize int

	// MaxRetries is the attempt limit before a post parks as failed.
	MaxRetries int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		PollInterval: 30 * time.Second,
		BatchSize:    10,
		MaxRetries:   3,
	}
}

// Processor polls the queue and pushes due posts out.
type Processor struct {
	queue     Queue
	publisher Publisher
	notifier  Notifier
	calendar  calendar.Writer
	config    Config
	now       func() time.Time

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewProcessor(queue Queue, publisher Publisher, notifier Notifier, cal calendar.Writer, config Config) *Processor {
	return &Processor{
		queue:     queue,
		publisher: publisher,
		notifier:  notifier,
		calendar:  cal,
		config:    config,
		now:       time.Now,
	}
}

// Start begins the polling loop. Returns an error if already running.
func (p *Processor) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("post processor is already running")
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	p.mu.Unlock()

	// Posts stuck in publishing from a crashed worker go back to pending.
	if _, err := p.queue.ResetStalePublishing(ctx); err != nil {
		slog.WarnContext(ctx, "Failed to reset stale publishing posts", "error", err)
	}

	go p.runLoop(ctx)

	slog.InfoContext(ctx, "Post processor started",
		"poll_interval", p.config.PollInterval,
		"batch_size", p.config.BatchSize)
	return nil
}

// Stop halts the loop and waits for it, bounded by ctx.
func (p *Processor) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()

	close(p.stopCh)

	select {
	case <-p.doneCh:
		slog.InfoContext(ctx, "Post processor stopped gracefully")
	case <-ctx.Done():
		slog.WarnContext(ctx, "Post processor stop timed out")
		return ctx.Err()
	}

	p.mu.Lock()
	p.running = false
	p.mu.Unlock()
	return nil
}

func (p *Processor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *Processor) runLoop(ctx context.Context) {
	defer close(p.doneCh)

	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	// Process immediately on startup.
	p.ProcessDue(ctx)

	for {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.ProcessDue(ctx)
		}
	}
}

// ProcessDue claims and publishes one batch of due posts. Exported so
// the worker can trigger a pass outside the ticker.
func (p *Processor) ProcessDue(ctx context.Context) {
	now := p.now()

	due, err := p.queue.DuePosts(ctx, now, p.config.BatchSize)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to fetch due posts", "error", err)
		return
	}
	if len(due) == 0 {
		return
	}

	slog.DebugContext(ctx, "Processing due posts", "count", len(due))

	for _, post := range due {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		default:
		}

		// Another worker may have claimed it since the query.
		if err := p.queue.MarkPublishing(ctx, post.ID); err != nil {
			continue
		}

		if err := p.publish(ctx, post); err != nil {
			if _, ferr := p.queue.RecordFailure(ctx, post.ID, p.config.MaxRetries); ferr != nil {
				slog.ErrorContext(ctx, "Failed to record publish failure",
					"post_id", post.ID, "error", ferr)
			}
			continue
		}
	}
}

// publish pushes one claimed post out and records where it went. The
// notification and calendar append are best-effort: the post is already
// live, so their failures log instead of rolling it back.
func (p *Processor) publish(ctx context.Context, post core.Post) error {
	if p.publisher != nil {
		if err := p.publisher.Publish(ctx, post); err != nil {
			return fmt.Errorf("publish post %d to %s: %w", post.ID, post.Platform, err)
		}
	}

	at := p.now()

	if err := p.queue.MarkPublished(ctx, post.ID, at); err != nil {
		return fmt.Errorf("mark published: %w", err)
	}
	post.PublishedAt = at
	post.Status = core.PostPublished

	if p.notifier != nil {
		msg := amqp.NewPostPublishedMessage(post.ID, post.CardSlug, string(post.Platform), at)
		if err := p.notifier.PublishPostPublished(ctx, msg); err != nil {
			slog.WarnContext(ctx, "Failed to publish post notification",
				"post_id", post.ID, "error", err)
		}
	}

	if p.calendar != nil {
		if ref, err := p.calendar.AppendPublished(ctx, post); err != nil {
			slog.WarnContext(ctx, "Failed to record post on content calendar",
				"post_id", post.ID, "error", err)
		} else {
			slog.InfoContext(ctx, "Post recorded on calendar", "post_id", post.ID, "ref", ref)
		}
	}

	return nil
}
