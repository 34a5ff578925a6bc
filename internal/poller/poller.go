package poller

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"

	"basegraph.app/triage/common/logger"
	"basegraph.app/triage/internal/zulip"
)

type EventSource interface {
	Register(ctx context.Context, eventTypes []string, narrow zulip.Narrow) (zulip.Queue, error)
	GetEvents(ctx context.Context, queueID string, lastEventID int64) ([]zulip.Event, error)
}

type MessageHandler interface {
	Handle(ctx context.Context, msg zulip.Message)
}

type Config struct {
	RegisterDelay time.Duration
	PollDelay     time.Duration
}

func DefaultConfig() Config {
	return Config{RegisterDelay: 5 * time.Second, PollDelay: 2 * time.Second}
}

// Poller owns the event queue: it registers, long-polls and hands every
// message event to the handler on its own goroutine. A failed poll drops the
// queue and registers a new one, so events are delivered at most once.
type Poller struct {
	source  EventSource
	handler MessageHandler
	cfg     Config
}

func New(source EventSource, handler MessageHandler, cfg Config) *Poller {
	def := DefaultConfig()
	if cfg.RegisterDelay <= 0 {
		cfg.RegisterDelay = def.RegisterDelay
	}
	if cfg.PollDelay <= 0 {
		cfg.PollDelay = def.PollDelay
	}
	return &Poller{source: source, handler: handler, cfg: cfg}
}

// Run blocks until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) error {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "triage.poller"})
	slog.InfoContext(ctx, "poller started")

	for {
		queue, err := p.register(ctx)
		if err != nil {
			if ctx.Err() != nil {
				slog.InfoContext(ctx, "poller stopped")
				return nil
			}
			return fmt.Errorf("registering event queue: %w", err)
		}

		err = p.poll(ctx, queue)
		if ctx.Err() != nil {
			slog.InfoContext(ctx, "poller stopped")
			return nil
		}
		slog.ErrorContext(ctx, "polling failed; re-registering", "error", err, "queue_id", queue.QueueID)
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "poller stopped")
			return nil
		case <-time.After(p.cfg.PollDelay):
		}
	}
}

func (p *Poller) register(ctx context.Context) (zulip.Queue, error) {
	return backoff.Retry(ctx, func() (zulip.Queue, error) {
		queue, err := p.source.Register(ctx, []string{"message"}, nil)
		if err != nil {
			return zulip.Queue{}, err
		}
		slog.InfoContext(ctx, "registered event queue", "queue_id", queue.QueueID, "last_event_id", queue.LastEventID)
		return queue, nil
	},
		backoff.WithBackOff(backoff.NewConstantBackOff(p.cfg.RegisterDelay)),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(err error, next time.Duration) {
			slog.ErrorContext(ctx, "failed to register event queue", "error", err, "retry_in", next)
		}),
	)
}

func (p *Poller) poll(ctx context.Context, queue zulip.Queue) error {
	lastEventID := queue.LastEventID
	for {
		events, err := p.source.GetEvents(ctx, queue.QueueID, lastEventID)
		if err != nil {
			return err
		}
		for _, event := range events {
			lastEventID = event.ID
			if event.Type != "message" || event.Message == nil {
				continue
			}
			msg := *event.Message
			if len(msg.Flags) == 0 {
				msg.Flags = event.Flags
			}
			p.dispatchSafe(ctx, msg)
		}
	}
}

func (p *Poller) dispatchSafe(ctx context.Context, msg zulip.Message) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{MessageID: &msg.ID})
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "panic recovered in message handler", "panic", r)
		}
	}()
	p.handler.Handle(ctx, msg)
}
