package thread

import (
	"context"
	"log/slog"

	"basegraph.app/triage/internal/intake"
	"basegraph.app/triage/internal/zulip"
)

const (
	DefaultFetchLimit = 25
	keepLines         = 10
)

type MessageFetcher interface {
	FetchThreadMessages(ctx context.Context, stream, topic string, numBefore int) ([]zulip.Message, error)
}

// Resolver turns a conversation into "author: text" lines, oldest first.
type Resolver struct {
	fetcher    MessageFetcher
	fetchLimit int
}

func NewResolver(fetcher MessageFetcher, fetchLimit int) *Resolver {
	if fetchLimit <= 0 {
		fetchLimit = DefaultFetchLimit
	}
	return &Resolver{fetcher: fetcher, fetchLimit: fetchLimit}
}

// Resolve never fails: fetch errors and empty threads both yield no lines.
func (r *Resolver) Resolve(ctx context.Context, channel, topic string) []string {
	if channel == "" || topic == "" {
		return nil
	}

	messages, err := r.fetcher.FetchThreadMessages(ctx, channel, topic, r.fetchLimit)
	if err != nil {
		slog.WarnContext(ctx, "thread fetch failed; continuing without context",
			"channel", channel,
			"topic", topic,
			"error", err)
		return nil
	}
	if len(messages) == 0 {
		slog.WarnContext(ctx, "no messages returned for thread; continuing without context",
			"channel", channel,
			"topic", topic)
		return nil
	}

	slog.DebugContext(ctx, "fetched thread messages",
		"channel", channel,
		"topic", topic,
		"count", len(messages))

	if len(messages) > keepLines {
		messages = messages[len(messages)-keepLines:]
	}

	lines := make([]string, 0, len(messages))
	for _, msg := range messages {
		text := intake.PlainText(msg.Content)
		if text == "" {
			continue
		}
		author := msg.SenderFullName
		if author == "" {
			author = msg.SenderEmail
		}
		lines = append(lines, author+": "+text)
	}
	return lines
}
