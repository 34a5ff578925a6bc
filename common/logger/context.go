package logger

import "context"

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields are attached to every log record emitted with the carrying context.
type LogFields struct {
	TriageID    *int64  // Snowflake id of one triage run
	MessageID   *int64  // Zulip message id that triggered the work
	IncidentKey *string // channel::topic
	Channel     *string
	Topic       *string
	Component   string // e.g. "triage.brain.orchestrator"
}

// WithLogFields merges fields into ctx. Newer non-nil values win.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	merged := mergeFields(GetLogFields(ctx), fields)
	return context.WithValue(ctx, logFieldsKey, merged)
}

func GetLogFields(ctx context.Context) LogFields {
	if fields, ok := ctx.Value(logFieldsKey).(LogFields); ok {
		return fields
	}
	return LogFields{}
}

func mergeFields(existing, next LogFields) LogFields {
	result := existing
	if next.TriageID != nil {
		result.TriageID = next.TriageID
	}
	if next.MessageID != nil {
		result.MessageID = next.MessageID
	}
	if next.IncidentKey != nil {
		result.IncidentKey = next.IncidentKey
	}
	if next.Channel != nil {
		result.Channel = next.Channel
	}
	if next.Topic != nil {
		result.Topic = next.Topic
	}
	if next.Component != "" {
		result.Component = next.Component
	}
	return result
}

func Ptr[T any](v T) *T {
	return &v
}

// Truncate shortens s to maxLen runes, appending "..." when cut.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	n := 0
	for i := range s {
		if n == maxLen {
			return s[:i] + "..."
		}
		n++
	}
	return s
}
