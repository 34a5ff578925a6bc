package model

import (
	"fmt"
	"strings"
)

// TriageRequest is one unit of triage work: the incident text plus the thread
// lines that preceded it.
type TriageRequest struct {
	SenderEmail   string
	Channel       *string
	Topic         *string
	IncidentText  string
	ThreadContext []string
}

// CombinedText joins the incident text with a labelled block of thread
// context, one line each, skipping empty lines.
func (r TriageRequest) CombinedText() string {
	lines := []string{strings.TrimSpace(r.IncidentText)}
	if len(r.ThreadContext) > 0 {
		lines = append(lines, fmt.Sprintf("Thread context (latest %d messages):", len(r.ThreadContext)))
		lines = append(lines, r.ThreadContext...)
	}

	kept := lines[:0]
	for _, line := range lines {
		if line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

func (r TriageRequest) ChannelName() string {
	if r.Channel == nil {
		return ""
	}
	return *r.Channel
}

func (r TriageRequest) TopicName() string {
	if r.Topic == nil {
		return ""
	}
	return *r.Topic
}

// ToolResult is a labelled evidence snippet, e.g. "repo:path:line".
type ToolResult struct {
	Description string
	Content     string
}
