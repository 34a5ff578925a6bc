package brain

import (
	"context"
	"errors"
	"strings"

	"basegraph.app/triage/internal/model"
)

type AgentStatus string

const (
	AgentAnswered    AgentStatus = "answered"
	AgentUnavailable AgentStatus = "unavailable"
	AgentError       AgentStatus = "error"
)

var ErrEmptyAnswer = errors.New("language model returned an empty answer")

// AgentOutcome is the result of one LLM tier attempt. Text is set only when
// Status is AgentAnswered.
type AgentOutcome struct {
	Status AgentStatus
	Text   string
	Err    error
}

func answered(text string) AgentOutcome {
	return AgentOutcome{Status: AgentAnswered, Text: text}
}

func failed(err error) AgentOutcome {
	return AgentOutcome{Status: AgentError, Err: err}
}

// Agent is the language-model tier. Enabled reports the result of the
// capability check done at construction.
type Agent interface {
	Enabled() bool
	Run(ctx context.Context, req model.TriageRequest, evidence []model.ToolResult) AgentOutcome
}

const (
	promptContextLines = 8
	promptEvidence     = 5
)

const systemFraming = "You are an engineering on-call assistant responding over Zulip. " +
	"Use the evidence below to propose the most likely root cause, explicitly call out unknowns, " +
	"and ask for clarification if critical data is missing."

const outputInstructions = "Respond in Markdown with sections: **Finding** (state HIGH/MED/LOW confidence and justify it), " +
	"**Evidence** (cite repo paths or runbooks), **Next steps**, and **Open questions** when you need more info. " +
	"If confidence would be LOW, prefer to explain what additional data is needed before making a definitive claim."

// BuildPrompt lays out the incident, the last few thread lines and the top
// evidence snippets for the model.
func BuildPrompt(req model.TriageRequest, evidence []model.ToolResult) string {
	lines := []string{systemFraming, "", "Incident:", req.IncidentText, ""}

	if len(req.ThreadContext) > 0 {
		thread := req.ThreadContext
		if len(thread) > promptContextLines {
			thread = thread[len(thread)-promptContextLines:]
		}
		lines = append(lines, "Thread context:")
		lines = append(lines, thread...)
		lines = append(lines, "")
	}

	if len(evidence) > 0 {
		top := evidence
		if len(top) > promptEvidence {
			top = top[:promptEvidence]
		}
		lines = append(lines, "Evidence from tools:")
		for _, result := range top {
			lines = append(lines, result.Description+"\n"+result.Content+"\n")
		}
	}

	lines = append(lines, outputInstructions)
	return strings.Join(lines, "\n")
}
