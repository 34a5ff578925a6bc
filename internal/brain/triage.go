package brain

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"basegraph.app/triage/common/id"
	"basegraph.app/triage/common/logger"
	"basegraph.app/triage/internal/incident"
	"basegraph.app/triage/internal/model"
)

// State is a step of one triage run.
type State int

const (
	StateGather State = iota
	StateLLMAttempt
	StateFallback
	StateDone
)

func (s State) String() string {
	switch s {
	case StateGather:
		return "gather"
	case StateLLMAttempt:
		return "llm_attempt"
	case StateFallback:
		return "fallback"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

type Gatherer interface {
	Gather(ctx context.Context, req model.TriageRequest) []model.ToolResult
}

type FallbackAnalyzer interface {
	Analyze(ctx context.Context, text string) string
}

// TriageService runs the decision ladder: gather evidence, ask the language
// model, and fall back to the keyword analyzer when it has no answer.
type TriageService struct {
	gatherer   Gatherer
	agent      Agent
	analyzer   FallbackAnalyzer
	llmTimeout time.Duration
}

func NewTriageService(gatherer Gatherer, agent Agent, analyzer FallbackAnalyzer, llmTimeout time.Duration) *TriageService {
	return &TriageService{
		gatherer:   gatherer,
		agent:      agent,
		analyzer:   analyzer,
		llmTimeout: llmTimeout,
	}
}

// Run returns the reply text for req. Evidence feeds only the LLM tier; the
// analyzer sees the combined request text.
func (s *TriageService) Run(ctx context.Context, req model.TriageRequest) (string, error) {
	triageID := id.New()
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		TriageID:    &triageID,
		IncidentKey: logger.Ptr(incident.Key(req.Channel, req.Topic)),
		Component:   "triage.brain.triage",
	})

	sc := logger.StartSpan(ctx, "brain.triage.run")
	defer sc.End()
	ctx = sc.Context()

	slog.InfoContext(ctx, "triage run started")
	start := id.Time(triageID)

	var (
		evidence []model.ToolResult
		summary  string
	)
	state := StateGather
	for state != StateDone {
		if err := ctx.Err(); err != nil {
			sc.RecordError(err)
			return "", fmt.Errorf("triage %s: %w", state, err)
		}

		switch state {
		case StateGather:
			evidence = s.gatherer.Gather(ctx, req)
			state = StateLLMAttempt

		case StateLLMAttempt:
			outcome := s.attemptLLM(ctx, req, evidence)
			if outcome.Status == AgentAnswered {
				summary = outcome.Text
				state = StateDone
				continue
			}
			slog.InfoContext(ctx, "LLM unavailable or returned no result; falling back to keyword analyzer",
				"status", outcome.Status,
				"error", outcome.Err)
			state = StateFallback

		case StateFallback:
			summary = s.analyzer.Analyze(ctx, req.CombinedText())
			state = StateDone
		}
	}

	sc.SetAttributes(attribute.Int("triage.evidence_count", len(evidence)))
	slog.InfoContext(ctx, "triage run finished",
		"evidence_count", len(evidence),
		"duration_ms", time.Since(start).Milliseconds())
	return summary, nil
}

func (s *TriageService) attemptLLM(ctx context.Context, req model.TriageRequest, evidence []model.ToolResult) AgentOutcome {
	if s.agent == nil || !s.agent.Enabled() {
		return AgentOutcome{Status: AgentUnavailable}
	}

	sc := logger.StartSpan(ctx, "brain.triage.llm")
	defer sc.End()
	ctx = sc.Context()

	if s.llmTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.llmTimeout)
		defer cancel()
	}

	outcome := s.agent.Run(ctx, req, evidence)
	if outcome.Err != nil {
		sc.RecordError(outcome.Err)
	}
	return outcome
}

func withComponent(ctx context.Context, component string) context.Context {
	return logger.WithLogFields(ctx, logger.LogFields{Component: component})
}
