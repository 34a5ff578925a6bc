package brain_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/triage/common/logger"
	"basegraph.app/triage/internal/brain"
	"basegraph.app/triage/internal/hints"
	"basegraph.app/triage/internal/model"
)

var _ = Describe("TriageService", func() {
	var (
		ctx      context.Context
		gatherer *mockGatherer
		analyzer *mockAnalyzer
		req      model.TriageRequest
	)

	BeforeEach(func() {
		ctx = context.Background()
		gatherer = &mockGatherer{results: []model.ToolResult{{Description: "api:a.go:1", Content: "x"}}}
		analyzer = &mockAnalyzer{reply: "analyzer reply"}
		req = model.TriageRequest{
			IncidentText:  "db down",
			ThreadContext: []string{"ana: since 10:00"},
			Channel:       logger.Ptr("ops"),
			Topic:         logger.Ptr("db"),
		}
	})

	It("returns the language model answer when there is one", func() {
		var gotEvidence []model.ToolResult
		agent := &mockAgent{enabled: true, runFn: func(_ context.Context, _ model.TriageRequest, evidence []model.ToolResult) brain.AgentOutcome {
			gotEvidence = evidence
			return brain.AgentOutcome{Status: brain.AgentAnswered, Text: "llm reply"}
		}}
		svc := brain.NewTriageService(gatherer, agent, analyzer, time.Minute)

		summary, err := svc.Run(ctx, req)

		Expect(err).NotTo(HaveOccurred())
		Expect(summary).To(Equal("llm reply"))
		Expect(gotEvidence).To(Equal(gatherer.results))
		Expect(analyzer.texts).To(BeEmpty())
	})

	It("falls back to the analyzer on the combined text when the model is disabled", func() {
		agent := &mockAgent{enabled: false}
		svc := brain.NewTriageService(gatherer, agent, analyzer, time.Minute)

		summary, err := svc.Run(ctx, req)

		Expect(err).NotTo(HaveOccurred())
		Expect(summary).To(Equal("analyzer reply"))
		Expect(gatherer.calls).To(Equal(1))
		Expect(agent.calls).To(BeZero())
		Expect(analyzer.texts).To(Equal([]string{req.CombinedText()}))
	})

	It("falls back when the model fails", func() {
		agent := &mockAgent{enabled: true, runFn: func(context.Context, model.TriageRequest, []model.ToolResult) brain.AgentOutcome {
			return brain.AgentOutcome{Status: brain.AgentError, Err: errors.New("exit 1")}
		}}
		svc := brain.NewTriageService(gatherer, agent, analyzer, time.Minute)

		summary, err := svc.Run(ctx, req)

		Expect(err).NotTo(HaveOccurred())
		Expect(summary).To(Equal("analyzer reply"))
	})

	It("bounds the model call with the configured timeout", func() {
		var deadline time.Time
		agent := &mockAgent{enabled: true, runFn: func(ctx context.Context, _ model.TriageRequest, _ []model.ToolResult) brain.AgentOutcome {
			deadline, _ = ctx.Deadline()
			return brain.AgentOutcome{Status: brain.AgentAnswered, Text: "ok"}
		}}
		svc := brain.NewTriageService(gatherer, agent, analyzer, 3*time.Second)

		_, err := svc.Run(ctx, req)

		Expect(err).NotTo(HaveOccurred())
		Expect(deadline).To(BeTemporally("~", time.Now().Add(3*time.Second), time.Second))
	})

	It("treats a nil agent as unavailable", func() {
		svc := brain.NewTriageService(gatherer, nil, analyzer, 0)

		summary, err := svc.Run(ctx, req)

		Expect(err).NotTo(HaveOccurred())
		Expect(summary).To(Equal("analyzer reply"))
	})

	It("stops when the context is cancelled", func() {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		svc := brain.NewTriageService(gatherer, nil, analyzer, 0)

		_, err := svc.Run(cancelled, req)

		Expect(err).To(MatchError(context.Canceled))
		Expect(gatherer.calls).To(BeZero())
	})

	It("asks for repositories when none exist and no model is configured", func() {
		searcher := &mockSearcher{}
		orchestrator := brain.NewOrchestrator(brain.OrchestratorConfig{}, searcher, hints.NewResolver(hints.MustDefault()))
		svc := brain.NewTriageService(orchestrator, &mockAgent{}, brain.NewAnalyzer(nil), 0)

		summary, err := svc.Run(ctx, req)

		Expect(err).NotTo(HaveOccurred())
		Expect(summary).To(Equal("I could not locate the local repos; please ensure they exist next to this project."))
	})
})

var _ = Describe("State", func() {
	DescribeTable("String",
		func(s brain.State, expected string) {
			Expect(s.String()).To(Equal(expected))
		},
		Entry("gather", brain.StateGather, "gather"),
		Entry("llm_attempt", brain.StateLLMAttempt, "llm_attempt"),
		Entry("fallback", brain.StateFallback, "fallback"),
		Entry("done", brain.StateDone, "done"),
	)
})
