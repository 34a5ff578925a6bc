package otel_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"basegraph.app/triage/common/otel"
	"basegraph.app/triage/core/config"
)

var _ = Describe("ParseHeaders", func() {
	DescribeTable("parses OTLP header strings",
		func(input string, want map[string]string) {
			Expect(otel.ParseHeaders(input)).To(Equal(want))
		},
		Entry("empty", "", map[string]string{}),
		Entry("single", "x-api-key=abc", map[string]string{"x-api-key": "abc"}),
		Entry("multiple with spaces", " a = 1 , b=2", map[string]string{"a": "1", "b": "2"}),
		Entry("skips malformed", "novalue,=x,c=3", map[string]string{"c": "3"}),
		Entry("keeps equals in value", "auth=Basic a=b", map[string]string{"auth": "Basic a=b"}),
	)
})

var _ = Describe("Setup", func() {
	It("is a no-op without an endpoint", func() {
		telemetry, err := otel.Setup(context.Background(), config.OTelConfig{ServiceName: "triage-bot"})

		Expect(err).NotTo(HaveOccurred())
		Expect(telemetry).To(BeNil())
	})
})

var _ = Describe("Sampler", func() {
	DescribeTable("decides root spans by ratio",
		func(ratio float64, expected sdktrace.SamplingDecision) {
			result := otel.Sampler(ratio).ShouldSample(sdktrace.SamplingParameters{
				ParentContext: context.Background(),
				TraceID:       trace.TraceID{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff},
				Name:          "brain.triage.run",
			})
			Expect(result.Decision).To(Equal(expected))
		},
		Entry("everything", 1.0, sdktrace.RecordAndSample),
		Entry("above one", 3.0, sdktrace.RecordAndSample),
		Entry("nothing", 0.0, sdktrace.Drop),
		Entry("negative", -1.0, sdktrace.Drop),
		Entry("a fraction drops high trace ids", 0.1, sdktrace.Drop),
	)

	It("follows a sampled parent even at ratio zero", func() {
		parent := trace.NewSpanContext(trace.SpanContextConfig{
			TraceID:    trace.TraceID{1},
			SpanID:     trace.SpanID{1},
			TraceFlags: trace.FlagsSampled,
		})
		ctx := trace.ContextWithSpanContext(context.Background(), parent)

		result := otel.Sampler(0).ShouldSample(sdktrace.SamplingParameters{
			ParentContext: ctx,
			TraceID:       trace.TraceID{1},
			Name:          "brain.triage.llm",
		})

		Expect(result.Decision).To(Equal(sdktrace.RecordAndSample))
	})
})
