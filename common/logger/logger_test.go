package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"unicode/utf8"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/triage/common/logger"
)

var _ = Describe("TraceHandler", func() {
	It("adds context log fields to every record", func() {
		var buf bytes.Buffer
		log := slog.New(logger.NewTraceHandler(slog.NewJSONHandler(&buf, nil)))

		ctx := logger.WithLogFields(context.Background(), logger.LogFields{
			TriageID:  logger.Ptr(int64(42)),
			Component: "triage.brain",
		})
		ctx = logger.WithLogFields(ctx, logger.LogFields{
			IncidentKey: logger.Ptr("ops::db"),
		})
		log.InfoContext(ctx, "hello")

		var record map[string]any
		Expect(json.Unmarshal(buf.Bytes(), &record)).To(Succeed())
		Expect(record).To(HaveKeyWithValue("triage_id", BeNumerically("==", 42)))
		Expect(record).To(HaveKeyWithValue("incident_key", "ops::db"))
		Expect(record).To(HaveKeyWithValue("component", "triage.brain"))
		Expect(record).NotTo(HaveKey("trace_id"))
	})
})

var _ = Describe("Truncate", func() {
	It("keeps short strings", func() {
		Expect(logger.Truncate("abc", 5)).To(Equal("abc"))
	})

	It("cuts long strings", func() {
		Expect(logger.Truncate("abcdef", 3)).To(Equal("abc..."))
	})

	It("cuts on rune boundaries", func() {
		out := logger.Truncate("héllo wörld", 2)

		Expect(out).To(Equal("hé..."))
		Expect(utf8.ValidString(out)).To(BeTrue())
	})

	It("keeps multibyte strings within the rune limit", func() {
		Expect(logger.Truncate("ümlaut", 6)).To(Equal("ümlaut"))
	})
})
