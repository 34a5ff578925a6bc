package keywords_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/triage/internal/keywords"
)

var _ = Describe("Broad", func() {
	It("ranks by frequency and breaks ties by first appearance", func() {
		text := "payments timeout on checkout. checkout retries hit payments db; checkout again"
		Expect(keywords.Broad(text, 3)).To(Equal([]string{"checkout", "payments", "timeout"}))
	})

	It("drops stop-words and pure numbers but keeps mixed tokens", func() {
		text := "Hey team, please triage: 500 errors on 5xx_dashboard cc @ops 2024"
		Expect(keywords.Broad(text, 12)).To(Equal([]string{"errors", "on", "5xx_dashboard", "ops"}))
	})

	It("keeps hyphens and underscores inside tokens", func() {
		Expect(keywords.Broad("custom-metrics metric_groups", 12)).To(Equal([]string{"custom-metrics", "metric_groups"}))
	})

	It("uses the default limit when none is given", func() {
		text := "aa bb cc1 dd ee ff gg hh ii jj kk ll mm nn"
		Expect(keywords.Broad(text, 0)).To(HaveLen(keywords.DefaultBroadLimit))
	})

	It("returns an empty list for text without tokens", func() {
		Expect(keywords.Broad("!! 1 2 3", 5)).To(BeEmpty())
	})

	It("is deterministic across calls", func() {
		text := "redis redis queue worker queue latency spikes latency redis"
		first := keywords.Broad(text, 12)
		for range 20 {
			Expect(keywords.Broad(text, 12)).To(Equal(first))
		}
	})
})

var _ = Describe("Narrow", func() {
	DescribeTable("extracts unique alphabetic words in first-seen order",
		func(text string, limit int, expected []string) {
			Expect(keywords.Narrow(text, limit)).To(Equal(expected))
		},
		Entry("skips stop-words and short words", "The dashboard report failed when loading widgets", 4,
			[]string{"dashboard", "report", "loading", "widgets"}),
		Entry("stops at the limit", "alpha beta gamma delta epsilon", 2, []string{"alpha", "beta"}),
		Entry("deduplicates", "Sync sync SYNC worker", 4, []string{"sync", "worker"}),
		Entry("splits on digits and punctuation", "oauth2token re-auth", 4, []string{"oauth", "token", "auth"}),
		Entry("nothing left", "the prod error", 4, []string(nil)),
	)

	It("defaults to four keywords", func() {
		Expect(keywords.Narrow("alpha beta gamma delta epsilon zeta", 0)).To(HaveLen(4))
	})
})
