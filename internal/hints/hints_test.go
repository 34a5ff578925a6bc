package hints_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/triage/internal/hints"
	"basegraph.app/triage/internal/model"
)

var _ = Describe("Registry", func() {
	It("loads the built-in hints", func() {
		registry := hints.MustDefault()

		Expect(registry.All()).To(HaveLen(14))
		hint, ok := registry.Get("google_ads_breakdowns")
		Expect(ok).To(BeTrue())
		Expect(hint.Runbook).To(Equal("docs/adding_new_breakdown.md"))
	})

	DescribeTable("maps topic tokens to hints",
		func(token, expected string) {
			hint, ok := hints.MustDefault().Lookup(token)
			Expect(ok).To(BeTrue())
			Expect(hint.Name).To(Equal(expected))
		},
		Entry("google ads", "google-ads", "google_ads_breakdowns"),
		Entry("route style token", "/r/:id", "dashboard_reporting"),
		Entry("teams", "teams", "preferences_center"),
		Entry("backfill", "backfill", "data_quality_sanity_checker"),
	)

	It("reports unknown tokens as absent", func() {
		_, ok := hints.MustDefault().Lookup("payments")
		Expect(ok).To(BeFalse())
	})

	It("returns copies that cannot mutate the registry", func() {
		registry := hints.MustDefault()
		hint, _ := registry.Get("vibetv_custom_channel")
		hint.Repos[0] = "mutated"
		hint.Directories["adwyze"][0] = "mutated"

		again, _ := registry.Get("vibetv_custom_channel")
		Expect(again.Repos).To(Equal([]string{"adwyze"}))
		Expect(again.Directories["adwyze"][0]).To(Equal("app/vibe_tv/vibe_tv/client.rb"))
	})

	It("rejects duplicate names", func() {
		h := model.ServiceHint{Name: "a", Repos: []string{"r"}}
		_, err := hints.NewRegistry([]model.ServiceHint{h, h})
		Expect(err).To(MatchError(hints.ErrDuplicateHint))
	})

	It("rejects directories for repos the hint does not list", func() {
		_, err := hints.NewRegistry([]model.ServiceHint{{
			Name:        "a",
			Repos:       []string{"r"},
			Directories: map[string][]string{"other": {"src"}},
		}})
		Expect(err).To(MatchError(hints.ErrInvalidHint))
	})

	It("rejects a topic token claimed twice", func() {
		_, err := hints.NewRegistry([]model.ServiceHint{
			{Name: "a", Repos: []string{"r"}, TopicTokens: []string{"t"}},
			{Name: "b", Repos: []string{"r"}, TopicTokens: []string{"t"}},
		})
		Expect(err).To(MatchError(hints.ErrDuplicateToken))
	})
})

var _ = Describe("Resolver", func() {
	It("selects every repository without directory restriction or runbook", func() {
		resolver := hints.NewResolver(hints.MustDefault())

		res := resolver.Resolve(context.Background(), []string{"adwords", "breakdown"}, "google-ads", []string{"adwyze", "adwyze-frontend"})

		Expect(res.Repos).To(Equal([]string{"adwyze", "adwyze-frontend"}))
		Expect(res.Directories).To(HaveLen(2))
		Expect(res.Directories["adwyze"]).To(BeEmpty())
		Expect(res.Runbook).To(BeEmpty())
	})

	It("handles no repositories", func() {
		res := hints.NewResolver(nil).Resolve(context.Background(), nil, "", nil)
		Expect(res.Repos).To(BeEmpty())
		Expect(res.Directories).To(BeEmpty())
	})
})
