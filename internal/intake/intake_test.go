package intake_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/triage/internal/intake"
	"basegraph.app/triage/internal/zulip"
)

var _ = Describe("PlainText", func() {
	DescribeTable("flattens rendered markup",
		func(markup, expected string) {
			Expect(intake.PlainText(markup)).To(Equal(expected))
		},
		Entry("empty", "", ""),
		Entry("paragraphs", "<p>db is</p><p>down</p>", "db is down"),
		Entry("entities", "<p>p99 &gt; 2s &amp; rising</p>", "p99 > 2s & rising"),
		Entry("mentions", `<p><span class="user-mention" data-user-id="7">@triage-bot</span> ping</p>`, "@triage-bot ping"),
		Entry("whitespace", "  a \n\t b  ", "a b"),
	)
})

var _ = Describe("Identity", func() {
	It("derives aliases from the bot address", func() {
		id := intake.NewIdentity("Triage-Bot+prod@chat.example.com", []string{" OnCall ", "", "triage-bot"})
		Expect(id.Aliases).To(Equal([]string{"triage-bot", "triage", "oncall"}))
	})

	It("splits on every separator present", func() {
		id := intake.NewIdentity("ops_helper.bot@x.com", nil)
		Expect(id.Aliases).To(Equal([]string{"ops_helper.bot", "ops", "ops_helper"}))
	})

	It("recognises its own messages", func() {
		id := intake.NewIdentity("bot@x.com", nil)
		Expect(id.IsSelf("bot@x.com")).To(BeTrue())
		Expect(id.IsSelf("ana@x.com")).To(BeFalse())
	})

	Describe("ShouldRespond", func() {
		id := intake.NewIdentity("helper-bot@x.com", []string{"sherlock"})
		stream := zulip.Message{Type: "stream", DisplayRecipient: zulip.StreamRecipient("ops"), Subject: "db"}

		It("always answers private messages", func() {
			Expect(id.ShouldRespond(zulip.Message{Type: "private"}, "anything")).To(BeTrue())
		})

		It("answers explicit mentions", func() {
			msg := stream
			msg.Flags = []string{"read", "mentioned-inline"}
			Expect(id.ShouldRespond(msg, "nothing relevant")).To(BeTrue())
		})

		DescribeTable("scans stream text for aliases",
			func(text string, expected bool) {
				Expect(id.ShouldRespond(stream, text)).To(Equal(expected))
			},
			Entry("alias prefix", "hey helper can you look", true),
			Entry("silent mention", "@_helper-bot look", true),
			Entry("operator alias, any case", "Sherlock?", true),
			Entry("the bot word", "needs TRIAGE", true),
			Entry("unrelated chatter", "lunch at noon", false),
		)
	})
})

var _ = Describe("ExtractCommand", func() {
	DescribeTable("exact aliases yield an empty remainder",
		func(text string, expected intake.Command) {
			cmd, remainder := intake.ExtractCommand(text)
			Expect(cmd).To(Equal(expected))
			Expect(remainder).To(BeEmpty())
		},
		Entry("status", "status", intake.CommandStatus),
		Entry("triage status", "  Triage Status ", intake.CommandStatus),
		Entry("status?", "status?", intake.CommandStatus),
		Entry("show status", "show status", intake.CommandStatus),
		Entry("rerun", "rerun", intake.CommandRerun),
		Entry("rerun analysis", "rerun analysis", intake.CommandRerun),
		Entry("rerun triage", "rerun triage", intake.CommandRerun),
		Entry("next steps", "Next Steps", intake.CommandRerun),
		Entry("next-steps", "next-steps", intake.CommandRerun),
		Entry("product", "product", intake.CommandProduct),
		Entry("/product", "/product", intake.CommandProduct),
	)

	DescribeTable("/product is found anywhere",
		func(text, expected string) {
			cmd, remainder := intake.ExtractCommand(text)
			Expect(cmd).To(Equal(intake.CommandProduct))
			Expect(remainder).To(Equal(expected))
		},
		Entry("leading", "/product pod adjust requirements ", "pod adjust requirements"),
		Entry("after words", "@**helper** can you /product TrendyolGO pods", "TrendyolGO pods"),
		Entry("mixed case", "quick /Product  retention policy", "retention policy"),
	)

	It("returns the text after an alias prefix", func() {
		cmd, remainder := intake.ExtractCommand("rerun checkout fails with 502 ")
		Expect(cmd).To(Equal(intake.CommandRerun))
		Expect(remainder).To(Equal("checkout fails with 502"))
	})

	DescribeTable("no command",
		func(text string) {
			cmd, remainder := intake.ExtractCommand(text)
			Expect(cmd).To(Equal(intake.CommandNone))
			Expect(remainder).To(BeEmpty())
		},
		Entry("plain report", "checkout is down"),
		Entry("glued alias", "statuspage is red"),
		Entry("product inside a word", "see a/products page"),
		Entry("alias not at start", "what is the status"),
	)
})

var _ = Describe("ExtractThreadReference", func() {
	It("decodes dot-escaped topics in deep links", func() {
		raw := `<a href="#narrow/channel/42-ops/topic/Q.2eA">link</a>`
		ref, ok := intake.ExtractThreadReference(raw, "link")
		Expect(ok).To(BeTrue())
		Expect(ref).To(Equal(intake.ThreadRef{Channel: "ops", Topic: "Q.A"}))
	})

	It("strips the message anchor and prefers the visible channel label", func() {
		raw := `<a href="/#narrow/channel/7-eng.20alerts/topic/db.20down/near/991">#eng alerts &gt; db down</a>`
		ref, ok := intake.ExtractThreadReference(raw, "see [#Eng Alerts > db down]")
		Expect(ok).To(BeTrue())
		Expect(ref.Channel).To(Equal("Eng Alerts"))
		Expect(ref.Topic).To(Equal("db down"))
	})

	It("falls back to the decoded slug", func() {
		raw := `#NARROW/channel/7-eng.20alerts/topic/x)`
		ref, ok := intake.ExtractThreadReference(raw, "")
		Expect(ok).To(BeTrue())
		Expect(ref).To(Equal(intake.ThreadRef{Channel: "eng alerts", Topic: "x"}))
	})

	It("reads manual channel mentions", func() {
		ref, ok := intake.ExtractThreadReference("", "follow up on #** ops > db latency ** please")
		Expect(ok).To(BeTrue())
		Expect(ref).To(Equal(intake.ThreadRef{Channel: "ops", Topic: "db latency"}))
	})

	It("finds nothing in ordinary text", func() {
		_, ok := intake.ExtractThreadReference("<p>hello</p>", "hello")
		Expect(ok).To(BeFalse())
	})
})

var _ = Describe("DecodeComponent", func() {
	DescribeTable("decodes",
		func(in, expected string) {
			Expect(intake.DecodeComponent(in)).To(Equal(expected))
		},
		Entry("dot escape", "Q.2eA", "Q.A"),
		Entry("percent escape", "a%20b", "a b"),
		Entry("plain dots stay", "v1.x", "v1.x"),
		Entry("malformed escape kept", "100%zz.20off", "100%zz off"),
	)
})

var _ = Describe("FetchTarget", func() {
	streamID := int64(12)

	It("prefers an explicit reference", func() {
		msg := zulip.Message{Type: "stream", DisplayRecipient: zulip.StreamRecipient("ops"), Subject: "db"}
		target, ok := intake.FetchTarget(msg, &intake.ThreadRef{Channel: "eng", Topic: "deploy"})
		Expect(ok).To(BeTrue())
		Expect(target).To(Equal(intake.ThreadRef{Channel: "eng", Topic: "deploy"}))
	})

	It("uses the stream and topic of a stream message", func() {
		msg := zulip.Message{Type: "stream", DisplayRecipient: zulip.StreamRecipient("ops"), Subject: "db"}
		target, ok := intake.FetchTarget(msg, nil)
		Expect(ok).To(BeTrue())
		Expect(target).To(Equal(intake.ThreadRef{Channel: "ops", Topic: "db"}))
	})

	It("uses the stream id when the recipient is a list", func() {
		msg := zulip.Message{DisplayRecipient: zulip.UsersRecipient(), Subject: "db", StreamID: &streamID}
		target, ok := intake.FetchTarget(msg, nil)
		Expect(ok).To(BeTrue())
		Expect(target.Channel).To(Equal("12"))
	})

	It("has nothing to fetch for private messages", func() {
		msg := zulip.Message{Type: "private", DisplayRecipient: zulip.UsersRecipient(zulip.User{Email: "a@x"})}
		_, ok := intake.FetchTarget(msg, nil)
		Expect(ok).To(BeFalse())
	})
})
