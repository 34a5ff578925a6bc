package id_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/triage/common/id"
)

var _ = Describe("New", func() {
	It("returns unique increasing ids", func() {
		first := id.New()
		second := id.New()

		Expect(first).To(BeNumerically(">", 0))
		Expect(second).To(BeNumerically(">", first))
	})

	It("ignores later Init calls", func() {
		Expect(id.Init(7)).To(Succeed())
		Expect(id.New()).To(BeNumerically(">", 0))
	})

	It("rejects node ids outside the snowflake range", func() {
		Expect(id.Init(-1)).To(MatchError(ContainSubstring("out of range")))
		Expect(id.Init(1024)).To(MatchError(ContainSubstring("out of range")))
	})

	It("recovers the issue time of an id", func() {
		before := time.Now().Add(-time.Second)
		runID := id.New()

		Expect(id.Time(runID)).To(BeTemporally(">=", before))
		Expect(id.Time(runID)).To(BeTemporally("<=", time.Now().Add(time.Second)))
	})
})
