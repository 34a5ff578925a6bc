package incident_test

import (
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/triage/common/logger"
	"basegraph.app/triage/internal/incident"
	"basegraph.app/triage/internal/model"
)

func request(channel, topic *string, text string) model.TriageRequest {
	return model.TriageRequest{SenderEmail: "ana@example.com", Channel: channel, Topic: topic, IncidentText: text}
}

var _ = Describe("Key", func() {
	DescribeTable("normalises missing parts",
		func(channel, topic *string, expected string) {
			Expect(incident.Key(channel, topic)).To(Equal(expected))
		},
		Entry("both present", logger.Ptr("ops"), logger.Ptr("db"), "ops::db"),
		Entry("private", nil, nil, "dm::general"),
		Entry("no topic", logger.Ptr("ops"), nil, "ops::general"),
		Entry("empty strings", logger.Ptr(""), logger.Ptr(""), "dm::general"),
		Entry("case sensitive", logger.Ptr("Ops"), logger.Ptr("DB"), "Ops::DB"),
	)
})

var _ = Describe("Store", func() {
	var store *incident.Store

	BeforeEach(func() {
		store = incident.NewStore()
	})

	It("returns the same record for the same thread", func() {
		first := store.GetOrCreate(request(logger.Ptr("ops"), logger.Ptr("db"), "a"))
		second := store.GetOrCreate(request(logger.Ptr("ops"), logger.Ptr("db"), "b"))

		Expect(second).To(BeIdenticalTo(first))
		Expect(first.Key).To(Equal("ops::db"))
	})

	It("creates distinct records per topic", func() {
		first := store.GetOrCreate(request(logger.Ptr("ops"), logger.Ptr("db"), "a"))
		other := store.GetOrCreate(request(logger.Ptr("ops"), logger.Ptr("cache"), "a"))

		Expect(other).NotTo(BeIdenticalTo(first))
		Expect(store.List()).To(HaveLen(2))
	})

	It("finds only existing records", func() {
		_, ok := store.Find(logger.Ptr("ops"), logger.Ptr("db"))
		Expect(ok).To(BeFalse())

		created := store.GetOrCreate(request(logger.Ptr("ops"), logger.Ptr("db"), "a"))
		found, ok := store.Find(logger.Ptr("ops"), logger.Ptr("db"))
		Expect(ok).To(BeTrue())
		Expect(found).To(BeIdenticalTo(created))
	})

	It("lists records in creation order", func() {
		store.GetOrCreate(request(logger.Ptr("b"), nil, ""))
		store.GetOrCreate(request(logger.Ptr("a"), nil, ""))
		store.GetOrCreate(request(logger.Ptr("b"), nil, ""))

		keys := []string{}
		for _, rec := range store.List() {
			keys = append(keys, rec.Key)
		}
		Expect(keys).To(Equal([]string{"b::general", "a::general"}))
	})

	It("hands out one record under concurrent creation", func() {
		var wg sync.WaitGroup
		records := make([]*incident.Record, 20)
		for i := range records {
			wg.Add(1)
			go func() {
				defer wg.Done()
				records[i] = store.GetOrCreate(request(logger.Ptr("ops"), logger.Ptr("db"), "x"))
			}()
		}
		wg.Wait()

		for _, rec := range records {
			Expect(rec).To(BeIdenticalTo(records[0]))
		}
	})
})

var _ = Describe("Record", func() {
	It("starts empty", func() {
		rec := incident.NewStore().GetOrCreate(request(nil, nil, "x"))

		_, ok := rec.LastSummary()
		Expect(ok).To(BeFalse())
		_, ok = rec.LastRequest()
		Expect(ok).To(BeFalse())
		Expect(rec.History()).To(BeEmpty())
	})

	It("overwrites the latest state and appends to history", func() {
		rec := incident.NewStore().GetOrCreate(request(nil, nil, "x"))

		rec.Update("first", request(nil, nil, "one"))
		rec.Update("second", request(nil, nil, "two"))

		summary, _ := rec.LastSummary()
		last, _ := rec.LastRequest()
		Expect(summary).To(Equal("second"))
		Expect(last.IncidentText).To(Equal("two"))
		Expect(rec.History()).To(Equal([]string{"first", "second"}))
	})

	It("tolerates concurrent updates", func() {
		rec := incident.NewStore().GetOrCreate(request(nil, nil, "x"))

		var wg sync.WaitGroup
		for range 50 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				rec.Update("s", request(nil, nil, "r"))
			}()
		}
		wg.Wait()

		Expect(rec.History()).To(HaveLen(50))
	})
})
