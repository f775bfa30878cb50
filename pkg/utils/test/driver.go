package testutils

import (
	"context"
	"errors"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/binder/pkg/storage"
)

// DescribeDriver registers the behaviour every storage.Driver must have.
// newDriver is called before each test and must return an empty store.
func DescribeDriver(newDriver func() storage.Driver) {
	var (
		driver storage.Driver
		ctx    context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		driver = nil
		driver = newDriver()
	})

	AfterEach(func() {
		if driver != nil {
			Expect(driver.Close()).To(Succeed())
		}
	})

	Describe("SaveTurn and Conversation", func() {
		It("stores and retrieves a turn", func() {
			turn := NewTestTurn("conv-a", 0)
			Expect(driver.SaveTurn(ctx, turn)).To(Succeed())

			turns, err := driver.Conversation(ctx, "conv-a")
			Expect(err).NotTo(HaveOccurred())
			Expect(turns).To(HaveLen(1))

			got := turns[0]
			Expect(got.ID).To(Equal(turn.ID))
			Expect(got.Question).To(Equal(turn.Question))
			Expect(got.Answer).To(Equal(turn.Answer))
			Expect(got.Sources).To(Equal(turn.Sources))
			Expect(got.Confidence).To(Equal(turn.Confidence))
			Expect(got.PropertyID).To(Equal(turn.PropertyID))
			Expect(got.CreatedAt).To(BeTemporally("==", turn.CreatedAt))
		})

		It("returns turns in the order they were saved", func() {
			for i := range 3 {
				Expect(driver.SaveTurn(ctx, NewTestTurn("conv-a", i))).To(Succeed())
			}

			turns, err := driver.Conversation(ctx, "conv-a")
			Expect(err).NotTo(HaveOccurred())
			Expect(turns).To(HaveLen(3))
			for i, t := range turns {
				Expect(t.Question).To(Equal(NewTestTurn("conv-a", i).Question))
			}
		})

		It("is idempotent for duplicate ids", func() {
			turn := NewTestTurn("conv-a", 0)
			Expect(driver.SaveTurn(ctx, turn)).To(Succeed())
			Expect(driver.SaveTurn(ctx, turn)).To(Succeed())

			turns, err := driver.Conversation(ctx, "conv-a")
			Expect(err).NotTo(HaveOccurred())
			Expect(turns).To(HaveLen(1))
		})

		It("stores a turn without sources as an empty list", func() {
			turn := NewTestTurn("conv-a", 0)
			turn.Sources = nil
			Expect(driver.SaveTurn(ctx, turn)).To(Succeed())

			turns, err := driver.Conversation(ctx, "conv-a")
			Expect(err).NotTo(HaveOccurred())
			Expect(turns[0].Sources).NotTo(BeNil())
			Expect(turns[0].Sources).To(BeEmpty())
		})

		It("rejects invalid turns", func() {
			Expect(driver.SaveTurn(ctx, nil)).NotTo(Succeed())

			turn := NewTestTurn("conv-a", 0)
			turn.ConversationID = ""
			Expect(driver.SaveTurn(ctx, turn)).NotTo(Succeed())
		})

		It("returns NotFoundError for an unknown conversation", func() {
			_, err := driver.Conversation(ctx, "missing")

			var nf storage.NotFoundError
			Expect(errors.As(err, &nf)).To(BeTrue())
			Expect(nf.ConversationID).To(Equal("missing"))
		})

		It("accepts concurrent writers", func() {
			var wg sync.WaitGroup
			for i := range 8 {
				wg.Add(1)
				go func() {
					defer GinkgoRecover()
					defer wg.Done()
					Expect(driver.SaveTurn(ctx, NewTestTurn("conv-c", i))).To(Succeed())
				}()
			}
			wg.Wait()

			turns, err := driver.Conversation(ctx, "conv-c")
			Expect(err).NotTo(HaveOccurred())
			Expect(turns).To(HaveLen(8))
		})
	})

	Describe("ListConversations", func() {
		It("returns an empty list for an empty store", func() {
			list, err := driver.ListConversations(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(list).To(BeEmpty())
		})

		It("summarizes conversations, most recently updated first", func() {
			Expect(driver.SaveTurn(ctx, NewTestTurn("older", 0))).To(Succeed())
			Expect(driver.SaveTurn(ctx, NewTestTurn("older", 1))).To(Succeed())
			Expect(driver.SaveTurn(ctx, NewTestTurn("newer", 5))).To(Succeed())

			list, err := driver.ListConversations(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(list).To(HaveLen(2))

			Expect(list[0].ID).To(Equal("newer"))
			Expect(list[0].Turns).To(Equal(1))

			Expect(list[1].ID).To(Equal("older"))
			Expect(list[1].Turns).To(Equal(2))
			Expect(list[1].FirstQuestion).To(Equal("question 0"))
			Expect(list[1].StartedAt).To(BeTemporally("==", TestEpoch))
			Expect(list[1].UpdatedAt).To(BeTemporally("==", TestEpoch.Add(time.Minute)))
		})
	})
}
