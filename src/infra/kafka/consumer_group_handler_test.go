package kafka

import (
	"context"
	"errors"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/IBM/sarama"
)

type fakeSession struct {
	ctx    context.Context
	mu     sync.Mutex
	marked []int64
}

func (s *fakeSession) Claims() map[string][]int32               { return nil }
func (s *fakeSession) MemberID() string                         { return "member" }
func (s *fakeSession) GenerationID() int32                      { return 1 }
func (s *fakeSession) MarkOffset(string, int32, int64, string)  {}
func (s *fakeSession) Commit()                                  {}
func (s *fakeSession) ResetOffset(string, int32, int64, string) {}
func (s *fakeSession) Context() context.Context                 { return s.ctx }
func (s *fakeSession) MarkMessage(msg *sarama.ConsumerMessage, _ string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.marked = append(s.marked, msg.Offset)
}

func (s *fakeSession) Marked() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int64(nil), s.marked...)
}

type fakeClaim struct {
	messages chan *sarama.ConsumerMessage
}

func newFakeClaim(values ...string) *fakeClaim {
	c := &fakeClaim{messages: make(chan *sarama.ConsumerMessage, len(values))}
	for i, v := range values {
		c.messages <- &sarama.ConsumerMessage{Topic: "tasks", Offset: int64(i), Value: []byte(v)}
	}
	return c
}

func (c *fakeClaim) Topic() string                            { return "tasks" }
func (c *fakeClaim) Partition() int32                         { return 0 }
func (c *fakeClaim) InitialOffset() int64                     { return 0 }
func (c *fakeClaim) HighWaterMarkOffset() int64               { return int64(cap(c.messages)) }
func (c *fakeClaim) Messages() <-chan *sarama.ConsumerMessage { return c.messages }

var _ = Describe("consumerGroupHandler", func() {
	var (
		session *fakeSession
		cancel  context.CancelFunc
	)

	BeforeEach(func() {
		var ctx context.Context
		ctx, cancel = context.WithCancel(context.Background())
		session = &fakeSession{ctx: ctx}
	})

	AfterEach(func() {
		cancel()
	})

	newHandler := func(handler Handler) *consumerGroupHandler {
		return &consumerGroupHandler{handler: handler, batchSize: 1, retryBackoff: time.Millisecond}
	}

	It("stops the claim without marking later offsets when a batch keeps failing", func() {
		// ARRANGE
		claim := newFakeClaim("broken", "fine")
		calls := 0
		h := newHandler(func(messages []Message) error {
			calls++
			if string(messages[0].Value) == "broken" {
				return errors.New("smtp down")
			}
			return nil
		})

		// ACT
		err := h.ConsumeClaim(session, claim)

		// ASSERT
		Expect(err).To(MatchError(ContainSubstring("smtp down")))
		Expect(calls).To(Equal(maxBatchAttempts))
		Expect(session.Marked()).To(BeEmpty())
		Expect(claim.messages).To(HaveLen(1))
	})

	It("marks a batch that succeeds on a later attempt and keeps consuming", func() {
		// ARRANGE
		claim := newFakeClaim("flaky", "fine")
		close(claim.messages)
		failures := 1
		h := newHandler(func(messages []Message) error {
			if string(messages[0].Value) == "flaky" && failures > 0 {
				failures--
				return errors.New("timeout")
			}
			return nil
		})

		// ACT
		err := h.ConsumeClaim(session, claim)

		// ASSERT
		Expect(err).NotTo(HaveOccurred())
		Expect(session.Marked()).To(Equal([]int64{0, 1}))
	})

	It("gives up waiting between attempts when the session ends", func() {
		// ARRANGE
		h := &consumerGroupHandler{
			handler:      func([]Message) error { return errors.New("smtp down") },
			batchSize:    1,
			retryBackoff: time.Hour,
		}
		batch := []Message{{Value: []byte("broken"), internal: &sarama.ConsumerMessage{Offset: 7}}}

		// ACT
		done := make(chan error, 1)
		go func() { done <- h.processBatch(session, batch) }()
		cancel()

		// ASSERT
		Eventually(done).Should(Receive(MatchError(ContainSubstring("context canceled"))))
		Expect(session.Marked()).To(BeEmpty())
	})

	It("does not wait after the last failed attempt", func() {
		// ARRANGE
		h := &consumerGroupHandler{
			handler:      func([]Message) error { return errors.New("smtp down") },
			batchSize:    1,
			retryBackoff: 200 * time.Millisecond,
		}
		batch := []Message{{Value: []byte("broken")}}

		// ACT
		start := time.Now()
		err := h.processBatch(session, batch)

		// ASSERT
		Expect(err).To(HaveOccurred())
		// 200ms + 400ms entre as três tentativas, nada depois da última
		Expect(time.Since(start)).To(BeNumerically("<", 900*time.Millisecond))
	})
})
