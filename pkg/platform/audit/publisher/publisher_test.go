package publisher

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	audit "gatehouse/pkg/platform/audit"
	"gatehouse/pkg/platform/audit/store/memory"
	"gatehouse/pkg/requestcontext"
)

type PublisherSuite struct {
	suite.Suite
	store *memory.InMemoryStore
	ctx   context.Context
}

func TestPublisherSuite(t *testing.T) {
	suite.Run(t, new(PublisherSuite))
}

func (s *PublisherSuite) SetupTest() {
	s.store = memory.NewInMemoryStore()
	s.ctx = context.Background()
}

func (s *PublisherSuite) events(subject string) []audit.Event {
	events, err := s.store.ListBySubject(s.ctx, subject)
	s.Require().NoError(err)
	return events
}

func (s *PublisherSuite) TestSyncAppendsWithCategory() {
	pub := NewPublisher(s.store)
	defer pub.Close()

	s.Require().NoError(pub.Emit(s.ctx, audit.Event{Subject: "visit:1", Action: string(audit.EventVisitApproved)}))

	got := s.events("visit:1")
	s.Require().Len(got, 1)
	s.Equal(audit.CategoryApproval, got[0].Category)
}

func (s *PublisherSuite) TestAsyncDrainsOnClose() {
	pub := NewPublisher(s.store, WithAsyncBuffer(32))
	for range 10 {
		s.Require().NoError(pub.Emit(s.ctx, audit.Event{Subject: "pass:7", Action: string(audit.EventPassRedeemed)}))
	}
	pub.Close()

	s.Len(s.events("pass:7"), 10)
}

func (s *PublisherSuite) TestFullBufferNeverBlocks() {
	pub := NewPublisher(s.store, WithAsyncBuffer(1))

	var wg sync.WaitGroup
	var mu sync.Mutex
	var dropped int
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := pub.Emit(s.ctx, audit.Event{Subject: "guard:1", Action: string(audit.EventGuardCheckedIn)})
			if errors.Is(err, ErrBufferFull) {
				mu.Lock()
				dropped++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	pub.Close()

	s.Equal(20, len(s.events("guard:1"))+dropped)
}

func (s *PublisherSuite) TestEmitAfterCloseIsSynchronous() {
	pub := NewPublisher(s.store, WithAsyncBuffer(4))
	pub.Close()

	s.Require().NoError(pub.Emit(s.ctx, audit.Event{Subject: "visit:9", Action: string(audit.EventVisitDeclined)}))
	s.Len(s.events("visit:9"), 1)
}

func (s *PublisherSuite) TestEnrichesFromRequestContext() {
	pub := NewPublisher(s.store)
	defer pub.Close()

	pinned := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	ctx := requestcontext.WithRequestID(s.ctx, "req-123")
	ctx = requestcontext.WithTime(ctx, pinned)
	ctx = requestcontext.WithClientMetadata(ctx, "10.0.0.8", "Mozilla/5.0", "Chrome on Android")

	s.Require().NoError(pub.Emit(ctx, audit.Event{Subject: "visit:2", Action: string(audit.EventVisitCheckedIn)}))

	got := s.events("visit:2")
	s.Require().Len(got, 1)
	s.Equal("req-123", got[0].RequestID)
	s.Equal("10.0.0.8", got[0].ClientIP)
	s.Equal("Chrome on Android", got[0].Terminal)
	s.Equal(audit.CategoryAccess, got[0].Category)
	s.Equal(pinned, got[0].Timestamp)
}

func (s *PublisherSuite) TestKeepsCallerFields() {
	pub := NewPublisher(s.store)
	defer pub.Close()

	at := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithRequestID(s.ctx, "from-ctx")
	s.Require().NoError(pub.Emit(ctx, audit.Event{
		Subject:   "guard:4",
		Action:    string(audit.EventGuardCheckedOut),
		Timestamp: at,
		RequestID: "from-caller",
	}))

	got := s.events("guard:4")
	s.Require().Len(got, 1)
	s.Equal(at, got[0].Timestamp)
	s.Equal("from-caller", got[0].RequestID)
}
