package service

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/Leganyst/wellness-booking/internal/model"
	"github.com/Leganyst/wellness-booking/internal/numbering"
	"github.com/Leganyst/wellness-booking/internal/repository"
	"github.com/Leganyst/wellness-booking/internal/testutil"
)

func testLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type recordingNotifier struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (n *recordingNotifier) SendBookingNotifications(_ context.Context, b *model.Booking, q *model.Quote) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, b.BookingNumber+"/"+q.Number)
	return n.err
}

// blockingNotifier держит отправку, пока тест не закроет release.
type blockingNotifier struct {
	release chan struct{}
	sent    atomic.Bool
}

func (n *blockingNotifier) SendBookingNotifications(ctx context.Context, _ *model.Booking, _ *model.Quote) error {
	select {
	case <-n.release:
		n.sent.Store(true)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// flakyHistory падает первые failures вызовов Append.
type flakyHistory struct {
	repository.HistoryRepository
	failures int
	calls    int
}

func (f *flakyHistory) Append(ctx context.Context, e *model.HistoryEntry) error {
	f.calls++
	if f.calls <= f.failures {
		return errors.Join(model.ErrStore, errors.New("history unavailable"))
	}
	return f.HistoryRepository.Append(ctx, e)
}

type testEnv struct {
	store    *repository.Store
	clock    *fakeClock
	notifier *recordingNotifier
	hooks    *PostCommit
	workflow *WorkflowService
	query    *QueryService
	profiles *ProfileService
}

func newTestEnv(t *testing.T, catalog *Catalog) *testEnv {
	t.Helper()

	store := repository.NewStore(testutil.NewDB(t))
	clock := &fakeClock{t: time.Date(2026, time.March, 14, 9, 0, 0, 0, time.UTC)}
	notifier := &recordingNotifier{}
	log := testLogger()

	numbers := numbering.NewGenerator(numbering.NewCountSequencer(store.Bookings), time.UTC, clock.Now)
	hooks := NewPostCommit(log, time.Second)
	wf := NewWorkflowService(store, numbers, notifier, hooks, WorkflowConfig{
		Location:     time.UTC,
		HistoryRetry: RetryPolicy{Attempts: 3},
		Catalog:      catalog,
		Now:          clock.Now,
	}, log)

	return &testEnv{
		store:    store,
		clock:    clock,
		notifier: notifier,
		hooks:    hooks,
		workflow: wf,
		query:    NewQueryService(store, time.UTC, log),
		profiles: NewProfileService(store.Clients, log, clock.Now),
	}
}

func groupRequest(email string) CreateBookingRequest {
	return CreateBookingRequest{
		ServiceID:    "sophrologie",
		ServiceName:  "Séance de sophrologie",
		UnitPrice:    dec("60"),
		Duration:     60,
		Date:         "2026-04-02",
		Time:         "14:00",
		Participants: 4,
		FirstName:    "Jeanne",
		LastName:     "Martin",
		Email:        email,
		Phone:        "+33612345678",
		Message:      "Première séance",
	}
}
