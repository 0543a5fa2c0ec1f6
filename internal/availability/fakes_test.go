package availability

import (
	"context"
	"errors"
	"io"
	"sync"

	mongotx "lodging/pkg/db/mongo"
	"lodging/pkg/logger"
	"lodging/pkg/model"
)

var errFakeNotFound = errors.New("accommodation not found")

type journalKey struct{}

type journal struct {
	undo []func()
}

// fakeStore keeps accommodations in memory and enforces the same version
// compare-and-swap as the Mongo repository.
type fakeStore struct {
	mu       sync.Mutex
	accs     map[string]*model.Accommodation
	onRead   func()
	applyErr error
	applies  int
}

func newFakeStore(id string, counters map[string]int) *fakeStore {
	s := &fakeStore{accs: make(map[string]*model.Accommodation)}
	s.accs[id] = &model.Accommodation{ID: id, AvailableRoomsByDate: copyCounters(counters)}
	return s
}

func (s *fakeStore) FindByID(ctx context.Context, id string) (*model.Accommodation, error) {
	if s.onRead != nil {
		s.onRead()
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accs[id]
	if !ok {
		return nil, errFakeNotFound
	}
	cp := *acc
	cp.AvailableRoomsByDate = copyCounters(acc.AvailableRoomsByDate)
	return &cp, nil
}

func (s *fakeStore) ApplyDateDeltas(ctx context.Context, id string, expectedVersion int64, deltas map[string]int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.applies++
	if s.applyErr != nil {
		return s.applyErr
	}
	acc, ok := s.accs[id]
	if !ok {
		return errFakeNotFound
	}
	if acc.Version != expectedVersion {
		return ErrVersionConflict
	}
	for date, d := range deltas {
		acc.AvailableRoomsByDate[date] += d
	}
	acc.Version++

	if j, ok := ctx.Value(journalKey{}).(*journal); ok {
		j.undo = append(j.undo, func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for date, d := range deltas {
				acc.AvailableRoomsByDate[date] -= d
			}
		})
	}
	return nil
}

func (s *fakeStore) counters(id string) map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyCounters(s.accs[id].AvailableRoomsByDate)
}

// fakeTx rolls back counter writes made through the store when fn fails.
// A non-nil commitErr makes every commit fail the way a server-side write
// conflict does.
type fakeTx struct {
	calls     int
	commitErr error
	mu        sync.Mutex
}

func (f *fakeTx) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	j := &journal{}
	err := fn(context.WithValue(ctx, journalKey{}, j))
	if err == nil {
		err = f.commitErr
	}
	if err != nil {
		for i := len(j.undo) - 1; i >= 0; i-- {
			j.undo[i]()
		}
		return err
	}
	return nil
}

func copyCounters(in map[string]int) map[string]int {
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{
		Level:  logger.ERROR,
		Format: logger.JSON,
		Output: io.Discard,
	})
}

func newTestReconciler(store Store, tx mongotx.TransactionManager) *Reconciler {
	return NewReconciler(store, tx, testLogger(), Options{
		MaxRoomsPerDate: 10,
		MaxAttempts:     5,
	})
}
