package credits

import (
	"context"
	"sync"
	"time"
)

type memoryStore struct {
	mu      sync.Mutex
	locks   map[string]*sync.Mutex
	ledgers map[string][]Block
	events  map[string][]Event
	nextID  int64
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		locks:   make(map[string]*sync.Mutex),
		ledgers: make(map[string][]Block),
		events:  make(map[string][]Event),
	}
}

func (s *memoryStore) accountLock(accountID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[accountID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[accountID] = l
	}
	return l
}

func (s *memoryStore) Blocks(ctx context.Context, accountID string) ([]Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Block(nil), s.ledgers[accountID]...), nil
}

func (s *memoryStore) Mutate(ctx context.Context, accountID string, fn mutateFunc) ([]Block, error) {
	l := s.accountLock(accountID)
	l.Lock()
	defer l.Unlock()

	current, _ := s.Blocks(ctx, accountID)
	next, event, err := fn(current)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range next {
		if next[i].ID == 0 {
			s.nextID++
			next[i].ID = s.nextID
		}
	}
	s.ledgers[accountID] = append([]Block(nil), next...)
	if event != nil {
		s.events[accountID] = append(s.events[accountID], *event)
	}
	return append([]Block(nil), next...), nil
}

func (s *memoryStore) PruneExpired(ctx context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, blocks := range s.ledgers {
		kept := Prune(blocks, now)
		removed += len(blocks) - len(kept)
		s.ledgers[id] = kept
	}
	return removed, nil
}

func (s *memoryStore) Events(ctx context.Context, accountID string, limit int) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := s.events[accountID]
	out := make([]Event, 0, min(limit, len(all)))
	for i := len(all) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, all[i])
	}
	return out, nil
}
