package memory

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/Apurer/pet-community/internal/domains/onboarding/domain"
	"github.com/Apurer/pet-community/internal/domains/onboarding/ports"
)

var _ ports.DraftStore = (*DraftStore)(nil)

// DraftStore keeps drafts in process memory.
type DraftStore struct {
	mu     sync.Mutex
	drafts map[string]entry
	now    func() time.Time
}

type entry struct {
	data    []byte
	savedAt time.Time
}

func NewDraftStore() *DraftStore {
	return &DraftStore{drafts: map[string]entry{}, now: time.Now}
}

func (s *DraftStore) Get(_ context.Context, key string) (*domain.Draft, error) {
	s.mu.Lock()
	e, ok := s.drafts[key]
	s.mu.Unlock()
	if !ok {
		return nil, ports.ErrDraftNotFound
	}
	var d domain.Draft
	if err := json.Unmarshal(e.data, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// Save stores a deep copy so callers can keep mutating their draft.
func (s *DraftStore) Save(_ context.Context, key string, draft *domain.Draft) error {
	data, err := json.Marshal(draft)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[key] = entry{data: data, savedAt: s.now()}
	return nil
}

func (s *DraftStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, key)
	return nil
}

func (s *DraftStore) PurgeStale(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var purged int64
	for key, e := range s.drafts {
		if e.savedAt.Before(cutoff) {
			delete(s.drafts, key)
			purged++
		}
	}
	return purged, nil
}
