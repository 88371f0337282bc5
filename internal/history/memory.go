package history

import (
	"context"
	"sort"
	"sync"
	"time"
)

var _ Store = (*MemStore)(nil)

// MemStore is an in-memory Store used by tests and DSN-less local runs.
type MemStore struct {
	mu     sync.Mutex
	nextID int64
	recs   map[int64]*Record
}

func NewMemStore() *MemStore {
	return &MemStore{nextID: 1, recs: make(map[int64]*Record)}
}

func (s *MemStore) Insert(_ context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec.ID = s.nextID
	s.nextID++
	rec.CreatedAt = time.Now().UTC()
	cp := *rec
	s.recs[rec.ID] = &cp
	return nil
}

func (s *MemStore) List(_ context.Context, ownerID int64) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var res []Record
	for _, rec := range s.recs {
		if rec.UserID == ownerID {
			res = append(res, *rec)
		}
	}
	// Newest first; ids break ties since the in-memory clock is coarse.
	sort.Slice(res, func(i, j int) bool {
		if res[i].CreatedAt.Equal(res[j].CreatedAt) {
			return res[i].ID > res[j].ID
		}
		return res[i].CreatedAt.After(res[j].CreatedAt)
	})
	if len(res) > ListLimit {
		res = res[:ListLimit]
	}
	return res, nil
}

func (s *MemStore) Update(_ context.Context, id, ownerID int64, mut Mutation) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.recs[id]
	if !ok || rec.UserID != ownerID {
		return nil, ErrNotFound
	}
	rec.Method = mut.Method
	rec.URL = mut.URL
	rec.Headers = mut.Headers
	rec.Body = mut.Body
	cp := *rec
	return &cp, nil
}

func (s *MemStore) Delete(_ context.Context, id, ownerID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.recs[id]
	if !ok || rec.UserID != ownerID {
		return ErrNotFound
	}
	delete(s.recs, id)
	return nil
}
