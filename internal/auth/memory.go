package auth

import (
	"context"
	"sync"
	"time"
)

var _ Store = (*MemStore)(nil)

// MemStore is an in-memory Store used by tests and DSN-less local runs.
type MemStore struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*User
}

func NewMemStore() *MemStore {
	return &MemStore{nextID: 1, users: make(map[int64]*User)}
}

func (s *MemStore) CreateUser(_ context.Context, u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return ErrEmailTaken
		}
	}
	u.ID = s.nextID
	s.nextID++
	u.CreatedAt = time.Now().UTC()
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *MemStore) FindUserByEmail(_ context.Context, email string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemStore) FindUserByID(_ context.Context, id int64) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}
