package user

import "github.com/google/uuid"

// Store exposes read-only access to the loaded user records.
type Store interface {
	All() []User
	Range(fn func(User) bool)
	Len() int
	Revision() string
}

// MemoryStore implements Store with an immutable in-memory slice.
type MemoryStore struct {
	items    []User
	revision string
}

// NewMemoryStore returns a MemoryStore holding a private copy of items.
// The store is never modified afterwards, so concurrent readers need no locking.
func NewMemoryStore(items []User) *MemoryStore {
	return &MemoryStore{
		items:    append([]User(nil), items...),
		revision: uuid.NewString(),
	}
}

// All returns the records in source order.
func (s *MemoryStore) All() []User {
	return append([]User(nil), s.items...)
}

// Range calls fn for each record in source order until fn returns false.
// Unlike All it does not copy the backing slice.
func (s *MemoryStore) Range(fn func(User) bool) {
	for _, item := range s.items {
		if !fn(item) {
			return
		}
	}
}

// Len 返回记录数量。
func (s *MemoryStore) Len() int {
	return len(s.items)
}

// Revision identifies this particular load of the data source.
func (s *MemoryStore) Revision() string {
	return s.revision
}
