package lookup

import (
	"context"

	"github.com/zhouzirui/user-lookup/backend/internal/model/user"
)

// Service answers email lookups against a loaded user store.
type Service struct {
	store user.Store
}

// NewService binds the resolver to a store that is already fully loaded.
func NewService(store user.Store) *Service {
	return &Service{store: store}
}

// FindByEmail scans the store in order and returns the first record whose
// email equals the key exactly. Comparison is case-sensitive and the key is
// not normalised. The boolean is false when nothing matches.
func (s *Service) FindByEmail(_ context.Context, email user.Email) (user.User, bool) {
	var (
		found user.User
		ok    bool
	)
	s.store.Range(func(u user.User) bool {
		if u.Email == string(email) {
			found, ok = u, true
			return false
		}
		return true
	})
	return found, ok
}
