package user

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/bytedance/sonic"
)

// ErrEmptySource is returned when the data source holds no bytes at all.
var ErrEmptySource = errors.New("data source is empty")

// LoadError reports why a data source could not be turned into a store.
// Index and Field are set when a specific record is at fault; Index is -1 otherwise.
type LoadError struct {
	Source string
	Index  int
	Field  string
	Err    error
}

func (e *LoadError) Error() string {
	switch {
	case e.Field != "":
		return fmt.Sprintf("load %s: record %d: field %q: %v", e.Source, e.Index, e.Field, e.Err)
	case e.Index >= 0:
		return fmt.Sprintf("load %s: record %d: %v", e.Source, e.Index, e.Err)
	default:
		return fmt.Sprintf("load %s: %v", e.Source, e.Err)
	}
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// ErrMissingField marks a record without one of RequiredFields.
var ErrMissingField = errors.New("required field missing")

// rawUser mirrors User with pointer fields so absent keys can be told apart from zero values.
type rawUser struct {
	ID        *int    `json:"id"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Email     *string `json:"email"`
	Gender    *string `json:"gender"`
	IPAddress *string `json:"ip_address"`
}

func (r rawUser) toUser() (User, string) {
	switch {
	case r.ID == nil:
		return User{}, "id"
	case r.FirstName == nil:
		return User{}, "first_name"
	case r.LastName == nil:
		return User{}, "last_name"
	case r.Email == nil:
		return User{}, "email"
	case r.Gender == nil:
		return User{}, "gender"
	case r.IPAddress == nil:
		return User{}, "ip_address"
	}
	return User{
		ID:        *r.ID,
		FirstName: *r.FirstName,
		LastName:  *r.LastName,
		Email:     *r.Email,
		Gender:    *r.Gender,
		IPAddress: *r.IPAddress,
	}, ""
}

// LoadJSON decodes a JSON array of user objects into a MemoryStore.
// Either every record loads or no store is returned.
func LoadJSON(r io.Reader, source string) (*MemoryStore, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &LoadError{Source: source, Index: -1, Err: err}
	}
	if len(data) == 0 {
		return nil, &LoadError{Source: source, Index: -1, Err: ErrEmptySource}
	}

	var raw []*rawUser
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return nil, &LoadError{Source: source, Index: -1, Err: fmt.Errorf("decode json array: %w", err)}
	}
	if raw == nil {
		return nil, &LoadError{Source: source, Index: -1, Err: errors.New("top-level value is not an array")}
	}

	users := make([]User, 0, len(raw))
	for i, item := range raw {
		if item == nil {
			return nil, &LoadError{Source: source, Index: i, Err: errors.New("record is null")}
		}
		u, missing := item.toUser()
		if missing != "" {
			return nil, &LoadError{Source: source, Index: i, Field: missing, Err: ErrMissingField}
		}
		users = append(users, u)
	}

	return NewMemoryStore(users), nil
}

// LoadFile opens path and decodes it with LoadJSON.
func LoadFile(path string) (*MemoryStore, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Source: path, Index: -1, Err: err}
	}
	defer f.Close()

	return LoadJSON(f, path)
}
