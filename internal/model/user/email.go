package user

import (
	"errors"
	"fmt"
	"strings"
)

// Email is a lookup key that has passed ValidateEmail.
type Email string

// ValidationKind classifies why a raw email argument was rejected.
type ValidationKind int

const (
	// NotAString means the input was not supplied as a string.
	NotAString ValidationKind = iota + 1
	// InvalidFormat means the string lacks an "@".
	InvalidFormat
)

func (k ValidationKind) String() string {
	switch k {
	case NotAString:
		return "NotAString"
	case InvalidFormat:
		return "InvalidFormat"
	default:
		return fmt.Sprintf("ValidationKind(%d)", int(k))
	}
}

var (
	ErrNotAString    = errors.New("email must be a string")
	ErrInvalidFormat = errors.New("email must contain @")
)

// ValidationError 描述邮箱参数校验失败的原因。
type ValidationError struct {
	Kind  ValidationKind
	Value string
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case NotAString:
		return fmt.Sprintf("invalid email %s: %v", e.Value, ErrNotAString)
	default:
		return fmt.Sprintf("invalid email %q: %v", e.Value, ErrInvalidFormat)
	}
}

// Is lets errors.Is match ErrNotAString and ErrInvalidFormat.
func (e *ValidationError) Is(target error) bool {
	switch e.Kind {
	case NotAString:
		return target == ErrNotAString
	case InvalidFormat:
		return target == ErrInvalidFormat
	}
	return false
}

// ValidateEmail accepts any string containing at least one "@".
// It is a shallow syntactic check: no host, domain or RFC 5322 rules apply.
func ValidateEmail(raw any) (Email, error) {
	switch v := raw.(type) {
	case string:
		return validateString(v)
	case Email:
		return validateString(string(v))
	case *string:
		if v != nil {
			return validateString(*v)
		}
	}
	return "", &ValidationError{Kind: NotAString, Value: fmt.Sprintf("%v", raw)}
}

func validateString(s string) (Email, error) {
	if !strings.Contains(s, "@") {
		return "", &ValidationError{Kind: InvalidFormat, Value: s}
	}
	return Email(s), nil
}

// Serialize returns the email exactly as stored.
func Serialize(e Email) string {
	return string(e)
}

func (e Email) String() string {
	return string(e)
}
