package scanner

import (
	"errors"
	"fmt"
)

// ErrInvalidInput matches every *InvalidInputError via errors.Is.
var ErrInvalidInput = errors.New("invalid input")

// Input kinds carried by InvalidInputError.
const (
	KindURL   = "url"
	KindEmail = "email"
)

// InvalidInputError is the only error a scan returns. It is raised before
// any network call is made.
type InvalidInputError struct {
	Kind   string
	Input  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Kind, e.Input, e.Reason)
}

func (e *InvalidInputError) Is(target error) bool {
	return target == ErrInvalidInput
}

// UserMessage is the explanation shown to API clients.
func (e *InvalidInputError) UserMessage() string {
	switch e.Kind {
	case KindURL:
		return "Invalid URL format. Please enter a valid website address (e.g., example.com or https://example.com)"
	case KindEmail:
		return "Invalid email format"
	default:
		return "Invalid input"
	}
}
