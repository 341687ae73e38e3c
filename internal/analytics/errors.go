package analytics

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound      = errors.New("evaluatee not found")
	ErrInvalidFilter = errors.New("invalid filter")
)

// NotFoundError reports an evaluatee id with no known profile.
type NotFoundError struct {
	EvaluateeID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: %d", ErrNotFound, e.EvaluateeID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// InvalidFilterError lists every malformed filter field.
type InvalidFilterError struct {
	Fields []string
}

func (e *InvalidFilterError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidFilter, strings.Join(e.Fields, ", "))
}

func (e *InvalidFilterError) Is(target error) bool { return target == ErrInvalidFilter }
