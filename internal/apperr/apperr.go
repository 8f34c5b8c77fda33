// Package apperr defines the error type the request pipeline speaks.
// Handlers return or surface these; the response package is the single
// place that translates them into the JSON envelope.
package apperr

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Error carries the HTTP status a failure should map to.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// New builds an Error with an explicit status.
func New(status int, format string, args ...any) *Error {
	return &Error{Status: status, Message: fmt.Sprintf(format, args...)}
}

func BadRequest(format string, args ...any) *Error {
	return New(http.StatusBadRequest, format, args...)
}

func Unauthorized(format string, args ...any) *Error {
	return New(http.StatusUnauthorized, format, args...)
}

func Forbidden(format string, args ...any) *Error {
	return New(http.StatusForbidden, format, args...)
}

func NotFound(format string, args ...any) *Error {
	return New(http.StatusNotFound, format, args...)
}

// Fields collects validation failures by field name. An empty map means
// the record passed validation.
type Fields map[string]string

func (f Fields) Add(field, msg string) {
	f[field] = msg
}

func (f Fields) Ok() bool { return len(f) == 0 }

// Err flattens the collected messages into a single 400, ordered by field
// name so the output is stable. Returns nil when there is nothing to report.
func (f Fields) Err() error {
	if len(f) == 0 {
		return nil
	}
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, f[k])
	}
	return BadRequest("%s", strings.Join(msgs, ", "))
}
