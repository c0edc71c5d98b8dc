package errors

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ErrInvalidForm is matched by every *ValidationError.
var ErrInvalidForm = errors.New("invalid form submission")

// ValidationError carries every message a form submission produced, each
// already phrased for display.
type ValidationError struct {
	Messages []string
}

// NewValidationError builds a ValidationError from display messages.
func NewValidationError(messages ...string) *ValidationError {
	return &ValidationError{Messages: messages}
}

// ValidationFrom builds a ValidationError from domain errors, phrasing each
// as a sentence.
func ValidationFrom(errs ...error) *ValidationError {
	v := &ValidationError{}
	for _, err := range errs {
		if err != nil {
			v.Messages = append(v.Messages, Sentence(err.Error()))
		}
	}
	return v
}

func (v *ValidationError) Error() string {
	return strings.Join(v.Messages, " ")
}

func (v *ValidationError) Unwrap() error {
	return ErrInvalidForm
}

// Add appends display messages.
func (v *ValidationError) Add(messages ...string) {
	v.Messages = append(v.Messages, messages...)
}

// Empty reports whether no message was collected.
func (v *ValidationError) Empty() bool {
	return v == nil || len(v.Messages) == 0
}

// Err returns nil when no message was collected.
func (v *ValidationError) Err() error {
	if v.Empty() {
		return nil
	}
	return v
}

// Messages extracts display messages from err: every message of a
// ValidationError, or err itself phrased as a sentence.
func Messages(err error) []string {
	if err == nil {
		return nil
	}
	var v *ValidationError
	if errors.As(err, &v) {
		return append([]string(nil), v.Messages...)
	}
	return []string{Sentence(err.Error())}
}

// Sentence upper-cases the first letter and ends the text with a period.
func Sentence(msg string) string {
	msg = strings.TrimSpace(msg)
	if msg == "" {
		return msg
	}
	r, size := utf8.DecodeRuneInString(msg)
	msg = string(unicode.ToUpper(r)) + msg[size:]
	if !strings.HasSuffix(msg, ".") && !strings.HasSuffix(msg, "!") && !strings.HasSuffix(msg, "?") {
		msg += "."
	}
	return msg
}
