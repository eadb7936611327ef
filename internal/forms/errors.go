package forms

import (
	"regexp"
	"sort"
	"strings"

	"github.com/jrsteele09/go-adcampaign-dashboard/internal/errors"
)

// FieldErrors maps form field names to a message shown next to the field.
// The empty key holds a message for the form as a whole.
type FieldErrors map[string]string

// Add records msg for field unless the field already has a message
func (e FieldErrors) Add(field, msg string) {
	if _, ok := e[field]; !ok {
		e[field] = msg
	}
}

// Form returns the message for the whole form
func (e FieldErrors) Form() string {
	return e[""]
}

// OK reports whether no errors were recorded
func (e FieldErrors) OK() bool {
	return len(e) == 0
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail checks the shape of an email address
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// Err returns the field errors as an error, or nil when there are none
func (e FieldErrors) Err() error {
	if e.OK() {
		return nil
	}
	return &Error{Fields: e}
}

// Error carries field errors through an error return
type Error struct {
	Fields FieldErrors
}

func (e *Error) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		if k == "" {
			k = "form"
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return "invalid " + strings.Join(keys, ", ")
}

func (e *Error) Is(target error) bool {
	return target == errors.ErrValidation
}

// FieldsOf extracts field errors from err, nil when err carries none
func FieldsOf(err error) FieldErrors {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Fields
	}
	return nil
}
