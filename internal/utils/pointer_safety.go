package utils

import "strings"

func Value[T any](v *T) T {
	if v == nil {
		return *new(T)
	}
	return *v
}

func Ptr[T any](v T) *T {
	return &v
}

// NonEmpty returns a pointer to the trimmed string, or nil when nothing is left.
// Used for partial updates where absent and blank mean "keep the old value".
func NonEmpty(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// Coalesce returns the value behind p when set, otherwise fallback.
func Coalesce[T any](p *T, fallback T) T {
	if p == nil {
		return fallback
	}
	return *p
}
