// Package validate implements client-side form validation. It runs before
// any request is built; a validation failure never contacts the server.
// Messages are in Spanish because they surface verbatim in the product UI.
package validate

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

// FieldErrors maps field names to their validation message, for inline
// display next to the offending field.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f + ": " + e[f]
	}
	return "validación: " + strings.Join(parts, "; ")
}

// Add records a message for a field, keeping the first message per field.
func (e FieldErrors) Add(field, message string) {
	if _, ok := e[field]; !ok {
		e[field] = message
	}
}

// OrNil returns e as an error, or nil when no field failed. Returning the
// map directly would yield a non-nil error interface holding an empty map.
func (e FieldErrors) OrNil() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// MinChars checks a minimum length in characters, not bytes — titles and
// descriptions here are Spanish text with accented characters.
func MinChars(e FieldErrors, field, value string, min int, message string) {
	if utf8.RuneCountInString(strings.TrimSpace(value)) < min {
		e.Add(field, message)
	}
}

// Required checks a non-blank value.
func Required(e FieldErrors, field, value, message string) {
	if strings.TrimSpace(value) == "" {
		e.Add(field, message)
	}
}

// PositivePrice checks price > 0.
func PositivePrice(e FieldErrors, field string, price float64) {
	if price <= 0 {
		e.Add(field, "El precio debe ser mayor a 0")
	}
}

// MaxItems checks a collection cap.
func MaxItems(e FieldErrors, field string, count, max int) {
	if count > max {
		e.Add(field, fmt.Sprintf("Máximo %d imágenes", max))
	}
}

// RatingRange checks a 1..5 star rating.
func RatingRange(e FieldErrors, field string, rating int) {
	if rating < 1 || rating > 5 {
		e.Add(field, "La calificación debe estar entre 1 y 5")
	}
}
