package agency

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/eleven-am/spycat/internal/orm"
)

// Field limits shared with the schema's CHECK constraints.
const (
	MaxCatNameLength     = 50
	MaxBreedLength       = 50
	MinPasswordLength    = 8
	MaxPasswordBytes     = 72
	MaxMissionNameLength = 100
	MaxDescriptionLength = 255
	MinTargets           = 1
	MaxTargets           = 3
	MaxTargetNameLength  = 100
	MaxCountryLength     = 100
	MaxNoteLength        = 500
)

// validator accumulates field errors so a request reports all of them at once.
type validator struct {
	errs orm.ValidationErrors
}

func (v *validator) add(field, format string, args ...interface{}) {
	v.errs = append(v.errs, orm.ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
}

// text trims value and checks its length in runes against [min, max].
func (v *validator) text(field, value string, min, max int) string {
	value = strings.TrimSpace(value)
	n := utf8.RuneCountInString(value)
	switch {
	case n < min && min == 1:
		v.add(field, "must not be empty")
	case n < min:
		v.add(field, "must be at least %d characters", min)
	case max > 0 && n > max:
		v.add(field, "must be at most %d characters", max)
	}
	return value
}

// password checks raw length in bytes. bcrypt rejects anything past
// MaxPasswordBytes.
func (v *validator) password(field, value string) {
	switch {
	case len(value) < MinPasswordLength:
		v.add(field, "must be at least %d characters", MinPasswordLength)
	case len(value) > MaxPasswordBytes:
		v.add(field, "must be at most %d bytes", MaxPasswordBytes)
	}
}

func (v *validator) nonNegative(field string, value int) {
	if value < 0 {
		v.add(field, "must be greater than or equal to 0")
	}
}

func (v *validator) err() error {
	if len(v.errs) == 0 {
		return nil
	}
	return v.errs
}
