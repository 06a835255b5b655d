package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedInput marks a daily record that failed required-field or type validation.
var ErrMalformedInput = errors.New("malformed input")

// MalformedInputError carries the context of a rejected daily record.
// Line is 1-based within the source file, 0 when unknown.
type MalformedInputError struct {
	InstrumentID string
	Field        string
	Value        string
	Line         int
	Err          error
}

func (e *MalformedInputError) Error() string {
	var b strings.Builder
	b.WriteString(ErrMalformedInput.Error())
	if e.InstrumentID != "" {
		fmt.Fprintf(&b, ": instrument %s", e.InstrumentID)
	}
	if e.Line > 0 {
		fmt.Fprintf(&b, " line %d", e.Line)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, " field %s", e.Field)
	}
	if e.Value != "" {
		fmt.Fprintf(&b, " value %q", e.Value)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *MalformedInputError) Unwrap() error { return e.Err }

func (e *MalformedInputError) Is(target error) bool { return target == ErrMalformedInput }
