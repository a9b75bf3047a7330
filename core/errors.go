package core

import (
	"errors"
	"fmt"
)

// Sentinel errors for the failure classes of a generation run.
// Every error returned by Generate matches exactly one of them via errors.Is,
// except failures of the resolver or data sources, which are returned as is.
var (
	ErrMissingPlaceholder     = errors.New("missing placeholder")
	ErrInvalidExtensionResult = errors.New("invalid extension result")
	ErrTemplateWrite          = errors.New("template write failure")
	ErrConversion             = errors.New("conversion failure")
	ErrStamping               = errors.New("stamping failure")
)

// MissingPlaceholderError reports a token with no parameter, or a parameter
// with no token (Cell is empty then).
type MissingPlaceholderError struct {
	Key  string
	Cell string
}

func (e *MissingPlaceholderError) Error() string {
	if e.Cell == "" {
		return fmt.Sprintf("missing placeholder: parameter %q has no {{%s}} token in the template", e.Key, e.Key)
	}
	return fmt.Sprintf("missing placeholder: {{%s}} in cell %s has no value", e.Key, e.Cell)
}

func (e *MissingPlaceholderError) Is(target error) bool {
	return target == ErrMissingPlaceholder
}

// ConversionError is returned when the external converter cannot be
// launched, exits non-zero or produces no PDF.
type ConversionError struct {
	Command string
	Output  string
	Err     error
}

func (e *ConversionError) Error() string {
	if e.Output != "" {
		return fmt.Sprintf("conversion failure: %s: %v: %s", e.Command, e.Err, e.Output)
	}
	return fmt.Sprintf("conversion failure: %s: %v", e.Command, e.Err)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

func (e *ConversionError) Is(target error) bool {
	return target == ErrConversion
}
