package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingReference matches any MissingReferenceError.
	ErrMissingReference = errors.New("missing reference")
	// ErrInvalidInput matches any InvalidInputError.
	ErrInvalidInput = errors.New("invalid input")
)

// RecordKind names the kind of input record an error refers to.
type RecordKind string

const (
	RecordPosition RecordKind = "position"
	RecordDividend RecordKind = "dividend"
	RecordETF      RecordKind = "etf"
)

// MissingReferenceError reports a record pointing at an ETF id absent from the catalog.
type MissingReferenceError struct {
	Kind     RecordKind
	RecordID int64
	ETFID    int64
}

func (e *MissingReferenceError) Error() string {
	return fmt.Sprintf("%s %d references unknown etf %d", e.Kind, e.RecordID, e.ETFID)
}

func (e *MissingReferenceError) Is(target error) bool { return target == ErrMissingReference }

// InvalidInputError reports a malformed field on a single record.
type InvalidInputError struct {
	Kind     RecordKind
	RecordID int64
	Field    string
	Reason   string
}

func (e *InvalidInputError) Error() string {
	if e.Kind == "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("%s %d: invalid %s: %s", e.Kind, e.RecordID, e.Field, e.Reason)
}

func (e *InvalidInputError) Is(target error) bool { return target == ErrInvalidInput }
