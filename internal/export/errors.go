package export

import (
	"errors"
	"fmt"
)

// Kind categorizes export failures.
type Kind string

const (
	// KindStoreOpen: bad path, wrong password or corrupt store.
	KindStoreOpen Kind = "STORE_OPEN"

	// KindQuery: a record query or row scan failed.
	KindQuery Kind = "QUERY"

	// KindFragmentDecode: a bookmark's embedded fragment is malformed.
	KindFragmentDecode Kind = "FRAGMENT_DECODE"

	// KindSave: the document could not be serialized or written.
	KindSave Kind = "SAVE"
)

// Error is a fatal export failure.
type Error struct {
	// Kind identifies the error category.
	Kind Kind

	// Step is the operation that failed.
	Step Step

	// Phase is the last phase reached before the failure.
	Phase Phase

	// Err is the underlying cause.
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("export failed in phase %s (%s, after %s): %v", e.Step, e.Kind, e.Phase, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind of err, or "" when err is not an *Error.
func KindOf(err error) Kind {
	var ee *Error
	if errors.As(err, &ee) {
		return ee.Kind
	}
	return ""
}

// IsStoreOpenError reports whether err is a store open failure.
func IsStoreOpenError(err error) bool {
	return KindOf(err) == KindStoreOpen
}

// IsFragmentDecodeError reports whether err is a malformed bookmark fragment.
func IsFragmentDecodeError(err error) bool {
	return KindOf(err) == KindFragmentDecode
}

// IsSaveError reports whether err is an output write failure.
func IsSaveError(err error) bool {
	return KindOf(err) == KindSave
}
