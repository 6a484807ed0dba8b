package core

import (
	"errors"

	"github.com/JonMunkholm/backoffice/internal/export"
)

// Kind classifies an Error for the transport layer.
type Kind string

const (
	KindUnauthorized Kind = "unauthorized"
	KindBadRequest   Kind = "bad_request"
	KindNotFound     Kind = "not_found"
	KindForbidden    Kind = "forbidden"
	KindConflict     Kind = "conflict"
	KindUnavailable  Kind = "unavailable"
	KindInternal     Kind = "internal"
)

// Error is a domain error. Message is safe to show to users; Cause is for
// logs only.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil && e.Cause.Error() != e.Message {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func newError(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

// Sentinel errors for draft handling.
var (
	ErrDraftNotFound = errors.New("draft not found")
	ErrTooManyDrafts = errors.New("too many drafts")
	ErrDraftBusy     = errors.New("draft edited concurrently")
)

// exportErrors are the export model errors caused by client input.
var exportErrors = []error{
	export.ErrUnknownDataset,
	export.ErrDatasetDisabled,
	export.ErrUnknownField,
	export.ErrOperatorNotAllowed,
	export.ErrInvalidFilterValue,
	export.ErrInvalidDateRange,
	export.ErrInvalidOption,
	export.ErrUnknownAction,
	export.ErrPIIUnacknowledged,
	export.ErrNoColumns,
}

// KindOf reports the Kind of err. Export model errors are bad requests;
// anything unclassified is internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	switch {
	case errors.Is(err, ErrDraftNotFound):
		return KindNotFound
	case errors.Is(err, ErrTooManyDrafts):
		return KindUnavailable
	}
	for _, target := range exportErrors {
		if errors.Is(err, target) {
			return KindBadRequest
		}
	}
	return KindInternal
}

// badRequest wraps an export model error so its text reaches the client.
func badRequest(err error) *Error {
	return newError(KindBadRequest, err.Error(), err)
}
