package webreg

import (
	"errors"
	"fmt"
)

// ErrorKind classifies every failure this package can surface.
type ErrorKind int

const (
	// KindTransport covers network-level failures: DNS, timeouts,
	// canceled contexts.
	KindTransport ErrorKind = iota + 1
	// KindSessionInvalid means the credential or term binding was
	// rejected; re-authentication or AssociateTerm is needed.
	KindSessionInvalid
	// KindMalformedResponse means the service replied but the body did
	// not have the expected shape.
	KindMalformedResponse
	// KindServiceRejected means the service understood the request and
	// refused it; Message carries its reason verbatim.
	KindServiceRejected
	// KindInvalidRequest means the request could not be constructed
	// locally; nothing was sent.
	KindInvalidRequest
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindSessionInvalid:
		return "session invalid"
	case KindMalformedResponse:
		return "malformed response"
	case KindServiceRejected:
		return "service rejected"
	case KindInvalidRequest:
		return "invalid request"
	default:
		return "unknown"
	}
}

// Error is the typed error returned by every operation in this package.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message != "" {
		return fmt.Sprintf("webreg: %s: %s: %v", e.Kind, e.Message, e.Err)
	}
	if e.Err != nil {
		return fmt.Sprintf("webreg: %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("webreg: %s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so sentinels below work with
// errors.Is regardless of message.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind
}

func newError(kind ErrorKind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func wrapError(kind ErrorKind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// KindOf extracts the kind from any error returned by this package.
// Errors from elsewhere report zero.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

var (
	// ErrSessionInvalid reports a credential the service no longer
	// accepts, or a term the session was never associated with.
	ErrSessionInvalid = newError(KindSessionInvalid, "session is not valid for this term; call AssociateTerm or refresh the credential")
	// ErrSectionNotFound reports a section id absent from the data it
	// was looked up in.
	ErrSectionNotFound = newError(KindInvalidRequest, "section not found")
)
