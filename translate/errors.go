package translate

import (
	"errors"
	"fmt"
)

// Kind classifies a translation failure.
type Kind int

const (
	// NotConfigured: no provider selected or no model chosen.
	NotConfigured Kind = iota + 1
	// UnknownProvider: the stored provider id has no registry row.
	UnknownProvider
	// MissingCredential: a required API key or server URL is blank.
	MissingCredential
	// NetworkError: the request never produced an HTTP response.
	NetworkError
	// HTTPError: the provider answered with a non-2xx status.
	HTTPError
	// EmptyResponse: a 2xx answer with a blank body.
	EmptyResponse
	// MalformedResponse: a 2xx answer without the expected text field.
	MalformedResponse
)

var kindNames = map[Kind]string{
	NotConfigured:     "not_configured",
	UnknownProvider:   "unknown_provider",
	MissingCredential: "missing_credential",
	NetworkError:      "network_error",
	HTTPError:         "http_error",
	EmptyResponse:     "empty_response",
	MalformedResponse: "malformed_response",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Config reports whether the kind is detected before any request is sent.
func (k Kind) Config() bool {
	return k == NotConfigured || k == UnknownProvider || k == MissingCredential
}

// Error is the single error type returned by the translation path.
// Message is already localized and safe to show to the user.
type Error struct {
	Kind    Kind
	Message string
	// Status is the HTTP status code for HTTPError.
	Status int
	// Provider is the provider id when known.
	Provider string
	Err      error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error of the same kind, so callers can write
// errors.Is(err, &translate.Error{Kind: translate.HTTPError}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func newError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// KindOf returns the Kind carried by err, or 0 when err is not an *Error.
func KindOf(err error) Kind {
	var te *Error
	if errors.As(err, &te) {
		return te.Kind
	}
	return 0
}
