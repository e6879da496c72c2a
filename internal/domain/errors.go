package domain

import "fmt"

// ErrorKind classifies failures of the ingestion and feed flows.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindUnauthorized
	KindInvalidInput
	KindUploadFailed
	KindPersistenceFailed
	KindNotFound
)

func (k ErrorKind) String() string {
	switch k {
	case KindUnauthorized:
		return "Unauthorized"
	case KindInvalidInput:
		return "InvalidInput"
	case KindUploadFailed:
		return "UploadFailed"
	case KindPersistenceFailed:
		return "PersistenceFailed"
	case KindNotFound:
		return "NotFound"
	default:
		return "Unknown"
	}
}

// Error is a classified failure. Message is safe to show to the caller,
// Err carries the underlying cause if there is one.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is enables errors.Is matching by kind, so any *Error of the same kind
// matches the sentinels below.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t == nil {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrUnauthorized      = &Error{Kind: KindUnauthorized}
	ErrInvalidInput      = &Error{Kind: KindInvalidInput}
	ErrUploadFailed      = &Error{Kind: KindUploadFailed}
	ErrPersistenceFailed = &Error{Kind: KindPersistenceFailed}
	ErrNotFound          = &Error{Kind: KindNotFound}
)

func NewError(kind ErrorKind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

func InvalidInput(message string, err error) *Error {
	return &Error{Kind: KindInvalidInput, Message: message, Err: err}
}

func UploadFailed(message string, err error) *Error {
	return &Error{Kind: KindUploadFailed, Message: message, Err: err}
}

func PersistenceFailed(message string, err error) *Error {
	return &Error{Kind: KindPersistenceFailed, Message: message, Err: err}
}

// NotFound reports a missing resource, e.g. NotFound("post").
func NotFound(resource string) *Error {
	return &Error{Kind: KindNotFound, Message: resource + " not found"}
}
