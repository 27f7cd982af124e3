package portal

import (
	"errors"
	"fmt"
)

// ErrorKind classifies portal failures so callers can branch on business
// outcomes (no route, duplicate recipient) separately from operational ones.
type ErrorKind string

const (
	KindAuthenticationFailed ErrorKind = "authentication_failed"
	KindDuplicateRecipient   ErrorKind = "duplicate_recipient"
	KindNoRoute              ErrorKind = "no_route"
	KindExtraction           ErrorKind = "extraction_failed"
	KindUnexpectedResponse   ErrorKind = "unexpected_response"
	KindTransport            ErrorKind = "transport"
	KindEncoding             ErrorKind = "encoding"
)

// Error represents a failed portal operation
type Error struct {
	Kind    ErrorKind `json:"kind"`
	Op      string    `json:"op,omitempty"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is a bare sentinel of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Err == nil && t.Kind == e.Kind
}

// Sentinels for use with errors.Is. Any *Error of the same kind matches.
var (
	ErrAuthenticationFailed = &Error{Kind: KindAuthenticationFailed, Message: "login failed"}
	ErrDuplicateRecipient   = &Error{Kind: KindDuplicateRecipient, Message: "customer number already exists"}
	ErrNoRoute              = &Error{Kind: KindNoRoute, Message: "no route available"}
	ErrExtraction           = &Error{Kind: KindExtraction, Message: "extraction failed"}
	ErrUnexpectedResponse   = &Error{Kind: KindUnexpectedResponse, Message: "unexpected response"}
	ErrTransport            = &Error{Kind: KindTransport, Message: "transport error"}
	ErrEncoding             = &Error{Kind: KindEncoding, Message: "text not representable in ISO-8859-1"}
)

// KindOf returns the kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) ErrorKind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}

func extractionError(what string) error {
	return &Error{Kind: KindExtraction, Message: fmt.Sprintf("could not find %s", what)}
}

func unexpectedResponse(format string, args ...any) error {
	return &Error{Kind: KindUnexpectedResponse, Message: fmt.Sprintf(format, args...)}
}

func transportError(op string, err error) error {
	return &Error{Kind: KindTransport, Op: op, Message: "request failed", Err: err}
}

// withOp stamps the operation name on portal errors that do not carry one yet.
func withOp(op string, err error) error {
	var pe *Error
	if errors.As(err, &pe) && pe.Op == "" {
		cp := *pe
		cp.Op = op
		return &cp
	}
	return err
}
