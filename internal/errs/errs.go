// Package errs defines the error taxonomy shared by every generation stage.
package errs

import "fmt"

// Code categorizes generation failures. Every code is fatal for the service
// being generated.
type Code string

const (
	MalformedReference       Code = "MalformedReference"
	UnknownComponentCategory Code = "UnknownComponentCategory"
	UnknownComponent         Code = "UnknownComponent"
	NamingCollision          Code = "NamingCollision"
	MissingOperationID       Code = "MissingOperationID"
	RewritePrecondition      Code = "RewritePrecondition"
	UnsortableMember         Code = "UnsortableMember"
	IO                       Code = "IO"
	Parse                    Code = "Parse"
	Emit                     Code = "Emit"
)

// Error implements error so a bare Code can be used as an errors.Is target.
func (c Code) Error() string { return string(c) }

// Error is a structured generation error. Subject names the offending
// reference, schema, path or declaration.
type Error struct {
	Code    Code
	Subject string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Subject != "" {
		msg = fmt.Sprintf("%s: %s", e.Subject, msg)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches either another *Error with the same code or a bare Code.
func (e *Error) Is(target error) bool {
	switch t := target.(type) {
	case Code:
		return e.Code == t
	case *Error:
		return e.Code == t.Code
	}
	return false
}

// New builds an *Error with a formatted message.
func New(code Code, subject, format string, args ...any) *Error {
	return &Error{Code: code, Subject: subject, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches cause to a new *Error.
func Wrap(code Code, subject string, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Subject: subject, Message: fmt.Sprintf(format, args...), Cause: cause}
}
