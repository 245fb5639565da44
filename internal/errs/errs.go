// Package errs defines the domain errors raised by the naming server and
// storage server handlers. Dispatchers translate a DomainError's Code into
// the wire protocol's ErrorCode rather than leaking Go error values
// onto the wire.
package errs

import "github.com/distfs/distfs/internal/wire"

// DomainError carries one of the closed protocol error codes plus a
// human-readable message, keeping business failures distinct from
// infrastructure errors.
type DomainError struct {
	Code    wire.ErrorCode
	Message string
	File    string
}

func (e *DomainError) Error() string {
	if e.File != "" {
		return e.Message + ": " + e.File
	}
	return e.Message
}

func NewNotFound(file string) *DomainError {
	return &DomainError{Code: wire.FileNotFound, Message: "file not found", File: file}
}

func NewUnauthorized(file string) *DomainError {
	return &DomainError{Code: wire.Unauthorized, Message: "access denied", File: file}
}

func NewPermissionDenied(file string) *DomainError {
	return &DomainError{Code: wire.PermissionDenied, Message: "owner-only operation", File: file}
}

func NewExists(file string) *DomainError {
	return &DomainError{Code: wire.FileExists, Message: "file already exists", File: file}
}

func NewLocked(file string) *DomainError {
	return &DomainError{Code: wire.SentenceLocked, Message: "file is locked for writing", File: file}
}

func NewInvalidIndex(file, detail string) *DomainError {
	return &DomainError{Code: wire.InvalidIndex, Message: detail, File: file}
}

func NewSSUnavailable(file string) *DomainError {
	return &DomainError{Code: wire.SSUnavailable, Message: "storage server unavailable", File: file}
}

func NewInvalidCommand() *DomainError {
	return &DomainError{Code: wire.InvalidCommand, Message: "invalid command"}
}

// AsDomainError unwraps err into a *DomainError, if it is one.
func AsDomainError(err error) (*DomainError, bool) {
	de, ok := err.(*DomainError)
	return de, ok
}
