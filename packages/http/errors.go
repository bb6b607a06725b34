package http

import (
	"errors"
	"fmt"
)

// ErrorKind classifies every failure the dispatcher can report.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota

	// Input malformed
	KindMalformedHeader
	KindMalformedParam
	KindMalformedMultipartSpec
	KindInvalidJSON
	KindInvalidURL

	// Precondition missing
	KindMissingContentType
	KindEmptyBody

	// Filesystem
	KindFileNotFound
	KindNotAFile
	KindEmptyFile
	KindFileUnreadable
	KindPathOutsideBase

	// Transport
	KindConnect
	KindTimeout
	KindOther

	// Protocol
	KindUnsupportedMethod
)

func (k ErrorKind) String() string {
	switch k {
	case KindMalformedHeader:
		return "malformed header line"
	case KindMalformedParam:
		return "malformed parameter"
	case KindMalformedMultipartSpec:
		return "malformed multipart input, expected field=/path/to/file"
	case KindInvalidJSON:
		return "invalid JSON body"
	case KindInvalidURL:
		return "invalid URL"
	case KindMissingContentType:
		return "missing Content-Type header"
	case KindEmptyBody:
		return "request body must not be empty"
	case KindFileNotFound:
		return "file does not exist"
	case KindNotAFile:
		return "not a regular file"
	case KindEmptyFile:
		return "file is empty"
	case KindFileUnreadable:
		return "file could not be read"
	case KindPathOutsideBase:
		return "path is outside the base directory"
	case KindConnect:
		return "network unreachable"
	case KindTimeout:
		return "request timed out"
	case KindOther:
		return "other failure"
	case KindUnsupportedMethod:
		return "unsupported request method"
	default:
		return fmt.Sprintf("unknown error kind %d", int(k))
	}
}

// Category groups error kinds the way callers usually react to them.
type Category int

const (
	CategoryUnknown Category = iota
	CategoryInput
	CategoryPrecondition
	CategoryFilesystem
	CategoryTransport
	CategoryProtocol
)

func (c Category) String() string {
	switch c {
	case CategoryInput:
		return "input"
	case CategoryPrecondition:
		return "precondition"
	case CategoryFilesystem:
		return "filesystem"
	case CategoryTransport:
		return "transport"
	case CategoryProtocol:
		return "protocol"
	default:
		return "unknown"
	}
}

// Category returns the group k belongs to.
func (k ErrorKind) Category() Category {
	switch k {
	case KindMalformedHeader, KindMalformedParam, KindMalformedMultipartSpec, KindInvalidJSON, KindInvalidURL:
		return CategoryInput
	case KindMissingContentType, KindEmptyBody:
		return CategoryPrecondition
	case KindFileNotFound, KindNotAFile, KindEmptyFile, KindFileUnreadable, KindPathOutsideBase:
		return CategoryFilesystem
	case KindConnect, KindTimeout, KindOther:
		return CategoryTransport
	case KindUnsupportedMethod:
		return CategoryProtocol
	default:
		return CategoryUnknown
	}
}

// Error is the only error type returned by Dispatch. Transport errors render
// as the bare kind message; the underlying cause stays reachable via Unwrap.
type Error struct {
	Kind   ErrorKind
	Detail string
	Err    error
}

func newError(kind ErrorKind, detail string, err error) *Error {
	return &Error{Kind: kind, Detail: detail, Err: err}
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Kind.Category() == CategoryTransport {
		return msg
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind, so callers can
// write errors.Is(err, &http.Error{Kind: http.KindTimeout}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf extracts the ErrorKind from err, or KindUnknown.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
