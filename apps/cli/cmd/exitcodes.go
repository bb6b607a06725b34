package cmd

import (
	"errors"
	"io/fs"

	"github.com/abdul-hamid-achik/gpapi/packages/bench"
	"github.com/abdul-hamid-achik/gpapi/packages/core/config"
	"github.com/abdul-hamid-achik/gpapi/packages/curl"
	"github.com/abdul-hamid-achik/gpapi/packages/http"
	"github.com/abdul-hamid-achik/gpapi/packages/workspace"
)

// Exit codes for gpapi CLI
const (
	// ExitSuccess indicates the command completed
	ExitSuccess = 0

	// ExitRequestFailed indicates the request got no response
	ExitRequestFailed = 1

	// ExitInputError indicates the request could not be built from its input
	ExitInputError = 2

	// ExitConfigError indicates a configuration error
	ExitConfigError = 3

	// ExitFilesystemError indicates a file could not be read or written
	ExitFilesystemError = 4

	// ExitUsageError indicates invalid CLI usage
	ExitUsageError = 64
)

type usageError struct{ err error }

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

type configError struct{ err error }

func (e *configError) Error() string { return e.err.Error() }
func (e *configError) Unwrap() error { return e.err }

// reportedError marks an error the command already printed
type reportedError struct{ err error }

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var ue *usageError
	if errors.As(err, &ue) || errors.Is(err, bench.ErrInvalidOptions) {
		return ExitUsageError
	}
	var ce *configError
	if errors.As(err, &ce) || errors.Is(err, config.ErrInvalid) {
		return ExitConfigError
	}

	if errors.Is(err, curl.ErrUnsupported) {
		return ExitInputError
	}

	switch http.KindOf(err).Category() {
	case http.CategoryTransport:
		return ExitRequestFailed
	case http.CategoryInput, http.CategoryPrecondition, http.CategoryProtocol:
		return ExitInputError
	case http.CategoryFilesystem:
		return ExitFilesystemError
	}

	var pe *fs.PathError
	if errors.As(err, &pe) ||
		errors.Is(err, workspace.ErrOutsideRoot) ||
		errors.Is(err, workspace.ErrRoot) ||
		errors.Is(err, workspace.ErrIsDir) ||
		errors.Is(err, workspace.ErrWatchUnsupported) {
		return ExitFilesystemError
	}

	return ExitRequestFailed
}
