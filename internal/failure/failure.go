// Package failure classifies pipeline errors into the kinds the CLI reports
// and maps each kind to a process exit code.
package failure

import (
	"errors"
	"net"
	"strings"
	"syscall"
)

// Kind identifies the category of a pipeline failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindParse
	KindNetwork
	KindAPI
	KindNoResults
	KindDatabase
)

// String returns the human readable name of the kind.
func (k Kind) String() string {
	switch k {
	case KindParse:
		return "parse failure"
	case KindNetwork:
		return "network error"
	case KindAPI:
		return "api error"
	case KindNoResults:
		return "no results"
	case KindDatabase:
		return "database error"
	default:
		return "unknown error"
	}
}

// ErrDuplicatePlace is wrapped by database errors caused by the unique
// constraint on the place column.
var ErrDuplicatePlace = errors.New("place already exists")

// Error wraps an error with its Kind and, for remote APIs, the HTTP status
// code and API status string that caused it.
type Error struct {
	Kind       Kind
	StatusCode int
	APIStatus  string
	Err        error
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Wrap tags err with kind. A nil err yields nil.
func Wrap(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Err: err}
}

// HTTPStatus tags err as an API failure caused by a non-success HTTP status.
func HTTPStatus(err error, statusCode int) error {
	return &Error{Kind: KindAPI, StatusCode: statusCode, Err: err}
}

// APIStatus tags err as an API failure reported through the response body status.
func APIStatus(err error, status string) error {
	return &Error{Kind: KindAPI, APIStatus: status, Err: err}
}

// KindOf returns the Kind of the first *Error in err's chain. Transport
// errors that were never tagged are still reported as KindNetwork.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}

	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}

	if IsNetwork(err) {
		return KindNetwork
	}
	return KindUnknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// IsDuplicate reports whether err was caused by inserting an already stored place.
func IsDuplicate(err error) bool {
	return errors.Is(err, ErrDuplicatePlace)
}

// IsNetwork returns true if err looks like a transport-level failure
// (timeouts, refused or reset connections, DNS failures).
func IsNetwork(err error) bool {
	if err == nil {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) {
		return true
	}

	msg := strings.ToLower(err.Error())
	networkPatterns := []string{
		"connection reset by peer",
		"connection refused",
		"broken pipe",
		"temporary failure in name resolution",
		"no such host",
		"tls handshake timeout",
		"i/o timeout",
	}
	for _, p := range networkPatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}

	return false
}

// Exit codes returned by the CLI, one per failure kind.
const (
	ExitOK        = 0
	ExitUsage     = 1
	ExitParse     = 2
	ExitNetwork   = 3
	ExitAPI       = 4
	ExitNoResults = 5
	ExitDatabase  = 6
	ExitDuplicate = 7
)

// ExitCode maps err to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	if IsDuplicate(err) {
		return ExitDuplicate
	}

	switch KindOf(err) {
	case KindParse:
		return ExitParse
	case KindNetwork:
		return ExitNetwork
	case KindAPI:
		return ExitAPI
	case KindNoResults:
		return ExitNoResults
	case KindDatabase:
		return ExitDatabase
	default:
		return ExitUsage
	}
}
