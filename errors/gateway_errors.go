// errors/gateway_errors.go
package errors

import "errors"

var (
	// ErrUnauthenticated means the credential is missing, malformed, expired
	// or rejected by the auth service. Never retried.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrForbidden means a valid identity lacks permission for the
	// resource/operation. Never retried.
	ErrForbidden = errors.New("forbidden")

	ErrRecordNotFound = errors.New("record not found")

	// ErrConflict signals an optimistic-concurrency failure on write: the
	// caller supplied a stale expected version. Surfaced so the caller can
	// re-read and retry; the gateway never retries it silently.
	ErrConflict = errors.New("version conflict")

	// ErrUnavailable means a downstream dependency (auth service, storage
	// service or cache) is unreachable or erroring.
	ErrUnavailable = errors.New("dependency unavailable")

	ErrInvalidRequest = errors.New("invalid request")
	ErrInternalServer = errors.New("internal server error")
)
