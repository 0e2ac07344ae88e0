// Package exitcode defines the process exit codes of the todo CLI.
package exitcode

const (
	// Success means the command did what was asked.
	Success = 0

	// UserError covers bad arguments, unknown list ids and todos the
	// backend answered 404 for.
	UserError = 1

	// AuthError is returned when the backend answers 401 or 403, or the
	// stored token cannot be read.
	AuthError = 2

	// BackendError covers other non-2xx answers, timeouts and transport
	// failures.
	BackendError = 3
)
