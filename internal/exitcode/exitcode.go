// Package exitcode defines exit codes for the CLI.
package exitcode

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad args, not found, out of range).
	UserError = 1

	// AuthError indicates a missing or unusable sign-in.
	AuthError = 2

	// BackendError indicates a backend/API/network error or bad stored data.
	BackendError = 3

	// ConfigError indicates the task store is not configured.
	ConfigError = 4

	// SuggestError indicates the suggestion service failed.
	SuggestError = 5
)
