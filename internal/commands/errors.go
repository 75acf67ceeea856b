package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"neolist/internal/auth"
	"neolist/internal/config"
	"neolist/internal/exitcode"
	"neolist/internal/store"
	"neolist/internal/suggest"
	"neolist/internal/syncer"
)

// UsageError is a problem with the command line itself.
type UsageError struct {
	Msg string
}

func (e *UsageError) Error() string { return e.Msg }

func usageErrorf(format string, args ...any) error {
	return &UsageError{Msg: fmt.Sprintf(format, args...)}
}

// ExitCode maps an error to the exit code reported for it.
func ExitCode(err error) int {
	var usage *UsageError
	switch {
	case err == nil:
		return exitcode.Success
	case errors.As(err, &usage),
		errors.Is(err, store.ErrNotFound),
		errors.Is(err, syncer.ErrEmptyTitle):
		return exitcode.UserError
	case errors.Is(err, store.ErrUnauthenticated),
		errors.Is(err, auth.ErrNoClient),
		errors.Is(err, auth.ErrCancelled),
		errors.Is(err, auth.ErrNoIdentity):
		return exitcode.AuthError
	case errors.Is(err, store.ErrUnavailable):
		return exitcode.ConfigError
	case errors.Is(err, suggest.ErrSuggestion):
		return exitcode.SuggestError
	default:
		return exitcode.BackendError
	}
}

// Report prints err as "error: ..." and returns its exit code.
func Report(errOut io.Writer, err error) int {
	code := ExitCode(err)
	fmt.Fprintf(errOut, "error: %s\n", message(err, code))
	return code
}

func message(err error, code int) string {
	switch {
	case errors.Is(err, store.ErrUnauthenticated):
		return fmt.Sprintf("not logged in (run: %s login)", config.AppName)
	case errors.Is(err, store.ErrUnavailable):
		return fmt.Sprintf("%v (set project in %s or %s)", store.ErrUnavailable, config.SettingsFile, config.ProjectEnv)
	case errors.Is(err, store.ErrNotFound):
		return "task not found"
	case errors.Is(err, syncer.ErrEmptyTitle):
		return "title required"
	case errors.Is(err, context.DeadlineExceeded):
		return "backend error: request timed out"
	case code == exitcode.BackendError:
		return "backend error: " + err.Error()
	}
	return err.Error()
}

// finish reports the outcome of a single intent: "ok", a notice for an
// intent that changed nothing, or the error.
func finish(cfg *config.Config, out, errOut io.Writer, err error) int {
	switch {
	case err == nil:
		notice(cfg, out, "ok")
		return exitcode.Success
	case errors.Is(err, syncer.ErrNoChange):
		notice(cfg, out, "nothing to change")
		return exitcode.Success
	}
	return Report(errOut, err)
}

// notice prints an informational line unless --quiet is set.
func notice(cfg *config.Config, out io.Writer, msg string) {
	if !cfg.Quiet {
		fmt.Fprintln(out, msg)
	}
}
