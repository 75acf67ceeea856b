// Package suggest produces candidate sub-tasks for a task title.
package suggest

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"neolist/internal/logging"
)

// ErrSuggestion wraps every failure to obtain suggestions, so callers can
// report it apart from store failures.
var ErrSuggestion = errors.New("failed to generate suggestions")

// API key environment variables, in lookup order.
var KeyEnv = []string{"GEMINI_API_KEY", "API_KEY"}

// Suggester turns a short task title into sub-task texts.
type Suggester interface {
	// Suggest returns suggested sub-tasks in order. An empty result is not an error.
	Suggest(ctx context.Context, title string) ([]string, error)
}

// Disabled is used when no API key is available. It always returns no suggestions.
type Disabled struct {
	logger *log.Logger
}

// NewDisabled returns a Suggester that never suggests anything.
func NewDisabled(logger *log.Logger) *Disabled {
	return &Disabled{logger: logging.OrDiscard(logger)}
}

// Suggest logs a warning and returns nothing.
func (d *Disabled) Suggest(ctx context.Context, title string) ([]string, error) {
	d.logger.Warn("API key not set, AI suggestions are disabled", "env", strings.Join(KeyEnv, " or "))
	return nil, nil
}

// KeyFromEnv returns the first non-empty API key variable.
func KeyFromEnv() string {
	for _, name := range KeyEnv {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			return v
		}
	}
	return ""
}

// FromEnv returns a Gemini suggester when an API key is set, otherwise Disabled.
func FromEnv(ctx context.Context, logger *log.Logger) (Suggester, error) {
	key := KeyFromEnv()
	if key == "" {
		return NewDisabled(logger), nil
	}
	g, err := NewGemini(ctx, key, logger, nil)
	if err != nil {
		return nil, err
	}
	return g, nil
}
