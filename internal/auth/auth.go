// Package auth provides the identity capability: who is signed in, and the
// calls to sign in and out.
package auth

import (
	"context"
	"errors"
)

var (
	// ErrNoClient means oauth_client.json is missing from the config directory.
	ErrNoClient = errors.New("oauth_client.json not found")

	// ErrCancelled means the sign-in flow was abandoned before completing.
	ErrCancelled = errors.New("sign-in cancelled")

	// ErrNoIdentity means the provider returned no usable user identifier.
	ErrNoIdentity = errors.New("no user identity in token")
)

// Identity yields a stable user identifier while signed in.
type Identity interface {
	// UserID returns the signed-in user's identifier, or "" when signed out.
	UserID() string

	// SignIn runs the interactive sign-in and returns the new user ID.
	SignIn(ctx context.Context) (string, error)

	// SignOut forgets the current identity. Failures are logged, not returned.
	SignOut()
}
