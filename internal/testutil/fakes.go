package testutil

import (
	"context"
	"sync"
)

// FakeIdentity is an in-memory auth.Identity.
type FakeIdentity struct {
	mu   sync.Mutex
	user string

	// SignInUser is returned by SignIn.
	SignInUser string

	// SignInErr makes SignIn fail.
	SignInErr error

	// SignOuts counts SignOut calls.
	SignOuts int
}

// NewFakeIdentity returns an identity signed in as user ("" for signed out).
func NewFakeIdentity(user string) *FakeIdentity {
	return &FakeIdentity{user: user, SignInUser: user}
}

// UserID implements auth.Identity.
func (f *FakeIdentity) UserID() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.user
}

// SignIn implements auth.Identity.
func (f *FakeIdentity) SignIn(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SignInErr != nil {
		return "", f.SignInErr
	}
	f.user = f.SignInUser
	return f.user, nil
}

// SignOut implements auth.Identity.
func (f *FakeIdentity) SignOut() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.user = ""
	f.SignOuts++
}

// FakeSuggester is a canned suggest.Suggester.
type FakeSuggester struct {
	mu sync.Mutex

	Suggestions []string
	Err         error
	Titles      []string
}

// Suggest implements suggest.Suggester.
func (f *FakeSuggester) Suggest(ctx context.Context, title string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Titles = append(f.Titles, title)
	if f.Err != nil {
		return nil, f.Err
	}
	out := make([]string, len(f.Suggestions))
	copy(out, f.Suggestions)
	return out, nil
}
