package auth

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/golang-jwt/jwt/v5"
)

// Session is the identity saved next to the OAuth token.
type Session struct {
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
}

// SessionFromIDToken reads the subject and email claims of an OpenID
// Connect ID token. The signature is not checked: the token comes straight
// from the provider's token endpoint over TLS.
func SessionFromIDToken(raw string) (Session, error) {
	if raw == "" {
		return Session{}, ErrNoIdentity
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return Session{}, fmt.Errorf("invalid id_token: %w", err)
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return Session{}, ErrNoIdentity
	}
	email, _ := claims["email"].(string)
	return Session{UserID: sub, Email: email}, nil
}

// LoadSession reads a session file.
func LoadSession(path string) (Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Session{}, err
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return Session{}, fmt.Errorf("invalid session file: %w", err)
	}
	return s, nil
}

// SaveSession writes a session file with mode 0600.
func SaveSession(path string, s Session) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
