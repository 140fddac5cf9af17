package aimage

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// CredentialVerifier checks HTTP Basic credentials against a single configured
// username and password. The password may be stored as plain text or as a
// bcrypt hash ($2a$, $2b$ or $2y$ prefix).
type CredentialVerifier struct {
	username string
	password string
	hashed   bool
}

// NewCredentialVerifier creates a verifier for one username/password pair.
func NewCredentialVerifier(username, password string) (*CredentialVerifier, error) {
	if username == "" {
		return nil, errors.New("new credential verifier: username cannot be empty")
	}
	if password == "" {
		return nil, errors.New("new credential verifier: password cannot be empty")
	}

	hashed := isBcryptHash(password)
	if hashed {
		if _, err := bcrypt.Cost([]byte(password)); err != nil {
			return nil, fmt.Errorf("new credential verifier: invalid bcrypt hash: %w", err)
		}
	}

	return &CredentialVerifier{
		username: username,
		password: password,
		hashed:   hashed,
	}, nil
}

// Verify reports whether the supplied credentials match.
func (v *CredentialVerifier) Verify(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(v.username)) == 1

	var passOK bool
	if v.hashed {
		passOK = bcrypt.CompareHashAndPassword([]byte(v.password), []byte(password)) == nil
	} else {
		passOK = subtle.ConstantTimeCompare([]byte(password), []byte(v.password)) == 1
	}

	return userOK && passOK
}

// HashPassword returns a bcrypt hash suitable for the auth.password setting.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("hash password: password cannot be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func isBcryptHash(s string) bool {
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}
