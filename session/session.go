// Package session holds the Advent of Code session credential.
//
// The credential is the opaque value of the "session" cookie taken from a
// logged-in browser. The package never inspects its format; the only
// requirement is that it is non-empty.
package session

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// EnvVar is the environment variable consulted by FromEnv.
const EnvVar = "AOC_SESSION"

// ErrEmpty indicates that no usable session credential was found.
var ErrEmpty = errors.New("session token is empty")

// Token is the opaque session credential attached to every judge request.
type Token string

// New wraps a raw credential string, trimming surrounding whitespace.
func New(raw string) (Token, error) {
	t := Token(strings.TrimSpace(raw))
	if t == "" {
		return "", ErrEmpty
	}

	return t, nil
}

// String returns the credential value.
func (t Token) String() string {
	return string(t)
}

// LoadFile reads the credential from a file, typically a .session file
// next to the user's solutions.
func LoadFile(path string) (Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read session file: %w", err)
	}

	t, err := New(string(data))
	if err != nil {
		return "", fmt.Errorf("session file %s: %w", path, err)
	}

	return t, nil
}

// FromEnv reads the credential from the AOC_SESSION environment variable.
func FromEnv() (Token, error) {
	t, err := New(os.Getenv(EnvVar))
	if err != nil {
		return "", fmt.Errorf("%s: %w", EnvVar, err)
	}

	return t, nil
}

// Load resolves the credential from the file at path if it exists,
// falling back to the environment.
func Load(path string) (Token, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}

	return FromEnv()
}
