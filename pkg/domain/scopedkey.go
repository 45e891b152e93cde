package domain

import (
	"fmt"
	"strings"
)

// Scope addresses a project on the remote service.
type Scope struct {
	Org      string
	Campaign string
	Project  string
}

// ParseScope parses "org-campaign-project".
func ParseScope(s string) (Scope, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 3 {
		return Scope{}, fmt.Errorf("%w: %q", ErrInvalidScope, s)
	}
	for _, p := range parts {
		if p == "" {
			return Scope{}, fmt.Errorf("%w: %q", ErrInvalidScope, s)
		}
	}
	return Scope{Org: parts[0], Campaign: parts[1], Project: parts[2]}, nil
}

func (s Scope) String() string {
	return s.Org + "-" + s.Campaign + "-" + s.Project
}

// ScopedKey is the address of an object registered on the remote service:
// "<Qualname>-<token>-<org>-<campaign>-<project>".
type ScopedKey struct {
	Qualname string
	Token    string
	Scope    Scope
}

// NewScopedKey scopes a content key ("<Qualname>-<token>").
func NewScopedKey(key string, scope Scope) (ScopedKey, error) {
	qualname, token, ok := strings.Cut(key, "-")
	if !ok || qualname == "" || token == "" || strings.Contains(token, "-") {
		return ScopedKey{}, fmt.Errorf("%w: key %q", ErrInvalidScopedKey, key)
	}
	return ScopedKey{Qualname: qualname, Token: token, Scope: scope}, nil
}

// ParseScopedKey parses the string form of a ScopedKey.
func ParseScopedKey(s string) (ScopedKey, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 5 {
		return ScopedKey{}, fmt.Errorf("%w: %q", ErrInvalidScopedKey, s)
	}
	for _, p := range parts {
		if p == "" {
			return ScopedKey{}, fmt.Errorf("%w: %q", ErrInvalidScopedKey, s)
		}
	}
	return ScopedKey{
		Qualname: parts[0],
		Token:    parts[1],
		Scope:    Scope{Org: parts[2], Campaign: parts[3], Project: parts[4]},
	}, nil
}

// Key returns the unscoped content key.
func (k ScopedKey) Key() string {
	return k.Qualname + "-" + k.Token
}

func (k ScopedKey) String() string {
	return k.Key() + "-" + k.Scope.String()
}

// MarshalText implements encoding.TextMarshaler.
func (k ScopedKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *ScopedKey) UnmarshalText(text []byte) error {
	parsed, err := ParseScopedKey(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
