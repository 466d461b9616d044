// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package primitives

import (
	"fmt"
	"strings"
)

const (
	// MinAccountIDLen is the minimum length of a valid account id.
	MinAccountIDLen = 2
	// MaxAccountIDLen is the maximum length of a valid account id.
	MaxAccountIDLen = 64

	// SystemAccountID is the account that owns system actions such as refunds.
	SystemAccountID AccountID = "system"
)

// AccountID is the human readable name of an account.
//
// An account id consists of parts separated by '.', each part consists of
// lowercase alphanumeric characters separated by either '_' or '-'.
type AccountID string

// ParseAccountID validates s and converts it into AccountID.
func ParseAccountID(s string) (AccountID, error) {
	if err := validateAccountID(s); err != nil {
		return "", err
	}
	return AccountID(s), nil
}

// MustParseAccountID converts s into AccountID, panic on invalid input.
func MustParseAccountID(s string) AccountID {
	id, err := ParseAccountID(s)
	if err != nil {
		panic(err)
	}
	return id
}

// String implements stringer.
func (id AccountID) String() string {
	return string(id)
}

// Validate checks the account id format.
func (id AccountID) Validate() error {
	return validateAccountID(string(id))
}

// IsTopLevel returns whether the id has no parent account, e.g. "near".
func (id AccountID) IsTopLevel() bool {
	return id == SystemAccountID || !strings.Contains(string(id), ".")
}

// IsImplicit returns whether the id is the hex form of an ED25519 public key.
func (id AccountID) IsImplicit() bool {
	if len(id) != 64 {
		return false
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f') {
			return false
		}
	}
	return true
}

// IsSubAccountOf returns whether id is a direct sub account of parent, e.g. "app.near" of "near".
func (id AccountID) IsSubAccountOf(parent AccountID) bool {
	s, p := string(id), string(parent)
	return strings.HasSuffix(s, p) &&
		len(s) >= len(p)+2 &&
		s[len(s)-len(p)-1] == '.' &&
		!strings.Contains(s[:len(s)-len(p)-1], ".")
}

func validateAccountID(s string) error {
	if len(s) < MinAccountIDLen {
		return fmt.Errorf("account id %q is too short", s)
	}
	if len(s) > MaxAccountIDLen {
		return fmt.Errorf("account id %q is too long", s)
	}
	lastSeparator := true // disallows leading separator
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			lastSeparator = false
		case c == '-' || c == '_' || c == '.':
			if lastSeparator {
				return fmt.Errorf("account id %q has redundant separator at %d", s, i)
			}
			lastSeparator = true
		default:
			return fmt.Errorf("account id %q has invalid character %q at %d", s, c, i)
		}
	}
	if lastSeparator {
		return fmt.Errorf("account id %q ends with separator", s)
	}
	return nil
}
