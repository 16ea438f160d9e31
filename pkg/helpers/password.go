package helpers

import (
	"regexp"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes the plain text password using bcrypt with the given
// cost. Cost 0 (or anything below bcrypt's minimum) falls back to the default.
func HashPassword(plain string, cost int) (string, error) {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CompareHashAndPassword compares a bcrypt hash with a plain password.
// The comparison is constant-time, delegated to bcrypt.
func CompareHashAndPassword(hash string, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

var (
	reUpper = regexp.MustCompile(`[A-Z]`)
	reLower = regexp.MustCompile(`[a-z]`)
	reDigit = regexp.MustCompile(`[0-9]`)
)

// PasswordMeetsPolicy enforces the minimum password policy: at least 8
// characters with an uppercase letter, a lowercase letter and a digit.
func PasswordMeetsPolicy(plain string) bool {
	if len(plain) < 8 {
		return false
	}
	return reUpper.MatchString(plain) && reLower.MatchString(plain) && reDigit.MatchString(plain)
}
