// Comicrec - Comic Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/comicrec

package auth

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost is the production hashing cost.
const bcryptCost = 12

// maxPasswordBytes is the bcrypt input limit.
const maxPasswordBytes = 72

var (
	// ErrInvalidCredentials is returned when an email/password pair does not match.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrWeakPassword is returned when a password violates the PasswordPolicy.
	ErrWeakPassword = errors.New("password does not meet policy")
)

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	return hashPassword(password, bcryptCost)
}

func hashPassword(password string, cost int) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password is required")
	}
	if len(password) > maxPasswordBytes {
		return "", fmt.Errorf("%w: longer than %d bytes", ErrWeakPassword, maxPasswordBytes)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword compares password with a stored bcrypt hash. A mismatch
// or a malformed hash returns ErrInvalidCredentials.
func CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// PasswordPolicy defines requirements for user passwords.
type PasswordPolicy struct {
	MinLength             int
	RequireLetter         bool
	RequireDigit          bool
	MaxConsecutiveRepeats int // 0 disables the check
	ForbidCommon          bool
	ForbidEmailSimilarity bool
}

// DefaultPasswordPolicy returns the policy applied at registration.
func DefaultPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{
		MinLength:             8,
		RequireLetter:         true,
		RequireDigit:          true,
		MaxConsecutiveRepeats: 4,
		ForbidCommon:          true,
		ForbidEmailSimilarity: true,
	}
}

// Check returns every policy violation for password. An empty slice means
// the password is acceptable.
func (p PasswordPolicy) Check(password, email string) []string {
	var problems []string

	if len(password) < p.MinLength {
		problems = append(problems, fmt.Sprintf("password must be at least %d characters", p.MinLength))
	}
	if len(password) > maxPasswordBytes {
		problems = append(problems, fmt.Sprintf("password must be at most %d bytes", maxPasswordBytes))
	}

	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if p.RequireLetter && !hasLetter {
		problems = append(problems, "password must contain a letter")
	}
	if p.RequireDigit && !hasDigit {
		problems = append(problems, "password must contain a digit")
	}

	if p.MaxConsecutiveRepeats > 0 && maxConsecutiveRepeats(password) > p.MaxConsecutiveRepeats {
		problems = append(problems,
			fmt.Sprintf("password cannot repeat a character more than %d times in a row", p.MaxConsecutiveRepeats))
	}
	if p.ForbidCommon && isCommonPassword(password) {
		problems = append(problems, "password is too common")
	}
	if p.ForbidEmailSimilarity && isSimilarToEmail(password, email) {
		problems = append(problems, "password is too similar to the email address")
	}

	return problems
}

// Validate returns an error wrapping ErrWeakPassword when password violates the policy.
func (p PasswordPolicy) Validate(password, email string) error {
	if problems := p.Check(password, email); len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrWeakPassword, strings.Join(problems, "; "))
	}
	return nil
}

func maxConsecutiveRepeats(password string) int {
	longest, current := 0, 0
	var last rune
	for i, r := range password {
		if i > 0 && r == last {
			current++
		} else {
			current = 1
		}
		if current > longest {
			longest = current
		}
		last = r
	}
	return longest
}

var commonPasswords = map[string]struct{}{
	"12345678": {}, "123456789": {}, "1234567890": {}, "password": {},
	"password1": {}, "password123": {}, "passw0rd": {}, "qwerty123": {},
	"abcd1234": {}, "1q2w3e4r": {}, "letmein123": {}, "welcome1": {},
	"welcome123": {}, "iloveyou1": {}, "admin123": {}, "test1234": {},
	"testing123": {}, "changeme1": {}, "superman1": {}, "batman123": {},
	"spiderman1": {}, "marvel123": {}, "comics123": {}, "comicrec1": {},
}

func isCommonPassword(password string) bool {
	_, ok := commonPasswords[strings.ToLower(password)]
	return ok
}

// isSimilarToEmail reports whether the password contains the local part of
// the email (or the reverse), ignoring case. Local parts shorter than four
// characters are not checked.
func isSimilarToEmail(password, email string) bool {
	local, _, _ := strings.Cut(strings.ToLower(email), "@")
	if len(local) < 4 {
		return false
	}
	lower := strings.ToLower(password)
	return strings.Contains(lower, local) || strings.Contains(lower, reverseString(local))
}

func reverseString(s string) string {
	runes := []rune(s)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return string(runes)
}
