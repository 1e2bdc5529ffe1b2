// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package gate

import (
	"regexp"
	"strings"

	"github.com/pdiddy/pdfdesk/internal/errinfo"
)

// ReleasePolicy decides whether the credentials entered in the modal allow
// the artifact to be released. The default FormatPolicy checks the shape of
// the values only and authenticates nothing.
type ReleasePolicy interface {
	CheckEmail(email string) error
	CheckPassword(password string) error
}

// User-facing messages for rejected credentials.
const (
	MsgInvalidEmail    = "Invalid email format."
	MsgInvalidPassword = "Password must be at least 8 characters long and include uppercase, lowercase, number, and special character."
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

	// RE2 has no lookahead, so the character classes are checked one by one.
	passwordCharset = regexp.MustCompile(`^[A-Za-z\d!@#$%^&*()_+]{8,}$`)
	passwordClasses = []*regexp.Regexp{
		regexp.MustCompile(`[a-z]`),
		regexp.MustCompile(`[A-Z]`),
		regexp.MustCompile(`\d`),
		regexp.MustCompile(`[!@#$%^&*()_+]`),
	}
)

// FormatPolicy accepts any email of the form local@domain.tld and any
// password of eight or more characters drawn from letters, digits and
// !@#$%^&*()_+ that contains a lowercase letter, an uppercase letter, a digit
// and one of the special characters. Values are trimmed first.
type FormatPolicy struct{}

// CheckEmail implements ReleasePolicy.
func (FormatPolicy) CheckEmail(email string) error {
	if !ValidEmail(email) {
		return errinfo.Validation(MsgInvalidEmail)
	}
	return nil
}

// CheckPassword implements ReleasePolicy.
func (FormatPolicy) CheckPassword(password string) error {
	if !ValidPassword(password) {
		return errinfo.Validation(MsgInvalidPassword)
	}
	return nil
}

// ValidEmail reports whether s looks like an email address.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(strings.TrimSpace(s))
}

// ValidPassword reports whether s satisfies the password rules.
func ValidPassword(s string) bool {
	s = strings.TrimSpace(s)
	if !passwordCharset.MatchString(s) {
		return false
	}
	for _, re := range passwordClasses {
		if !re.MatchString(s) {
			return false
		}
	}
	return true
}
