package validate

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/hast-app/hastauth/messages"
)

// Code identifies why an input was rejected.
type Code uint8

const (
	CodeUsernameRequired Code = iota + 1
	CodeUsernameInvalid
	CodeEmailInvalid
	CodePasswordRequired
	CodePasswordTooShort
	CodePasswordMismatch
	CodeOldPasswordRequired
	CodeFullNameRequired
	CodePhoneInvalid
	CodeGenderInvalid
	CodeDateInvalid
)

// MinPasswordLength is the shortest password the UI accepts.
const MinPasswordLength = 6

var (
	emailRe    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_]{3,}$`)
	phoneRe    = regexp.MustCompile(`^[0-9]{10,11}$`)
	nonDigitRe = regexp.MustCompile(`\D`)
)

// Error is a rejected input.
type Error struct {
	Field string
	Code  Code
}

func (e *Error) Error() string {
	return e.Message(messages.Vietnamese())
}

// Message returns the localized text for e from c.
func (e *Error) Message(c messages.Catalog) string {
	v := c.Validation
	switch e.Code {
	case CodeUsernameRequired:
		return v.UsernameRequired
	case CodeUsernameInvalid:
		return v.UsernameInvalid
	case CodeEmailInvalid:
		return v.EmailInvalid
	case CodePasswordRequired:
		return v.PasswordRequired
	case CodePasswordTooShort:
		return v.PasswordTooShort
	case CodePasswordMismatch:
		return v.PasswordMismatch
	case CodeOldPasswordRequired:
		return v.OldPasswordRequired
	case CodeFullNameRequired:
		return v.FullNameRequired
	case CodePhoneInvalid:
		return v.PhoneInvalid
	case CodeGenderInvalid:
		return v.GenderInvalid
	case CodeDateInvalid:
		return v.DateInvalid
	default:
		return "invalid " + e.Field
	}
}

func reject(field string, code Code) error {
	return &Error{Field: field, Code: code}
}

// Email reports whether s looks like an email address.
func Email(s string) bool { return emailRe.MatchString(s) }

// Username reports whether s is at least three letters, digits or underscores.
func Username(s string) bool { return usernameRe.MatchString(s) }

// Password reports whether s is long enough.
func Password(s string) bool { return utf8.RuneCountInString(s) >= MinPasswordLength }

// LoginInput accepts either an email or a username.
func LoginInput(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return reject("username", CodeUsernameRequired)
	}
	if strings.Contains(s, "@") {
		if !Email(s) {
			return reject("username", CodeEmailInvalid)
		}
		return nil
	}
	if !Username(s) {
		return reject("username", CodeUsernameInvalid)
	}
	return nil
}

// PasswordInput checks a password typed on the login screen.
func PasswordInput(s string) error {
	if strings.TrimSpace(s) == "" {
		return reject("password", CodePasswordRequired)
	}
	if !Password(s) {
		return reject("password", CodePasswordTooShort)
	}
	return nil
}

// PasswordChange checks the change-password form. The session client does
// not call it; it is offered to front ends.
func PasswordChange(oldPassword, newPassword, confirm string) error {
	if oldPassword == "" {
		return reject("old_password", CodeOldPasswordRequired)
	}
	if newPassword == "" {
		return reject("new_password", CodePasswordRequired)
	}
	if !Password(newPassword) {
		return reject("new_password", CodePasswordTooShort)
	}
	if newPassword != confirm {
		return reject("confirm_new_password", CodePasswordMismatch)
	}
	return nil
}

// Phone reports whether s holds 10 or 11 digits once separators are removed.
func Phone(s string) bool {
	return phoneRe.MatchString(nonDigitRe.ReplaceAllString(s, ""))
}

// PhoneInput is Phone as an error.
func PhoneInput(s string) error {
	if !Phone(s) {
		return reject("phone", CodePhoneInvalid)
	}
	return nil
}

// FullName rejects a blank name.
func FullName(s string) error {
	if strings.TrimSpace(s) == "" {
		return reject("full_name", CodeFullNameRequired)
	}
	return nil
}

// Gender maps the accepted spellings to the backend codes "1" (Nam) and
// "2" (Nữ).
func Gender(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "nam", "male", "m":
		return "1", nil
	case "2", "nữ", "nu", "female", "f":
		return "2", nil
	default:
		return "", reject("gender", CodeGenderInvalid)
	}
}

// Date checks a YYYY-MM-DD calendar date.
func Date(s string) error {
	if _, err := time.Parse(time.DateOnly, strings.TrimSpace(s)); err != nil {
		return reject("dob", CodeDateInvalid)
	}
	return nil
}
