// Package validate holds the client-side checks run on account and task
// form fields before anything reaches storage.
package validate

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	ErrEmailEmpty     = errors.New("please enter your email address")
	ErrEmailShort     = errors.New("email is too short")
	ErrEmailNoAt      = errors.New("email must contain @ symbol")
	ErrEmailShape     = errors.New("please enter a valid email (e.g., user@example.com)")
	ErrEmailInvalid   = errors.New("please enter a valid email address")
	ErrUsernameEmpty  = errors.New("please enter a username")
	ErrUsernameShort  = errors.New("username must be at least 3 characters")
	ErrUsernameLong   = errors.New("username must be less than 20 characters")
	ErrUsernameChars  = errors.New("username can only contain letters, numbers, dots, and underscores")
	ErrUsernameStart  = errors.New("username must start with a letter")
	ErrUsernameRepeat = errors.New("username cannot have consecutive dots or underscores")
	ErrPasswordEmpty  = errors.New("please enter a password")
	ErrTitleEmpty     = errors.New("please enter a task title")
)

var (
	emailRegex    = regexp.MustCompile(`^[A-Z0-9a-z._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,64}$`)
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9._]+$`)
)

const passwordSpecials = "!@#$%^&*()_+-=[]{}|;':\"\\,.<>?/~`"

// Email checks an email address
func Email(email string) error {
	email = strings.TrimSpace(email)

	switch {
	case email == "":
		return ErrEmailEmpty
	case utf8.RuneCountInString(email) < 5:
		return ErrEmailShort
	case !strings.Contains(email, "@"):
		return ErrEmailNoAt
	}

	parts := strings.Split(email, "@")
	if len(parts) != 2 || !strings.Contains(parts[1], ".") {
		return ErrEmailShape
	}
	if !emailRegex.MatchString(email) {
		return ErrEmailInvalid
	}
	return nil
}

// Username checks a display name chosen at sign-up
func Username(username string) error {
	username = strings.TrimSpace(username)
	n := utf8.RuneCountInString(username)

	switch {
	case username == "":
		return ErrUsernameEmpty
	case n < 3:
		return ErrUsernameShort
	case n > 20:
		return ErrUsernameLong
	case !usernameRegex.MatchString(username):
		return ErrUsernameChars
	case !unicode.IsLetter(rune(username[0])):
		return ErrUsernameStart
	case strings.Contains(username, "..") || strings.Contains(username, "__"):
		return ErrUsernameRepeat
	}
	return nil
}

// PasswordError lists every strength rule a password fails
type PasswordError struct {
	Missing []string
}

func (e *PasswordError) Error() string {
	return "password must contain:\n• " + strings.Join(e.Missing, "\n• ")
}

// Password checks password strength. A failing password yields a
// *PasswordError naming all unmet requirements.
func Password(password string) error {
	if password == "" {
		return ErrPasswordEmpty
	}

	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
		if strings.ContainsRune(passwordSpecials, r) {
			special = true
		}
	}

	var missing []string
	if utf8.RuneCountInString(password) < 8 {
		missing = append(missing, "At least 8 characters")
	}
	if !upper {
		missing = append(missing, "At least 1 uppercase letter (A-Z)")
	}
	if !lower {
		missing = append(missing, "At least 1 lowercase letter (a-z)")
	}
	if !digit {
		missing = append(missing, "At least 1 number (0-9)")
	}
	if !special {
		missing = append(missing, "At least 1 special character (!@#$%^&*...)")
	}

	if len(missing) > 0 {
		return &PasswordError{Missing: missing}
	}
	return nil
}

// Title checks a task title is not blank
func Title(title string) error {
	if strings.TrimSpace(title) == "" {
		return ErrTitleEmpty
	}
	return nil
}
