package domain

import (
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const MinPasswordLength = 6

var (
	ErrInvalidUsername  = errors.New("username must be 3-20 characters and use only letters, numbers, or underscores")
	ErrWeakPassword     = errors.New("password must be at least 6 characters")
	ErrWeakNewPassword  = errors.New("new password must be at least 6 characters")
	ErrPasswordMismatch = errors.New("password confirmation does not match")
	ErrEmptyPassword    = errors.New("password hash is required")
	ErrEmptyFullName    = errors.New("name is required")
	ErrInvalidEmail     = errors.New("please enter a valid email address")
	ErrInvalidPhone     = errors.New("please enter a valid phone number")
	ErrEmptyPhoto       = errors.New("please upload a profile photo before continuing")
)

var (
	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]{3,20}$`)
	phonePattern    = regexp.MustCompile(`^[0-9+\-\s()]{7,20}$`)
)

// User is a registered community member.
type User struct {
	ID              int64
	Username        string
	PasswordHash    string
	FullName        string
	Email           string
	Phone           string
	ProfilePhotoRef string
	CreatedAt       time.Time
}

// Profile holds the editable contact fields of a member.
type Profile struct {
	FullName string
	Email    string
	Phone    string
}

// NormalizeUsername is the form usernames are compared in.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// ValidateUsername trims the username and checks its shape. The submitted
// casing is kept for display.
func ValidateUsername(username string) (string, error) {
	username = strings.TrimSpace(username)
	if !usernamePattern.MatchString(username) {
		return "", ErrInvalidUsername
	}
	return username, nil
}

// ValidatePassword checks a new password and its confirmation.
func ValidatePassword(password, confirmation string) error {
	if len(password) < MinPasswordLength {
		return ErrWeakPassword
	}
	if password != confirmation {
		return ErrPasswordMismatch
	}
	return nil
}

// HashPassword derives the stored bcrypt hash.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword compares a candidate password with the stored hash.
func (u *User) CheckPassword(password string) bool {
	if u == nil || u.PasswordHash == "" || password == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// ValidEmail reports whether email is a bare address.
func ValidEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email && addr.Name == ""
}

// ValidPhone reports whether phone looks like a phone number.
func ValidPhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

// Normalize trims every field.
func (p Profile) Normalize() Profile {
	return Profile{
		FullName: strings.TrimSpace(p.FullName),
		Email:    strings.TrimSpace(p.Email),
		Phone:    strings.TrimSpace(p.Phone),
	}
}

// Problems lists every violated rule in form order.
func (p Profile) Problems() []error {
	var errs []error
	if p.FullName == "" {
		errs = append(errs, ErrEmptyFullName)
	}
	if !ValidEmail(p.Email) {
		errs = append(errs, ErrInvalidEmail)
	}
	if !ValidPhone(p.Phone) {
		errs = append(errs, ErrInvalidPhone)
	}
	return errs
}

// Validate returns the first violated rule.
func (p Profile) Validate() error {
	if errs := p.Problems(); len(errs) > 0 {
		return errs[0]
	}
	return nil
}

// Profile returns the member's contact fields.
func (u *User) Profile() Profile {
	return Profile{FullName: u.FullName, Email: u.Email, Phone: u.Phone}
}

// ApplyProfile overwrites the contact fields.
func (u *User) ApplyProfile(p Profile) {
	u.FullName = p.FullName
	u.Email = p.Email
	u.Phone = p.Phone
}

// Validate re-applies core invariants for persistence.
func (u *User) Validate() error {
	if _, err := ValidateUsername(u.Username); err != nil {
		return err
	}
	if u.PasswordHash == "" {
		return ErrEmptyPassword
	}
	return u.Profile().Validate()
}
