// Package domain models the in-progress state of the five step sign-up
// wizard.
package domain

import (
	"errors"
	"strings"

	pettypes "github.com/Apurer/pet-community/internal/domains/pets/application/types"
)

const (
	FirstStep = 1
	// FinalStep is the review step; it has no predicate of its own.
	FinalStep = 5
)

var ErrIncomplete = errors.New("your onboarding data is incomplete. Please finish all steps")

// Draft accumulates what the visitor entered so far. The password is only
// ever held as its hash.
type Draft struct {
	Username        string                 `json:"username"`
	PasswordHash    string                 `json:"password_hash"`
	FullName        string                 `json:"full_name"`
	Email           string                 `json:"email"`
	Phone           string                 `json:"phone"`
	ProfilePhotoRef string                 `json:"profile_photo"`
	Pets            []pettypes.AcceptedPet `json:"pets"`
}

// StepComplete reports whether the data a step collects is present.
func (d *Draft) StepComplete(step int) bool {
	if d == nil {
		return false
	}
	switch step {
	case 1:
		return notBlank(d.Username) && notBlank(d.PasswordHash)
	case 2:
		return notBlank(d.FullName) && notBlank(d.Email) && notBlank(d.Phone)
	case 3:
		return notBlank(d.ProfilePhotoRef)
	case 4:
		return len(d.Pets) > 0
	default:
		return false
	}
}

// FirstIncompleteBefore returns the earliest step before step whose data is
// missing, or 0 when step may be shown. Moving back is always allowed.
func (d *Draft) FirstIncompleteBefore(step int) int {
	for current := FirstStep; current < step && current < FinalStep; current++ {
		if !d.StepComplete(current) {
			return current
		}
	}
	return 0
}

// PhotoRefs lists every stored photo the draft references.
func (d *Draft) PhotoRefs() []string {
	if d == nil {
		return nil
	}
	var refs []string
	if d.ProfilePhotoRef != "" {
		refs = append(refs, d.ProfilePhotoRef)
	}
	for _, p := range d.Pets {
		if p.PhotoRef != "" {
			refs = append(refs, p.PhotoRef)
		}
	}
	return refs
}

func notBlank(s string) bool {
	return strings.TrimSpace(s) != ""
}
