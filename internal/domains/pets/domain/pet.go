package domain

import (
	"errors"
	"strings"

	"github.com/Apurer/pet-community/internal/shared/upload"
)

const (
	// MinAge and MaxAge bound the accepted pet age in whole years.
	MinAge = 0
	MaxAge = 50
)

// Details carries the owner-independent fields of a pet record.
type Details struct {
	Name     string
	Breed    string
	Age      int
	PhotoRef string
}

// Pet represents a persisted pet row owned by a community member.
type Pet struct {
	ID      int64
	OwnerID int64
	Details
}

var (
	ErrEmptyName  = errors.New("name is required")
	ErrEmptyBreed = errors.New("breed is required")
	ErrAgeFormat  = errors.New("age must be a whole number")
	ErrAgeRange   = errors.New("age must be between 0 and 50")
	ErrEmptyPhoto = errors.New("photo is required")
	// ErrNoPets rejects a pet form that produced no acceptable row.
	ErrNoPets     = errors.New("please add at least one pet with complete details")
)

// NewPet validates the invariants and builds a new Pet for the given owner.
func NewPet(id, ownerID int64, details Details) (*Pet, error) {
	if err := details.Validate(); err != nil {
		return nil, err
	}
	return &Pet{ID: id, OwnerID: ownerID, Details: details}, nil
}

// Validate returns the first violated invariant.
func (d Details) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return ErrEmptyName
	}
	if strings.TrimSpace(d.Breed) == "" {
		return ErrEmptyBreed
	}
	if d.Age < MinAge || d.Age > MaxAge {
		return ErrAgeRange
	}
	if strings.TrimSpace(d.PhotoRef) == "" {
		return ErrEmptyPhoto
	}
	return nil
}

// PhotoRefs lists the non-empty photo references of the given pets.
func PhotoRefs(pets []*Pet) []string {
	refs := make([]string, 0, len(pets))
	for _, p := range pets {
		if p == nil || p.PhotoRef == "" {
			continue
		}
		refs = append(refs, p.PhotoRef)
	}
	return refs
}

// PhotoUploadedFor reports whether ref is a pet photo the upload store saved
// for a row reconciled with photoNamePrefix, whose seed is
// "<photoNamePrefix>_<row number>".
func PhotoUploadedFor(ref, photoNamePrefix string) bool {
	if photoNamePrefix == "" {
		return false
	}
	seed, ok := upload.StoredSeed(ref, upload.CategoryPets)
	if !ok {
		return false
	}
	n, ok := strings.CutPrefix(seed, photoNamePrefix+"_")
	if !ok || n == "" {
		return false
	}
	for _, r := range n {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
