// Package domain holds the rules a signed-in member's own account follows
// when it is edited or removed.
package domain

import (
	"errors"
	"strings"

	"github.com/Apurer/pet-community/internal/shared/upload"
)

// ErrUpdateFailed is shown when an accepted edit could not be written.
var ErrUpdateFailed = errors.New("unable to update profile right now. Please try again")

// CarriedPhotoRef picks the profile photo an edit form starts from: the
// reference the form carried over from an earlier attempt when it is the
// persisted photo or a pending upload stored for username's edits,
// otherwise the persisted photo.
func CarriedPhotoRef(carried, persisted, username string) string {
	carried = strings.TrimSpace(carried)
	if carried == "" || carried == persisted {
		return persisted
	}
	seed, ok := upload.StoredSeed(carried, upload.CategoryProfiles)
	if !ok || username == "" || seed != ProfileEditSeed(username) {
		return persisted
	}
	return carried
}

// ProfileEditSeed names profile photos uploaded while editing.
func ProfileEditSeed(username string) string {
	return username + "_profile_edit"
}

// PetPhotoPrefix is the reconciler prefix for pet photos uploaded while
// editing.
func PetPhotoPrefix(username string) string {
	return username + "_pet_edit"
}

// SupersededPhotos lists the previous references that none of the current
// ones still use. Empty references are skipped.
func SupersededPhotos(previous, current []string) []string {
	kept := make(map[string]struct{}, len(current))
	for _, ref := range current {
		kept[ref] = struct{}{}
	}
	var stale []string
	for _, ref := range previous {
		if ref == "" {
			continue
		}
		if _, ok := kept[ref]; ok {
			continue
		}
		kept[ref] = struct{}{}
		stale = append(stale, ref)
	}
	return stale
}
