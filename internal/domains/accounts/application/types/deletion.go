package types

// DeletionInput identifies the account to remove.
type DeletionInput struct {
	UserID int64
}

// DeletedUser is what remains known about a removed user row. A zero
// Username means the row was already gone.
type DeletedUser struct {
	ID              int64  `json:"id"`
	Username        string `json:"username"`
	ProfilePhotoRef string `json:"profile_photo"`
}

// DeletedPets summarizes the pet rows removed with an account.
type DeletedPets struct {
	Count     int      `json:"count"`
	PhotoRefs []string `json:"photo_refs"`
}

// DeletionSummary is the outcome of removing an account.
type DeletionSummary struct {
	User          DeletedUser `json:"user"`
	Pets          DeletedPets `json:"pets"`
	PhotosRemoved int         `json:"photos_removed"`
}

// PhotoRefs lists every file the deleted rows referenced.
func (s DeletionSummary) PhotoRefs() []string {
	refs := make([]string, 0, len(s.Pets.PhotoRefs)+1)
	if s.User.ProfilePhotoRef != "" {
		refs = append(refs, s.User.ProfilePhotoRef)
	}
	return append(refs, s.Pets.PhotoRefs...)
}
