package types

import (
	pettypes "github.com/Apurer/pet-community/internal/domains/pets/application/types"
	userdomain "github.com/Apurer/pet-community/internal/domains/users/domain"
	"github.com/Apurer/pet-community/internal/shared/upload"
)

// EditInput is one submission of the profile edit form.
type EditInput struct {
	Profile     userdomain.Profile
	NewPassword string
	// CarriedProfilePhotoRef is the photo the form kept from an earlier
	// attempt; it is only trusted inside the profile upload area.
	CarriedProfilePhotoRef string
	ProfilePhoto           upload.File
	Rows                   []pettypes.RowInput
}

// EditForm is what the profile edit page displays.
type EditForm struct {
	Username        string
	Profile         userdomain.Profile
	ProfilePhotoRef string
	Pets            []pettypes.DraftRow
}

// WithBlankRow guarantees the pet section offers at least one row.
func (f *EditForm) WithBlankRow() *EditForm {
	if len(f.Pets) == 0 {
		f.Pets = []pettypes.DraftRow{{}}
	}
	return f
}
