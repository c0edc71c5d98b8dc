package types

import (
	"strconv"
	"strings"

	"github.com/Apurer/pet-community/internal/domains/pets/domain"
	"github.com/Apurer/pet-community/internal/shared/upload"
)

// RowFields bundles the per-field sequences of a multi-row pet form. The
// sequences may have different lengths.
type RowFields struct {
	Names          []string
	Breeds         []string
	Ages           []string
	ExistingPhotos []string
}

// RowInput is one submitted pet row before validation.
type RowInput struct {
	Name             string
	Breed            string
	AgeRaw           string
	ExistingPhotoRef string
	Upload           upload.File
}

// DraftRow is the redisplayable state of a row after one reconciliation pass.
type DraftRow struct {
	PetName  string `json:"pet_name"`
	Breed    string `json:"breed"`
	AgeRaw   string `json:"age"`
	PhotoRef string `json:"photo"`
}

// AcceptedPet is a row that passed every rule and may be persisted.
type AcceptedPet struct {
	PetName  string `json:"pet_name"`
	Breed    string `json:"breed"`
	Age      int    `json:"age"`
	PhotoRef string `json:"photo"`
}

// ReconcileResult is the outcome of one reconciliation pass.
type ReconcileResult struct {
	Accepted []AcceptedPet
	Drafts   []DraftRow
	Errors   []string
}

// OK reports whether the pass produced no errors.
func (r ReconcileResult) OK() bool {
	return len(r.Errors) == 0
}

// ZipRows pairs the field sequences and upload descriptors by index. The
// row count is the longest sequence; missing entries are empty strings or
// upload.None.
func ZipRows(fields RowFields, uploads []upload.File) []RowInput {
	total := max(len(fields.Names), len(fields.Breeds), len(fields.Ages), len(fields.ExistingPhotos), len(uploads))
	out := make([]RowInput, total)
	for i := range out {
		out[i] = RowInput{
			Name:             at(fields.Names, i),
			Breed:            at(fields.Breeds, i),
			AgeRaw:           at(fields.Ages, i),
			ExistingPhotoRef: at(fields.ExistingPhotos, i),
			Upload:           upload.None,
		}
		if i < len(uploads) {
			out[i].Upload = uploads[i]
		}
	}
	return out
}

func at(values []string, i int) string {
	if i < len(values) {
		return values[i]
	}
	return ""
}

// Details converts the accepted row into domain details.
func (a AcceptedPet) Details() domain.Details {
	return domain.Details{Name: a.PetName, Breed: a.Breed, Age: a.Age, PhotoRef: a.PhotoRef}
}

// DetailsOf converts a batch of accepted rows.
func DetailsOf(accepted []AcceptedPet) []domain.Details {
	out := make([]domain.Details, 0, len(accepted))
	for _, a := range accepted {
		out = append(out, a.Details())
	}
	return out
}

// DraftsFromPets seeds an edit form from persisted pets.
func DraftsFromPets(pets []*domain.Pet) []DraftRow {
	out := make([]DraftRow, 0, len(pets))
	for _, p := range pets {
		if p == nil {
			continue
		}
		out = append(out, DraftRow{PetName: p.Name, Breed: p.Breed, AgeRaw: strconv.Itoa(p.Age), PhotoRef: p.PhotoRef})
	}
	return out
}

// DraftsFromAccepted seeds a form from rows accepted on an earlier pass.
func DraftsFromAccepted(accepted []AcceptedPet) []DraftRow {
	out := make([]DraftRow, 0, len(accepted))
	for _, a := range accepted {
		out = append(out, DraftRow{PetName: a.PetName, Breed: a.Breed, AgeRaw: strconv.Itoa(a.Age), PhotoRef: a.PhotoRef})
	}
	return out
}

// ClaimPhotos returns rows whose carried photo references the owner may keep:
// a reference listed in owned, or one stored for a row reconciled with one of
// prefixes. Any other reference is cleared.
func ClaimPhotos(rows []RowInput, owned []string, prefixes ...string) []RowInput {
	held := make(map[string]struct{}, len(owned))
	for _, ref := range owned {
		held[ref] = struct{}{}
	}
	out := make([]RowInput, len(rows))
	for i, row := range rows {
		out[i] = row
		ref := strings.TrimSpace(row.ExistingPhotoRef)
		if ref == "" {
			continue
		}
		if _, ok := held[ref]; ok {
			continue
		}
		if !uploadedUnderAny(ref, prefixes) {
			out[i].ExistingPhotoRef = ""
		}
	}
	return out
}

func uploadedUnderAny(ref string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if domain.PhotoUploadedFor(ref, prefix) {
			return true
		}
	}
	return false
}

// PhotoRefsOf lists the non-empty photo references of accepted rows.
func PhotoRefsOf(accepted []AcceptedPet) []string {
	refs := make([]string, 0, len(accepted))
	for _, a := range accepted {
		if a.PhotoRef != "" {
			refs = append(refs, a.PhotoRef)
		}
	}
	return refs
}
