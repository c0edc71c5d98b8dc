package application

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	pettypes "github.com/Apurer/pet-community/internal/domains/pets/application/types"
	"github.com/Apurer/pet-community/internal/domains/pets/domain"
	"github.com/Apurer/pet-community/internal/domains/pets/ports"
	"github.com/Apurer/pet-community/internal/shared/upload"
)

// Reconciler validates multi-row pet submissions. It holds no state beyond
// the photo store it stores attached files with.
type Reconciler struct {
	photos ports.PhotoStore
}

// NewReconciler wires the reconciler with the store used for attached photos.
func NewReconciler(photos ports.PhotoStore) *Reconciler {
	return &Reconciler{photos: photos}
}

// Reconcile processes every row, accumulating errors instead of stopping at
// the first bad one. Rows without any signal are skipped silently. A photo
// stored for a row stays on disk and in the draft even when the row is
// rejected, so a resubmission carries it as the existing reference.
func (r *Reconciler) Reconcile(ctx context.Context, rows []pettypes.RowInput, photoNamePrefix string) pettypes.ReconcileResult {
	result := pettypes.ReconcileResult{
		Accepted: []pettypes.AcceptedPet{},
		Drafts:   []pettypes.DraftRow{},
		Errors:   []string{},
	}
	for i, row := range rows {
		number := i + 1
		name := strings.TrimSpace(row.Name)
		breed := strings.TrimSpace(row.Breed)
		ageRaw := strings.TrimSpace(row.AgeRaw)
		photoRef := strings.TrimSpace(row.ExistingPhotoRef)
		hasUpload := row.Upload.Attached()

		if name == "" && breed == "" && ageRaw == "" && photoRef == "" && !hasUpload {
			continue
		}

		if hasUpload {
			if row.Upload.Status != upload.StatusReceived {
				result.Errors = append(result.Errors, rowError(number, "upload failed"))
			} else if stored, err := r.store(ctx, row.Upload, fmt.Sprintf("%s_%d", photoNamePrefix, number)); err != nil {
				result.Errors = append(result.Errors, rowError(number, err.Error()))
			} else {
				photoRef = stored
			}
		}

		var reasons []string
		if name == "" {
			reasons = append(reasons, domain.ErrEmptyName.Error())
		}
		if breed == "" {
			reasons = append(reasons, domain.ErrEmptyBreed.Error())
		}
		age, ageErr := parseAge(ageRaw)
		if ageErr != nil {
			reasons = append(reasons, ageErr.Error())
		}
		if photoRef == "" {
			reasons = append(reasons, domain.ErrEmptyPhoto.Error())
		}

		result.Drafts = append(result.Drafts, pettypes.DraftRow{
			PetName:  name,
			Breed:    breed,
			AgeRaw:   ageRaw,
			PhotoRef: photoRef,
		})

		if len(reasons) > 0 {
			result.Errors = append(result.Errors, rowError(number, strings.Join(reasons, ", ")))
			continue
		}
		result.Accepted = append(result.Accepted, pettypes.AcceptedPet{
			PetName:  name,
			Breed:    breed,
			Age:      age,
			PhotoRef: photoRef,
		})
	}
	return result
}

func (r *Reconciler) store(ctx context.Context, file upload.File, seed string) (string, error) {
	if r.photos == nil {
		return "", fmt.Errorf("photo storage is not configured")
	}
	return r.photos.Store(ctx, file, upload.CategoryPets, seed)
}

// parseAge accepts only non-empty strings of ASCII digits in [MinAge, MaxAge].
func parseAge(raw string) (int, error) {
	if raw == "" {
		return 0, domain.ErrAgeFormat
	}
	for _, c := range raw {
		if c < '0' || c > '9' {
			return 0, domain.ErrAgeFormat
		}
	}
	age, err := strconv.Atoi(raw)
	if err != nil || age < domain.MinAge || age > domain.MaxAge {
		// Atoi only fails here on overflow, which is out of range as well.
		return 0, domain.ErrAgeRange
	}
	return age, nil
}

func rowError(number int, reason string) string {
	return fmt.Sprintf("Pet #%d: %s.", number, strings.TrimSuffix(reason, "."))
}
