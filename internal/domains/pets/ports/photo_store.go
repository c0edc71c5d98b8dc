package ports

import (
	"context"

	"github.com/Apurer/pet-community/internal/shared/upload"
)

// PhotoStore validates and persists uploaded images, returning stable
// references relative to the application root.
type PhotoStore interface {
	Store(ctx context.Context, file upload.File, category upload.Category, nameSeed string) (string, error)
	// Remove deletes a stored photo if it exists. Unknown references are ignored.
	Remove(ctx context.Context, ref string) error
}
