// Package flatfile stores pets in data/pets.csv.
package flatfile

import (
	"context"
	"fmt"
	"strconv"

	"github.com/Apurer/pet-community/internal/domains/pets/domain"
	"github.com/Apurer/pet-community/internal/domains/pets/ports"
	"github.com/Apurer/pet-community/internal/platform/flatfile"
)

// Header lists the pets table fields in file order.
var Header = []string{"id", "user_id", "pet_name", "breed", "age", "photo"}

var _ ports.Repository = (*Repository)(nil)

// Repository is the CSV-backed pets table.
type Repository struct {
	table *flatfile.Table
}

// NewRepository opens (creating if needed) the pets table at path.
func NewRepository(path string) (*Repository, error) {
	table, err := flatfile.Open(path, Header)
	if err != nil {
		return nil, err
	}
	return &Repository{table: table}, nil
}

// List returns every pet in file order.
func (r *Repository) List(ctx context.Context) ([]*domain.Pet, error) {
	rows, err := r.table.ReadAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Pet, 0, len(rows))
	for _, row := range rows {
		out = append(out, fromRow(row))
	}
	return out, nil
}

// ListByOwner returns the owner's pets in file order.
func (r *Repository) ListByOwner(ctx context.Context, ownerID int64) ([]*domain.Pet, error) {
	rows, err := r.table.ReadAll(ctx)
	if err != nil {
		return nil, err
	}
	var out []*domain.Pet
	for _, row := range rows {
		if row.Int64("user_id") == ownerID {
			out = append(out, fromRow(row))
		}
	}
	return out, nil
}

// CreateForOwner appends rows with fresh ids.
func (r *Repository) CreateForOwner(ctx context.Context, ownerID int64, pets []domain.Details) ([]*domain.Pet, error) {
	var created []*domain.Pet
	err := r.table.MutateIDs(ctx, func(rows []flatfile.Row, ids *flatfile.IDs) ([]flatfile.Row, error) {
		var appended []flatfile.Row
		appended, created = appendPets(rows, ids, ownerID, pets)
		return appended, nil
	})
	if err != nil {
		return nil, fmt.Errorf("save pets: %w", err)
	}
	return created, nil
}

// ReplaceForOwner filters out the owner's rows and appends the new set.
func (r *Repository) ReplaceForOwner(ctx context.Context, ownerID int64, pets []domain.Details) ([]*domain.Pet, error) {
	var created []*domain.Pet
	err := r.table.MutateIDs(ctx, func(rows []flatfile.Row, ids *flatfile.IDs) ([]flatfile.Row, error) {
		kept, _ := partition(rows, ownerID)
		var appended []flatfile.Row
		appended, created = appendPets(kept, ids, ownerID, pets)
		return appended, nil
	})
	if err != nil {
		return nil, fmt.Errorf("replace pets: %w", err)
	}
	return created, nil
}

// DeleteByOwner removes and returns the owner's rows.
func (r *Repository) DeleteByOwner(ctx context.Context, ownerID int64) ([]*domain.Pet, error) {
	var deleted []*domain.Pet
	err := r.table.Mutate(ctx, func(rows []flatfile.Row) ([]flatfile.Row, error) {
		kept, removed := partition(rows, ownerID)
		for _, row := range removed {
			deleted = append(deleted, fromRow(row))
		}
		return kept, nil
	})
	if err != nil {
		return nil, fmt.Errorf("delete pets: %w", err)
	}
	return deleted, nil
}

func partition(rows []flatfile.Row, ownerID int64) (kept, removed []flatfile.Row) {
	kept = make([]flatfile.Row, 0, len(rows))
	for _, row := range rows {
		if row.Int64("user_id") == ownerID {
			removed = append(removed, row)
			continue
		}
		kept = append(kept, row)
	}
	return kept, removed
}

func appendPets(rows []flatfile.Row, ids *flatfile.IDs, ownerID int64, pets []domain.Details) ([]flatfile.Row, []*domain.Pet) {
	created := make([]*domain.Pet, 0, len(pets))
	for _, d := range pets {
		p := &domain.Pet{ID: ids.Next(), OwnerID: ownerID, Details: d}
		rows = append(rows, toRow(p))
		created = append(created, p)
	}
	return rows, created
}

func toRow(p *domain.Pet) flatfile.Row {
	return flatfile.Row{
		"id":       strconv.FormatInt(p.ID, 10),
		"user_id":  strconv.FormatInt(p.OwnerID, 10),
		"pet_name": p.Name,
		"breed":    p.Breed,
		"age":      strconv.Itoa(p.Age),
		"photo":    p.PhotoRef,
	}
}

func fromRow(row flatfile.Row) *domain.Pet {
	age, _ := strconv.Atoi(row["age"])
	return &domain.Pet{
		ID:      row.Int64("id"),
		OwnerID: row.Int64("user_id"),
		Details: domain.Details{
			Name:     row["pet_name"],
			Breed:    row["breed"],
			Age:      age,
			PhotoRef: row["photo"],
		},
	}
}
