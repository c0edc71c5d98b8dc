// Package flatfile stores members in data/users.csv.
package flatfile

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Apurer/pet-community/internal/domains/users/domain"
	"github.com/Apurer/pet-community/internal/domains/users/ports"
	"github.com/Apurer/pet-community/internal/platform/flatfile"
)

// Header lists the users table fields in file order.
var Header = []string{"id", "username", "password_hash", "full_name", "email", "phone", "profile_photo", "created_at"}

var _ ports.Repository = (*Repository)(nil)

// Repository is the CSV-backed users table.
type Repository struct {
	table *flatfile.Table
}

// NewRepository opens (creating if needed) the users table at path.
func NewRepository(path string) (*Repository, error) {
	table, err := flatfile.Open(path, Header)
	if err != nil {
		return nil, err
	}
	return &Repository{table: table}, nil
}

func (r *Repository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	if user == nil {
		return nil, errors.New("user is nil")
	}
	var created *domain.User
	err := r.table.MutateIDs(ctx, func(rows []flatfile.Row, ids *flatfile.IDs) ([]flatfile.Row, error) {
		if findByUsername(rows, user.Username) >= 0 {
			return nil, ports.ErrUsernameTaken
		}
		stored := *user
		stored.ID = ids.Next()
		created = &stored
		return append(rows, toRow(&stored)), nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	rows, err := r.table.ReadAll(ctx)
	if err != nil {
		return nil, err
	}
	i := findByID(rows, id)
	if i < 0 {
		return nil, ports.ErrNotFound
	}
	return fromRow(rows[i]), nil
}

func (r *Repository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	rows, err := r.table.ReadAll(ctx)
	if err != nil {
		return nil, err
	}
	i := findByUsername(rows, username)
	if i < 0 {
		return nil, ports.ErrNotFound
	}
	return fromRow(rows[i]), nil
}

func (r *Repository) Update(ctx context.Context, user *domain.User) (*domain.User, error) {
	if user == nil {
		return nil, errors.New("user is nil")
	}
	var updated *domain.User
	err := r.table.Mutate(ctx, func(rows []flatfile.Row) ([]flatfile.Row, error) {
		i := findByID(rows, user.ID)
		if i < 0 {
			return nil, ports.ErrNotFound
		}
		row := rows[i]
		row["password_hash"] = user.PasswordHash
		row["full_name"] = user.FullName
		row["email"] = user.Email
		row["phone"] = user.Phone
		row["profile_photo"] = user.ProfilePhotoRef
		updated = fromRow(row)
		return rows, nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *Repository) Delete(ctx context.Context, id int64) (*domain.User, error) {
	var deleted *domain.User
	err := r.table.Mutate(ctx, func(rows []flatfile.Row) ([]flatfile.Row, error) {
		i := findByID(rows, id)
		if i < 0 {
			return nil, ports.ErrNotFound
		}
		deleted = fromRow(rows[i])
		return append(rows[:i], rows[i+1:]...), nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

func (r *Repository) List(ctx context.Context) ([]*domain.User, error) {
	rows, err := r.table.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	out := make([]*domain.User, 0, len(rows))
	for _, row := range rows {
		out = append(out, fromRow(row))
	}
	return out, nil
}

func findByID(rows []flatfile.Row, id int64) int {
	for i, row := range rows {
		if row.Int64("id") == id {
			return i
		}
	}
	return -1
}

func findByUsername(rows []flatfile.Row, username string) int {
	target := domain.NormalizeUsername(username)
	for i, row := range rows {
		if domain.NormalizeUsername(row["username"]) == target {
			return i
		}
	}
	return -1
}

func toRow(u *domain.User) flatfile.Row {
	created := ""
	if !u.CreatedAt.IsZero() {
		created = u.CreatedAt.UTC().Format(time.RFC3339)
	}
	return flatfile.Row{
		"id":            strconv.FormatInt(u.ID, 10),
		"username":      u.Username,
		"password_hash": u.PasswordHash,
		"full_name":     u.FullName,
		"email":         u.Email,
		"phone":         u.Phone,
		"profile_photo": u.ProfilePhotoRef,
		"created_at":    created,
	}
}

func fromRow(row flatfile.Row) *domain.User {
	created, _ := time.Parse(time.RFC3339, row["created_at"])
	return &domain.User{
		ID:              row.Int64("id"),
		Username:        row["username"],
		PasswordHash:    row["password_hash"],
		FullName:        row["full_name"],
		Email:           row["email"],
		Phone:           row["phone"],
		ProfilePhotoRef: row["profile_photo"],
		CreatedAt:       created,
	}
}
