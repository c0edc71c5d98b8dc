package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Apurer/pet-community/internal/domains/pets/domain"
	"github.com/Apurer/pet-community/internal/domains/pets/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists pets in PostgreSQL using GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle
// and schema (see platform/migrations).
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type petRecord struct {
	ID     int64  `gorm:"primaryKey;autoIncrement;column:id"`
	UserID int64  `gorm:"column:user_id;index"`
	Name   string `gorm:"column:pet_name"`
	Breed  string `gorm:"column:breed"`
	Age    int    `gorm:"column:age"`
	Photo  string `gorm:"column:photo"`
}

func (petRecord) TableName() string { return "pets" }

// List returns every pet ordered by id.
func (r *Repository) List(ctx context.Context) ([]*domain.Pet, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []petRecord
	if err := r.db.WithContext(ctx).Order("id").Find(&records).Error; err != nil {
		return nil, err
	}
	return toDomainList(records), nil
}

// ListByOwner returns the owner's pets ordered by id.
func (r *Repository) ListByOwner(ctx context.Context, ownerID int64) ([]*domain.Pet, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []petRecord
	if err := r.db.WithContext(ctx).Where("user_id = ?", ownerID).Order("id").Find(&records).Error; err != nil {
		return nil, err
	}
	return toDomainList(records), nil
}

// CreateForOwner inserts the pets in one batch.
func (r *Repository) CreateForOwner(ctx context.Context, ownerID int64, pets []domain.Details) ([]*domain.Pet, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	records := toRecords(ownerID, pets)
	if len(records) == 0 {
		return []*domain.Pet{}, nil
	}
	if err := r.db.WithContext(ctx).Create(&records).Error; err != nil {
		return nil, err
	}
	return toDomainList(records), nil
}

// ReplaceForOwner deletes the owner's rows and inserts the new set in one
// transaction.
func (r *Repository) ReplaceForOwner(ctx context.Context, ownerID int64, pets []domain.Details) ([]*domain.Pet, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	records := toRecords(ownerID, pets)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", ownerID).Delete(&petRecord{}).Error; err != nil {
			return err
		}
		if len(records) == 0 {
			return nil
		}
		return tx.Create(&records).Error
	})
	if err != nil {
		return nil, err
	}
	return toDomainList(records), nil
}

// DeleteByOwner removes and returns the owner's rows.
func (r *Repository) DeleteByOwner(ctx context.Context, ownerID int64) ([]*domain.Pet, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []petRecord
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", ownerID).Order("id").Find(&records).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ?", ownerID).Delete(&petRecord{}).Error
	})
	if err != nil {
		return nil, err
	}
	return toDomainList(records), nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres pet repository not configured")
	}
	return nil
}

func toRecords(ownerID int64, pets []domain.Details) []petRecord {
	records := make([]petRecord, 0, len(pets))
	for _, d := range pets {
		records = append(records, petRecord{UserID: ownerID, Name: d.Name, Breed: d.Breed, Age: d.Age, Photo: d.PhotoRef})
	}
	return records
}

func toDomainList(records []petRecord) []*domain.Pet {
	out := make([]*domain.Pet, 0, len(records))
	for _, rec := range records {
		out = append(out, &domain.Pet{
			ID:      rec.ID,
			OwnerID: rec.UserID,
			Details: domain.Details{Name: rec.Name, Breed: rec.Breed, Age: rec.Age, PhotoRef: rec.Photo},
		})
	}
	return out
}
