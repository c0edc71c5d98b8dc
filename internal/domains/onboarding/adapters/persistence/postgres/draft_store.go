package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/pet-community/internal/domains/onboarding/domain"
	"github.com/Apurer/pet-community/internal/domains/onboarding/ports"
)

var _ ports.DraftStore = (*DraftStore)(nil)

// DraftStore persists wizard drafts in PostgreSQL as JSON documents.
type DraftStore struct {
	db *gorm.DB
}

// NewDraftStore wires a PostgreSQL-backed draft store. Caller owns DB lifecycle.
func NewDraftStore(db *gorm.DB) *DraftStore {
	return &DraftStore{db: db}
}

type draftRecord struct {
	Key       string       `gorm:"primaryKey;column:session_token;size:512"`
	Draft     domain.Draft `gorm:"column:draft;type:jsonb;serializer:json"`
	CreatedAt time.Time    `gorm:"column:created_at"`
	UpdatedAt time.Time    `gorm:"column:updated_at;index"`
}

func (draftRecord) TableName() string { return "onboarding_drafts" }

func (s *DraftStore) Get(ctx context.Context, key string) (*domain.Draft, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	var rec draftRecord
	if err := s.db.WithContext(ctx).First(&rec, "session_token = ?", strings.TrimSpace(key)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrDraftNotFound
		}
		return nil, err
	}
	return &rec.Draft, nil
}

// Save upserts the draft keyed by session token.
func (s *DraftStore) Save(ctx context.Context, key string, draft *domain.Draft) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	key = strings.TrimSpace(key)
	if key == "" || draft == nil {
		return errors.New("draft key and value are required")
	}
	rec := draftRecord{Key: key, Draft: *draft}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_token"}},
			DoUpdates: clause.AssignmentColumns([]string{"draft", "updated_at"}),
		}).
		Create(&rec).Error
}

func (s *DraftStore) Delete(ctx context.Context, key string) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Delete(&draftRecord{}, "session_token = ?", strings.TrimSpace(key)).Error
}

// PurgeStale removes drafts untouched since cutoff.
func (s *DraftStore) PurgeStale(ctx context.Context, cutoff time.Time) (int64, error) {
	if err := s.ensureDB(); err != nil {
		return 0, err
	}
	result := s.db.WithContext(ctx).Where("updated_at < ?", cutoff).Delete(&draftRecord{})
	return result.RowsAffected, result.Error
}

func (s *DraftStore) ensureDB() error {
	if s == nil || s.db == nil {
		return errors.New("postgres draft store not configured")
	}
	return nil
}
