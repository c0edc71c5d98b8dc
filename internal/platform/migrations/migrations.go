package migrations

import (
	"time"

	"gorm.io/gorm"
)

// Run applies the schema for the bounded contexts.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(
		&userRecord{},
		&petRecord{},
		&sessionRecord{},
		&draftRecord{},
	)
}

// User schema mirrors the users Postgres adapter.
type userRecord struct {
	ID           int64     `gorm:"primaryKey;autoIncrement;column:id"`
	Username     string    `gorm:"column:username;size:20;not null"`
	UsernameKey  string    `gorm:"column:username_key;size:20;not null;uniqueIndex"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	FullName     string    `gorm:"column:full_name"`
	Email        string    `gorm:"column:email"`
	Phone        string    `gorm:"column:phone;size:20"`
	ProfilePhoto string    `gorm:"column:profile_photo"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (userRecord) TableName() string { return "users" }

// Pet schema mirrors the pets Postgres adapter. Rows are not tied to users
// by a foreign key so an account deletion can remove them in a later step.
type petRecord struct {
	ID     int64  `gorm:"primaryKey;autoIncrement;column:id"`
	UserID int64  `gorm:"column:user_id;index"`
	Name   string `gorm:"column:pet_name;not null"`
	Breed  string `gorm:"column:breed;not null"`
	Age    int    `gorm:"column:age;not null"`
	Photo  string `gorm:"column:photo;not null"`
}

func (petRecord) TableName() string { return "pets" }

// Session schema mirrors the session store.
type sessionRecord struct {
	Token     string     `gorm:"primaryKey;column:token;size:512"`
	UserID    int64      `gorm:"column:user_id;index"`
	Flash     string     `gorm:"column:flash;type:text"`
	ExpiresAt *time.Time `gorm:"column:expires_at;index"`
	CreatedAt time.Time  `gorm:"column:created_at;index"`
	UpdatedAt time.Time  `gorm:"column:updated_at;index"`
}

func (sessionRecord) TableName() string { return "user_sessions" }

// Draft schema mirrors the onboarding draft store.
type draftRecord struct {
	Key       string    `gorm:"primaryKey;column:session_token;size:512"`
	Draft     string    `gorm:"column:draft;type:jsonb"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;index"`
}

func (draftRecord) TableName() string { return "onboarding_drafts" }
