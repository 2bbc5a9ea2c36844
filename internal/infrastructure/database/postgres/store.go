package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/your-org/brewflow-storefront/internal/pkg/persistence"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// KeyValue is one persisted visitor entry
type KeyValue struct {
	Key       string     `gorm:"primaryKey;size:255" json:"key"`
	Value     string     `gorm:"type:text;not null" json:"value"`
	ExpiresAt *time.Time `json:"expires_at"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// TableName overrides the table name
func (KeyValue) TableName() string {
	return "storefront_kv"
}

// Store keeps visitor state in the storefront_kv table
type Store struct {
	db     *gorm.DB
	prefix string
	ttl    time.Duration
}

// NewStore creates a PostgreSQL-backed persistence.Store
func NewStore(db *gorm.DB, prefix string, ttl time.Duration) *Store {
	return &Store{db: db, prefix: prefix, ttl: ttl}
}

var _ persistence.Store = (*Store)(nil)

// Get returns the value for key or persistence.ErrNotFound. With a ttl the
// expiry slides forward on every read.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	now := time.Now().UTC()
	live := s.db.WithContext(ctx).
		Where("key = ? AND (expires_at IS NULL OR expires_at > ?)", s.key(key), now)

	var kv KeyValue
	if s.ttl <= 0 {
		err := live.First(&kv).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", persistence.ErrNotFound
		}
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", key, err)
		}
		return kv.Value, nil
	}

	res := live.Model(&kv).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "value"}}}).
		Update("expires_at", now.Add(s.ttl))
	if res.Error != nil {
		return "", fmt.Errorf("failed to read %s: %w", key, res.Error)
	}
	if res.RowsAffected == 0 {
		return "", persistence.ErrNotFound
	}
	return kv.Value, nil
}

// Set upserts value under key
func (s *Store) Set(ctx context.Context, key, value string) error {
	kv := KeyValue{Key: s.key(key), Value: value}
	if s.ttl > 0 {
		expires := time.Now().UTC().Add(s.ttl)
		kv.ExpiresAt = &expires
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "expires_at", "updated_at"}),
	}).Create(&kv).Error
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// Remove deletes key
func (s *Store) Remove(ctx context.Context, key string) error {
	if err := s.db.WithContext(ctx).Where("key = ?", s.key(key)).Delete(&KeyValue{}).Error; err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

func (s *Store) key(key string) string {
	if s.prefix == "" {
		return key
	}
	return s.prefix + ":" + key
}
