// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Migration handles database migrations
type Migration struct {
	db     *gorm.DB
	logger logrus.FieldLogger
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB, logger logrus.FieldLogger) *Migration {
	return &Migration{
		db:     db,
		logger: logger,
	}
}

// RunAutoMigrations runs GORM auto-migrations for the storefront tables
func (m *Migration) RunAutoMigrations() error {
	m.logger.Info("Running database auto-migrations")

	models := []interface{}{
		&KeyValue{},
	}

	for _, model := range models {
		m.logger.Debugf("Migrating model: %T", model)
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	m.logger.Info("Database auto-migrations completed")
	return nil
}

// CreateIndexes creates additional indexes
func (m *Migration) CreateIndexes() error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_storefront_kv_updated_at ON storefront_kv(updated_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_storefront_kv_expires_at ON storefront_kv(expires_at) WHERE expires_at IS NOT NULL",
	}

	successCount := 0
	failCount := 0

	for _, indexSQL := range indexes {
		if err := m.db.Exec(indexSQL).Error; err != nil {
			m.logger.WithError(err).Warn("Failed to create index")
			failCount++
		} else {
			successCount++
		}
	}

	m.logger.Infof("Created %d indexes (%d failed)", successCount, failCount)
	return nil
}

// PurgeExpired deletes visitor state whose TTL has passed
func (m *Migration) PurgeExpired() (int64, error) {
	result := m.db.Where("expires_at IS NOT NULL AND expires_at < NOW()").Delete(&KeyValue{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to purge expired keys: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// GetTableInfo logs row counts of the storefront tables
func (m *Migration) GetTableInfo() error {
	var count int64
	if err := m.db.Model(&KeyValue{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count storefront_kv: %w", err)
	}
	m.logger.WithField("rows", count).Info("Table storefront_kv")
	return nil
}
