package db

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/confessly/confessly/internal/models"
	"github.com/confessly/confessly/pkg/logging"
)

// CurrentSchemaVersion is bumped whenever the model set changes shape.
const CurrentSchemaVersion int64 = 1

// Migrate applies the authoritative schema and records the schema version.
// It is the single migration path: services never probe for columns at runtime.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Comment{},
		&models.Reaction{},
		&models.Report{},
		&models.AdminAction{},
		&models.SchemaVersion{},
	); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	var v models.SchemaVersion
	err := db.Order("version DESC").First(&v).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		v = models.SchemaVersion{Version: CurrentSchemaVersion, AppliedAt: time.Now().UTC()}
		if err := db.Create(&v).Error; err != nil {
			return fmt.Errorf("failed to record schema version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("failed to read schema version: %w", err)
	case v.Version > CurrentSchemaVersion:
		return fmt.Errorf("database schema version %d is newer than supported version %d", v.Version, CurrentSchemaVersion)
	case v.Version < CurrentSchemaVersion:
		if err := db.Create(&models.SchemaVersion{Version: CurrentSchemaVersion, AppliedAt: time.Now().UTC()}).Error; err != nil {
			return fmt.Errorf("failed to record schema version: %w", err)
		}
	}

	logging.GetLogger().Info("Database schema up to date")
	return nil
}
