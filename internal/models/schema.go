package models

import "time"

// SchemaVersion records the single authoritative schema version, checked at
// startup before any moderation operation runs.
type SchemaVersion struct {
	Version   int64     `gorm:"primaryKey;autoIncrement:false;column:version"`
	AppliedAt time.Time `gorm:"not null;column:applied_at"`
}

// TableName specifies the table name for SchemaVersion
func (SchemaVersion) TableName() string {
	return "schema_version"
}
