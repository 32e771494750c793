package models

import "time"

// SchemaMigration records a migration step that has been applied.
type SchemaMigration struct {
	// ID is the identifier of the migration step, e.g. "0001_create_users".
	ID string `gorm:"primaryKey;size:100"`
	// AppliedAt is when the step was applied.
	AppliedAt time.Time `gorm:"not null"`
}

// TableName specifies the database table name for the SchemaMigration model.
func (SchemaMigration) TableName() string {
	return "schema_migrations"
}
