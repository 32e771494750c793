package models

// Permission names seeded by the migrations.
const (
	PermAdminRead  = "admin.read"
	PermAdminWrite = "admin.write"
	PermUserRead   = "user.read"
	PermUserWrite  = "user.write"
)

// Permission is a named capability in resource.action format.
type Permission struct {
	// ID is the unique identifier for the permission.
	ID uint64 `gorm:"primaryKey"`
	// Name is the unique permission name, e.g. "admin.write".
	Name string `gorm:"uniqueIndex;size:100;not null"`
}

// TableName specifies the database table name for the Permission model.
func (Permission) TableName() string {
	return "permissions"
}
