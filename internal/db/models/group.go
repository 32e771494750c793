package models

// Default group names seeded by the migrations.
const (
	GroupUsers  = "users"
	GroupAdmins = "admins"
)

// Group is a named set of users sharing the permissions granted to the group.
type Group struct {
	// ID is the unique identifier for the group.
	ID uint64 `gorm:"primaryKey"`
	// Name is the unique group name, e.g. "users" or "admins".
	Name string `gorm:"uniqueIndex;size:100;not null"`
}

// TableName specifies the database table name for the Group model.
func (Group) TableName() string {
	return "groups"
}
