package models

// GroupPermission grants a permission to every member of a group.
type GroupPermission struct {
	// GroupID is the ID of the group receiving the permission.
	GroupID uint64 `gorm:"primaryKey;column:group_id;autoIncrement:false"`
	// PermissionID is the ID of the granted permission.
	PermissionID uint64 `gorm:"primaryKey;column:permission_id;autoIncrement:false"`
	// Group is the associated group (CASCADE on delete).
	Group Group `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE" json:"-"`
	// Permission is the associated permission (CASCADE on delete).
	Permission Permission `gorm:"foreignKey:PermissionID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the database table name for the GroupPermission model.
func (GroupPermission) TableName() string {
	return "groups_permissions"
}
