package models

// UserGroup is the membership of a user in a group.
type UserGroup struct {
	// UserID is the ID of the member.
	UserID uint64 `gorm:"primaryKey;column:user_id;autoIncrement:false"`
	// GroupID is the ID of the group.
	GroupID uint64 `gorm:"primaryKey;column:group_id;autoIncrement:false"`
	// User is the associated user. Memberships are removed with the user (CASCADE).
	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	// Group is the associated group. Memberships are removed with the group (CASCADE).
	Group Group `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the database table name for the UserGroup model.
func (UserGroup) TableName() string {
	return "users_groups"
}
