package models

// UserAdvert records the owner of an advert. AdvertID is unique, so every advert has exactly one owner.
type UserAdvert struct {
	// UserID is the ID of the owning user.
	UserID uint64 `gorm:"primaryKey;column:user_id;autoIncrement:false"`
	// AdvertID is the ID of the owned advert.
	AdvertID uint64 `gorm:"primaryKey;column:advert_id;autoIncrement:false;uniqueIndex:idx_users_adverts_advert"`
	// User is the owner (CASCADE on delete).
	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	// Advert is the owned advert (CASCADE on delete).
	Advert Advert `gorm:"foreignKey:AdvertID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the database table name for the UserAdvert model.
func (UserAdvert) TableName() string {
	return "users_adverts"
}
