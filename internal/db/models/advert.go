package models

import "time"

// Advert is a listing posted by a user. It is only visible to the public once Published is set.
type Advert struct {
	// ID is the unique identifier for the advert.
	ID uint64 `gorm:"primaryKey" json:"id"`
	// Title is the headline shown in listings.
	Title string `gorm:"size:255;not null" json:"title"`
	// Content is the body text.
	Content string `gorm:"type:text;not null" json:"content"`
	// Published marks the advert as visible to everyone.
	Published bool `gorm:"not null" json:"published"`
	// CreatedAt is the timestamp when the advert was created (managed by GORM).
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the database table name for the Advert model.
func (Advert) TableName() string {
	return "adverts"
}
