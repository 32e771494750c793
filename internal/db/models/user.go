package models

import "time"

// User represents an account of the bulletin board.
// A user only authenticates and receives permissions while Active is set.
type User struct {
	// ID is the unique identifier for the user.
	ID uint64 `gorm:"primaryKey"`
	// Username is the unique login name. It never changes after creation.
	Username string `gorm:"uniqueIndex;size:100;not null"`
	// PasswordHash is the argon2id encoded password hash.
	PasswordHash string `gorm:"column:password_hash;size:255;not null" json:"-"`
	// Active indicates whether the account may log in. New registrations start inactive.
	Active bool `gorm:"not null"`
	// CreatedAt is the timestamp when the user was created (managed by GORM).
	CreatedAt time.Time
}

// TableName specifies the database table name for the User model.
func (User) TableName() string {
	return "users"
}
