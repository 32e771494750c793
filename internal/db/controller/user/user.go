// Package user provides account queries and the activation toggle used by moderation.
package user

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/simple-bulletin/simple-bulletin/internal/db/models"
	"github.com/simple-bulletin/simple-bulletin/internal/db/storage"
)

var (
	// ErrNotFound is returned when no user matches.
	ErrNotFound = errors.New("user not found")
	// ErrUsernameTaken is returned when creating a user whose username exists.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrUnknownGroup is returned when a membership names a group that was never seeded.
	ErrUnknownGroup = errors.New("unknown group")
)

// List returns a window of users, newest first, and the number of users.
func List(ctx context.Context, db *gorm.DB, limit, offset int) ([]models.User, int64, error) {
	var (
		total int64
		users []models.User
	)

	q := db.WithContext(ctx).Model(&models.User{})

	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, storage.Unavailable(ctx, "user.list", err)
	}

	if err := q.Session(&gorm.Session{}).Order("id DESC").Limit(limit).Offset(offset).Find(&users).Error; err != nil {
		return nil, 0, storage.Unavailable(ctx, "user.list", err)
	}

	return users, total, nil
}

// GetByUsername returns the user with exactly this username, active or not.
func GetByUsername(ctx context.Context, db *gorm.DB, username string) (*models.User, error) {
	var u models.User

	if err := db.WithContext(ctx).Where("username = ?", username).Take(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}

		return nil, storage.Unavailable(ctx, "user.get_by_username", err)
	}

	return &u, nil
}

// GetActiveByID returns the user id if the account is active.
func GetActiveByID(ctx context.Context, db *gorm.DB, id uint64) (*models.User, error) {
	var u models.User

	if err := db.WithContext(ctx).Where("id = ? AND active = ?", id, true).Take(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}

		return nil, storage.Unavailable(ctx, "user.get_active", err)
	}

	return &u, nil
}

// Create inserts a user together with its membership in group, in one transaction.
func Create(ctx context.Context, db *gorm.DB, username, passwordHash string, active bool, group string) (*models.User, error) {
	u := models.User{Username: username, PasswordHash: passwordHash, Active: active}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var exists int64
		if err := tx.Model(&models.User{}).Where("username = ?", username).Count(&exists).Error; err != nil {
			return err
		}

		if exists > 0 {
			return ErrUsernameTaken
		}

		var g models.Group
		if err := tx.Where("name = ?", group).Take(&g).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUnknownGroup
			}

			return err
		}

		if err := tx.Create(&u).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrUsernameTaken
			}

			return err
		}

		return tx.Create(&models.UserGroup{UserID: u.ID, GroupID: g.ID}).Error
	})

	switch {
	case err == nil:
		return &u, nil
	case errors.Is(err, ErrUsernameTaken), errors.Is(err, ErrUnknownGroup):
		return nil, err
	default:
		return nil, storage.Unavailable(ctx, "user.create", err)
	}
}

// SetActive sets the activation state of a user.
// It performs no permission check; the caller is trusted completely.
// Setting the current value again is a no-op.
func SetActive(ctx context.Context, db *gorm.DB, userID uint64, active bool) error {
	err := db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("active", active).Error
	if err != nil {
		return storage.Unavailable(ctx, "user.set_active", err)
	}

	return nil
}
