// Package advert provides the content access and publication operations for adverts.
//
// Visibility is decided here: callers pass a Viewer and never see an advert the viewer may not read.
// Mutations (SetPublished) perform no authorization at all; the caller must check permissions and
// ownership before calling them.
package advert

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/simple-bulletin/simple-bulletin/internal/db/models"
	"github.com/simple-bulletin/simple-bulletin/internal/db/storage"
)

// ErrNotFound is returned when an advert does not exist or is hidden from the viewer.
// The two cases are indistinguishable on purpose.
var ErrNotFound = errors.New("advert not found")

// Viewer describes who is reading. A nil UserID is an anonymous visitor.
type Viewer struct {
	UserID  *uint64
	IsAdmin bool
}

// Anonymous is a visitor without a session.
func Anonymous() Viewer {
	return Viewer{}
}

// User is an authenticated viewer.
func User(id uint64, isAdmin bool) Viewer {
	return Viewer{UserID: &id, IsAdmin: isAdmin}
}

// withOwner is an advert joined with its owner.
type withOwner struct {
	models.Advert
	OwnerID *uint64
}

// Visible applies the read policy for an advert with the given publication state and owner.
// Admins see everything and are reported as owner; this only drives the edit affordance of the item
// page, owner-only mutations still check BelongsTo. Logged in users see published adverts and their
// own. Anonymous visitors see published adverts only.
func Visible(v Viewer, published bool, owner *uint64) (visible, isOwner bool) {
	switch {
	case v.IsAdmin:
		return true, true
	case v.UserID != nil:
		isOwner = owner != nil && *owner == *v.UserID

		return published || isOwner, isOwner
	default:
		return published, false
	}
}

// Get returns the advert id as seen by v and whether v is to be treated as its owner.
func Get(ctx context.Context, db *gorm.DB, v Viewer, id uint64) (*models.Advert, bool, error) {
	var row withOwner

	err := db.WithContext(ctx).
		Table("adverts").
		Select("adverts.*, users_adverts.user_id AS owner_id").
		Joins("LEFT JOIN users_adverts ON users_adverts.advert_id = adverts.id").
		Where("adverts.id = ?", id).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, ErrNotFound
		}

		return nil, false, storage.Unavailable(ctx, "advert.get", err)
	}

	visible, isOwner := Visible(v, row.Published, row.OwnerID)
	if !visible {
		return nil, false, ErrNotFound
	}

	return &row.Advert, isOwner, nil
}

// ListPublished returns a window of published adverts, newest first, and the number of published adverts.
func ListPublished(ctx context.Context, db *gorm.DB, limit, offset int) ([]models.Advert, int64, error) {
	q := db.WithContext(ctx).Model(&models.Advert{}).Where("published = ?", true)

	return list(ctx, "advert.list_published", q, limit, offset)
}

// ListByOwner returns a window of the adverts of ownerID, drafts included, and their number.
func ListByOwner(ctx context.Context, db *gorm.DB, ownerID uint64, limit, offset int) ([]models.Advert, int64, error) {
	q := db.WithContext(ctx).Model(&models.Advert{}).
		Joins("JOIN users_adverts ON users_adverts.advert_id = adverts.id").
		Where("users_adverts.user_id = ?", ownerID)

	return list(ctx, "advert.list_by_owner", q, limit, offset)
}

// ListAll returns a window of all adverts for moderation and the number of adverts.
func ListAll(ctx context.Context, db *gorm.DB, limit, offset int) ([]models.Advert, int64, error) {
	q := db.WithContext(ctx).Model(&models.Advert{})

	return list(ctx, "advert.list_all", q, limit, offset)
}

func list(ctx context.Context, op string, q *gorm.DB, limit, offset int) ([]models.Advert, int64, error) {
	var (
		total   int64
		adverts []models.Advert
	)

	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, storage.Unavailable(ctx, op, err)
	}

	err := q.Session(&gorm.Session{}).
		Select("adverts.*").
		Order("adverts.id DESC").
		Limit(limit).
		Offset(offset).
		Find(&adverts).Error
	if err != nil {
		return nil, 0, storage.Unavailable(ctx, op, err)
	}

	return adverts, total, nil
}

// Create stores a new unpublished advert owned by ownerID and returns its id.
// The advert and its ownership row are written in one transaction.
func Create(ctx context.Context, db *gorm.DB, ownerID uint64, title, content string) (uint64, error) {
	ad := models.Advert{Title: title, Content: content}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&ad).Error; err != nil {
			return err
		}

		return tx.Create(&models.UserAdvert{UserID: ownerID, AdvertID: ad.ID}).Error
	})
	if err != nil {
		return 0, storage.Unavailable(ctx, "advert.create", err)
	}

	created.Inc()

	return ad.ID, nil
}

// BelongsTo reports whether advertID is owned by ownerID.
func BelongsTo(ctx context.Context, db *gorm.DB, ownerID, advertID uint64) (bool, error) {
	var n int64

	err := db.WithContext(ctx).Model(&models.UserAdvert{}).
		Where("user_id = ? AND advert_id = ?", ownerID, advertID).
		Count(&n).Error
	if err != nil {
		return false, storage.Unavailable(ctx, "advert.belongs_to", err)
	}

	return n > 0, nil
}

// SetPublished sets the publication state of an advert.
// It performs no ownership or permission check; the caller is trusted completely.
// Setting the current value again is a no-op.
func SetPublished(ctx context.Context, db *gorm.DB, advertID uint64, published bool) error {
	err := db.WithContext(ctx).Model(&models.Advert{}).
		Where("id = ?", advertID).
		Update("published", published).Error
	if err != nil {
		return storage.Unavailable(ctx, "advert.set_published", err)
	}

	publication.WithLabelValues(publicationLabel(published)).Inc()

	return nil
}

func publicationLabel(published bool) string {
	if published {
		return "publish"
	}

	return "unpublish"
}
