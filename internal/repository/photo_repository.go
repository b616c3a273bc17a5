package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"photomap-service/internal/apperr"
	"photomap-service/internal/geo"
	"photomap-service/internal/models"
)

// PhotoRepository persists photo rows. Listings are ordered newest first.
type PhotoRepository interface {
	ListByOwner(ctx context.Context, ownerID uuid.UUID, limit int) ([]models.PhotoRecord, error)
	ListAll(ctx context.Context, limit int) ([]models.PhotoRecord, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.PhotoRecord, error)
	Insert(ctx context.Context, input models.PhotoInput) (*models.PhotoRecord, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Nearby(ctx context.Context, center geo.Coordinate, radiusMeters float64, limit int) ([]models.PhotoRecord, error)
}

// PhotoRepositoryImpl is the gorm backed PhotoRepository.
type PhotoRepositoryImpl struct {
	db *gorm.DB
}

// NewPhotoRepository creates a new PhotoRepositoryImpl instance with the provided GORM database connection.
func NewPhotoRepository(db *gorm.DB) *PhotoRepositoryImpl {
	return &PhotoRepositoryImpl{db: db}
}

func newestFirst(db *gorm.DB, limit int) *gorm.DB {
	db = db.Order("created_at DESC").Order("id")
	if limit > 0 {
		db = db.Limit(limit)
	}
	return db
}

// ListByOwner returns the photos uploaded by ownerID. A limit <= 0 means no cap.
func (r *PhotoRepositoryImpl) ListByOwner(ctx context.Context, ownerID uuid.UUID, limit int) ([]models.PhotoRecord, error) {
	var photos []models.PhotoRecord
	err := newestFirst(r.db.WithContext(ctx), limit).
		Where("user_id = ?", ownerID).
		Find(&photos).Error
	if err != nil {
		return nil, apperr.Db(err, "failed to list photos")
	}
	return photos, nil
}

// ListAll returns every user's photos.
func (r *PhotoRepositoryImpl) ListAll(ctx context.Context, limit int) ([]models.PhotoRecord, error) {
	var photos []models.PhotoRecord
	if err := newestFirst(r.db.WithContext(ctx), limit).Find(&photos).Error; err != nil {
		return nil, apperr.Db(err, "failed to list photos")
	}
	return photos, nil
}

// GetByID retrieves a photo by its ID.
func (r *PhotoRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*models.PhotoRecord, error) {
	var photo models.PhotoRecord
	if err := r.db.WithContext(ctx).First(&photo, "id = ?", id).Error; err != nil {
		return nil, dbError(err, "photo not found", "failed to load photo")
	}
	return &photo, nil
}

// Insert writes a new photo row. Coordinates are checked again here so no
// caller can persist an out-of-range position.
func (r *PhotoRepositoryImpl) Insert(ctx context.Context, input models.PhotoInput) (*models.PhotoRecord, error) {
	if !geo.ValidPair(input.Latitude, input.Longitude) {
		return nil, apperr.Validation("invalid GPS coordinates")
	}
	if input.StoragePath == "" {
		return nil, apperr.Validation("storage path is required")
	}

	photo := &models.PhotoRecord{
		OwnerID:     input.OwnerID,
		StoragePath: input.StoragePath,
		Latitude:    input.Latitude,
		Longitude:   input.Longitude,
		Title:       input.Title,
		Description: input.Description,
	}
	if err := r.db.WithContext(ctx).Create(photo).Error; err != nil {
		return nil, apperr.Db(err, "failed to save photo")
	}
	return photo, nil
}

// Delete removes the photo row and its comments in one transaction.
func (r *PhotoRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("photo_id = ?", id).Delete(&models.CommentRecord{}).Error; err != nil {
			return apperr.Db(err, "failed to delete comments")
		}
		result := tx.Where("id = ?", id).Delete(&models.PhotoRecord{})
		if result.Error != nil {
			return apperr.Db(result.Error, "failed to delete photo")
		}
		if result.RowsAffected == 0 {
			return apperr.NotFound("photo not found")
		}
		return nil
	})
}

// Nearby returns photos within radiusMeters of center, newest first. The
// database narrows candidates with a bounding box and the exact distance is
// checked in memory.
func (r *PhotoRepositoryImpl) Nearby(ctx context.Context, center geo.Coordinate, radiusMeters float64, limit int) ([]models.PhotoRecord, error) {
	if !geo.ValidPair(center.Latitude, center.Longitude) {
		return nil, apperr.Validation("invalid GPS coordinates")
	}
	if radiusMeters <= 0 {
		return nil, apperr.Validation("radius must be positive")
	}

	box := geo.BoundingBox(center, radiusMeters)
	var candidates []models.PhotoRecord
	err := newestFirst(r.db.WithContext(ctx), 0).
		Where("lat BETWEEN ? AND ?", box.MinLatitude, box.MaxLatitude).
		Where("lon BETWEEN ? AND ?", box.MinLongitude, box.MaxLongitude).
		Find(&candidates).Error
	if err != nil {
		return nil, apperr.Db(err, "failed to search photos")
	}

	photos := make([]models.PhotoRecord, 0, len(candidates))
	for _, p := range candidates {
		if geo.DistanceMeters(center, geo.Coordinate{Latitude: p.Latitude, Longitude: p.Longitude}) > radiusMeters {
			continue
		}
		photos = append(photos, p)
		if limit > 0 && len(photos) == limit {
			break
		}
	}
	return photos, nil
}
