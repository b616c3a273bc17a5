package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"photomap-service/internal/apperr"
	"photomap-service/internal/auth"
	"photomap-service/internal/log"
	"photomap-service/internal/models"
	"photomap-service/internal/repository"
	"photomap-service/internal/storage"
)

// PhotoService reads and deletes single photos.
type PhotoService struct {
	photos       repository.PhotoRepository
	store        storage.ObjectStore
	resolver     *URLResolver
	comments     *CommentService
	publicURLTTL time.Duration
	ownerURLTTL  time.Duration
}

func NewPhotoService(photos repository.PhotoRepository, store storage.ObjectStore, resolver *URLResolver, comments *CommentService, publicURLTTL, ownerURLTTL time.Duration) *PhotoService {
	return &PhotoService{
		photos:       photos,
		store:        store,
		resolver:     resolver,
		comments:     comments,
		publicURLTTL: publicURLTTL,
		ownerURLTTL:  ownerURLTTL,
	}
}

// GetPhoto returns a photo with its display URL. The owner sees the full
// record; everyone else gets the public shape. A URL that cannot be signed
// is left empty.
func (s *PhotoService) GetPhoto(ctx context.Context, session *auth.Session, id uuid.UUID) (*models.Photo, error) {
	record, err := s.photos.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	photo := record.ToPhoto()
	ttl := s.ownerURLTTL
	if session == nil || session.UserID != record.OwnerID {
		photo = publicPhoto(record)
		ttl = s.publicURLTTL
	}

	url, err := s.resolver.Resolve(ctx, record.StoragePath, ttl)
	if err != nil {
		log.Warn("failed to sign photo url", log.SourceMinio, zap.String("id", id.String()), zap.Error(err))
	}
	photo.ImageURL = url
	return &photo, nil
}

// DeletePhoto removes the stored object first and the row second. When the
// object cannot be removed the row is kept. Photos owned by someone else
// are reported as not found.
func (s *PhotoService) DeletePhoto(ctx context.Context, session *auth.Session, id uuid.UUID) error {
	if session == nil {
		return apperr.NotAuthenticated()
	}
	record, err := s.photos.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if record.OwnerID != session.UserID {
		return apperr.NotFound("photo not found")
	}

	if err := s.store.Remove(ctx, record.StoragePath); err != nil {
		log.Error("failed to remove photo object, keeping row", log.SourceMinio, zap.String("key", record.StoragePath), zap.Error(err))
		return apperr.Storage(err, "failed to delete photo")
	}
	if err := s.photos.Delete(ctx, id); err != nil {
		log.Error("photo object removed but row delete failed", log.SourcePG, zap.String("id", id.String()), zap.Error(err))
		return err
	}

	s.resolver.Invalidate(ctx, record.StoragePath, s.publicURLTTL, s.ownerURLTTL)
	s.comments.InvalidateThread(ctx, id)
	log.Info("photo deleted", zap.String("id", id.String()), zap.String("owner", session.UserID.String()))
	return nil
}
