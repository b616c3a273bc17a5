package services

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"photomap-service/internal/apperr"
	"photomap-service/internal/auth"
	"photomap-service/internal/exif"
	"photomap-service/internal/geo"
	"photomap-service/internal/log"
	"photomap-service/internal/metrics"
	"photomap-service/internal/models"
	"photomap-service/internal/repository"
	"photomap-service/internal/storage"
	"photomap-service/internal/utils"
)

// UploadState is a step of a single upload attempt.
type UploadState string

const (
	StateIdle          UploadState = "idle"
	StateValidating    UploadState = "validating"
	StateWritingObject UploadState = "writing_object"
	StateWritingRecord UploadState = "writing_record"
	StateCommitted     UploadState = "committed"
	StateRolledBack    UploadState = "rolled_back"
	StateFailed        UploadState = "failed"
)

const (
	GPSSourceManual = "manual"
	GPSSourceExif   = "exif"
)

type UploadOptions struct {
	MaxBytes int64
	// URLTTL is the lifetime of the display URL returned on commit.
	URLTTL time.Duration
}

// UploadService stores a photo object and its row as one unit: when the
// row cannot be written the object is removed again.
type UploadService struct {
	photos   repository.PhotoRepository
	store    storage.ObjectStore
	resolver *URLResolver
	metrics  *metrics.Metrics
	opts     UploadOptions
	now      func() time.Time
}

func NewUploadService(photos repository.PhotoRepository, store storage.ObjectStore, resolver *URLResolver, m *metrics.Metrics, opts UploadOptions) *UploadService {
	return &UploadService{
		photos:   photos,
		store:    store,
		resolver: resolver,
		metrics:  m,
		opts:     opts,
		now:      time.Now,
	}
}

// Upload runs one attempt and reports the state it ended in. Validation
// failures end in StateIdle without touching storage.
func (s *UploadService) Upload(ctx context.Context, session *auth.Session, req models.UploadRequest) (*models.Photo, UploadState, error) {
	photo, state, err := s.upload(ctx, session, req)
	s.metrics.RecordUploadOutcome(string(state))
	return photo, state, err
}

func (s *UploadService) upload(ctx context.Context, session *auth.Session, req models.UploadRequest) (*models.Photo, UploadState, error) {
	if session == nil {
		return nil, StateIdle, apperr.NotAuthenticated()
	}

	// Validating
	coord, source, err := s.resolveCoordinate(req)
	if err != nil {
		return nil, StateIdle, err
	}
	mime, err := s.checkPayload(req.Data)
	if err != nil {
		return nil, StateIdle, err
	}

	// WritingObject
	key := s.objectKey(session.UserID, req.Filename, mime)
	if err := s.store.Put(ctx, key, bytes.NewReader(req.Data), int64(len(req.Data)), mime.String()); err != nil {
		log.Error("failed to store photo object", log.SourceUpload, log.SourceMinio, zap.String("key", key), zap.Error(err))
		return nil, StateFailed, apperr.Storage(err, "failed to upload photo")
	}

	// WritingRecord
	record, err := s.photos.Insert(ctx, models.PhotoInput{
		OwnerID:     session.UserID,
		StoragePath: key,
		Latitude:    coord.Latitude,
		Longitude:   coord.Longitude,
		Title:       utils.OptionalText(req.Title),
		Description: utils.OptionalText(req.Description),
	})
	if err != nil {
		log.Error("failed to save photo, removing object", log.SourceUpload, zap.String("key", key), zap.Error(err))
		// The insert may have failed because ctx ended; the removal still has to run.
		if rmErr := s.store.Remove(context.WithoutCancel(ctx), key); rmErr != nil {
			s.metrics.IncrementRollbackFailures()
			log.Error("rollback failed, object left behind", log.SourceUpload, log.SourceMinio, zap.String("key", key), zap.Error(rmErr))
		}
		return nil, StateRolledBack, err
	}

	photo := record.ToPhoto()
	url, err := s.resolver.Resolve(ctx, key, s.opts.URLTTL)
	if err != nil {
		log.Warn("photo saved but display url could not be created", log.SourceUpload, zap.String("id", record.ID.String()), zap.Error(err))
	}
	photo.ImageURL = url

	log.Info("photo uploaded", log.SourceUpload,
		zap.String("id", record.ID.String()),
		zap.String("owner", session.UserID.String()),
		zap.String("gps_source", source))
	return &photo, StateCommitted, nil
}

// resolveCoordinate prefers manually entered coordinates and falls back to
// the EXIF position embedded in the image.
func (s *UploadService) resolveCoordinate(req models.UploadRequest) (geo.Coordinate, string, error) {
	if !req.GPS.Empty() {
		coord, ok := req.GPS.Coordinate()
		if !ok {
			return geo.Coordinate{}, "", apperr.Validation("invalid GPS coordinates")
		}
		return coord, GPSSourceManual, nil
	}

	coord, found := s.extractGPS(req.Data)
	if !found {
		return geo.Coordinate{}, "", apperr.Validation("no GPS position found in the image, enter latitude and longitude")
	}
	return coord, GPSSourceExif, nil
}

func (s *UploadService) checkPayload(data []byte) (*mimetype.MIME, error) {
	if len(data) == 0 {
		return nil, apperr.Validation("file is empty")
	}
	if s.opts.MaxBytes > 0 && int64(len(data)) > s.opts.MaxBytes {
		return nil, apperr.Validationf("file is larger than %d MB", s.opts.MaxBytes/(1024*1024))
	}
	mime := mimetype.Detect(data)
	if !strings.HasPrefix(mime.String(), "image/") {
		return nil, apperr.Validationf("unsupported file type %s, only images are accepted", mime.String())
	}
	return mime, nil
}

// objectKey builds {owner}/{unixMillis}-{uuid}{ext}. The client's extension
// is kept when it has one, otherwise the sniffed type decides.
func (s *UploadService) objectKey(owner uuid.UUID, filename string, mime *mimetype.MIME) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" || ext == "." || strings.ContainsAny(ext, "/\\ ") {
		ext = mime.Extension()
	}
	return fmt.Sprintf("%s/%d-%s%s", owner, s.now().UnixMilli(), uuid.New(), ext)
}

// PreviewGPS reads the EXIF position of an image without storing it, so the
// upload form can be prefilled.
func (s *UploadService) PreviewGPS(data []byte) (models.GPSPreview, error) {
	if len(data) == 0 {
		return models.GPSPreview{}, apperr.Validation("file is empty")
	}
	if s.opts.MaxBytes > 0 && int64(len(data)) > s.opts.MaxBytes {
		return models.GPSPreview{}, apperr.Validationf("file is larger than %d MB", s.opts.MaxBytes/(1024*1024))
	}

	coord, found := s.extractGPS(data)
	if !found {
		return models.GPSPreview{Found: false}, nil
	}
	lat, lon := coord.Latitude, coord.Longitude
	return models.GPSPreview{Found: true, Latitude: &lat, Longitude: &lon, Source: GPSSourceExif}, nil
}

func (s *UploadService) extractGPS(data []byte) (geo.Coordinate, bool) {
	coord, found := exif.ExtractGPS(data)
	s.metrics.RecordExifExtraction(found)
	if !found {
		log.Debug("no EXIF GPS position in image", log.SourceExif, zap.Int("bytes", len(data)))
		return coord, false
	}
	log.Debug("read EXIF GPS position", log.SourceExif,
		zap.Float64("latitude", coord.Latitude),
		zap.Float64("longitude", coord.Longitude))
	return coord, true
}
