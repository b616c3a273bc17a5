package services

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"photomap-service/internal/apperr"
	"photomap-service/internal/auth"
	"photomap-service/internal/config"
	"photomap-service/internal/geo"
	"photomap-service/internal/log"
	"photomap-service/internal/metrics"
	"photomap-service/internal/models"
	"photomap-service/internal/repository"
)

type FeedConfig struct {
	PublicURLTTL time.Duration
	OwnerURLTTL  time.Duration
	// PublicLimit caps the anonymous listing; <= 0 means no cap.
	PublicLimit int
	Concurrency int
	// Fallback is config.FallbackOmit or config.FallbackEmpty.
	Fallback string
}

type FeedOptions struct {
	WithCommentCounts bool
}

// FeedService turns photo rows into map-ready photos with signed URLs.
type FeedService struct {
	photos   repository.PhotoRepository
	comments repository.CommentRepository
	resolver *URLResolver
	metrics  *metrics.Metrics
	cfg      FeedConfig
}

func NewFeedService(photos repository.PhotoRepository, comments repository.CommentRepository, resolver *URLResolver, m *metrics.Metrics, cfg FeedConfig) *FeedService {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.Fallback == "" {
		cfg.Fallback = config.FallbackOmit
	}
	return &FeedService{photos: photos, comments: comments, resolver: resolver, metrics: m, cfg: cfg}
}

// OwnerFeed lists the caller's own photos.
func (s *FeedService) OwnerFeed(ctx context.Context, session *auth.Session, opts FeedOptions) ([]models.Photo, error) {
	if session == nil {
		return nil, apperr.NotAuthenticated()
	}
	records, err := s.photos.ListByOwner(ctx, session.UserID, 0)
	if err != nil {
		log.Error("failed to list owner photos", log.SourceFeed, zap.String("owner", session.UserID.String()), zap.Error(err))
		return nil, err
	}
	photos := make([]models.Photo, len(records))
	for i := range records {
		photos[i] = records[i].ToPhoto()
	}
	return s.assemble(ctx, photos, s.cfg.OwnerURLTTL, opts), nil
}

// PublicFeed lists everyone's photos for the map. Only the fields needed to
// place and show a marker are exposed.
func (s *FeedService) PublicFeed(ctx context.Context, opts FeedOptions) ([]models.Photo, error) {
	records, err := s.photos.ListAll(ctx, s.cfg.PublicLimit)
	if err != nil {
		log.Error("failed to list public photos", log.SourceFeed, zap.Error(err))
		return nil, err
	}
	photos := make([]models.Photo, len(records))
	for i := range records {
		photos[i] = publicPhoto(&records[i])
	}
	return s.assemble(ctx, photos, s.cfg.PublicURLTTL, opts), nil
}

// Nearby lists public photos within radiusMeters of a point, newest first.
func (s *FeedService) Nearby(ctx context.Context, lat, lon, radiusMeters float64, opts FeedOptions) ([]models.Photo, error) {
	records, err := s.photos.Nearby(ctx, geo.Coordinate{Latitude: lat, Longitude: lon}, radiusMeters, s.cfg.PublicLimit)
	if err != nil {
		return nil, err
	}
	photos := make([]models.Photo, len(records))
	for i := range records {
		photos[i] = publicPhoto(&records[i])
	}
	return s.assemble(ctx, photos, s.cfg.PublicURLTTL, opts), nil
}

func publicPhoto(record *models.PhotoRecord) models.Photo {
	photo := record.ToPhoto()
	photo.OwnerID = nil
	photo.CreatedAt = nil
	photo.Description = nil
	return photo
}

// assemble resolves URLs (and optionally comment counts) for every photo
// concurrently. No branch fails the batch; each failure is handled on its
// own row, and the output keeps the input order.
func (s *FeedService) assemble(ctx context.Context, photos []models.Photo, ttl time.Duration, opts FeedOptions) []models.Photo {
	resolved := make([]bool, len(photos))

	g := new(errgroup.Group)
	g.SetLimit(s.cfg.Concurrency)
	for i := range photos {
		i := i
		g.Go(func() error {
			url, err := s.resolver.Resolve(ctx, photos[i].StoragePath, ttl)
			if err != nil {
				log.Warn("failed to sign photo url", log.SourceFeed, zap.String("id", photos[i].ID.String()), zap.Error(err))
			} else {
				photos[i].ImageURL = url
				resolved[i] = true
			}
			return nil
		})
		if opts.WithCommentCounts {
			g.Go(func() error {
				count, err := s.comments.CountByPhoto(ctx, photos[i].ID)
				if err != nil {
					log.Warn("failed to count comments", log.SourceFeed, zap.String("id", photos[i].ID.String()), zap.Error(err))
					return nil
				}
				photos[i].CommentCount = &count
				return nil
			})
		}
	}
	_ = g.Wait()

	out := make([]models.Photo, 0, len(photos))
	for i := range photos {
		switch {
		case resolved[i]:
			s.metrics.RecordFeedPhoto("included")
		case s.cfg.Fallback == config.FallbackEmpty:
			s.metrics.RecordFeedPhoto("empty_url")
		default:
			s.metrics.RecordFeedPhoto("omitted")
			continue
		}
		out = append(out, photos[i])
	}
	return out
}
