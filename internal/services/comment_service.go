package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"photomap-service/internal/apperr"
	"photomap-service/internal/auth"
	"photomap-service/internal/cache"
	"photomap-service/internal/log"
	"photomap-service/internal/models"
	"photomap-service/internal/repository"
)

// CommentService serves comment threads from a short-lived cache. Every
// write drops the cached thread so the next read goes to the database.
type CommentService struct {
	repo  repository.CommentRepository
	cache cache.Layer
	ttl   time.Duration
}

// NewCommentService creates the service. layer may be nil to disable caching.
func NewCommentService(repo repository.CommentRepository, layer cache.Layer, ttl time.Duration) *CommentService {
	return &CommentService{repo: repo, cache: layer, ttl: ttl}
}

func threadKey(photoID uuid.UUID) string {
	return "comments:" + photoID.String()
}

// List returns the thread of a photo, newest first. Reading does not
// require a session.
func (s *CommentService) List(ctx context.Context, photoID uuid.UUID) ([]models.CommentRecord, error) {
	if comments, ok := s.cachedThread(ctx, photoID); ok {
		return comments, nil
	}

	comments, err := s.repo.ListByPhoto(ctx, photoID)
	if err != nil {
		log.Error("failed to list comments", log.SourceComments, zap.String("photo", photoID.String()), zap.Error(err))
		return nil, err
	}
	s.storeThread(ctx, photoID, comments)
	return comments, nil
}

func (s *CommentService) cachedThread(ctx context.Context, photoID uuid.UUID) ([]models.CommentRecord, bool) {
	if s.cache == nil {
		return nil, false
	}
	data, found, err := s.cache.Get(ctx, threadKey(photoID))
	if err != nil {
		log.Warn("comment cache lookup failed", log.SourceComments, zap.Error(err))
		return nil, false
	}
	if !found {
		return nil, false
	}
	var comments []models.CommentRecord
	if err := json.Unmarshal(data, &comments); err != nil {
		log.Warn("dropping unreadable cached thread", log.SourceComments, zap.String("photo", photoID.String()), zap.Error(err))
		s.InvalidateThread(ctx, photoID)
		return nil, false
	}
	return comments, true
}

func (s *CommentService) storeThread(ctx context.Context, photoID uuid.UUID, comments []models.CommentRecord) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(comments)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, threadKey(photoID), data, s.ttl); err != nil {
		log.Warn("failed to cache comment thread", log.SourceComments, zap.Error(err))
	}
}

// InvalidateThread drops the cached thread of a photo.
func (s *CommentService) InvalidateThread(ctx context.Context, photoID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, threadKey(photoID)); err != nil {
		log.Warn("failed to invalidate comment thread", log.SourceComments, zap.String("photo", photoID.String()), zap.Error(err))
	}
}

// Add posts a comment as the session's user.
func (s *CommentService) Add(ctx context.Context, session *auth.Session, photoID uuid.UUID, content string) (*models.CommentRecord, error) {
	if session == nil {
		return nil, apperr.NotAuthenticated()
	}
	comment, err := s.repo.Insert(ctx, photoID, session.UserID, content)
	if err != nil {
		return nil, err
	}
	s.InvalidateThread(ctx, photoID)
	return comment, nil
}

// Delete removes a comment written by the session's user and reports the
// number of rows removed. Unknown comments and comments by other users are
// left alone without an error.
func (s *CommentService) Delete(ctx context.Context, session *auth.Session, commentID uuid.UUID) (int64, error) {
	if session == nil {
		return 0, apperr.NotAuthenticated()
	}
	comment, err := s.repo.GetByID(ctx, commentID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return 0, nil
		}
		return 0, err
	}

	rows, err := s.repo.Delete(ctx, commentID, session.UserID)
	if err != nil {
		return 0, err
	}
	if rows > 0 {
		s.InvalidateThread(ctx, comment.PhotoID)
	}
	return rows, nil
}

// Count returns the number of comments on a photo.
func (s *CommentService) Count(ctx context.Context, photoID uuid.UUID) (int64, error) {
	return s.repo.CountByPhoto(ctx, photoID)
}
