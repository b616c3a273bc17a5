package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"photomap-service/internal/apperr"
	"photomap-service/internal/models"
	"photomap-service/internal/utils"
)

type CommentRepository interface {
	ListByPhoto(ctx context.Context, photoID uuid.UUID) ([]models.CommentRecord, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.CommentRecord, error)
	Insert(ctx context.Context, photoID, authorID uuid.UUID, content string) (*models.CommentRecord, error)
	Delete(ctx context.Context, commentID, authorID uuid.UUID) (int64, error)
	CountByPhoto(ctx context.Context, photoID uuid.UUID) (int64, error)
}

type CommentRepositoryImpl struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) *CommentRepositoryImpl {
	return &CommentRepositoryImpl{db: db}
}

// ListByPhoto returns the comments of a photo, newest first. An unknown
// photo yields an empty list.
func (r *CommentRepositoryImpl) ListByPhoto(ctx context.Context, photoID uuid.UUID) ([]models.CommentRecord, error) {
	comments := []models.CommentRecord{}
	err := r.db.WithContext(ctx).
		Where("photo_id = ?", photoID).
		Order("created_at DESC").Order("id").
		Find(&comments).Error
	if err != nil {
		return nil, apperr.Db(err, "failed to list comments")
	}
	return comments, nil
}

func (r *CommentRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*models.CommentRecord, error) {
	var comment models.CommentRecord
	if err := r.db.WithContext(ctx).First(&comment, "id = ?", id).Error; err != nil {
		return nil, dbError(err, "comment not found", "failed to load comment")
	}
	return &comment, nil
}

// Insert stores a comment with surrounding whitespace removed. Blank content
// is rejected before anything is written.
func (r *CommentRepositoryImpl) Insert(ctx context.Context, photoID, authorID uuid.UUID, content string) (*models.CommentRecord, error) {
	trimmed := utils.TrimText(content)
	if trimmed == "" {
		return nil, apperr.Validation("comment must not be empty")
	}

	comment := &models.CommentRecord{
		PhotoID:  photoID,
		AuthorID: authorID,
		Content:  trimmed,
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var photos int64
		if err := tx.Model(&models.PhotoRecord{}).Where("id = ?", photoID).Count(&photos).Error; err != nil {
			return apperr.Db(err, "failed to load photo")
		}
		if photos == 0 {
			return apperr.NotFound("photo not found")
		}
		if err := tx.Create(comment).Error; err != nil {
			return apperr.Db(err, "failed to save comment")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return comment, nil
}

// Delete removes a comment written by authorID. Deleting a missing comment,
// or someone else's, affects zero rows and is not an error.
func (r *CommentRepositoryImpl) Delete(ctx context.Context, commentID, authorID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", commentID, authorID).
		Delete(&models.CommentRecord{})
	if result.Error != nil {
		return 0, apperr.Db(result.Error, "failed to delete comment")
	}
	return result.RowsAffected, nil
}

// CountByPhoto returns the number of comments on a photo.
func (r *CommentRepositoryImpl) CountByPhoto(ctx context.Context, photoID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.CommentRecord{}).
		Where("photo_id = ?", photoID).
		Count(&count).Error
	if err != nil {
		return 0, apperr.Db(err, "failed to count comments")
	}
	return count, nil
}
