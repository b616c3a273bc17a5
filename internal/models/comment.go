package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CommentRecord is a note attached to a photo. The JSON names follow the
// column names because clients consume the rows as-is.
type CommentRecord struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PhotoID   uuid.UUID `gorm:"column:photo_id;type:uuid;not null;index" json:"photo_id"`
	AuthorID  uuid.UUID `gorm:"column:user_id;type:uuid;not null;index" json:"user_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (CommentRecord) TableName() string { return "comments" }

func (c *CommentRecord) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
