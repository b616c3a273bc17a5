package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PhotoRecord is a row of the photos table. Rows are never updated after
// creation; deleting one also deletes its comments.
type PhotoRecord struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID     uuid.UUID `gorm:"column:user_id;type:uuid;not null;index" json:"user_id"`
	StoragePath string    `gorm:"column:path;not null;uniqueIndex" json:"path"`
	Latitude    float64   `gorm:"column:lat;not null" json:"lat"`
	Longitude   float64   `gorm:"column:lon;not null" json:"lon"`
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Exif        []byte    `gorm:"column:exif" json:"exif"`
	CreatedAt   time.Time `gorm:"autoCreateTime;index" json:"created_at"`

	Comments []CommentRecord `gorm:"foreignKey:PhotoID;constraint:OnDelete:CASCADE" json:"-"`
}

func (PhotoRecord) TableName() string { return "photos" }

// BeforeCreate assigns the id on the application side so the same code runs
// on Postgres and on the SQLite test database.
func (p *PhotoRecord) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Photo is the shape handed to the map view.
type Photo struct {
	ID           uuid.UUID  `json:"id"`
	Title        string     `json:"title"`
	Description  *string    `json:"description,omitempty"`
	Latitude     float64    `json:"lat"`
	Longitude    float64    `json:"lon"`
	ImageURL     string     `json:"imageUrl"`
	OwnerID      *uuid.UUID `json:"userId,omitempty"`
	CreatedAt    *time.Time `json:"createdAt,omitempty"`
	CommentCount *int64     `json:"commentCount,omitempty"`

	// StoragePath is kept for the server side only.
	StoragePath string `json:"-"`
}

// ToPhoto maps a record to its public shape. The image URL is filled in by
// the caller once it has been signed.
func (p *PhotoRecord) ToPhoto() Photo {
	owner := p.OwnerID
	created := p.CreatedAt
	photo := Photo{
		ID:          p.ID,
		Description: p.Description,
		Latitude:    p.Latitude,
		Longitude:   p.Longitude,
		OwnerID:     &owner,
		CreatedAt:   &created,
		StoragePath: p.StoragePath,
	}
	if p.Title != nil {
		photo.Title = *p.Title
	}
	return photo
}
