package models

import (
	"github.com/google/uuid"

	"photomap-service/internal/geo"
)

// PhotoInput carries the columns written when a photo row is inserted.
type PhotoInput struct {
	OwnerID     uuid.UUID
	StoragePath string
	Latitude    float64
	Longitude   float64
	Title       *string
	Description *string
}

// UploadRequest is one photo submitted through the upload form.
type UploadRequest struct {
	Filename    string
	Data        []byte
	Title       string
	Description string
	// GPS holds manually entered coordinates; when empty the orchestrator
	// falls back to the EXIF position embedded in Data.
	GPS geo.GPS
}

// GPSPreview is the result of reading coordinates from an image without
// storing it.
type GPSPreview struct {
	Found     bool     `json:"found"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Source    string   `json:"source,omitempty"`
}
