package handlers

import (
	"io"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"photomap-service/internal/apperr"
	"photomap-service/internal/auth"
	"photomap-service/internal/geo"
	"photomap-service/internal/log"
	"photomap-service/internal/models"
	"photomap-service/internal/services"
)

const defaultNearbyRadius = 5000.0

// PhotoHandler exposes uploads, feeds and single photo operations.
type PhotoHandler struct {
	Uploads *services.UploadService
	Feed    *services.FeedService
	Photos  *services.PhotoService
}

func NewPhotoHandler(uploads *services.UploadService, feed *services.FeedService, photos *services.PhotoService) *PhotoHandler {
	return &PhotoHandler{Uploads: uploads, Feed: feed, Photos: photos}
}

func feedOptions(c *fiber.Ctx) services.FeedOptions {
	return services.FeedOptions{WithCommentCounts: c.QueryBool("comments", false)}
}

// ListPublic handles GET /photos/public
// @Summary List photos for the map
// @Description Newest photos of all users with short-lived image URLs
// @Tags photos
// @Produce json
// @Param comments query bool false "Include comment counts"
// @Success 200 {array} models.Photo
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /photos/public [get]
func (h *PhotoHandler) ListPublic(c *fiber.Ctx) error {
	photos, err := h.Feed.PublicFeed(c.UserContext(), feedOptions(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(photos)
}

// ListMine handles GET /photos
// @Summary List the caller's photos
// @Tags photos
// @Produce json
// @Security BearerAuth
// @Param comments query bool false "Include comment counts"
// @Success 200 {array} models.Photo
// @Failure 401 {object} map[string]interface{} "Not authenticated"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /photos [get]
func (h *PhotoHandler) ListMine(c *fiber.Ctx) error {
	session, _ := auth.FromCtx(c)
	photos, err := h.Feed.OwnerFeed(c.UserContext(), session, feedOptions(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(photos)
}

// Nearby handles GET /photos/nearby
// @Summary Find photos around a point
// @Tags photos
// @Produce json
// @Param lat query number true "Latitude"
// @Param lon query number true "Longitude"
// @Param radius query number false "Radius in meters (default 5000)"
// @Success 200 {array} models.Photo
// @Failure 400 {object} map[string]interface{} "Bad request"
// @Router /photos/nearby [get]
func (h *PhotoHandler) Nearby(c *fiber.Ctx) error {
	center, err := geo.ParseCoordinate(c.Query("lat"), c.Query("lon"))
	if err != nil {
		return writeError(c, err)
	}
	radius := defaultNearbyRadius
	if raw := c.Query("radius"); raw != "" {
		radius, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			return badRequest(c, "radius must be a number")
		}
	}

	photos, err := h.Feed.Nearby(c.UserContext(), center.Latitude, center.Longitude, radius, feedOptions(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(photos)
}

// GetPhoto handles GET /photos/:id
// @Summary Get a photo by ID
// @Tags photos
// @Produce json
// @Param id path string true "Photo ID"
// @Success 200 {object} models.Photo
// @Failure 400 {object} map[string]interface{} "Invalid UUID"
// @Failure 404 {object} map[string]interface{} "Photo not found"
// @Router /photos/{id} [get]
func (h *PhotoHandler) GetPhoto(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, InvalidUuidError)
	}
	session, _ := auth.FromCtx(c)
	photo, err := h.Photos.GetPhoto(c.UserContext(), session, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(photo)
}

// Upload handles POST /photos
// @Summary Upload a photo
// @Description Stores an image with its position. Latitude and longitude are optional when the image carries EXIF GPS tags.
// @Tags photos
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Image file"
// @Param title formData string false "Title"
// @Param description formData string false "Description"
// @Param latitude formData number false "Latitude"
// @Param longitude formData number false "Longitude"
// @Success 201 {object} models.Photo
// @Failure 400 {object} map[string]interface{} "Bad request"
// @Failure 401 {object} map[string]interface{} "Not authenticated"
// @Failure 502 {object} map[string]interface{} "Storage error"
// @Router /photos [post]
func (h *PhotoHandler) Upload(c *fiber.Ctx) error {
	session, _ := auth.FromCtx(c)

	filename, data, err := readFormFile(c)
	if err != nil {
		return writeError(c, err)
	}
	gps, err := geo.ParseGPS(c.FormValue("latitude"), c.FormValue("longitude"))
	if err != nil {
		return writeError(c, err)
	}

	photo, state, err := h.Uploads.Upload(c.UserContext(), session, models.UploadRequest{
		Filename:    filename,
		Data:        data,
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
		GPS:         gps,
	})
	if err != nil {
		log.Debug("upload did not commit", log.SourceHTTP, zap.String("state", string(state)), zap.Error(err))
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(photo)
}

// DeletePhoto handles DELETE /photos/:id
// @Summary Delete one of the caller's photos
// @Tags photos
// @Security BearerAuth
// @Param id path string true "Photo ID"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]interface{} "Invalid UUID"
// @Failure 401 {object} map[string]interface{} "Not authenticated"
// @Failure 404 {object} map[string]interface{} "Photo not found"
// @Failure 502 {object} map[string]interface{} "Storage error"
// @Router /photos/{id} [delete]
func (h *PhotoHandler) DeletePhoto(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, InvalidUuidError)
	}
	session, _ := auth.FromCtx(c)
	if err := h.Photos.DeletePhoto(c.UserContext(), session, id); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// PreviewGPS handles POST /exif/gps
// @Summary Read GPS coordinates from an image
// @Description Returns the EXIF position of the image without storing it
// @Tags photos
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Image file"
// @Success 200 {object} models.GPSPreview
// @Failure 400 {object} map[string]interface{} "Bad request"
// @Router /exif/gps [post]
func (h *PhotoHandler) PreviewGPS(c *fiber.Ctx) error {
	_, data, err := readFormFile(c)
	if err != nil {
		return writeError(c, err)
	}
	preview, err := h.Uploads.PreviewGPS(data)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(preview)
}

func readFormFile(c *fiber.Ctx) (string, []byte, error) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return "", nil, apperr.Validation("file is required")
	}
	f, err := fileHeader.Open()
	if err != nil {
		return "", nil, apperr.Validation("could not read uploaded file")
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", nil, apperr.Validation("could not read uploaded file")
	}
	return fileHeader.Filename, data, nil
}
