package handlers

import (
	"github.com/gofiber/fiber/v2"

	"photomap-service/internal/auth"
)

// Routes wires the handlers onto the /api group.
type Routes struct {
	Photos   *PhotoHandler
	Comments *CommentHandler
	Cache    *CacheHandler
	Auth     *auth.Verifier
}

func (r *Routes) Register(api fiber.Router) {
	requireSession := r.Auth.RequireSession()
	optionalSession := r.Auth.OptionalSession()

	api.Get("/health", Health)

	api.Get("/photos/public", r.Photos.ListPublic)
	api.Get("/photos/nearby", r.Photos.Nearby)
	api.Get("/photos", requireSession, r.Photos.ListMine)
	api.Post("/photos", requireSession, r.Photos.Upload)
	api.Get("/photos/:id", optionalSession, r.Photos.GetPhoto)
	api.Delete("/photos/:id", requireSession, r.Photos.DeletePhoto)
	api.Post("/exif/gps", r.Photos.PreviewGPS)

	api.Get("/photos/:id/comments", r.Comments.ListComments)
	api.Post("/photos/:id/comments", requireSession, r.Comments.AddComment)
	api.Get("/photos/:id/comments/count", r.Comments.CountComments)
	api.Delete("/comments/:id", requireSession, r.Comments.DeleteComment)

	api.Get("/cache/stats", r.Cache.GetCacheStats)
}

// Health handles GET /health
// @Summary Health check
// @Tags health
// @Success 200 "OK"
// @Router /health [get]
func Health(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusOK)
}
