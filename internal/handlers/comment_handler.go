package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"photomap-service/internal/auth"
	"photomap-service/internal/services"
)

type CommentHandler struct {
	Comments *services.CommentService
}

func NewCommentHandler(comments *services.CommentService) *CommentHandler {
	return &CommentHandler{Comments: comments}
}

type commentRequest struct {
	Content string `json:"content"`
}

// ListComments handles GET /photos/:id/comments
// @Summary List the comments of a photo
// @Tags comments
// @Produce json
// @Param id path string true "Photo ID"
// @Success 200 {array} models.CommentRecord
// @Failure 400 {object} map[string]interface{} "Invalid UUID"
// @Router /photos/{id}/comments [get]
func (h *CommentHandler) ListComments(c *fiber.Ctx) error {
	photoID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, InvalidUuidError)
	}
	comments, err := h.Comments.List(c.UserContext(), photoID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(comments)
}

// AddComment handles POST /photos/:id/comments
// @Summary Comment on a photo
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Photo ID"
// @Param request body commentRequest true "Comment"
// @Success 201 {object} models.CommentRecord
// @Failure 400 {object} map[string]interface{} "Bad request"
// @Failure 401 {object} map[string]interface{} "Not authenticated"
// @Failure 404 {object} map[string]interface{} "Photo not found"
// @Router /photos/{id}/comments [post]
func (h *CommentHandler) AddComment(c *fiber.Ctx) error {
	photoID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, InvalidUuidError)
	}
	var req commentRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	session, _ := auth.FromCtx(c)
	comment, err := h.Comments.Add(c.UserContext(), session, photoID, req.Content)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// CountComments handles GET /photos/:id/comments/count
// @Summary Count the comments of a photo
// @Tags comments
// @Produce json
// @Param id path string true "Photo ID"
// @Success 200 {object} map[string]interface{} "{\"count\": 0}"
// @Failure 400 {object} map[string]interface{} "Invalid UUID"
// @Router /photos/{id}/comments/count [get]
func (h *CommentHandler) CountComments(c *fiber.Ctx) error {
	photoID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, InvalidUuidError)
	}
	count, err := h.Comments.Count(c.UserContext(), photoID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"count": count})
}

// DeleteComment handles DELETE /comments/:id
// @Summary Delete one of the caller's comments
// @Description Deleting a missing comment or someone else's comment succeeds without effect
// @Tags comments
// @Security BearerAuth
// @Param id path string true "Comment ID"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]interface{} "Invalid UUID"
// @Failure 401 {object} map[string]interface{} "Not authenticated"
// @Router /comments/{id} [delete]
func (h *CommentHandler) DeleteComment(c *fiber.Ctx) error {
	commentID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, InvalidUuidError)
	}
	session, _ := auth.FromCtx(c)
	if _, err := h.Comments.Delete(c.UserContext(), session, commentID); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
