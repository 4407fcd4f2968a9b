package handler

import (
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/taskhub/task-service/internal/core/ports"
)

// maxAvatarBytes caps uploaded avatar images at 1 MiB; the blob is stored
// inline in the user document.
const maxAvatarBytes = 1 << 20

// AvatarHandler handles avatar upload, removal and the public read.
type AvatarHandler struct {
	service ports.UserService
}

func NewAvatarHandler(service ports.UserService) *AvatarHandler {
	return &AvatarHandler{service: service}
}

// Upload stores the authenticated account's avatar from the multipart field
// "avatar". The payload is sniffed; only JPEG and PNG are accepted.
//
// @Summary      Upload own avatar
// @Tags         avatars
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        avatar  formData  file  true  "JPEG or PNG image, at most 1MB"
// @Success      200     {object}  messageResponse
// @Failure      400     {object}  errorResponse
// @Failure      401     {object}  errorResponse
// @Router       /users/me/avatar [post]
func (h *AvatarHandler) Upload(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}

	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "avatar file is required")
	}
	if fileHeader.Size > maxAvatarBytes {
		return echo.NewHTTPError(http.StatusBadRequest, "avatar must be 1MB or smaller")
	}

	src, err := fileHeader.Open()
	if err != nil {
		return fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	// Re-check after reading; the multipart size header is client-supplied.
	data, err := io.ReadAll(io.LimitReader(src, maxAvatarBytes+1))
	if err != nil {
		return fmt.Errorf("read upload: %w", err)
	}
	if len(data) > maxAvatarBytes {
		return echo.NewHTTPError(http.StatusBadRequest, "avatar must be 1MB or smaller")
	}

	switch http.DetectContentType(data) {
	case "image/jpeg", "image/png":
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "avatar must be a JPEG or PNG image")
	}

	if err := h.service.SetAvatar(c.Request().Context(), user.ID, data); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "avatar uploaded"})
}

// Delete removes the authenticated account's avatar.
//
// @Summary      Delete own avatar
// @Tags         avatars
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  errorResponse
// @Router       /users/me/avatar [delete]
func (h *AvatarHandler) Delete(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}

	if err := h.service.DeleteAvatar(c.Request().Context(), user.ID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "avatar deleted"})
}

// Get serves any user's avatar by id. The route is public; avatars are the
// only piece of account data exposed without authentication.
//
// @Summary      Get a user's avatar
// @Tags         avatars
// @Produce      image/jpeg
// @Produce      image/png
// @Param        id   path      string  true  "User id"
// @Success      200  {file}    binary
// @Failure      404  {object}  errorResponse
// @Router       /users/{id}/avatar [get]
func (h *AvatarHandler) Get(c echo.Context) error {
	data, err := h.service.Avatar(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, http.DetectContentType(data), data)
}
