package handlers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/ahmetcoskunkizilkaya/civic-reports/internal/apperror"
	"github.com/ahmetcoskunkizilkaya/civic-reports/internal/dto"
	"github.com/ahmetcoskunkizilkaya/civic-reports/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/civic-reports/internal/services"
	"github.com/ahmetcoskunkizilkaya/civic-reports/internal/storage"
	"github.com/gabriel-vasile/mimetype"
	"github.com/gofiber/fiber/v2"
)

type UploadHandler struct {
	uploader    storage.Uploader
	userService *services.UserService
	maxBytes    int64
}

func NewUploadHandler(uploader storage.Uploader, userService *services.UserService, maxBytes int) *UploadHandler {
	return &UploadHandler{uploader: uploader, userService: userService, maxBytes: int64(maxBytes)}
}

func (h *UploadHandler) Image(c *fiber.Ctx) error {
	url, err := h.store(c, "image", "reports")
	if err != nil {
		return err
	}
	return success(c, fiber.StatusCreated, dto.UploadResponse{URL: url}, "Image uploaded")
}

func (h *UploadHandler) Avatar(c *fiber.Ctx) error {
	url, err := h.store(c, "avatar", "avatars")
	if err != nil {
		return err
	}

	resp, err := h.userService.SetAvatar(c.UserContext(), middleware.CurrentUser(c), url)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, resp, "Avatar updated")
}

// store validates the multipart file by size and sniffed content type, then
// hands it to the uploader.
func (h *UploadHandler) store(c *fiber.Ctx, field, folder string) (string, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return "", apperror.Validation(apperror.FieldError{Field: field, Message: "is required"})
	}
	if fh.Size > h.maxBytes {
		return "", apperror.Validation(apperror.FieldError{
			Field:   field,
			Message: fmt.Sprintf("must be at most %d bytes", h.maxBytes),
		})
	}

	f, err := fh.Open()
	if err != nil {
		return "", apperror.Internal("failed to read upload", err)
	}
	defer f.Close()

	mtype, err := mimetype.DetectReader(f)
	if err != nil {
		return "", apperror.Internal("failed to read upload", err)
	}
	contentType, _, _ := strings.Cut(mtype.String(), ";")
	if _, supported := storage.Extension(contentType); !supported {
		return "", apperror.Validation(apperror.FieldError{
			Field:   field,
			Message: "must be a JPEG, PNG, WebP or GIF image",
		})
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", apperror.Internal("failed to read upload", err)
	}

	url, err := h.uploader.Upload(c.UserContext(), f, contentType, folder)
	if err != nil {
		if errors.Is(err, storage.ErrNotConfigured) {
			return "", apperror.New(fiber.StatusServiceUnavailable, apperror.CodeInternal, "file uploads are not configured")
		}
		return "", apperror.Internal("failed to store upload", err)
	}

	slog.Info("file uploaded", "folder", folder, "content_type", contentType, "bytes", fh.Size)
	return url, nil
}
