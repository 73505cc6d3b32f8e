package handlers

import (
	"mime/multipart"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// AttachmentsHandler serves image uploads for tickets.
type AttachmentsHandler struct {
	service *service.AttachmentService
}

// NewAttachmentsHandler constructs handler.
func NewAttachmentsHandler(attachmentService *service.AttachmentService) *AttachmentsHandler {
	return &AttachmentsHandler{service: attachmentService}
}

// Upload POST /tickets/:id/attachments with one `image` part.
func (h *AttachmentsHandler) Upload(c *fiber.Ctx) error {
	return h.upload(c, "image")
}

// UploadBatch POST /tickets/:id/attachments/batch with `images` parts.
func (h *AttachmentsHandler) UploadBatch(c *fiber.Ctx) error {
	return h.upload(c, "images")
}

func (h *AttachmentsHandler) upload(c *fiber.Ctx, field string) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	files, closeAll, err := formFiles(c, field)
	if err != nil {
		return err
	}
	defer closeAll()

	added, err := h.service.UploadAttachments(c.UserContext(), actor, id, files)
	if err != nil {
		return err
	}
	return ok(c, http.StatusCreated, "attachments uploaded", attachmentResponses(added))
}

// Delete DELETE /tickets/:id/attachments/:attachmentId.
func (h *AttachmentsHandler) Delete(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	attachmentID, err := paramID(c, "attachmentId")
	if err != nil {
		return err
	}
	if err := h.service.DeleteAttachment(c.UserContext(), actor, id, attachmentID); err != nil {
		return err
	}
	return ok(c, http.StatusOK, "attachment deleted", nil)
}

// UploadTemporary POST /uploads/temp with `images` parts.
func (h *AttachmentsHandler) UploadTemporary(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	files, closeAll, err := formFiles(c, "images")
	if err != nil {
		return err
	}
	defer closeAll()

	urls, err := h.service.UploadTemporary(c.UserContext(), actor, files)
	if err != nil {
		return err
	}
	return ok(c, http.StatusCreated, "images uploaded", dto.UploadedURLsResponse{URLs: urls})
}

// formFiles opens every part named field. The returned func closes them.
func formFiles(c *fiber.Ctx, field string) ([]service.UploadFile, func(), error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, func() {}, apperrors.NewBadRequest("multipart form expected", map[string]any{"field": field})
	}
	headers := form.File[field]
	if len(headers) == 0 {
		return nil, func() {}, apperrors.NewBadRequest("no files uploaded", map[string]any{"field": field})
	}

	opened := make([]multipart.File, 0, len(headers))
	closeAll := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}
	files := make([]service.UploadFile, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			closeAll()
			return nil, func() {}, apperrors.NewBadRequest("unreadable file", map[string]any{"filename": fh.Filename})
		}
		opened = append(opened, f)
		files = append(files, service.UploadFile{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get(fiber.HeaderContentType),
			Size:        fh.Size,
			Body:        f,
		})
	}
	return files, closeAll, nil
}
