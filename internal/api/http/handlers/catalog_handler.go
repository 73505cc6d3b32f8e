package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

// CatalogHandler serves priorities and tags.
type CatalogHandler struct {
	service *service.CatalogService
}

// NewCatalogHandler constructs handler.
func NewCatalogHandler(catalog *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: catalog}
}

// ListPriorities GET /priorities.
func (h *CatalogHandler) ListPriorities(c *fiber.Ctx) error {
	priorities, err := h.service.ListPriorities(c.UserContext())
	if err != nil {
		return err
	}
	out := make([]dto.PriorityResponse, 0, len(priorities))
	for _, p := range priorities {
		out = append(out, priorityResponse(p))
	}
	return ok(c, http.StatusOK, "priorities retrieved", out)
}

// GetPriority GET /priorities/:id.
func (h *CatalogHandler) GetPriority(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	priority, err := h.service.GetPriority(c.UserContext(), id)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, "priority retrieved", priorityResponse(*priority))
}

// CreatePriority POST /priorities.
func (h *CatalogHandler) CreatePriority(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req dto.NameRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	priority, err := h.service.CreatePriority(c.UserContext(), actor, req.Name)
	if err != nil {
		return err
	}
	return ok(c, http.StatusCreated, "priority created", priorityResponse(*priority))
}

// UpdatePriority PUT /priorities/:id.
func (h *CatalogHandler) UpdatePriority(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req dto.NameRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	priority, err := h.service.UpdatePriority(c.UserContext(), actor, id, req.Name)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, "priority updated", priorityResponse(*priority))
}

// DeletePriority DELETE /priorities/:id.
func (h *CatalogHandler) DeletePriority(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.DeletePriority(c.UserContext(), actor, id); err != nil {
		return err
	}
	return ok(c, http.StatusOK, "priority deleted", nil)
}

// ListTags GET /tags.
func (h *CatalogHandler) ListTags(c *fiber.Ctx) error {
	tags, err := h.service.ListTags(c.UserContext())
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, "tags retrieved", tagResponses(tags))
}

// CreateTag POST /tags.
func (h *CatalogHandler) CreateTag(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req dto.NameRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	tag, err := h.service.CreateTag(c.UserContext(), actor, req.Name)
	if err != nil {
		return err
	}
	return ok(c, http.StatusCreated, "tag created", tagResponse(*tag))
}
