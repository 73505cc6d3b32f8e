package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/report"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// TicketsHandler manages ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
	now     func() time.Time
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService, now: time.Now}
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	query, err := parseTicketQuery(c)
	if err != nil {
		return err
	}
	page, err := h.service.ListTickets(c.UserContext(), actor, query)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, "tickets retrieved", ticketListResponse(page))
}

// Stats GET /tickets/stats.
func (h *TicketsHandler) Stats(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	stats, err := h.service.TicketStats(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, "ticket stats retrieved", statsResponse(stats))
}

// Export GET /tickets/export streams the filtered listing as xlsx.
func (h *TicketsHandler) Export(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	query, err := parseTicketQuery(c)
	if err != nil {
		return err
	}
	rows, err := h.service.ExportTickets(c.UserContext(), actor, query)
	if err != nil {
		return err
	}
	file, err := report.TicketsWorkbook(rows)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	c.Attachment(report.TicketsFilename(h.now()))
	c.Set(fiber.HeaderContentType, xlsxContentType)
	return c.Status(http.StatusOK).Send(file)
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	detail, err := h.service.GetTicket(c.UserContext(), actor, id)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, "ticket retrieved", ticketDetailResponse(detail))
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req dto.CreateTicketRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	view, err := h.service.CreateTicket(c.UserContext(), actor, service.CreateTicketInput{
		Subject:        req.Subject,
		Description:    req.Description,
		RequesterEmail: req.RequesterEmail,
		RequesterName:  req.RequesterName,
		PriorityID:     req.PriorityID,
		AssigneeID:     req.AssigneeID,
		TagIDs:         req.TagIDs,
		ImageURLs:      req.ImageURLs,
	})
	if err != nil {
		return err
	}
	return ok(c, http.StatusCreated, "ticket created", ticketResponse(view))
}

// UpdateTicket PUT /tickets/:id.
func (h *TicketsHandler) UpdateTicket(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateTicketRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	input := service.UpdateTicketInput{
		Subject:        req.Subject,
		Description:    req.Description,
		RequesterEmail: req.RequesterEmail,
		RequesterName:  req.RequesterName,
		Status:         req.Status,
		PriorityID:     req.PriorityID,
		TagIDs:         req.TagIDs,
	}
	if req.AssigneeID.Set {
		input.Assignee = &service.AssigneeChange{ID: req.AssigneeID.Value}
	}
	view, err := h.service.UpdateTicket(c.UserContext(), actor, id, input)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, "ticket updated", ticketResponse(view))
}

// AddComment POST /tickets/:id/comments.
func (h *TicketsHandler) AddComment(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req dto.CreateCommentRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	comment, err := h.service.AddComment(c.UserContext(), actor, id, req.Content, req.IsInternal)
	if err != nil {
		return err
	}
	return ok(c, http.StatusCreated, "comment added", commentResponse(comment))
}

func parseTicketQuery(c *fiber.Ctx) (service.TicketQuery, error) {
	var (
		query service.TicketQuery
		err   error
	)
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		status := domain.TicketStatus(strings.ToLower(raw))
		query.Status = &status
	}
	if query.PriorityID, err = queryID(c, "priority_id"); err != nil {
		return query, err
	}
	if query.AssigneeID, err = queryID(c, "assignee_id"); err != nil {
		return query, err
	}
	if query.CreatedByID, err = queryID(c, "created_by_id"); err != nil {
		return query, err
	}
	if query.Page, err = queryInt(c, "page"); err != nil {
		return query, err
	}
	if query.Limit, err = queryInt(c, "limit"); err != nil {
		return query, err
	}
	query.Search = c.Query("search")
	query.SortBy = c.Query("sort_by")
	query.SortOrder = c.Query("sort_order")
	return query, nil
}
