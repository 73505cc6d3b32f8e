package handlers

import (
	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

func userRefResponse(ref *domain.UserRef) *dto.UserRefResponse {
	if ref == nil {
		return nil
	}
	return &dto.UserRefResponse{
		ID:        ref.ID,
		FirstName: ref.FirstName,
		LastName:  ref.LastName,
		Email:     ref.Email,
		Role:      ref.Role,
	}
}

func priorityResponse(p domain.Priority) dto.PriorityResponse {
	return dto.PriorityResponse{ID: p.ID, Name: p.Name, CreatedAt: p.CreatedAt}
}

func tagResponse(t domain.Tag) dto.TagResponse {
	return dto.TagResponse{ID: t.ID, Name: t.Name, CreatedAt: t.CreatedAt}
}

func tagResponses(tags []domain.Tag) []dto.TagResponse {
	out := make([]dto.TagResponse, 0, len(tags))
	for _, t := range tags {
		out = append(out, tagResponse(t))
	}
	return out
}

func ticketResponse(v *domain.TicketView) dto.TicketResponse {
	return dto.TicketResponse{
		ID:             v.ID,
		TicketCode:     v.TicketCode,
		Subject:        v.Subject,
		Description:    v.Description,
		RequesterEmail: v.RequesterEmail,
		RequesterName:  v.RequesterName,
		Status:         v.Status,
		PriorityID:     v.PriorityID,
		Priority:       priorityResponse(v.Priority),
		AssigneeID:     v.AssigneeID,
		Assignee:       userRefResponse(v.Assignee),
		CreatedByID:    v.CreatedByID,
		Creator:        userRefResponse(v.Creator),
		Tags:           tagResponses(v.Tags),
		CreatedAt:      v.CreatedAt,
		UpdatedAt:      v.UpdatedAt,
		ResolvedAt:     v.ResolvedAt,
		ClosedAt:       v.ClosedAt,
	}
}

func ticketListResponse(page *service.TicketPage) dto.TicketListResponse {
	rows := make([]dto.TicketSummaryResponse, 0, len(page.Tickets))
	for i := range page.Tickets {
		row := &page.Tickets[i]
		rows = append(rows, dto.TicketSummaryResponse{
			TicketResponse:  ticketResponse(&row.TicketView),
			CommentCount:    row.CommentCount,
			AttachmentCount: row.AttachmentCount,
		})
	}
	p := page.Pagination
	return dto.TicketListResponse{
		Tickets: rows,
		Pagination: dto.PaginationResponse{
			CurrentPage: p.CurrentPage,
			TotalPages:  p.TotalPages,
			TotalCount:  p.TotalCount,
			HasNext:     p.HasNext,
			HasPrev:     p.HasPrev,
			Limit:       p.Limit,
		},
	}
}

func ticketDetailResponse(d *domain.TicketDetail) dto.TicketDetailResponse {
	resp := dto.TicketDetailResponse{
		TicketResponse: ticketResponse(&d.TicketView),
		Comments:       make([]dto.CommentResponse, 0, len(d.Comments)),
		Attachments:    attachmentResponses(d.Attachments),
		TicketEvents:   make([]dto.TicketEventResponse, 0, len(d.Events)),
	}
	for i := range d.Comments {
		resp.Comments = append(resp.Comments, commentResponse(&d.Comments[i]))
	}
	for _, ev := range d.Events {
		resp.TicketEvents = append(resp.TicketEvents, dto.TicketEventResponse{
			ID:         ev.ID,
			TicketID:   ev.TicketID,
			UserID:     ev.UserID,
			User:       userRefResponse(ev.User),
			ChangeType: ev.ChangeType,
			OldValue:   ev.OldValue,
			NewValue:   ev.NewValue,
			CreatedAt:  ev.CreatedAt,
		})
	}
	return resp
}

func commentResponse(c *domain.Comment) dto.CommentResponse {
	return dto.CommentResponse{
		ID:         c.ID,
		TicketID:   c.TicketID,
		Content:    c.Content,
		IsInternal: c.IsInternal,
		AuthorID:   c.AuthorID,
		Author:     userRefResponse(c.Author),
		CreatedAt:  c.CreatedAt,
	}
}

func attachmentResponses(attachments []domain.Attachment) []dto.AttachmentResponse {
	out := make([]dto.AttachmentResponse, 0, len(attachments))
	for _, a := range attachments {
		out = append(out, dto.AttachmentResponse{
			ID:               a.ID,
			TicketID:         a.TicketID,
			OriginalFilename: a.OriginalFilename,
			StoredFilename:   a.StoredFilename,
			MimeType:         a.MimeType,
			Size:             a.Size,
			UploadedByID:     a.UploadedByID,
			UploadedBy:       userRefResponse(a.UploadedBy),
			UploadedAt:       a.UploadedAt,
		})
	}
	return out
}

func statsResponse(s *domain.TicketStats) dto.TicketStatsResponse {
	return dto.TicketStatsResponse{
		Total:      s.Total,
		ByStatus:   s.ByStatus,
		ByPriority: s.ByPriority,
		Recent:     s.Recent,
	}
}
