package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

const (
	defaultPageLimit   = 10
	maxPageLimit       = 100
	defaultCodeRetries = 3
	defaultExportLimit = 5000
	recentWindow       = 7 * 24 * time.Hour
)

// StatsCache stores ticket statistics per visibility scope. Implementations
// must tolerate their backend being unavailable.
type StatsCache interface {
	Get(ctx context.Context, scope string) (*domain.TicketStats, bool)
	Set(ctx context.Context, scope string, stats domain.TicketStats)
	Invalidate(ctx context.Context)
}

// TicketService coordinates ticket workflows.
type TicketService struct {
	store        repository.Store
	codes        *CodeGenerator
	dispatcher   events.Dispatcher
	stats        StatsCache
	metrics      *observability.Metrics
	logger       *zap.Logger
	now          func() time.Time
	codeAttempts int
	exportLimit  int
}

// TicketDependencies bundles collaborators for ticket service.
type TicketDependencies struct {
	Store        repository.Store
	Codes        *CodeGenerator
	Dispatcher   events.Dispatcher
	StatsCache   StatsCache
	Metrics      *observability.Metrics
	Logger       *zap.Logger
	Clock        func() time.Time
	CodeAttempts int
	ExportLimit  int
}

// TicketQuery describes listing parameters as received from callers.
type TicketQuery struct {
	Status      *domain.TicketStatus
	PriorityID  *int64
	AssigneeID  *int64
	CreatedByID *int64
	Search      string
	SortBy      string
	SortOrder   string
	Page        int
	Limit       int
}

// Pagination describes a page of results.
type Pagination struct {
	CurrentPage int
	TotalPages  int
	TotalCount  int
	HasNext     bool
	HasPrev     bool
	Limit       int
}

// TicketPage is one page of ticket summaries.
type TicketPage struct {
	Tickets    []domain.TicketSummary
	Pagination Pagination
}

// CreateTicketInput describes ticket creation payload.
type CreateTicketInput struct {
	Subject        string
	Description    string
	RequesterEmail string
	RequesterName  string
	PriorityID     int64
	AssigneeID     *int64
	TagIDs         []int64
	ImageURLs      []string
}

// AssigneeChange carries a requested assignee; a nil ID unassigns.
type AssigneeChange struct {
	ID *int64
}

// UpdateTicketInput is a partial update. Nil fields are left unchanged.
type UpdateTicketInput struct {
	Subject        *string
	Description    *string
	RequesterEmail *string
	RequesterName  *string
	Status         *domain.TicketStatus
	PriorityID     *int64
	Assignee       *AssigneeChange
	TagIDs         *[]int64
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	s := &TicketService{
		store:        deps.Store,
		codes:        deps.Codes,
		dispatcher:   deps.Dispatcher,
		stats:        deps.StatsCache,
		metrics:      deps.Metrics,
		logger:       deps.Logger,
		now:          deps.Clock,
		codeAttempts: deps.CodeAttempts,
		exportLimit:  deps.ExportLimit,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.codes == nil {
		s.codes = NewCodeGenerator(s.now, nil)
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.codeAttempts <= 0 {
		s.codeAttempts = defaultCodeRetries
	}
	if s.exportLimit <= 0 {
		s.exportLimit = defaultExportLimit
	}
	return s
}

// ListTickets returns the page of tickets visible to actor.
func (s *TicketService) ListTickets(ctx context.Context, actor domain.Actor, query TicketQuery) (*TicketPage, error) {
	if !auth.CanList(actor) {
		return nil, apperrors.NewForbidden("role cannot list tickets")
	}
	filter, err := buildFilter(query)
	if err != nil {
		return nil, err
	}
	filter = auth.ScopeFilter(actor, filter)

	page := query.Page
	if page <= 0 {
		page = 1
	}
	limit := query.Limit
	switch {
	case limit <= 0:
		limit = defaultPageLimit
	case limit > maxPageLimit:
		limit = maxPageLimit
	}
	filter.Limit = limit
	filter.Offset = (page - 1) * limit

	repos := s.store.Repos()
	total, err := repos.Tickets.Count(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	rows, err := repos.Tickets.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := attachTags(ctx, repos, rows); err != nil {
		return nil, err
	}

	totalPages := (total + limit - 1) / limit
	return &TicketPage{
		Tickets: rows,
		Pagination: Pagination{
			CurrentPage: page,
			TotalPages:  totalPages,
			TotalCount:  total,
			HasNext:     page < totalPages,
			HasPrev:     page > 1,
			Limit:       limit,
		},
	}, nil
}

// ExportTickets returns every ticket matching query up to the export cap,
// ignoring paging.
func (s *TicketService) ExportTickets(ctx context.Context, actor domain.Actor, query TicketQuery) ([]domain.TicketSummary, error) {
	if !auth.CanList(actor) {
		return nil, apperrors.NewForbidden("role cannot list tickets")
	}
	filter, err := buildFilter(query)
	if err != nil {
		return nil, err
	}
	filter = auth.ScopeFilter(actor, filter)
	filter.Limit = s.exportLimit

	repos := s.store.Repos()
	rows, err := repos.Tickets.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := attachTags(ctx, repos, rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// GetTicket returns the full ticket. Absence is reported before access.
func (s *TicketService) GetTicket(ctx context.Context, actor domain.Actor, id int64) (*domain.TicketDetail, error) {
	repos := s.store.Repos()
	ticket, err := repos.Tickets.GetByID(ctx, id)
	if err != nil {
		return nil, mapStoreError(err, "ticket")
	}
	if !auth.CanRead(actor, ticket) {
		return nil, apperrors.NewForbidden("access denied")
	}

	view, err := loadView(ctx, repos, ticket)
	if err != nil {
		return nil, err
	}
	detail := &domain.TicketDetail{TicketView: *view}
	if detail.Comments, err = repos.Comments.ListByTicket(ctx, id); err != nil {
		return nil, apperrors.MapError(err)
	}
	if actor.Role == domain.RoleCustomer {
		detail.Comments = publicComments(detail.Comments)
	}
	if detail.Attachments, err = repos.Attachments.ListByTicket(ctx, id); err != nil {
		return nil, apperrors.MapError(err)
	}
	if detail.Events, err = repos.Events.ListByTicket(ctx, id); err != nil {
		return nil, apperrors.MapError(err)
	}
	return detail, nil
}

// CreateTicket opens a ticket with its creation event, tags and pre-uploaded
// images in one transaction.
func (s *TicketService) CreateTicket(ctx context.Context, actor domain.Actor, input CreateTicketInput) (*domain.TicketView, error) {
	if !auth.CanCreate(actor) {
		return nil, apperrors.NewForbidden("role cannot create tickets")
	}

	input.Subject = strings.TrimSpace(input.Subject)
	input.Description = strings.TrimSpace(input.Description)
	input.RequesterEmail = strings.TrimSpace(input.RequesterEmail)
	input.RequesterName = strings.TrimSpace(input.RequesterName)
	if err := requireText(
		textField{"subject", &input.Subject},
		textField{"requester_email", &input.RequesterEmail},
		textField{"requester_name", &input.RequesterName},
	); err != nil {
		return nil, err
	}

	repos := s.store.Repos()
	if err := s.ensurePriority(ctx, repos, input.PriorityID); err != nil {
		return nil, err
	}
	if input.AssigneeID != nil {
		if err := s.ensureAgent(ctx, repos, *input.AssigneeID); err != nil {
			return nil, err
		}
	}
	tagIDs := dedupeIDs(input.TagIDs)
	if err := s.ensureTags(ctx, repos, tagIDs); err != nil {
		return nil, err
	}
	imageURLs := DedupeURLs(input.ImageURLs)

	status := domain.TicketStatusNew
	if input.AssigneeID != nil {
		status = domain.TicketStatusOpen
	}

	var (
		ticket  domain.Ticket
		created []domain.TicketEvent
	)
	for attempt := 1; ; attempt++ {
		now := s.now()
		ticket = domain.Ticket{
			TicketCode:     s.codes.Generate(),
			Subject:        input.Subject,
			Description:    input.Description,
			RequesterEmail: input.RequesterEmail,
			RequesterName:  input.RequesterName,
			Status:         status,
			PriorityID:     input.PriorityID,
			AssigneeID:     input.AssigneeID,
			CreatedByID:    actor.ID,
			CreatedAt:      now,
			UpdatedAt:      now,
		}

		err := s.store.WithinTx(ctx, func(tx repository.Repositories) error {
			if err := tx.Tickets.Create(ctx, &ticket); err != nil {
				return err
			}
			created = []domain.TicketEvent{
				domain.TicketCreated(ticket.Subject, ticket.Status).For(ticket.ID, actor.ID, now),
			}
			if err := tx.Events.CreateMany(ctx, created); err != nil {
				return err
			}
			if err := tx.Tags.AddToTicket(ctx, ticket.ID, tagIDs); err != nil {
				return err
			}
			for _, u := range imageURLs {
				attachment := &domain.Attachment{
					TicketID:         ticket.ID,
					OriginalFilename: FilenameFromURL(u),
					StoredFilename:   u,
					MimeType:         "image",
					Size:             0,
					UploadedByID:     actor.ID,
					UploadedAt:       now,
				}
				if err := tx.Attachments.Create(ctx, attachment); err != nil {
					return err
				}
			}
			return nil
		})
		if err == nil {
			break
		}
		if errors.Is(err, repository.ErrDuplicateTicketCode) && attempt < s.codeAttempts {
			s.logger.Warn("ticket code collision; regenerating",
				zap.String("ticket_code", ticket.TicketCode),
				zap.Int("attempt", attempt))
			continue
		}
		return nil, mapStoreError(err, "ticket")
	}

	s.metrics.TicketCreated()
	s.metrics.TicketEvents(created)
	s.invalidateStats(ctx)
	s.publish(ctx, actor, &ticket, events.EventTicketCreated, events.TicketCreatedPayload{
		Status:     ticket.Status,
		PriorityID: ticket.PriorityID,
	})

	return loadView(ctx, s.store.Repos(), &ticket)
}

// UpdateTicket applies a partial update. Every precondition is checked before
// any write; the ticket row, its events and its tag set change together.
func (s *TicketService) UpdateTicket(ctx context.Context, actor domain.Actor, id int64, input UpdateTicketInput) (*domain.TicketView, error) {
	repos := s.store.Repos()
	current, err := repos.Tickets.GetByID(ctx, id)
	if err != nil {
		return nil, mapStoreError(err, "ticket")
	}
	if !auth.CanMutate(actor, current) {
		return nil, apperrors.NewForbidden("access denied")
	}
	if input.Assignee != nil && !auth.CanReassign(actor) {
		return nil, apperrors.NewForbidden("only admins can change the assignee")
	}

	if err := validateUpdateText(&input); err != nil {
		return nil, err
	}
	if input.Status != nil && !input.Status.Valid() {
		return nil, apperrors.NewBadRequest("invalid status", map[string]any{"status": *input.Status})
	}
	if input.PriorityID != nil {
		if err := s.ensurePriority(ctx, repos, *input.PriorityID); err != nil {
			return nil, err
		}
	}
	if input.Assignee != nil && input.Assignee.ID != nil {
		if err := s.ensureAgent(ctx, repos, *input.Assignee.ID); err != nil {
			return nil, err
		}
	}
	var tagIDs []int64
	if input.TagIDs != nil {
		tagIDs = dedupeIDs(*input.TagIDs)
		if err := s.ensureTags(ctx, repos, tagIDs); err != nil {
			return nil, err
		}
	}

	now := s.now()
	next, changes := applyUpdate(*current, input, now)
	changed := make([]domain.TicketEvent, 0, len(changes))
	for _, c := range changes {
		changed = append(changed, c.For(id, actor.ID, now))
	}

	err = s.store.WithinTx(ctx, func(tx repository.Repositories) error {
		if err := tx.Tickets.Update(ctx, &next); err != nil {
			return err
		}
		if err := tx.Events.CreateMany(ctx, changed); err != nil {
			return err
		}
		if input.TagIDs != nil {
			if err := tx.Tags.ClearTicket(ctx, id); err != nil {
				return err
			}
			if err := tx.Tags.AddToTicket(ctx, id, tagIDs); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, mapStoreError(err, "ticket")
	}

	s.metrics.TicketEvents(changed)
	s.invalidateStats(ctx)
	if next.Status != current.Status {
		s.publish(ctx, actor, &next, events.EventTicketStatusChanged, events.TicketStatusChangedPayload{
			OldStatus: current.Status,
			NewStatus: next.Status,
		})
	}
	if !sameID(current.AssigneeID, next.AssigneeID) {
		s.publish(ctx, actor, &next, events.EventTicketAssigned, events.TicketAssignedPayload{
			OldAssigneeID: current.AssigneeID,
			NewAssigneeID: next.AssigneeID,
		})
	}
	if next.PriorityID != current.PriorityID {
		s.publish(ctx, actor, &next, events.EventTicketPriorityChanged, events.TicketPriorityChangedPayload{
			OldPriorityID: current.PriorityID,
			NewPriorityID: next.PriorityID,
		})
	}

	return loadView(ctx, s.store.Repos(), &next)
}

// applyUpdate merges input into t and returns the new ticket with one event
// change per dimension whose value actually differs.
func applyUpdate(t domain.Ticket, input UpdateTicketInput, now time.Time) (domain.Ticket, []domain.EventChange) {
	var changes []domain.EventChange
	prev := t

	if input.Subject != nil {
		t.Subject = *input.Subject
	}
	if input.Description != nil {
		t.Description = *input.Description
	}
	if input.RequesterEmail != nil {
		t.RequesterEmail = *input.RequesterEmail
	}
	if input.RequesterName != nil {
		t.RequesterName = *input.RequesterName
	}

	if input.Status != nil {
		next := *input.Status
		switch {
		case next == domain.TicketStatusResolved && prev.Status != domain.TicketStatusResolved:
			t.ResolvedAt = &now
		case prev.Status == domain.TicketStatusResolved && next != domain.TicketStatusResolved:
			t.ResolvedAt = nil
		}
		switch {
		case next == domain.TicketStatusClosed && prev.Status != domain.TicketStatusClosed:
			t.ClosedAt = &now
		case prev.Status == domain.TicketStatusClosed && next != domain.TicketStatusClosed:
			t.ClosedAt = nil
		}
		t.Status = next
		if next != prev.Status {
			changes = append(changes, domain.StatusChanged(prev.Status, next))
		}
	}

	if input.Assignee != nil {
		t.AssigneeID = input.Assignee.ID
		if !sameID(prev.AssigneeID, t.AssigneeID) {
			changes = append(changes, domain.AssigneeChanged(prev.AssigneeID, t.AssigneeID))
		}
	}

	if input.PriorityID != nil {
		t.PriorityID = *input.PriorityID
		if t.PriorityID != prev.PriorityID {
			changes = append(changes, domain.PriorityChanged(prev.PriorityID, t.PriorityID))
		}
	}

	t.UpdatedAt = now
	return t, changes
}

// AddComment appends a comment and its audit event.
func (s *TicketService) AddComment(ctx context.Context, actor domain.Actor, id int64, content string, internal bool) (*domain.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.NewValidationError("content is required", map[string]any{"field": "content"})
	}

	repos := s.store.Repos()
	ticket, err := repos.Tickets.GetByID(ctx, id)
	if err != nil {
		return nil, mapStoreError(err, "ticket")
	}
	if internal && actor.Role == domain.RoleCustomer {
		return nil, apperrors.NewForbidden("customers cannot add internal notes")
	}
	if !auth.CanComment(actor, ticket, internal) {
		return nil, apperrors.NewForbidden("access denied")
	}

	now := s.now()
	comment := &domain.Comment{
		TicketID:   id,
		Content:    content,
		IsInternal: internal,
		AuthorID:   actor.ID,
		CreatedAt:  now,
	}
	added := []domain.TicketEvent{domain.CommentAdded(content).For(id, actor.ID, now)}

	err = s.store.WithinTx(ctx, func(tx repository.Repositories) error {
		if err := tx.Comments.Create(ctx, comment); err != nil {
			return err
		}
		return tx.Events.CreateMany(ctx, added)
	})
	if err != nil {
		return nil, mapStoreError(err, "ticket")
	}

	if author, err := repos.Users.GetByID(ctx, actor.ID); err == nil {
		ref := author.Ref()
		comment.Author = &ref
	}

	s.metrics.TicketEvents(added)
	s.publish(ctx, actor, ticket, events.EventTicketCommentAdded, events.TicketCommentAddedPayload{
		CommentID:  comment.ID,
		IsInternal: internal,
		Preview:    *added[0].NewValue,
	})
	return comment, nil
}

// TicketStats counts the tickets visible to actor.
func (s *TicketService) TicketStats(ctx context.Context, actor domain.Actor) (*domain.TicketStats, error) {
	if !auth.CanList(actor) {
		return nil, apperrors.NewForbidden("role cannot read ticket stats")
	}
	scope := statsScope(actor)
	if s.stats != nil {
		if cached, ok := s.stats.Get(ctx, scope); ok {
			return cached, nil
		}
	}

	repos := s.store.Repos()
	filter := auth.ScopeFilter(actor, repository.TicketFilter{})

	byStatus, err := repos.Tickets.CountByStatus(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	byPriority, err := repos.Tickets.CountByPriority(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	recentFrom := s.now().Add(-recentWindow)
	recentFilter := filter
	recentFilter.CreatedFrom = &recentFrom
	recent, err := repos.Tickets.CountByStatus(ctx, recentFilter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	stats := domain.TicketStats{
		ByStatus:   withAllStatuses(byStatus),
		ByPriority: byPriority,
		Recent:     withAllStatuses(recent),
	}
	for _, n := range byStatus {
		stats.Total += n
	}

	if s.stats != nil {
		s.stats.Set(ctx, scope, stats)
	}
	return &stats, nil
}

// publicComments drops internal notes.
func publicComments(comments []domain.Comment) []domain.Comment {
	out := comments[:0]
	for _, c := range comments {
		if !c.IsInternal {
			out = append(out, c)
		}
	}
	return out
}

func statsScope(actor domain.Actor) string {
	if actor.Role == domain.RoleAdmin {
		return string(domain.RoleAdmin)
	}
	return fmt.Sprintf("%s:%d", actor.Role, actor.ID)
}

func withAllStatuses(counts map[domain.TicketStatus]int) map[domain.TicketStatus]int {
	out := make(map[domain.TicketStatus]int, len(domain.TicketStatuses))
	for _, st := range domain.TicketStatuses {
		out[st] = counts[st]
	}
	return out
}

func buildFilter(query TicketQuery) (repository.TicketFilter, error) {
	filter := repository.TicketFilter{
		Status:      query.Status,
		PriorityID:  query.PriorityID,
		AssigneeID:  query.AssigneeID,
		CreatedByID: query.CreatedByID,
		Search:      strings.TrimSpace(query.Search),
		SortBy:      repository.SortCreatedAt,
	}
	if query.Status != nil && !query.Status.Valid() {
		return filter, apperrors.NewBadRequest("invalid status", map[string]any{"status": *query.Status})
	}
	if query.SortBy != "" {
		field := repository.SortField(query.SortBy)
		if !field.Valid() {
			return filter, apperrors.NewBadRequest("invalid sort_by", map[string]any{"sort_by": query.SortBy})
		}
		filter.SortBy = field
	}
	switch strings.ToLower(query.SortOrder) {
	case "", "desc":
	case "asc":
		filter.SortAsc = true
	default:
		return filter, apperrors.NewBadRequest("invalid sort_order", map[string]any{"sort_order": query.SortOrder})
	}
	return filter, nil
}

func (s *TicketService) ensurePriority(ctx context.Context, repos repository.Repositories, id int64) error {
	if _, err := repos.Priorities.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewBadRequest("invalid priority", map[string]any{"priority_id": id})
		}
		return apperrors.MapError(err)
	}
	return nil
}

func (s *TicketService) ensureAgent(ctx context.Context, repos repository.Repositories, id int64) error {
	user, err := repos.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewBadRequest("invalid assignee", map[string]any{"assignee_id": id})
		}
		return apperrors.MapError(err)
	}
	if user.Role != domain.RoleAgent {
		return apperrors.NewBadRequest("assignee must be an agent", map[string]any{"assignee_id": id})
	}
	return nil
}

func (s *TicketService) ensureTags(ctx context.Context, repos repository.Repositories, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	tags, err := repos.Tags.GetByIDs(ctx, ids)
	if err != nil {
		return apperrors.MapError(err)
	}
	if len(tags) == len(ids) {
		return nil
	}
	known := make(map[int64]struct{}, len(tags))
	for _, tag := range tags {
		known[tag.ID] = struct{}{}
	}
	missing := make([]int64, 0, len(ids)-len(tags))
	for _, id := range ids {
		if _, ok := known[id]; !ok {
			missing = append(missing, id)
		}
	}
	return apperrors.NewBadRequest("invalid tags", map[string]any{"tag_ids": missing})
}

type textField struct {
	name  string
	value *string
}

func requireText(fields ...textField) error {
	for _, f := range fields {
		if f.value != nil && *f.value == "" {
			return apperrors.NewValidationError(f.name+" is required", map[string]any{"field": f.name})
		}
	}
	return nil
}

func validateUpdateText(input *UpdateTicketInput) error {
	fields := []textField{
		{"subject", input.Subject},
		{"requester_email", input.RequesterEmail},
		{"requester_name", input.RequesterName},
		{"description", input.Description},
	}
	for _, f := range fields {
		if f.value != nil {
			*f.value = strings.TrimSpace(*f.value)
		}
	}
	return requireText(fields[:3]...)
}

// loadView resolves the priority, people and tags referenced by ticket.
func loadView(ctx context.Context, repos repository.Repositories, ticket *domain.Ticket) (*domain.TicketView, error) {
	view := &domain.TicketView{Ticket: *ticket, Priority: domain.Priority{ID: ticket.PriorityID}}

	priority, err := repos.Priorities.GetByID(ctx, ticket.PriorityID)
	switch {
	case err == nil:
		view.Priority = *priority
	case !errors.Is(err, repository.ErrNotFound):
		return nil, apperrors.MapError(err)
	}

	if view.Creator, err = userRef(ctx, repos, ticket.CreatedByID); err != nil {
		return nil, err
	}
	if ticket.AssigneeID != nil {
		if view.Assignee, err = userRef(ctx, repos, *ticket.AssigneeID); err != nil {
			return nil, err
		}
	}

	if view.Tags, err = repos.Tags.ListByTicket(ctx, ticket.ID); err != nil {
		return nil, apperrors.MapError(err)
	}
	return view, nil
}

func userRef(ctx context.Context, repos repository.Repositories, id int64) (*domain.UserRef, error) {
	user, err := repos.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &domain.UserRef{ID: id}, nil
		}
		return nil, apperrors.MapError(err)
	}
	ref := user.Ref()
	return &ref, nil
}

func attachTags(ctx context.Context, repos repository.Repositories, rows []domain.TicketSummary) error {
	if len(rows) == 0 {
		return nil
	}
	ids := make([]int64, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}
	tags, err := repos.Tags.ListForTickets(ctx, ids)
	if err != nil {
		return apperrors.MapError(err)
	}
	for i := range rows {
		rows[i].Tags = tags[rows[i].ID]
	}
	return nil
}

func (s *TicketService) invalidateStats(ctx context.Context) {
	if s.stats != nil {
		s.stats.Invalidate(ctx)
	}
}

func (s *TicketService) publish(ctx context.Context, actor domain.Actor, ticket *domain.Ticket, eventType events.EventType, payload any) {
	publishEvent(ctx, s.dispatcher, actor, ticket, eventType, payload, s.now())
}

func publishEvent(ctx context.Context, dispatcher events.Dispatcher, actor domain.Actor, ticket *domain.Ticket, eventType events.EventType, payload any, at time.Time) {
	if dispatcher == nil {
		return
	}
	_ = dispatcher.Publish(ctx, events.Event{
		ID:   uuid.NewString(),
		Type: eventType,
		Ticket: events.TicketRef{
			ID:             ticket.ID,
			Code:           ticket.TicketCode,
			Subject:        ticket.Subject,
			RequesterEmail: ticket.RequesterEmail,
			RequesterName:  ticket.RequesterName,
			AssigneeID:     ticket.AssigneeID,
		},
		Actor:     actor,
		Timestamp: at,
		Payload:   payload,
	})
}

func sameID(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
