package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

type ticketRepo struct{ s *Store }

func (r *ticketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.data.tickets {
		if existing.TicketCode == ticket.TicketCode {
			return repository.ErrDuplicateTicketCode
		}
	}
	ticket.ID = r.s.data.nextID()
	r.s.data.tickets[ticket.ID] = *ticket
	return nil
}

func (r *ticketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.data.tickets[ticket.ID]
	if !ok {
		return repository.ErrNotFound
	}
	updated := *ticket
	updated.TicketCode = existing.TicketCode
	updated.CreatedByID = existing.CreatedByID
	updated.CreatedAt = existing.CreatedAt
	r.s.data.tickets[ticket.ID] = updated
	return nil
}

func (r *ticketRepo) GetByID(_ context.Context, id int64) (*domain.Ticket, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	ticket, ok := r.s.data.tickets[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &ticket, nil
}

func (r *ticketRepo) matching(filter repository.TicketFilter) []domain.Ticket {
	var out []domain.Ticket
	for _, t := range r.s.data.tickets {
		if matchesFilter(t, filter) {
			out = append(out, t)
		}
	}
	return out
}

func (r *ticketRepo) List(_ context.Context, filter repository.TicketFilter) ([]domain.TicketSummary, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rows := r.matching(filter)
	field := filter.SortBy
	if !field.Valid() {
		field = repository.SortCreatedAt
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if !filter.SortAsc {
			a, b = b, a
		}
		less, equal := lessBy(field, a, b)
		if equal {
			return a.ID < b.ID
		}
		return less
	})

	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= len(rows) {
		return nil, nil
	}
	rows = rows[offset:]
	if len(rows) > limit {
		rows = rows[:limit]
	}

	result := make([]domain.TicketSummary, 0, len(rows))
	for _, t := range rows {
		summary := domain.TicketSummary{TicketView: domain.TicketView{
			Ticket:   t,
			Priority: r.s.data.priorities[t.PriorityID],
			Creator:  r.s.userRef(t.CreatedByID),
		}}
		summary.Priority.ID = t.PriorityID
		if t.AssigneeID != nil {
			summary.Assignee = r.s.userRef(*t.AssigneeID)
		}
		for _, c := range r.s.data.comments {
			if c.TicketID == t.ID {
				summary.CommentCount++
			}
		}
		for _, a := range r.s.data.attachments {
			if a.TicketID == t.ID {
				summary.AttachmentCount++
			}
		}
		result = append(result, summary)
	}
	return result, nil
}

func (r *ticketRepo) Count(_ context.Context, filter repository.TicketFilter) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.matching(filter)), nil
}

func (r *ticketRepo) CountByStatus(_ context.Context, filter repository.TicketFilter) (map[domain.TicketStatus]int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := map[domain.TicketStatus]int{}
	for _, t := range r.matching(filter) {
		out[t.Status]++
	}
	return out, nil
}

func (r *ticketRepo) CountByPriority(_ context.Context, filter repository.TicketFilter) (map[int64]int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := map[int64]int{}
	for _, t := range r.matching(filter) {
		out[t.PriorityID]++
	}
	return out, nil
}

type commentRepo struct{ s *Store }

func (r *commentRepo) Create(_ context.Context, comment *domain.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	comment.ID = r.s.data.nextID()
	stored := *comment
	stored.Author = nil
	r.s.data.comments[comment.ID] = stored
	return nil
}

func (r *commentRepo) ListByTicket(_ context.Context, ticketID int64) ([]domain.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []domain.Comment
	for _, c := range r.s.data.comments {
		if c.TicketID == ticketID {
			c.Author = r.s.userRef(c.AuthorID)
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

type attachmentRepo struct{ s *Store }

func (r *attachmentRepo) Create(_ context.Context, attachment *domain.Attachment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	attachment.ID = r.s.data.nextID()
	stored := *attachment
	stored.UploadedBy = nil
	r.s.data.attachments[attachment.ID] = stored
	return nil
}

func (r *attachmentRepo) GetByID(_ context.Context, id int64) (*domain.Attachment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	attachment, ok := r.s.data.attachments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &attachment, nil
}

func (r *attachmentRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.attachments[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.data.attachments, id)
	return nil
}

func (r *attachmentRepo) ListByTicket(_ context.Context, ticketID int64) ([]domain.Attachment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []domain.Attachment
	for _, a := range r.s.data.attachments {
		if a.TicketID == ticketID {
			a.UploadedBy = r.s.userRef(a.UploadedByID)
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UploadedAt.Equal(out[j].UploadedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].UploadedAt.After(out[j].UploadedAt)
	})
	return out, nil
}

type eventRepo struct{ s *Store }

func (r *eventRepo) Create(_ context.Context, event *domain.TicketEvent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.insert(event)
	return nil
}

func (r *eventRepo) CreateMany(_ context.Context, events []domain.TicketEvent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range events {
		r.insert(&events[i])
	}
	return nil
}

func (r *eventRepo) insert(event *domain.TicketEvent) {
	event.ID = r.s.data.nextID()
	stored := *event
	stored.User = nil
	r.s.data.events[event.ID] = stored
}

func (r *eventRepo) ListByTicket(_ context.Context, ticketID int64) ([]domain.TicketEvent, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []domain.TicketEvent
	for _, e := range r.s.data.events {
		if e.TicketID == ticketID {
			e.User = r.s.userRef(e.UserID)
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

type tagRepo struct{ s *Store }

func (r *tagRepo) List(_ context.Context) ([]domain.Tag, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]domain.Tag, 0, len(r.s.data.tags))
	for _, tag := range r.s.data.tags {
		out = append(out, tag)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *tagRepo) Create(_ context.Context, tag *domain.Tag) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.data.tags {
		if existing.Name == tag.Name {
			return repository.ErrDuplicateName
		}
	}
	tag.ID = r.s.data.nextID()
	r.s.data.tags[tag.ID] = *tag
	return nil
}

func (r *tagRepo) GetByIDs(_ context.Context, ids []int64) ([]domain.Tag, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	seen := map[int64]bool{}
	var out []domain.Tag
	for _, id := range ids {
		if tag, ok := r.s.data.tags[id]; ok && !seen[id] {
			seen[id] = true
			out = append(out, tag)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *tagRepo) ListByTicket(_ context.Context, ticketID int64) ([]domain.Tag, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.tagsFor(ticketID), nil
}

func (r *tagRepo) ListForTickets(_ context.Context, ticketIDs []int64) (map[int64][]domain.Tag, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make(map[int64][]domain.Tag, len(ticketIDs))
	for _, id := range ticketIDs {
		if tags := r.s.tagsFor(id); len(tags) > 0 {
			out[id] = tags
		}
	}
	return out, nil
}

func (r *tagRepo) AddToTicket(_ context.Context, ticketID int64, tagIDs []int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if len(tagIDs) == 0 {
		return nil
	}
	set := r.s.data.ticketTags[ticketID]
	if set == nil {
		set = map[int64]struct{}{}
		r.s.data.ticketTags[ticketID] = set
	}
	for _, id := range tagIDs {
		if _, ok := r.s.data.tags[id]; !ok {
			return repository.ErrInUse
		}
		set[id] = struct{}{}
	}
	return nil
}

func (r *tagRepo) ClearTicket(_ context.Context, ticketID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.data.ticketTags, ticketID)
	return nil
}

type priorityRepo struct{ s *Store }

func (r *priorityRepo) List(_ context.Context) ([]domain.Priority, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]domain.Priority, 0, len(r.s.data.priorities))
	for _, p := range r.s.data.priorities {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *priorityRepo) GetByID(_ context.Context, id int64) (*domain.Priority, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.data.priorities[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r *priorityRepo) nameTaken(name string, except int64) bool {
	for _, p := range r.s.data.priorities {
		if p.ID != except && p.Name == name {
			return true
		}
	}
	return false
}

func (r *priorityRepo) Create(_ context.Context, priority *domain.Priority) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.nameTaken(priority.Name, 0) {
		return repository.ErrDuplicateName
	}
	priority.ID = r.s.data.nextID()
	r.s.data.priorities[priority.ID] = *priority
	return nil
}

func (r *priorityRepo) Update(_ context.Context, priority *domain.Priority) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.data.priorities[priority.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if r.nameTaken(priority.Name, priority.ID) {
		return repository.ErrDuplicateName
	}
	existing.Name = priority.Name
	r.s.data.priorities[priority.ID] = existing
	return nil
}

func (r *priorityRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.priorities[id]; !ok {
		return repository.ErrNotFound
	}
	for _, t := range r.s.data.tickets {
		if t.PriorityID == id {
			return repository.ErrInUse
		}
	}
	delete(r.s.data.priorities, id)
	return nil
}

type userRepo struct{ s *Store }

func (r *userRepo) Create(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.data.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return repository.ErrDuplicateName
		}
	}
	user.ID = r.s.data.nextID()
	r.s.data.users[user.ID] = *user
	return nil
}

func (r *userRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	user, ok := r.s.data.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &user, nil
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, user := range r.s.data.users {
		if strings.EqualFold(user.Email, email) {
			return &user, nil
		}
	}
	return nil, repository.ErrNotFound
}
