// Package memory is an in-process repository.Store used for local runs
// without Postgres and by service tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

var _ repository.Store = (*Store)(nil)

// Store keeps all rows in maps. Transactions are serialized and roll back by
// restoring a snapshot taken when they began.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex
	data *state
}

type state struct {
	seq         int64
	users       map[int64]domain.User
	priorities  map[int64]domain.Priority
	tags        map[int64]domain.Tag
	tickets     map[int64]domain.Ticket
	ticketTags  map[int64]map[int64]struct{}
	comments    map[int64]domain.Comment
	attachments map[int64]domain.Attachment
	events      map[int64]domain.TicketEvent
}

// New returns an empty store.
func New() *Store {
	return &Store{data: newState()}
}

func newState() *state {
	return &state{
		users:       map[int64]domain.User{},
		priorities:  map[int64]domain.Priority{},
		tags:        map[int64]domain.Tag{},
		tickets:     map[int64]domain.Ticket{},
		ticketTags:  map[int64]map[int64]struct{}{},
		comments:    map[int64]domain.Comment{},
		attachments: map[int64]domain.Attachment{},
		events:      map[int64]domain.TicketEvent{},
	}
}

func (st *state) nextID() int64 {
	st.seq++
	return st.seq
}

func (st *state) clone() *state {
	out := newState()
	out.seq = st.seq
	copyMap(out.users, st.users)
	copyMap(out.priorities, st.priorities)
	copyMap(out.tags, st.tags)
	copyMap(out.tickets, st.tickets)
	copyMap(out.comments, st.comments)
	copyMap(out.attachments, st.attachments)
	copyMap(out.events, st.events)
	for ticketID, set := range st.ticketTags {
		dup := make(map[int64]struct{}, len(set))
		copyMap(dup, set)
		out.ticketTags[ticketID] = dup
	}
	return out
}

func copyMap[K comparable, V any](dst, src map[K]V) {
	for k, v := range src {
		dst[k] = v
	}
}

// Repos returns repositories operating directly on the store.
func (s *Store) Repos() repository.Repositories {
	return repository.Repositories{
		Tickets:     &ticketRepo{s},
		Comments:    &commentRepo{s},
		Attachments: &attachmentRepo{s},
		Events:      &eventRepo{s},
		Tags:        &tagRepo{s},
		Priorities:  &priorityRepo{s},
		Users:       &userRepo{s},
	}
}

// WithinTx runs fn and discards every write it made if it returns an error.
func (s *Store) WithinTx(ctx context.Context, fn func(repository.Repositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snapshot := s.data.clone()
	s.mu.RUnlock()

	if err := fn(s.Repos()); err != nil {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *Store) userRef(id int64) *domain.UserRef {
	user, ok := s.data.users[id]
	if !ok {
		return &domain.UserRef{ID: id}
	}
	ref := user.Ref()
	return &ref
}

func (s *Store) tagsFor(ticketID int64) []domain.Tag {
	set := s.data.ticketTags[ticketID]
	if len(set) == 0 {
		return nil
	}
	tags := make([]domain.Tag, 0, len(set))
	for id := range set {
		if tag, ok := s.data.tags[id]; ok {
			tags = append(tags, tag)
		}
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })
	return tags
}

func matchesFilter(t domain.Ticket, f repository.TicketFilter) bool {
	if f.Status != nil && t.Status != *f.Status {
		return false
	}
	if f.PriorityID != nil && t.PriorityID != *f.PriorityID {
		return false
	}
	if f.AssigneeID != nil && (t.AssigneeID == nil || *t.AssigneeID != *f.AssigneeID) {
		return false
	}
	if f.CreatedByID != nil && t.CreatedByID != *f.CreatedByID {
		return false
	}
	if f.CreatedFrom != nil && t.CreatedAt.Before(*f.CreatedFrom) {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		for _, field := range []string{t.Subject, t.Description, t.TicketCode, t.RequesterName, t.RequesterEmail} {
			if strings.Contains(strings.ToLower(field), q) {
				return true
			}
		}
		return false
	}
	return true
}

func lessBy(field repository.SortField, a, b domain.Ticket) (less, equal bool) {
	switch field {
	case repository.SortUpdatedAt:
		return a.UpdatedAt.Before(b.UpdatedAt), a.UpdatedAt.Equal(b.UpdatedAt)
	case repository.SortSubject:
		return a.Subject < b.Subject, a.Subject == b.Subject
	case repository.SortStatus:
		return a.Status < b.Status, a.Status == b.Status
	case repository.SortPriorityID:
		return a.PriorityID < b.PriorityID, a.PriorityID == b.PriorityID
	case repository.SortTicketCode:
		return a.TicketCode < b.TicketCode, a.TicketCode == b.TicketCode
	default:
		return a.CreatedAt.Before(b.CreatedAt), a.CreatedAt.Equal(b.CreatedAt)
	}
}
