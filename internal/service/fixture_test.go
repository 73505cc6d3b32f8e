package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository/memory"
	"github.com/spec-kit/helpdesk-service/internal/storage"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

var fixedNow = time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC)

type fixture struct {
	store    *memory.Store
	tickets  *TicketService
	recorder *recordingDispatcher
	clock    *testClock

	admin    domain.User
	agent    domain.User
	other    domain.User
	customer domain.User

	medium domain.Priority
	high   domain.Priority
	bug    domain.Tag
	vpn    domain.Tag
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	f := &fixture{
		store:    memory.New(),
		recorder: &recordingDispatcher{},
		clock:    &testClock{now: fixedNow},
	}
	repos := f.store.Repos()

	users := []*domain.User{&f.admin, &f.agent, &f.other, &f.customer}
	roles := []domain.Role{domain.RoleAdmin, domain.RoleAgent, domain.RoleAgent, domain.RoleCustomer}
	for i, u := range users {
		*u = domain.User{
			FirstName: string(roles[i]),
			LastName:  fmt.Sprintf("User%d", i),
			Email:     fmt.Sprintf("user%d@example.com", i),
			Role:      roles[i],
		}
		require.NoError(t, repos.Users.Create(ctx, u))
	}

	f.medium = domain.Priority{Name: "Medium"}
	f.high = domain.Priority{Name: "High"}
	require.NoError(t, repos.Priorities.Create(ctx, &f.medium))
	require.NoError(t, repos.Priorities.Create(ctx, &f.high))

	f.bug = domain.Tag{Name: "bug"}
	f.vpn = domain.Tag{Name: "vpn"}
	require.NoError(t, repos.Tags.Create(ctx, &f.bug))
	require.NoError(t, repos.Tags.Create(ctx, &f.vpn))

	f.tickets = NewTicketService(TicketDependencies{
		Store:      f.store,
		Codes:      NewCodeGenerator(f.clock.Now, rand.NewSource(7)),
		Dispatcher: f.recorder,
		Clock:      f.clock.Now,
	})
	return f
}

func (f *fixture) createTicket(t *testing.T, actor domain.Actor, mutate ...func(*CreateTicketInput)) *domain.TicketView {
	t.Helper()
	input := CreateTicketInput{
		Subject:        "Printer is jammed",
		Description:    "Paper stuck in tray 2",
		RequesterEmail: "jane@example.com",
		RequesterName:  "Jane Doe",
		PriorityID:     f.medium.ID,
	}
	for _, m := range mutate {
		m(&input)
	}
	view, err := f.tickets.CreateTicket(context.Background(), actor, input)
	require.NoError(t, err)
	return view
}

func (f *fixture) events(t *testing.T, ticketID int64) []domain.TicketEvent {
	t.Helper()
	evs, err := f.store.Repos().Events.ListByTicket(context.Background(), ticketID)
	require.NoError(t, err)
	return evs
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	require.Truef(t, apperrors.HasCode(err, code), "expected %s, got %v", code, err)
}

func changeTypes(evs []domain.TicketEvent) []domain.ChangeType {
	out := make([]domain.ChangeType, len(evs))
	for i, ev := range evs {
		out[i] = ev.ChangeType
	}
	return out
}

func ptr[T any](v T) *T { return &v }

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type recordingDispatcher struct {
	mu        sync.Mutex
	published []events.Event
	handlers  map[events.EventType][]events.EventHandler
}

func (d *recordingDispatcher) Publish(ctx context.Context, event events.Event) error {
	d.mu.Lock()
	d.published = append(d.published, event)
	handlers := append([]events.EventHandler{}, d.handlers[event.Type]...)
	d.mu.Unlock()
	for _, h := range handlers {
		if err := h(ctx, event); err != nil {
			return err
		}
	}
	return nil
}

func (d *recordingDispatcher) Subscribe(eventType events.EventType, handler events.EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.handlers == nil {
		d.handlers = map[events.EventType][]events.EventHandler{}
	}
	d.handlers[eventType] = append(d.handlers[eventType], handler)
}

func (d *recordingDispatcher) types() []events.EventType {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]events.EventType, len(d.published))
	for i, ev := range d.published {
		out[i] = ev.Type
	}
	return out
}

type fakeBlobStore struct {
	mu        sync.Mutex
	uploaded  []string
	destroyed []string
	failAfter int
}

func (b *fakeBlobStore) Upload(_ context.Context, folder string, obj storage.Object) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failAfter > 0 && len(b.uploaded) >= b.failAfter {
		return "", errors.New("bucket unavailable")
	}
	if obj.Body != nil {
		if _, err := io.Copy(io.Discard, obj.Body); err != nil {
			return "", err
		}
	}
	u := fmt.Sprintf("https://cdn.example.com/%s/%d-%s", folder, len(b.uploaded)+1, obj.Filename)
	b.uploaded = append(b.uploaded, u)
	return u, nil
}

func (b *fakeBlobStore) Destroy(_ context.Context, storedURL string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.destroyed = append(b.destroyed, storedURL)
	return nil
}

// constSource makes every generated code identical for a fixed clock.
type constSource struct{}

func (constSource) Int63() int64 { return 42 }
func (constSource) Seed(int64)   {}
