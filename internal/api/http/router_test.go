package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	nethttp "net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/repository/memory"
	"github.com/spec-kit/helpdesk-service/internal/service"
	"github.com/spec-kit/helpdesk-service/internal/storage"
)

type testServer struct {
	app      *fiber.App
	tokens   map[domain.Role]string
	priority domain.Priority
	agent    domain.User
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	repos := store.Repos()
	tokens := auth.NewTokenManager("test-secret", time.Hour)

	srv := &testServer{tokens: map[domain.Role]string{}}
	hash, err := auth.HashPassword("s3cret!", 4)
	require.NoError(t, err)
	for _, role := range []domain.Role{domain.RoleAdmin, domain.RoleAgent, domain.RoleCustomer} {
		user := domain.User{FirstName: string(role), Email: string(role) + "@example.com", Role: role, PasswordHash: hash}
		require.NoError(t, repos.Users.Create(ctx, &user))
		token, _, err := tokens.GenerateToken(user)
		require.NoError(t, err)
		srv.tokens[role] = token
		if role == domain.RoleAgent {
			srv.agent = user
		}
	}
	srv.priority = domain.Priority{Name: "Medium"}
	require.NoError(t, repos.Priorities.Create(ctx, &srv.priority))

	blobs, err := storage.NewLocalStore(t.TempDir(), "http://localhost/uploads")
	require.NoError(t, err)

	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	ticketService := service.NewTicketService(service.TicketDependencies{Store: store, Metrics: metrics, Logger: logger})
	attachmentService := service.NewAttachmentService(service.AttachmentDependencies{
		Store:        store,
		Blobs:        blobs,
		Logger:       logger,
		TicketFolder: "tickets",
		TempFolder:   "temp",
	})

	srv.app = fiber.New()
	RegisterMiddlewares(srv.app, logger, metrics, 5*time.Second)
	RegisterRoutes(srv.app, RouteConfig{
		Health:         handlers.NewHealthHandler("helpdesk", "test", nil),
		Users:          handlers.NewUsersHandler(service.NewAuthService(repos.Users, tokens)),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Attachments:    handlers.NewAttachmentsHandler(attachmentService),
		Catalog:        handlers.NewCatalogHandler(service.NewCatalogService(store, nil)),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, repos.Users),
		Metrics:        metrics,
		UploadsDir:     blobs.Dir(),
	})
	return srv
}

func (s *testServer) do(t *testing.T, role domain.Role, method, path string, body any) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if role != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+s.tokens[role])
	}
	return s.send(t, req)
}

func (s *testServer) send(t *testing.T, req *nethttp.Request) (int, envelope) {
	t.Helper()
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	return resp.StatusCode, env
}

func (s *testServer) createTicket(t *testing.T, role domain.Role, extra map[string]any) map[string]any {
	t.Helper()
	body := map[string]any{
		"subject":         "Printer is jammed",
		"description":     "Paper stuck in tray 2",
		"requester_email": "jane@example.com",
		"requester_name":  "Jane Doe",
		"priority_id":     s.priority.ID,
	}
	for k, v := range extra {
		body[k] = v
	}
	status, env := s.do(t, role, fiber.MethodPost, "/api/v1/tickets", body)
	require.Equal(t, fiber.StatusCreated, status, env.Message)
	var ticket map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &ticket))
	return ticket
}

func TestRequiresBearerToken(t *testing.T) {
	srv := newTestServer(t)
	status, env := srv.do(t, "", fiber.MethodGet, "/api/v1/tickets", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, "UNAUTHORIZED", env.Error.Code)
}

func TestLoginIssuesUsableToken(t *testing.T) {
	srv := newTestServer(t)

	status, env := srv.do(t, "", fiber.MethodPost, "/api/v1/auth/login", map[string]any{
		"email": "agent@example.com", "password": "wrong",
	})
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, env = srv.do(t, "", fiber.MethodPost, "/api/v1/auth/login", map[string]any{
		"email": "agent@example.com", "password": "s3cret!",
	})
	require.Equal(t, fiber.StatusOK, status, env.Message)
	var session struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &session))
	require.NotEmpty(t, session.Token)

	req := httptest.NewRequest(fiber.MethodGet, "/api/v1/auth/me", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+session.Token)
	status, env = srv.send(t, req)
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(env.Data), `"role":"agent"`)
}

func TestCreateAndFetchTicket(t *testing.T) {
	srv := newTestServer(t)
	ticket := srv.createTicket(t, domain.RoleCustomer, nil)
	assert.Equal(t, "new", ticket["status"])
	assert.True(t, strings.HasPrefix(ticket["ticket_code"].(string), "RES-"))

	id := int64(ticket["id"].(float64))
	status, env := srv.do(t, domain.RoleCustomer, fiber.MethodGet, fmt.Sprintf("/api/v1/tickets/%d", id), nil)
	require.Equal(t, fiber.StatusOK, status)
	var detail struct {
		TicketEvents []struct {
			ChangeType string `json:"change_type"`
		} `json:"ticket_events"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &detail))
	require.Len(t, detail.TicketEvents, 1)
	assert.Equal(t, "ticket_created", detail.TicketEvents[0].ChangeType)

	status, _ = srv.do(t, domain.RoleAgent, fiber.MethodGet, fmt.Sprintf("/api/v1/tickets/%d", id), nil)
	assert.Equal(t, fiber.StatusForbidden, status)
}

func TestCreateTicketValidation(t *testing.T) {
	srv := newTestServer(t)
	status, env := srv.do(t, domain.RoleCustomer, fiber.MethodPost, "/api/v1/tickets", map[string]any{
		"requester_email": "not-an-email",
		"requester_name":  "Jane",
		"priority_id":     srv.priority.ID,
	})
	assert.Equal(t, fiber.StatusBadRequest, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)
	fields, _ := env.Error.Details["fields"].(map[string]any)
	assert.Contains(t, fields, "subject")
	assert.Contains(t, fields, "requester_email")
}

func TestMalformedIDIsBadRequest(t *testing.T) {
	srv := newTestServer(t)
	status, env := srv.do(t, domain.RoleAdmin, fiber.MethodGet, "/api/v1/tickets/abc", nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "BAD_REQUEST", env.Error.Code)
}

func TestUpdateTicketAssigneeSemantics(t *testing.T) {
	srv := newTestServer(t)
	ticket := srv.createTicket(t, domain.RoleAdmin, map[string]any{"assignee_id": srv.agent.ID})
	path := fmt.Sprintf("/api/v1/tickets/%d", int64(ticket["id"].(float64)))

	status, env := srv.do(t, domain.RoleCustomer, fiber.MethodPut, path, map[string]any{"subject": "x"})
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", env.Error.Code)

	status, env = srv.do(t, domain.RoleAdmin, fiber.MethodPut, path, map[string]any{"status": "resolved"})
	require.Equal(t, fiber.StatusOK, status, env.Message)
	var updated map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, float64(srv.agent.ID), updated["assignee_id"], "absent assignee_id leaves it unchanged")
	assert.NotNil(t, updated["resolved_at"])

	status, env = srv.do(t, domain.RoleAdmin, fiber.MethodPut, path, map[string]any{"assignee_id": nil})
	require.Equal(t, fiber.StatusOK, status, env.Message)
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Nil(t, updated["assignee_id"])
	assert.Equal(t, "resolved", updated["status"])

	status, env = srv.do(t, domain.RoleAdmin, fiber.MethodPut, path, map[string]any{"status": "pending"})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)
}

func TestCommentRoutes(t *testing.T) {
	srv := newTestServer(t)
	ticket := srv.createTicket(t, domain.RoleCustomer, nil)
	path := fmt.Sprintf("/api/v1/tickets/%d/comments", int64(ticket["id"].(float64)))

	status, _ := srv.do(t, domain.RoleCustomer, fiber.MethodPost, path, map[string]any{"content": "hi"})
	assert.Equal(t, fiber.StatusForbidden, status)

	status, env := srv.do(t, domain.RoleAdmin, fiber.MethodPost, path, map[string]any{"content": "on it", "is_internal": true})
	require.Equal(t, fiber.StatusCreated, status, env.Message)
	assert.Contains(t, string(env.Data), `"is_internal":true`)
}

func TestListTicketsPaginationAndSortValidation(t *testing.T) {
	srv := newTestServer(t)
	for i := 0; i < 3; i++ {
		srv.createTicket(t, domain.RoleAdmin, nil)
	}

	status, env := srv.do(t, domain.RoleAdmin, fiber.MethodGet, "/api/v1/tickets?limit=2&page=2", nil)
	require.Equal(t, fiber.StatusOK, status)
	var page struct {
		Tickets    []map[string]any `json:"tickets"`
		Pagination struct {
			CurrentPage int  `json:"current_page"`
			TotalPages  int  `json:"total_pages"`
			TotalCount  int  `json:"total_count"`
			HasPrev     bool `json:"has_prev"`
		} `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Len(t, page.Tickets, 1)
	assert.Equal(t, 2, page.Pagination.TotalPages)
	assert.Equal(t, 3, page.Pagination.TotalCount)
	assert.True(t, page.Pagination.HasPrev)

	status, _ = srv.do(t, domain.RoleAdmin, fiber.MethodGet, "/api/v1/tickets?sort_by=password", nil)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = srv.do(t, domain.RoleAdmin, fiber.MethodGet, "/api/v1/tickets?priority_id=abc", nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestExportIsAdminOnly(t *testing.T) {
	srv := newTestServer(t)
	srv.createTicket(t, domain.RoleAdmin, nil)

	status, _ := srv.do(t, domain.RoleAgent, fiber.MethodGet, "/api/v1/tickets/export", nil)
	assert.Equal(t, fiber.StatusForbidden, status)

	req := httptest.NewRequest(fiber.MethodGet, "/api/v1/tickets/export", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+srv.tokens[domain.RoleAdmin])
	resp, err := srv.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", resp.Header.Get(fiber.HeaderContentType))
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), ".xlsx")
}

func TestUploadTemporaryImages(t *testing.T) {
	srv := newTestServer(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, name := range []string{"a.png", "b.png"} {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="images"; filename="%s"`, name))
		header.Set("Content-Type", "image/png")
		part, err := mw.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write([]byte("\x89PNG\r\n"))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(fiber.MethodPost, "/api/v1/uploads/temp", &body)
	req.Header.Set(fiber.HeaderContentType, mw.FormDataContentType())
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+srv.tokens[domain.RoleCustomer])
	status, env := srv.send(t, req)
	require.Equal(t, fiber.StatusCreated, status, env.Message)

	var uploaded struct {
		URLs []string `json:"urls"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &uploaded))
	require.Len(t, uploaded.URLs, 2)
	for _, u := range uploaded.URLs {
		assert.True(t, strings.HasPrefix(u, "http://localhost/uploads/temp/"), u)
	}
}

func TestPriorityWritesAreAdminOnly(t *testing.T) {
	srv := newTestServer(t)
	status, _ := srv.do(t, domain.RoleAgent, fiber.MethodPost, "/api/v1/priorities", map[string]any{"name": "Urgent"})
	assert.Equal(t, fiber.StatusForbidden, status)

	status, _ = srv.do(t, domain.RoleAdmin, fiber.MethodPost, "/api/v1/priorities", map[string]any{"name": "Medium"})
	assert.Equal(t, fiber.StatusConflict, status)

	status, env := srv.do(t, domain.RoleAgent, fiber.MethodGet, "/api/v1/priorities", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(env.Data), `"name":"Medium"`)
}

func TestUnknownRouteUsesEnvelope(t *testing.T) {
	srv := newTestServer(t)
	status, env := srv.do(t, "", fiber.MethodGet, "/nope", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.False(t, env.Success)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	srv := newTestServer(t)

	resp, err := srv.app.Test(httptest.NewRequest(fiber.MethodGet, "/health/live", nil), -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = srv.app.Test(httptest.NewRequest(fiber.MethodGet, "/health/ready", nil), -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = srv.app.Test(httptest.NewRequest(fiber.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "http_requests_total")
}
