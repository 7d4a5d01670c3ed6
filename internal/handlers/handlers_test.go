package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Geek-Mradul/mintern/internal/auth"
	"github.com/Geek-Mradul/mintern/internal/config"
	"github.com/Geek-Mradul/mintern/internal/mail"
	"github.com/Geek-Mradul/mintern/internal/middleware"
	"github.com/Geek-Mradul/mintern/internal/platform/identity"
	"github.com/Geek-Mradul/mintern/internal/platform/user"
)

const campusDomain = "@hyderabad.bits-pilani.ac.in"

type fakeProvider struct {
	assertion identity.Assertion
	err       error
}

func (p *fakeProvider) AuthCodeURL(state string) string {
	return "https://accounts.example.com/o/oauth2/auth?state=" + url.QueryEscape(state)
}

func (p *fakeProvider) Exchange(_ context.Context, code string) (identity.Assertion, error) {
	if code != "good-code" {
		return identity.Assertion{}, errors.New("bad code")
	}
	return p.assertion, p.err
}

type fakeMailer struct {
	sent []*mail.Email
}

func (m *fakeMailer) SendMail(e *mail.Email) error {
	m.sent = append(m.sent, e)
	return nil
}

type harness struct {
	app    *fiber.App
	cfg    *config.Config
	store  *user.MemoryStore
	codec  *auth.Codec
	mock   sqlmock.Sqlmock
	mailer *fakeMailer
	google *fakeProvider
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		TranslateError:         true,
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	codec, err := auth.NewCodec("handler-test-secret")
	require.NoError(t, err)

	h := &harness{
		cfg: &config.Config{
			AllowedEmailDomain: campusDomain,
			MailFrom:           "Mintern <no-reply@mintern.app>",
		},
		store:  user.NewMemoryStore(),
		codec:  codec,
		mock:   mock,
		mailer: &fakeMailer{},
		google: &fakeProvider{},
	}
	svc := identity.NewService(h.store, codec, campusDomain)
	sessions := session.New()

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("config", h.cfg)
		c.Locals("db", db)
		c.Locals("identity", svc)
		c.Locals("users", h.store)
		c.Locals("session", sessions)
		c.Locals("mailer", mail.Mailer(h.mailer))
		if h.google != nil {
			c.Locals("google", h.google)
		}
		return c.Next()
	})

	guard := middleware.NewAuthMiddleware(codec)

	app.Post("/auth/signup", Signup)
	app.Post("/auth/login", SigninWithPassword)
	app.Get("/auth/google", GoogleLogin)
	app.Get("/auth/google/callback", GoogleCallback)
	app.Get("/users/me", guard, GetCurrentUser)
	app.Put("/users/me", guard, UpdateUser)
	app.Get("/projects/:id", GetProject)
	app.Post("/projects", guard, CreateProject)
	app.Post("/projects/:id/apply", guard, ApplyToProject)
	app.Put("/admin/projects/:id/status", guard, middleware.AdminMiddleware, UpdateProjectStatus)
	app.Get("/debug/token", guard, GetTokenClaims)

	h.app = app
	return h
}

func (h *harness) do(t *testing.T, method, path string, body any, token string, cookies ...*http.Cookie) (*http.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}

	resp, err := h.app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	var payload map[string]any
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &payload))
	}
	return resp, payload
}

func (h *harness) token(t *testing.T, id, email string, role auth.Role) string {
	t.Helper()
	token, err := h.codec.Issue(id, email, role)
	require.NoError(t, err)
	return token
}

func TestSignupAndLogin(t *testing.T) {
	h := newHarness(t)

	resp, body := h.do(t, fiber.MethodPost, "/auth/signup", fiber.Map{
		"email": "alice@bits.com", "password": "password123", "name": "Alice",
	}, "")
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	created := body["user"].(map[string]any)
	assert.Equal(t, "alice@bits.com", created["email"])
	assert.Equal(t, "ORDINARY", created["role"])
	assert.NotContains(t, created, "password_hash")
	assert.NotContains(t, created, "PasswordHash")

	resp, body = h.do(t, fiber.MethodPost, "/auth/login", fiber.Map{
		"email": "alice@bits.com", "password": "password123",
	}, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	claims, err := h.codec.Verify(body["token"].(string))
	require.NoError(t, err)
	assert.Equal(t, "alice@bits.com", claims.Email)
	assert.Equal(t, created["id"], claims.UserID)
}

func TestSignupErrors(t *testing.T) {
	h := newHarness(t)

	resp, _ := h.do(t, fiber.MethodPost, "/auth/signup", fiber.Map{"email": "alice@bits.com", "password": "pw"}, "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = h.do(t, fiber.MethodPost, "/auth/signup", fiber.Map{"email": "alice@bits.com", "password": "pw", "name": "Alice"}, "")
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, body := h.do(t, fiber.MethodPost, "/auth/signup", fiber.Map{"email": "alice@bits.com", "password": "other", "name": "Eve"}, "")
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, "Email already in use", body["message"])

	resp, body = h.do(t, fiber.MethodPost, "/auth/signup", fiber.Map{"email": "long@bits.com", "password": strings.Repeat("a", 73), "name": "Long"}, "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "password must be at most 72 bytes", body["message"])
}

func TestLoginErrors(t *testing.T) {
	h := newHarness(t)

	resp, _ := h.do(t, fiber.MethodPost, "/auth/signup", fiber.Map{"email": "alice@bits.com", "password": "password123", "name": "Alice"}, "")
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, _ = h.do(t, fiber.MethodPost, "/auth/login", fiber.Map{"email": "alice@bits.com"}, "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	wrongResp, wrongBody := h.do(t, fiber.MethodPost, "/auth/login", fiber.Map{"email": "alice@bits.com", "password": "nope"}, "")
	unknownResp, unknownBody := h.do(t, fiber.MethodPost, "/auth/login", fiber.Map{"email": "ghost@bits.com", "password": "password123"}, "")

	assert.Equal(t, fiber.StatusUnauthorized, wrongResp.StatusCode)
	assert.Equal(t, wrongResp.StatusCode, unknownResp.StatusCode)
	assert.Equal(t, wrongBody, unknownBody)
}

func TestLoginStoreUnavailable(t *testing.T) {
	h := newHarness(t)
	h.store.Err = errors.New("connection refused")

	resp, body := h.do(t, fiber.MethodPost, "/auth/login", fiber.Map{"email": "alice@bits.com", "password": "pw"}, "")
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "Internal server error", body["message"])
}

// startGoogleLogin follows the first leg and returns the session cookie and
// the state handed to the provider.
func startGoogleLogin(t *testing.T, h *harness) (*http.Cookie, string) {
	t.Helper()

	resp, _ := h.do(t, fiber.MethodGet, "/auth/google", nil, "")
	require.Equal(t, fiber.StatusFound, resp.StatusCode)

	location, err := url.Parse(resp.Header.Get(fiber.HeaderLocation))
	require.NoError(t, err)
	state := location.Query().Get("state")
	require.NotEmpty(t, state)

	var sessionCookie *http.Cookie
	for _, cookie := range resp.Cookies() {
		if cookie.Name == "session_id" {
			sessionCookie = cookie
		}
	}
	require.NotNil(t, sessionCookie)

	return sessionCookie, state
}

func TestGoogleLoginFlow(t *testing.T) {
	h := newHarness(t)
	email := "jane" + campusDomain
	h.google.assertion = identity.Assertion{Email: email, Name: "Jane"}

	cookie, state := startGoogleLogin(t, h)
	resp, body := h.do(t, fiber.MethodGet, "/auth/google/callback?code=good-code&state="+state, nil, "", cookie)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	claims, err := h.codec.Verify(body["token"].(string))
	require.NoError(t, err)
	assert.Equal(t, email, claims.Email)
	assert.Equal(t, auth.RoleInternal, claims.Role)

	// The state is single use.
	resp, _ = h.do(t, fiber.MethodGet, "/auth/google/callback?code=good-code&state="+state, nil, "", cookie)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestGoogleLoginRejections(t *testing.T) {
	tests := []struct {
		name      string
		assertion identity.Assertion
		query     func(state string) string
		expected  int
	}{
		{
			name:      "foreign domain",
			assertion: identity.Assertion{Email: "x@evil.com", Name: "X"},
			query:     func(state string) string { return "code=good-code&state=" + state },
			expected:  fiber.StatusUnauthorized,
		},
		{
			name:      "missing email",
			assertion: identity.Assertion{Name: "Nobody"},
			query:     func(state string) string { return "code=good-code&state=" + state },
			expected:  fiber.StatusUnauthorized,
		},
		{
			name:      "forged state",
			assertion: identity.Assertion{Email: "jane" + campusDomain, Name: "Jane"},
			query:     func(string) string { return "code=good-code&state=forged" },
			expected:  fiber.StatusUnauthorized,
		},
		{
			name:      "bad code",
			assertion: identity.Assertion{Email: "jane" + campusDomain, Name: "Jane"},
			query:     func(state string) string { return "code=bad-code&state=" + state },
			expected:  fiber.StatusUnauthorized,
		},
		{
			name:      "user cancelled",
			assertion: identity.Assertion{Email: "jane" + campusDomain, Name: "Jane"},
			query:     func(state string) string { return "error=access_denied&state=" + state },
			expected:  fiber.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.google.assertion = tt.assertion

			cookie, state := startGoogleLogin(t, h)
			resp, _ := h.do(t, fiber.MethodGet, "/auth/google/callback?"+tt.query(state), nil, "", cookie)
			assert.Equal(t, tt.expected, resp.StatusCode)
			assert.Equal(t, 0, h.store.Len())
		})
	}
}

func TestGoogleCallbackRedirectsToFrontend(t *testing.T) {
	h := newHarness(t)
	h.cfg.FrontendURL = "http://localhost:5173/"
	h.google.assertion = identity.Assertion{Email: "jane" + campusDomain, Name: "Jane"}

	cookie, state := startGoogleLogin(t, h)
	resp, _ := h.do(t, fiber.MethodGet, "/auth/google/callback?code=good-code&state="+state, nil, "", cookie)
	require.Equal(t, fiber.StatusFound, resp.StatusCode)

	location := resp.Header.Get(fiber.HeaderLocation)
	assert.True(t, strings.HasPrefix(location, "http://localhost:5173/auth/callback#token="), location)
}

func TestGoogleNotConfigured(t *testing.T) {
	h := newHarness(t)
	h.google = nil

	resp, _ := h.do(t, fiber.MethodGet, "/auth/google", nil, "")
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}

func TestCurrentUserProfile(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	u, err := h.store.UpsertFederated(ctx, "jane"+campusDomain, "Jane")
	require.NoError(t, err)
	token := h.token(t, u.ID, u.Email, u.Role)

	resp, _ := h.do(t, fiber.MethodGet, "/users/me", nil, "")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, body := h.do(t, fiber.MethodGet, "/users/me", nil, token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "Jane", body["name"])

	resp, body = h.do(t, fiber.MethodPut, "/users/me", fiber.Map{
		"bio":    "Third year CS",
		"skills": []string{" Go ", "", "React"},
	}, token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	updated := body["user"].(map[string]any)
	assert.Equal(t, "Third year CS", updated["bio"])
	assert.Equal(t, []any{"Go", "React"}, updated["skills"])

	resp, body = h.do(t, fiber.MethodPut, "/users/me", fiber.Map{"skills": []string{"Rust"}}, token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	updated = body["user"].(map[string]any)
	assert.Equal(t, "Third year CS", updated["bio"])
	assert.Equal(t, []any{"Rust"}, updated["skills"])

	resp, body = h.do(t, fiber.MethodPut, "/users/me", fiber.Map{"bio": ""}, token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	updated = body["user"].(map[string]any)
	assert.Nil(t, updated["bio"])
	assert.Equal(t, []any{"Rust"}, updated["skills"])

	ghost := h.token(t, "missing-id", "ghost@bits.com", auth.RoleOrdinary)
	resp, _ = h.do(t, fiber.MethodGet, "/users/me", nil, ghost)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestGetProjectRejectsMalformedID(t *testing.T) {
	h := newHarness(t)

	resp, body := h.do(t, fiber.MethodGet, "/projects/not-a-uuid", nil, "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Project not found", body["message"])
	assert.NoError(t, h.mock.ExpectationsWereMet())
}

func TestCreateProjectValidation(t *testing.T) {
	h := newHarness(t)
	token := h.token(t, "b3f0c7a4-0000-4000-8000-000000000001", "alice@bits.com", auth.RoleOrdinary)

	resp, _ := h.do(t, fiber.MethodPost, "/projects", fiber.Map{"description": "no title"}, token)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	h.mock.ExpectExec(`INSERT INTO "projects"`).WillReturnResult(sqlmock.NewResult(0, 1))
	resp, body := h.do(t, fiber.MethodPost, "/projects", fiber.Map{"title": "Build a Note-Taking App", "description": "Notes", "category": "Web Development"}, token)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	created := body["project"].(map[string]any)
	assert.Equal(t, "PENDING", created["status"])
	assert.Equal(t, "b3f0c7a4-0000-4000-8000-000000000001", created["author_id"])
	assert.NoError(t, h.mock.ExpectationsWereMet())
}

func TestApplyToProjectNotifiesAuthor(t *testing.T) {
	h := newHarness(t)
	projectID := "c1d2e3f4-0000-4000-8000-000000000003"
	token := h.token(t, "b3f0c7a4-0000-4000-8000-000000000001", "alice@bits.com", auth.RoleOrdinary)
	now := time.Now()

	h.mock.ExpectQuery(`SELECT \* FROM "projects"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "description", "category", "status", "author_id", "created_at", "updated_at"}).
			AddRow(projectID, "Thermodynamics Problem Set", "Solve it", "Academics", "APPROVED", "author-1", now, now))
	h.mock.ExpectQuery(`SELECT \* FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "role"}).AddRow("author-1", "Bob", "bob@bits.com", "ORDINARY"))
	h.mock.ExpectExec(`INSERT INTO "applications"`).WillReturnResult(sqlmock.NewResult(0, 1))

	resp, body := h.do(t, fiber.MethodPost, "/projects/"+projectID+"/apply", nil, token)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	application := body["application"].(map[string]any)
	assert.Equal(t, "PENDING", application["status"])

	require.Len(t, h.mailer.sent, 1)
	assert.Equal(t, []string{"bob@bits.com"}, h.mailer.sent[0].To)
	assert.Contains(t, h.mailer.sent[0].Body, "alice@bits.com")
	assert.NoError(t, h.mock.ExpectationsWereMet())
}

func TestUpdateProjectStatusGuardsAndValidation(t *testing.T) {
	h := newHarness(t)
	projectID := "c1d2e3f4-0000-4000-8000-000000000003"

	internal := h.token(t, "u-1", "jane"+campusDomain, auth.RoleInternal)
	resp, _ := h.do(t, fiber.MethodPut, "/admin/projects/"+projectID+"/status", fiber.Map{"status": "APPROVED"}, internal)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	admin := h.token(t, "u-2", "root"+campusDomain, auth.RoleAdmin)
	resp, body := h.do(t, fiber.MethodPut, "/admin/projects/"+projectID+"/status", fiber.Map{"status": "PENDING"}, admin)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid status. Must be APPROVED or REJECTED.", body["message"])

	h.mock.ExpectExec(`UPDATE "projects" SET "status"=\$1`).WillReturnResult(sqlmock.NewResult(0, 0))
	resp, _ = h.do(t, fiber.MethodPut, "/admin/projects/"+projectID+"/status", fiber.Map{"status": "REJECTED"}, admin)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.NoError(t, h.mock.ExpectationsWereMet())
}

func TestDebugToken(t *testing.T) {
	h := newHarness(t)
	token := h.token(t, "u-1", "alice@bits.com", auth.RoleOrdinary)

	resp, body := h.do(t, fiber.MethodGet, "/debug/token", nil, token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	claims := body["user"].(map[string]any)
	assert.Equal(t, "u-1", claims["userId"])
	assert.Equal(t, "alice@bits.com", claims["email"])
	assert.Equal(t, "ORDINARY", claims["role"])
	assert.Contains(t, claims, "exp")
	assert.Contains(t, claims, "iat")
}
