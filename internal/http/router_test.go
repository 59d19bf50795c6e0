package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Raman247365/Note-app/internal/auth"
	"github.com/Raman247365/Note-app/internal/config"
	"github.com/Raman247365/Note-app/internal/logging"
	"github.com/Raman247365/Note-app/internal/note"
	"github.com/Raman247365/Note-app/internal/user"
)

type memoryUserStore struct {
	byEmail map[string]*user.User
}

func (s *memoryUserStore) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	u, ok := s.byEmail[email]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u, nil
}

func (s *memoryUserStore) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	for _, u := range s.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, user.ErrNotFound
}

func (s *memoryUserStore) Create(ctx context.Context, u *user.User) (*user.User, error) {
	if _, ok := s.byEmail[u.Email]; ok {
		return nil, user.ErrDuplicateEmail
	}
	created := *u
	created.ID = uuid.New()
	s.byEmail[u.Email] = &created
	return &created, nil
}

type captureMailer struct {
	lastCode string
}

func (m *captureMailer) IsConfigured() bool { return true }

func (m *captureMailer) SendOTPEmail(ctx context.Context, toEmail, code string) error {
	m.lastCode = code
	return nil
}

type memoryNoteStore struct {
	notes map[uuid.UUID]*note.Note
}

func (s *memoryNoteStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*note.Note, error) {
	out := []*note.Note{}
	for _, n := range s.notes {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (s *memoryNoteStore) Create(ctx context.Context, n *note.Note) (*note.Note, error) {
	created := *n
	created.ID = uuid.New()
	s.notes[created.ID] = &created
	return &created, nil
}

func (s *memoryNoteStore) Delete(ctx context.Context, id, userID uuid.UUID) error {
	n, ok := s.notes[id]
	if !ok || n.UserID != userID {
		return note.ErrNotFound
	}
	delete(s.notes, id)
	return nil
}

type rejectAllVerifier struct{}

func (rejectAllVerifier) Verify(ctx context.Context, idToken, audience string) (*auth.IdentityClaims, error) {
	return nil, auth.ErrInvalidGoogleToken
}

// newTestServer wires the full router with in-memory stores behind it.
func newTestServer(t *testing.T) (http.Handler, *captureMailer) {
	t.Helper()

	cfg := &config.Config{
		Server: config.ServerConfig{
			Port:           "8080",
			Env:            "dev",
			TrustedOrigins: []string{"http://localhost:3000"},
		},
	}
	logger := logging.NewLogger(true)

	tokens, err := auth.NewJWTService([]byte("router-test-secret"))
	require.NoError(t, err)

	mailer := &captureMailer{}
	authService := auth.NewService(
		&memoryUserStore{byEmail: make(map[string]*user.User)},
		auth.NewMemoryPendingSignupStore(),
		tokens,
		mailer,
		rejectAllVerifier{},
		logger,
		"test-google-client",
		time.Hour,
		false,
	)

	router := NewRouter(
		cfg,
		auth.NewHandler(authService, logger),
		auth.NewMiddleware(tokens),
		note.NewHandler(&memoryNoteStore{notes: make(map[uuid.UUID]*note.Note)}, logger),
		logger,
	)
	return router, mailer
}

func doJSON(t *testing.T, router http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	router, _ := newTestServer(t)

	rec := doJSON(t, router, http.MethodGet, "/health", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"api is running"}`, rec.Body.String())
}

func TestNotesRequireAuthentication(t *testing.T) {
	router, _ := newTestServer(t)

	for _, tc := range []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/notes/"},
		{http.MethodPost, "/notes/"},
		{http.MethodDelete, "/notes/" + uuid.NewString()},
	} {
		rec := doJSON(t, router, tc.method, tc.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", tc.method, tc.path)
	}
}

func TestSecurityHeadersPresent(t *testing.T) {
	router, _ := newTestServer(t)

	rec := doJSON(t, router, http.MethodGet, "/health", "", nil)

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}

// TestSignupVerifyAndUseNotes walks the full happy path: signup, verify the
// emailed code, then use the issued token against the protected notes API.
func TestSignupVerifyAndUseNotes(t *testing.T) {
	router, mailer := newTestServer(t)

	rec := doJSON(t, router, http.MethodPost, "/auth/signup", "", map[string]string{
		"email":       "alice@example.com",
		"password":    "password123",
		"name":        "Alice",
		"dateOfBirth": "1990-05-20",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NotEmpty(t, mailer.lastCode)

	rec = doJSON(t, router, http.MethodPost, "/auth/verify-otp", "", map[string]string{
		"email":    "alice@example.com",
		"otp":      mailer.lastCode,
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var authBody struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &authBody))
	require.NotEmpty(t, authBody.Token)

	// Password login works with the same credentials.
	rec = doJSON(t, router, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// The token opens the notes API.
	rec = doJSON(t, router, http.MethodPost, "/notes/", authBody.Token, map[string]string{
		"title":   "Groceries",
		"content": "milk, eggs",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created note.Note
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = doJSON(t, router, http.MethodGet, "/notes/", authBody.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var notes []*note.Note
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &notes))
	require.Len(t, notes, 1)
	assert.Equal(t, "Groceries", notes[0].Title)

	rec = doJSON(t, router, http.MethodDelete, "/notes/"+created.ID.String(), authBody.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/notes/", authBody.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestGoogleLoginRejectedToken(t *testing.T) {
	router, _ := newTestServer(t)

	rec := doJSON(t, router, http.MethodPost, "/auth/google", "", map[string]string{
		"token": "forged-id-token",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
