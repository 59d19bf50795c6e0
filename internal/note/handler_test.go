package note

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Raman247365/Note-app/internal/auth"
	"github.com/Raman247365/Note-app/internal/httputil"
	"github.com/Raman247365/Note-app/internal/logging"
)

type fakeStore struct {
	notes map[uuid.UUID]*Note
}

func newFakeStore() *fakeStore {
	return &fakeStore{notes: make(map[uuid.UUID]*Note)}
}

func (s *fakeStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*Note, error) {
	out := []*Note{}
	for _, n := range s.notes {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (s *fakeStore) Create(ctx context.Context, n *Note) (*Note, error) {
	created := *n
	created.ID = uuid.New()
	created.CreatedAt = time.Now()
	created.UpdatedAt = created.CreatedAt
	s.notes[created.ID] = &created
	return &created, nil
}

func (s *fakeStore) Delete(ctx context.Context, id, userID uuid.UUID) error {
	n, ok := s.notes[id]
	if !ok || n.UserID != userID {
		return ErrNotFound
	}
	delete(s.notes, id)
	return nil
}

// newTestRouter mounts the handler the way the real router does, behind a
// stub that injects the authenticated user into the context.
func newTestRouter(store Store, userID uuid.UUID) http.Handler {
	handler := NewHandler(store, logging.NewLogger(true))

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := context.WithValue(req.Context(), auth.UserIDContextKey, userID)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	r.Get("/notes", handler.List)
	r.Post("/notes", handler.Create)
	r.Delete("/notes/{id}", handler.Delete)
	return r
}

func TestCreateNote(t *testing.T) {
	store := newFakeStore()
	userID := uuid.New()
	router := newTestRouter(store, userID)

	body, _ := json.Marshal(CreateNoteRequest{Title: "Groceries", Content: "milk, eggs"})
	req := httptest.NewRequest(http.MethodPost, "/notes", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var created Note
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "Groceries", created.Title)
	assert.Equal(t, "milk, eggs", created.Content)
	assert.Equal(t, userID, created.UserID)
	assert.NotEqual(t, uuid.Nil, created.ID)
}

func TestCreateNoteValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing title", `{"content":"milk"}`},
		{"missing content", `{"title":"Groceries"}`},
		{"empty body", `{}`},
		{"malformed json", `{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(newFakeStore(), uuid.New())

			req := httptest.NewRequest(http.MethodPost, "/notes", bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestListNotesScopedToUser(t *testing.T) {
	store := newFakeStore()
	alice := uuid.New()
	bob := uuid.New()

	_, err := store.Create(context.Background(), &Note{UserID: alice, Title: "mine", Content: "a"})
	require.NoError(t, err)
	_, err = store.Create(context.Background(), &Note{UserID: bob, Title: "not mine", Content: "b"})
	require.NoError(t, err)

	router := newTestRouter(store, alice)

	req := httptest.NewRequest(http.MethodGet, "/notes", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var notes []*Note
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &notes))
	require.Len(t, notes, 1)
	assert.Equal(t, "mine", notes[0].Title)
}

func TestListNotesEmpty(t *testing.T) {
	router := newTestRouter(newFakeStore(), uuid.New())

	req := httptest.NewRequest(http.MethodGet, "/notes", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestDeleteNote(t *testing.T) {
	store := newFakeStore()
	userID := uuid.New()
	created, err := store.Create(context.Background(), &Note{UserID: userID, Title: "t", Content: "c"})
	require.NoError(t, err)

	router := newTestRouter(store, userID)

	req := httptest.NewRequest(http.MethodDelete, "/notes/"+created.ID.String(), nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, store.notes)
}

func TestDeleteNoteNotFound(t *testing.T) {
	router := newTestRouter(newFakeStore(), uuid.New())

	req := httptest.NewRequest(http.MethodDelete, "/notes/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var body httputil.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, httputil.CodeNoteNotFound, body.Code)
}

func TestDeleteNoteOtherUsers(t *testing.T) {
	store := newFakeStore()
	owner := uuid.New()
	created, err := store.Create(context.Background(), &Note{UserID: owner, Title: "t", Content: "c"})
	require.NoError(t, err)

	// A different user cannot tell this note apart from a nonexistent one.
	router := newTestRouter(store, uuid.New())

	req := httptest.NewRequest(http.MethodDelete, "/notes/"+created.ID.String(), nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Len(t, store.notes, 1)
}

func TestDeleteNoteBadID(t *testing.T) {
	router := newTestRouter(newFakeStore(), uuid.New())

	req := httptest.NewRequest(http.MethodDelete, "/notes/not-a-uuid", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
