package note

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Raman247365/Note-app/internal/auth"
	"github.com/Raman247365/Note-app/internal/httputil"
	"github.com/Raman247365/Note-app/internal/logging"
)

// Store is the slice of the repository the handlers need.
type Store interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Note, error)
	Create(ctx context.Context, n *Note) (*Note, error)
	Delete(ctx context.Context, id, userID uuid.UUID) error
}

// Handler contains HTTP handlers for note endpoints. All of them run behind
// the auth middleware, which guarantees a user ID in the context.
type Handler struct {
	store  Store
	logger *logging.Logger
}

func NewHandler(store Store, logger *logging.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

// CreateNoteRequest represents the note creation request body
type CreateNoteRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// List returns the authenticated user's notes, newest first.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		respondError(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	notes, err := h.store.ListByUser(r.Context(), userID)
	if err != nil {
		logger.Error("failed to list notes", "error", err.Error())
		respondError(w, "server error", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, notes, http.StatusOK)
}

// Create stores a new note owned by the authenticated user.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		respondError(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	var req CreateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid note creation request body", "error", err.Error())
		respondError(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	if req.Title == "" || req.Content == "" {
		respondError(w, "title and content are required", httputil.CodeValidationFailed, http.StatusBadRequest)
		return
	}

	created, err := h.store.Create(r.Context(), &Note{
		UserID:  userID,
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		logger.Error("failed to create note", "error", err.Error())
		respondError(w, "server error", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("note created", "note_id", created.ID)

	httputil.RespondJSON(w, created, http.StatusCreated)
}

// Delete removes a note owned by the authenticated user.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		respondError(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	noteID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, ErrNotFound.Error(), httputil.CodeNoteNotFound, http.StatusNotFound)
		return
	}

	if err := h.store.Delete(r.Context(), noteID, userID); err != nil {
		if errors.Is(err, ErrNotFound) {
			respondError(w, ErrNotFound.Error(), httputil.CodeNoteNotFound, http.StatusNotFound)
			return
		}
		logger.Error("failed to delete note", "error", err.Error())
		respondError(w, "server error", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("note deleted", "note_id", noteID)

	httputil.RespondJSON(w, map[string]string{"message": "note deleted successfully"}, http.StatusOK)
}

// respondError sends an error response with a machine-readable code
func respondError(w http.ResponseWriter, message string, code string, statusCode int) {
	httputil.RespondErrorWithCode(w, message, code, statusCode)
}
