package note

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/Raman247365/Note-app/internal/database"
)

// Repository handles note persistence
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// ListByUser returns the user's notes, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*Note, error) {
	var dbNotes []*database.Note
	err := r.db.NewSelect().
		Model(&dbNotes).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}

	notes := make([]*Note, 0, len(dbNotes))
	for _, dbNote := range dbNotes {
		notes = append(notes, mapDBNoteToModel(dbNote))
	}
	return notes, nil
}

// Create inserts a new note owned by the given user.
func (r *Repository) Create(ctx context.Context, n *Note) (*Note, error) {
	dbNote := &database.Note{
		UserID:  n.UserID,
		Title:   n.Title,
		Content: n.Content,
	}

	_, err := r.db.NewInsert().
		Model(dbNote).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create note: %w", err)
	}

	return mapDBNoteToModel(dbNote), nil
}

// Delete removes a note, scoped to its owner. Deleting a note that does not
// exist or belongs to someone else returns ErrNotFound either way.
func (r *Repository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	result, err := r.db.NewDelete().
		Model((*database.Note)(nil)).
		Where("id = ?", id).
		Where("user_id = ?", userID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// mapDBNoteToModel converts database model to domain model
func mapDBNoteToModel(dbn *database.Note) *Note {
	return &Note{
		ID:        dbn.ID,
		UserID:    dbn.UserID,
		Title:     dbn.Title,
		Content:   dbn.Content,
		CreatedAt: dbn.CreatedAt,
		UpdatedAt: dbn.UpdatedAt,
	}
}
