package note

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("note not found")

type Note struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
