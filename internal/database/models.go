package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the database model for user accounts. PasswordHash and DateOfBirth
// are nullable: accounts created through Google login carry neither.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           uuid.UUID  `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	Email        string     `bun:"email,notnull,unique"`
	PasswordHash *string    `bun:"password_hash"`
	Name         string     `bun:"name,notnull"`
	DateOfBirth  *time.Time `bun:"date_of_birth"`
	GoogleID     *string    `bun:"google_id"`
	CreatedAt    time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt    time.Time  `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// Note is the database model for notes. UserID references the owning account.
type Note struct {
	bun.BaseModel `bun:"table:notes,alias:n"`

	ID        uuid.UUID `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	UserID    uuid.UUID `bun:"user_id,notnull,type:uuid"`
	Title     string    `bun:"title,notnull"`
	Content   string    `bun:"content,notnull"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}
