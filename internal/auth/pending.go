package auth

import (
	"context"
	"crypto/subtle"
	"sync"
	"time"
)

// PendingSignup is a signup awaiting email verification: the OTP code, its
// absolute expiry, and the draft profile resubmitted on verification.
type PendingSignup struct {
	Email       string
	Code        string
	Name        string
	DateOfBirth time.Time
	ExpiresAt   time.Time
}

// MemoryPendingSignupStore keeps pending signups in an in-process map.
// Entries do not survive a restart; in-flight signups are lost when the
// process stops. This mirrors the intended lifetime of an OTP.
type MemoryPendingSignupStore struct {
	mu      sync.Mutex
	entries map[string]*PendingSignup
}

func NewMemoryPendingSignupStore() *MemoryPendingSignupStore {
	return &MemoryPendingSignupStore{entries: make(map[string]*PendingSignup)}
}

// Put stores a pending signup, overwriting any prior entry for the email.
func (s *MemoryPendingSignupStore) Put(ctx context.Context, email string, entry *PendingSignup) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[email] = entry
	return nil
}

// Consume checks the code and expiry under the lock and deletes the entry
// only on a match, so at most one caller can ever receive a given entry.
// A wrong code leaves the entry in place for a retry.
func (s *MemoryPendingSignupStore) Consume(ctx context.Context, email, code string) (*PendingSignup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[email]
	if !ok {
		return nil, ErrOTPInvalid
	}
	if time.Now().After(entry.ExpiresAt) {
		// Dead entry, reclaim it.
		delete(s.entries, email)
		return nil, ErrOTPInvalid
	}
	if subtle.ConstantTimeCompare([]byte(entry.Code), []byte(code)) != 1 {
		return nil, ErrOTPInvalid
	}

	delete(s.entries, email)
	return entry, nil
}
