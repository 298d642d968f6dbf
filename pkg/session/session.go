// Package session tracks the animation state of independent viewers.
//
// Each viewer of a served scene owns a [Session] holding its cart state and
// the wall-clock origin its samples are measured from. Sessions expire after
// a period without use.
//
// # Usage
//
//	store := session.NewMemoryStore(session.DefaultTTL, 0)
//
//	sess, err := store.Create(ctx, time.Now())
//	if err != nil {
//	    return err
//	}
//
//	err = store.Update(ctx, sess.ID, time.Now(), func(s *session.Session) error {
//	    s.State = animator.Sample(s.State, s.Elapsed(time.Now()))
//	    return nil
//	})
package session

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/polarcoaster/pkg/cart"
	"github.com/matzehuels/polarcoaster/pkg/errors"
)

// DefaultTTL is how long an unused session is kept.
const DefaultTTL = 30 * time.Minute

// Session is one viewer's animation.
type Session struct {
	ID        string     `json:"id"`
	State     cart.State `json:"state"`
	Epoch     time.Time  `json:"epoch"` // clock origin for State.Last
	CreatedAt time.Time  `json:"created_at"`
	LastSeen  time.Time  `json:"last_seen"`
}

// New creates a session whose cart sits at the start of the walk.
func New(now time.Time) *Session {
	return &Session{
		ID:        uuid.NewString(),
		State:     cart.State{From: 0, To: 1},
		Epoch:     now,
		CreatedAt: now,
		LastSeen:  now,
	}
}

// Elapsed returns the clock reading for now, as used by [cart.Animator.Sample].
func (s *Session) Elapsed(now time.Time) time.Duration {
	return now.Sub(s.Epoch)
}

// IsExpired reports whether the session has been idle longer than ttl.
// A zero ttl never expires.
func (s *Session) IsExpired(now time.Time, ttl time.Duration) bool {
	return ttl > 0 && now.Sub(s.LastSeen) > ttl
}

// Store is the interface for session storage backends.
type Store interface {
	// Create stores a new session.
	Create(ctx context.Context, now time.Time) (*Session, error)

	// Get returns a copy of the session.
	Get(ctx context.Context, id string, now time.Time) (*Session, error)

	// Update runs fn on the session while holding its lock and marks the
	// session as seen at now. Changes made by fn are kept unless it fails.
	Update(ctx context.Context, id string, now time.Time, fn func(*Session) error) error

	// Delete removes a session.
	Delete(ctx context.Context, id string) error

	// Cleanup removes expired sessions and returns how many were removed.
	Cleanup(ctx context.Context, now time.Time) (int, error)

	// Len returns the number of live sessions.
	Len() int
}

func notFound(id string) error {
	return errors.New(errors.ErrCodeSessionNotFound, "session %s not found", id)
}
