package session

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"sync"
	"time"
)

var ErrCodeSpaceExhausted = errors.New("could not allocate a free room code")

// codeAttempts bounds how often Create retries after a code collision.
const codeAttempts = 16

// Registry maps room codes to sessions and participants to their room.
type Registry struct {
	rooms   map[string]*Session
	members map[PlayerID]string
	codes   func() string
	now     func() time.Time
	mu      sync.RWMutex
}

// Option configures a Registry.
type Option func(*Registry)

// WithCodeGenerator replaces the random room code generator.
func WithCodeGenerator(gen func() string) Option {
	return func(r *Registry) {
		r.codes = gen
	}
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		r.now = now
	}
}

// NewRegistry creates an empty registry
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		rooms:   make(map[string]*Session),
		members: make(map[PlayerID]string),
		codes:   GenerateRoomCode,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// GenerateRoomCode returns a pseudo-random 6-digit numeric code.
func GenerateRoomCode() string {
	return fmt.Sprintf("%06d", 100000+rand.IntN(900000))
}

// Now returns the registry clock's current time.
func (r *Registry) Now() time.Time {
	return r.now()
}

// Create opens a new room with creator seated.
func (r *Registry) Create(creator PlayerID) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, busy := r.members[creator]; busy {
		return nil, ErrAlreadyInRoom
	}

	for i := 0; i < codeAttempts; i++ {
		code := r.codes()
		if _, taken := r.rooms[code]; taken {
			continue
		}
		sess := NewSession(code, creator, r.now())
		r.rooms[code] = sess
		r.members[creator] = code
		return sess, nil
	}
	return nil, ErrCodeSpaceExhausted
}

// Join seats id in the room identified by code.
func (r *Registry) Join(code string, id PlayerID) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, busy := r.members[id]; busy {
		return nil, ErrAlreadyInRoom
	}
	sess, exists := r.rooms[code]
	if !exists {
		return nil, ErrRoomNotFound
	}
	if err := sess.Join(id, r.now()); err != nil {
		return nil, err
	}
	r.members[id] = code
	return sess, nil
}

// Get retrieves a room by code
func (r *Registry) Get(code string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sess, exists := r.rooms[code]
	if !exists {
		return nil, ErrRoomNotFound
	}
	return sess, nil
}

// RoomOf returns the room id currently belongs to.
func (r *Registry) RoomOf(id PlayerID) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	code, ok := r.members[id]
	if !ok {
		return nil, false
	}
	sess, ok := r.rooms[code]
	return sess, ok
}

// Remove tears a room down, dropping it and every membership entry that
// points at it in one step.
func (r *Registry) Remove(code string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, exists := r.rooms[code]
	if !exists {
		return nil, ErrRoomNotFound
	}
	r.removeLocked(sess)
	return sess, nil
}

func (r *Registry) removeLocked(sess *Session) {
	for _, id := range sess.Players() {
		if r.members[id] == sess.Code {
			delete(r.members, id)
		}
	}
	delete(r.rooms, sess.Code)
}

// List returns all active rooms, oldest first
func (r *Registry) List() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*Session, 0, len(r.rooms))
	for _, sess := range r.rooms {
		result = append(result, sess)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].Code < result[j].Code
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result
}

// Count returns the number of active rooms
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

// Members returns the number of participants seated in any room.
func (r *Registry) Members() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members)
}

// ExpireIdle removes rooms without activity for longer than maxAge and
// returns them, already marked finished.
func (r *Registry) ExpireIdle(maxAge time.Duration) []*Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	cutoff := now.Add(-maxAge)
	var expired []*Session

	for _, sess := range r.rooms {
		if sess.LastActivityAt.Before(cutoff) {
			expired = append(expired, sess)
		}
	}
	for _, sess := range expired {
		sess.Expire(now)
		r.removeLocked(sess)
	}
	return expired
}
