// Package session owns the storefront's session machinery: the session
// holder, server-side bootstrap, the single-flight token refresh guard, the
// authenticated fetch path, and guest identity.
package session

import "sync"

// Profile is the snapshot of the logged-in user returned by the backend's
// current-user endpoint. Fields the storefront never reads are not modeled.
type Profile struct {
	ID              int64  `json:"id"`
	Email           string `json:"email"`
	Name            string `json:"name"`
	Nickname        string `json:"nickname,omitempty"`
	Phone           string `json:"phone,omitempty"`
	ProfileImageURL string `json:"profileImageUrl,omitempty"`
	Provider        string `json:"provider,omitempty"`
}

// Session is the current auth state. The zero value is an anonymous,
// idle session.
type Session struct {
	User          *Profile
	Authenticated bool
	Loading       bool
}

// Store holds the session for one logical scope (one server-rendered
// request, or one long-lived client). It is an explicit dependency of
// everything that reads or writes auth state; nothing reaches for a
// process-wide singleton.
type Store interface {
	Current() Session
	SetUser(*Profile)
	SetLoading(bool)
	Clear()
}

// MemoryStore is the standard Store implementation.
type MemoryStore struct {
	mu  sync.RWMutex
	cur Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Current() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur
}

// SetUser populates the session. A nil profile is ignored; use Clear to
// log out.
func (s *MemoryStore) SetUser(p *Profile) {
	if p == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur.User = p
	s.cur.Authenticated = true
}

func (s *MemoryStore) SetLoading(loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur.Loading = loading
}

func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur = Session{}
}
