package profile

import (
	"sync"

	errs "github.com/uniadvisor/uniadvisor/internal/errors"
)

// Store maps user IDs to profiles.
//
// Each ID owns an entry with its own mutex: operations on different IDs
// never wait on each other, operations on the same ID are serialized. The
// map lock is held only to find or create entries.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

type entry struct {
	mu      sync.Mutex
	profile Profile
	set     bool
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{entries: make(map[string]*entry)}
}

// lookup returns the entry for id, or nil.
func (s *Store) lookup(id string) *entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entries[id]
}

func (s *Store) getOrCreate(id string) *entry {
	if e := s.lookup(id); e != nil {
		return e
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check after acquiring write lock
	if e, ok := s.entries[id]; ok {
		return e
	}
	e := &entry{}
	s.entries[id] = e
	return e
}

// Put stores p under id, replacing any earlier profile wholesale
// (history and feedback included).
func (s *Store) Put(id string, p Profile) {
	e := s.getOrCreate(id)
	e.mu.Lock()
	defer e.mu.Unlock()

	p = p.Clone()
	p.ID = id
	e.profile = p
	e.set = true
}

// Get returns a copy of the profile stored under id.
func (s *Store) Get(id string) (Profile, bool) {
	e := s.lookup(id)
	if e == nil {
		return Profile{}, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.set {
		return Profile{}, false
	}
	return e.profile.Clone(), true
}

// Update runs fn on the stored profile while holding the entry lock.
// Changes made by fn are kept. Returns ErrUnknownUser if id has no profile.
func (s *Store) Update(id string, fn func(*Profile) error) error {
	e := s.lookup(id)
	if e == nil {
		return errs.ErrUnknownUser
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.set {
		return errs.ErrUnknownUser
	}

	p := e.profile.Clone()
	if err := fn(&p); err != nil {
		return err
	}
	p.ID = id
	e.profile = p
	return nil
}

// AppendHistory adds one exchange to the end of the conversation history.
func (s *Store) AppendHistory(id string, ex Exchange) error {
	return s.Update(id, func(p *Profile) error {
		p.History = append(p.History, ex)
		return nil
	})
}

// AppendFeedback adds one feedback entry.
func (s *Store) AppendFeedback(id, text string) error {
	return s.Update(id, func(p *Profile) error {
		p.Feedback = append(p.Feedback, text)
		return nil
	})
}

// Len returns the number of stored profiles.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
