package session

import (
	"sync"
	"time"

	"fourcut-ai/internal/gemini"
)

// Inbox holds the selfies a user has sent but not yet turned into a batch.
type Inbox struct {
	UserID       int64
	Username     string
	Selfies      []gemini.ImageInput
	LastActivity time.Time
}

type Options struct {
	MaxSelfies int
}

type Store struct {
	mu         sync.Mutex
	inboxes    map[int64]*Inbox
	maxSelfies int
}

func NewStore(opts Options) *Store {
	maxSelfies := opts.MaxSelfies
	if maxSelfies <= 0 {
		maxSelfies = 4
	}

	return &Store{
		inboxes:    make(map[int64]*Inbox),
		maxSelfies: maxSelfies,
	}
}

func (s *Store) Clear(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if inbox, ok := s.inboxes[userID]; ok {
		inbox.Selfies = nil
		inbox.LastActivity = time.Now()
	}
}

// Add appends selfies to the user's inbox, dropping the oldest past the cap,
// and returns the new count.
func (s *Store) Add(userID int64, username string, selfies ...gemini.ImageInput) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	inbox := s.getOrCreateLocked(userID, username)
	inbox.LastActivity = time.Now()

	inbox.Selfies = append(inbox.Selfies, selfies...)
	if len(inbox.Selfies) > s.maxSelfies {
		inbox.Selfies = inbox.Selfies[len(inbox.Selfies)-s.maxSelfies:]
	}
	return len(inbox.Selfies)
}

// Snapshot returns a copy of the user's collected selfies.
func (s *Store) Snapshot(userID int64, username string) []gemini.ImageInput {
	s.mu.Lock()
	defer s.mu.Unlock()

	inbox := s.getOrCreateLocked(userID, username)
	inbox.LastActivity = time.Now()

	selfies := make([]gemini.ImageInput, len(inbox.Selfies))
	copy(selfies, inbox.Selfies)
	return selfies
}

func (s *Store) getOrCreateLocked(userID int64, username string) *Inbox {
	if inbox, ok := s.inboxes[userID]; ok {
		if inbox.Username == "" && username != "" {
			inbox.Username = username
		}
		return inbox
	}

	inbox := &Inbox{
		UserID:       userID,
		Username:     username,
		LastActivity: time.Now(),
	}
	s.inboxes[userID] = inbox
	return inbox
}
