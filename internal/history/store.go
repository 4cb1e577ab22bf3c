package history

import (
	"sync"

	"creative-studio/internal/generation"
)

const DefaultWindow = 5

// Store holds the three append-only sequences of one session.
type Store struct {
	mu                 sync.RWMutex
	chatTurns          []Entry
	storyEntries       []Entry
	imagePromptEntries []Entry
}

func NewStore() *Store {
	return &Store{}
}

func (s *Store) sequence(kind generation.Kind) (*[]Entry, error) {
	switch kind {
	case generation.Chat:
		return &s.chatTurns, nil
	case generation.Story:
		return &s.storyEntries, nil
	case generation.ImagePrompt:
		return &s.imagePromptEntries, nil
	}
	return nil, generation.ErrUnknownKind
}

func (s *Store) Append(kind generation.Kind, entries ...Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	seq, err := s.sequence(kind)
	if err != nil {
		return err
	}
	*seq = append(*seq, entries...)
	return nil
}

// Recent returns the last n entries, oldest first. n <= 0 returns every entry.
// The returned slice is a copy.
func (s *Store) Recent(kind generation.Kind, n int) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seq, err := s.sequence(kind)
	if err != nil {
		return nil, err
	}

	entries := *seq
	if n > 0 && len(entries) > n {
		entries = entries[len(entries)-n:]
	}

	out := make([]Entry, len(entries))
	copy(out, entries)
	return out, nil
}

func (s *Store) Len(kind generation.Kind) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seq, err := s.sequence(kind)
	if err != nil {
		return 0
	}
	return len(*seq)
}
