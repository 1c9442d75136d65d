// Package memory is the in-memory content calendar used when no Google
// Sheet is configured.
package memory

import (
	"context"
	"fmt"
	"sync"

	"cardgenius/internal/calendar"
	"cardgenius/internal/core"
)

type Store struct {
	mu   sync.Mutex
	rows []core.Post
}

var _ calendar.Writer = (*Store)(nil)

func New() *Store {
	return &Store{}
}

func (s *Store) AppendPublished(_ context.Context, post core.Post) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, post)
	return fmt.Sprintf("memory:%d", len(s.rows)), nil
}

// Rows returns a copy of everything appended so far.
func (s *Store) Rows() []core.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Post, len(s.rows))
	copy(out, s.rows)
	return out
}
