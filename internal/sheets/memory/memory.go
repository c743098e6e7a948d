package memory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"salarycalc/internal/export"
	ports "salarycalc/internal/sheets"
)

var _ ports.TableExporter = (*Store)(nil)

// Exported is one table held by the Store.
type Exported struct {
	Ref   string
	Title string
	Table export.Table
}

// Store keeps exported tables in memory. It is selected with
// EXPORT_TARGET=memory and loses everything when the process exits.
type Store struct {
	mu     sync.Mutex
	tables []Exported
}

func New() *Store {
	return &Store{}
}

// Export stores the table and returns a synthetic reference. Exporting a
// title again replaces its table and keeps its reference.
func (s *Store) Export(_ context.Context, title string, table export.Table) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", errors.New("empty export title")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.tables {
		if t.Title == title {
			s.tables[i].Table = table
			return t.Ref, nil
		}
	}
	ref := fmt.Sprintf("mem:%d", len(s.tables)+1)
	s.tables = append(s.tables, Exported{Ref: ref, Title: title, Table: table})
	return ref, nil
}

// Tables returns a snapshot of everything exported so far, oldest first.
func (s *Store) Tables() []Exported {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Exported(nil), s.tables...)
}
