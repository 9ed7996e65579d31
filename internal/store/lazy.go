package store

import (
	"context"
	"sync"

	"github.com/travelplaner/travelplaner/internal/model"
)

// OpenFunc opens a Store.
type OpenFunc func(ctx context.Context) (Store, error)

// Lazy defers opening the underlying Store until its first use, so no
// database connection is made for runs that fail before persisting.
type Lazy struct {
	open OpenFunc

	mu    sync.Mutex
	inner Store
}

// NewLazy returns a Store that calls open on first use.
func NewLazy(open OpenFunc) *Lazy {
	return &Lazy{open: open}
}

func (l *Lazy) get(ctx context.Context) (Store, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.inner != nil {
		return l.inner, nil
	}
	s, err := l.open(ctx)
	if err != nil {
		return nil, err
	}
	l.inner = s
	return s, nil
}

// Opened reports whether the underlying Store has been opened.
func (l *Lazy) Opened() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.inner != nil
}

// EnsureTable opens the Store if needed and creates the table.
func (l *Lazy) EnsureTable(ctx context.Context, table string) error {
	s, err := l.get(ctx)
	if err != nil {
		return err
	}
	return s.EnsureTable(ctx, table)
}

// Save opens the Store if needed and saves row.
func (l *Lazy) Save(ctx context.Context, table string, row *model.LocationRow) error {
	s, err := l.get(ctx)
	if err != nil {
		return err
	}
	return s.Save(ctx, table, row)
}

// List opens the Store if needed and lists rows.
func (l *Lazy) List(ctx context.Context, table string, limit int) ([]model.StoredLocation, error) {
	s, err := l.get(ctx)
	if err != nil {
		return nil, err
	}
	return s.List(ctx, table, limit)
}

// Close closes the underlying Store if it was opened.
func (l *Lazy) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.inner == nil {
		return nil
	}
	err := l.inner.Close()
	l.inner = nil
	return err
}
