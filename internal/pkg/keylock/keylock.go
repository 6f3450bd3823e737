// Package keylock provides per-key mutual exclusion so that operations on
// different keys proceed in parallel while operations on the same key
// serialize. Entries are reference counted and removed when the last holder
// releases, keeping the map bounded by concurrent activity.
package keylock

import (
	"fmt"
	"sync"
)

type entry struct {
	mu   sync.Mutex
	refs int
}

// Map is a set of named mutexes.
type Map struct {
	mu      sync.Mutex
	entries map[string]*entry
}

// New creates an empty lock map.
func New() *Map {
	return &Map{entries: make(map[string]*entry)}
}

// Lock blocks until the mutex for key is held by the caller.
func (m *Map) Lock(key string) {
	m.mu.Lock()
	e, ok := m.entries[key]
	if !ok {
		e = &entry{}
		m.entries[key] = e
	}
	e.refs++
	m.mu.Unlock()

	e.mu.Lock()
}

// Unlock releases the mutex for key. It panics if the key is not held.
func (m *Map) Unlock(key string) {
	m.mu.Lock()
	e, ok := m.entries[key]
	if !ok {
		m.mu.Unlock()
		panic(fmt.Sprintf("keylock: unlock of unheld key %q", key))
	}
	e.refs--
	if e.refs == 0 {
		delete(m.entries, key)
	}
	m.mu.Unlock()

	e.mu.Unlock()
}

// BookKey builds the lock key for a book.
func BookKey(bookID uint) string {
	return fmt.Sprintf("book:%d", bookID)
}

// ReaderKey builds the lock key for a reader.
func ReaderKey(readerID uint) string {
	return fmt.Sprintf("reader:%d", readerID)
}
