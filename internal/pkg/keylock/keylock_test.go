package keylock

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLockSerializesSameKey(t *testing.T) {
	m := New()

	var counter int
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Lock("book:1")
			counter++
			m.Unlock("book:1")
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
}

func TestDifferentKeysDoNotBlock(t *testing.T) {
	m := New()
	m.Lock("book:1")
	defer m.Unlock("book:1")

	done := make(chan struct{})
	go func() {
		m.Lock("book:2")
		m.Unlock("book:2")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on a different key blocked")
	}
}

func TestEntriesReleasedWhenUnheld(t *testing.T) {
	m := New()

	m.Lock("book:1")
	m.Lock("reader:1")
	m.Unlock("reader:1")
	m.Unlock("book:1")

	m.mu.Lock()
	defer m.mu.Unlock()
	assert.Empty(t, m.entries)
}

func TestUnlockUnheldPanics(t *testing.T) {
	m := New()
	assert.Panics(t, func() { m.Unlock("book:1") })
}

func TestKeyBuilders(t *testing.T) {
	assert.Equal(t, "book:42", BookKey(42))
	assert.Equal(t, "reader:7", ReaderKey(7))
	assert.NotEqual(t, BookKey(1), ReaderKey(1))
}
