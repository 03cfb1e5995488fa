package testhelpers

import (
	"io"
	"strings"
	"sync"
	"testing"
)

// Writer forwards log output to t.Log so that it is only shown for failing or verbose tests.
type Writer struct {
	t    testing.TB
	mu   sync.Mutex
	done bool
}

// NewWriter returns a Writer bound to t.
//
// Background goroutines such as the database optimizer may outlive the test by a moment. Their output after the test
// has finished is discarded because t.Log panics at that point.
func NewWriter(t testing.TB) io.Writer {
	w := &Writer{t: t, mu: sync.Mutex{}, done: false}
	t.Cleanup(func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		w.done = true
	})
	return w
}

func (w *Writer) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.done {
		return len(p), nil
	}
	if line := strings.TrimSuffix(string(p), "\n"); line != "" {
		w.t.Log(line)
	}
	return len(p), nil
}
