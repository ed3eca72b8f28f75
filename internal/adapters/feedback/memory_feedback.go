package feedback

import (
	"context"
	"sync"

	"github.com/trustaware/phish-trust-filter/internal/core"
)

// MemoryFeedback keeps feedback entries in memory. Used by the CLI and by
// tests where durability does not matter.
type MemoryFeedback struct {
	mu      sync.Mutex
	entries []*core.FeedbackEntry
}

// NewMemoryFeedback creates a new in-memory feedback log
func NewMemoryFeedback() *MemoryFeedback {
	return &MemoryFeedback{}
}

// Append stores one feedback entry
func (f *MemoryFeedback) Append(_ context.Context, entry *core.FeedbackEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, entry)
	return nil
}

// Entries returns a copy of the recorded entries.
func (f *MemoryFeedback) Entries() []*core.FeedbackEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*core.FeedbackEntry, len(f.entries))
	copy(out, f.entries)
	return out
}
