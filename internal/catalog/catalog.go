package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// InvalidInputError reports a path that could not be enrolled. The path is
// excluded from the catalog but reported back to the caller.
type InvalidInputError struct {
	Path   string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input %s: %s", e.Path, e.Reason)
}

// Catalog holds the enrolled media items for one session. Enrollment order
// is preserved; exports iterate it so output is independent of completion
// order.
type Catalog struct {
	mu    sync.RWMutex
	items map[string]*MediaItem // by id
	byKey map[string]string     // absolute path -> id
	order []string
}

// New creates an empty catalog.
func New() *Catalog {
	return &Catalog{
		items: make(map[string]*MediaItem),
		byKey: make(map[string]string),
	}
}

// Enroll validates each path and adds it to the catalog. Unsupported or
// unreadable paths are returned as InvalidInputError values, not silently
// dropped. Enrolling a path twice is idempotent: the existing item is
// returned again.
func (c *Catalog) Enroll(paths []string) ([]MediaItem, []*InvalidInputError) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var enrolled []MediaItem
	var rejected []*InvalidInputError

	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			rejected = append(rejected, &InvalidInputError{Path: p, Reason: err.Error()})
			continue
		}

		if id, ok := c.byKey[abs]; ok {
			enrolled = append(enrolled, *c.items[id])
			continue
		}

		kind, mime, ok := KindForPath(abs)
		if !ok {
			rejected = append(rejected, &InvalidInputError{Path: p, Reason: "unsupported media format"})
			continue
		}

		info, err := os.Stat(abs)
		if err != nil {
			rejected = append(rejected, &InvalidInputError{Path: p, Reason: "file is not readable"})
			continue
		}
		if info.IsDir() {
			rejected = append(rejected, &InvalidInputError{Path: p, Reason: "path is a directory"})
			continue
		}

		item := &MediaItem{
			ID:       uuid.NewString(),
			Path:     abs,
			Filename: filepath.Base(abs),
			Kind:     kind,
			MIMEType: mime,
			Status:   StatusPending,
		}
		c.items[item.ID] = item
		c.byKey[abs] = item.ID
		c.order = append(c.order, item.ID)
		enrolled = append(enrolled, *item)
	}

	for _, rej := range rejected {
		log.Warn().Str("path", rej.Path).Str("reason", rej.Reason).Msg("rejected input file")
	}

	return enrolled, rejected
}

// Get returns a copy of the item with the given id.
func (c *Catalog) Get(id string) (MediaItem, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	item, ok := c.items[id]
	if !ok {
		return MediaItem{}, false
	}
	return *item, true
}

// StatusOf returns the current status of an item.
func (c *Catalog) StatusOf(id string) (Status, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	item, ok := c.items[id]
	if !ok {
		return "", false
	}
	return item.Status, true
}

// Items returns copies of all enrolled items in enrollment order.
func (c *Catalog) Items() []MediaItem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]MediaItem, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, *c.items[id])
	}
	return out
}

// Mark transitions an item to the given status and records the last error,
// if any. Only the scheduler calls this.
func (c *Catalog) Mark(id string, status Status, errMsg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	item, ok := c.items[id]
	if !ok {
		return
	}
	item.Status = status
	item.LastErr = errMsg
}

// RecordAttempt increments the attempt counter for an item and returns the
// new count. Only the scheduler calls this.
func (c *Catalog) RecordAttempt(id string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	item, ok := c.items[id]
	if !ok {
		return 0
	}
	item.Attempts++
	return item.Attempts
}

// Reset returns a failed or cancelled item to pending so it can be enrolled
// in a fresh run. Items in any other state are left untouched.
func (c *Catalog) Reset(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	item, ok := c.items[id]
	if !ok {
		return false
	}
	if item.Status != StatusFailed && item.Status != StatusCancelled {
		return false
	}
	item.Status = StatusPending
	item.Attempts = 0
	item.LastErr = ""
	return true
}

// Len returns the number of enrolled items.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}
