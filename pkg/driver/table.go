package driver

import (
	"maps"
	"slices"

	"github.com/odvcencio/webdriverd/pkg/wire"
)

// Handler executes one command on the session worker. It must finish the response
// through resp, either before returning or from a deferred continuation.
type Handler func(s *Session, locator map[string]string, params wire.Params, resp *ResponseBuilder)

// Entry is a table row.
type Entry struct {
	Handler Handler
	// Navigates makes the worker wait for navigation to settle before responding.
	Navigates bool
}

// Table maps command codes to handlers. It is immutable after construction and safe to
// share across sessions.
type Table struct {
	entries map[wire.CommandCode]Entry
}

// NewTable copies entries into a table. Entries without a handler are dropped.
func NewTable(entries map[wire.CommandCode]Entry) *Table {
	t := &Table{entries: make(map[wire.CommandCode]Entry, len(entries))}
	for code, entry := range entries {
		if entry.Handler == nil {
			continue
		}
		t.entries[code] = entry
	}
	return t
}

// Lookup returns the entry for code.
func (t *Table) Lookup(code wire.CommandCode) (Entry, bool) {
	if t == nil {
		return Entry{}, false
	}
	entry, ok := t.entries[code]
	return entry, ok
}

// Codes returns the registered command codes in ascending order.
func (t *Table) Codes() []wire.CommandCode {
	if t == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(t.entries))
}
