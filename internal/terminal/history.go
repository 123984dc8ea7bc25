package terminal

import "strings"

// History keeps submitted commands and a cursor for up/down recall.
type History struct {
	entries []string
	pos     int
}

// Add appends a non-blank command and parks the cursor after the newest entry.
func (h *History) Add(cmd string) {
	if strings.TrimSpace(cmd) == "" {
		return
	}
	h.entries = append(h.entries, cmd)
	h.pos = len(h.entries)
}

// Previous moves the cursor back one entry and returns it. The cursor stops
// at the oldest entry. ok is false when the history is empty.
func (h *History) Previous() (cmd string, ok bool) {
	if len(h.entries) == 0 {
		return "", false
	}
	if h.pos > 0 {
		h.pos--
	}
	return h.entries[h.pos], true
}

// Next moves the cursor forward. Stepping past the newest entry returns an
// empty line, ready for fresh input.
func (h *History) Next() (cmd string, ok bool) {
	if len(h.entries) == 0 {
		return "", false
	}
	if h.pos < len(h.entries)-1 {
		h.pos++
		return h.entries[h.pos], true
	}
	h.pos = len(h.entries)
	return "", true
}

// All returns a copy of every entry, oldest first.
func (h *History) All() []string {
	return append([]string(nil), h.entries...)
}

// Reset parks the cursor after the newest entry.
func (h *History) Reset() { h.pos = len(h.entries) }
