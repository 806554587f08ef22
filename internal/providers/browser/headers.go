package browser

import (
	"sort"
	"strings"
)

// Headers is the outgoing header set of a session. Names match
// case-insensitively and keep their first insertion position; the casing
// of the latest Set wins. Names and values are passed through unchecked.
type Headers struct {
	entries []headerEntry
	index   map[string]int
}

type headerEntry struct {
	name  string
	value string
}

// NewHeaders creates an empty header set
func NewHeaders() *Headers {
	return &Headers{index: make(map[string]int)}
}

// Set adds or replaces a header. An empty value removes it.
func (h *Headers) Set(name, value string) {
	if h.index == nil {
		h.index = make(map[string]int)
	}
	if value == "" {
		h.Del(name)
		return
	}
	if name == "" {
		return
	}

	key := strings.ToLower(name)
	if i, ok := h.index[key]; ok {
		h.entries[i] = headerEntry{name: name, value: value}
		return
	}

	h.index[key] = len(h.entries)
	h.entries = append(h.entries, headerEntry{name: name, value: value})
}

// Del removes a header
func (h *Headers) Del(name string) {
	key := strings.ToLower(name)
	i, ok := h.index[key]
	if !ok {
		return
	}

	h.entries = append(h.entries[:i], h.entries[i+1:]...)
	delete(h.index, key)
	for k, pos := range h.index {
		if pos > i {
			h.index[k] = pos - 1
		}
	}
}

// Merge sets every entry of m. Keys are applied in sorted order so new
// headers land in a deterministic position.
func (h *Headers) Merge(m map[string]string) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		h.Set(name, m[name])
	}
}

// Get returns the value of a header
func (h *Headers) Get(name string) (string, bool) {
	i, ok := h.index[strings.ToLower(name)]
	if !ok {
		return "", false
	}
	return h.entries[i].value, true
}

// Lines serializes the set as "Name: value" lines in insertion order
func (h *Headers) Lines() []string {
	lines := make([]string, 0, len(h.entries))
	for _, e := range h.entries {
		lines = append(lines, e.name+": "+e.value)
	}
	return lines
}

// Map returns a copy of the set keyed by the stored names
func (h *Headers) Map() map[string]string {
	out := make(map[string]string, len(h.entries))
	for _, e := range h.entries {
		out[e.name] = e.value
	}
	return out
}

func (h *Headers) Len() int {
	return len(h.entries)
}

// Clone returns an independent copy
func (h *Headers) Clone() *Headers {
	c := &Headers{
		entries: make([]headerEntry, len(h.entries)),
		index:   make(map[string]int, len(h.index)),
	}
	copy(c.entries, h.entries)
	for k, v := range h.index {
		c.index[k] = v
	}
	return c
}
