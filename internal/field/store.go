package field

import (
	"sort"
	"sync"
)

// Field names read for an event.
const (
	AllDayEvent      = "all_day_event"
	IsRecurringEvent = "is_recurring_event"
	RecurringEvent   = "recurring_event"
	EventStartDate   = "event_start_date"
	EventEndDate     = "event_end_date"
)

// Members of the recurring_event record.
const (
	FirstDate = "first_date"
	LastDate  = "last_date"
)

// Fields holds the raw values of one event keyed by field name.
type Fields map[string]Value

// Store looks up a raw field value for an event. Missing events and missing
// fields both yield a null Value. Implementations must be safe for
// concurrent reads.
type Store interface {
	Field(name, eventID string) Value
}

// MemoryStore is an in-memory Store. Every event is owned by a named source
// (a fields file, a calendar feed) so a source can swap out its events
// without touching the others.
type MemoryStore struct {
	mu     sync.RWMutex
	events map[string]Fields
	owner  map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		events: make(map[string]Fields),
		owner:  make(map[string]string),
	}
}

func (s *MemoryStore) Field(name, eventID string) Value {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fields, ok := s.events[eventID]
	if !ok {
		return Null()
	}
	return fields[name]
}

// Put stores a single event under the given owner, replacing any previous
// fields for that id.
func (s *MemoryStore) Put(owner, eventID string, fields Fields) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[eventID] = cloneFields(fields)
	s.owner[eventID] = owner
}

// Replace drops every event currently owned by owner and stores events in
// their place. It returns the number of events removed.
func (s *MemoryStore) Replace(owner string, events map[string]Fields) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, o := range s.owner {
		if o != owner {
			continue
		}
		delete(s.events, id)
		delete(s.owner, id)
		removed++
	}
	for id, fields := range events {
		s.events[id] = cloneFields(fields)
		s.owner[id] = owner
	}
	return removed
}

// IDs returns all event ids in sorted order.
func (s *MemoryStore) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.events))
	for id := range s.events {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *MemoryStore) Has(eventID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.events[eventID]
	return ok
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}

// MapStore adapts a plain Fields map to Store. It serves a single ad-hoc
// event regardless of the requested id.
type MapStore Fields

func (m MapStore) Field(name, _ string) Value {
	return m[name]
}

func cloneFields(in Fields) Fields {
	out := make(Fields, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
