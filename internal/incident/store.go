package incident

import (
	"slices"
	"sync"
	"time"

	"basegraph.app/triage/internal/model"
)

// Key identifies an incident thread: "<channel or dm>::<topic or general>".
func Key(channel, topic *string) string {
	c, t := "dm", "general"
	if channel != nil && *channel != "" {
		c = *channel
	}
	if topic != nil && *topic != "" {
		t = *topic
	}
	return c + "::" + t
}

// Record is the triage state of one thread. History only grows.
type Record struct {
	Key       string
	Channel   *string
	Topic     *string
	CreatedAt time.Time

	mu          sync.Mutex
	lastSummary *string
	lastRequest *model.TriageRequest
	history     []string
	updatedAt   time.Time
}

func (r *Record) Update(summary string, req model.TriageRequest) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastSummary = &summary
	r.lastRequest = &req
	r.history = append(r.history, summary)
	r.updatedAt = time.Now()
}

func (r *Record) LastSummary() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.lastSummary == nil {
		return "", false
	}
	return *r.lastSummary, true
}

func (r *Record) LastRequest() (model.TriageRequest, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.lastRequest == nil {
		return model.TriageRequest{}, false
	}
	return *r.lastRequest, true
}

func (r *Record) History() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.history)
}

func (r *Record) UpdatedAt() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updatedAt.IsZero() {
		return r.CreatedAt
	}
	return r.updatedAt
}

// Store maps incident keys to records for the life of the process.
type Store struct {
	mu        sync.Mutex
	incidents map[string]*Record
	order     []string
	now       func() time.Time
}

func NewStore() *Store {
	return &Store{incidents: make(map[string]*Record), now: time.Now}
}

// GetOrCreate returns the record for the request's thread, creating it on
// first use. The same key always yields the same *Record.
func (s *Store) GetOrCreate(req model.TriageRequest) *Record {
	key := Key(req.Channel, req.Topic)

	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.incidents[key]; ok {
		return rec
	}
	rec := &Record{
		Key:       key,
		Channel:   clonePtr(req.Channel),
		Topic:     clonePtr(req.Topic),
		CreatedAt: s.now(),
	}
	s.incidents[key] = rec
	s.order = append(s.order, key)
	return rec
}

func (s *Store) Find(channel, topic *string) (*Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.incidents[Key(channel, topic)]
	return rec, ok
}

// List returns every record in creation order.
func (s *Store) List() []*Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Record, 0, len(s.order))
	for _, key := range s.order {
		out = append(out, s.incidents[key])
	}
	return out
}

func clonePtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
