package service

import (
	"context"
	"strings"
	"sync"

	"go-character-api/internal/event"
	"go-character-api/internal/model"
)

const defaultAuditCapacity = 1000

// AuditService keeps the most recent domain events in memory for the admin
// audit endpoint. Oldest entries are dropped once capacity is reached.
type AuditService struct {
	mu       sync.RWMutex
	capacity int
	entries  []model.AuditEntry
}

func NewAuditService(capacity int) *AuditService {
	if capacity <= 0 {
		capacity = defaultAuditCapacity
	}
	return &AuditService{capacity: capacity, entries: make([]model.AuditEntry, 0, capacity)}
}

// Start subscribes before returning, so events published right after it are
// never missed, and consumes them in the background.
func (s *AuditService) Start(ctx context.Context, bus event.Bus) {
	events, unsubscribe := bus.Subscribe()
	go s.consume(ctx, events, unsubscribe)
}

func (s *AuditService) consume(ctx context.Context, events <-chan event.Event, unsubscribe func()) {
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			s.Record(e)
		}
	}
}

func (s *AuditService) Record(e event.Event) {
	entry := model.AuditEntry{
		ID:         e.ID,
		Action:     string(e.Type),
		OccurredAt: e.Timestamp,
		Actor: model.AuditActor{
			UserID: e.Actor.UserID,
			Email:  e.Actor.Email,
			Role:   model.Role(e.Actor.Role),
		},
		Resource: e.Resource,
		Payload:  e.Payload,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.entries) == s.capacity {
		copy(s.entries, s.entries[1:])
		s.entries = s.entries[:len(s.entries)-1]
	}
	s.entries = append(s.entries, entry)
}

// Query returns matching entries newest first.
func (s *AuditService) Query(query model.AuditQuery) ([]model.AuditEntry, model.Meta) {
	if query.Page < 1 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 50
	}
	if query.Limit > 200 {
		query.Limit = 200
	}
	action := strings.ToLower(strings.TrimSpace(query.Action))

	s.mu.RLock()
	matched := make([]model.AuditEntry, 0, len(s.entries))
	for i := len(s.entries) - 1; i >= 0; i-- {
		entry := s.entries[i]
		if action != "" && strings.ToLower(entry.Action) != action {
			continue
		}
		matched = append(matched, entry)
	}
	s.mu.RUnlock()

	total := len(matched)
	totalPages := 0
	if total > 0 {
		totalPages = (total + query.Limit - 1) / query.Limit
	}

	// Compare page counts before multiplying so a huge page cannot overflow.
	start := total
	if query.Page-1 < totalPages {
		start = (query.Page - 1) * query.Limit
	}
	end := start + query.Limit
	if end > total {
		end = total
	}

	return matched[start:end], model.Meta{
		Page:       query.Page,
		Limit:      query.Limit,
		Total:      total,
		TotalPages: totalPages,
	}
}
