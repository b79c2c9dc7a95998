package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"pr-insights/internal/domain/deliveries"
	"pr-insights/internal/domain/timeline"
)

// Store es el log de entregas en memoria para dev y tests. Implementa tanto
// el Repository de ingesta como el EventStore del motor, igual que la tabla
// webhook_deliveries en Postgres.
type Store struct {
	mu   sync.RWMutex
	byID map[string]deliveries.Delivery
}

func NewStore() *Store {
	return &Store{byID: make(map[string]deliveries.Delivery)}
}

func (s *Store) Create(ctx context.Context, d deliveries.Delivery) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if d.DeliveryID == "" {
		return errors.New("delivery id required")
	}
	if _, exists := s.byID[d.DeliveryID]; exists {
		return deliveries.ErrDuplicate
	}

	s.byID[d.DeliveryID] = d
	return nil
}

func (s *Store) ListByRepo(ctx context.Context, repository string, filter deliveries.ListFilter) ([]deliveries.Delivery, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	out := make([]deliveries.Delivery, 0)
	for _, d := range s.byID {
		if d.Repository != repository {
			continue
		}

		if len(filter.Types) > 0 {
			ok := false
			for _, t := range filter.Types {
				if d.EventType == t {
					ok = true
					break
				}
			}
			if !ok {
				continue
			}
		}

		if filter.From != nil && d.OccurredAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && d.OccurredAt.After(*filter.To) {
			continue
		}

		out = append(out, d)
	}

	// más reciente primero, como el listado en Postgres
	sort.Slice(out, func(i, j int) bool {
		return out[i].OccurredAt.After(out[j].OccurredAt)
	})

	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) FetchEventsForPR(ctx context.Context, repository string, prNumber int) ([]timeline.RawEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]timeline.RawEvent, 0)
	for _, d := range s.byID {
		if d.Repository != repository || d.PRNumber != prNumber {
			continue
		}
		out = append(out, toRawEvent(d))
	}

	sortRawEvents(out)
	return out, nil
}

func (s *Store) FetchCheckRunEvents(ctx context.Context, repository string, headSHAs []string) ([]timeline.RawEvent, error) {
	return s.fetchBySHAs(repository, "check_run", headSHAs)
}

func (s *Store) FetchStatusEvents(ctx context.Context, repository string, headSHAs []string) ([]timeline.RawEvent, error) {
	return s.fetchBySHAs(repository, "status", headSHAs)
}

func (s *Store) fetchBySHAs(repository, eventType string, headSHAs []string) ([]timeline.RawEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	want := make(map[string]struct{}, len(headSHAs))
	for _, sha := range headSHAs {
		want[strings.TrimSpace(sha)] = struct{}{}
	}

	out := make([]timeline.RawEvent, 0)
	for _, d := range s.byID {
		if d.Repository != repository || d.EventType != eventType {
			continue
		}
		if _, ok := want[d.HeadSHA]; !ok {
			continue
		}
		out = append(out, toRawEvent(d))
	}

	sortRawEvents(out)
	return out, nil
}

func toRawEvent(d deliveries.Delivery) timeline.RawEvent {
	return timeline.RawEvent{
		DeliveryID: d.DeliveryID,
		EventType:  d.EventType,
		Action:     d.Action,
		Payload:    d.Payload,
		OccurredAt: d.OccurredAt,
		Repository: d.Repository,
		PRNumber:   d.PRNumber,
	}
}

// sortRawEvents ordena ascendente por occurred_at; el delivery_id desempata
// para que el orden sea estable entre corridas.
func sortRawEvents(events []timeline.RawEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].OccurredAt.Equal(events[j].OccurredAt) {
			return events[i].DeliveryID < events[j].DeliveryID
		}
		return events[i].OccurredAt.Before(events[j].OccurredAt)
	})
}
