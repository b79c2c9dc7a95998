package timeline

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"
)

// testStore es el event store de los tests del motor: devuelve lo que se le
// cargó y registra qué fetches se pidieron.
type testStore struct {
	prEvents     []RawEvent
	checkEvents  []RawEvent
	statusEvents []RawEvent

	prErr     error
	checkErr  error
	statusErr error

	checkCalls  int
	statusCalls int
	lastSHAs    []string
}

func (s *testStore) FetchEventsForPR(ctx context.Context, repository string, prNumber int) ([]RawEvent, error) {
	if s.prErr != nil {
		return nil, s.prErr
	}
	return s.prEvents, nil
}

func (s *testStore) FetchCheckRunEvents(ctx context.Context, repository string, headSHAs []string) ([]RawEvent, error) {
	s.checkCalls++
	s.lastSHAs = headSHAs
	if s.checkErr != nil {
		return nil, s.checkErr
	}
	return s.checkEvents, nil
}

func (s *testStore) FetchStatusEvents(ctx context.Context, repository string, headSHAs []string) ([]RawEvent, error) {
	s.statusCalls++
	if s.statusErr != nil {
		return nil, s.statusErr
	}
	return s.statusEvents, nil
}

func TestAggregate_FullLifecycle(t *testing.T) {
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	store := &testStore{
		prEvents: []RawEvent{
			rawPR("d-1", "opened", base, `{
				"pull_request": {
					"title": "Add caching",
					"state": "open",
					"user": {"login": "carol"},
					"created_at": "2024-03-01T10:00:00Z"
				},
				"sender": {"login": "carol"}
			}`),
			rawPR("d-2", "synchronize", base.Add(10*time.Minute), `{
				"pull_request": {"commits": 2, "head": {"sha": "`+shaA+`"}},
				"sender": {"login": "carol"}
			}`),
			{
				DeliveryID: "d-3",
				EventType:  RawTypeReview,
				Action:     "submitted",
				Payload:    json.RawMessage(`{"review": {"state": "approved", "user": {"login": "erin"}}}`),
				OccurredAt: base.Add(30 * time.Minute),
				Repository: "acme/widgets",
				PRNumber:   7,
			},
			rawPR("d-4", "closed", base.Add(time.Hour), `{
				"pull_request": {"state": "closed", "merged": true, "merged_by": {"login": "dave"}, "merged_at": "2024-03-01T11:00:00Z"},
				"sender": {"login": "dave"}
			}`),
		},
		checkEvents: []RawEvent{
			rawCheckRun("d-5", base.Add(12*time.Minute), "ci/build", shaA, "completed", "success"),
			rawCheckRun("d-6", base.Add(13*time.Minute), "ci/test", shaA, "completed", "failure"),
		},
	}

	res, err := NewService(store).Aggregate(context.Background(), "acme/widgets", 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.PR.Title != "Add caching" || res.PR.Author != "carol" {
		t.Fatalf("unexpected pr info: %#v", res.PR)
	}
	if res.PR.State != StateMerged || !res.PR.Merged {
		t.Fatalf("expected merged pr, got %#v", res.PR)
	}

	want := Summary{TotalCommits: 1, TotalReviews: 1, TotalCheckRuns: 2}
	if res.Summary != want {
		t.Fatalf("unexpected summary: got %#v, want %#v", res.Summary, want)
	}

	// opened, commit, un nodo de check runs, review, merged: en ese orden
	kinds := make([]EventKind, 0, len(res.Events))
	for _, e := range res.Events {
		kinds = append(kinds, e.Kind)
	}
	wantKinds := []EventKind{KindPROpened, KindCommit, KindCheckRun, KindReviewApproved, KindPRMerged}
	if !reflect.DeepEqual(kinds, wantKinds) {
		t.Fatalf("unexpected event order: got %v, want %v", kinds, wantKinds)
	}

	// los dos checks del mismo commit salen como un solo nodo
	for _, e := range res.Events {
		if e.Kind == KindCheckRun {
			if e.Text != "2 Check Runs (1✓ 1✗)" {
				t.Fatalf("unexpected check node text %q", e.Text)
			}
		}
	}

	if store.checkCalls != 1 || store.statusCalls != 1 {
		t.Fatalf("expected one fetch per sibling, got %d/%d", store.checkCalls, store.statusCalls)
	}
	if len(store.lastSHAs) != 1 || store.lastSHAs[0] != shaA {
		t.Fatalf("expected correlation by full head sha, got %v", store.lastSHAs)
	}
}

func TestAggregate_FreshPRHasZeroCommits(t *testing.T) {
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	// un PR recién abierto trae head.sha en el payload, pero sin push no hay
	// commits que contar ni clave para la fase 2
	store := &testStore{
		prEvents: []RawEvent{
			rawPR("d-1", "opened", base, `{
				"pull_request": {"title": "Fix typo", "state": "open", "head": {"sha": "`+shaA+`"}},
				"sender": {"login": "carol"}
			}`),
		},
	}

	res, err := NewService(store).Aggregate(context.Background(), "acme/widgets", 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Summary.TotalCommits != 0 {
		t.Fatalf("fresh pr should have 0 commits, got %d", res.Summary.TotalCommits)
	}
	if len(res.Events) != 1 || res.Events[0].Kind != KindPROpened {
		t.Fatalf("expected a single pr_opened node, got %#v", res.Events)
	}
	if store.checkCalls != 0 || store.statusCalls != 0 {
		t.Fatalf("phase 2 should be skipped without head SHAs")
	}
}

func TestAggregate_EventsWithinWindowShareGroup(t *testing.T) {
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	store := &testStore{
		prEvents: []RawEvent{
			rawPR("d-1", "opened", base, `{
				"pull_request": {"state": "open"}, "sender": {"login": "carol"}
			}`),
			{
				DeliveryID: "d-2",
				EventType:  RawTypeReview,
				Action:     "submitted",
				Payload:    json.RawMessage(`{"review": {"state": "approved", "user": {"login": "erin"}}}`),
				OccurredAt: base.Add(10 * time.Second),
				Repository: "acme/widgets",
				PRNumber:   7,
			},
		},
	}

	res, err := NewService(store).Aggregate(context.Background(), "acme/widgets", 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// kinds distintos a 10s de distancia: mismo grupo, nodos individuales
	if len(res.Events) != 2 {
		t.Fatalf("expected 2 nodes, got %#v", res.Events)
	}
	if res.Events[0].Count != 1 || res.Events[1].Count != 1 {
		t.Fatalf("distinct kinds should stay individual: %#v", res.Events)
	}
	if res.Summary.TotalReviews != 1 {
		t.Fatalf("expected 1 review, got %d", res.Summary.TotalReviews)
	}
}

func TestAggregate_DistinctLabelsDoNotCollapse(t *testing.T) {
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	store := &testStore{
		prEvents: []RawEvent{
			rawPR("d-1", "labeled", base, `{
				"label": {"name": "priority/high"}, "pull_request": {"state": "open"}, "sender": {"login": "carol"}
			}`),
			rawPR("d-2", "unlabeled", base.Add(5*time.Second), `{
				"label": {"name": "wip"}, "pull_request": {"state": "open"}, "sender": {"login": "carol"}
			}`),
		},
	}

	res, err := NewService(store).Aggregate(context.Background(), "acme/widgets", 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Events) != 2 {
		t.Fatalf("expected 2 individual nodes, got %#v", res.Events)
	}
	if res.Events[0].Text != `added label "priority/high"` {
		t.Fatalf("unexpected first text %q", res.Events[0].Text)
	}
	if res.Events[1].Text != `removed label "wip"` {
		t.Fatalf("unexpected second text %q", res.Events[1].Text)
	}
}

func TestAggregate_IsDeterministic(t *testing.T) {
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	store := &testStore{
		prEvents: []RawEvent{
			rawPR("d-1", "opened", base, `{"pull_request": {"state": "open"}, "sender": {"login": "carol"}}`),
			rawPR("d-2", "synchronize", base.Add(time.Minute), `{
				"pull_request": {"commits": 1, "head": {"sha": "`+shaA+`"}}, "sender": {"login": "carol"}
			}`),
		},
		checkEvents: []RawEvent{
			rawCheckRun("d-3", base.Add(2*time.Minute), "ci/build", shaA, "completed", "success"),
		},
	}
	svc := NewService(store)

	first, err := svc.Aggregate(context.Background(), "acme/widgets", 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.Aggregate(context.Background(), "acme/widgets", 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("same log should yield identical results:\n%#v\nvs\n%#v", first, second)
	}
}

func TestAggregate_InvalidInput(t *testing.T) {
	svc := NewService(&testStore{})

	cases := []struct {
		repo   string
		number int
	}{
		{"", 7},
		{"acme", 7},
		{"acme/", 7},
		{"/widgets", 7},
		{"acme/widgets", 0},
		{"acme/widgets", -1},
	}
	for _, tc := range cases {
		if _, err := svc.Aggregate(context.Background(), tc.repo, tc.number); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("repo=%q number=%d: expected ErrInvalidInput, got %v", tc.repo, tc.number, err)
		}
	}
}

func TestAggregate_NotFound(t *testing.T) {
	svc := NewService(&testStore{})
	if _, err := svc.Aggregate(context.Background(), "acme/widgets", 99); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAggregate_StoreErrorsPropagate(t *testing.T) {
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	boom := errors.New("store unavailable")

	svc := NewService(&testStore{prErr: boom})
	if _, err := svc.Aggregate(context.Background(), "acme/widgets", 7); !errors.Is(err, boom) {
		t.Fatalf("phase 1 error should propagate unchanged, got %v", err)
	}

	// fallo en una de las lecturas hermanas de la fase 2
	store := &testStore{
		prEvents: []RawEvent{
			rawPR("d-1", "opened", base, `{"pull_request": {"state": "open"}}`),
			rawPR("d-2", "synchronize", base.Add(time.Minute), `{
				"pull_request": {"head": {"sha": "`+shaA+`"}}
			}`),
		},
		statusErr: boom,
	}
	if _, err := NewService(store).Aggregate(context.Background(), "acme/widgets", 7); !errors.Is(err, boom) {
		t.Fatalf("phase 2 error should propagate unchanged, got %v", err)
	}
}
