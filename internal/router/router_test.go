package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(NewRouter(Options{}))
	t.Cleanup(srv.Close)
	return srv
}

func postDelivery(t *testing.T, srv *httptest.Server, eventType, deliveryID, payload string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/webhooks/github", strings.NewReader(payload))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-GitHub-Event", eventType)
	if deliveryID != "" {
		req.Header.Set("X-GitHub-Delivery", deliveryID)
	}

	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("post delivery: %v", err)
	}
	return resp
}

func TestIngestThenTimeline(t *testing.T) {
	srv := newTestServer(t)

	deliveries := []struct {
		id, eventType, payload string
	}{
		{"d-1", "pull_request", `{
			"action": "opened",
			"repository": {"full_name": "acme/widgets"},
			"pull_request": {
				"number": 7, "title": "Add caching", "state": "open",
				"user": {"login": "carol"},
				"created_at": "2024-03-01T10:00:00Z",
				"updated_at": "2024-03-01T10:00:00Z"
			},
			"sender": {"login": "carol"}
		}`},
		{"d-2", "pull_request", `{
			"action": "synchronize",
			"repository": {"full_name": "acme/widgets"},
			"pull_request": {
				"number": 7, "commits": 2,
				"head": {"sha": "aaaaaaaa11111111111111111111111111111111"},
				"updated_at": "2024-03-01T10:10:00Z"
			},
			"sender": {"login": "carol"}
		}`},
		{"d-3", "check_run", `{
			"action": "completed",
			"repository": {"full_name": "acme/widgets"},
			"check_run": {
				"name": "ci/build",
				"head_sha": "aaaaaaaa11111111111111111111111111111111",
				"status": "completed", "conclusion": "success",
				"started_at": "2024-03-01T10:12:00Z"
			}
		}`},
		{"d-4", "pull_request_review", `{
			"action": "submitted",
			"repository": {"full_name": "acme/widgets"},
			"pull_request": {"number": 7},
			"review": {"state": "approved", "user": {"login": "erin"}, "submitted_at": "2024-03-01T10:30:00Z"}
		}`},
	}

	for _, d := range deliveries {
		resp := postDelivery(t, srv, d.eventType, d.id, d.payload)
		if resp.StatusCode != http.StatusAccepted {
			t.Fatalf("delivery %s: expected 202, got %d", d.id, resp.StatusCode)
		}
		resp.Body.Close()
	}

	resp, err := srv.Client().Get(srv.URL + "/repos/acme/widgets/pulls/7/timeline")
	if err != nil {
		t.Fatalf("get timeline: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body struct {
		PR struct {
			Number int    `json:"number"`
			Title  string `json:"title"`
			State  string `json:"state"`
			Author string `json:"author"`
		} `json:"pr"`
		Events []struct {
			Kind  string `json:"kind"`
			Text  string `json:"text"`
			Count int    `json:"count"`
		} `json:"events"`
		Summary struct {
			TotalCommits   int `json:"total_commits"`
			TotalReviews   int `json:"total_reviews"`
			TotalCheckRuns int `json:"total_check_runs"`
			TotalComments  int `json:"total_comments"`
		} `json:"summary"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode timeline: %v", err)
	}

	if body.PR.Number != 7 || body.PR.Title != "Add caching" || body.PR.Author != "carol" {
		t.Fatalf("unexpected pr info: %+v", body.PR)
	}
	if body.Summary.TotalCommits != 1 || body.Summary.TotalReviews != 1 || body.Summary.TotalCheckRuns != 1 {
		t.Fatalf("unexpected summary: %+v", body.Summary)
	}

	kinds := make([]string, 0, len(body.Events))
	for _, e := range body.Events {
		kinds = append(kinds, e.Kind)
	}
	want := []string{"pr_opened", "commit", "check_run", "review_approved"}
	if len(kinds) != len(want) {
		t.Fatalf("expected kinds %v, got %v", want, kinds)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("event %d: expected %s, got %s", i, want[i], kinds[i])
		}
	}
}

func TestIngestDuplicateReturns200(t *testing.T) {
	srv := newTestServer(t)

	payload := `{"action": "opened", "repository": {"full_name": "acme/widgets"}, "pull_request": {"number": 7}}`

	first := postDelivery(t, srv, "pull_request", "dup-1", payload)
	defer first.Body.Close()
	if first.StatusCode != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", first.StatusCode)
	}

	second := postDelivery(t, srv, "pull_request", "dup-1", payload)
	defer second.Body.Close()
	if second.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for duplicate, got %d", second.StatusCode)
	}

	var out struct {
		DeliveryID string `json:"delivery_id"`
		Duplicate  bool   `json:"duplicate"`
	}
	if err := json.NewDecoder(second.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !out.Duplicate || out.DeliveryID != "dup-1" {
		t.Fatalf("unexpected duplicate response: %+v", out)
	}
}

func TestIngestRejectsMissingEventType(t *testing.T) {
	srv := newTestServer(t)

	resp := postDelivery(t, srv, "", "d-x", `{"action": "opened"}`)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestTimelineUnknownPRIs404(t *testing.T) {
	srv := newTestServer(t)

	resp, err := srv.Client().Get(srv.URL + "/repos/acme/widgets/pulls/999/timeline")
	if err != nil {
		t.Fatalf("get timeline: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestTimelineBadNumberIs400(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{
		"/repos/acme/widgets/pulls/abc/timeline",
		"/repos/acme/widgets/pulls/0/timeline",
		"/repos/acme/widgets/pulls/-3/timeline",
	} {
		resp, err := srv.Client().Get(srv.URL + path)
		if err != nil {
			t.Fatalf("get %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", path, resp.StatusCode)
		}
	}
}

func TestListDeliveries(t *testing.T) {
	srv := newTestServer(t)

	resp := postDelivery(t, srv, "pull_request", "l-1", `{
		"action": "opened",
		"repository": {"full_name": "acme/widgets"},
		"pull_request": {"number": 7, "updated_at": "2024-03-01T10:00:00Z"}
	}`)
	resp.Body.Close()
	resp = postDelivery(t, srv, "check_run", "l-2", `{
		"repository": {"full_name": "acme/widgets"},
		"check_run": {"name": "ci/build", "head_sha": "abc", "started_at": "2024-03-01T10:05:00Z"}
	}`)
	resp.Body.Close()

	got, err := srv.Client().Get(srv.URL + "/repos/acme/widgets/deliveries?types=check_run")
	if err != nil {
		t.Fatalf("list deliveries: %v", err)
	}
	defer got.Body.Close()
	if got.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", got.StatusCode)
	}

	var items []struct {
		DeliveryID string `json:"delivery_id"`
		EventType  string `json:"event_type"`
	}
	if err := json.NewDecoder(got.Body).Decode(&items); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(items) != 1 || items[0].DeliveryID != "l-2" || items[0].EventType != "check_run" {
		t.Fatalf("unexpected list: %+v", items)
	}
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	resp, err := srv.Client().Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("get health: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}
