package deliveries

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrDuplicate    = errors.New("delivery already exists")
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

type IngestInput struct {
	DeliveryID string
	EventType  string
	Payload    json.RawMessage
}

// envelope es el decode parcial del sobre común de los payloads. Cada campo
// es opcional: un payload incompleto no corta la ingesta.
type envelope struct {
	Action     string `json:"action"`
	Repository struct {
		FullName string `json:"full_name"`
	} `json:"repository"`
	PullRequest struct {
		Number    int        `json:"number"`
		UpdatedAt *time.Time `json:"updated_at"`
	} `json:"pull_request"`
	Issue struct {
		Number int `json:"number"`
	} `json:"issue"`
	Comment struct {
		CreatedAt *time.Time `json:"created_at"`
	} `json:"comment"`
	Review struct {
		SubmittedAt *time.Time `json:"submitted_at"`
	} `json:"review"`
	CheckRun struct {
		HeadSHA   string     `json:"head_sha"`
		StartedAt *time.Time `json:"started_at"`
	} `json:"check_run"`
	SHA       string     `json:"sha"`        // commit status
	UpdatedAt *time.Time `json:"updated_at"` // commit status
}

// Ingest registra una entrega en el log. Idempotente frente a la entrega
// at-least-once del sender: la misma entrega dos veces devuelve
// duplicate=true y no toca el log.
func (s *Service) Ingest(ctx context.Context, in IngestInput) (Delivery, bool, error) {
	if strings.TrimSpace(in.EventType) == "" {
		return Delivery{}, false, ErrInvalidInput
	}
	if len(in.Payload) == 0 || !json.Valid(in.Payload) {
		return Delivery{}, false, ErrInvalidInput
	}

	id := strings.TrimSpace(in.DeliveryID)
	if id == "" {
		// senders de dev no siempre mandan X-GitHub-Delivery
		id = uuid.NewString()
	}

	var env envelope
	_ = json.Unmarshal(in.Payload, &env)

	now := s.now()

	d := Delivery{
		DeliveryID: id,
		EventType:  in.EventType,
		Action:     env.Action,
		Repository: env.Repository.FullName,
		PRNumber:   prNumber(in.EventType, env),
		HeadSHA:    headSHA(in.EventType, env),
		Payload:    in.Payload,
		OccurredAt: occurredAt(in.EventType, env, now),
		ReceivedAt: now,
	}

	if err := s.repo.Create(ctx, d); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return d, true, nil
		}
		return Delivery{}, false, err
	}
	return d, false, nil
}

func (s *Service) ListByRepo(ctx context.Context, repository string, filter ListFilter) ([]Delivery, error) {
	if strings.TrimSpace(repository) == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByRepo(ctx, repository, filter)
}

func prNumber(eventType string, env envelope) int {
	if env.PullRequest.Number > 0 {
		return env.PullRequest.Number
	}
	// issue_comment referencia al PR vía el issue padre
	if eventType == "issue_comment" {
		return env.Issue.Number
	}
	return 0
}

func headSHA(eventType string, env envelope) string {
	switch eventType {
	case "check_run":
		return env.CheckRun.HeadSHA
	case "status":
		return env.SHA
	}
	return ""
}

// occurredAt prefiere el timestamp que trae el propio payload; si no hay,
// vale el momento de recepción.
func occurredAt(eventType string, env envelope, fallback time.Time) time.Time {
	var t *time.Time
	switch eventType {
	case "pull_request":
		t = env.PullRequest.UpdatedAt
	case "pull_request_review":
		t = env.Review.SubmittedAt
	case "issue_comment":
		t = env.Comment.CreatedAt
	case "check_run":
		t = env.CheckRun.StartedAt
	case "status":
		t = env.UpdatedAt
	}
	if t != nil && !t.IsZero() {
		return *t
	}
	return fallback
}
