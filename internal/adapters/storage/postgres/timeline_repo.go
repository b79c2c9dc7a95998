package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"pr-insights/internal/domain/timeline"
)

// TimelineRepo expone el log de entregas como EventStore del motor de
// agregación. Solo lecturas, siempre ascendente por occurred_at; received_at
// desempata entregas simultáneas para que el orden sea estable.
type TimelineRepo struct {
	db *sql.DB
}

func NewTimelineRepo(db *sql.DB) *TimelineRepo {
	return &TimelineRepo{db: db}
}

func (r *TimelineRepo) FetchEventsForPR(ctx context.Context, repository string, prNumber int) ([]timeline.RawEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT delivery_id, event_type, COALESCE(action, ''),
		       repository, COALESCE(pr_number, 0), payload, occurred_at
		FROM webhook_deliveries
		WHERE repository = $1 AND pr_number = $2
		ORDER BY occurred_at ASC, received_at ASC
	`, repository, prNumber)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRawEvents(rows)
}

func (r *TimelineRepo) FetchCheckRunEvents(ctx context.Context, repository string, headSHAs []string) ([]timeline.RawEvent, error) {
	return r.fetchBySHAs(ctx, repository, "check_run", headSHAs)
}

func (r *TimelineRepo) FetchStatusEvents(ctx context.Context, repository string, headSHAs []string) ([]timeline.RawEvent, error) {
	return r.fetchBySHAs(ctx, repository, "status", headSHAs)
}

// fetchBySHAs correlaciona por head SHA: estas entregas no traen número de PR.
func (r *TimelineRepo) fetchBySHAs(ctx context.Context, repository, eventType string, headSHAs []string) ([]timeline.RawEvent, error) {
	if len(headSHAs) == 0 {
		return nil, nil
	}

	placeholders := make([]string, 0, len(headSHAs))
	args := []any{repository, eventType}
	argN := 3
	for _, sha := range headSHAs {
		placeholders = append(placeholders, fmt.Sprintf("$%d", argN))
		args = append(args, sha)
		argN++
	}

	q := `
		SELECT delivery_id, event_type, COALESCE(action, ''),
		       repository, COALESCE(pr_number, 0), payload, occurred_at
		FROM webhook_deliveries
		WHERE repository = $1 AND event_type = $2
		  AND head_sha IN (` + strings.Join(placeholders, ",") + `)
		ORDER BY occurred_at ASC, received_at ASC`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRawEvents(rows)
}

func scanRawEvents(rows *sql.Rows) ([]timeline.RawEvent, error) {
	out := make([]timeline.RawEvent, 0)
	for rows.Next() {
		var re timeline.RawEvent
		var payload []byte

		if err := rows.Scan(
			&re.DeliveryID,
			&re.EventType,
			&re.Action,
			&re.Repository,
			&re.PRNumber,
			&payload,
			&re.OccurredAt,
		); err != nil {
			return nil, err
		}

		re.Payload = payload
		out = append(out, re)
	}
	return out, rows.Err()
}
