package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"pr-insights/internal/domain/deliveries"
)

type DeliveriesRepo struct {
	db *sql.DB
}

func NewDeliveriesRepo(db *sql.DB) *DeliveriesRepo {
	return &DeliveriesRepo{db: db}
}

// Create inserta la entrega. El log es append-only: ante un delivery_id
// repetido no se pisa nada y se reporta ErrDuplicate.
func (r *DeliveriesRepo) Create(ctx context.Context, d deliveries.Delivery) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO webhook_deliveries (
			delivery_id, event_type, action,
			repository, pr_number, head_sha,
			payload, occurred_at, received_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (delivery_id) DO NOTHING
	`,
		d.DeliveryID,
		d.EventType,
		d.Action,
		d.Repository,
		nullableInt(d.PRNumber),
		nullableString(d.HeadSHA),
		[]byte(d.Payload),
		d.OccurredAt,
		d.ReceivedAt,
	)
	if err != nil {
		return err
	}

	n, _ := res.RowsAffected()
	if n == 0 {
		return deliveries.ErrDuplicate
	}
	return nil
}

func (r *DeliveriesRepo) ListByRepo(ctx context.Context, repository string, filter deliveries.ListFilter) ([]deliveries.Delivery, error) {
	repository = strings.TrimSpace(repository)
	if repository == "" {
		return nil, nil
	}

	sb := strings.Builder{}
	sb.WriteString(`
		SELECT
			delivery_id, event_type, COALESCE(action, ''),
			repository, pr_number, head_sha,
			payload, occurred_at, received_at
		FROM webhook_deliveries
		WHERE repository = $1
	`)

	args := []any{repository}
	argN := 2

	if len(filter.Types) > 0 {
		placeholders := make([]string, 0, len(filter.Types))
		for _, t := range filter.Types {
			placeholders = append(placeholders, fmt.Sprintf("$%d", argN))
			args = append(args, t)
			argN++
		}
		sb.WriteString(" AND event_type IN (" + strings.Join(placeholders, ",") + ")")
	}

	if filter.From != nil {
		sb.WriteString(fmt.Sprintf(" AND occurred_at >= $%d", argN))
		args = append(args, *filter.From)
		argN++
	}
	if filter.To != nil {
		sb.WriteString(fmt.Sprintf(" AND occurred_at <= $%d", argN))
		args = append(args, *filter.To)
		argN++
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}

	sb.WriteString(" ORDER BY occurred_at DESC")
	sb.WriteString(fmt.Sprintf(" LIMIT $%d", argN))
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]deliveries.Delivery, 0)
	for rows.Next() {
		var d deliveries.Delivery
		var prNumber sql.NullInt64
		var headSHA sql.NullString
		var payload []byte

		if err := rows.Scan(
			&d.DeliveryID,
			&d.EventType,
			&d.Action,
			&d.Repository,
			&prNumber,
			&headSHA,
			&payload,
			&d.OccurredAt,
			&d.ReceivedAt,
		); err != nil {
			return nil, err
		}

		d.PRNumber = int(prNumber.Int64)
		d.HeadSHA = headSHA.String
		d.Payload = payload

		out = append(out, d)
	}

	return out, rows.Err()
}

func nullableInt(n int) any {
	if n <= 0 {
		return nil
	}
	return n
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
