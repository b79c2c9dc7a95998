package deliveries

import (
	"context"
	"time"
)

type Repository interface {
	// Create inserta la entrega; ErrDuplicate si el delivery_id ya existe.
	// El log nunca se actualiza ni se borra.
	Create(ctx context.Context, d Delivery) error
	ListByRepo(ctx context.Context, repository string, filter ListFilter) ([]Delivery, error)
}

type ListFilter struct {
	Types []string
	From  *time.Time
	To    *time.Time
	Limit int
}
