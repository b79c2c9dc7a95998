package timeline

import "context"

// EventStore es el log inmutable de entregas. El motor lo recibe inyectado
// en el constructor del Service, nunca de un handle global.
type EventStore interface {
	// FetchEventsForPR devuelve todas las entregas de un PR, ascendente por
	// occurred_at. Resultado vacío significa "no encontrado".
	FetchEventsForPR(ctx context.Context, repository string, prNumber int) ([]RawEvent, error)

	// FetchCheckRunEvents y FetchStatusEvents son las dos lecturas hermanas
	// de la fase 2. La correlación es por head SHA porque estas entregas no
	// traen número de PR.
	FetchCheckRunEvents(ctx context.Context, repository string, headSHAs []string) ([]RawEvent, error)
	FetchStatusEvents(ctx context.Context, repository string, headSHAs []string) ([]RawEvent, error)
}
