package timeline

import (
	"context"
	"errors"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
)

var (
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound es un valor sentinela, no una excepción: el caller decide
	// qué respuesta corresponde cuando el PR no existe en el log.
	ErrNotFound = errors.New("pull request not found")
)

// Service arma el timeline agregado de un PR. No guarda estado entre
// llamadas: cada Aggregate lee el log completo y computa todo de nuevo, por
// eso dos corridas sobre el mismo log dan exactamente el mismo resultado y
// varios callers concurrentes no se pisan.
type Service struct {
	store EventStore
}

func NewService(store EventStore) *Service {
	return &Service{store: store}
}

// Aggregate corre las dos fases del motor:
//
//	fase 1: una lectura bloqueante del log del PR (metadata + head SHAs)
//	fase 2: lecturas de check runs y statuses en paralelo, correlacionadas
//	        por head SHA
//
// Errores del store se propagan sin reintentos: la política de retry es del
// caller. Si el ctx se cancela a mitad de camino, las lecturas en vuelo se
// cancelan y no se devuelve resultado parcial.
func (s *Service) Aggregate(ctx context.Context, repository string, prNumber int) (Result, error) {
	if !validRepository(repository) || prNumber <= 0 {
		return Result{}, ErrInvalidInput
	}

	raw, err := s.store.FetchEventsForPR(ctx, repository, prNumber)
	if err != nil {
		return Result{}, err
	}

	meta, ok := ResolveMetadata(raw)
	if !ok {
		return Result{}, ErrNotFound
	}

	canonical := make([]TimedEvent, 0, len(raw))
	for _, re := range raw {
		for _, ev := range Extract(re.EventType, re.Action, re.Payload, re.DeliveryID) {
			canonical = append(canonical, TimedEvent{At: re.OccurredAt, Event: ev})
		}
	}

	// fase 2: sin head SHAs registrados no hay clave de correlación y el
	// fetch completo se saltea
	if len(meta.AllHeadSHAs) > 0 {
		var checkEvents, statusEvents []RawEvent

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			checkEvents, err = s.store.FetchCheckRunEvents(gctx, repository, meta.AllHeadSHAs)
			return err
		})
		g.Go(func() error {
			var err error
			statusEvents, err = s.store.FetchStatusEvents(gctx, repository, meta.AllHeadSHAs)
			return err
		})
		if err := g.Wait(); err != nil {
			return Result{}, err
		}

		for _, cg := range Reconcile(checkEvents, statusEvents) {
			for _, entry := range cg.Entries {
				canonical = append(canonical, TimedEvent{
					At: entry.OccurredAt,
					Event: TimelineEvent{
						Kind:             KindCheckRun,
						SourceDeliveryID: entry.DeliveryID,
						Details: CheckRunDetails{
							Name:       entry.Name,
							HeadSHA:    entry.HeadSHA,
							Status:     entry.Status,
							Conclusion: entry.Conclusion,
						},
					},
				})
			}
		}
	}

	sort.SliceStable(canonical, func(i, j int) bool {
		return canonical[i].At.Before(canonical[j].At)
	})

	groups := Group(canonical)

	return Result{
		PR:      meta.Info(),
		Events:  Flatten(groups),
		Summary: Summarize(canonical, meta.AllHeadSHAs),
	}, nil
}

// validRepository exige la forma "owner/repo": identificador opaco, pero
// bien formado.
func validRepository(repository string) bool {
	owner, name, ok := strings.Cut(repository, "/")
	return ok && strings.TrimSpace(owner) != "" && strings.TrimSpace(name) != ""
}
