package timeline

import (
	"fmt"
	"time"
)

// groupWindow es la ventana de agrupación, medida desde el ancla del grupo.
const groupWindow = 60 * time.Second

// Group bucketiza eventos canónicos (ya ordenados ascendente) en ventanas
// relativas al ancla: el primer evento sin agrupar abre el grupo y fija su
// timestamp; los siguientes entran mientras disten <= 60s de ESE ancla, no
// del evento anterior. Una deriva de eventos cada 50s queda en un solo grupo
// mientras no se aleje del primero.
func Group(events []TimedEvent) []TimelineGroup {
	groups := make([]TimelineGroup, 0)

	for _, te := range events {
		if len(groups) == 0 || te.At.Sub(groups[len(groups)-1].Timestamp) > groupWindow {
			groups = append(groups, TimelineGroup{Timestamp: te.At})
		}
		last := len(groups) - 1
		groups[last].Events = append(groups[last].Events, te)
	}

	for i := range groups {
		groups[i].Collapsed = collapseFor(groups[i].Events)
	}
	return groups
}

// collapseFor busca el primer kind repetido del grupo y lo resume. Un grupo
// lleva a lo sumo un colapso; los demás kinds repetidos quedan como están.
func collapseFor(events []TimedEvent) *Collapse {
	counts := make(map[EventKind]int, len(events))
	for _, te := range events {
		counts[te.Event.Kind]++
	}

	for _, te := range events {
		kind := te.Event.Kind
		n := counts[kind]
		if n < 2 {
			continue
		}

		c := &Collapse{Kind: kind, Count: n}
		if kind == KindCheckRun {
			pass, fail := checkOutcomes(events)
			c.Summary = fmt.Sprintf("%d check runs (%d✓ %d✗)", n, pass, fail)
		} else {
			c.Summary = fmt.Sprintf("%d %s events", n, kind)
		}
		return c
	}
	return nil
}

func checkOutcomes(events []TimedEvent) (pass, fail int) {
	for _, te := range events {
		if te.Event.Kind != KindCheckRun {
			continue
		}
		d, ok := te.Event.Details.(CheckRunDetails)
		if !ok {
			continue
		}
		switch d.Conclusion {
		case ConclusionSuccess:
			pass++
		case ConclusionFailure:
			fail++
		}
	}
	return pass, fail
}
