package timeline

// Reconcile funde check_run y commit status (dos formas de notificación que
// describen el mismo hecho) en una vista única por (name, head_sha).
//
// La asimetría de sobreescritura se conserva tal cual se observa en los
// traces reales:
//   - check_run pisa SIEMPRE la entrada existente; las entregas vienen en
//     orden ascendente, así que gana la última procesada
//   - status pisa solo si su occurred_at es estrictamente más nuevo; es la
//     fuente de menor prioridad cuando ambas se intercalan
func Reconcile(checkRunEvents, statusEvents []RawEvent) []CheckGroup {
	type key struct{ name, sha string }

	entries := make(map[key]CheckEntry)
	order := make([]key, 0)

	record := func(k key, e CheckEntry) {
		if _, ok := entries[k]; !ok {
			order = append(order, k)
		}
		entries[k] = e
	}

	for _, re := range checkRunEvents {
		p := decodeCheckRun(re.Payload).CheckRun
		if p.Name == "" || p.HeadSHA == "" {
			continue
		}
		k := key{name: p.Name, sha: shortSHA(p.HeadSHA)}
		record(k, CheckEntry{
			Name:       p.Name,
			HeadSHA:    k.sha,
			Status:     p.Status,
			Conclusion: p.Conclusion,
			DeliveryID: re.DeliveryID,
			OccurredAt: re.OccurredAt,
		})
	}

	for _, re := range statusEvents {
		p := decodeStatus(re.Payload)
		if p.Context == "" || p.SHA == "" {
			continue
		}
		k := key{name: p.Context, sha: shortSHA(p.SHA)}

		if prev, ok := entries[k]; ok && !re.OccurredAt.After(prev.OccurredAt) {
			continue
		}

		status, conclusion := statusToCheck(p.State)
		record(k, CheckEntry{
			Name:       p.Context,
			HeadSHA:    k.sha,
			Status:     status,
			Conclusion: conclusion,
			DeliveryID: re.DeliveryID,
			OccurredAt: re.OccurredAt,
		})
	}

	// agrupar por head SHA preservando el orden de primera aparición
	index := make(map[string]int)
	groups := make([]CheckGroup, 0)
	for _, k := range order {
		e := entries[k]
		i, ok := index[e.HeadSHA]
		if !ok {
			i = len(groups)
			index[e.HeadSHA] = i
			groups = append(groups, CheckGroup{HeadSHA: e.HeadSHA})
		}
		groups[i].Entries = append(groups[i].Entries, e)
	}
	return groups
}

// statusToCheck traduce el state de un commit status a la forma de check run.
func statusToCheck(state string) (status, conclusion string) {
	switch state {
	case "success":
		return CheckStatusCompleted, ConclusionSuccess
	case "failure", "error":
		return CheckStatusCompleted, ConclusionFailure
	}
	return CheckStatusPending, ""
}
