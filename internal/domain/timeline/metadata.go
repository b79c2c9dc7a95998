package timeline

// ResolveMetadata hace un único pase sobre las entregas (ya ordenadas
// ascendente) y arma la metadata vigente del PR a partir de las de tipo
// pull_request.
//
// Políticas por campo:
//   - title / author / created_at: se fijan con la PRIMERA entrega (first-wins)
//   - state / merged_at / closed_at: se pisan con cada entrega (last-wins)
//   - merged=true fuerza state=merged de forma permanente
//   - los head SHA de los push (synchronize) se acumulan y nunca se quitan
//
// ok=false únicamente cuando no hay NINGUNA entrega pull_request para la
// clave; que existan entregas de otros tipos no cuenta.
func ResolveMetadata(events []RawEvent) (PRMetadata, bool) {
	meta := PRMetadata{State: StateUnknown}

	seeded := false
	merged := false

	for _, re := range events {
		if re.EventType != RawTypePullRequest {
			continue
		}
		pr := decodePullRequest(re.Payload).PullRequest

		if !seeded {
			meta.Number = re.PRNumber
			meta.Repository = re.Repository
			meta.Title = pr.Title
			meta.Author = pr.User.Login
			if pr.CreatedAt != nil {
				meta.CreatedAt = *pr.CreatedAt
			}
			seeded = true
		}

		if pr.State != "" {
			meta.State = PRState(pr.State)
		}
		if pr.Merged {
			merged = true
		}
		if pr.MergedAt != nil {
			meta.MergedAt = pr.MergedAt
		}
		if pr.ClosedAt != nil {
			meta.ClosedAt = pr.ClosedAt
		}

		// solo los push aportan head SHAs: el head del opened no es un push,
		// por eso un PR recién abierto tiene total_commits == 0
		if re.Action == "synchronize" && pr.Head.SHA != "" {
			meta.addHeadSHA(pr.Head.SHA)
		}
	}

	if !seeded {
		return PRMetadata{}, false
	}
	if merged {
		meta.State = StateMerged
	}
	return meta, true
}
