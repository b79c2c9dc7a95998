package timeline

import "fmt"

// Flatten aplana los grupos en la lista final para mostrar.
//
// Reglas de presentación (y nada más que presentación: los contadores del
// summary se calculan antes y acá no se tocan):
//   - corridas consecutivas de check runs se sub-agrupan por commit y salen
//     como un único nodo "N Check Runs (X✓ Y✗)" por commit por grupo
//   - si el grupo colapsó sobre otro kind, los N eventos repetidos salen
//     como un único nodo resumen; el resto sale individual
func Flatten(groups []TimelineGroup) []DisplayEntry {
	out := make([]DisplayEntry, 0)

	for _, g := range groups {
		collapsedEmitted := false

		for i := 0; i < len(g.Events); i++ {
			te := g.Events[i]

			if te.Event.Kind == KindCheckRun {
				j := i
				for j < len(g.Events) && g.Events[j].Event.Kind == KindCheckRun {
					j++
				}
				out = append(out, checkRunNodes(g.Events[i:j])...)
				i = j - 1
				continue
			}

			if c := g.Collapsed; c != nil && c.Kind == te.Event.Kind {
				if !collapsedEmitted {
					out = append(out, DisplayEntry{
						Timestamp: te.At,
						Kind:      c.Kind,
						Text:      c.Summary,
						Count:     c.Count,
					})
					collapsedEmitted = true
				}
				continue
			}

			out = append(out, DisplayEntry{
				Timestamp: te.At,
				Kind:      te.Event.Kind,
				Actor:     te.Event.Actor,
				Text:      entryText(te.Event),
				Count:     1,
				Details:   te.Event.Details,
			})
		}
	}
	return out
}

// checkRunNodes arma un nodo por commit para una corrida consecutiva de
// check runs, preservando el orden de primera aparición de cada SHA.
func checkRunNodes(run []TimedEvent) []DisplayEntry {
	type bucket struct {
		first TimedEvent
		count int
		pass  int
		fail  int
	}

	order := make([]string, 0, 1)
	buckets := make(map[string]*bucket)

	for _, te := range run {
		d, _ := te.Event.Details.(CheckRunDetails)
		b, ok := buckets[d.HeadSHA]
		if !ok {
			b = &bucket{first: te}
			buckets[d.HeadSHA] = b
			order = append(order, d.HeadSHA)
		}
		b.count++
		switch d.Conclusion {
		case ConclusionSuccess:
			b.pass++
		case ConclusionFailure:
			b.fail++
		}
	}

	out := make([]DisplayEntry, 0, len(order))
	for _, sha := range order {
		b := buckets[sha]
		out = append(out, DisplayEntry{
			Timestamp: b.first.At,
			Kind:      KindCheckRun,
			Text:      fmt.Sprintf("%d Check Runs (%d✓ %d✗)", b.count, b.pass, b.fail),
			Count:     b.count,
			Details:   CheckRunGroupDetails{HeadSHA: sha, Passed: b.pass, Failed: b.fail},
		})
	}
	return out
}

// entryText es el texto humano de un evento individual.
func entryText(e TimelineEvent) string {
	switch e.Kind {
	case KindPROpened:
		if d, ok := e.Details.(PROpenedDetails); ok && d.Draft {
			return "opened the pull request as draft"
		}
		return "opened the pull request"
	case KindPRClosed:
		return "closed the pull request"
	case KindPRMerged:
		return "merged the pull request"
	case KindPRReopened:
		return "reopened the pull request"
	case KindCommit:
		if d, ok := e.Details.(CommitDetails); ok && d.HeadSHA != "" {
			return fmt.Sprintf("pushed commits (%s)", d.HeadSHA)
		}
		return "pushed commits"
	case KindReadyForReview:
		return "marked the pull request as ready for review"
	case KindReviewRequested:
		if d, ok := e.Details.(ReviewRequestedDetails); ok && d.Reviewer != "" {
			return fmt.Sprintf("requested a review from %s", d.Reviewer)
		}
		return "requested a review"
	case KindVerified:
		return "marked as verified"
	case KindApprovedLabel:
		return "approved via label"
	case KindLGTM:
		return "signaled lgtm via label"
	case KindLabelAdded:
		if d, ok := e.Details.(LabelDetails); ok {
			return fmt.Sprintf("added label %q", d.Label)
		}
		return "added a label"
	case KindLabelRemoved:
		if d, ok := e.Details.(LabelDetails); ok {
			return fmt.Sprintf("removed label %q", d.Label)
		}
		return "removed a label"
	case KindReviewApproved:
		return "approved the changes"
	case KindReviewChanges:
		return "requested changes"
	case KindReviewComment:
		return "reviewed with comments"
	case KindComment:
		return "commented"
	case KindCheckRun:
		if d, ok := e.Details.(CheckRunDetails); ok {
			if d.Conclusion != "" {
				return fmt.Sprintf("check %s: %s", d.Name, d.Conclusion)
			}
			return fmt.Sprintf("check %s: %s", d.Name, d.Status)
		}
		return "check run"
	}
	return string(e.Kind)
}
