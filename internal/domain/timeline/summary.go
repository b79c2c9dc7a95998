package timeline

// Summarize reduce los eventos canónicos a los contadores globales.
// Reducción pura e independiente del orden; la presentación no la altera.
func Summarize(events []TimedEvent, allHeadSHAs []string) Summary {
	s := Summary{TotalCommits: len(allHeadSHAs)}

	for _, te := range events {
		switch te.Event.Kind {
		case KindReviewApproved, KindReviewChanges, KindReviewComment:
			s.TotalReviews++
		case KindCheckRun:
			s.TotalCheckRuns++
		case KindComment:
			s.TotalComments++
		}
	}
	return s
}
