package timeline

import (
	"encoding/json"
	"strings"
)

// maxCommentLen es el tope de caracteres del cuerpo de un comentario
// proyectado al timeline.
const maxCommentLen = 500

// Extract proyecta una entrega cruda a cero o más eventos canónicos.
// Función pura, sin I/O. Un (event_type, action) desconocido devuelve lista
// vacía: recibir algo que no sabemos proyectar nunca es un error.
func Extract(eventType, action string, payload json.RawMessage, deliveryID string) []TimelineEvent {
	switch eventType {
	case RawTypePullRequest:
		return extractPullRequest(action, payload, deliveryID)
	case RawTypeReview:
		return extractReview(action, payload, deliveryID)
	case RawTypeIssueComment:
		return extractIssueComment(action, payload, deliveryID)
	}
	return nil
}

func extractPullRequest(action string, payload json.RawMessage, deliveryID string) []TimelineEvent {
	p := decodePullRequest(payload)
	ev := TimelineEvent{Actor: p.Sender.Login, SourceDeliveryID: deliveryID}

	switch action {
	case "opened":
		ev.Kind = KindPROpened
		ev.Details = PROpenedDetails{Title: p.PullRequest.Title, Draft: p.PullRequest.Draft}
	case "closed":
		if p.PullRequest.Merged {
			ev.Kind = KindPRMerged
			ev.Details = PRMergedDetails{MergedBy: p.PullRequest.MergedBy.Login}
		} else {
			ev.Kind = KindPRClosed
			ev.Details = PRClosedDetails{}
		}
	case "reopened":
		ev.Kind = KindPRReopened
		ev.Details = PRReopenedDetails{}
	case "synchronize":
		ev.Kind = KindCommit
		ev.Details = CommitDetails{
			CommitsCount: p.PullRequest.Commits,
			HeadSHA:      shortSHA(p.PullRequest.Head.SHA),
		}
	case "ready_for_review":
		ev.Kind = KindReadyForReview
		ev.Details = ReadyForReviewDetails{}
	case "review_requested":
		ev.Kind = KindReviewRequested
		ev.Details = ReviewRequestedDetails{Reviewer: p.RequestedReviewer.Login}
	case "labeled":
		return []TimelineEvent{labelEvent(p, deliveryID)}
	case "unlabeled":
		ev.Kind = KindLabelRemoved
		ev.Details = LabelDetails{Label: p.Label.Name}
	default:
		return nil
	}

	return []TimelineEvent{ev}
}

// labelEvent ramifica por el texto de la etiqueta, en este orden de
// prioridad: verified > approved-* > lgtm-* > genérica. El orden solo pesa
// cuando varios patrones matchean a la vez y se conserva tal cual.
func labelEvent(p pullRequestPayload, deliveryID string) TimelineEvent {
	name := p.Label.Name

	switch {
	case strings.Contains(strings.ToLower(name), "verified"):
		return TimelineEvent{
			Kind:             KindVerified,
			Actor:            p.Sender.Login,
			Details:          VerifiedDetails{Label: name},
			SourceDeliveryID: deliveryID,
		}
	case strings.HasPrefix(name, "approved-"):
		// el actor viene codificado en la etiqueta, no en el sender
		return TimelineEvent{
			Kind:             KindApprovedLabel,
			Actor:            strings.TrimPrefix(name, "approved-"),
			Details:          ApprovedLabelDetails{},
			SourceDeliveryID: deliveryID,
		}
	case strings.HasPrefix(name, "lgtm-"):
		return TimelineEvent{
			Kind:             KindLGTM,
			Actor:            strings.TrimPrefix(name, "lgtm-"),
			Details:          LGTMDetails{},
			SourceDeliveryID: deliveryID,
		}
	}

	return TimelineEvent{
		Kind:             KindLabelAdded,
		Actor:            p.Sender.Login,
		Details:          LabelDetails{Label: name},
		SourceDeliveryID: deliveryID,
	}
}

func extractReview(action string, payload json.RawMessage, deliveryID string) []TimelineEvent {
	if action != "submitted" {
		return nil
	}
	p := decodeReview(payload)

	var kind EventKind
	switch p.Review.State {
	case "approved":
		kind = KindReviewApproved
	case "changes_requested":
		kind = KindReviewChanges
	case "commented":
		kind = KindReviewComment
	default:
		// estados como "dismissed" no aportan al timeline
		return nil
	}

	// el actor es quien escribió la review, no quien envió la entrega
	return []TimelineEvent{{
		Kind:             kind,
		Actor:            p.Review.User.Login,
		Details:          ReviewDetails{},
		SourceDeliveryID: deliveryID,
	}}
}

func extractIssueComment(action string, payload json.RawMessage, deliveryID string) []TimelineEvent {
	if action != "created" {
		return nil
	}
	p := decodeIssueComment(payload)

	// issue_comment llega también para issues comunes; solo interesa si el
	// issue padre trae el marcador de pull request
	if p.Issue.PullRequest == nil {
		return nil
	}

	body := p.Comment.Body
	truncated := false
	if runes := []rune(body); len(runes) > maxCommentLen {
		body = string(runes[:maxCommentLen])
		truncated = true
	}

	return []TimelineEvent{{
		Kind:             KindComment,
		Actor:            p.Comment.User.Login,
		Details:          CommentDetails{Body: body, Truncated: truncated},
		SourceDeliveryID: deliveryID,
	}}
}
