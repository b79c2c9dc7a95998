package timeline

import (
	"encoding/json"
	"time"
)

// Decoders parciales, uno por forma de payload. Nunca fallan: un campo
// ausente o mal tipado queda en su zero value y el resto del timeline sigue.

type userRef struct {
	Login string `json:"login"`
}

type pullRequestPayload struct {
	PullRequest struct {
		Number    int        `json:"number"`
		Title     string     `json:"title"`
		State     string     `json:"state"`
		Draft     bool       `json:"draft"`
		Merged    bool       `json:"merged"`
		Commits   int        `json:"commits"`
		CreatedAt *time.Time `json:"created_at"`
		MergedAt  *time.Time `json:"merged_at"`
		ClosedAt  *time.Time `json:"closed_at"`
		User      userRef    `json:"user"`
		MergedBy  userRef    `json:"merged_by"`
		Head      struct {
			SHA string `json:"sha"`
		} `json:"head"`
	} `json:"pull_request"`
	Label struct {
		Name string `json:"name"`
	} `json:"label"`
	RequestedReviewer userRef `json:"requested_reviewer"`
	Sender            userRef `json:"sender"`
}

func decodePullRequest(raw json.RawMessage) pullRequestPayload {
	var p pullRequestPayload
	_ = json.Unmarshal(raw, &p)
	return p
}

type reviewPayload struct {
	Review struct {
		State       string     `json:"state"`
		User        userRef    `json:"user"`
		SubmittedAt *time.Time `json:"submitted_at"`
	} `json:"review"`
	Sender userRef `json:"sender"`
}

func decodeReview(raw json.RawMessage) reviewPayload {
	var p reviewPayload
	_ = json.Unmarshal(raw, &p)
	return p
}

type issueCommentPayload struct {
	Issue struct {
		Number int `json:"number"`
		// presente solo cuando el issue padre es un pull request
		PullRequest *json.RawMessage `json:"pull_request"`
	} `json:"issue"`
	Comment struct {
		Body      string     `json:"body"`
		User      userRef    `json:"user"`
		CreatedAt *time.Time `json:"created_at"`
	} `json:"comment"`
	Sender userRef `json:"sender"`
}

func decodeIssueComment(raw json.RawMessage) issueCommentPayload {
	var p issueCommentPayload
	_ = json.Unmarshal(raw, &p)
	return p
}

type checkRunPayload struct {
	CheckRun struct {
		Name       string `json:"name"`
		HeadSHA    string `json:"head_sha"`
		Status     string `json:"status"`
		Conclusion string `json:"conclusion"`
	} `json:"check_run"`
	Sender userRef `json:"sender"`
}

func decodeCheckRun(raw json.RawMessage) checkRunPayload {
	var p checkRunPayload
	_ = json.Unmarshal(raw, &p)
	return p
}

// statusPayload es la notificación de commit status: la forma vieja de
// reportar CI, sin número de PR, solo con el SHA del commit.
type statusPayload struct {
	Context string  `json:"context"`
	State   string  `json:"state"`
	SHA     string  `json:"sha"`
	Sender  userRef `json:"sender"`
}

func decodeStatus(raw json.RawMessage) statusPayload {
	var p statusPayload
	_ = json.Unmarshal(raw, &p)
	return p
}

// shortSHA normaliza un SHA a la forma corta de 7 caracteres.
func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}
