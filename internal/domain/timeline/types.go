package timeline

// EventKind es el tipo canónico de un evento del timeline. Enum cerrado: el
// Extractor solo produce estos valores y el Presenter los agota en su switch.
type EventKind string

const (
	KindPROpened        EventKind = "pr_opened"
	KindPRClosed        EventKind = "pr_closed"
	KindPRMerged        EventKind = "pr_merged"
	KindPRReopened      EventKind = "pr_reopened"
	KindCommit          EventKind = "commit"
	KindReadyForReview  EventKind = "ready_for_review"
	KindReviewRequested EventKind = "review_requested"
	KindVerified        EventKind = "verified"
	KindApprovedLabel   EventKind = "approved_label"
	KindLGTM            EventKind = "lgtm"
	KindLabelAdded      EventKind = "label_added"
	KindLabelRemoved    EventKind = "label_removed"
	KindReviewApproved  EventKind = "review_approved"
	KindReviewChanges   EventKind = "review_changes"
	KindReviewComment   EventKind = "review_comment"
	KindComment         EventKind = "comment"
	KindCheckRun        EventKind = "check_run"
)

type PRState string

const (
	StateOpen    PRState = "open"
	StateClosed  PRState = "closed"
	StateMerged  PRState = "merged"
	StateUnknown PRState = "unknown"
)

// event_type crudos que el motor sabe proyectar
const (
	RawTypePullRequest  = "pull_request"
	RawTypeReview       = "pull_request_review"
	RawTypeIssueComment = "issue_comment"
	RawTypeCheckRun     = "check_run"
	RawTypeStatus       = "status"
)

const (
	CheckStatusCompleted = "completed"
	CheckStatusPending   = "pending"

	ConclusionSuccess = "success"
	ConclusionFailure = "failure"
)
