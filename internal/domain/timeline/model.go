package timeline

import (
	"encoding/json"
	"time"
)

// RawEvent es una entrega de webhook tal como quedó en el log append-only.
// De solo lectura: el motor nunca la modifica.
type RawEvent struct {
	DeliveryID string
	EventType  string
	Action     string
	Payload    json.RawMessage
	OccurredAt time.Time
	Repository string
	PRNumber   int
}

// TimelineEvent es la proyección canónica de un RawEvent. El timestamp no
// viaja acá: lo hereda de la entrega que lo originó (ver TimedEvent).
type TimelineEvent struct {
	Kind             EventKind
	Actor            string
	Details          Details
	SourceDeliveryID string
}

// TimedEvent empareja el evento canónico con el occurred_at de su entrega.
type TimedEvent struct {
	At    time.Time
	Event TimelineEvent
}

// PRMetadata es la vista vigente del PR, armada en un único pase sobre las
// entregas pull_request. AllHeadSHAs solo crece durante el scan.
type PRMetadata struct {
	Number      int
	Repository  string
	Title       string
	Author      string
	State       PRState
	CreatedAt   time.Time
	MergedAt    *time.Time
	ClosedAt    *time.Time
	AllHeadSHAs []string
}

// Info proyecta la metadata al objeto pr de la respuesta.
func (m PRMetadata) Info() PRInfo {
	return PRInfo{
		Number:     m.Number,
		Repository: m.Repository,
		Title:      m.Title,
		State:      m.State,
		Merged:     m.State == StateMerged,
		Author:     m.Author,
		CreatedAt:  m.CreatedAt,
		MergedAt:   m.MergedAt,
		ClosedAt:   m.ClosedAt,
	}
}

func (m *PRMetadata) addHeadSHA(sha string) {
	for _, s := range m.AllHeadSHAs {
		if s == sha {
			return
		}
	}
	m.AllHeadSHAs = append(m.AllHeadSHAs, sha)
}

// CheckEntry es la vista deduplicada de un check, con clave (name, head_sha).
type CheckEntry struct {
	Name       string
	HeadSHA    string // forma corta de 7 caracteres
	Status     string
	Conclusion string // vacío = todavía sin conclusión
	DeliveryID string
	OccurredAt time.Time
}

// CheckGroup agrupa las entradas sobrevivientes por head SHA.
type CheckGroup struct {
	HeadSHA string
	Entries []CheckEntry
}

// Collapse resume N eventos repetidos del mismo kind dentro de un grupo.
type Collapse struct {
	Kind    EventKind
	Count   int
	Summary string
}

// TimelineGroup es una ventana de tiempo anclada en su primer evento.
// Lleva a lo sumo un colapso.
type TimelineGroup struct {
	Timestamp time.Time
	Events    []TimedEvent
	Collapsed *Collapse
}

type Summary struct {
	TotalCommits   int `json:"total_commits"`
	TotalReviews   int `json:"total_reviews"`
	TotalCheckRuns int `json:"total_check_runs"`
	TotalComments  int `json:"total_comments"`
}

type PRInfo struct {
	Number     int        `json:"number"`
	Repository string     `json:"repository"`
	Title      string     `json:"title"`
	State      PRState    `json:"state"`
	Merged     bool       `json:"merged"`
	Author     string     `json:"author"`
	CreatedAt  time.Time  `json:"created_at"`
	MergedAt   *time.Time `json:"merged_at"`
	ClosedAt   *time.Time `json:"closed_at"`
}

// DisplayEntry es una fila del timeline lista para mostrar.
type DisplayEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Kind      EventKind `json:"kind"`
	Actor     string    `json:"actor,omitempty"`
	Text      string    `json:"text"`
	Count     int       `json:"count"`
	Details   Details   `json:"details,omitempty"`
}

type Result struct {
	PR      PRInfo         `json:"pr"`
	Events  []DisplayEntry `json:"events"`
	Summary Summary        `json:"summary"`
}
