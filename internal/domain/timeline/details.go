package timeline

// Details es el payload tipado por kind de un TimelineEvent. Suma cerrada:
// cada forma implementa el marcador y nada más puede entrar al campo.
type Details interface{ timelineDetails() }

type PROpenedDetails struct {
	Title string `json:"title"`
	Draft bool   `json:"draft"`
}

type PRClosedDetails struct{}

type PRMergedDetails struct {
	MergedBy string `json:"merged_by,omitempty"`
}

type PRReopenedDetails struct{}

type CommitDetails struct {
	CommitsCount int    `json:"commits_count"`
	HeadSHA      string `json:"head_sha,omitempty"`
}

type ReadyForReviewDetails struct{}

type ReviewRequestedDetails struct {
	Reviewer string `json:"reviewer,omitempty"`
}

type VerifiedDetails struct {
	Label string `json:"label"`
}

// ApprovedLabelDetails y LGTMDetails no llevan campos: el usuario viene
// codificado en el texto de la etiqueta y se vuelca en el Actor del evento.
type ApprovedLabelDetails struct{}

type LGTMDetails struct{}

type LabelDetails struct {
	Label string `json:"label"`
}

type ReviewDetails struct{}

type CommentDetails struct {
	Body      string `json:"body"`
	Truncated bool   `json:"truncated,omitempty"`
}

type CheckRunDetails struct {
	Name       string `json:"name"`
	HeadSHA    string `json:"head_sha"`
	Status     string `json:"status"`
	Conclusion string `json:"conclusion,omitempty"`
}

// CheckRunGroupDetails es el detalle del nodo agregado de checks por commit
// que arma el Presenter.
type CheckRunGroupDetails struct {
	HeadSHA string `json:"head_sha"`
	Passed  int    `json:"passed"`
	Failed  int    `json:"failed"`
}

func (PROpenedDetails) timelineDetails()        {}
func (PRClosedDetails) timelineDetails()        {}
func (PRMergedDetails) timelineDetails()        {}
func (PRReopenedDetails) timelineDetails()      {}
func (CommitDetails) timelineDetails()          {}
func (ReadyForReviewDetails) timelineDetails()  {}
func (ReviewRequestedDetails) timelineDetails() {}
func (VerifiedDetails) timelineDetails()        {}
func (ApprovedLabelDetails) timelineDetails()   {}
func (LGTMDetails) timelineDetails()            {}
func (LabelDetails) timelineDetails()           {}
func (ReviewDetails) timelineDetails()          {}
func (CommentDetails) timelineDetails()         {}
func (CheckRunDetails) timelineDetails()        {}
func (CheckRunGroupDetails) timelineDetails()   {}
