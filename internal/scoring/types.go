// Package scoring is the client for the reputation scoring backend: job
// submission, job status, and the per-user score report.
package scoring

import "encoding/json"

// StatusDone is the only terminal job status.
const StatusDone = "done"

// IsTerminal reports whether status ends a job.
func IsTerminal(status string) bool { return status == StatusDone }

// LookupRequest asks the backend to resolve a handle and queue a scoring job.
type LookupRequest struct {
	Handle string `json:"handle"`
	Force  bool   `json:"force"` // bypass any cached result on the backend
}

// LookupResponse is returned once, synchronously, from a lookup.
type LookupResponse struct {
	DID    string `json:"did"`
	JobID  string `json:"jobId"`
	Status string `json:"status"`
}

// JobStatusUpdate is one poll result. Fields beyond these are ignored.
type JobStatusUpdate struct {
	JobID  string `json:"jobId,omitempty"`
	Status string `json:"status"`
}

// Facet is a subjective-logic opinion over one scoring dimension: evidence
// counts (alpha, beta) and belief, disbelief, uncertainty.
type Facet struct {
	Alpha float64 `json:"alpha"`
	Beta  float64 `json:"beta"`
	B     float64 `json:"b"`
	D     float64 `json:"d"`
	U     float64 `json:"u"`
}

// DefaultPriorWeight is the non-informative prior weight used when turning
// evidence counts into an opinion.
const DefaultPriorWeight = 2.0

// NewFacet converts positive and negative evidence counts into an opinion
// with prior weight w. A non-positive w falls back to DefaultPriorWeight.
func NewFacet(alpha, beta, w float64) *Facet {
	if w <= 0 {
		w = DefaultPriorWeight
	}
	total := alpha + beta + w
	return &Facet{Alpha: alpha, Beta: beta, B: alpha / total, D: beta / total, U: w / total}
}

// Expertise is a per-domain score.
type Expertise struct {
	Domain string  `json:"domain"`
	Score  float64 `json:"score"`
}

// Known facet names, rendered first and in this order.
const (
	FacetAccuracy = "accuracy"
	FacetCivility = "civility"
)

// ScoreReport is the body of GET /v1/user/{id}/scores. Every section may be
// absent; absent sections decode to zero values.
type ScoreReport struct {
	DID       string            `json:"did"`
	Handle    string            `json:"handle,omitempty"`
	UpdatedAt int64             `json:"updatedAt,omitempty"` // unix millis
	Facets    map[string]*Facet `json:"facets,omitempty"`
	BotProb   *float64          `json:"botProb,omitempty"`
	Expertise []Expertise       `json:"expertise,omitempty"`
	Evidence  []json.RawMessage `json:"evidence,omitempty"`
}

// Name returns the handle when known, otherwise the DID.
func (r *ScoreReport) Name() string {
	if r.Handle != "" {
		return r.Handle
	}
	return r.DID
}
