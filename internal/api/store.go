package api

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gastownhall/trustscore/internal/scoring"
)

// Job statuses served by the stub.
const (
	StatusQueued     = "queued"
	StatusProcessing = "processing"
	StatusUnknown    = "unknown"
)

// Job is one scoring job.
type Job struct {
	ID     string
	DID    string
	Handle string
	Status string
	Force  bool
	reads  int
}

// Store holds jobs and completed score reports in memory.
type Store struct {
	mu      sync.Mutex
	steps   int
	now     func() time.Time
	jobs    map[string]*Job
	reports map[string]*scoring.ScoreReport // keyed by DID and by handle
}

// NewStore creates an empty store whose jobs spend steps status reads in
// processing.
func NewStore(steps int) *Store {
	return &Store{
		steps:   steps,
		now:     time.Now,
		jobs:    make(map[string]*Job),
		reports: make(map[string]*scoring.ScoreReport),
	}
}

// Enqueue creates a queued job for handle and returns a copy of it.
func (s *Store) Enqueue(handle string, force bool) Job {
	j := &Job{
		ID:     uuid.NewString(),
		DID:    ResolveDID(handle),
		Handle: handle,
		Status: StatusQueued,
		Force:  force,
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[j.ID] = j
	return *j
}

// Advance moves job id one step toward done and returns its new status.
// The first read moves queued to processing; after steps reads in
// processing the job completes and its report is stored.
func (s *Store) Advance(id string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return "", false
	}
	switch j.Status {
	case scoring.StatusDone:
	case StatusQueued:
		if s.steps == 0 {
			s.completeLocked(j)
		} else {
			j.Status = StatusProcessing
			j.reads = 1
		}
	default:
		if j.reads >= s.steps {
			s.completeLocked(j)
		} else {
			j.reads++
		}
	}
	return j.Status, true
}

// Job returns a copy of job id.
func (s *Store) Job(id string) (Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return Job{}, false
	}
	return *j, true
}

// Report returns the stored report for a DID or handle.
func (s *Store) Report(id string) (*scoring.ScoreReport, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reports[id]
	return r, ok
}

func (s *Store) completeLocked(j *Job) {
	j.Status = scoring.StatusDone
	r := SyntheticReport(j.DID, j.Handle, s.now())
	s.reports[j.DID] = r
	s.reports[j.Handle] = r
}

// ResolveDID maps a handle to a stable did:plc identifier.
func ResolveDID(handle string) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(strings.ToLower(handle)))
	return fmt.Sprintf("did:plc:%016x", h.Sum64())
}

var expertiseDomains = []string{"politics", "science", "technology", "sports", "finance"}

// SyntheticReport builds a deterministic report for handle. Evidence counts,
// bot probability and expertise all derive from the handle so repeated
// lookups agree.
func SyntheticReport(did, handle string, at time.Time) *scoring.ScoreReport {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.ToLower(handle)))
	seed := h.Sum32()

	accAlpha := float64(seed % 11)
	accBeta := float64((seed >> 4) % 5)
	civAlpha := float64(10 + (seed>>8)%15)
	civBeta := float64((seed >> 12) % 3)
	bot := float64((seed>>16)%40) / 100

	var expertise []scoring.Expertise
	for i, d := range expertiseDomains {
		score := float64((seed>>uint(i*3))%100) / 100
		if score >= 0.5 {
			expertise = append(expertise, scoring.Expertise{Domain: d, Score: score})
		}
	}

	var evidence []json.RawMessage
	if accBeta > 0 {
		ev, _ := json.Marshal(map[string]any{
			"domain":         "politics",
			"classification": "contested",
			"evidenceRefs":   []string{},
		})
		evidence = append(evidence, ev)
	}

	return &scoring.ScoreReport{
		DID:       did,
		Handle:    handle,
		UpdatedAt: at.UnixMilli(),
		Facets: map[string]*scoring.Facet{
			scoring.FacetAccuracy: scoring.NewFacet(accAlpha, accBeta, scoring.DefaultPriorWeight),
			scoring.FacetCivility: scoring.NewFacet(civAlpha, civBeta, scoring.DefaultPriorWeight),
		},
		BotProb:   &bot,
		Expertise: expertise,
		Evidence:  evidence,
	}
}
