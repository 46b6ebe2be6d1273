// Package search drives the access-controlled search pipeline: candidate
// lookup, per-patient access check, daily reward accrual, audit logging,
// relevance scoring and ranking. It is the one place where those pieces
// compose, so every collaborator is an interface and the orchestrator
// itself holds no state beyond its dependencies.
package search

import (
	"context"
	"errors"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/securehealth/record-exchange/internal/model"
	"github.com/securehealth/record-exchange/internal/scoring"
)

// RewardCents is the fixed amount credited to a patient for an allowed
// match, at most once per (hospital, patient) pair per day.
const RewardCents int64 = 50

// Redaction sentinels for denied rows. Denial hides content, not
// existence: the row is still returned and still scored.
const (
	DeniedName      = "Access Denied"
	DeniedCondition = "Patient has not granted access to this hospital"
)

// ErrEmptyQuery is returned when the query is empty or whitespace only.
var ErrEmptyQuery = errors.New("search query is required")

// HospitalIdentity is the authenticated caller, resolved server-side by
// the session gate. The name is what patient access grants are matched
// against.
type HospitalIdentity struct {
	ID   string
	Name string
}

// ResultRow is one patient in a search response. For denied rows the
// demographic fields are nil, the name and condition are fixed sentinels
// and the revenue reports as zero regardless of the true balance.
type ResultRow struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Age            *int    `json:"age"`
	Gender         *string `json:"gender"`
	Contact        *string `json:"contact"`
	Condition      string  `json:"problem"`
	Allowed        bool    `json:"allowed"`
	RewardGiven    bool    `json:"rewardGiven"`
	Revenue        float64 `json:"revenue"`
	RelevanceScore int     `json:"relevanceScore"`
}

// Response is the full search result: rows sorted by relevance score
// descending plus the original query.
type Response struct {
	Results []ResultRow `json:"results"`
	Query   string      `json:"query"`
}

// PatientSearcher supplies the candidate set for a query.
type PatientSearcher interface {
	SearchByCondition(ctx context.Context, query string) ([]model.Patient, error)
}

// RewardLedger performs the atomic once-per-day reward grant.
type RewardLedger interface {
	GrantIfEligible(ctx context.Context, patientID, hospitalID string, dayStart time.Time, amountCents int64) (int64, bool, error)
}

// AccessLogStore records one audit row per candidate considered and
// answers whether a reward was already logged for a pair within the
// current day.
type AccessLogStore interface {
	Create(ctx context.Context, l *model.AccessLog) error
	HasRewardSince(ctx context.Context, hospitalID, patientID string, since time.Time) (bool, error)
}

// EventPublisher forwards audit events to the async pipeline. Publish
// failures are the publisher's problem; the orchestrator ignores them.
type EventPublisher interface {
	PublishAccess(ctx context.Context, l model.AccessLog, hospitalName string)
}

// Orchestrator wires the search pipeline together. Events may be nil
// when no broker is configured. Now is injectable for tests and defaults
// to time.Now.
type Orchestrator struct {
	Patients PatientSearcher
	Ledger   RewardLedger
	Logs     AccessLogStore
	Scorer   scoring.Scorer
	Events   EventPublisher
	Now      func() time.Time
}

func NewOrchestrator(p PatientSearcher, led RewardLedger, logs AccessLogStore, sc scoring.Scorer, ev EventPublisher) *Orchestrator {
	return &Orchestrator{Patients: p, Ledger: led, Logs: logs, Scorer: sc, Events: ev}
}

// Search runs the full pipeline for an authenticated hospital. Candidates
// are patients whose condition text contains the query as a
// case-insensitive substring; each is access-checked, rewarded when
// eligible, audit-logged and scored independently. The day boundary is
// computed once per invocation so every reward check in one search uses
// the same cutoff.
func (o *Orchestrator) Search(ctx context.Context, query string, identity HospitalIdentity) (Response, error) {
	if strings.TrimSpace(query) == "" {
		return Response{}, ErrEmptyQuery
	}

	candidates, err := o.Patients.SearchByCondition(ctx, query)
	if err != nil {
		return Response{}, err
	}

	now := time.Now()
	if o.Now != nil {
		now = o.Now()
	}
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	rows := make([]ResultRow, 0, len(candidates))
	for i := range candidates {
		rows = append(rows, o.processCandidate(ctx, query, identity, &candidates[i], dayStart))
	}

	// Highest score first; SliceStable keeps the original candidate order
	// for ties.
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].RelevanceScore > rows[j].RelevanceScore
	})

	return Response{Results: rows, Query: query}, nil
}

func (o *Orchestrator) processCandidate(ctx context.Context, query string, identity HospitalIdentity, p *model.Patient, dayStart time.Time) ResultRow {
	allowed := hasGrant(p.AccessData, identity.Name)

	rewardGiven := false
	revenueCents := p.RevenueCents
	if allowed {
		// Fast path: a logged reward for this pair today means no grant
		// attempt. The unique key behind GrantIfEligible stays the
		// authority, so a failed or missing audit row only costs an
		// extra no-op transaction.
		already, err := o.Logs.HasRewardSince(ctx, identity.ID, p.ID, dayStart)
		if err != nil {
			log.Printf("search: reward lookup failed for patient %s: %v", p.ID, err)
			already = false
		}
		if !already {
			newCents, granted, err := o.Ledger.GrantIfEligible(ctx, p.ID, identity.ID, dayStart, RewardCents)
			if err != nil {
				// Never report a reward that was not durably written.
				log.Printf("search: reward grant failed for patient %s: %v", p.ID, err)
			} else {
				rewardGiven = granted
				revenueCents = newCents
			}
		}
	}

	entry := model.AccessLog{
		PatientID:   p.ID,
		HospitalID:  identity.ID,
		Allowed:     allowed,
		RewardGiven: rewardGiven,
		SearchQuery: query,
	}
	if err := o.Logs.Create(ctx, &entry); err != nil {
		// The row still goes back to the caller; the audit gap is logged
		// server-side.
		log.Printf("search: access log write failed for patient %s: %v", p.ID, err)
	} else if o.Events != nil {
		o.Events.PublishAccess(ctx, entry, identity.Name)
	}

	// Relevance is computed for denied patients too; only the payload is
	// gated by access, not the ranking signal.
	score := 0
	if p.Condition != "" {
		score = o.Scorer.Score(ctx, query, p.Condition).Score
	}

	row := ResultRow{
		ID:             p.ID,
		Allowed:        allowed,
		RewardGiven:    rewardGiven,
		RelevanceScore: score,
	}
	if allowed {
		row.Name = p.Name
		row.Age = p.Age
		row.Gender = p.Gender
		row.Contact = p.ContactNo
		row.Condition = p.Condition
		row.Revenue = float64(revenueCents) / 100.0
	} else {
		row.Name = DeniedName
		row.Condition = DeniedCondition
	}
	return row
}

// hasGrant reports whether hospitalName appears in the space-delimited
// grant set. Empty access data means nobody is allowed.
func hasGrant(accessData, hospitalName string) bool {
	for _, name := range strings.Fields(accessData) {
		if name == hospitalName {
			return true
		}
	}
	return false
}
