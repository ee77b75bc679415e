// Package audit appends lifecycle events for every engine operation.
// The trail is append-only; nothing in the engine updates or deletes
// an event once written.
package audit

import (
	"time"

	"memscope/pkg/domain"
)

// EventKind labels what happened. Denied attempts are first-class
// events, not annotations on the happy path.
type EventKind string

const (
	EventWrite          EventKind = "WRITE"
	EventRead           EventKind = "READ"
	EventReadDenied     EventKind = "READ_DENIED"
	EventContinue       EventKind = "CONTINUE"
	EventContinueDenied EventKind = "CONTINUE_DENIED"
	EventRevoke         EventKind = "REVOKE"
)

// Outcome is the coarse result recorded with every event.
type Outcome string

const (
	OutcomeOK     Outcome = "OK"
	OutcomeDenied Outcome = "DENIED"
	// OutcomeError marks an operation the policy allowed but
	// infrastructure failed, so allow decisions survive store outages.
	OutcomeError Outcome = "ERROR"
)

// Reason codes for denied and failed events. The trail keeps the
// precise reason even when the caller only saw a uniform denial.
const (
	ReasonPolicyDenied          = "POLICY_DENIED"
	ReasonGrantNotFound         = "GRANT_NOT_FOUND"
	ReasonGrantRevoked          = "GRANT_REVOKED"
	ReasonGrantExpired          = "GRANT_EXPIRED"
	ReasonInfrastructureFailure = "INFRASTRUCTURE_FAILURE"
)

// Event is one audit record. MemoryIDs and GrantID are references
// only; the trail never carries memory values or token material.
type Event struct {
	ID           domain.EventID
	Seq          int64 // assigned by the store on append
	Kind         EventKind
	UserID       domain.UserID
	Scope        domain.Scope
	Domain       string
	Purpose      string
	PurposeClass domain.PurposeClass
	MemoryIDs    []domain.MemoryID
	GrantID      domain.GrantID // nil UUID when no grant is involved
	Outcome      Outcome
	ReasonCode   string
	OccurredAt   time.Time
}
