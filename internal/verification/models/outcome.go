package models

import "time"

// State is a step in webhook result processing.
type State string

const (
	StateReceived         State = "RECEIVED"
	StateScoring          State = "SCORING"
	StateScored           State = "SCORED"
	StatePassed           State = "PASSED"
	StateFailed           State = "FAILED"
	StateScoreUnavailable State = "SCORE_UNAVAILABLE"
	StateIgnored          State = "IGNORED"
)

// Terminal reports whether no further transition follows s.
func (s State) Terminal() bool {
	switch s {
	case StatePassed, StateFailed, StateScoreUnavailable, StateIgnored:
		return true
	}
	return false
}

// Outcome is the result of processing one webhook event.
type Outcome struct {
	InterviewID string
	State       State
	Verdict     Verdict
	Err         error
}

// OutcomeEvent is the message published when a session reaches a verdict.
type OutcomeEvent struct {
	InterviewID      string    `json:"interviewId"`
	State            State     `json:"state"`
	Verdict          Verdict   `json:"verdict"`
	IdentityUUID     string    `json:"identityUuid,omitempty"`
	ExistingCustomer bool      `json:"existingCustomer,omitempty"`
	OccurredAt       time.Time `json:"occurredAt"`
}
