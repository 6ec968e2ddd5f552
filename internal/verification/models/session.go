package models

import (
	"github.com/google/uuid"

	dErrors "idflow/pkg/domain-errors"
)

// LocalID identifies a session to external callers. It is always a canonical
// lower-case UUID string so it can double as a storage key.
type LocalID string

// NewLocalID generates a fresh v4 identifier.
func NewLocalID() LocalID {
	return LocalID(uuid.New().String())
}

// ParseLocalID validates and canonicalizes a caller-supplied identifier.
// Anything that is not a UUID yields a not_found error: an identifier we could
// never have issued cannot name a stored session.
func ParseLocalID(s string) (LocalID, error) {
	id, err := uuid.Parse(s)
	if err != nil || len(s) != 36 {
		return "", dErrors.New(dErrors.CodeNotFound, "Invalid localId")
	}
	return LocalID(id.String()), nil
}

func (id LocalID) String() string { return string(id) }

// SessionRecord is the locally persisted state of one verification session.
// Token and InterviewID are provider-issued and never leave this service
// except for Token, which the browser widget needs to continue the flow.
type SessionRecord struct {
	Token       string  `json:"token"`
	InterviewID string  `json:"interviewId"`
	LocalID     LocalID `json:"uniqueId"`
}

// SessionHandle is what callers receive from start/resume.
type SessionHandle struct {
	Token   string  `json:"token"`
	LocalID LocalID `json:"localId"`
}

// StartedSession is the provider's answer to a session start request.
type StartedSession struct {
	Token       string `json:"token"`
	InterviewID string `json:"interviewId"`
}

// OnboardingLink is a one-shot session with its hosted onboarding URL.
type OnboardingLink struct {
	Token       string `json:"token"`
	InterviewID string `json:"interviewId"`
	URL         string `json:"url"`
}
