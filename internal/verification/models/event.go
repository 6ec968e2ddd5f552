package models

import (
	"bytes"
	"encoding/json"

	dErrors "idflow/pkg/domain-errors"
)

// OnboardingStatus is the provider's session status carried by webhooks.
type OnboardingStatus string

const StatusOnboardingFinished OnboardingStatus = "ONBOARDING_FINISHED"

// Event is a classified webhook payload. It is either a FinishedEvent, which
// drives scoring, or a StatusEvent, which is only acknowledged.
type Event interface {
	// Payload is the payload exactly as received, echoed back in acknowledgements.
	Payload() json.RawMessage
	Status() OnboardingStatus
	isEvent()
}

// FinishedEvent reports that the user completed onboarding.
type FinishedEvent struct {
	InterviewID string
	raw         json.RawMessage
}

func (e FinishedEvent) Payload() json.RawMessage { return e.raw }
func (e FinishedEvent) Status() OnboardingStatus { return StatusOnboardingFinished }
func (FinishedEvent) isEvent() {}

// StatusEvent is any non-terminal status update.
type StatusEvent struct {
	OnboardingStatus OnboardingStatus
	InterviewID      string
	raw              json.RawMessage
}

func (e StatusEvent) Payload() json.RawMessage { return e.raw }
func (e StatusEvent) Status() OnboardingStatus { return e.OnboardingStatus }
func (StatusEvent) isEvent() {}

type eventEnvelope struct {
	OnboardingStatus json.RawMessage `json:"onboardingStatus"`
	InterviewID      json.RawMessage `json:"interviewId"`
}

// DecodeEvent classifies a raw webhook body. Bodies that are not a JSON object,
// and finished events without an interview ID, are validation errors. Fields of
// unexpected types on other events are kept in the payload and ignored.
func DecodeEvent(raw []byte) (Event, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, dErrors.New(dErrors.CodeValidation, "webhook payload must be a JSON object")
	}
	var env eventEnvelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeValidation, "webhook payload is not valid JSON")
	}
	payload := json.RawMessage(append([]byte(nil), trimmed...))
	status, _ := stringField(env.OnboardingStatus)
	interviewID, _ := stringField(env.InterviewID)

	if OnboardingStatus(status) == StatusOnboardingFinished {
		if interviewID == "" {
			return nil, dErrors.New(dErrors.CodeValidation, "Missing required parameter interviewId")
		}
		return FinishedEvent{InterviewID: interviewID, raw: payload}, nil
	}
	return StatusEvent{
		OnboardingStatus: OnboardingStatus(status),
		InterviewID:      interviewID,
		raw:              payload,
	}, nil
}

// stringField returns raw as a string when it holds a JSON string.
func stringField(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 || raw[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}
