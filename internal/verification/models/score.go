package models

import "encoding/json"

// Verdict is the pass/fail reading of a provider score.
type Verdict string

const (
	VerdictPass Verdict = "OK"
	VerdictFail Verdict = "FAIL"
)

// Passed reports whether the verdict is a pass.
func (v Verdict) Passed() bool { return v == VerdictPass }

// scoreEnvelope captures the only part of the score document we act on.
// The provider returns much more (face match, liveness, document checks).
type scoreEnvelope struct {
	Overall *struct {
		Status *string `json:"status"`
	} `json:"overall"`
}

// InterpretScore returns VerdictPass iff overall.status is exactly "OK".
// Any other shape, including undecodable input, is a fail.
func InterpretScore(raw json.RawMessage) Verdict {
	var env scoreEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return VerdictFail
	}
	if env.Overall == nil || env.Overall.Status == nil {
		return VerdictFail
	}
	if *env.Overall.Status == string(VerdictPass) {
		return VerdictPass
	}
	return VerdictFail
}
