package models

import (
	"strings"

	"idflow/pkg/validation"
)

// AuthAttempt identifies a face-authentication attempt to verify with the provider.
type AuthAttempt struct {
	TransactionID  string `json:"transactionId" validate:"notblank"`
	Token          string `json:"token" validate:"notblank"`
	InterviewToken string `json:"interviewToken" validate:"notblank"`
}

func (a *AuthAttempt) Normalize() {
	a.TransactionID = strings.TrimSpace(a.TransactionID)
	a.Token = strings.TrimSpace(a.Token)
	a.InterviewToken = strings.TrimSpace(a.InterviewToken)
}

func (a *AuthAttempt) Validate() error {
	return validation.Validate(a)
}
