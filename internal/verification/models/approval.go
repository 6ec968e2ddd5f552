package models

import (
	"encoding/json"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ApprovalArtifact is the identity created by the provider on approval.
// Token is a bearer token for the new identity; TokenExpiresAt is read from
// its exp claim without verifying the signature.
type ApprovalArtifact struct {
	Success          bool       `json:"success"`
	UUID             string     `json:"uuid"`
	Token            string     `json:"token"`
	TotalScore       string     `json:"totalScore"`
	ExistingCustomer bool       `json:"existingCustomer"`
	TokenExpiresAt   *time.Time `json:"tokenExpiresAt,omitempty"`
}

// TokenExpiry decodes the exp claim of an identity token. Tokens that are not
// JWTs, or carry no exp, return nil.
func TokenExpiry(token string) *time.Time {
	if token == "" {
		return nil
	}
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return nil
	}
	if claims.ExpiresAt == nil {
		return nil
	}
	exp := claims.ExpiresAt.UTC()
	return &exp
}

// Ack is the body returned for every webhook and approve call.
// Exactly one of Data or Error is set.
type Ack struct {
	Timestamp string `json:"timestamp"`
	Success   bool   `json:"success"`
	Data      any    `json:"data,omitempty"`
	Error     string `json:"error,omitempty"`
}

// AckTimeLayout renders acknowledgement timestamps as "YYYY-MM-DD HH:MM:SS".
const AckTimeLayout = "2006-01-02 15:04:05"

// NewAck builds a success acknowledgement echoing data.
func NewAck(now time.Time, data any) Ack {
	if data == nil {
		data = json.RawMessage("null")
	}
	return Ack{Timestamp: now.UTC().Format(AckTimeLayout), Success: true, Data: data}
}

// NewFailedAck builds a failure acknowledgement.
func NewFailedAck(now time.Time, msg string) Ack {
	return Ack{Timestamp: now.UTC().Format(AckTimeLayout), Success: false, Error: msg}
}
