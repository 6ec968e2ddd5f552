// Package tracer provides a small tracing abstraction for the verification module.
//
// Services depend on the Tracer interface rather than OpenTelemetry directly.
// Implementations:
//   - NoopTracer: for tests
//   - OTelTracer: OpenTelemetry adapter for production
package tracer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Span represents an active trace span.
type Span interface {
	// End completes the span. A non-nil err marks the span as failed.
	// End must be called exactly once, typically via defer.
	End(err error)
	SetAttributes(attrs ...Attribute)
	AddEvent(name string, attrs ...Attribute)
}

// Tracer creates spans. Implementations must be safe for concurrent use.
type Tracer interface {
	// Start creates a new span; the returned context carries it.
	//
	// Example:
	//   ctx, span := tr.Start(ctx, tracer.SpanProviderCall,
	//       tracer.String(tracer.AttrOperation, "score"),
	//   )
	//   defer span.End(err)
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute is a key-value pair attached to spans.
type Attribute struct {
	Key   string
	Value any
}

func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

func Int64(key string, value int64) Attribute {
	return Attribute{Key: key, Value: value}
}

// Duration creates a duration attribute in milliseconds.
func Duration(key string, value time.Duration) Attribute {
	return Attribute{Key: key, Value: value.Milliseconds()}
}

// HashID returns a short SHA-256 digest of an identifier so traces can be
// correlated without carrying provider identifiers in clear.
func HashID(id string) string {
	if id == "" {
		return ""
	}
	hash := sha256.Sum256([]byte(id))
	return hex.EncodeToString(hash[:8])
}

// Span names.
const (
	SpanProviderCall    = "provider.call"
	SpanSessionStart    = "session.start"
	SpanWebhookProcess  = "webhook.process"
	SpanApprove         = "webhook.approve"
	SpanContractSign    = "contract.sign"
	SpanSessionStoreGet = "session.store.read"
)

// Attribute keys.
const (
	AttrOperation   = "provider.operation"
	AttrMethod      = "http.method"
	AttrPath        = "http.path"
	AttrStatusCode  = "http.status_code"
	AttrInterviewID = "interview_id_hash"
	AttrResumed     = "session.resumed"
	AttrState       = "webhook.state"
	AttrVerdict     = "score.verdict"
	AttrAsync       = "webhook.async"
)

// Event names.
const (
	EventStateTransition  = "state.transition"
	EventOutcomePublished = "outcome.published"
)
