package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"idflow/internal/platform/config"
	"idflow/internal/verification/metrics"
	"idflow/internal/verification/models"
	"idflow/internal/verification/provider"
	"idflow/internal/verification/tracer"
	dErrors "idflow/pkg/domain-errors"
)

// SessionStore persists local session records.
// Error Contract:
// - Read returns not_found for malformed or unknown IDs and corrupt_record for unreadable data
// - Write returns wrapped infrastructure errors; callers log and continue
type SessionStore interface {
	Write(ctx context.Context, record models.SessionRecord) error
	Read(ctx context.Context, localID string) (models.SessionRecord, error)
}

// Provider is the remote verification API.
// Every failure to get a decoded 2xx response is a *provider.TransportError.
type Provider interface {
	StartSession(ctx context.Context) (models.StartedSession, error)
	OnboardingURL(ctx context.Context, token string) (string, error)
	OnboardingStatus(ctx context.Context, interviewID string) (string, error)
	FetchScore(ctx context.Context, interviewID string, cred provider.Credential) (json.RawMessage, error)
	Approve(ctx context.Context, interviewID string) (models.ApprovalArtifact, error)
	VerifyAuthentication(ctx context.Context, attempt models.AuthAttempt) (json.RawMessage, error)
	AddContract(ctx context.Context, token, base64Doc string) (json.RawMessage, error)
	AttachSignature(ctx context.Context, token string, req models.SignatureRequest) (json.RawMessage, error)
}

// OutcomePublisher announces verification verdicts to downstream systems.
type OutcomePublisher interface {
	Publish(ctx context.Context, event models.OutcomeEvent) error
}

type Option func(*Service)

// Service orchestrates verification sessions, webhook results and contract signing.
type Service struct {
	store     SessionStore
	provider  Provider
	publisher OutcomePublisher
	metrics   *metrics.Metrics
	tracer    tracer.Tracer
	logger    *slog.Logger
	contract  config.ContractConfig
	async     bool

	mu       sync.Mutex
	draining bool
	inflight sync.WaitGroup
}

func NewService(store SessionStore, prov Provider, logger *slog.Logger, opts ...Option) *Service {
	svc := &Service{
		store:    store,
		provider: prov,
		logger:   logger,
		contract: config.ContractConfig{
			Path: "contract.pdf",
			Placement: config.SignaturePlacement{
				X: 100, Y: 100, Height: 200, PageNumber: 1, Orientation: "ORIENTATION_NORMAL",
			},
		},
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.tracer == nil {
		svc.tracer = tracer.NewNoop()
	}
	if svc.logger == nil {
		svc.logger = slog.Default()
	}
	return svc
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

// WithPublisher sets where PASSED/FAILED outcomes are announced.
func WithPublisher(p OutcomePublisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

// WithContract configures the contract document and signature placement.
func WithContract(c config.ContractConfig) Option {
	return func(s *Service) {
		s.contract = c
	}
}

// WithAsyncWebhooks makes HandleWebhook acknowledge before scoring completes.
func WithAsyncWebhooks(async bool) Option {
	return func(s *Service) {
		s.async = async
	}
}

// Wait blocks until all webhook processing started so far has finished, or
// ctx is done. Webhooks handled after Wait is first called are processed
// before they are acknowledged.
func (s *Service) Wait(ctx context.Context) error {
	s.mu.Lock()
	s.draining = true
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// upstream tags provider failures for the HTTP boundary, keeping their message.
func upstream(err error) error {
	if err == nil {
		return nil
	}
	return dErrors.Wrap(err, dErrors.CodeUpstream, err.Error())
}
