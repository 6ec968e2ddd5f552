package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"

	"idflow/internal/platform/config"
	"idflow/internal/verification/metrics"
	"idflow/internal/verification/models"
	"idflow/internal/verification/tracer"
	dErrors "idflow/pkg/domain-errors"
)

// Provider endpoint paths.
const (
	PathStart            = "/omni/start"
	PathOnboardingURL    = "/0/omni/onboarding-url"
	PathOnboardingStatus = "/omni/get/onboarding/status"
	PathScore            = "/omni/get/score"
	PathApprove          = "/omni/process/approve"
	PathAuthVerify       = "/omni/authentication/verify"
	PathAddDocument      = "/omni/add/document/v2"
	PathAttachSignature  = "/omni/attach-signature-to-pdf/v2"
)

// Operation labels used in metrics and spans.
const (
	OpStart            = "start"
	OpOnboardingURL    = "onboarding_url"
	OpOnboardingStatus = "onboarding_status"
	OpScore            = "score"
	OpApprove          = "approve"
	OpAuthVerify       = "auth_verify"
	OpAddContract      = "add_contract"
	OpAttachSignature  = "attach_signature"
)

// API is the typed surface of the provider used by the verification service.
type API struct {
	client  *Client
	headers Headers
	cfg     config.ProviderConfig
	metrics *metrics.Metrics
	tracer  tracer.Tracer
}

// APIOption configures an API.
type APIOption func(*API)

func WithMetrics(m *metrics.Metrics) APIOption {
	return func(a *API) {
		a.metrics = m
	}
}

func WithTracer(t tracer.Tracer) APIOption {
	return func(a *API) {
		a.tracer = t
	}
}

func NewAPI(client *Client, cfg config.ProviderConfig, opts ...APIOption) *API {
	a := &API{client: client, headers: NewHeaders(cfg), cfg: cfg}
	for _, opt := range opts {
		opt(a)
	}
	if a.tracer == nil {
		a.tracer = tracer.NewNoop()
	}
	return a
}

type startRequest struct {
	ConfigurationID string `json:"configurationId"`
	CountryCode     string `json:"countryCode"`
	Language        string `json:"language"`
}

// StartSession opens a new onboarding session for the configured flow.
func (a *API) StartSession(ctx context.Context) (models.StartedSession, error) {
	var out models.StartedSession
	body := startRequest{
		ConfigurationID: a.cfg.FlowID,
		CountryCode:     a.cfg.CountryCode,
		Language:        a.cfg.Language,
	}
	err := a.call(ctx, OpStart, http.MethodPost, PathStart, func(ctx context.Context) error {
		return a.client.Post(ctx, PathStart, nil, body, a.headers.Default(), &out)
	})
	if err != nil {
		return models.StartedSession{}, err
	}
	if out.Token == "" || out.InterviewID == "" {
		return models.StartedSession{}, dErrors.New(dErrors.CodeMalformedUpstream, "start response is missing token or interviewId")
	}
	return out, nil
}

// OnboardingURL returns the hosted onboarding URL for a session token.
func (a *API) OnboardingURL(ctx context.Context, token string) (string, error) {
	var out struct {
		URL string `json:"url"`
	}
	err := a.call(ctx, OpOnboardingURL, http.MethodGet, PathOnboardingURL, func(ctx context.Context) error {
		return a.client.Get(ctx, PathOnboardingURL, nil, a.headers.For(SessionToken(token)), &out)
	})
	if err != nil {
		return "", err
	}
	if out.URL == "" {
		return "", dErrors.New(dErrors.CodeMalformedUpstream, "onboarding-url response is missing url")
	}
	return out.URL, nil
}

// OnboardingStatus returns the provider's onboarding status for an interview.
// A response without a status yields "".
func (a *API) OnboardingStatus(ctx context.Context, interviewID string) (string, error) {
	var out struct {
		OnboardingStatus string `json:"onboardingStatus"`
	}
	query := url.Values{"id": {interviewID}}
	err := a.call(ctx, OpOnboardingStatus, http.MethodGet, PathOnboardingStatus, func(ctx context.Context) error {
		return a.client.Get(ctx, PathOnboardingStatus, query, a.headers.For(Admin()), &out)
	})
	if err != nil {
		return "", err
	}
	return out.OnboardingStatus, nil
}

// FetchScore returns the raw score document for an interview.
func (a *API) FetchScore(ctx context.Context, interviewID string, cred Credential) (json.RawMessage, error) {
	var out json.RawMessage
	query := url.Values{"id": {interviewID}}
	err := a.call(ctx, OpScore, http.MethodGet, PathScore, func(ctx context.Context) error {
		return a.client.Get(ctx, PathScore, query, a.headers.For(cred), &out)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Approve turns a passed interview into an identity.
func (a *API) Approve(ctx context.Context, interviewID string) (models.ApprovalArtifact, error) {
	var out models.ApprovalArtifact
	query := url.Values{"interviewId": {interviewID}}
	err := a.call(ctx, OpApprove, http.MethodPost, PathApprove, func(ctx context.Context) error {
		return a.client.Post(ctx, PathApprove, query, struct{}{}, a.headers.For(Admin()), &out)
	})
	if err != nil {
		return models.ApprovalArtifact{}, err
	}
	out.TokenExpiresAt = models.TokenExpiry(out.Token)
	return out, nil
}

// VerifyAuthentication checks a face-authentication attempt.
func (a *API) VerifyAuthentication(ctx context.Context, attempt models.AuthAttempt) (json.RawMessage, error) {
	var out json.RawMessage
	err := a.call(ctx, OpAuthVerify, http.MethodPost, PathAuthVerify, func(ctx context.Context) error {
		return a.client.Post(ctx, PathAuthVerify, nil, attempt, a.headers.For(Admin()), &out)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// AddContract uploads a base64-encoded contract to the session.
func (a *API) AddContract(ctx context.Context, token, base64Doc string) (json.RawMessage, error) {
	var out json.RawMessage
	query := url.Values{"type": {"contract"}}
	body := models.ContractUpload{Base64Image: base64Doc}
	err := a.call(ctx, OpAddContract, http.MethodPost, PathAddDocument, func(ctx context.Context) error {
		return a.client.Post(ctx, PathAddDocument, query, body, a.headers.For(SessionToken(token)), &out)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// AttachSignature stamps the session's captured signature onto uploaded contracts.
func (a *API) AttachSignature(ctx context.Context, token string, req models.SignatureRequest) (json.RawMessage, error) {
	var out json.RawMessage
	err := a.call(ctx, OpAttachSignature, http.MethodPost, PathAttachSignature, func(ctx context.Context) error {
		return a.client.Post(ctx, PathAttachSignature, nil, req, a.headers.For(SessionToken(token)), &out)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (a *API) call(ctx context.Context, op, method, path string, fn func(context.Context) error) error {
	ctx, span := a.tracer.Start(ctx, tracer.SpanProviderCall,
		tracer.String(tracer.AttrOperation, op),
		tracer.String(tracer.AttrMethod, method),
		tracer.String(tracer.AttrPath, path),
	)
	start := time.Now()
	err := fn(ctx)

	outcome := "ok"
	if err != nil {
		outcome = string(Category(err))
		var te *TransportError
		if errors.As(err, &te) && te.StatusCode != 0 {
			span.SetAttributes(tracer.Int64(tracer.AttrStatusCode, int64(te.StatusCode)))
		}
	}
	a.metrics.ObserveProviderCall(op, outcome, time.Since(start).Seconds())
	span.End(err)
	return err
}
