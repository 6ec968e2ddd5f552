package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"idflow/internal/verification/models"
	dErrors "idflow/pkg/domain-errors"
	"idflow/pkg/platform/httputil"
	"idflow/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

// Service defines the verification operations exposed over HTTP.
type Service interface {
	StartOrResume(ctx context.Context, localID string) (models.SessionHandle, error)
	OnboardingURL(ctx context.Context) (models.OnboardingLink, error)
	OnboardingStatus(ctx context.Context, interviewID string) (string, error)
	FetchScore(ctx context.Context, interviewID, token string) (models.Verdict, error)
	VerifyAuthentication(ctx context.Context, attempt models.AuthAttempt) (json.RawMessage, error)
	HandleWebhook(ctx context.Context, ev models.Event) models.Ack
	Approve(ctx context.Context, ev models.Event) models.Ack
	SignContract(ctx context.Context, req models.SignRequest) (models.SignedContract, error)
}

// HeaderToken carries the caller's session token on score requests.
const HeaderToken = "X-Token"

// Handler serves the verification endpoints.
type Handler struct {
	logger       *slog.Logger
	verification Service
}

// New creates a new verification Handler.
func New(verification Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:       logger,
		verification: verification,
	}
}

// Register registers the verification routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/start", h.HandleStart)
	r.Get("/onboarding-url", h.HandleOnboardingURL)
	r.Get("/onboarding-status", h.HandleOnboardingStatus)
	r.Get("/fetch-score", h.HandleFetchScore)
	r.Post("/webhook", h.HandleWebhook)
	r.Post("/approve", h.HandleApprove)
	r.Post("/auth", h.HandleAuth)
	r.Post("/sign-contract", h.HandleSignContract)
}

type onboardingURLResponse struct {
	Success     bool   `json:"success"`
	Token       string `json:"token"`
	InterviewID string `json:"interviewId"`
	URL         string `json:"url"`
}

type onboardingStatusResponse struct {
	Success          bool   `json:"success"`
	OnboardingStatus string `json:"onboardingStatus,omitempty"`
}

type scoreResponse struct {
	Success bool           `json:"success"`
	Score   models.Verdict `json:"score"`
}

// HandleStart resumes the session named by the localId query parameter, or
// starts a new one when none is given. uniqueId is accepted as an alias.
func (h *Handler) HandleStart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	localID := r.URL.Query().Get("localId")
	if localID == "" {
		localID = r.URL.Query().Get("uniqueId")
	}

	handle, err := h.verification.StartOrResume(ctx, localID)
	if err != nil {
		h.fail(ctx, w, "failed to start session", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, handle)
}

func (h *Handler) HandleOnboardingURL(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	link, err := h.verification.OnboardingURL(ctx)
	if err != nil {
		h.fail(ctx, w, "failed to create onboarding url", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, onboardingURLResponse{
		Success:     true,
		Token:       link.Token,
		InterviewID: link.InterviewID,
		URL:         link.URL,
	})
}

func (h *Handler) HandleOnboardingStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	status, err := h.verification.OnboardingStatus(ctx, r.URL.Query().Get("interviewId"))
	if err != nil {
		h.fail(ctx, w, "failed to fetch onboarding status", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, onboardingStatusResponse{Success: true, OnboardingStatus: status})
}

func (h *Handler) HandleFetchScore(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	verdict, err := h.verification.FetchScore(ctx, r.URL.Query().Get("interviewId"), r.Header.Get(HeaderToken))
	if err != nil {
		h.fail(ctx, w, "failed to fetch score", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, scoreResponse{Success: true, Score: verdict})
}

// HandleWebhook acknowledges a provider status callback. The sender always
// gets a 200; payloads that cannot be classified are acknowledged as failed.
func (h *Handler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ev, ok := h.decodeEvent(w, r)
	if !ok {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, h.verification.HandleWebhook(ctx, ev))
}

// HandleApprove is the webhook variant that creates the identity on a
// passing score. Business failures are reported in the body with a 200.
func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ev, ok := h.decodeEvent(w, r)
	if !ok {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, h.verification.Approve(ctx, ev))
}

func (h *Handler) HandleAuth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	attempt, ok := httputil.DecodeJSON[models.AuthAttempt](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	result, err := h.verification.VerifyAuthentication(ctx, *attempt)
	if err != nil {
		h.fail(ctx, w, "failed to verify authentication", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) HandleSignContract(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeJSON[models.SignRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	signed, err := h.verification.SignContract(ctx, *req)
	if err != nil {
		h.fail(ctx, w, "failed to sign contract", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, signed)
}

func (h *Handler) decodeEvent(w http.ResponseWriter, r *http.Request) (models.Event, bool) {
	ctx := r.Context()
	body, err := io.ReadAll(r.Body)
	if err == nil {
		var ev models.Event
		if ev, err = models.DecodeEvent(body); err == nil {
			return ev, true
		}
	}
	h.logger.WarnContext(ctx, "rejected webhook payload",
		"error", err,
		"request_id", requestcontext.RequestID(ctx),
	)
	httputil.WriteJSON(w, http.StatusOK, models.NewFailedAck(requestcontext.Now(ctx), err.Error()))
	return nil, false
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	level := slog.LevelError
	if dErrors.HasCode(err, dErrors.CodeValidation) || dErrors.HasCode(err, dErrors.CodeNotFound) {
		level = slog.LevelWarn
	}
	h.logger.Log(ctx, level, msg,
		"error", err,
		"request_id", requestcontext.RequestID(ctx),
	)
	httputil.WriteError(w, err)
}
