package service

import (
	"context"
	"encoding/json"
	"errors"

	"idflow/internal/verification/models"
	"idflow/internal/verification/provider"
	"idflow/internal/verification/tracer"
	dErrors "idflow/pkg/domain-errors"
	"idflow/pkg/requestcontext"
)

// StartOrResume returns the stored session for localID, or creates a new one
// when localID is empty. Resume never contacts the provider and never falls
// back to creating a session.
func (s *Service) StartOrResume(ctx context.Context, localID string) (models.SessionHandle, error) {
	if localID != "" {
		return s.resume(ctx, localID)
	}

	ctx, span := s.tracer.Start(ctx, tracer.SpanSessionStart, tracer.Bool(tracer.AttrResumed, false))
	started, err := s.provider.StartSession(ctx)
	if err != nil {
		span.End(err)
		s.logger.ErrorContext(ctx, "failed to start verification session",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return models.SessionHandle{}, upstream(err)
	}
	span.SetAttributes(tracer.String(tracer.AttrInterviewID, tracer.HashID(started.InterviewID)))
	span.End(nil)

	id := models.NewLocalID()
	s.persist(ctx, models.SessionRecord{
		Token:       started.Token,
		InterviewID: started.InterviewID,
		LocalID:     id,
	})
	s.metrics.IncrementSessionsStarted()
	s.logger.InfoContext(ctx, "verification session started",
		"local_id", id.String(),
		"interview_id", started.InterviewID,
		"request_id", requestcontext.RequestID(ctx),
	)
	return models.SessionHandle{Token: started.Token, LocalID: id}, nil
}

func (s *Service) resume(ctx context.Context, localID string) (models.SessionHandle, error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanSessionStoreGet, tracer.Bool(tracer.AttrResumed, true))
	record, err := s.store.Read(ctx, localID)
	span.End(err)
	if err != nil {
		switch {
		case errors.Is(err, dErrors.ErrNotFound):
		case errors.Is(err, dErrors.ErrCorrupt):
			s.metrics.RecordStoreFailure("corrupt")
		default:
			s.metrics.RecordStoreFailure("read")
		}
		s.logger.WarnContext(ctx, "session resume failed",
			"local_id", localID,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return models.SessionHandle{}, err
	}
	s.metrics.IncrementSessionsResumed()
	return models.SessionHandle{Token: record.Token, LocalID: record.LocalID}, nil
}

// persist writes the record; failures are logged and swallowed so the caller
// still receives its session.
func (s *Service) persist(ctx context.Context, record models.SessionRecord) {
	if err := s.store.Write(ctx, record); err != nil {
		s.metrics.RecordStoreFailure("write")
		s.logger.ErrorContext(ctx, "failed to persist session",
			"local_id", record.LocalID.String(),
			"interview_id", record.InterviewID,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
}

// OnboardingURL starts a throwaway session and returns its hosted onboarding link.
// Nothing is persisted.
func (s *Service) OnboardingURL(ctx context.Context) (models.OnboardingLink, error) {
	started, err := s.provider.StartSession(ctx)
	if err != nil {
		return models.OnboardingLink{}, upstream(err)
	}
	link, err := s.provider.OnboardingURL(ctx, started.Token)
	if err != nil {
		return models.OnboardingLink{}, upstream(err)
	}
	return models.OnboardingLink{
		Token:       started.Token,
		InterviewID: started.InterviewID,
		URL:         link,
	}, nil
}

// OnboardingStatus reports the provider's status for an interview.
func (s *Service) OnboardingStatus(ctx context.Context, interviewID string) (string, error) {
	if interviewID == "" {
		return "", dErrors.New(dErrors.CodeValidation, "Missing required parameter interviewId")
	}
	status, err := s.provider.OnboardingStatus(ctx, interviewID)
	if err != nil {
		return "", upstream(err)
	}
	return status, nil
}

// FetchScore fetches and interprets the score of an interview using the
// caller's session token.
func (s *Service) FetchScore(ctx context.Context, interviewID, token string) (models.Verdict, error) {
	if interviewID == "" {
		return "", dErrors.New(dErrors.CodeValidation, "Missing required parameter interviewId")
	}
	if token == "" {
		return "", dErrors.New(dErrors.CodeValidation, "Missing required header X-Token")
	}
	raw, err := s.provider.FetchScore(ctx, interviewID, provider.SessionToken(token))
	if err != nil {
		return "", upstream(err)
	}
	verdict := models.InterpretScore(raw)
	if verdict.Passed() {
		s.logger.InfoContext(ctx, "onboarding passed", "interview_id", interviewID)
	} else {
		s.logger.InfoContext(ctx, "onboarding did not pass", "interview_id", interviewID)
	}
	return verdict, nil
}

// VerifyAuthentication checks a face-authentication attempt and returns the
// provider's verdict unchanged.
func (s *Service) VerifyAuthentication(ctx context.Context, attempt models.AuthAttempt) (json.RawMessage, error) {
	attempt.Normalize()
	if err := attempt.Validate(); err != nil {
		return nil, err
	}
	result, err := s.provider.VerifyAuthentication(ctx, attempt)
	if err != nil {
		return nil, upstream(err)
	}
	s.logger.InfoContext(ctx, "authentication attempt verified",
		"transaction_id", attempt.TransactionID,
		"result", string(result),
		"request_id", requestcontext.RequestID(ctx),
	)
	return result, nil
}
