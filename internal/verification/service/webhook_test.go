package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/mock/gomock"

	"idflow/internal/verification/models"
	"idflow/internal/verification/provider"
)

func (s *ServiceSuite) decode(raw string) models.Event {
	ev, err := models.DecodeEvent([]byte(raw))
	s.Require().NoError(err)
	return ev
}

func (s *ServiceSuite) ackJSON(ack models.Ack) string {
	body, err := json.Marshal(ack)
	s.Require().NoError(err)
	return string(body)
}

// =============================================================================
// Process: state machine
// =============================================================================

func (s *ServiceSuite) TestProcess_Passed() {
	gomock.InOrder(
		s.mockProvider.EXPECT().FetchScore(gomock.Any(), "abc", provider.Admin()).
			Return(json.RawMessage(`{"overall":{"status":"OK"}}`), nil),
		s.mockPublisher.EXPECT().Publish(gomock.Any(), models.OutcomeEvent{
			InterviewID: "abc",
			State:       models.StatePassed,
			Verdict:     models.VerdictPass,
			OccurredAt:  s.now,
		}).Return(nil),
	)

	outcome := s.service.Process(s.ctx, s.decode(`{"interviewId":"abc","onboardingStatus":"ONBOARDING_FINISHED"}`))

	s.Equal(models.StatePassed, outcome.State)
	s.Equal(models.VerdictPass, outcome.Verdict)
	s.NoError(outcome.Err)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.WebhookOutcomesTotal.WithLabelValues("PASSED")))
	s.Equal(1, testutil.CollectAndCount(s.metrics.WebhookOutcomesTotal), "intermediate states are not outcomes")
	s.Equal(1.0, testutil.ToFloat64(s.metrics.OutcomesPublishedTotal.WithLabelValues("ok")))
	s.Equal(0.0, testutil.ToFloat64(s.metrics.WebhooksInFlight))
}

func (s *ServiceSuite) TestProcess_Failed() {
	s.mockProvider.EXPECT().FetchScore(gomock.Any(), "abc", provider.Admin()).
		Return(json.RawMessage(`{"overall":{"status":"FAIL"}}`), nil)
	s.mockPublisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(errors.New("broker down"))

	outcome := s.service.Process(s.ctx, s.decode(`{"interviewId":"abc","onboardingStatus":"ONBOARDING_FINISHED"}`))

	s.Equal(models.StateFailed, outcome.State)
	s.Equal(models.VerdictFail, outcome.Verdict)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.OutcomesPublishedTotal.WithLabelValues("error")))
}

func (s *ServiceSuite) TestProcess_ScoreUnavailable() {
	scoreErr := &provider.TransportError{Method: http.MethodGet, Path: provider.PathScore, StatusCode: 502}
	s.mockProvider.EXPECT().FetchScore(gomock.Any(), "abc", gomock.Any()).Return(nil, scoreErr)
	// no publish expected

	outcome := s.service.Process(s.ctx, s.decode(`{"interviewId":"abc","onboardingStatus":"ONBOARDING_FINISHED"}`))

	s.Equal(models.StateScoreUnavailable, outcome.State)
	s.ErrorIs(outcome.Err, scoreErr)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.WebhookOutcomesTotal.WithLabelValues("SCORE_UNAVAILABLE")))
}

func (s *ServiceSuite) TestProcess_NonFinishedIsIgnored() {
	outcome := s.service.Process(s.ctx, s.decode(`{"onboardingStatus":"ID_VALIDATION_FINISHED","interviewId":"abc"}`))

	s.Equal(models.StateIgnored, outcome.State)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.WebhookOutcomesTotal.WithLabelValues("IGNORED")))
}

// =============================================================================
// HandleWebhook: acknowledgement
// =============================================================================

func (s *ServiceSuite) TestHandleWebhook_EchoesNonFinishedPayload() {
	ack := s.service.HandleWebhook(s.ctx, s.decode(`{"onboardingStatus":"OTHER","x":[1,2]}`))

	s.JSONEq(`{"timestamp":"2024-01-04 00:38:28","success":true,"data":{"onboardingStatus":"OTHER","x":[1,2]}}`, s.ackJSON(ack))
}

func (s *ServiceSuite) TestHandleWebhook_SyncAcksEvenWhenScoringFails() {
	s.mockProvider.EXPECT().FetchScore(gomock.Any(), "abc", gomock.Any()).
		Return(nil, &provider.TransportError{Method: http.MethodGet, StatusCode: 500})

	ack := s.service.HandleWebhook(s.ctx, s.decode(`{"interviewId":"abc","onboardingStatus":"ONBOARDING_FINISHED"}`))

	s.JSONEq(`{"timestamp":"2024-01-04 00:38:28","success":true,"data":{"interviewId":"abc","onboardingStatus":"ONBOARDING_FINISHED"}}`, s.ackJSON(ack))
}

func (s *ServiceSuite) TestHandleWebhook_AsyncProcessesAfterAck() {
	svc := s.newService(WithAsyncWebhooks(true))
	release := make(chan struct{})
	scored := make(chan struct{})

	s.mockProvider.EXPECT().FetchScore(gomock.Any(), "abc", provider.Admin()).
		DoAndReturn(func(ctx context.Context, _ string, _ provider.Credential) (json.RawMessage, error) {
			<-release
			s.NoError(ctx.Err(), "processing context must outlive the request")
			return json.RawMessage(`{"overall":{"status":"OK"}}`), nil
		})
	s.mockPublisher.EXPECT().Publish(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, models.OutcomeEvent) error {
			close(scored)
			return nil
		})

	reqCtx, cancel := context.WithCancel(s.ctx)
	ack := svc.HandleWebhook(reqCtx, s.decode(`{"interviewId":"abc","onboardingStatus":"ONBOARDING_FINISHED"}`))
	cancel()

	s.True(ack.Success)
	close(release)

	waitCtx, waitCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer waitCancel()
	s.Require().NoError(svc.Wait(waitCtx))
	select {
	case <-scored:
	default:
		s.Fail("outcome was not published")
	}
}

func (s *ServiceSuite) TestWait_RespectsContext() {
	svc := s.newService(WithAsyncWebhooks(true))
	block := make(chan struct{})

	s.mockProvider.EXPECT().FetchScore(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, string, provider.Credential) (json.RawMessage, error) {
			<-block
			return nil, errors.New("gone")
		})

	svc.HandleWebhook(s.ctx, s.decode(`{"interviewId":"abc","onboardingStatus":"ONBOARDING_FINISHED"}`))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	s.ErrorIs(svc.Wait(ctx), context.DeadlineExceeded)

	close(block)
	s.NoError(svc.Wait(context.Background()))
}

func (s *ServiceSuite) TestHandleWebhook_AfterWaitProcessesInline() {
	svc := s.newService(WithAsyncWebhooks(true))
	s.Require().NoError(svc.Wait(context.Background()))

	scored := false
	s.mockProvider.EXPECT().FetchScore(gomock.Any(), "abc", provider.Admin()).
		DoAndReturn(func(context.Context, string, provider.Credential) (json.RawMessage, error) {
			scored = true
			return json.RawMessage(`{"overall":{"status":"FAIL"}}`), nil
		})
	s.mockPublisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)

	ack := svc.HandleWebhook(s.ctx, s.decode(`{"interviewId":"abc","onboardingStatus":"ONBOARDING_FINISHED"}`))

	s.True(ack.Success)
	s.True(scored, "webhooks arriving while draining are scored before the ack")
}

// =============================================================================
// Approve
// =============================================================================

func (s *ServiceSuite) TestApprove_PassedCreatesIdentity() {
	artifact := models.ApprovalArtifact{Success: true, UUID: "6595c84c", Token: "t", TotalScore: "OK"}
	gomock.InOrder(
		s.mockProvider.EXPECT().FetchScore(gomock.Any(), "abc", provider.Admin()).
			Return(json.RawMessage(`{"overall":{"status":"OK"}}`), nil),
		s.mockProvider.EXPECT().Approve(gomock.Any(), "abc").Return(artifact, nil),
		s.mockPublisher.EXPECT().Publish(gomock.Any(), models.OutcomeEvent{
			InterviewID:  "abc",
			State:        models.StatePassed,
			Verdict:      models.VerdictPass,
			IdentityUUID: "6595c84c",
			OccurredAt:   s.now,
		}).Return(nil),
	)

	ack := s.service.Approve(s.ctx, s.decode(`{"interviewId":"abc","onboardingStatus":"ONBOARDING_FINISHED"}`))

	s.JSONEq(`{
		"timestamp":"2024-01-04 00:38:28",
		"success":true,
		"data":{"success":true,"uuid":"6595c84c","token":"t","totalScore":"OK","existingCustomer":false}
	}`, s.ackJSON(ack))
}

func (s *ServiceSuite) TestApprove_FailedDoesNotApprove() {
	s.mockProvider.EXPECT().FetchScore(gomock.Any(), "abc", gomock.Any()).
		Return(json.RawMessage(`{"overall":{"status":"FAIL"}}`), nil)
	s.mockPublisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)
	// no Approve expectation

	ack := s.service.Approve(s.ctx, s.decode(`{"interviewId":"abc","onboardingStatus":"ONBOARDING_FINISHED"}`))

	s.JSONEq(`{"timestamp":"2024-01-04 00:38:28","success":false,"error":"Session didn't PASS, identity was not created"}`, s.ackJSON(ack))
}

func (s *ServiceSuite) TestApprove_ScoreUnavailable() {
	s.mockProvider.EXPECT().FetchScore(gomock.Any(), "abc", gomock.Any()).
		Return(nil, &provider.TransportError{Method: http.MethodGet, StatusCode: 500})

	ack := s.service.Approve(s.ctx, s.decode(`{"interviewId":"abc","onboardingStatus":"ONBOARDING_FINISHED"}`))

	s.False(ack.Success)
	s.Equal(MsgNotPassed+": HTTP Get Error: Request failed with code 500", ack.Error)
}

func (s *ServiceSuite) TestApprove_ApprovalFailure() {
	s.mockProvider.EXPECT().FetchScore(gomock.Any(), "abc", gomock.Any()).
		Return(json.RawMessage(`{"overall":{"status":"OK"}}`), nil)
	s.mockProvider.EXPECT().Approve(gomock.Any(), "abc").
		Return(models.ApprovalArtifact{}, &provider.TransportError{Method: http.MethodPost, StatusCode: 409})

	ack := s.service.Approve(s.ctx, s.decode(`{"interviewId":"abc","onboardingStatus":"ONBOARDING_FINISHED"}`))

	s.False(ack.Success)
	s.Equal("HTTP Post Error: Request failed with code 409", ack.Error)
}

func (s *ServiceSuite) TestApprove_NonFinishedEchoes() {
	ack := s.service.Approve(s.ctx, s.decode(`{"onboardingStatus":"OTHER"}`))

	s.JSONEq(`{"timestamp":"2024-01-04 00:38:28","success":true,"data":{"onboardingStatus":"OTHER"}}`, s.ackJSON(ack))
}
