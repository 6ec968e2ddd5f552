package service

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/mock/gomock"

	"idflow/internal/verification/models"
	"idflow/internal/verification/provider"
	dErrors "idflow/pkg/domain-errors"
)

func (s *ServiceSuite) TestStartOrResume_CreatesSession() {
	var written models.SessionRecord
	gomock.InOrder(
		s.mockProvider.EXPECT().StartSession(gomock.Any()).
			Return(models.StartedSession{Token: "tok-1", InterviewID: "int-1"}, nil),
		s.mockStore.EXPECT().Write(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ any, rec models.SessionRecord) error {
				written = rec
				return nil
			}),
	)

	handle, err := s.service.StartOrResume(s.ctx, "")

	s.Require().NoError(err)
	s.Equal("tok-1", handle.Token)
	_, parseErr := models.ParseLocalID(handle.LocalID.String())
	s.NoError(parseErr)
	s.Equal(models.SessionRecord{Token: "tok-1", InterviewID: "int-1", LocalID: handle.LocalID}, written)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.SessionsStartedTotal))

	body, err := json.Marshal(handle)
	s.Require().NoError(err)
	s.NotContains(string(body), "int-1", "interview id must never reach the caller")
}

func (s *ServiceSuite) TestStartOrResume_TwoCreatesAreDistinct() {
	s.mockProvider.EXPECT().StartSession(gomock.Any()).
		Return(models.StartedSession{Token: "tok", InterviewID: "int"}, nil).Times(2)
	s.mockStore.EXPECT().Write(gomock.Any(), gomock.Any()).Return(nil).Times(2)

	first, err := s.service.StartOrResume(s.ctx, "")
	s.Require().NoError(err)
	second, err := s.service.StartOrResume(s.ctx, "")
	s.Require().NoError(err)

	s.NotEqual(first.LocalID, second.LocalID)
}

func (s *ServiceSuite) TestStartOrResume_WriteFailureIsSwallowed() {
	s.mockProvider.EXPECT().StartSession(gomock.Any()).
		Return(models.StartedSession{Token: "tok-1", InterviewID: "int-1"}, nil)
	s.mockStore.EXPECT().Write(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))

	handle, err := s.service.StartOrResume(s.ctx, "")

	s.Require().NoError(err)
	s.Equal("tok-1", handle.Token)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.SessionStoreFailuresTotal.WithLabelValues("write")))
}

func (s *ServiceSuite) TestStartOrResume_ProviderFailure() {
	transportErr := &provider.TransportError{Method: http.MethodPost, Path: provider.PathStart, StatusCode: 500}
	s.mockProvider.EXPECT().StartSession(gomock.Any()).Return(models.StartedSession{}, transportErr)

	_, err := s.service.StartOrResume(s.ctx, "")

	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUpstream))
	s.Equal("HTTP Post Error: Request failed with code 500", err.Error())
	s.True(provider.IsTransportError(err))
}

func (s *ServiceSuite) TestStartOrResume_ResumeReturnsStoredToken() {
	id := models.NewLocalID()
	s.mockStore.EXPECT().Read(gomock.Any(), id.String()).
		Return(models.SessionRecord{Token: "stored", InterviewID: "int-9", LocalID: id}, nil)

	handle, err := s.service.StartOrResume(s.ctx, id.String())

	s.Require().NoError(err)
	s.Equal(models.SessionHandle{Token: "stored", LocalID: id}, handle)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.SessionsResumedTotal))
}

func (s *ServiceSuite) TestStartOrResume_ResumeErrorsNeverCallProvider() {
	tests := []struct {
		name     string
		err      error
		code     dErrors.Code
		failedOp string
	}{
		{"unknown id", dErrors.New(dErrors.CodeNotFound, "Invalid localId"), dErrors.CodeNotFound, ""},
		{"corrupt record", dErrors.New(dErrors.CodeCorrupt, "Session data corrupted"), dErrors.CodeCorrupt, "corrupt"},
		{"backend down", dErrors.Wrap(errors.New("conn refused"), dErrors.CodeInternal, "session store unavailable"), dErrors.CodeInternal, "read"},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.mockStore.EXPECT().Read(gomock.Any(), "some-id").Return(models.SessionRecord{}, tt.err)
			// no StartSession expectation: any provider call fails the test

			_, err := s.service.StartOrResume(s.ctx, "some-id")

			s.True(dErrors.HasCode(err, tt.code))
			if tt.failedOp != "" {
				s.Equal(1.0, testutil.ToFloat64(s.metrics.SessionStoreFailuresTotal.WithLabelValues(tt.failedOp)))
			}
		})
	}
}

func (s *ServiceSuite) TestOnboardingURL() {
	gomock.InOrder(
		s.mockProvider.EXPECT().StartSession(gomock.Any()).
			Return(models.StartedSession{Token: "tok-1", InterviewID: "int-1"}, nil),
		s.mockProvider.EXPECT().OnboardingURL(gomock.Any(), "tok-1").
			Return("https://onboarding.example/x", nil),
	)

	link, err := s.service.OnboardingURL(s.ctx)

	s.Require().NoError(err)
	s.Equal(models.OnboardingLink{Token: "tok-1", InterviewID: "int-1", URL: "https://onboarding.example/x"}, link)
}

func (s *ServiceSuite) TestOnboardingURL_SecondCallFails() {
	s.mockProvider.EXPECT().StartSession(gomock.Any()).
		Return(models.StartedSession{Token: "tok-1", InterviewID: "int-1"}, nil)
	s.mockProvider.EXPECT().OnboardingURL(gomock.Any(), "tok-1").
		Return("", &provider.TransportError{Method: http.MethodGet, StatusCode: 403})

	_, err := s.service.OnboardingURL(s.ctx)

	s.Equal("HTTP Get Error: Request failed with code 403", err.Error())
}

func (s *ServiceSuite) TestOnboardingStatus() {
	s.Run("missing interview id", func() {
		_, err := s.service.OnboardingStatus(s.ctx, "")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Equal("Missing required parameter interviewId", err.Error())
	})

	s.Run("returns provider status", func() {
		s.mockProvider.EXPECT().OnboardingStatus(gomock.Any(), "int-1").Return("ONBOARDING_FINISHED", nil)
		status, err := s.service.OnboardingStatus(s.ctx, "int-1")
		s.Require().NoError(err)
		s.Equal("ONBOARDING_FINISHED", status)
	})
}

func (s *ServiceSuite) TestFetchScore() {
	s.Run("missing interview id", func() {
		_, err := s.service.FetchScore(s.ctx, "", "tok")
		s.Equal("Missing required parameter interviewId", err.Error())
	})

	s.Run("missing token", func() {
		_, err := s.service.FetchScore(s.ctx, "int-1", "")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Equal("Missing required header X-Token", err.Error())
	})

	s.Run("pass uses session token", func() {
		s.mockProvider.EXPECT().FetchScore(gomock.Any(), "int-1", provider.SessionToken("tok")).
			Return(json.RawMessage(`{"overall":{"status":"OK"}}`), nil)
		verdict, err := s.service.FetchScore(s.ctx, "int-1", "tok")
		s.Require().NoError(err)
		s.Equal(models.VerdictPass, verdict)
	})

	s.Run("unexpected shape is a fail", func() {
		s.mockProvider.EXPECT().FetchScore(gomock.Any(), "int-1", gomock.Any()).
			Return(json.RawMessage(`{"overall":"weird"}`), nil)
		verdict, err := s.service.FetchScore(s.ctx, "int-1", "tok")
		s.Require().NoError(err)
		s.Equal(models.VerdictFail, verdict)
	})
}

func (s *ServiceSuite) TestVerifyAuthentication() {
	s.Run("missing field", func() {
		_, err := s.service.VerifyAuthentication(s.ctx, models.AuthAttempt{TransactionID: "tx", Token: "t"})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("passes provider result through", func() {
		attempt := models.AuthAttempt{TransactionID: "tx", Token: "t", InterviewToken: "it"}
		s.mockProvider.EXPECT().VerifyAuthentication(gomock.Any(), attempt).
			Return(json.RawMessage(`{"result":"OK"}`), nil)
		out, err := s.service.VerifyAuthentication(s.ctx, attempt)
		s.Require().NoError(err)
		s.JSONEq(`{"result":"OK"}`, string(out))
	})
}
