package service

import (
	"context"
	"fmt"

	"idflow/internal/verification/models"
	"idflow/internal/verification/provider"
	"idflow/internal/verification/tracer"
	"idflow/pkg/requestcontext"
)

// MsgNotPassed is returned by Approve when the score did not pass.
const MsgNotPassed = "Session didn't PASS, identity was not created"

// HandleWebhook acknowledges ev and scores it if onboarding finished.
// The acknowledgement never depends on the outcome. In async mode scoring
// runs after this returns, detached from the request's cancellation, until
// Wait is called.
func (s *Service) HandleWebhook(ctx context.Context, ev models.Event) models.Ack {
	ack := models.NewAck(requestcontext.Now(ctx), ev.Payload())

	if !s.startAsync() {
		s.Process(ctx, ev)
		return ack
	}

	detached := context.WithoutCancel(ctx)
	go func() {
		defer s.inflight.Done()
		defer func() {
			if r := recover(); r != nil {
				s.logger.ErrorContext(detached, "webhook processing panicked", "panic", fmt.Sprint(r))
			}
		}()
		s.Process(detached, ev)
	}()
	return ack
}

// startAsync reserves a slot for background processing. It refuses once
// Wait has been called so the drain cannot miss late arrivals.
func (s *Service) startAsync() bool {
	if !s.async {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.draining {
		return false
	}
	s.inflight.Add(1)
	return true
}

// Process runs one event through RECEIVED -> SCORING -> SCORED -> PASSED|FAILED,
// ending in SCORE_UNAVAILABLE if the score cannot be fetched and IGNORED for
// non-finished events. Verdicts are published.
func (s *Service) Process(ctx context.Context, ev models.Event) models.Outcome {
	done := s.metrics.TrackWebhook()
	defer done()

	ctx, span := s.tracer.Start(ctx, tracer.SpanWebhookProcess, tracer.Bool(tracer.AttrAsync, s.async))
	outcome := s.evaluate(ctx, span, ev)
	span.SetAttributes(tracer.String(tracer.AttrState, string(outcome.State)))
	span.End(outcome.Err)

	if outcome.State == models.StatePassed || outcome.State == models.StateFailed {
		s.publish(ctx, models.OutcomeEvent{
			InterviewID: outcome.InterviewID,
			State:       outcome.State,
			Verdict:     outcome.Verdict,
			OccurredAt:  requestcontext.Now(ctx),
		})
	}
	return outcome
}

// Approve scores a finished event and, if it passed, asks the provider to
// create the identity. It always yields an acknowledgement; failures are
// reported in it rather than as errors.
func (s *Service) Approve(ctx context.Context, ev models.Event) models.Ack {
	now := requestcontext.Now(ctx)

	ctx, span := s.tracer.Start(ctx, tracer.SpanApprove)
	outcome := s.evaluate(ctx, span, ev)
	span.SetAttributes(tracer.String(tracer.AttrState, string(outcome.State)))

	switch outcome.State {
	case models.StateIgnored:
		span.End(nil)
		return models.NewAck(now, ev.Payload())
	case models.StateScoreUnavailable:
		span.End(outcome.Err)
		return models.NewFailedAck(now, fmt.Sprintf("%s: %v", MsgNotPassed, outcome.Err))
	case models.StateFailed:
		span.End(nil)
		s.publish(ctx, models.OutcomeEvent{
			InterviewID: outcome.InterviewID,
			State:       outcome.State,
			Verdict:     outcome.Verdict,
			OccurredAt:  now,
		})
		return models.NewFailedAck(now, MsgNotPassed)
	}

	artifact, err := s.provider.Approve(ctx, outcome.InterviewID)
	span.End(err)
	if err != nil {
		s.logger.ErrorContext(ctx, "identity approval failed",
			"interview_id", outcome.InterviewID,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return models.NewFailedAck(now, err.Error())
	}

	s.logger.InfoContext(ctx, "identity approved",
		"interview_id", outcome.InterviewID,
		"identity_uuid", artifact.UUID,
		"existing_customer", artifact.ExistingCustomer,
		"request_id", requestcontext.RequestID(ctx),
	)
	s.publish(ctx, models.OutcomeEvent{
		InterviewID:      outcome.InterviewID,
		State:            outcome.State,
		Verdict:          outcome.Verdict,
		IdentityUUID:     artifact.UUID,
		ExistingCustomer: artifact.ExistingCustomer,
		OccurredAt:       now,
	})
	return models.NewAck(now, artifact)
}

// evaluate drives the state machine up to a terminal state.
func (s *Service) evaluate(ctx context.Context, span tracer.Span, ev models.Event) models.Outcome {
	finished, ok := ev.(models.FinishedEvent)
	if !ok {
		s.transition(ctx, span, "", models.StateReceived)
		return s.finish(ctx, span, models.Outcome{State: models.StateIgnored})
	}

	id := finished.InterviewID
	span.SetAttributes(tracer.String(tracer.AttrInterviewID, tracer.HashID(id)))
	s.transition(ctx, span, id, models.StateReceived)
	s.transition(ctx, span, id, models.StateScoring)

	raw, err := s.provider.FetchScore(ctx, id, provider.Admin())
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to fetch score",
			"interview_id", id,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return s.finish(ctx, span, models.Outcome{InterviewID: id, State: models.StateScoreUnavailable, Err: err})
	}
	s.transition(ctx, span, id, models.StateScored)

	verdict := models.InterpretScore(raw)
	span.SetAttributes(tracer.String(tracer.AttrVerdict, string(verdict)))
	state := models.StateFailed
	if verdict.Passed() {
		state = models.StatePassed
	}
	return s.finish(ctx, span, models.Outcome{InterviewID: id, State: state, Verdict: verdict})
}

// transition records entering state; outcomes are counted once a terminal
// state is reached.
func (s *Service) transition(ctx context.Context, span tracer.Span, interviewID string, state models.State) {
	span.AddEvent(tracer.EventStateTransition, tracer.String(tracer.AttrState, string(state)))
	s.logger.DebugContext(ctx, "webhook state",
		"interview_id", interviewID,
		"state", string(state),
	)
	if state.Terminal() {
		s.metrics.RecordWebhookOutcome(string(state))
	}
}

func (s *Service) finish(ctx context.Context, span tracer.Span, outcome models.Outcome) models.Outcome {
	s.transition(ctx, span, outcome.InterviewID, outcome.State)
	s.logger.InfoContext(ctx, "webhook processed",
		"interview_id", outcome.InterviewID,
		"state", string(outcome.State),
		"verdict", string(outcome.Verdict),
		"request_id", requestcontext.RequestID(ctx),
	)
	return outcome
}

func (s *Service) publish(ctx context.Context, event models.OutcomeEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.metrics.RecordOutcomePublished("error")
		s.logger.ErrorContext(ctx, "failed to publish verification outcome",
			"interview_id", event.InterviewID,
			"state", string(event.State),
			"error", err,
		)
		return
	}
	s.metrics.RecordOutcomePublished("ok")
}
