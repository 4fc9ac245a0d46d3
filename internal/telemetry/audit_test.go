package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"cohort-chat-service/internal/mocks"
)

func TestEmitBuildsEnvelope(t *testing.T) {
	publisher := new(mocks.PublisherMock)
	emitter := NewAuditEmitter(publisher, "audit_log.chat", "cohort-chat-service", "test", nil)

	userID := int64(7)
	publisher.On("Publish", mock.Anything, "audit_log.chat", mock.MatchedBy(func(event any) bool {
		envelope, ok := event.(AuditEnvelope)
		if !ok {
			return false
		}
		return envelope.EventType == "audit_log" &&
			envelope.Service == "cohort-chat-service" &&
			envelope.Environment == "test" &&
			envelope.RequestID == "req-1" &&
			envelope.UserID != nil && *envelope.UserID == 7 &&
			envelope.Payload.Level == "INFO" &&
			envelope.Payload.Text == "group 9 deleted"
	})).Return(nil).Once()

	emitter.Emit(context.Background(), "INFO", "group 9 deleted", "req-1", &userID)
	publisher.AssertExpectations(t)
}

func TestEmitSwallowsPublishError(t *testing.T) {
	publisher := new(mocks.PublisherMock)
	emitter := NewAuditEmitter(publisher, "audit_log.chat", "svc", "test", nil)

	publisher.On("Publish", mock.Anything, "audit_log.chat", mock.Anything).Return(errors.New("broker gone")).Once()

	require.NotPanics(t, func() {
		emitter.Emit(context.Background(), "ERROR", "oops", "req-2", nil)
	})
	publisher.AssertExpectations(t)
}

func TestEmitNilEmitterIsSafe(t *testing.T) {
	var emitter *AuditEmitter
	require.NotPanics(t, func() {
		emitter.Emit(context.Background(), "INFO", "noop", "", nil)
	})
}
