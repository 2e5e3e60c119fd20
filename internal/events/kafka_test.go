package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockWriter struct {
	mock.Mock
}

func (m *mockWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *mockWriter) Close() error {
	return m.Called().Error(0)
}

func TestKafkaPublisher_Publish(t *testing.T) {
	w := &mockWriter{}
	var sent []kafka.Message
	w.On("WriteMessages", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { sent = args.Get(1).([]kafka.Message) }).
		Return(nil).Once()

	p := NewKafkaPublisher(w)
	at := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	err := p.Publish(context.Background(), Event{
		Type:      TypeSettlementRequested,
		EntityID:  "host-1",
		Amount:    1068,
		Currency:  "USD",
		Timestamp: at,
	})
	require.NoError(t, err)
	w.AssertExpectations(t)

	require.Len(t, sent, 1)
	assert.Equal(t, "host-1", string(sent[0].Key))
	assert.Equal(t, at, sent[0].Time)
	assert.Equal(t, TypeSettlementRequested, string(sent[0].Headers[0].Value))

	var got Event
	require.NoError(t, json.Unmarshal(sent[0].Value, &got))
	assert.Equal(t, int64(1068), got.Amount)
	assert.Equal(t, "host-1", got.EntityID)
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	w := &mockWriter{}
	w.On("WriteMessages", mock.Anything, mock.Anything).Return(errors.New("broker down"))

	err := NewKafkaPublisher(w).Publish(context.Background(), Event{Type: TypeRefundRecorded, GroupID: "g"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
}

func TestEventKey(t *testing.T) {
	assert.Equal(t, "e", Event{EntityID: "e", GroupID: "g"}.Key())
	assert.Equal(t, "g", Event{GroupID: "g"}.Key())
}
