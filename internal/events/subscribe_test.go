package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/spendly/internal/ledger"
)

type acks struct {
	acked  []uint64
	nacked []uint64
}

func (a *acks) Ack(tag uint64, _ bool) error {
	a.acked = append(a.acked, tag)
	return nil
}

func (a *acks) Nack(tag uint64, _, requeue bool) error {
	if requeue {
		return errors.New("unexpected requeue")
	}

	a.nacked = append(a.nacked, tag)

	return nil
}

func (a *acks) Reject(tag uint64, _ bool) error {
	return a.Nack(tag, false, false)
}

func eventBody(t *testing.T, e ledger.Event) []byte {
	t.Helper()

	raw, err := json.Marshal(e)
	require.NoError(t, err)

	return raw
}

func TestDispatch(t *testing.T) {
	errHandler := errors.New("handler failed")

	tests := []struct {
		name       string
		body       []byte
		handlerErr error
		wantErr    error
		wantCalled bool
	}{
		{
			name:       "valid event",
			body:       eventBody(t, ledger.Event{Type: ledger.EventItemChanged, UserID: "u1", ItemID: "a"}),
			wantCalled: true,
		},
		{
			name: "malformed body",
			body: []byte("{not json"),
		},
		{
			name:       "handler error",
			body:       eventBody(t, ledger.Event{Type: ledger.EventTabSaved, UserID: "u1"}),
			handlerErr: errHandler,
			wantErr:    errHandler,
			wantCalled: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false

			err := dispatch(tt.body, func(e ledger.Event) error {
				called = true
				assert.Equal(t, "u1", e.UserID)

				return tt.handlerErr
			})

			assert.Equal(t, tt.wantCalled, called)

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case !tt.wantCalled:
				assert.Error(t, err)
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func TestConsume_AcksHandledAndDropsMalformed(t *testing.T) {
	ack := &acks{}
	deliveries := make(chan amqp091.Delivery, 3)

	deliveries <- amqp091.Delivery{Acknowledger: ack, DeliveryTag: 1, Body: eventBody(t, ledger.Event{Type: ledger.EventLedgerUpdated, UserID: "u1"})}
	deliveries <- amqp091.Delivery{Acknowledger: ack, DeliveryTag: 2, Body: []byte("garbage")}
	deliveries <- amqp091.Delivery{Acknowledger: ack, DeliveryTag: 3, Body: eventBody(t, ledger.Event{Type: ledger.EventTabDeleted, UserID: "u1"})}
	close(deliveries)

	var got []ledger.EventType

	err := consume(context.Background(), deliveries, func(e ledger.Event) error {
		got = append(got, e.Type)
		return nil
	})

	assert.EqualError(t, err, "delivery channel closed")
	assert.Equal(t, []ledger.EventType{ledger.EventLedgerUpdated, ledger.EventTabDeleted}, got)
	assert.Equal(t, []uint64{1, 3}, ack.acked)
	assert.Equal(t, []uint64{2}, ack.nacked)
}

func TestConsume_StopsWhenContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := consume(ctx, make(chan amqp091.Delivery), func(ledger.Event) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}
