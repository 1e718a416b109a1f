package events_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/spendly/internal/events"
	"github.com/MrJamesThe3rd/spendly/internal/ledger"
)

type published struct {
	exchange string
	key      string
	msg      amqp091.Publishing
}

type fakeChannel struct {
	mu     sync.Mutex
	sent   []published
	err    error
	closed bool
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp091.Publishing) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return f.err
	}

	f.sent = append(f.sent, published{exchange: exchange, key: key, msg: msg})

	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestAMQPPublisher_Publish(t *testing.T) {
	ch := &fakeChannel{}
	p := events.NewPublisher(ch, "spendly.events")

	at := time.Date(2025, 4, 2, 10, 0, 0, 0, time.UTC)
	e := ledger.Event{
		Type:       ledger.EventItemChanged,
		UserID:     "u1",
		Year:       2025,
		Month:      4,
		Tab:        "main",
		ItemID:     "a",
		Version:    3,
		Status:     ledger.StatusPartial,
		Total:      decimal.RequireFromString("50"),
		PaidTotal:  decimal.RequireFromString("20"),
		OccurredAt: at,
	}

	require.NoError(t, p.Publish(context.Background(), e))
	require.Len(t, ch.sent, 1)

	got := ch.sent[0]
	assert.Equal(t, "spendly.events", got.exchange)
	assert.Equal(t, "ledger.item_changed", got.key)
	assert.Equal(t, amqp091.Persistent, got.msg.DeliveryMode)
	assert.Equal(t, "application/json", got.msg.ContentType)
	assert.Equal(t, at, got.msg.Timestamp)

	var body map[string]any
	require.NoError(t, json.Unmarshal(got.msg.Body, &body))
	assert.Equal(t, "u1", body["user_id"])
	assert.Equal(t, "partial", body["status"])
	assert.Equal(t, "50", body["total"])

	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
}

func TestAMQPPublisher_PublishError(t *testing.T) {
	p := events.NewPublisher(&fakeChannel{err: errors.New("channel closed")}, "x")

	err := p.Publish(context.Background(), ledger.Event{Type: ledger.EventTabSaved})
	assert.ErrorContains(t, err, "publish tab.saved")
}
