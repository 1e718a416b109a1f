package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/rabbitmq/amqp091-go"

	"github.com/MrJamesThe3rd/spendly/internal/ledger"
)

// Subscribe binds an exclusive queue to the given event types and calls
// handle for every event until ctx is done. No types means all of them.
func Subscribe(ctx context.Context, url, exchange string, types []ledger.EventType, handle func(ledger.Event) error) error {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return fmt.Errorf("dial AMQP: %w", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	if err := declareExchange(ch, exchange); err != nil {
		return err
	}

	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	if len(types) == 0 {
		types = []ledger.EventType{
			ledger.EventLedgerUpdated, ledger.EventItemChanged,
			ledger.EventTabSaved, ledger.EventTabDeleted,
		}
	}

	for _, t := range types {
		if err := ch.QueueBind(q.Name, string(t), exchange, false, nil); err != nil {
			return fmt.Errorf("bind %s: %w", t, err)
		}
	}

	deliveries, err := ch.ConsumeWithContext(ctx, q.Name, "", false, true, false, false, nil)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	return consume(ctx, deliveries, handle)
}

// consume acknowledges every delivery handle accepts and drops the rest
// without requeueing, so a malformed message cannot loop forever.
func consume(ctx context.Context, deliveries <-chan amqp091.Delivery, handle func(ledger.Event) error) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}

			if err := dispatch(d.Body, handle); err != nil {
				slog.ErrorContext(ctx, "failed to handle event", "error", err)
				_ = d.Nack(false, false)

				continue
			}

			_ = d.Ack(false)
		}
	}
}

func dispatch(body []byte, handle func(ledger.Event) error) error {
	var e ledger.Event
	if err := json.Unmarshal(body, &e); err != nil {
		return fmt.Errorf("unmarshal event: %w", err)
	}

	return handle(e)
}
