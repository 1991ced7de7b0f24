package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// StartStatusConsumer connects to RabbitMQ, declares the durable
// booking.status queue and consumes it, appending one human-readable line
// per event to logs/dispatch.log.  It runs a reconnect loop with capped
// backoff and keeps going through broker restarts until ctx is cancelled;
// malformed messages are rejected without requeue so the queue cannot
// wedge.
func StartStatusConsumer(ctx context.Context) error {
	url := brokerURL()

	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Printf("status-consumer: dial broker: %v; retrying in %s", err, backoff)
			if err := sleep(ctx, backoff); err != nil {
				return err
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		if err := consumeLoop(ctx, conn); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Printf("status-consumer: consume loop ended: %v; reconnecting", err)
			if err := sleep(ctx, 2*time.Second); err != nil {
				return err
			}
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	defer func() { _ = conn.Close() }()
	// Closing the connection unblocks the delivery range below when the
	// context is cancelled mid-consume.
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(statusQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	deliveries, err := ch.Consume(statusQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}

	for d := range deliveries {
		if err := handleDelivery(d.Body); err != nil {
			log.Printf("status-consumer: %v", err)
			_ = d.Nack(false, false)
			continue
		}
		_ = d.Ack(false)
	}
	return fmt.Errorf("delivery channel closed")
}

func handleDelivery(body []byte) error {
	var ev BookingStatusEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("decode event: %w", err)
	}
	line := formatEvent(ev)
	if err := appendDispatchLog(line); err != nil {
		return fmt.Errorf("append dispatch log: %w", err)
	}
	return nil
}

func formatEvent(ev BookingStatusEvent) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s booking=%s status=%s", ev.OccurredAt, ev.Code, ev.Status)
	if ev.PreviousStatus != "" {
		fmt.Fprintf(&sb, " from=%s", ev.PreviousStatus)
	}
	if ev.OperatorID != "" {
		fmt.Fprintf(&sb, " operator=%s", ev.OperatorID)
	}
	if ev.Degraded {
		sb.WriteString(" degraded=true")
	}
	return sb.String()
}

func appendDispatchLog(line string) error {
	dir := "logs"
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(filepath.Join(dir, "dispatch.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	_, err = fmt.Fprintln(f, line)
	return err
}
