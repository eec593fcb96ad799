package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/yahyabedirhan/tutorial-vite-deno/internal/model"
)

// Recorder stores a consumed deployment.  The MySQL repository and LogFile
// both implement it.
type Recorder interface {
	Record(ctx context.Context, d model.Deployment) error
}

// LogFile appends one human-readable line per deployment to Path.
type LogFile struct {
	Path string
}

func (l LogFile) Record(_ context.Context, d model.Deployment) error {
	if err := os.MkdirAll(filepath.Dir(l.Path), 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(l.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	line := fmt.Sprintf("[%s] Deployment created | deployment_id=%s | project_id=%s | project=%q | assets=%d | url=%s\n",
		d.DeployedAt.UTC().Format(time.RFC3339), d.ID, d.ProjectID, d.ProjectName, d.AssetCount, d.URL)
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// StartDeploymentConsumer connects to the broker at url, declares the
// deployment.created queue and hands every message to recorders.  It
// reconnects with exponential backoff until ctx is cancelled, then returns
// ctx.Err().
func StartDeploymentConsumer(ctx context.Context, url string, recorders ...Recorder) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Printf("deployment-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			backoff = min(backoff*2, 30*time.Second)
			continue
		}
		backoff = time.Second

		err = consumeLoop(ctx, conn, recorders)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Printf("deployment-consumer: consume loop ended: %v; reconnecting", err)
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, recorders []Recorder) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Printf("deployment-consumer: set QoS failed: %v", err)
	}
	if _, err := ch.QueueDeclare(DeploymentQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(DeploymentQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			settle(ctx, d, recorders)
		}
	}
}

// errMalformed marks events that can never be recorded.
var errMalformed = errors.New("malformed deployment event")

// settle records d and acknowledges it.  Malformed events are dropped.
// Events whose recorders failed are requeued; recording is idempotent per
// deployment id, so a redelivery only repeats the work.
func settle(ctx context.Context, d amqp.Delivery, recorders []Recorder) {
	err := handleMessage(ctx, d.Body, recorders)
	switch {
	case err == nil:
		_ = d.Ack(false)
	case errors.Is(err, errMalformed):
		log.Printf("deployment-consumer: dropping message: %v", err)
		_ = d.Nack(false, false)
	default:
		log.Printf("deployment-consumer: record failed, requeueing: %v", err)
		_ = d.Nack(false, true)
	}
}

// handleMessage decodes one event and passes it to every recorder.  All
// recorders run even if an earlier one fails.
func handleMessage(ctx context.Context, body []byte, recorders []Recorder) error {
	var ev DeploymentCreatedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("%w: unmarshal: %v", errMalformed, err)
	}
	d, err := ev.Deployment()
	if err != nil {
		return fmt.Errorf("%w: %v", errMalformed, err)
	}
	if d.ID == "" {
		return fmt.Errorf("%w: no deployment_id", errMalformed)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	var errs []error
	for _, r := range recorders {
		if err := r.Record(ctx, d); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
