package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"creatorflow/internal/models"
)

var (
	ErrMailPermanentFailure = errors.New("permanent delivery failure")
	ErrMailTransientFailure = errors.New("delivery failed after retries")
)

const (
	defaultMaxRetries  = 3
	defaultBackoffBase = 500 * time.Millisecond
)

// Message is a single outbound notification to deliver
type Message struct {
	CreatorID int64
	EmailType string
	Recipient string
	Subject   string
	HTMLBody  string
	TextBody  string
}

// DeliveryAppender records notification attempts
type DeliveryAppender interface {
	Append(e *models.DeliveryLogEntry) (int64, error)
}

// Dispatcher sends notifications through the Mailer with bounded retries.
// Every attempt, success or failure, appends a delivery log entry; callers
// wanting the delivery state must read the latest entry for a creator and
// email type rather than assume a fixed attempt count.
type Dispatcher struct {
	mailer      Mailer
	deliveries  DeliveryAppender
	maxRetries  int
	backoffBase time.Duration
	sleep       func(time.Duration)
}

// NewDispatcher creates a dispatcher. maxRetries is the total attempt
// budget per Send call; backoffBase seeds the exponential wait between
// attempts. Zero or negative values fall back to defaults.
func NewDispatcher(mailer Mailer, deliveries DeliveryAppender, maxRetries int, backoffBase time.Duration) *Dispatcher {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	if backoffBase <= 0 {
		backoffBase = defaultBackoffBase
	}
	return &Dispatcher{
		mailer:      mailer,
		deliveries:  deliveries,
		maxRetries:  maxRetries,
		backoffBase: backoffBase,
		sleep:       time.Sleep,
	}
}

// Send attempts delivery up to the retry budget, waiting backoffBase * 2^attempt
// between attempts. A permanent mailer failure aborts immediately without
// backoff. Returns the final delivery log entry.
//
// With a disabled mailer nothing is attempted; the entry is recorded as
// pending so the log never claims a send that didn't happen.
func (d *Dispatcher) Send(ctx context.Context, msg Message) (*models.DeliveryLogEntry, error) {
	if !d.mailer.IsEnabled() {
		entry := &models.DeliveryLogEntry{
			CreatorID:  msg.CreatorID,
			EmailType:  msg.EmailType,
			Recipient:  msg.Recipient,
			Status:     models.DeliveryPending,
			MaxRetries: d.maxRetries,
		}
		d.appendEntry(entry)
		log.Printf("Mailer disabled, recording %s for %s as pending", msg.EmailType, msg.Recipient)
		return entry, nil
	}

	var lastErr error

	for attempt := 0; attempt < d.maxRetries; attempt++ {
		if attempt > 0 {
			d.sleep(d.backoffBase * (1 << (attempt - 1)))
		}

		err := d.mailer.Send(ctx, msg.Recipient, msg.Subject, msg.HTMLBody, msg.TextBody)
		now := time.Now()

		entry := &models.DeliveryLogEntry{
			CreatorID:  msg.CreatorID,
			EmailType:  msg.EmailType,
			Recipient:  msg.Recipient,
			RetryCount: attempt,
			MaxRetries: d.maxRetries,
		}
		if attempt > 0 {
			entry.LastRetryAt = &now
		}

		if err == nil {
			entry.Status = models.DeliverySent
			entry.SentAt = &now
			d.appendEntry(entry)
			return entry, nil
		}

		lastErr = err
		entry.ErrorMessage = err.Error()

		permanent := IsPermanentSendError(err)
		if permanent || attempt == d.maxRetries-1 {
			entry.Status = models.DeliveryFailed
			entry.FailedAt = &now
			d.appendEntry(entry)
			if permanent {
				return entry, fmt.Errorf("%w: %s", ErrMailPermanentFailure, err)
			}
			return entry, fmt.Errorf("%w: %s", ErrMailTransientFailure, err)
		}

		entry.Status = models.DeliveryRetrying
		d.appendEntry(entry)

		log.Printf("Delivery attempt %d/%d failed for %s (%s), retrying: %v",
			attempt+1, d.maxRetries, msg.Recipient, msg.EmailType, err)
	}

	// Unreachable: the loop always returns on the final attempt.
	return nil, lastErr
}

func (d *Dispatcher) appendEntry(entry *models.DeliveryLogEntry) {
	if _, err := d.deliveries.Append(entry); err != nil {
		log.Printf("WARNING: failed to record delivery log entry for creator %d (%s): %v",
			entry.CreatorID, entry.EmailType, err)
	}
}
