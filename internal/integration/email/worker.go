package email

import (
	"context"
	"log/slog"
	"time"

	"github.com/menuinzicht/backend/internal/application/adapter"
	"github.com/menuinzicht/backend/internal/domain/entity"
	domainerror "github.com/menuinzicht/backend/internal/domain/error"
)

const housekeepingInterval = time.Hour

// Worker delivers outbox messages. Several workers may share one outbox;
// claims keep them from sending the same message twice.
type Worker struct {
	outbox       adapter.EmailOutbox
	sender       adapter.EmailSender
	pollInterval time.Duration
	batchSize    int
	claimTimeout time.Duration
	retention    time.Duration
	now          func() time.Time
}

// WorkerConfig holds configuration for the email worker.
type WorkerConfig struct {
	PollInterval time.Duration
	BatchSize    int
	// ClaimTimeout is how long a claim may stay unresolved before the message
	// is handed out again.
	ClaimTimeout time.Duration
	// RetentionDays is how long sent messages are kept. Zero keeps them.
	RetentionDays int
}

// DefaultWorkerConfig returns the default worker configuration.
func DefaultWorkerConfig() WorkerConfig {
	return WorkerConfig{
		PollInterval:  5 * time.Second,
		BatchSize:     10,
		ClaimTimeout:  10 * time.Minute,
		RetentionDays: 30,
	}
}

// NewWorker creates a new email worker.
func NewWorker(outbox adapter.EmailOutbox, sender adapter.EmailSender, config WorkerConfig) *Worker {
	defaults := DefaultWorkerConfig()
	if config.PollInterval <= 0 {
		config.PollInterval = defaults.PollInterval
	}
	if config.BatchSize <= 0 {
		config.BatchSize = defaults.BatchSize
	}
	if config.ClaimTimeout <= 0 {
		config.ClaimTimeout = defaults.ClaimTimeout
	}
	return &Worker{
		outbox:       outbox,
		sender:       sender,
		pollInterval: config.PollInterval,
		batchSize:    config.BatchSize,
		claimTimeout: config.ClaimTimeout,
		retention:    time.Duration(config.RetentionDays) * 24 * time.Hour,
		now:          time.Now,
	}
}

// Start runs the delivery loop until ctx is cancelled.
func (w *Worker) Start(ctx context.Context) {
	slog.Info("Email worker started",
		"poll_interval", w.pollInterval,
		"batch_size", w.batchSize,
		"claim_timeout", w.claimTimeout,
	)

	poll := time.NewTicker(w.pollInterval)
	defer poll.Stop()
	housekeeping := time.NewTicker(housekeepingInterval)
	defer housekeeping.Stop()

	w.housekeep(ctx)
	w.dispatch(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("Email worker shutting down")
			return
		case <-poll.C:
			w.dispatch(ctx)
		case <-housekeeping.C:
			w.housekeep(ctx)
		}
	}
}

// ProcessNow runs one housekeeping pass and one delivery batch immediately.
func (w *Worker) ProcessNow(ctx context.Context) {
	w.housekeep(ctx)
	w.dispatch(ctx)
}

// housekeep requeues abandoned claims and purges old sent messages.
func (w *Worker) housekeep(ctx context.Context) {
	now := w.now()

	requeued, err := w.outbox.RequeueStale(ctx, now.Add(-w.claimTimeout))
	if err != nil {
		slog.Error("Failed to requeue stale emails", "error", err)
	} else if requeued > 0 {
		slog.Warn("Requeued abandoned email claims", "count", requeued)
	}

	if w.retention <= 0 {
		return
	}
	purged, err := w.outbox.PurgeSent(ctx, now.Add(-w.retention))
	if err != nil {
		slog.Error("Failed to purge sent emails", "error", err)
		return
	}
	if purged > 0 {
		slog.Info("Purged sent emails", "count", purged)
	}
}

// dispatch claims one batch of due messages and delivers them in order.
func (w *Worker) dispatch(ctx context.Context) {
	claimed, err := w.outbox.ClaimDue(ctx, w.now(), w.batchSize)
	if err != nil {
		slog.Error("Failed to claim due emails", "error", err)
		return
	}
	if len(claimed) == 0 {
		return
	}

	slog.Debug("Delivering email batch", "count", len(claimed))

	for _, msg := range claimed {
		if ctx.Err() != nil {
			// Unsent claims are released by the next housekeeping pass
			return
		}
		w.deliver(ctx, msg)
	}
}

func (w *Worker) deliver(ctx context.Context, msg *entity.OutboundEmail) {
	logger := slog.With(
		"email_id", msg.ID,
		"feedback_id", msg.FeedbackID,
		"attempt", msg.Attempts+1,
	)

	result, err := w.sender.Send(ctx, adapter.SendEmailInput{
		To:      msg.To,
		ReplyTo: msg.ReplyTo,
		Subject: msg.Subject,
		HTML:    msg.HTML,
		Text:    msg.Text,
		Tags: map[string]string{
			"category":    "feedback",
			"feedback_id": msg.FeedbackID.String(),
		},
	})

	if err != nil {
		msg.Failed(err, domainerror.IsPermanent(err), w.now())
		if msg.Status == entity.OutboxDead {
			logger.Warn("Email delivery given up", "attempts", msg.Attempts, "error", err)
		} else {
			logger.Info("Email delivery failed, retry scheduled", "next_attempt_at", msg.NextAttemptAt, "error", err)
		}
	} else {
		msg.Delivered(result.ProviderID, w.now())
		logger.Info("Email sent", "provider_id", result.ProviderID)
	}

	if err := w.outbox.Save(ctx, msg); err != nil {
		logger.Error("Failed to save delivery outcome", "status", msg.Status, "error", err)
	}
}
