package core

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// RunStats summarises one pass over the mailbox.
type RunStats struct {
	Listed    int
	Skipped   int
	Processed int
	Failed    int
}

// Runner drives one sequential pass over the mailbox: list, skip already
// processed IDs, fetch, triage, persist, publish. Emails are handled one at
// a time in listing order; the similarity index is mutated as a side effect
// of each Process call, so there is no parallelism across emails.
type Runner struct {
	source    EmailSource
	store     ProcessedStore
	service   *TriageService
	sink      ResultSink
	logger    *zap.Logger
	maxEmails int
}

// NewRunner creates a new runner.
func NewRunner(
	source EmailSource,
	store ProcessedStore,
	service *TriageService,
	sink ResultSink,
	logger *zap.Logger,
	maxEmails int,
) *Runner {
	return &Runner{
		source:    source,
		store:     store,
		service:   service,
		sink:      sink,
		logger:    logger,
		maxEmails: maxEmails,
	}
}

// Run performs one pass. Per-email failures are logged and do not stop the
// pass; mailbox listing and persistence failures abort it. Stats for the
// work done so far are returned either way.
func (r *Runner) Run(ctx context.Context) (RunStats, error) {
	var stats RunStats

	ids, err := r.source.ListIDs(ctx, r.maxEmails)
	if err != nil {
		return stats, fmt.Errorf("failed to list mailbox: %w", err)
	}
	stats.Listed = len(ids)

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		seen, err := r.store.Contains(ctx, id)
		if err != nil {
			return stats, fmt.Errorf("processed-id lookup failed: %w", err)
		}
		if seen {
			stats.Skipped++
			continue
		}

		email, err := r.source.Fetch(ctx, id)
		if err != nil {
			r.logger.Error("Failed to fetch email, continuing with next",
				zap.String("email_id", id),
				zap.Error(err))
			stats.Failed++
			continue
		}

		result, err := r.service.Process(ctx, email)
		if err != nil {
			// Not marked processed: the email is retried on the next run.
			r.logger.Error("Failed to process email, continuing with next",
				zap.String("email_id", id),
				zap.Error(err))
			stats.Failed++
			continue
		}

		if err := r.store.Add(ctx, id); err != nil {
			return stats, fmt.Errorf("failed to record processed id %s: %w", id, err)
		}
		if err := r.store.SetLastProcessed(ctx, id); err != nil {
			return stats, fmt.Errorf("failed to record last processed id: %w", err)
		}

		if r.sink != nil {
			r.sink.Publish(email, result)
		}
		stats.Processed++

		r.logger.Info("Email triaged",
			zap.String("email_id", id),
			zap.String("primary_request_type", result.Classification.PrimaryRequestType),
			zap.Float64("confidence", result.Classification.ConfidenceScore),
			zap.Bool("duplicate", result.Duplicate.DuplicateFlag))
	}

	return stats, nil
}
