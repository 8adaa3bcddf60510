package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"floristeria-calendar-sync/internal/application/source_strategies"
	"floristeria-calendar-sync/internal/domain"
	"floristeria-calendar-sync/internal/ports"

	"github.com/rs/zerolog"
)

// ErrInvalidWebhookPayload marks a webhook delivery missing its required
// minimal shape (order id and status). Maps to a 400 at the edge.
var ErrInvalidWebhookPayload = errors.New("invalid webhook payload")

// SyncService drives the two sync entry points: synchronous webhook
// processing and the scheduled poll over enabled integrations. It also
// owns the status bookkeeping for each integration.
//
// Concurrency note: a webhook delivery and a poll cycle touching the
// same order id at the same moment race on the upsert; last write wins.
// The sources do not emit truly concurrent duplicates, so no lock is
// held around the write.
type SyncService struct {
	integrations  ports.IntegrationRepository
	notes         ports.NoteRepository
	fetcher       ports.PayloadFetcher
	registry      *source_strategies.Registry
	metrics       ports.SyncMetrics
	systemActorID string
	logger        zerolog.Logger
}

// NewSyncService creates the sync orchestrator. systemActorID is the
// account newly created notes are attributed to; it must be configured
// or every note creation fails with ErrNoAttributionTarget.
func NewSyncService(
	integrations ports.IntegrationRepository,
	notes ports.NoteRepository,
	fetcher ports.PayloadFetcher,
	registry *source_strategies.Registry,
	metrics ports.SyncMetrics,
	systemActorID string,
	logger zerolog.Logger,
) *SyncService {
	return &SyncService{
		integrations:  integrations,
		notes:         notes,
		fetcher:       fetcher,
		registry:      registry,
		metrics:       metrics,
		systemActorID: systemActorID,
		logger:        logger,
	}
}

// WebhookResult is the structured response for one webhook delivery.
type WebhookResult struct {
	Success    bool                `json:"success"`
	Date       string              `json:"date"`
	ExternalID string              `json:"externalId"`
	Status     string              `json:"status"`
	Action     domain.UpsertAction `json:"action"`
}

// HandleOrderWebhook transforms and upserts a single pushed order
// payload synchronously. The transform runs fully before the single
// upsert write, so a cancelled request never leaves a partial note.
func (s *SyncService) HandleOrderWebhook(ctx context.Context, payload []byte) (*WebhookResult, error) {
	var decoded map[string]any
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWebhookPayload, err)
	}
	if _, ok := decoded["id"]; !ok {
		return nil, fmt.Errorf("%w: missing id", ErrInvalidWebhookPayload)
	}
	status, ok := decoded["status"].(string)
	if !ok || status == "" {
		return nil, fmt.Errorf("%w: missing status", ErrInvalidWebhookPayload)
	}

	strategy, err := s.registry.For(domain.SourceCommerceOrder)
	if err != nil {
		return nil, err
	}
	orderStrategy, ok := strategy.(*source_strategies.OrderStrategy)
	if !ok {
		return nil, fmt.Errorf("commerce-order strategy has unexpected type %T", strategy)
	}

	event, err := orderStrategy.TransformOrder(decoded, "")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWebhookPayload, err)
	}

	action, err := s.upsertEvent(ctx, event)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.WebhookHandled(string(action))
	}
	s.logger.Info().
		Str("externalId", event.ExternalID).
		Str("date", event.Date.Format("2006-01-02")).
		Str("action", string(action)).
		Msg("Processed order webhook")

	return &WebhookResult{
		Success:    true,
		Date:       event.Date.Format("2006-01-02"),
		ExternalID: event.ExternalID,
		Status:     status,
		Action:     action,
	}, nil
}

// RunDueSync executes one poll cycle: every enabled integration whose
// refresh interval has elapsed is fetched, mapped and upserted, in fixed
// id order, one at a time. Failures of one integration are isolated from
// the rest; the cycle may stop between integrations when the context is
// cancelled, never mid-integration.
func (s *SyncService) RunDueSync(ctx context.Context) {
	enabled, err := s.integrations.ListEnabled(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list enabled integrations")
		return
	}
	now := time.Now().UTC()
	for _, integration := range enabled {
		if ctx.Err() != nil {
			s.logger.Warn().Err(ctx.Err()).Msg("Poll cycle cancelled between integrations")
			return
		}
		if !integration.Due(now) {
			continue
		}
		s.syncOne(ctx, integration)
	}
}

// SyncIntegration runs one integration immediately, ignoring the
// refresh-interval gate. This is the admin-triggered manual sync.
func (s *SyncService) SyncIntegration(ctx context.Context, id string) (*domain.SyncAttempt, error) {
	integration, err := s.integrations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if integration == nil {
		return nil, domain.ErrIntegrationNotFound
	}
	return s.syncOne(ctx, integration), nil
}

// syncOne runs the Fetching → Mapping → Upserting cycle for a single
// integration and records the outcome exactly once.
func (s *SyncService) syncOne(ctx context.Context, integration *domain.Integration) *domain.SyncAttempt {
	attempt := &domain.SyncAttempt{
		IntegrationID: integration.ID,
		StartedAt:     time.Now().UTC(),
	}
	log := s.logger.With().Str("integration", integration.ID).Str("name", integration.Name).Logger()

	result, err := s.fetcher.Fetch(ctx, integration)
	if err != nil {
		// Network failures are reported immediately, never retried
		// within the same cycle.
		log.Error().Err(err).Msg("Fetch failed")
		s.recordOutcome(ctx, attempt, fmt.Errorf("fetch: %w", err))
		return attempt
	}

	strategy, err := s.registry.For(integration.SourceKind)
	if err != nil {
		log.Error().Err(err).Msg("No strategy for source kind")
		s.recordOutcome(ctx, attempt, err)
		return attempt
	}

	events, err := strategy.Extract(result.Payload, integration)
	if err != nil {
		log.Error().Err(err).Msg("Extraction failed")
		s.recordOutcome(ctx, attempt, fmt.Errorf("extract: %w", err))
		return attempt
	}

	// Events are upserted in payload list order; an event-level failure
	// is counted and the rest of the batch proceeds.
	for _, event := range events {
		if _, err := s.upsertEvent(ctx, event); err != nil {
			log.Warn().Err(err).Str("title", event.Title).Msg("Event upsert failed")
			attempt.RecordFailure(err)
			continue
		}
		attempt.RecordSuccess()
	}

	s.recordOutcome(ctx, attempt, nil)
	log.Info().
		Int("processed", attempt.Processed).
		Int("succeeded", attempt.Succeeded).
		Int("failed", attempt.Failed).
		Str("status", string(attempt.Outcome())).
		Msg("Integration sync finished")
	return attempt
}

// upsertEvent writes a normalized event as a calendar note in a single
// store operation.
func (s *SyncService) upsertEvent(ctx context.Context, event domain.NormalizedEvent) (domain.UpsertAction, error) {
	if s.systemActorID == "" {
		return "", domain.ErrNoAttributionTarget
	}
	note := &domain.CalendarNote{
		Date:                event.Date,
		Title:               event.Title,
		Content:             event.Body,
		Color:               event.Color,
		Priority:            event.Priority,
		SourceIntegrationID: event.SourceIntegrationID,
		ExternalID:          event.ExternalID,
		CreatedBy:           s.systemActorID,
	}
	action, err := s.notes.Upsert(ctx, note)
	if s.metrics != nil {
		s.metrics.EventProcessed(err == nil)
	}
	if err != nil {
		return "", fmt.Errorf("upserting note: %w", err)
	}
	return action, nil
}

// recordOutcome persists the attempt on the integration: last sync
// timestamp, status and error text (cleared on full success). The write
// is retried on transient contention; an integration-level fetch or
// extract error overrides the counters with an error status. An
// integration is never disabled here, it stays eligible for the next
// cycle.
func (s *SyncService) recordOutcome(ctx context.Context, attempt *domain.SyncAttempt, hardErr error) {
	status := attempt.Outcome()
	lastError := ""
	if hardErr != nil {
		status = domain.SyncError
		lastError = hardErr.Error()
	} else if len(attempt.Errors) > 0 {
		lastError = fmt.Sprintf("%d/%d events failed: %s", attempt.Failed, attempt.Processed, attempt.Errors[0])
	}

	err := retryWrite(ctx, s.logger, "sync-status", func(ctx context.Context) error {
		return s.integrations.UpdateSyncStatus(ctx, attempt.IntegrationID, time.Now().UTC(), status, lastError)
	})
	if err != nil {
		s.logger.Error().Err(err).
			Str("integration", attempt.IntegrationID).
			Msg("Failed to record sync status")
	}
	if s.metrics != nil {
		s.metrics.SyncRun(status)
	}
}
