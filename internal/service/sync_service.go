package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"pos-sync-server/internal/domain"
	"pos-sync-server/internal/repository"
)

// SyncService is the remote resolver: it drains the outbox and reconciles
// each pending intent against the remote mirror with a last-writer-wins rule
// keyed on version, tie-broken by updated_at. Repeated delivery of the same
// or a stale item is a no-op, so at-least-once processing is safe.
type SyncService struct {
	productRepo repository.ProductRepository
	outboxRepo  repository.OutboxRepository
	remoteRepo  repository.RemoteProductRepository
	maxAttempts int64
}

func NewSyncService(
	productRepo repository.ProductRepository,
	outboxRepo repository.OutboxRepository,
	remoteRepo repository.RemoteProductRepository,
	maxAttempts int64,
) *SyncService {
	return &SyncService{
		productRepo: productRepo,
		outboxRepo:  outboxRepo,
		remoteRepo:  remoteRepo,
		maxAttempts: maxAttempts,
	}
}

// PushBatch processes up to limit outbox items, oldest first. Each item's
// outcome is isolated: a failure marks the attempt and moves on, it never
// aborts the rest of the batch.
func (s *SyncService) PushBatch(ctx context.Context, limit int) error {
	items, err := s.outboxRepo.NextBatch(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to fetch outbox batch: %w", err)
	}

	for _, item := range items {
		if s.maxAttempts > 0 && item.AttemptCount >= s.maxAttempts {
			// Operator-capped item: left queued for inspection, never
			// silently dropped.
			continue
		}

		if err := s.processItem(ctx, item); err != nil {
			log.Printf("[Sync] push failed for %s %s (attempt %d): %v", item.EntityType, item.EntityID, item.AttemptCount+1, err)
			if markErr := s.outboxRepo.MarkAttempt(ctx, item.ID, err.Error()); markErr != nil {
				log.Printf("[Sync] failed to record attempt for item %s: %v", item.ID, markErr)
			}
		}
	}

	return nil
}

func (s *SyncService) processItem(ctx context.Context, item *domain.OutboxItem) error {
	switch item.EntityType {
	case domain.EntityTypeProduct:
		return s.processProduct(ctx, item)
	default:
		// An unknown type can only come from a newer schema; leave it
		// queued rather than guessing.
		return fmt.Errorf("unknown entity type %q", item.EntityType)
	}
}

func (s *SyncService) processProduct(ctx context.Context, item *domain.OutboxItem) error {
	local, err := s.productRepo.FindAnyByID(ctx, item.EntityID)
	if errors.Is(err, repository.ErrNotFound) {
		// Entity deleted locally before the push: the intent is stale.
		// Dropping it is a success, not a failure.
		return s.outboxRepo.Delete(ctx, item.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to load local product: %w", err)
	}

	remote, err := s.remoteRepo.Find(ctx, local.ID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		if err := s.remoteRepo.Create(ctx, local); err != nil {
			return err
		}
	case err != nil:
		return err
	case shouldApply(remote, local):
		if err := s.remoteRepo.Update(ctx, local); err != nil {
			return err
		}
	default:
		// Remote already at or past this version: already reconciled.
	}

	if err := s.productRepo.MarkSynced(ctx, local.ID, local.Version); err != nil {
		return err
	}

	return s.outboxRepo.Delete(ctx, item.ID)
}

// shouldApply is the merge rule: the local payload wins only when it is
// strictly newer by version, or same version with a later updated_at. The
// remote version never regresses.
func shouldApply(remote, local *domain.Product) bool {
	if remote.Version < local.Version {
		return true
	}
	if remote.Version == local.Version && remote.UpdatedAt.Before(local.UpdatedAt) {
		return true
	}
	return false
}

// QueueDepth reports how many intents are still pending, for the health
// surface.
func (s *SyncService) QueueDepth(ctx context.Context) (int64, error) {
	return s.outboxRepo.CountPending(ctx)
}
