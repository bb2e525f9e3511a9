package cleanup

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Dijinx-Lab/Eventify-Server/internal/domain/model"
)

type listingPurger interface {
	ListSoftDeletedBefore(ctx context.Context, cutoff time.Time) ([]model.Listing, error)
	HardDelete(ctx context.Context, id uuid.UUID) error
}

type objectDeleter interface {
	Delete(ctx context.Context, key string) error
}

// Job hard-deletes listings whose soft-delete grace period has passed
// and removes their images from object storage.
type Job struct {
	listings  listingPurger
	storage   objectDeleter
	retention time.Duration
	now       func() time.Time
	logger    *zap.Logger
}

func New(listings listingPurger, storage objectDeleter, retention time.Duration, logger *zap.Logger) *Job {
	if retention <= 0 {
		retention = 30 * 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Job{
		listings:  listings,
		storage:   storage,
		retention: retention,
		now:       time.Now,
		logger:    logger,
	}
}

func (j *Job) Run(ctx context.Context) error {
	if j.listings == nil {
		return nil
	}

	cutoff := j.now().Add(-j.retention)
	stale, err := j.listings.ListSoftDeletedBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("list stale listings: %w", err)
	}

	if len(stale) == 0 {
		return nil
	}

	for _, listing := range stale {
		if j.storage != nil {
			for _, key := range listing.Images {
				if err := j.storage.Delete(ctx, key); err != nil {
					j.logger.Warn("failed to delete listing image from storage",
						zap.Error(err),
						zap.String("object_key", key))
				}
			}
		}
		if err := j.listings.HardDelete(ctx, listing.ID); err != nil {
			return fmt.Errorf("hard delete listing: %w", err)
		}
	}

	j.logger.Info("cleanup stale listings completed", zap.Int("deleted", len(stale)))
	return nil
}

// RunEvery runs the job on a fixed interval until ctx is canceled.
func (j *Job) RunEvery(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 24 * time.Hour
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := j.Run(ctx); err != nil {
				j.logger.Warn("cleanup run failed", zap.Error(err))
			}
		}
	}
}
