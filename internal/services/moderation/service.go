package moderation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Dijinx-Lab/Eventify-Server/internal/domain/model"
)

var ErrAlreadyApproved = errors.New("listing is already approved")

type ListingStore interface {
	GetByID(ctx context.Context, kind model.ListingKind, id uuid.UUID) (model.Listing, error)
	SetApproved(ctx context.Context, kind model.ListingKind, id uuid.UUID, at time.Time) (bool, error)
	MarkAlertSent(ctx context.Context, kind model.ListingKind, id uuid.UUID, at time.Time) (bool, error)
}

type UserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (model.User, error)
}

type Notifier interface {
	NotifyOwner(ctx context.Context, owner model.User, listing model.Listing)
	EnqueueAudience(listing model.Listing, owner model.User) bool
}

type Service struct {
	listings ListingStore
	users    UserStore
	notifier Notifier
	log      *zap.Logger
	now      func() time.Time
}

func NewService(listings ListingStore, users UserStore, notifier Notifier, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}

	return &Service{
		listings: listings,
		users:    users,
		notifier: notifier,
		log:      log,
		now:      time.Now,
	}
}

// Approve moves a listing into the approved state, notifies its owner
// and schedules the one-time audience fan-out. Push delivery is best
// effort, only persistence failures surface to the caller.
func (s *Service) Approve(ctx context.Context, kind model.ListingKind, id uuid.UUID) (model.Listing, error) {
	if s.listings == nil || s.users == nil {
		return model.Listing{}, fmt.Errorf("moderation service dependencies are not configured")
	}

	listing, err := s.listings.GetByID(ctx, kind, id)
	if err != nil {
		return model.Listing{}, err
	}
	if listing.Approved() {
		return listing, ErrAlreadyApproved
	}

	owner, err := s.users.GetByID(ctx, listing.OwnerID)
	if err != nil {
		return model.Listing{}, fmt.Errorf("load listing owner: %w", err)
	}

	// The approval stamp is claimed first: a caller racing on a stale
	// read loses here and must not notify anyone.
	approved, err := s.listings.SetApproved(ctx, kind, id, s.now().UTC())
	if err != nil {
		return model.Listing{}, err
	}
	if !approved {
		refreshed, err := s.listings.GetByID(ctx, kind, id)
		if err != nil {
			return model.Listing{}, err
		}
		return refreshed, ErrAlreadyApproved
	}

	if s.notifier != nil {
		s.notifier.NotifyOwner(ctx, owner, listing)
	}

	if listing.Visible && listing.AlertSentAt == nil && s.notifier != nil {
		stamped, err := s.listings.MarkAlertSent(ctx, kind, id, s.now().UTC())
		if err != nil {
			return model.Listing{}, err
		}
		// The alert stamp is a one-shot guard: only the caller that
		// wins it may fan out.
		if stamped {
			s.notifier.EnqueueAudience(listing, owner)
		}
	}

	refreshed, err := s.listings.GetByID(ctx, kind, id)
	if err != nil {
		return model.Listing{}, err
	}

	return refreshed, nil
}
