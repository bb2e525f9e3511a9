package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Dijinx-Lab/Eventify-Server/internal/domain/model"
)

const (
	ownerAction    = "open_lister_events"
	audienceAction = "open_alerts"
)

type PushSender interface {
	Send(ctx context.Context, token, title, body, action, listingID string) error
}

type UserDirectory interface {
	ListAll(ctx context.Context) ([]model.User, error)
	ListByCityPattern(ctx context.Context, city string) ([]model.User, error)
	AppendAlerted(ctx context.Context, userID, listingID uuid.UUID) error
}

type Config struct {
	BufferSize  int
	SendTimeout time.Duration
}

// Dispatcher delivers approval pushes. Owner notifications go out
// inline and audience fan-outs run on a background worker so approval
// requests never wait on the push gateway.
type Dispatcher struct {
	sender      PushSender
	users       UserDirectory
	log         *zap.Logger
	queue       chan fanoutJob
	sendTimeout time.Duration
}

type fanoutJob struct {
	listing model.Listing
	owner   model.User
}

func NewDispatcher(sender PushSender, users UserDirectory, log *zap.Logger, cfg Config) *Dispatcher {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 64
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 10 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Dispatcher{
		sender:      sender,
		users:       users,
		log:         log,
		queue:       make(chan fanoutJob, cfg.BufferSize),
		sendTimeout: cfg.SendTimeout,
	}
}

// Run processes queued fan-outs until ctx is canceled.
func (d *Dispatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-d.queue:
			d.fanOut(ctx, job)
		}
	}
}

// NotifyOwner tells the listing owner their submission was approved.
// Failures are logged and swallowed, approval never depends on push
// delivery.
func (d *Dispatcher) NotifyOwner(ctx context.Context, owner model.User, listing model.Listing) {
	if !owner.CanReceivePush() {
		return
	}

	sendCtx, cancel := context.WithTimeout(ctx, d.sendTimeout)
	defer cancel()

	title := fmt.Sprintf("Your %s is approved 🥳🥳", listing.Kind)
	body := ownerBody(owner, listing)

	if err := d.sender.Send(sendCtx, *owner.PushToken, title, body, ownerAction, listing.ID.String()); err != nil {
		d.log.Warn("owner approval push failed",
			zap.String("listing_id", listing.ID.String()),
			zap.String("owner_id", owner.ID.String()),
			zap.Error(err))
	}
}

// EnqueueAudience schedules a background fan-out to the listing's
// audience. Returns false when the queue is full and the job was
// dropped.
func (d *Dispatcher) EnqueueAudience(listing model.Listing, owner model.User) bool {
	select {
	case d.queue <- fanoutJob{listing: listing, owner: owner}:
		return true
	default:
		d.log.Warn("audience fan-out queue is full, dropping job",
			zap.String("listing_id", listing.ID.String()))
		return false
	}
}

func (d *Dispatcher) fanOut(ctx context.Context, job fanoutJob) {
	candidates, err := d.audience(ctx, job.listing)
	if err != nil {
		d.log.Warn("load fan-out audience failed",
			zap.String("listing_id", job.listing.ID.String()),
			zap.Error(err))
		return
	}

	title := fmt.Sprintf("New %s near you 🎉 🎉", job.listing.Kind)
	body := fmt.Sprintf("%s just posted a new %s %s. Click here to find out more about it",
		job.owner.FirstName, job.listing.Kind, job.listing.Name)

	for _, candidate := range candidates {
		if candidate.ID == job.owner.ID || !candidate.CanReceivePush() {
			continue
		}

		if err := d.users.AppendAlerted(ctx, candidate.ID, job.listing.ID); err != nil {
			d.log.Warn("record alerted listing failed",
				zap.String("user_id", candidate.ID.String()),
				zap.String("listing_id", job.listing.ID.String()),
				zap.Error(err))
			continue
		}

		sendCtx, cancel := context.WithTimeout(ctx, d.sendTimeout)
		err := d.sender.Send(sendCtx, *candidate.PushToken, title, body, audienceAction, job.listing.ID.String())
		cancel()
		if err != nil {
			d.log.Warn("audience push failed",
				zap.String("user_id", candidate.ID.String()),
				zap.String("listing_id", job.listing.ID.String()),
				zap.Error(err))
		}
	}
}

// audience picks fan-out candidates. Events reach users in the same
// city, sales reach the whole userbase.
func (d *Dispatcher) audience(ctx context.Context, listing model.Listing) ([]model.User, error) {
	if listing.Kind == model.KindEvent && listing.City != "" {
		return d.users.ListByCityPattern(ctx, listing.City)
	}
	return d.users.ListAll(ctx)
}

func ownerBody(owner model.User, listing model.Listing) string {
	if listing.Visible {
		return fmt.Sprintf("Hi %s, %s just got approved by our team. Your %s is now discoverable publicly on Event Bazaar",
			owner.FirstName, listing.Name, listing.Kind)
	}
	return fmt.Sprintf("Hi %s, %s just got approved by our team. However your %s is not discoverable publicly on Event Bazaar, please turn its visibility on to do so",
		owner.FirstName, listing.Name, listing.Kind)
}
