package listings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Dijinx-Lab/Eventify-Server/internal/domain/model"
	"github.com/Dijinx-Lab/Eventify-Server/internal/pkg/validate"
	pgrepo "github.com/Dijinx-Lab/Eventify-Server/internal/repo/postgres"
)

var (
	ErrForbidden      = errors.New("listing does not belong to this user")
	ErrViewerRequired = errors.New("viewer is required for this filter")
	ErrValidation     = errors.New("invalid listing payload")
)

type ListingStore interface {
	Insert(ctx context.Context, listing *model.Listing) error
	GetByID(ctx context.Context, kind model.ListingKind, id uuid.UUID) (model.Listing, error)
	ListPublic(ctx context.Context, kind model.ListingKind) ([]model.Listing, error)
	ListByOwner(ctx context.Context, kind model.ListingKind, ownerID uuid.UUID) ([]model.Listing, error)
	ListByCity(ctx context.Context, kind model.ListingKind, city string) ([]model.Listing, error)
	ListUnapproved(ctx context.Context, kind model.ListingKind) ([]model.Listing, error)
	ListByIDs(ctx context.Context, kind model.ListingKind, ids []uuid.UUID) ([]model.Listing, error)
	ApplyPatch(ctx context.Context, kind model.ListingKind, id uuid.UUID, patch pgrepo.ListingPatch) error
	SoftDelete(ctx context.Context, kind model.ListingKind, id uuid.UUID, at time.Time) error
}

type UserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (model.User, error)
}

type Approver interface {
	Approve(ctx context.Context, kind model.ListingKind, id uuid.UUID) (model.Listing, error)
}

type Config struct {
	// AutoApproveEmails lists trusted accounts whose listings skip the
	// moderation queue.
	AutoApproveEmails []string
}

type Service struct {
	listings    ListingStore
	users       UserStore
	approver    Approver
	autoApprove map[string]struct{}
	log         *zap.Logger
	now         func() time.Time
}

type CreateInput struct {
	Kind        model.ListingKind
	OwnerID     uuid.UUID
	Visible     bool
	Name        string
	Description string
	City        string
	Images      []string
	Event       *model.EventDetails
	Sale        *model.SaleDetails
}

func NewService(listings ListingStore, users UserStore, approver Approver, log *zap.Logger, cfg Config) *Service {
	if log == nil {
		log = zap.NewNop()
	}

	autoApprove := make(map[string]struct{}, len(cfg.AutoApproveEmails))
	for _, email := range cfg.AutoApproveEmails {
		email = strings.ToLower(strings.TrimSpace(email))
		if email != "" {
			autoApprove[email] = struct{}{}
		}
	}

	return &Service{
		listings:    listings,
		users:       users,
		approver:    approver,
		autoApprove: autoApprove,
		log:         log,
		now:         time.Now,
	}
}

// Create persists a new listing in the pending state. Listings from
// trusted accounts are approved immediately after the insert.
func (s *Service) Create(ctx context.Context, input CreateInput) (View, error) {
	if err := input.validate(); err != nil {
		return View{}, err
	}

	owner, err := s.users.GetByID(ctx, input.OwnerID)
	if err != nil {
		return View{}, fmt.Errorf("load listing owner: %w", err)
	}

	listing := model.Listing{
		ID:          uuid.New(),
		Kind:        input.Kind,
		OwnerID:     owner.ID,
		Visible:     input.Visible,
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		City:        strings.TrimSpace(input.City),
		Images:      input.Images,
		Event:       input.Event,
		Sale:        input.Sale,
		CreatedAt:   s.now().UTC(),
	}

	if err := s.listings.Insert(ctx, &listing); err != nil {
		return View{}, err
	}

	if s.isTrusted(owner.Email) && s.approver != nil {
		if _, err := s.approver.Approve(ctx, listing.Kind, listing.ID); err != nil {
			s.log.Warn("auto-approval failed",
				zap.String("listing_id", listing.ID.String()),
				zap.Error(err))
		}
	}

	refreshed, err := s.listings.GetByID(ctx, listing.Kind, listing.ID)
	if err != nil {
		return View{}, err
	}

	return Format(refreshed, &owner.ID), nil
}

// List resolves a filter to a set of listings. Known scopes are all,
// user, bookmarked, alerted and unapproved. Anything else is treated
// as a city name.
func (s *Service) List(ctx context.Context, kind model.ListingKind, filter string, viewer *model.User) ([]View, error) {
	scope := strings.ToLower(strings.TrimSpace(filter))

	var (
		found    []model.Listing
		err      error
		viewerID *uuid.UUID
	)
	if viewer != nil {
		viewerID = &viewer.ID
	}

	switch scope {
	case "all":
		if viewer == nil {
			return nil, ErrViewerRequired
		}
		found, err = s.listings.ListPublic(ctx, kind)
	case "user":
		if viewer == nil {
			return nil, ErrViewerRequired
		}
		found, err = s.listings.ListByOwner(ctx, kind, viewer.ID)
	case "bookmarked":
		if viewer == nil {
			return nil, ErrViewerRequired
		}
		found, err = s.listings.ListByIDs(ctx, kind, viewer.Bookmarked)
	case "alerted":
		if viewer == nil {
			return nil, ErrViewerRequired
		}
		found, err = s.listings.ListByIDs(ctx, kind, viewer.Alerted)
	case "unapproved":
		// Moderation reads are anonymous, no viewer state attached.
		viewerID = nil
		found, err = s.listings.ListUnapproved(ctx, kind)
	default:
		found, err = s.listings.ListByCity(ctx, kind, scope)
	}
	if err != nil {
		return nil, err
	}

	views := make([]View, 0, len(found))
	for _, listing := range found {
		views = append(views, Format(listing, viewerID))
	}

	return views, nil
}

// ListFor loads the viewer by id and resolves the filter. A nil
// viewerID serves anonymous scopes only.
func (s *Service) ListFor(ctx context.Context, kind model.ListingKind, filter string, viewerID *uuid.UUID) ([]View, error) {
	var viewer *model.User
	if viewerID != nil {
		loaded, err := s.users.GetByID(ctx, *viewerID)
		if err != nil {
			return nil, fmt.Errorf("load viewer: %w", err)
		}
		viewer = &loaded
	}
	return s.List(ctx, kind, filter, viewer)
}

func (s *Service) Get(ctx context.Context, kind model.ListingKind, id uuid.UUID, viewerID *uuid.UUID) (View, error) {
	listing, err := s.listings.GetByID(ctx, kind, id)
	if err != nil {
		return View{}, err
	}
	return Format(listing, viewerID), nil
}

// Update applies a partial edit. Only the owner may edit a listing.
func (s *Service) Update(ctx context.Context, kind model.ListingKind, id, actorID uuid.UUID, patch pgrepo.ListingPatch) (View, error) {
	existing, err := s.listings.GetByID(ctx, kind, id)
	if err != nil {
		return View{}, err
	}
	if existing.OwnerID != actorID {
		return View{}, ErrForbidden
	}

	if err := s.listings.ApplyPatch(ctx, kind, id, patch); err != nil {
		return View{}, err
	}

	refreshed, err := s.listings.GetByID(ctx, kind, id)
	if err != nil {
		return View{}, err
	}

	return Format(refreshed, &actorID), nil
}

// Delete soft-deletes a listing. Only the owner may delete it.
func (s *Service) Delete(ctx context.Context, kind model.ListingKind, id, actorID uuid.UUID) error {
	existing, err := s.listings.GetByID(ctx, kind, id)
	if err != nil {
		return err
	}
	if existing.OwnerID != actorID {
		return ErrForbidden
	}

	return s.listings.SoftDelete(ctx, kind, id, s.now().UTC())
}

func (s *Service) isTrusted(email string) bool {
	_, ok := s.autoApprove[strings.ToLower(strings.TrimSpace(email))]
	return ok
}

func (input CreateInput) validate() error {
	if input.OwnerID == uuid.Nil {
		return fmt.Errorf("%w: owner is required", ErrValidation)
	}
	if !validate.Required(input.Name) {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}

	switch input.Kind {
	case model.KindEvent:
		if input.Event == nil || input.Sale != nil {
			return fmt.Errorf("%w: event listing requires event details", ErrValidation)
		}
	case model.KindSale:
		if input.Sale == nil || input.Event != nil {
			return fmt.Errorf("%w: sale listing requires sale details", ErrValidation)
		}
	default:
		return fmt.Errorf("%w: unknown listing kind %q", ErrValidation, input.Kind)
	}

	return nil
}
