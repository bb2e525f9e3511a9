package stats

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Dijinx-Lab/Eventify-Server/internal/domain/engagement"
	"github.com/Dijinx-Lab/Eventify-Server/internal/domain/model"
)

var ErrInvalidFilter = errors.New("invalid stats filter")

// RateLimitError reports a throttled engagement write together with
// the number of seconds the client should wait.
type RateLimitError struct {
	RetryAfterSec int64
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("too many engagement updates, retry after %ds", e.RetryAfterSec)
}

type EngagementStore interface {
	Mutate(ctx context.Context, kind model.ListingKind, listingID, actorID uuid.UUID, fn func(*model.Listing, *model.User) (bool, error)) error
}

type ListingStore interface {
	GetByID(ctx context.Context, kind model.ListingKind, id uuid.UUID) (model.Listing, error)
}

type UserStore interface {
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.User, error)
}

type Limiter interface {
	AllowEngagement(ctx context.Context, actorID uuid.UUID) (int64, bool, error)
}

type Service struct {
	engagements EngagementStore
	listings    ListingStore
	users       UserStore
	limiter     Limiter
}

// UserSummary is the projection of an engaged user exposed to listing
// owners. It deliberately omits push tokens and app state.
type UserSummary struct {
	FirstName   string
	LastName    string
	Email       string
	CountryCode string
	Phone       string
}

type StatsUsers struct {
	Counts model.StatCounts
	Users  []UserSummary
}

func NewService(engagements EngagementStore, listings ListingStore, users UserStore, limiter Limiter) *Service {
	return &Service{
		engagements: engagements,
		listings:    listings,
		users:       users,
		limiter:     limiter,
	}
}

// Update applies one engagement action to a listing. The owner acting
// on their own listing is silently ignored.
func (s *Service) Update(ctx context.Context, kind model.ListingKind, listingID, actorID uuid.UUID, req engagement.Request) error {
	if s.limiter != nil {
		retryAfter, allowed, err := s.limiter.AllowEngagement(ctx, actorID)
		if err != nil {
			return err
		}
		if !allowed {
			return &RateLimitError{RetryAfterSec: retryAfter}
		}
	}

	return s.engagements.Mutate(ctx, kind, listingID, actorID, func(listing *model.Listing, actor *model.User) (bool, error) {
		return engagement.Apply(listing, actor, req), nil
	})
}

// Audience returns the engagement counts plus the users behind one of
// the interested, going or bookmarked sets.
func (s *Service) Audience(ctx context.Context, kind model.ListingKind, listingID uuid.UUID, filter string) (StatsUsers, error) {
	listing, err := s.listings.GetByID(ctx, kind, listingID)
	if err != nil {
		return StatsUsers{}, err
	}

	var ids []uuid.UUID
	switch strings.ToLower(strings.TrimSpace(filter)) {
	case "interested":
		ids = listing.Stats.Interested
	case "going":
		ids = listing.Stats.Going
	case "bookmarked":
		ids = listing.Stats.Bookmarked
	default:
		return StatsUsers{}, ErrInvalidFilter
	}

	result := StatsUsers{
		Counts: listing.Stats.Counts(),
		Users:  []UserSummary{},
	}

	if len(ids) == 0 {
		return result, nil
	}

	users, err := s.users.GetByIDs(ctx, ids)
	if err != nil {
		return StatsUsers{}, err
	}

	for _, user := range users {
		result.Users = append(result.Users, UserSummary{
			FirstName:   user.FirstName,
			LastName:    user.LastName,
			Email:       user.Email,
			CountryCode: user.CountryCode,
			Phone:       user.Phone,
		})
	}

	return result, nil
}
