package stats

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/Dijinx-Lab/Eventify-Server/internal/domain/engagement"
	"github.com/Dijinx-Lab/Eventify-Server/internal/domain/model"
	pgrepo "github.com/Dijinx-Lab/Eventify-Server/internal/repo/postgres"
)

type memoryEngagementStore struct {
	listings map[uuid.UUID]*model.Listing
	users    map[uuid.UUID]*model.User
}

func newMemoryEngagementStore() *memoryEngagementStore {
	return &memoryEngagementStore{
		listings: make(map[uuid.UUID]*model.Listing),
		users:    make(map[uuid.UUID]*model.User),
	}
}

func (s *memoryEngagementStore) Mutate(_ context.Context, kind model.ListingKind, listingID, actorID uuid.UUID, fn func(*model.Listing, *model.User) (bool, error)) error {
	listing, ok := s.listings[listingID]
	if !ok || listing.Kind != kind {
		return pgrepo.ErrListingNotFound
	}
	actor, ok := s.users[actorID]
	if !ok {
		return pgrepo.ErrUserNotFound
	}
	_, err := fn(listing, actor)
	return err
}

func (s *memoryEngagementStore) GetByID(_ context.Context, kind model.ListingKind, id uuid.UUID) (model.Listing, error) {
	listing, ok := s.listings[id]
	if !ok || listing.Kind != kind {
		return model.Listing{}, pgrepo.ErrListingNotFound
	}
	return *listing, nil
}

func (s *memoryEngagementStore) GetByIDs(_ context.Context, ids []uuid.UUID) ([]model.User, error) {
	var out []model.User
	for _, id := range ids {
		if user, ok := s.users[id]; ok {
			out = append(out, *user)
		}
	}
	return out, nil
}

type stubLimiter struct {
	allowed    bool
	retryAfter int64
	calls      int
}

func (l *stubLimiter) AllowEngagement(_ context.Context, _ uuid.UUID) (int64, bool, error) {
	l.calls++
	if l.allowed {
		return 0, true, nil
	}
	return l.retryAfter, false, nil
}

func seed(store *memoryEngagementStore) (*model.Listing, *model.User) {
	listing := &model.Listing{ID: uuid.New(), Kind: model.KindEvent, OwnerID: uuid.New(), Name: "Qawwali Night"}
	actor := &model.User{ID: uuid.New(), FirstName: "Sana", LastName: "Khan", Email: "sana@example.com", CountryCode: "+92", Phone: "3001234567"}
	store.listings[listing.ID] = listing
	store.users[actor.ID] = actor
	return listing, actor
}

func TestUpdateRecordsEngagement(t *testing.T) {
	store := newMemoryEngagementStore()
	listing, actor := seed(store)

	service := NewService(store, store, store, &stubLimiter{allowed: true})

	pref := engagement.PreferenceGoing
	bookmark := true
	err := service.Update(context.Background(), model.KindEvent, listing.ID, actor.ID, engagement.Request{
		Preference: &pref,
		Bookmarked: &bookmark,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if len(listing.Stats.Viewed) != 1 || len(listing.Stats.Going) != 1 || len(listing.Stats.Bookmarked) != 1 {
		t.Fatalf("unexpected stats after update: %+v", listing.Stats)
	}
	if len(actor.Bookmarked) != 1 || actor.Bookmarked[0] != listing.ID {
		t.Fatalf("actor bookmarks not synced: %v", actor.Bookmarked)
	}
}

func TestUpdateIsThrottled(t *testing.T) {
	store := newMemoryEngagementStore()
	listing, actor := seed(store)

	limiter := &stubLimiter{allowed: false, retryAfter: 7}
	service := NewService(store, store, store, limiter)

	err := service.Update(context.Background(), model.KindEvent, listing.ID, actor.ID, engagement.Request{})

	var rateErr *RateLimitError
	if !errors.As(err, &rateErr) {
		t.Fatalf("expected RateLimitError, got %v", err)
	}
	if rateErr.RetryAfterSec != 7 {
		t.Fatalf("expected retry-after 7, got %d", rateErr.RetryAfterSec)
	}
	if len(listing.Stats.Viewed) != 0 {
		t.Fatal("throttled update must not touch stats")
	}
}

func TestUpdateUnknownListing(t *testing.T) {
	store := newMemoryEngagementStore()
	_, actor := seed(store)

	service := NewService(store, store, store, &stubLimiter{allowed: true})

	err := service.Update(context.Background(), model.KindEvent, uuid.New(), actor.ID, engagement.Request{})
	if !errors.Is(err, pgrepo.ErrListingNotFound) {
		t.Fatalf("expected ErrListingNotFound, got %v", err)
	}
}

func TestAudienceProjectsUsers(t *testing.T) {
	store := newMemoryEngagementStore()
	listing, actor := seed(store)
	listing.Stats.Interested = []uuid.UUID{actor.ID}
	listing.Stats.Viewed = []uuid.UUID{actor.ID, uuid.New()}

	service := NewService(store, store, store, nil)

	result, err := service.Audience(context.Background(), model.KindEvent, listing.ID, "Interested")
	if err != nil {
		t.Fatalf("audience: %v", err)
	}
	if result.Counts.Viewed != 2 || result.Counts.Interested != 1 {
		t.Fatalf("unexpected counts: %+v", result.Counts)
	}
	if len(result.Users) != 1 {
		t.Fatalf("expected 1 user, got %d", len(result.Users))
	}
	user := result.Users[0]
	if user.FirstName != "Sana" || user.Email != "sana@example.com" || user.Phone != "3001234567" {
		t.Fatalf("unexpected projection: %+v", user)
	}
}

func TestAudienceRejectsUnknownFilter(t *testing.T) {
	store := newMemoryEngagementStore()
	listing, _ := seed(store)

	service := NewService(store, store, store, nil)

	if _, err := service.Audience(context.Background(), model.KindEvent, listing.ID, "viewed"); !errors.Is(err, ErrInvalidFilter) {
		t.Fatalf("expected ErrInvalidFilter, got %v", err)
	}
}
