package engagement

import (
	"testing"

	"github.com/google/uuid"

	"github.com/Dijinx-Lab/Eventify-Server/internal/domain/model"
)

func newListing(owner uuid.UUID) *model.Listing {
	return &model.Listing{
		ID:      uuid.New(),
		Kind:    model.KindEvent,
		OwnerID: owner,
	}
}

func newActor() *model.User {
	return &model.User{ID: uuid.New()}
}

func prefPtr(p Preference) *Preference { return &p }

func boolPtr(b bool) *bool { return &b }

func TestParsePreference(t *testing.T) {
	tests := []struct {
		raw     string
		want    Preference
		wantErr bool
	}{
		{raw: "interested", want: PreferenceInterested},
		{raw: "going", want: PreferenceGoing},
		{raw: "Going", wantErr: true},
		{raw: "bookmarked", wantErr: true},
		{raw: "", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParsePreference(tt.raw)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("expected error for %q", tt.raw)
			}
			continue
		}
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", tt.raw, err)
		}
		if got != tt.want {
			t.Fatalf("unexpected preference for %q: got %s want %s", tt.raw, got, tt.want)
		}
	}
}

func TestViewIsIdempotent(t *testing.T) {
	listing := newListing(uuid.New())
	actor := newActor()

	if changed := Apply(listing, actor, Request{}); !changed {
		t.Fatal("expected first view to change the listing")
	}
	if changed := Apply(listing, actor, Request{}); changed {
		t.Fatal("expected repeated view to be a no-op")
	}
	if len(listing.Stats.Viewed) != 1 {
		t.Fatalf("expected one viewed entry, got %d", len(listing.Stats.Viewed))
	}

	other := newActor()
	Apply(listing, other, Request{})
	if len(listing.Stats.Viewed) != 2 {
		t.Fatalf("expected two viewed entries after distinct actor, got %d", len(listing.Stats.Viewed))
	}
}

func TestOwnerEngagementIsNoOp(t *testing.T) {
	owner := newActor()
	listing := newListing(owner.ID)

	changed := Apply(listing, owner, Request{
		Preference: prefPtr(PreferenceGoing),
		Bookmarked: boolPtr(true),
	})
	if changed {
		t.Fatal("expected owner engagement to be a no-op")
	}
	if len(listing.Stats.Viewed) != 0 || len(listing.Stats.Going) != 0 || len(listing.Stats.Bookmarked) != 0 {
		t.Fatalf("expected listing untouched, got stats %+v", listing.Stats)
	}
	if len(owner.Bookmarked) != 0 {
		t.Fatalf("expected owner bookmarks untouched, got %v", owner.Bookmarked)
	}
}

func TestPreferenceMutualExclusivity(t *testing.T) {
	listing := newListing(uuid.New())
	actor := newActor()

	sequence := []Preference{
		PreferenceInterested,
		PreferenceGoing,
		PreferenceGoing,
		PreferenceInterested,
		PreferenceGoing,
	}

	for i, pref := range sequence {
		Apply(listing, actor, Request{Preference: prefPtr(pref)})

		inInterested := 0
		for _, id := range listing.Stats.Interested {
			if id == actor.ID {
				inInterested++
			}
		}
		inGoing := 0
		for _, id := range listing.Stats.Going {
			if id == actor.ID {
				inGoing++
			}
		}
		if inInterested+inGoing != 1 {
			t.Fatalf("step %d: actor must be in exactly one preference set, interested=%d going=%d", i, inInterested, inGoing)
		}
		if pref == PreferenceInterested && inInterested != 1 {
			t.Fatalf("step %d: expected actor in interested", i)
		}
		if pref == PreferenceGoing && inGoing != 1 {
			t.Fatalf("step %d: expected actor in going", i)
		}
	}
}

func TestRepeatedPreferenceIsNoOp(t *testing.T) {
	listing := newListing(uuid.New())
	actor := newActor()

	if changed := Apply(listing, actor, Request{Preference: prefPtr(PreferenceInterested)}); !changed {
		t.Fatal("expected first preference to change the listing")
	}
	if changed := Apply(listing, actor, Request{Preference: prefPtr(PreferenceInterested)}); changed {
		t.Fatal("expected repeated preference to be a no-op")
	}
	if len(listing.Stats.Interested) != 1 {
		t.Fatalf("expected one interested entry, got %d", len(listing.Stats.Interested))
	}
}

func TestBookmarkToggleKeepsBothSidesInSync(t *testing.T) {
	listing := newListing(uuid.New())
	actor := newActor()

	Apply(listing, actor, Request{Bookmarked: boolPtr(true)})
	if !containsID(listing.Stats.Bookmarked, actor.ID) {
		t.Fatal("expected actor in listing bookmarks after toggle on")
	}
	if !containsID(actor.Bookmarked, listing.ID) {
		t.Fatal("expected listing in actor bookmarks after toggle on")
	}

	Apply(listing, actor, Request{Bookmarked: boolPtr(true)})
	if containsID(listing.Stats.Bookmarked, actor.ID) {
		t.Fatal("expected actor removed from listing bookmarks after toggle off")
	}
	if containsID(actor.Bookmarked, listing.ID) {
		t.Fatal("expected listing removed from actor bookmarks after toggle off")
	}
}

// Full walk-through of a second user engaging with a listing:
// interested, then going, then bookmarking twice.
func TestEngagementScenario(t *testing.T) {
	owner := newActor()
	listing := newListing(owner.ID)
	visitor := newActor()

	Apply(listing, visitor, Request{Preference: prefPtr(PreferenceInterested)})
	if len(listing.Stats.Interested) != 1 || listing.Stats.Interested[0] != visitor.ID {
		t.Fatalf("expected interested=[visitor], got %v", listing.Stats.Interested)
	}

	Apply(listing, visitor, Request{Preference: prefPtr(PreferenceGoing)})
	if len(listing.Stats.Interested) != 0 {
		t.Fatalf("expected interested emptied, got %v", listing.Stats.Interested)
	}
	if len(listing.Stats.Going) != 1 || listing.Stats.Going[0] != visitor.ID {
		t.Fatalf("expected going=[visitor], got %v", listing.Stats.Going)
	}

	Apply(listing, visitor, Request{Bookmarked: boolPtr(true)})
	if len(listing.Stats.Bookmarked) != 1 || len(visitor.Bookmarked) != 1 {
		t.Fatalf("expected bookmark on both sides, got listing=%v user=%v", listing.Stats.Bookmarked, visitor.Bookmarked)
	}

	Apply(listing, visitor, Request{Bookmarked: boolPtr(true)})
	if len(listing.Stats.Bookmarked) != 0 || len(visitor.Bookmarked) != 0 {
		t.Fatalf("expected bookmark reverted on both sides, got listing=%v user=%v", listing.Stats.Bookmarked, visitor.Bookmarked)
	}

	if len(listing.Stats.Viewed) != 1 {
		t.Fatalf("expected a single view for the visitor, got %d", len(listing.Stats.Viewed))
	}
}
