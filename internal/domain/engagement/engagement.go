package engagement

import (
	"errors"

	"github.com/google/uuid"

	"github.com/Dijinx-Lab/Eventify-Server/internal/domain/model"
)

var ErrInvalidPreference = errors.New("invalid preference value")

type Preference string

const (
	PreferenceInterested Preference = "interested"
	PreferenceGoing      Preference = "going"
)

func ParsePreference(raw string) (Preference, error) {
	switch Preference(raw) {
	case PreferenceInterested:
		return PreferenceInterested, nil
	case PreferenceGoing:
		return PreferenceGoing, nil
	default:
		return "", ErrInvalidPreference
	}
}

// Request describes a single engagement action. A view is always
// implied; Preference and Bookmarked only take effect when set.
type Request struct {
	Preference *Preference
	Bookmarked *bool
}

// Apply computes the next engagement state of a listing/actor pair in
// place and reports whether anything changed. An owner acting on their
// own listing is a no-op. The listing-side bookmark set is the source
// of truth for the toggle; the actor's Bookmarked set is kept in sync
// within the same call.
func Apply(listing *model.Listing, actor *model.User, req Request) bool {
	if listing == nil || actor == nil {
		return false
	}
	if listing.OwnerID == actor.ID {
		return false
	}

	changed := applyView(listing, actor.ID)
	if req.Bookmarked != nil {
		changed = toggleBookmark(listing, actor) || changed
	}
	if req.Preference != nil {
		changed = applyPreference(listing, actor.ID, *req.Preference) || changed
	}

	return changed
}

// applyView records the actor in the viewed set once. Views are never
// removed.
func applyView(listing *model.Listing, actorID uuid.UUID) bool {
	if containsID(listing.Stats.Viewed, actorID) {
		return false
	}
	listing.Stats.Viewed = append(listing.Stats.Viewed, actorID)
	return true
}

// applyPreference moves the actor into the requested set, removing them
// from the opposite one so that interested and going stay mutually
// exclusive.
func applyPreference(listing *model.Listing, actorID uuid.UUID, pref Preference) bool {
	interested := containsID(listing.Stats.Interested, actorID)
	going := containsID(listing.Stats.Going, actorID)

	if interested && pref == PreferenceInterested {
		return false
	}
	if going && pref == PreferenceGoing {
		return false
	}

	if interested {
		listing.Stats.Interested = removeID(listing.Stats.Interested, actorID)
	}
	if going {
		listing.Stats.Going = removeID(listing.Stats.Going, actorID)
	}

	switch pref {
	case PreferenceInterested:
		listing.Stats.Interested = append(listing.Stats.Interested, actorID)
	case PreferenceGoing:
		listing.Stats.Going = append(listing.Stats.Going, actorID)
	}

	return true
}

func toggleBookmark(listing *model.Listing, actor *model.User) bool {
	if containsID(listing.Stats.Bookmarked, actor.ID) {
		listing.Stats.Bookmarked = removeID(listing.Stats.Bookmarked, actor.ID)
		actor.Bookmarked = removeID(actor.Bookmarked, listing.ID)
		return true
	}

	listing.Stats.Bookmarked = append(listing.Stats.Bookmarked, actor.ID)
	if !containsID(actor.Bookmarked, listing.ID) {
		actor.Bookmarked = append(actor.Bookmarked, listing.ID)
	}
	return true
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

func removeID(ids []uuid.UUID, id uuid.UUID) []uuid.UUID {
	filtered := ids[:0]
	for _, candidate := range ids {
		if candidate != id {
			filtered = append(filtered, candidate)
		}
	}
	return filtered
}
