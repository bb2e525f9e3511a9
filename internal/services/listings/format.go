package listings

import (
	"github.com/google/uuid"

	"github.com/Dijinx-Lab/Eventify-Server/internal/domain/model"
)

const (
	PreferenceInterested = "interested"
	PreferenceGoing      = "going"
)

// PreferenceView carries the viewer's relationship with a listing. It
// is nil on anonymous reads.
type PreferenceView struct {
	Bookmarked bool
	Preference *string
}

// View is the client-facing projection of a listing. Raw engagement
// id sets, visibility flags and lifecycle stamps stay internal, only
// counts and the viewer's own state go out.
type View struct {
	ID          uuid.UUID
	Kind        model.ListingKind
	MyEvent     bool
	Name        string
	Description string
	City        string
	Images      []string
	Event       *model.EventDetails
	Sale        *model.SaleDetails
	Stats       model.StatCounts
	Preference  *PreferenceView
	ApprovedAt  *int64
}

// Format projects a listing for a viewer. Interested wins over going
// when the same id somehow appears in both sets.
func Format(listing model.Listing, viewerID *uuid.UUID) View {
	view := View{
		ID:          listing.ID,
		Kind:        listing.Kind,
		Name:        listing.Name,
		Description: listing.Description,
		City:        listing.City,
		Images:      cleanImages(listing.Images),
		Event:       listing.Event,
		Sale:        listing.Sale,
		Stats:       listing.Stats.Counts(),
	}

	if listing.ApprovedAt != nil {
		unix := listing.ApprovedAt.Unix()
		view.ApprovedAt = &unix
	}

	if viewerID == nil {
		return view
	}

	view.MyEvent = listing.OwnerID == *viewerID

	pref := &PreferenceView{}
	if containsID(listing.Stats.Interested, *viewerID) {
		p := PreferenceInterested
		pref.Preference = &p
	} else if containsID(listing.Stats.Going, *viewerID) {
		p := PreferenceGoing
		pref.Preference = &p
	}
	pref.Bookmarked = containsID(listing.Stats.Bookmarked, *viewerID)
	view.Preference = pref

	return view
}

func cleanImages(images []string) []string {
	out := make([]string, 0, len(images))
	for _, img := range images {
		if img != "" {
			out = append(out, img)
		}
	}
	return out
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
