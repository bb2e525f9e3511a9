package model

import (
	"time"

	"github.com/google/uuid"
)

type ListingKind string

const (
	KindEvent ListingKind = "event"
	KindSale  ListingKind = "sale"
)

func ParseListingKind(raw string) (ListingKind, bool) {
	switch ListingKind(raw) {
	case KindEvent:
		return KindEvent, true
	case KindSale:
		return KindSale, true
	default:
		return "", false
	}
}

// ListingStats holds the raw engagement sets. A user id appears in at
// most one of Interested/Going; Viewed and Bookmarked are independent.
type ListingStats struct {
	Viewed     []uuid.UUID `json:"viewed"`
	Interested []uuid.UUID `json:"interested"`
	Going      []uuid.UUID `json:"going"`
	Bookmarked []uuid.UUID `json:"bookmarked"`
}

type StatCounts struct {
	Viewed     int `json:"viewed"`
	Interested int `json:"interested"`
	Going      int `json:"going"`
	Bookmarked int `json:"bookmarked"`
}

func (s ListingStats) Counts() StatCounts {
	return StatCounts{
		Viewed:     len(s.Viewed),
		Interested: len(s.Interested),
		Going:      len(s.Going),
		Bookmarked: len(s.Bookmarked),
	}
}

// EventDetails is the kind-specific payload of an event listing.
type EventDetails struct {
	DateTime        time.Time `json:"date_time"`
	Address         string    `json:"address"`
	Latitude        float64   `json:"latitude"`
	Longitude       float64   `json:"longitude"`
	MaxCapacity     int       `json:"max_capacity"`
	PriceType       string    `json:"price_type"`
	PriceStartsFrom float64   `json:"price_starts_from"`
	PriceGoesUpto   float64   `json:"price_goes_upto"`
	Contact         string    `json:"contact"`
}

// SaleDetails is the kind-specific payload of a sale listing.
type SaleDetails struct {
	StartDateTime       time.Time `json:"start_date_time"`
	EndDateTime         time.Time `json:"end_date_time"`
	LinkToStores        []string  `json:"link_to_stores"`
	Website             string    `json:"website"`
	DiscountDescription string    `json:"discount_description"`
	Brand               string    `json:"brand"`
}

// Listing is the shared shape of events and sales. Engagement and
// moderation logic operate on it uniformly; Event/Sale carry the
// kind-specific payload.
type Listing struct {
	ID          uuid.UUID
	Kind        ListingKind
	OwnerID     uuid.UUID
	Visible     bool
	Name        string
	Description string
	City        string
	Images      []string
	Event       *EventDetails
	Sale        *SaleDetails
	Stats       ListingStats
	ApprovedAt  *time.Time
	AlertSentAt *time.Time
	CreatedAt   time.Time
	DeletedAt   *time.Time
}

func (l *Listing) Approved() bool {
	return l.ApprovedAt != nil
}
