package dto

import (
	"github.com/Dijinx-Lab/Eventify-Server/internal/domain/model"
	"github.com/Dijinx-Lab/Eventify-Server/internal/services/listings"
)

type CreateListingRequest struct {
	Visible     *bool                `json:"listing_visible"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	City        string               `json:"city"`
	Images      []string             `json:"images"`
	Event       *model.EventDetails  `json:"event"`
	Sale        *model.SaleDetails   `json:"sale"`
}

type UpdateListingRequest struct {
	Visible     *bool               `json:"listing_visible"`
	Name        *string             `json:"name"`
	Description *string             `json:"description"`
	City        *string             `json:"city"`
	Images      *[]string           `json:"images"`
	Event       *model.EventDetails `json:"event"`
	Sale        *model.SaleDetails  `json:"sale"`
}

type PreferencePayload struct {
	Bookmarked bool    `json:"bookmarked"`
	Preference *string `json:"preference"`
}

type ListingResponse struct {
	ID          string              `json:"id"`
	Kind        string              `json:"kind"`
	MyEvent     bool                `json:"my_event"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	City        string              `json:"city"`
	Images      []string            `json:"images"`
	Event       *model.EventDetails `json:"event,omitempty"`
	Sale        *model.SaleDetails  `json:"sale,omitempty"`
	Stats       model.StatCounts    `json:"stats"`
	Preference  *PreferencePayload  `json:"preference"`
	ApprovedOn  *int64              `json:"approved_on"`
}

func FromListingView(view listings.View) ListingResponse {
	resp := ListingResponse{
		ID:          view.ID.String(),
		Kind:        string(view.Kind),
		MyEvent:     view.MyEvent,
		Name:        view.Name,
		Description: view.Description,
		City:        view.City,
		Images:      view.Images,
		Event:       view.Event,
		Sale:        view.Sale,
		Stats:       view.Stats,
		ApprovedOn:  view.ApprovedAt,
	}
	if view.Preference != nil {
		resp.Preference = &PreferencePayload{
			Bookmarked: view.Preference.Bookmarked,
			Preference: view.Preference.Preference,
		}
	}
	return resp
}

func FromListingViews(views []listings.View) []ListingResponse {
	out := make([]ListingResponse, 0, len(views))
	for _, view := range views {
		out = append(out, FromListingView(view))
	}
	return out
}
