package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Dijinx-Lab/Eventify-Server/internal/domain/model"
	pgrepo "github.com/Dijinx-Lab/Eventify-Server/internal/repo/postgres"
	authsvc "github.com/Dijinx-Lab/Eventify-Server/internal/services/auth"
	listingssvc "github.com/Dijinx-Lab/Eventify-Server/internal/services/listings"
	"github.com/Dijinx-Lab/Eventify-Server/internal/transport/http/dto"
	httperrors "github.com/Dijinx-Lab/Eventify-Server/internal/transport/http/errors"
)

// ListingHandler serves one listing kind. The same handler code backs
// both the events and sales route trees.
type ListingHandler struct {
	service *listingssvc.Service
	kind    model.ListingKind
}

func NewListingHandler(service *listingssvc.Service, kind model.ListingKind) *ListingHandler {
	return &ListingHandler{service: service, kind: kind}
}

func (h *ListingHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "LISTING_SERVICE_UNAVAILABLE", "listing service is unavailable")
		return
	}

	var req dto.CreateListingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	visible := true
	if req.Visible != nil {
		visible = *req.Visible
	}

	view, err := h.service.Create(r.Context(), listingssvc.CreateInput{
		Kind:        h.kind,
		OwnerID:     identity.UserID,
		Visible:     visible,
		Name:        req.Name,
		Description: req.Description,
		City:        req.City,
		Images:      req.Images,
		Event:       req.Event,
		Sale:        req.Sale,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	httperrors.Write(w, http.StatusCreated, dto.FromListingView(view))
}

func (h *ListingHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "LISTING_SERVICE_UNAVAILABLE", "listing service is unavailable")
		return
	}

	filter := strings.TrimSpace(r.URL.Query().Get("filter"))
	if filter == "" {
		writeBadRequest(w, "VALIDATION_ERROR", "filter query parameter is required")
		return
	}

	var viewerID *uuid.UUID
	if identity, ok := authsvc.IdentityFromContext(r.Context()); ok {
		viewerID = &identity.UserID
	}

	views, err := h.service.ListFor(r.Context(), h.kind, filter, viewerID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, struct {
		Listings []dto.ListingResponse `json:"listings"`
	}{Listings: dto.FromListingViews(views)})
}

func (h *ListingHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "LISTING_SERVICE_UNAVAILABLE", "listing service is unavailable")
		return
	}

	id, ok := listingIDFromRequest(r)
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid listing id")
		return
	}

	var viewerID *uuid.UUID
	if identity, ok := authsvc.IdentityFromContext(r.Context()); ok {
		viewerID = &identity.UserID
	}

	view, err := h.service.Get(r.Context(), h.kind, id, viewerID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.FromListingView(view))
}

func (h *ListingHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "LISTING_SERVICE_UNAVAILABLE", "listing service is unavailable")
		return
	}

	id, idOK := listingIDFromRequest(r)
	if !idOK {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid listing id")
		return
	}

	var req dto.UpdateListingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	view, err := h.service.Update(r.Context(), h.kind, id, identity.UserID, pgrepo.ListingPatch{
		Visible:     req.Visible,
		Name:        req.Name,
		Description: req.Description,
		City:        req.City,
		Images:      req.Images,
		Event:       req.Event,
		Sale:        req.Sale,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.FromListingView(view))
}

func (h *ListingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "LISTING_SERVICE_UNAVAILABLE", "listing service is unavailable")
		return
	}

	id, idOK := listingIDFromRequest(r)
	if !idOK {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid listing id")
		return
	}

	if err := h.service.Delete(r.Context(), h.kind, id, identity.UserID); err != nil {
		h.writeError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, struct{}{})
}

func (h *ListingHandler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, listingssvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "invalid listing payload")
	case errors.Is(err, listingssvc.ErrViewerRequired):
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required for this filter")
	case errors.Is(err, listingssvc.ErrForbidden):
		writeForbidden(w, "FORBIDDEN", "listing belongs to another user")
	case errors.Is(err, pgrepo.ErrListingNotFound):
		writeNotFound(w, "NOT_FOUND", "no listing with the specified id")
	case errors.Is(err, pgrepo.ErrUserNotFound):
		writeUnauthorized(w, "UNAUTHORIZED", "unknown user")
	default:
		writeInternal(w, "INTERNAL_ERROR", "failed to process listing request")
	}
}

func listingIDFromRequest(r *http.Request) (uuid.UUID, bool) {
	raw := strings.TrimSpace(chi.URLParam(r, "id"))
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}
