package handlers

import (
	"errors"
	"net/http"

	"github.com/Dijinx-Lab/Eventify-Server/internal/domain/model"
	pgrepo "github.com/Dijinx-Lab/Eventify-Server/internal/repo/postgres"
	listingssvc "github.com/Dijinx-Lab/Eventify-Server/internal/services/listings"
	modsvc "github.com/Dijinx-Lab/Eventify-Server/internal/services/moderation"
	"github.com/Dijinx-Lab/Eventify-Server/internal/transport/http/dto"
	httperrors "github.com/Dijinx-Lab/Eventify-Server/internal/transport/http/errors"
)

type ModerationHandler struct {
	service *modsvc.Service
	kind    model.ListingKind
}

func NewModerationHandler(service *modsvc.Service, kind model.ListingKind) *ModerationHandler {
	return &ModerationHandler{service: service, kind: kind}
}

func (h *ModerationHandler) Approve(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "MODERATION_SERVICE_UNAVAILABLE", "moderation service is unavailable")
		return
	}

	id, ok := listingIDFromRequest(r)
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid listing id")
		return
	}

	listing, err := h.service.Approve(r.Context(), h.kind, id)
	if err != nil {
		switch {
		case errors.Is(err, modsvc.ErrAlreadyApproved):
			writeConflict(w, "ALREADY_APPROVED", "this listing is already approved and cannot be re-approved")
		case errors.Is(err, pgrepo.ErrListingNotFound):
			writeNotFound(w, "NOT_FOUND", "no listing with the specified id")
		case errors.Is(err, pgrepo.ErrUserNotFound):
			writeNotFound(w, "NOT_FOUND", "no owner with the specified id")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to approve listing")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.FromListingView(listingssvc.Format(listing, nil)))
}
