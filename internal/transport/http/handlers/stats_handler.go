package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Dijinx-Lab/Eventify-Server/internal/domain/engagement"
	"github.com/Dijinx-Lab/Eventify-Server/internal/domain/model"
	pgrepo "github.com/Dijinx-Lab/Eventify-Server/internal/repo/postgres"
	authsvc "github.com/Dijinx-Lab/Eventify-Server/internal/services/auth"
	statssvc "github.com/Dijinx-Lab/Eventify-Server/internal/services/stats"
	"github.com/Dijinx-Lab/Eventify-Server/internal/transport/http/dto"
	httperrors "github.com/Dijinx-Lab/Eventify-Server/internal/transport/http/errors"
)

type StatsHandler struct {
	service *statssvc.Service
	kind    model.ListingKind
}

func NewStatsHandler(service *statssvc.Service, kind model.ListingKind) *StatsHandler {
	return &StatsHandler{service: service, kind: kind}
}

func (h *StatsHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "STATS_SERVICE_UNAVAILABLE", "stats service is unavailable")
		return
	}

	id, idOK := listingIDFromRequest(r)
	if !idOK {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid listing id")
		return
	}

	var req dto.UpdateStatsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	engReq := engagement.Request{Bookmarked: req.Bookmarked}
	if req.Preference != nil {
		pref, err := engagement.ParsePreference(strings.ToLower(strings.TrimSpace(*req.Preference)))
		if err != nil {
			writeBadRequest(w, "VALIDATION_ERROR", "preference must be interested or going")
			return
		}
		engReq.Preference = &pref
	}

	if err := h.service.Update(r.Context(), h.kind, id, identity.UserID, engReq); err != nil {
		var rateErr *statssvc.RateLimitError
		switch {
		case errors.As(err, &rateErr):
			httperrors.Write(w, http.StatusTooManyRequests, httperrors.RateLimitError{
				Code:          "TOO_FAST",
				Message:       "too many engagement updates, slow down",
				RetryAfterSec: rateErr.RetryAfterSec,
			})
		case errors.Is(err, pgrepo.ErrListingNotFound):
			writeNotFound(w, "NOT_FOUND", "no listing with the specified id")
		case errors.Is(err, pgrepo.ErrUserNotFound):
			writeUnauthorized(w, "UNAUTHORIZED", "unknown user")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to update stats")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, struct{}{})
}

func (h *StatsHandler) Audience(w http.ResponseWriter, r *http.Request) {
	if _, ok := authsvc.IdentityFromContext(r.Context()); !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "STATS_SERVICE_UNAVAILABLE", "stats service is unavailable")
		return
	}

	id, idOK := listingIDFromRequest(r)
	if !idOK {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid listing id")
		return
	}

	filter := strings.TrimSpace(r.URL.Query().Get("filter"))
	if filter == "" {
		writeBadRequest(w, "VALIDATION_ERROR", "filter query parameter is required")
		return
	}

	result, err := h.service.Audience(r.Context(), h.kind, id, filter)
	if err != nil {
		switch {
		case errors.Is(err, statssvc.ErrInvalidFilter):
			writeBadRequest(w, "VALIDATION_ERROR", "filter must be interested, going or bookmarked")
		case errors.Is(err, pgrepo.ErrListingNotFound):
			writeNotFound(w, "NOT_FOUND", "no listing with the specified id")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to load stats users")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.FromStatsUsers(result))
}
