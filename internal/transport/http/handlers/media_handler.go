package handlers

import (
	"errors"
	"net/http"

	authsvc "github.com/Dijinx-Lab/Eventify-Server/internal/services/auth"
	mediasvc "github.com/Dijinx-Lab/Eventify-Server/internal/services/media"
	"github.com/Dijinx-Lab/Eventify-Server/internal/transport/http/dto"
	httperrors "github.com/Dijinx-Lab/Eventify-Server/internal/transport/http/errors"
)

const maxUploadMemory = 10 << 20

type MediaHandler struct {
	service *mediasvc.Service
}

func NewMediaHandler(service *mediasvc.Service) *MediaHandler {
	return &MediaHandler{service: service}
}

func (h *MediaHandler) ImageUpload(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MEDIA_SERVICE_UNAVAILABLE", "media service is unavailable")
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid multipart body")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "image file is required")
		return
	}
	defer func() { _ = file.Close() }()

	image, err := h.service.UploadImage(
		r.Context(),
		identity.UserID,
		header.Filename,
		header.Header.Get("Content-Type"),
		file,
		header.Size,
	)
	if err != nil {
		if errors.Is(err, mediasvc.ErrValidation) {
			writeBadRequest(w, "VALIDATION_ERROR", "invalid image upload")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to upload image")
		return
	}

	httperrors.Write(w, http.StatusCreated, dto.ImageUploadResponse{
		ObjectKey: image.ObjectKey,
		URL:       image.URL,
	})
}
