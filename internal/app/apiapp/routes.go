package apiapp

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Dijinx-Lab/Eventify-Server/internal/config"
	"github.com/Dijinx-Lab/Eventify-Server/internal/domain/model"
	authsvc "github.com/Dijinx-Lab/Eventify-Server/internal/services/auth"
	listingssvc "github.com/Dijinx-Lab/Eventify-Server/internal/services/listings"
	mediasvc "github.com/Dijinx-Lab/Eventify-Server/internal/services/media"
	modsvc "github.com/Dijinx-Lab/Eventify-Server/internal/services/moderation"
	statssvc "github.com/Dijinx-Lab/Eventify-Server/internal/services/stats"
	"github.com/Dijinx-Lab/Eventify-Server/internal/transport/http/handlers"
)

type Dependencies struct {
	JWTManager        *authsvc.JWTManager
	ListingService    *listingssvc.Service
	StatsService      *statssvc.Service
	ModerationService *modsvc.Service
	MediaService      *mediasvc.Service
	Logger            *zap.Logger
	Config            config.Config
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	healthHandler := handlers.NewHealthHandler()
	mediaHandler := handlers.NewMediaHandler(deps.MediaService)
	authMW := AuthMiddleware(deps.JWTManager, deps.Logger)

	r.Get("/healthz", healthHandler.Get)

	r.Route("/v1", func(r chi.Router) {
		registerListingRoutes(r, model.KindEvent, "/events", deps, authMW)
		registerListingRoutes(r, model.KindSale, "/sales", deps, authMW)

		r.With(authMW).Post("/media/image", mediaHandler.ImageUpload)
	})
}

func registerListingRoutes(r chi.Router, kind model.ListingKind, prefix string, deps Dependencies, authMW middlewareFunc) {
	listingHandler := handlers.NewListingHandler(deps.ListingService, kind)
	statsHandler := handlers.NewStatsHandler(deps.StatsService, kind)
	moderationHandler := handlers.NewModerationHandler(deps.ModerationService, kind)

	r.Route(prefix, func(r chi.Router) {
		r.With(authMW).Post("/", listingHandler.Create)
		r.With(authMW).Get("/", listingHandler.List)
		r.With(authMW).Get("/{id}", listingHandler.Get)
		r.With(authMW).Put("/{id}", listingHandler.Update)
		r.With(authMW).Delete("/{id}", listingHandler.Delete)

		// Approval comes from the moderation console, not from a user
		// session.
		r.Post("/{id}/approve", moderationHandler.Approve)

		r.With(authMW).Put("/{id}/stats", statsHandler.Update)
		r.With(authMW).Get("/{id}/stats/users", statsHandler.Audience)
	})
}
