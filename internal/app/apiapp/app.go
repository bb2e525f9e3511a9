package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/minio/minio-go/v7"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Dijinx-Lab/Eventify-Server/internal/config"
	fcminfra "github.com/Dijinx-Lab/Eventify-Server/internal/infra/fcm"
	s3infra "github.com/Dijinx-Lab/Eventify-Server/internal/infra/s3"
	"github.com/Dijinx-Lab/Eventify-Server/internal/jobs/cleanup"
	pgrepo "github.com/Dijinx-Lab/Eventify-Server/internal/repo/postgres"
	redrepo "github.com/Dijinx-Lab/Eventify-Server/internal/repo/redis"
	authsvc "github.com/Dijinx-Lab/Eventify-Server/internal/services/auth"
	listingssvc "github.com/Dijinx-Lab/Eventify-Server/internal/services/listings"
	mediasvc "github.com/Dijinx-Lab/Eventify-Server/internal/services/media"
	modsvc "github.com/Dijinx-Lab/Eventify-Server/internal/services/moderation"
	notifysvc "github.com/Dijinx-Lab/Eventify-Server/internal/services/notify"
	ratesvc "github.com/Dijinx-Lab/Eventify-Server/internal/services/rate"
	statssvc "github.com/Dijinx-Lab/Eventify-Server/internal/services/stats"
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	postgres   *pgxpool.Pool
	redis      *goredis.Client
	s3         *minio.Client
	httpRouter http.Handler

	dispatcher *notifysvc.Dispatcher
	cleanupJob *cleanup.Job

	backgroundCancel context.CancelFunc
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log)

	var pool *pgxpool.Pool
	if p, err := pgrepo.Connect(ctx, cfg.Postgres.DSN); err != nil {
		log.Warn("postgres init failed, continuing in degraded mode", zap.Error(err))
	} else {
		pool = p
	}

	redisClient := redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	rateRepo := redrepo.NewRateRepo(redisClient)
	listingRepo := pgrepo.NewListingRepo(pool)
	userRepo := pgrepo.NewUserRepo(pool)
	engagementRepo := pgrepo.NewEngagementRepo(pool)

	jwtManager := authsvc.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTAccessTTL)

	var pushSender notifysvc.PushSender
	if cfg.Push.CredentialsFile != "" {
		if client, err := fcminfra.NewClient(ctx, fcminfra.Config{
			CredentialsFile: cfg.Push.CredentialsFile,
		}); err != nil {
			log.Warn("fcm init failed, push delivery disabled", zap.Error(err))
		} else {
			pushSender = client
		}
	}
	if pushSender == nil {
		pushSender = noopPushSender{}
	}

	dispatcher := notifysvc.NewDispatcher(pushSender, userRepo, log, notifysvc.Config{
		BufferSize:  cfg.Notify.BufferSize,
		SendTimeout: cfg.Notify.SendTimeout,
	})

	moderationService := modsvc.NewService(listingRepo, userRepo, dispatcher, log)
	listingService := listingssvc.NewService(listingRepo, userRepo, moderationService, log, listingssvc.Config{
		AutoApproveEmails: cfg.Moderation.AutoApproveEmails,
	})
	rateLimiter := ratesvc.NewLimiter(rateRepo, cfg.Limits.EngagePerMinute, cfg.Limits.EngagePer10Sec)
	statsService := statssvc.NewService(engagementRepo, listingRepo, userRepo, rateLimiter)

	var s3Client *minio.Client
	if c, err := s3infra.NewClient(s3infra.Config{
		Endpoint:  cfg.S3.Endpoint,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
		UseSSL:    cfg.S3.UseSSL,
	}); err != nil {
		log.Warn("s3 init failed, continuing in degraded mode", zap.Error(err))
	} else {
		s3Client = c
	}

	mediaStorage := mediasvc.NewS3Storage(s3Client, cfg.S3.Bucket)
	mediaService := mediasvc.NewService(mediaStorage)
	cleanupJob := cleanup.New(listingRepo, mediaStorage, cfg.Cleanup.Retention, log)

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	RegisterRoutes(r, Dependencies{
		JWTManager:        jwtManager,
		ListingService:    listingService,
		StatsService:      statsService,
		ModerationService: moderationService,
		MediaService:      mediaService,
		Logger:            log,
		Config:            cfg,
	})

	return &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		postgres:   pool,
		redis:      redisClient,
		s3:         s3Client,
		httpRouter: r,
		dispatcher: dispatcher,
		cleanupJob: cleanupJob,
	}, nil
}

func (a *App) Run() error {
	backgroundCtx, cancel := context.WithCancel(context.Background())
	a.backgroundCancel = cancel

	go a.dispatcher.Run(backgroundCtx)
	go a.cleanupJob.RunEvery(backgroundCtx, a.cfg.Cleanup.Interval)

	a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if a.backgroundCancel != nil {
		a.backgroundCancel()
	}
	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}

type noopPushSender struct{}

func (noopPushSender) Send(context.Context, string, string, string, string, string) error {
	return nil
}
