package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ErlanBelekov/jobbee-api/config"
	"github.com/ErlanBelekov/jobbee-api/internal/cache"
	"github.com/ErlanBelekov/jobbee-api/internal/email"
	"github.com/ErlanBelekov/jobbee-api/internal/filestore"
	"github.com/ErlanBelekov/jobbee-api/internal/geocode"
	"github.com/ErlanBelekov/jobbee-api/internal/health"
	"github.com/ErlanBelekov/jobbee-api/internal/infrastructure/postgres"
	ctxlog "github.com/ErlanBelekov/jobbee-api/internal/log"
	"github.com/ErlanBelekov/jobbee-api/internal/metrics"
	"github.com/ErlanBelekov/jobbee-api/internal/token"
	httptransport "github.com/ErlanBelekov/jobbee-api/internal/transport/http"
	"github.com/ErlanBelekov/jobbee-api/internal/transport/http/handler"
	"github.com/ErlanBelekov/jobbee-api/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := ctxlog.New(os.Stdout, cfg.IsLocal(), cfg.SlogLevel())

	if !cfg.IsLocal() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		stop()
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	if cfg.MigrateOnStart {
		if err := migrate(ctx, pool, logger); err != nil {
			stop()
			log.Fatalf("migrate: %v", err)
		}
	}

	redisClient := cache.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, logger)
	defer redisClient.Close()

	files, err := newFileStore(ctx, cfg)
	if err != nil {
		stop()
		log.Fatalf("file store: %v", err)
	}

	// Repositories
	userRepo := postgres.NewUserRepository(pool)
	jobRepo := postgres.NewJobRepository(pool)
	candidateRepo := postgres.NewCandidateRepository(pool)

	// Collaborators
	geocoder := geocode.NewCached(geocode.NewMapQuest(cfg.GeocoderURL, cfg.GeocoderAPIKey, cfg.GeocoderRPS), redisClient)
	sender := email.NewSender(cfg.Env, cfg.ResendAPIKey, cfg.ResendFrom, logger)
	sessions := token.NewSessions([]byte(cfg.JWTSecret), cfg.JWTTTL)
	resets := token.NewResets([]byte(cfg.ResetTokenPepper), cfg.ResetTokenTTL)

	// Usecases
	authUsecase := usecase.NewAuthUsecase(userRepo, sessions, resets, cache.NewDenylist(redisClient), sender, cfg.ResetLinkBase, logger)
	candidateUsecase := usecase.NewCandidateUsecase(jobRepo, candidateRepo, files, cfg.UploadMaxBytes, logger)
	jobUsecase := usecase.NewJobUsecase(jobRepo, candidateUsecase, geocoder, logger)
	userUsecase := usecase.NewUserUsecase(userRepo, jobRepo, candidateUsecase, logger)

	// Handlers
	errs := handler.NewErrors(logger, cfg.IsLocal())
	cookies := handler.Cookies{TTL: cfg.CookieTTL, Secure: !cfg.IsLocal()}

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Logger:             logger,
		Authenticator:      authUsecase,
		Errors:             errs,
		HSTS:               !cfg.IsLocal(),
		MaxMultipartMemory: cfg.UploadMaxBytes,
	}, httptransport.Handlers{
		Auth: handler.NewAuthHandler(authUsecase, cookies, errs),
		Jobs: handler.NewJobHandler(jobUsecase, candidateUsecase, cfg.UploadMaxBytes, errs),
		User: handler.NewUserHandler(userUsecase, cookies, errs),
	})

	metrics.Register()
	checker := health.NewChecker([]health.Dependency{
		{Name: "postgres", Pinger: pool, Critical: true},
		{Name: "redis", Pinger: redisClient},
	}, logger, prometheus.DefaultRegisterer)

	srv := http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)

	go func() {
		logger.Info("server started", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}
}

// newFileStore keeps resumes on local disk in development and in S3
// everywhere else.
func newFileStore(ctx context.Context, cfg *config.Config) (filestore.Store, error) {
	if cfg.IsLocal() && cfg.S3Bucket == "" {
		disk, err := filestore.NewDisk(cfg.UploadDir)
		if err != nil {
			return nil, err
		}
		return disk, nil
	}
	s3, err := filestore.NewS3(ctx, filestore.S3Config{
		Bucket:    cfg.S3Bucket,
		Region:    cfg.S3Region,
		Endpoint:  cfg.S3Endpoint,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
	})
	if err != nil {
		return nil, err
	}
	return s3, nil
}

func migrate(ctx context.Context, pool *pgxpool.Pool, logger *slog.Logger) error {
	m, err := postgres.NewMigrator(pool)
	if err != nil {
		return err
	}
	defer m.Close()

	n, err := m.Up(ctx)
	if err != nil {
		return err
	}
	logger.Info("migrations applied", "count", n)
	return nil
}
