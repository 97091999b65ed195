package main

import (
	"context"
	"errors"
	"log/slog"
	"mowitajm/auth"
	"mowitajm/dynamodb"
	"mowitajm/httpserver"
	"mowitajm/movie"
	"mowitajm/omdb"
	"mowitajm/pkg/bcrypt"
	"mowitajm/pkg/config"
	"mowitajm/pkg/jwt"
	"mowitajm/pkg/oauth/google"
	"mowitajm/pkg/redis"
	"mowitajm/pkg/sentry"
	"mowitajm/postgres"
	"mowitajm/review"
	"mowitajm/user"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	sentrygo "github.com/getsentry/sentry-go"
	_ "github.com/lib/pq"
	"gorm.io/gorm"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Cannot load config", "error", err)
		os.Exit(1)
	}

	err = sentrygo.Init(sentrygo.ClientOptions{
		Dsn:              cfg.SentryDSN,
		Environment:      cfg.AppEnv,
		AttachStacktrace: true,
	})
	if err != nil {
		slog.Error("Cannot init sentry", "error", err)
		os.Exit(1)
	}
	defer sentrygo.Flush(sentry.FlushTime)

	if cfg.Auth.JWTSecret == "" {
		slog.Error("AUTH_JWT_SECRET is required")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.NewConnection(postgres.Options{
		DBName:   cfg.DB.Name,
		DBUser:   cfg.DB.User,
		Password: cfg.DB.Pass,
		Host:     cfg.DB.Host,
		Port:     strconv.Itoa(cfg.DB.Port),
		SSLMode:  cfg.DB.EnableSSL,
	})
	if err != nil {
		slog.Error("Cannot open postgres connection", "error", err)
		os.Exit(1)
	}

	attempts, err := loginAttemptRepository(ctx, cfg, db)
	if err != nil {
		slog.Error("Cannot set up login attempts store", "error", err)
		os.Exit(1)
	}

	provider, err := movieProvider(ctx, cfg, logger)
	if err != nil {
		slog.Error("Cannot set up omdb client", "error", err)
		os.Exit(1)
	}

	hasher := bcrypt.NewHasher(0)
	tokens := jwt.NewJWTProvider(cfg.Auth.JWTSecret, cfg.AccessTTL(), cfg.RefreshTTL())

	reviewRepo := postgres.NewReviewRepository(db)
	userService := user.NewUsecase(postgres.NewUserRepository(db), hasher)

	// a nil *google.Provider must not reach auth as a non-nil interface
	var googleProvider auth.GoogleOAuthProvider
	if p := google.NewProvider(cfg.Auth.GoogleClientID, cfg.Auth.GoogleClientSecret, cfg.Auth.GoogleRedirectURL); p != nil {
		googleProvider = p
	}

	server := httpserver.Default(cfg)
	server.Logger = logger
	server.MovieService = movie.NewUsecase(provider, reviewRepo, movie.WithErrorReporter(sentry.NewReporter(logger)))
	server.ReviewService = review.NewUsecase(reviewRepo)
	server.UserService = userService
	server.AuthService = auth.NewUsecase(userService, attempts, hasher, tokens, googleProvider)
	server.Identity = user.NewContextResolver(userService, logger)
	server.Tokens = tokens
	server.GoogleEnabled = googleProvider != nil

	go func() {
		slog.Info("server started!", "addr", server.Addr)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server stopped with error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}
	slog.Info("server stopped")
}

// loginAttemptRepository prefers DynamoDB when a table is configured and
// falls back to postgres.
func loginAttemptRepository(ctx context.Context, cfg *config.Config, db *gorm.DB) (auth.LoginAttemptRepository, error) {
	if cfg.DynamoDB.Region == "" || cfg.DynamoDB.LoginAttemptsTable == "" {
		return postgres.NewLoginAttemptRepository(db), nil
	}

	client, err := dynamodb.NewClient(ctx, dynamodb.Options{
		Region:       cfg.DynamoDB.Region,
		Endpoint:     cfg.DynamoDB.Endpoint,
		AccessKey:    cfg.DynamoDB.AccessKey,
		SecretKey:    cfg.DynamoDB.SecretKey,
		SessionToken: cfg.DynamoDB.SessionToken,
	})
	if err != nil {
		return nil, err
	}

	if cfg.DynamoDB.Endpoint != "" {
		if err := dynamodb.EnsureLoginAttemptsTable(ctx, client, cfg.DynamoDB.LoginAttemptsTable); err != nil {
			return nil, err
		}
	}

	slog.Info("login attempts stored in dynamodb", "table", cfg.DynamoDB.LoginAttemptsTable)
	return dynamodb.NewLoginAttemptRepository(client, cfg.DynamoDB.LoginAttemptsTable, 0), nil
}

func movieProvider(ctx context.Context, cfg *config.Config, logger *slog.Logger) (movie.Provider, error) {
	client, err := omdb.NewClient(cfg.OMDb.URL, cfg.OMDb.APIKey, cfg.OMDb.Timeout, logger)
	if err != nil {
		return nil, err
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		// OMDb still works without the cache
		slog.Warn("redis unavailable, omdb responses are not cached", "error", err)
		return client, nil
	}
	if rdb == nil {
		return client, nil
	}

	return omdb.NewCachedProvider(client, rdb, cfg.Redis.CacheTTL, logger), nil
}
