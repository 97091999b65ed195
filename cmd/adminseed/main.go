package main

import (
	"context"
	"flag"
	"log/slog"
	"mowitajm/errs"
	"mowitajm/pkg/bcrypt"
	"mowitajm/pkg/config"
	"mowitajm/postgres"
	"mowitajm/user"
	"os"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

// adminseed makes sure an administrator account exists. An existing user with
// the given email is promoted; otherwise a new admin is created.
func main() {
	var (
		email       string
		password    string
		displayName string
	)
	flag.StringVar(&email, "email", os.Getenv("ADMIN_EMAIL"), "admin email")
	flag.StringVar(&password, "password", os.Getenv("ADMIN_PASSWORD"), "password for a newly created admin")
	flag.StringVar(&displayName, "name", envOr("ADMIN_DISPLAY_NAME", "Admin"), "display name for a newly created admin")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if email == "" {
		logger.Error("email is required (-email or ADMIN_EMAIL)")
		os.Exit(2)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("cannot load config", "error", err)
		os.Exit(1)
	}

	db, err := postgres.NewConnection(postgres.Options{
		DBName:   cfg.DB.Name,
		DBUser:   cfg.DB.User,
		Password: cfg.DB.Pass,
		Host:     cfg.DB.Host,
		Port:     strconv.Itoa(cfg.DB.Port),
		SSLMode:  cfg.DB.EnableSSL,
	})
	if err != nil {
		logger.Error("cannot connect to db", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	users := user.NewUsecase(postgres.NewUserRepository(db), bcrypt.NewHasher(0))

	err = users.SetRole(ctx, email, user.RoleAdmin)
	switch {
	case err == nil:
		logger.Info("user promoted to admin", "email", email)
		return
	case errs.ErrorCode(err) != errs.ENOTFOUND:
		logger.Error("cannot promote user", "email", email, "error", err)
		os.Exit(1)
	}

	created, err := users.AddUser(ctx, user.User{
		DisplayName: displayName,
		Email:       strings.ToLower(strings.TrimSpace(email)),
		Password:    password,
		Role:        user.RoleAdmin,
	})
	if err != nil {
		logger.Error("cannot create admin", "email", email, "error", err)
		os.Exit(1)
	}
	logger.Info("admin created", "email", created.Email, "id", created.ID)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
