package main

import (
	"flag"
	"log/slog"
	"mowitajm/pkg/config"
	"mowitajm/postgres"
	"os"
	"strconv"

	_ "github.com/lib/pq"
	migrate "github.com/rubenv/sql-migrate"
)

func main() {
	dir := flag.String("dir", "migrations", "directory holding the sql-migrate files")
	down := flag.Int("down", 0, "roll back this many migrations instead of migrating up")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

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

	sqlDB, err := db.DB()
	if err != nil {
		logger.Error("cannot get db instance", "error", err)
		os.Exit(1)
	}
	defer sqlDB.Close()

	migrations := &migrate.FileMigrationSource{Dir: *dir}

	if *down > 0 {
		total, err := migrate.ExecMax(sqlDB, "postgres", migrations, migrate.Down, *down)
		if err != nil {
			logger.Error("cannot roll back migration", "error", err)
			os.Exit(1)
		}
		logger.Info("rolled back migrations", "total", total)
		return
	}

	total, err := migrate.Exec(sqlDB, "postgres", migrations, migrate.Up)
	if err != nil {
		logger.Error("cannot execute migration", "error", err)
		os.Exit(1)
	}

	logger.Info("applied migrations", "total", total)
}
