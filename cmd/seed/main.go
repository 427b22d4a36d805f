package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/shirt-orders/api/internal/config"
	"github.com/shirt-orders/api/internal/database"
	"github.com/shirt-orders/api/internal/logger"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	// CLI flags
	email := flag.String("email", "", "Admin email address")
	password := flag.String("password", "", "Admin password")
	name := flag.String("name", "", "Admin full name")
	flag.Parse()

	cfg := config.Load()
	logger.New(cfg.LogLevel, true)

	// Fall back to environment variables
	if *email == "" {
		*email = os.Getenv("SEED_EMAIL")
	}
	if *password == "" {
		*password = os.Getenv("SEED_PASSWORD")
	}
	if *name == "" {
		*name = os.Getenv("SEED_NAME")
	}

	// Fall back to defaults
	if *email == "" {
		*email = "admin@shirts.local"
	}
	if *password == "" {
		*password = "password123"
		log.Warn().Msg("using default password 'password123', change it immediately in production")
	}
	if *name == "" {
		*name = "Admin"
	}

	if err := database.Migrate(cfg.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("run migrations")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("connect to database")
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("ping database")
	}

	queries := database.New(pool)

	// Seeding is idempotent: an existing account is left untouched.
	existing, err := queries.GetAdminByEmail(ctx, *email)
	switch {
	case err == nil:
		log.Info().Str("email", existing.Email).Str("id", existing.ID.String()).Msg("admin already exists, nothing to do")
		return
	case !errors.Is(err, pgx.ErrNoRows):
		log.Fatal().Err(err).Msg("look up admin")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal().Err(err).Msg("hash password")
	}

	admin, err := queries.CreateAdmin(ctx, database.CreateAdminParams{
		Email:        strings.TrimSpace(*email),
		FullName:     *name,
		PasswordHash: string(hash),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("create admin")
	}

	log.Info().Str("email", admin.Email).Str("id", admin.ID.String()).Msg("admin created")
}
