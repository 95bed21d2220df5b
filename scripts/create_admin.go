package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	database "github.com/ervipinsingh/spice-drama-admin/app/db"
	"github.com/ervipinsingh/spice-drama-admin/config"
	"github.com/ervipinsingh/spice-drama-admin/internal/api/account"
	"github.com/ervipinsingh/spice-drama-admin/internal/types"
)

// Bootstraps the first super_admin account so the admin panel can be
// logged into on a fresh database. Intended for one-off use:
//
//	go run scripts/create_admin.go -username admin -email admin@example.com -password '...'
//
// All later accounts should be created through the API by an admin.
func main() {
	var (
		username = flag.String("username", "", "username for the new account")
		email    = flag.String("email", "", "email for the new account")
		password = flag.String("password", "", "password for the new account")
	)
	flag.Parse()

	if *username == "" || *email == "" || *password == "" {
		flag.Usage()
		os.Exit(2)
	}
	if len(*password) < 8 {
		log.Fatal("password must be at least 8 characters")
	}

	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.InitConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	dbConfig, err := database.NewDatabaseConfig(&cfg, logger)
	if err != nil {
		log.Fatalf("Failed to build database config: %v", err)
	}
	if err := database.RunMigrations(dbConfig.ConnectionURL, logger); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	pool, err := database.Init(dbConfig.ConnectionURL, logger)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	// The service layer requires an acting admin, which cannot exist
	// yet, so this goes straight to the repository.
	repo := account.NewPostgresAccountRepo(pool, logger)
	created, err := repo.Create(ctx, account.CreateRecord{
		Username: *username,
		Email:    *email,
		Password: *password,
		Role:     types.RoleSuperAdmin,
	})
	if err != nil {
		if errors.Is(err, types.ErrConflict) {
			log.Fatalf("An account with that username or email already exists")
		}
		log.Fatalf("Failed to create account: %v", err)
	}

	fmt.Printf("Created super_admin account %s (%s)\n", created.Username, created.ID)
}
