package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/dmitrijs2005/soncatalog/internal/flagx"
	"github.com/dmitrijs2005/soncatalog/internal/server"
	"github.com/dmitrijs2005/soncatalog/internal/server/config"
	"github.com/dmitrijs2005/soncatalog/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/soncatalog/internal/server/seed"
	"github.com/dmitrijs2005/soncatalog/internal/server/services"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("%v", err)
	}
}

// run returns instead of exiting so the deferred closes happen before main
// reports a failure.
func run() error {
	// The server flags (-d, -r, -c, ...) are shared with LoadConfig.
	fs := flag.NewFlagSet("seedadmin", flag.ExitOnError)
	email := fs.String("email", "", "admin email (default $"+seed.EnvEmail+")")
	withCategories := fs.Bool("categories", false, "also create the default categories")
	_ = fs.Parse(flagx.FilterArgs(os.Args[1:], []string{"-email", "--email"}, "-categories", "--categories"))

	ctx := context.Background()
	cfg := config.LoadConfig()

	logger := server.NewLogger(cfg)

	creds, err := seed.Resolve(*email, os.Getenv, bufio.NewReader(os.Stdin), os.Stdout)
	if err != nil {
		return err
	}

	rm := repomanager.NewPostgresRepositoryManager()
	db, err := server.OpenDatabase(ctx, cfg, rm)
	if err != nil {
		creds.Wipe()
		return err
	}
	defer db.Close()

	rb := server.ConnectRedis(ctx, cfg, logger)
	defer rb.Close()

	coord := rb.NewCoordinator(cfg, logger)
	auth := services.NewAuthService(db, rm, nil, rb.Revocations, coord, logger)

	var cats seed.CategoryCreator
	if *withCategories {
		cats = services.NewCategoryService(db, rm, coord, logger)
	}
	return seedAll(ctx, auth, cats, creds)
}

// seedAll stores the admin and, when cats is set, the default categories.
func seedAll(ctx context.Context, admins seed.Seeder, cats seed.CategoryCreator, creds *seed.Credentials) error {
	admin, err := seed.Run(ctx, admins, creds)
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	log.Printf("admin %s ready (id=%s)", admin.Email, admin.ID)

	if cats == nil {
		return nil
	}
	created, err := seed.Categories(ctx, cats, seed.DefaultCategories)
	if err != nil {
		return fmt.Errorf("seed categories: %w", err)
	}
	log.Printf("categories created: %d of %d", len(created), len(seed.DefaultCategories))
	return nil
}
