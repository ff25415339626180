package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/leadpulse/leadpulse/config"
	"github.com/leadpulse/leadpulse/pkg/auth"
	"github.com/leadpulse/leadpulse/pkg/database"
	"github.com/leadpulse/leadpulse/pkg/domain"
	"github.com/leadpulse/leadpulse/pkg/leadstore"
	"github.com/leadpulse/leadpulse/pkg/logger"
	"github.com/leadpulse/leadpulse/pkg/models"
	"github.com/leadpulse/leadpulse/pkg/templatestore"
	"github.com/leadpulse/leadpulse/pkg/testdata"
	"github.com/leadpulse/leadpulse/pkg/userstore"
)

// seed populates a fresh database with the stock outreach templates, an
// operator account, and a batch of generated leads for local development.
func main() {
	count := flag.Int("leads", 100, "number of leads to generate")
	email := flag.String("email", "operator@leadpulse.app", "operator account email")
	password := flag.String("password", "changeme-now", "operator account password")
	flag.Parse()

	cfg := config.Load()
	log := logger.New(cfg.LogLevel, "text")

	db, err := database.NewClient(cfg.DatabaseURL, log)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	templates := templatestore.NewPostgresStore(db.DB)
	if err := templates.Seed(ctx, templatestore.DefaultTemplates()); err != nil {
		log.Error("failed to seed templates", "error", err)
		os.Exit(1)
	}
	log.Info("templates seeded")

	users := userstore.NewPostgresStore(db.DB)
	hash, err := auth.HashPassword(*password)
	if err != nil {
		log.Error("failed to hash password", "error", err)
		os.Exit(1)
	}
	_, err = users.Create(ctx, &models.User{
		Name:         "Operator",
		Email:        *email,
		PasswordHash: hash,
	})
	switch {
	case err == nil:
		log.Info("operator account created", "email", *email)
	case domain.IsConflict(err):
		log.Info("operator account already exists", "email", *email)
	default:
		log.Error("failed to create operator account", "error", err)
		os.Exit(1)
	}

	// Lead list cache is nil here: seeding writes straight to Postgres.
	leads := leadstore.NewPostgresStore(db.DB, nil)
	generated := testdata.GenerateLeadsWithDistribution(*count)
	inserted, err := testdata.BulkInsertLeads(ctx, leads, generated)
	if err != nil {
		log.Error("failed to insert leads", "inserted", inserted, "error", err)
		os.Exit(1)
	}
	log.Info("leads seeded", "requested", *count, "inserted", inserted)
}
