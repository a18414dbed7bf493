// Package main provides a development seed data loader.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/intake-backend/internal/config"
	"github.com/intake-backend/internal/models"
	"github.com/intake-backend/internal/storage"
)

func main() {
	action := flag.String("action", "seed", "Action: seed, clear")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("Refusing to run against a production environment")
	}

	db, err := storage.NewPostgresDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to Postgres: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch *action {
	case "seed":
		if err := seed(ctx, db); err != nil {
			log.Fatalf("Seeding failed: %v", err)
		}
		log.Println("Seed data loaded")
	case "clear":
		if err := clear(ctx, db); err != nil {
			log.Fatalf("Clearing failed: %v", err)
		}
		log.Println("Seed data cleared")
	default:
		log.Fatalf("Unknown action: %s", *action)
	}
}

func seed(ctx context.Context, db *storage.PostgresDB) error {
	users := storage.NewUserRepository(db)
	submissions := storage.NewSubmissionRepository(db)
	projects := storage.NewProjectRepository(db)

	demoUsers := []map[string]any{
		{"full_name": "Sarah Mitchell", "email_address": "sarah.mitchell@example.com", "phone_number": "(555) 201-4478"},
		{"full_name": "David Chen", "email_address": "david.chen@example.com", "phone_number": "(555) 318-9921", "company_name": "Chen Development Group"},
		{"full_name": "Maria Torres", "email_address": "maria.torres@example.com", "phone_number": "(555) 442-3310"},
	}

	userIDs := make([]int64, 0, len(demoUsers))
	for _, fields := range demoUsers {
		existing, err := users.FindByEmail(ctx, fields["email_address"].(string))
		if err != nil {
			return err
		}
		if existing != nil {
			userIDs = append(userIDs, existing.ID)
			continue
		}
		user, err := users.Create(ctx, fields)
		if err != nil {
			return err
		}
		userIDs = append(userIDs, user.ID)
	}

	demoSubmissions := []map[string]any{
		{
			"full_name":             "Sarah Mitchell",
			"email_address":         "sarah.mitchell@example.com",
			"phone_number":          "(555) 201-4478",
			"buyer_category":        "homebuyer",
			"financing_plan":        "finance_build",
			"land_status":           "own_land",
			"lot_address":           "48 Meadow Lane, Harrisburg, PA",
			"build_budget":          "350k_400k",
			"construction_timeline": "6_to_12_months",
			"project_description":   "Two story colonial with a finished basement",
			"status":                "qualified",
			"user_id":               userIDs[0],
		},
		{
			"full_name":             "David Chen",
			"email_address":         "david.chen@example.com",
			"phone_number":          "(555) 318-9921",
			"company_name":          "Chen Development Group",
			"buyer_category":        "developer",
			"financing_plan":        "self_funding",
			"land_status":           "own_land",
			"lot_address":           "Parcel 7, Ridgeview Estates",
			"build_budget":          "500k_plus",
			"construction_timeline": "more_than_12_months",
			"project_description":   "Six unit modular townhouse development",
			"status":                "contacted",
			"user_id":               userIDs[1],
		},
		{
			"full_name":                  "Maria Torres",
			"email_address":              "maria.torres@example.com",
			"phone_number":               "(555) 442-3310",
			"buyer_category":             "homebuyer",
			"financing_plan":             "finance_build",
			"land_status":                "need_land",
			"needs_help_finding_land":    true,
			"preferred_area_description": "Within 30 minutes of Lancaster, rural preferred",
			"build_budget":               "250k_350k",
			"construction_timeline":      "3_to_6_months",
			"project_description":        "Single story ranch, accessible layout",
		},
	}

	for i, raw := range demoSubmissions {
		fields := models.SanitizeSubmission(raw)
		if err := models.ValidateSubmission(fields); err != nil {
			return err
		}
		existing, err := submissions.FindByEmail(ctx, raw["email_address"].(string))
		if err != nil {
			return err
		}
		if existing != nil {
			continue
		}
		sub, err := submissions.Create(ctx, fields)
		if err != nil {
			return err
		}
		// Promote the qualified demo submission so project queries have data
		if i == 0 {
			project, err := projects.CreateFromSubmission(ctx, sub)
			if err != nil {
				return err
			}
			if _, err := submissions.UpdateByID(ctx, sub.ID, map[string]any{"project_id": project.ID}); err != nil {
				return err
			}
		}
	}

	return nil
}

func clear(ctx context.Context, db *storage.PostgresDB) error {
	// Child tables first to respect foreign keys
	for _, table := range []string{"intake_submissions", "projects", "users"} {
		if _, err := db.Pool().Exec(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}
