package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/paydesk/taxdecl/internal/adapters/pdf"
	sqliteadapter "github.com/paydesk/taxdecl/internal/adapters/sqlite"
	"github.com/paydesk/taxdecl/internal/handlers"
	"github.com/paydesk/taxdecl/internal/statute"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		slog.Warn("error loading .env file", "err", err)
	}
	dsn := os.Getenv("DB_PATH")
	if dsn == "" {
		dsn = "taxdecl.db"
	}
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if path := os.Getenv("LIMITS_FILE"); path != "" {
		if err := statute.LoadOverrides(path); err != nil {
			log.Fatalf("failed to load limit overrides: %v", err)
		}
		slog.Info("statutory limit overrides applied", "file", path)
	}

	repo, err := sqliteadapter.New(dsn)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	if err := repo.Migrate(context.Background()); err != nil {
		log.Fatalf("failed to apply schema: %v", err)
	}

	h := handlers.New(repo, pdf.New())

	log.Printf("Tax declaration service running on http://localhost:%s", port)
	log.Printf("Database: %s", dsn)
	if err := http.ListenAndServe(":"+port, h.Routes()); err != nil {
		log.Fatal(err)
	}
}
