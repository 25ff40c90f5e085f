// Command create-admin grava um administrador do painel de leads.
//
//	ADMIN_PASSWORD=... go run ./cmd/create-admin -email admin@dsx.com.br
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/xavierca1/dsx-leads/internal/config"
	"github.com/xavierca1/dsx-leads/internal/infra/database"
	"github.com/xavierca1/dsx-leads/internal/usecase"
)

func main() {
	email := flag.String("email", "", "e-mail do administrador")
	password := flag.String("password", "", "senha (ou ADMIN_PASSWORD)")
	flag.Parse()

	if *password == "" {
		*password = os.Getenv("ADMIN_PASSWORD")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.Open(ctx, cfg.DatabaseURL, database.PoolOptions(cfg.DBPool))
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	defer db.Close()

	if cfg.RunMigrations {
		if err := database.Migrate(ctx, db); err != nil {
			log.Fatalf("❌ %v", err)
		}
	}

	admin, err := usecase.CreateAdmin(ctx, database.NewAdminRepository(db), *email, *password)
	if err != nil {
		log.Fatalf("❌ Não foi possível gravar o administrador: %v", err)
	}
	log.Printf("✅ Administrador %s pronto (id %s)", admin.Email, admin.ID)
}
