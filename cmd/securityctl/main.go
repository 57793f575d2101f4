// Command securityctl creates a user directly in the security database.
//
//	securityctl -d postgres://... -u alice -r Admin
package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"log"
	"os"

	"github.com/dmitrijs2005/aitooling/internal/auth"
	"github.com/dmitrijs2005/aitooling/internal/logging"
	"github.com/dmitrijs2005/aitooling/internal/security"
	"github.com/dmitrijs2005/aitooling/internal/security/admin"
	"github.com/dmitrijs2005/aitooling/internal/security/config"
	"github.com/dmitrijs2005/aitooling/internal/security/services"
	"github.com/joho/godotenv"
)

func main() {

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("error loading .env: %v", err)
	}

	var cfg config.Config
	cfg.LoadDefaults()
	if v := os.Getenv("SECURITY_DATABASE_DSN"); v != "" {
		cfg.DatabaseDSN = v
	}

	var username, role string
	flag.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "database DSN")
	flag.StringVar(&username, "u", "", "username (prompted when empty)")
	flag.StringVar(&role, "r", "", "role (defaults to User)")
	flag.Parse()

	ctx := context.Background()
	logger := logging.New("warn", "text")

	params, err := security.HasherParams(&cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	db, rm, err := security.OpenStore(ctx, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer db.Close()

	svc := services.NewAuthService(db, rm,
		auth.NewArgon2Hasher(params),
		auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience),
		logger)

	if _, err := admin.CreateUser(ctx, svc, admin.NewPrompter(os.Stdin, os.Stdout), username, role); err != nil {
		db.Close()
		log.Fatalf("%v", err)
	}
}
