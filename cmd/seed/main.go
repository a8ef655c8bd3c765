package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/foundly/foundly-api/config"
	"github.com/foundly/foundly-api/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	email := envOr("SEED_ADMIN_EMAIL", "admin@foundly.com")
	password := envOr("SEED_ADMIN_PASSWORD", "changeme123")
	hash, err := helpers.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	var id string
	err = db.QueryRow(`
		INSERT INTO users (email, password, first_name, last_name, role, status, email_verified)
		VALUES ($1, $2, 'Admin', '', 'ADMIN', 'ACTIVE', TRUE)
		ON CONFLICT (email) DO UPDATE SET role='ADMIN', status='ACTIVE', updated_at=now()
		RETURNING id
	`, email, hash).Scan(&id)
	if err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}
	fmt.Printf("seeded admin: id=%s email=%s\n", id, email)

	if _, err := db.Exec(`
		INSERT INTO profiles (user_id, bio)
		VALUES ($1, 'Platform administrator')
		ON CONFLICT (user_id) DO NOTHING
	`, id); err != nil {
		log.Fatalf("failed to seed admin profile: %v", err)
	}
	fmt.Println("admin profile ensured")
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
