package main

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/sensus-health/sensus-api/config"
	"github.com/sensus-health/sensus-api/pkg/helpers"
)

// Seeds a demo account with a week of diary entries and one evaluation.
// Development only; the upsert makes it safe to run repeatedly.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	email := "demo@sensus.local"
	password := "Demo1234"
	hash, err := helpers.HashPassword(password, cfg.BcryptCost)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	var id string
	err = db.QueryRow(`
		INSERT INTO users (email, password_hash, first_name, last_name, birth_date)
		VALUES ($1, $2, 'Demo', 'Usuario', '1995-06-15')
		ON CONFLICT (email) DO UPDATE SET updated_at = now()
		RETURNING id
	`, email, hash).Scan(&id)
	if err != nil {
		log.Fatalf("failed to seed user: %v", err)
	}
	fmt.Printf("seeded user: id=%s email=%s password=%s\n", id, email, password)

	moods := []int{6, 7, 5, 8, 6, 7, 9}
	for i, mood := range moods {
		if _, err := db.Exec(`
			INSERT INTO diary_entries (user_id, content, mood, tags, entry_date)
			VALUES ($1, $2, $3, $4, CURRENT_DATE - $5::int)
		`, id, fmt.Sprintf("Entrada de prueba %d", i+1), mood, "{demo}", len(moods)-1-i); err != nil {
			log.Fatalf("failed to seed diary entry: %v", err)
		}
	}
	fmt.Printf("seeded %d diary entries\n", len(moods))

	if _, err := db.Exec(`
		INSERT INTO evaluations (user_id, test_type, answers, total_score, severity)
		VALUES ($1, 'gad7', '{2,1,3,0,2,1,1}', 10, 'Moderada')
	`, id); err != nil {
		log.Fatalf("failed to seed evaluation: %v", err)
	}
	fmt.Println("seeded gad7 evaluation")
}
