package store

import (
	"log"

	"tlb/config"
	"tlb/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Store wraps the authoritative postgres tables. It owns Tournament,
// ScoreRecord and the submission ledger; the rank cache is only ever a
// projection of what lives here.
type Store struct {
	DB *gorm.DB
}

func Init(config *config.Config) *Store {
	db, err := gorm.Open(postgres.Open(config.Postgres.DSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("Could not connect to Postgres: %s", err)
	}

	if err := db.AutoMigrate(
		&model.Tournament{},
		&model.ScoreRecord{},
		&model.Submission{},
		&model.PayoutRecord{},
	); err != nil {
		log.Fatalf("Could not run migrations: %s", err)
	}

	log.Println("Connected to Postgres")
	return &Store{DB: db}
}
