package main

import (
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"github.com/rylis/touchline/internal/club"
	"github.com/rylis/touchline/internal/database"
)

// demoClubs are the fixtures every fresh demo league starts from.
var demoClubs = []club.Club{
	{Name: "Northbridge Rovers", ShortName: "NBR", Venue: "Northbridge Park"},
	{Name: "Harbour Athletic", ShortName: "HBA", Venue: "Harbour Ground"},
	{Name: "Eastfield United", ShortName: "EFU", Venue: "Eastfield Arena"},
	{Name: "Milltown Wanderers", ShortName: "MTW", Venue: "The Millyard"},
	{Name: "Kingsport City", ShortName: "KPC", Venue: "Kingsport Stadium"},
	{Name: "Westvale Albion", ShortName: "WVA", Venue: "Westvale Meadow"},
}

func main() {
	log.Info("Starting database seeder...")

	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found, reading from environment variables")
	}
	dbName, ok := os.LookupEnv("DB_NAME")
	if !ok {
		log.Fatal("Error: Required environment variable DB_NAME is not set.")
	}

	db, err := database.InitDB(dbName, os.Getenv("TURSO_PRIMARY_URL"), os.Getenv("TURSO_AUTH_TOKEN"))
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	defer db.Close()

	store := club.New(db)
	for _, c := range demoClubs {
		// Deterministic ids keep the seeder idempotent across runs.
		c.ID = strings.ToLower(c.ShortName)
		if err := store.UpsertClub(c); err != nil {
			log.Fatalf("Failed to seed club %s: %s", c.Name, err)
		}
		log.Info("Seeded club", "name", c.Name, "venue", c.Venue)
	}

	log.Info("Seeding complete", "clubs", len(demoClubs))
}
