package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/vncsmyrnk/ballot/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/ballot/internal/platform/config"
)

// Usage: migrations <name>|up|list
func main() {
	if len(os.Args) < 2 {
		log.Fatal("a migration name is required.")
	}
	migrationName := os.Args[1]

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	if migrationName == "list" {
		for _, direction := range []string{"up", "down"} {
			names, err := postgres.Migrations(direction)
			if err != nil {
				log.Fatal(err)
			}
			for _, name := range names {
				fmt.Println(name)
			}
		}
		return
	}

	db, err := sql.Open("postgres", config.PostgresFromEnv().ConnString())
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if migrationName == "up" {
		err = postgres.Migrate(ctx, db)
	} else {
		err = postgres.RunMigration(ctx, db, migrationName)
	}
	if err != nil {
		log.Fatalf("Failed to execute migration: %v", err)
	}

	fmt.Println("Migration executed successfully.")
}
