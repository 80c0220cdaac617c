package main

import (
	"log"
	"os"
	"strings"

	_ "github.com/joho/godotenv/autoload"

	"github.com/fdg312/weekplan/internal/config"
	"github.com/fdg312/weekplan/internal/dbmigrate"
)

func main() {
	allowed := strings.Join(dbmigrate.Commands, "|")
	if len(os.Args) < 2 {
		log.Fatalf("usage: go run ./cmd/migrate [%s]", allowed)
	}

	command := os.Args[1]
	if !dbmigrate.IsCommand(command) {
		log.Fatalf("unsupported command %q (allowed: %s)", command, allowed)
	}

	cfg := config.Load()
	dbURL, source, warning, err := dbmigrate.SelectDatabaseURL(cfg, false)
	if err != nil {
		log.Fatal(err)
	}

	if warning != "" {
		log.Printf("WARN migrate: %s", warning)
	}
	log.Printf("INFO migrate: command=%s using=%s", command, source)

	if err := dbmigrate.Run(command, dbURL, cfg.MigrationsDir); err != nil {
		log.Fatal(err)
	}

	log.Printf("INFO migrate: %s completed successfully", command)
}
