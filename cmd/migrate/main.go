package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/samirrijal/neverbeen/internal/adapters/postgres"
	"github.com/samirrijal/neverbeen/internal/core/domain"
	"github.com/samirrijal/neverbeen/internal/core/ports"
	"github.com/samirrijal/neverbeen/internal/pkg/config"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: migrate <up|seed FILE.csv>")
	}
	_ = godotenv.Load()

	cfg, err := config.Load("neverbeen-migrate")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	switch os.Args[1] {
	case "up":
		runMigrations(ctx, db)
	case "seed":
		if len(os.Args) < 3 {
			log.Fatal("usage: migrate seed FILE.csv")
		}
		n, err := seedPlaces(ctx, postgres.NewPlaceRepo(db), os.Args[2])
		if err != nil {
			log.Fatalf("seed: %v", err)
		}
		log.Printf("seeded %d places", n)
	default:
		log.Fatalf("unknown command: %s", os.Args[1])
	}
}

func runMigrations(ctx context.Context, db *postgres.DB) {
	files := []string{
		"migrations/001_init_extensions.sql",
		"migrations/002_places.sql",
	}

	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			log.Fatalf("read %s: %v", f, err)
		}

		_, err = db.Pool.Exec(ctx, string(data))
		if err != nil {
			log.Fatalf("exec %s: %v", f, err)
		}

		fmt.Printf("OK  %s\n", f)
	}

	log.Println("all migrations applied")
}

// seedPlaces loads a name,lat,lon[,country_code] CSV with a header row.
// Rows with bad coordinates are skipped and reported.
func seedPlaces(ctx context.Context, repo ports.PlaceRepository, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	if _, err := r.Read(); err != nil {
		return 0, fmt.Errorf("read header: %w", err)
	}

	n, line := 0, 1
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return n, fmt.Errorf("line %d: %w", line, err)
		}
		if len(rec) < 3 {
			log.Printf("skip line %d: expected name,lat,lon", line)
			continue
		}
		p, err := domain.ParseGeoPoint(rec[1], rec[2])
		if err != nil {
			log.Printf("skip line %d: %v", line, err)
			continue
		}
		cc := ""
		if len(rec) > 3 {
			cc = strings.ToUpper(strings.TrimSpace(rec[3]))
		}
		if err := repo.Upsert(ctx, strings.TrimSpace(rec[0]), p, cc); err != nil {
			return n, fmt.Errorf("line %d: %w", line, err)
		}
		n++
	}
	return n, nil
}
