package main

import (
	"context"
	"crypto/sha256"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

// Migration represents a single migration file
type Migration struct {
	Version  int
	Name     string
	Filename string
	SQL      string
	Checksum string
}

var (
	migrationsDir = flag.String("migrations", "db/migrations", "Path to migrations directory")
	appliedBy     = flag.String("applied-by", "migrate-cli", "Name of the tool applying migrations")
)

var migrationFileRe = regexp.MustCompile(`^(\d+)_(.+)\.sql$`)

func main() {
	flag.Parse()
	_ = godotenv.Load()

	dbURL := os.Getenv("DB_URL")
	if dbURL == "" {
		log.Fatal("Error: DB_URL env var is required")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer pool.Close()

	if _, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version     INT PRIMARY KEY,
			name        TEXT NOT NULL,
			checksum    TEXT NOT NULL,
			applied_by  TEXT NOT NULL,
			applied_at  TIMESTAMPTZ NOT NULL DEFAULT now()
		)`); err != nil {
		log.Fatalf("Failed to ensure schema_migrations table: %v", err)
	}

	migrations, err := readMigrations(*migrationsDir)
	if err != nil {
		log.Fatalf("Failed to read migrations: %v", err)
	}
	log.Printf("Found %d migration files", len(migrations))

	applied := map[int]string{}
	rows, err := pool.Query(ctx, "SELECT version, checksum FROM schema_migrations")
	if err != nil {
		log.Fatalf("Failed to read applied migrations: %v", err)
	}
	for rows.Next() {
		var version int
		var checksum string
		if err := rows.Scan(&version, &checksum); err != nil {
			rows.Close()
			log.Fatalf("Failed to scan applied migration: %v", err)
		}
		applied[version] = checksum
	}
	rows.Close()
	if rows.Err() != nil {
		log.Fatalf("Failed to read applied migrations: %v", rows.Err())
	}

	pending := 0
	for _, m := range migrations {
		if checksum, ok := applied[m.Version]; ok {
			if checksum != m.Checksum {
				log.Fatalf("Checksum mismatch for applied migration %d (%s): file was edited after apply", m.Version, m.Name)
			}
			continue
		}

		start := time.Now()
		tx, err := pool.Begin(ctx)
		if err != nil {
			log.Fatalf("Failed to begin transaction: %v", err)
		}
		if _, err := tx.Exec(ctx, m.SQL); err != nil {
			_ = tx.Rollback(ctx)
			log.Fatalf("Migration %d (%s) failed: %v", m.Version, m.Name, err)
		}
		if _, err := tx.Exec(ctx,
			"INSERT INTO schema_migrations (version, name, checksum, applied_by) VALUES ($1, $2, $3, $4)",
			m.Version, m.Name, m.Checksum, *appliedBy); err != nil {
			_ = tx.Rollback(ctx)
			log.Fatalf("Failed to record migration %d: %v", m.Version, err)
		}
		if err := tx.Commit(ctx); err != nil {
			log.Fatalf("Failed to commit migration %d: %v", m.Version, err)
		}
		log.Printf("Applied %d_%s in %s", m.Version, m.Name, time.Since(start).Round(time.Millisecond))
		pending++
	}

	if pending == 0 {
		log.Println("Database is up to date")
	} else {
		log.Printf("Applied %d migration(s)", pending)
	}
}

// readMigrations loads NNNN_name.sql files sorted by version.
func readMigrations(dir string) ([]Migration, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []Migration
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := migrationFileRe.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		var version int
		if _, err := fmt.Sscanf(m[1], "%d", &version); err != nil {
			return nil, fmt.Errorf("bad version in %s: %w", e.Name(), err)
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		out = append(out, Migration{
			Version:  version,
			Name:     m[2],
			Filename: e.Name(),
			SQL:      string(data),
			Checksum: fmt.Sprintf("%x", sha256.Sum256(data)),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	for i := 1; i < len(out); i++ {
		if out[i].Version == out[i-1].Version {
			return nil, fmt.Errorf("duplicate migration version %d (%s, %s)", out[i].Version, out[i-1].Filename, out[i].Filename)
		}
	}
	return out, nil
}
