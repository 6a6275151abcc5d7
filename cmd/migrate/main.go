package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/samirrijal/wellpath/internal/pkg/config"
)

const migrationsDir = "migrations"

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: migrate <up|down>")
	}

	cfg, err := config.Load("wellpath-migrate")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	if _, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			name       TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`); err != nil {
		log.Fatalf("schema_migrations: %v", err)
	}

	switch os.Args[1] {
	case "up":
		files, err := migrationFiles(migrationsDir, false)
		if err != nil {
			log.Fatalf("list migrations: %v", err)
		}
		applyUp(ctx, pool, files)
	case "down":
		files, err := migrationFiles(migrationsDir, true)
		if err != nil {
			log.Fatalf("list migrations: %v", err)
		}
		applyDown(ctx, pool, files)
	default:
		log.Fatalf("unknown command: %s", os.Args[1])
	}
}

// migrationFiles lists up (NNN_name.sql) or down (NNN_name.down.sql) files.
// Up files are in ascending order, down files in descending order.
func migrationFiles(dir string, down bool) ([]string, error) {
	all, err := filepath.Glob(filepath.Join(dir, "*.sql"))
	if err != nil {
		return nil, err
	}

	var files []string
	for _, f := range all {
		if strings.HasSuffix(f, ".down.sql") == down {
			files = append(files, f)
		}
	}
	sort.Strings(files)
	if down {
		sort.Sort(sort.Reverse(sort.StringSlice(files)))
	}
	return files, nil
}

// migrationName is the shared key of an up file and its down file.
func migrationName(file string) string {
	base := filepath.Base(file)
	base = strings.TrimSuffix(base, ".down.sql")
	return strings.TrimSuffix(base, ".sql")
}

func applyUp(ctx context.Context, pool *pgxpool.Pool, files []string) {
	for _, f := range files {
		name := migrationName(f)

		var applied bool
		if err := pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE name = $1)`, name).Scan(&applied); err != nil {
			log.Fatalf("check %s: %v", name, err)
		}
		if applied {
			fmt.Printf("--  %s\n", f)
			continue
		}

		run(ctx, pool, f, `INSERT INTO schema_migrations (name) VALUES ($1)`, name)
		fmt.Printf("OK  %s\n", f)
	}
	log.Println("all migrations applied")
}

func applyDown(ctx context.Context, pool *pgxpool.Pool, files []string) {
	for _, f := range files {
		name := migrationName(f)
		run(ctx, pool, f, `DELETE FROM schema_migrations WHERE name = $1`, name)
		fmt.Printf("OK  %s\n", f)
	}
	log.Println("all migrations reverted")
}

// run executes a migration file and its bookkeeping statement in one transaction.
func run(ctx context.Context, pool *pgxpool.Pool, file, bookkeeping, name string) {
	data, err := os.ReadFile(file)
	if err != nil {
		log.Fatalf("read %s: %v", file, err)
	}
	err = pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, string(data)); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, bookkeeping, name)
		return err
	})
	if err != nil {
		log.Fatalf("exec %s: %v", file, err)
	}
}
