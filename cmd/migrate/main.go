package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/georgemunganga/exhibition-crm/internal/config"
	"github.com/georgemunganga/exhibition-crm/internal/platform/logger"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// Applies every *.sql file in the migrations directory (first argument,
// default "migrations") in name order, each in its own transaction.
func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.Logging.Level, cfg.Logging.Format, "exhibition-crm-migrate")
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger error: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	dir := "migrations"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	dsn, err := cfg.Store.DSN()
	if err != nil {
		log.Fatal("invalid record store settings", zap.Error(err))
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatal("connect", zap.Error(err))
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		log.Fatal("ping", zap.Error(err))
	}

	files, err := sqlFiles(dir)
	if err != nil {
		log.Fatal("read migrations", zap.String("dir", dir), zap.Error(err))
	}

	var failed int
	for _, f := range files {
		if err := apply(ctx, db, f); err != nil {
			failed++
			log.Error("migration failed", zap.String("file", f), zap.Error(err))
			continue
		}
		log.Info("migration applied", zap.String("file", f))
	}
	if failed > 0 {
		log.Fatal("migrations incomplete", zap.Int("failed", failed), zap.Int("total", len(files)))
	}
	log.Info("migrations complete", zap.Int("total", len(files)))
}

func sqlFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

func apply(ctx context.Context, db *sql.DB, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if strings.TrimSpace(string(data)) == "" {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if _, err := tx.ExecContext(ctx, string(data)); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}
