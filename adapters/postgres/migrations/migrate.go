package migrations

import (
	"context"
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"
)

//go:embed *.sql
var files embed.FS

// Migrator applies the embedded schema migrations in version order.
type Migrator struct {
	db *sqlx.DB
}

// NewMigrator creates a new migrator
func NewMigrator(db *sqlx.DB) *Migrator {
	return &Migrator{db: db}
}

// MigrationFile is one embedded migration.
type MigrationFile struct {
	Version  string
	Name     string
	Checksum string
	SQL      string
}

// MigrationStatus reports whether a migration has been applied.
type MigrationStatus struct {
	Version string
	Applied bool
}

// Load returns the embedded migrations sorted by version.
func Load() ([]MigrationFile, error) {
	entries, err := fs.ReadDir(files, ".")
	if err != nil {
		return nil, err
	}
	var out []MigrationFile
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		body, err := fs.ReadFile(files, e.Name())
		if err != nil {
			return nil, err
		}
		sum := sha256.Sum256(body)
		out = append(out, MigrationFile{
			Version:  strings.SplitN(e.Name(), "_", 2)[0],
			Name:     e.Name(),
			Checksum: hex.EncodeToString(sum[:]),
			SQL:      string(body),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

func (m *Migrator) ensureTable(ctx context.Context) error {
	_, err := m.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			checksum TEXT NOT NULL,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}
	return nil
}

func (m *Migrator) applied(ctx context.Context) (map[string]string, error) {
	var rows []struct {
		Version  string `db:"version"`
		Checksum string `db:"checksum"`
	}
	if err := m.db.SelectContext(ctx, &rows, "SELECT version, checksum FROM schema_migrations"); err != nil {
		return nil, fmt.Errorf("failed to get applied migrations: %w", err)
	}
	out := make(map[string]string, len(rows))
	for _, r := range rows {
		out[r.Version] = r.Checksum
	}
	return out, nil
}

// Up executes all pending migrations, each in its own transaction. It
// refuses to continue when an applied migration's checksum has changed.
func (m *Migrator) Up(ctx context.Context) ([]string, error) {
	if err := m.ensureTable(ctx); err != nil {
		return nil, err
	}
	done, err := m.applied(ctx)
	if err != nil {
		return nil, err
	}
	migrations, err := Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load migrations: %w", err)
	}

	var ran []string
	for _, mf := range migrations {
		if sum, ok := done[mf.Version]; ok {
			if sum != mf.Checksum {
				return ran, fmt.Errorf("migration %s was modified after it was applied", mf.Name)
			}
			continue
		}
		tx, err := m.db.BeginTxx(ctx, nil)
		if err != nil {
			return ran, err
		}
		if _, err := tx.ExecContext(ctx, mf.SQL); err != nil {
			_ = tx.Rollback()
			return ran, fmt.Errorf("failed to apply migration %s: %w", mf.Name, err)
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations (version, checksum) VALUES ($1, $2)", mf.Version, mf.Checksum); err != nil {
			_ = tx.Rollback()
			return ran, fmt.Errorf("failed to record migration %s: %w", mf.Name, err)
		}
		if err := tx.Commit(); err != nil {
			return ran, err
		}
		ran = append(ran, mf.Name)
	}
	return ran, nil
}

// Status lists every embedded migration and whether it has been applied.
func (m *Migrator) Status(ctx context.Context) ([]MigrationStatus, error) {
	if err := m.ensureTable(ctx); err != nil {
		return nil, err
	}
	done, err := m.applied(ctx)
	if err != nil {
		return nil, err
	}
	migrations, err := Load()
	if err != nil {
		return nil, err
	}
	out := make([]MigrationStatus, len(migrations))
	for i, mf := range migrations {
		_, ok := done[mf.Version]
		out[i] = MigrationStatus{Version: mf.Version, Applied: ok}
	}
	return out, nil
}
