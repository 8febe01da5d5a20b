// Package guildconfig persists the per-guild settings that outlive the
// process: the command prefix list and the configured moderator role set.
// All other bot state is process-lifetime only and lives in internal/state.
package guildconfig

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() {
	if s.db != nil {
		_ = s.db.Close()
	}
}

func (s *Store) Migrate() error {
	entries, err := migrations.ReadDir("migrations")
	if err != nil {
		return err
	}

	var files []string
	for _, entry := range entries {
		files = append(files, entry.Name())
	}
	sort.Strings(files)

	for _, file := range files {
		content, err := migrations.ReadFile(path.Join("migrations", file))
		if err != nil {
			return err
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			if isIgnorableMigrationError(err) {
				continue
			}
			return fmt.Errorf("migration %s failed: %w", file, err)
		}
	}
	return nil
}

// Prefixes returns the guild's prefixes in configured order; empty when the
// guild has never set one, in which case callers fall back to the defaults.
func (s *Store) Prefixes(ctx context.Context, guildID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT prefix FROM guild_prefixes WHERE guild_id = ? ORDER BY position
	`, guildID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var prefixes []string
	for rows.Next() {
		var prefix string
		if err := rows.Scan(&prefix); err != nil {
			return nil, err
		}
		prefixes = append(prefixes, prefix)
	}
	return prefixes, rows.Err()
}

// SetPrefix replaces the guild's prefix list with the single given prefix.
func (s *Store) SetPrefix(ctx context.Context, guildID, prefix string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM guild_prefixes WHERE guild_id = ?`, guildID); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `
		INSERT INTO guild_prefixes (guild_id, position, prefix) VALUES (?, 0, ?)
	`, guildID, prefix); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) AddModeratorRole(ctx context.Context, guildID, roleID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO moderator_roles (guild_id, role_id) VALUES (?, ?)
	`, guildID, roleID)
	return err
}

func (s *Store) RemoveModeratorRole(ctx context.Context, guildID, roleID string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM moderator_roles WHERE guild_id = ? AND role_id = ?
	`, guildID, roleID)
	return err
}

func (s *Store) ModeratorRoles(ctx context.Context, guildID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT role_id FROM moderator_roles WHERE guild_id = ? ORDER BY role_id
	`, guildID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []string
	for rows.Next() {
		var roleID string
		if err := rows.Scan(&roleID); err != nil {
			return nil, err
		}
		roles = append(roles, roleID)
	}
	return roles, rows.Err()
}

func isIgnorableMigrationError(err error) bool {
	if err == nil {
		return false
	}
	message := err.Error()
	return strings.Contains(message, "duplicate column name") || strings.Contains(message, "already exists")
}
