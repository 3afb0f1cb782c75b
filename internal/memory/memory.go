// Package memory implements an optional sqlite-backed translation memory.
// The page algorithm consults it before calling the translator and writes
// successful translations back, so repeated units across runs cost nothing.
package memory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"golang.org/x/text/unicode/norm"
	_ "modernc.org/sqlite"
)

// Cache is an exact-match translation memory keyed by normalized source
// text, language pair, and model.
type Cache struct {
	db *sql.DB
}

// Open opens (and if necessary creates) the cache database at path.
func Open(path string) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open translation memory: %w", err)
	}

	c := &Cache{db: db}
	if err := c.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate translation memory: %w", err)
	}
	return c, nil
}

func (c *Cache) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS translation_memory (
		source_text     TEXT NOT NULL,
		source_lang     TEXT NOT NULL,
		target_lang     TEXT NOT NULL,
		model           TEXT NOT NULL,
		translated_text TEXT NOT NULL,
		usage_count     INTEGER DEFAULT 1,
		created_at      TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		last_used       TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(source_text, source_lang, target_lang, model)
	);`
	_, err := c.db.Exec(schema)
	return err
}

// Lookup returns the cached translation for the unit, if present. A hit
// bumps usage statistics.
func (c *Cache) Lookup(ctx context.Context, sourceText, sourceLang, targetLang, model string) (string, bool, error) {
	key := norm.NFC.String(sourceText)

	var translated string
	err := c.db.QueryRowContext(ctx,
		`SELECT translated_text FROM translation_memory
		 WHERE source_text = ? AND source_lang = ? AND target_lang = ? AND model = ?`,
		key, sourceLang, targetLang, model,
	).Scan(&translated)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	_, err = c.db.ExecContext(ctx,
		`UPDATE translation_memory SET usage_count = usage_count + 1, last_used = ?
		 WHERE source_text = ? AND source_lang = ? AND target_lang = ? AND model = ?`,
		time.Now().UTC(), key, sourceLang, targetLang, model,
	)
	if err != nil {
		return "", false, err
	}
	return translated, true, nil
}

// Store records a successful translation, replacing any previous entry for
// the same key.
func (c *Cache) Store(ctx context.Context, sourceText, sourceLang, targetLang, model, translated string) error {
	key := norm.NFC.String(sourceText)
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO translation_memory (source_text, source_lang, target_lang, model, translated_text)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(source_text, source_lang, target_lang, model)
		 DO UPDATE SET translated_text = excluded.translated_text, last_used = CURRENT_TIMESTAMP`,
		key, sourceLang, targetLang, model, translated,
	)
	return err
}

// Close releases the underlying database handle.
func (c *Cache) Close() error {
	return c.db.Close()
}
