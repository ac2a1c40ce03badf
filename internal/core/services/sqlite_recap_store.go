// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jaycherian/lumi/internal/core/model"
	_ "modernc.org/sqlite" // Register driver
)

// SQLiteRecapStore keeps recaps in a local SQLite file as JSON documents.
// It backs the CLI and local development runs.
type SQLiteRecapStore struct {
	db *sql.DB
}

// NewSQLiteRecapStore opens path, ":memory:" included, and creates the table.
func NewSQLiteRecapStore(path string) (*SQLiteRecapStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	// One connection keeps ":memory:" databases alive and avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping db: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=30000;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS recaps (
		id TEXT PRIMARY KEY,
		create_date DATETIME NOT NULL,
		doc TEXT NOT NULL
	);`); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}
	return &SQLiteRecapStore{db: db}, nil
}

func (s *SQLiteRecapStore) Save(ctx context.Context, recap *model.RecapSet) error {
	doc, err := json.Marshal(recap)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO recaps (id, create_date, doc) VALUES (?, ?, ?)",
		recap.Id, recap.CreateDate.UTC(), string(doc))
	return err
}

func (s *SQLiteRecapStore) Get(ctx context.Context, id string) (*model.RecapSet, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, "SELECT doc FROM recaps WHERE id = ?", id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", model.ErrRecapNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return decodeRecap(doc)
}

func (s *SQLiteRecapStore) List(ctx context.Context, limit int) ([]*model.RecapSet, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT doc FROM recaps ORDER BY create_date DESC, id LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*model.RecapSet, 0)
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		recap, err := decodeRecap(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, recap)
	}
	return out, rows.Err()
}

// Close closes the database.
func (s *SQLiteRecapStore) Close() error {
	return s.db.Close()
}

func decodeRecap(doc string) (*model.RecapSet, error) {
	recap := &model.RecapSet{}
	if err := json.Unmarshal([]byte(doc), recap); err != nil {
		return nil, fmt.Errorf("corrupt recap document: %w", err)
	}
	recap.ApplyDefaults()
	return recap, nil
}
