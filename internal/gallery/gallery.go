// Copyright 2026 The Arctic Authors
// SPDX-License-Identifier: MIT

// Package gallery stores rendered pieces in a SQLite database.
package gallery

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/arcticsynth/arctic/internal/fieldcode"
	"github.com/arcticsynth/arctic/internal/fieldtree"
	"github.com/google/uuid"
	"zombiezen.com/go/log"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitemigration"
	"zombiezen.com/go/sqlite/sqlitex"
)

// ErrNotFound is returned when a piece does not exist in the gallery.
var ErrNotFound = errors.New("piece not found")

// Piece is a saved image description.
type Piece struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
	// Seed is the random seed the tree was generated from.
	// It is only meaningful if HasSeed is true.
	Seed    int64
	HasSeed bool
	Tree    *fieldtree.Tree
	// Encoding and InstructionCount are the compilation settings
	// the piece was rendered with.
	Encoding         fieldcode.Encoding
	InstructionCount int
}

// Gallery is a handle to a gallery database.
// It is safe to use from multiple goroutines.
type Gallery struct {
	db *sqlitemigration.Pool
}

// Open opens the gallery database at path,
// creating it and its parent directory if necessary.
// Callers are responsible for calling [Gallery.Close] on the returned gallery.
func Open(path string) (*Gallery, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o777); err != nil {
		return nil, fmt.Errorf("open gallery: %v", err)
	}
	return &Gallery{
		db: sqlitemigration.NewPool(path, loadSchema(), sqlitemigration.Options{
			Flags:       sqlite.OpenCreate | sqlite.OpenReadWrite,
			PrepareConn: prepareConn,
			OnStartMigrate: func() {
				ctx := context.Background()
				log.Debugf(ctx, "Migrating gallery %s...", path)
			},
			OnReady: func() {
				ctx := context.Background()
				log.Debugf(ctx, "Gallery %s ready", path)
			},
			OnError: func(err error) {
				ctx := context.Background()
				log.Errorf(ctx, "Gallery migration: %v", err)
			},
		}),
	}, nil
}

// Close releases any resources associated with the gallery.
func (g *Gallery) Close() error {
	return g.db.Close()
}

// Save inserts a new piece into the gallery.
// If p.ID is the zero UUID, Save assigns a new random ID.
// If p.CreatedAt is zero, Save uses the current time.
// Save returns an error if the tree cannot be compiled
// with the piece's encoding and instruction count.
func (g *Gallery) Save(ctx context.Context, p *Piece) (err error) {
	if p.Tree == nil {
		return fmt.Errorf("save piece: missing tree")
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	if p.Encoding == 0 {
		p.Encoding = fieldcode.CountEncoding
	}
	if p.InstructionCount == 0 {
		p.InstructionCount = fieldcode.DefaultInstructionCount
	}
	if _, err := fieldtree.CompileTree(p.Tree, p.Encoding, p.InstructionCount); err != nil {
		return fmt.Errorf("save piece %v: %v", p.ID, err)
	}
	desc, err := fieldtree.MarshalTree(p.Tree)
	if err != nil {
		return fmt.Errorf("save piece %v: %v", p.ID, err)
	}

	conn, err := g.db.Get(ctx)
	if err != nil {
		return fmt.Errorf("save piece %v: %v", p.ID, err)
	}
	defer g.db.Put(conn)

	var seed any
	if p.HasSeed {
		seed = p.Seed
	}
	err = sqlitex.ExecuteTransientFS(conn, sqlFiles(), "insert_piece.sql", &sqlitex.ExecOptions{
		Named: map[string]any{
			":id":                p.ID.String(),
			":created_at":        p.CreatedAt.UnixMilli(),
			":seed":              seed,
			":description":       string(desc),
			":name":              p.Name,
			":encoding":          p.Encoding.String(),
			":instruction_count": p.InstructionCount,
		},
	})
	if sqlite.ErrCode(err) == sqlite.ResultConstraintPrimaryKey {
		return fmt.Errorf("save piece %v: piece exists", p.ID)
	}
	if err != nil {
		return fmt.Errorf("save piece %v: %v", p.ID, err)
	}
	log.Debugf(ctx, "Saved piece %v (%d bytes of description)", p.ID, len(desc))
	return nil
}

// Get returns the piece with the given ID.
// If no such piece exists, Get returns an error that wraps [ErrNotFound].
func (g *Gallery) Get(ctx context.Context, id uuid.UUID) (*Piece, error) {
	conn, err := g.db.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("get piece %v: %v", id, err)
	}
	defer g.db.Put(conn)

	var p *Piece
	err = sqlitex.ExecuteTransientFS(conn, sqlFiles(), "get_piece.sql", &sqlitex.ExecOptions{
		Named: map[string]any{":id": id.String()},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			var err error
			p, err = scanPiece(stmt)
			return err
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get piece %v: %v", id, err)
	}
	if p == nil {
		return nil, fmt.Errorf("get piece %v: %w", id, ErrNotFound)
	}
	return p, nil
}

// List returns up to limit pieces, most recently created first.
// If limit is not positive, List returns every piece.
func (g *Gallery) List(ctx context.Context, limit int) ([]*Piece, error) {
	conn, err := g.db.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pieces: %v", err)
	}
	defer g.db.Put(conn)

	if limit <= 0 {
		limit = -1
	}
	var pieces []*Piece
	err = sqlitex.ExecuteTransientFS(conn, sqlFiles(), "list_pieces.sql", &sqlitex.ExecOptions{
		Named: map[string]any{":limit": limit},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			p, err := scanPiece(stmt)
			if err != nil {
				return err
			}
			pieces = append(pieces, p)
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("list pieces: %v", err)
	}
	return pieces, nil
}

// Delete removes the piece with the given ID.
// If no such piece exists, Delete returns an error that wraps [ErrNotFound].
func (g *Gallery) Delete(ctx context.Context, id uuid.UUID) error {
	conn, err := g.db.Get(ctx)
	if err != nil {
		return fmt.Errorf("delete piece %v: %v", id, err)
	}
	defer g.db.Put(conn)

	err = sqlitex.ExecuteTransientFS(conn, sqlFiles(), "delete_piece.sql", &sqlitex.ExecOptions{
		Named: map[string]any{":id": id.String()},
	})
	if err != nil {
		return fmt.Errorf("delete piece %v: %v", id, err)
	}
	if conn.Changes() == 0 {
		return fmt.Errorf("delete piece %v: %w", id, ErrNotFound)
	}
	return nil
}

// Resolve returns the ID of the single piece
// whose ID starts with the given prefix.
// A full UUID is returned as-is without consulting the database.
func (g *Gallery) Resolve(ctx context.Context, prefix string) (uuid.UUID, error) {
	if id, err := uuid.Parse(prefix); err == nil {
		return id, nil
	}
	prefix = strings.ToLower(prefix)
	if prefix == "" || strings.Trim(prefix, "0123456789abcdef-") != "" {
		return uuid.Nil, fmt.Errorf("resolve %q: not an ID prefix", prefix)
	}

	conn, err := g.db.Get(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("resolve %q: %v", prefix, err)
	}
	defer g.db.Put(conn)

	var ids []string
	err = sqlitex.ExecuteTransientFS(conn, sqlFiles(), "find_id.sql", &sqlitex.ExecOptions{
		Named: map[string]any{":prefix": prefix},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			ids = append(ids, stmt.GetText("id"))
			return nil
		},
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("resolve %q: %v", prefix, err)
	}
	switch len(ids) {
	case 0:
		return uuid.Nil, fmt.Errorf("resolve %q: %w", prefix, ErrNotFound)
	case 1:
		id, err := uuid.Parse(ids[0])
		if err != nil {
			return uuid.Nil, fmt.Errorf("resolve %q: %v", prefix, err)
		}
		return id, nil
	default:
		return uuid.Nil, fmt.Errorf("resolve %q: ambiguous prefix", prefix)
	}
}

func scanPiece(stmt *sqlite.Stmt) (*Piece, error) {
	rawID := stmt.GetText("id")
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("piece %q: %v", rawID, err)
	}
	p := &Piece{
		ID:               id,
		Name:             stmt.GetText("name"),
		CreatedAt:        time.UnixMilli(stmt.GetInt64("created_at")).UTC(),
		InstructionCount: int(stmt.GetInt64("instruction_count")),
	}
	if stmt.ColumnType(stmt.ColumnIndex("seed")) != sqlite.TypeNull {
		p.Seed = stmt.GetInt64("seed")
		p.HasSeed = true
	}
	if err := p.Encoding.UnmarshalText([]byte(stmt.GetText("encoding"))); err != nil {
		return nil, fmt.Errorf("piece %v: %v", id, err)
	}
	p.Tree, err = fieldtree.ParseTree([]byte(stmt.GetText("description")))
	if err != nil {
		return nil, fmt.Errorf("piece %v: %v", id, err)
	}
	return p, nil
}

func prepareConn(conn *sqlite.Conn) error {
	if err := sqlitex.ExecuteTransient(conn, "PRAGMA journal_mode = wal;", nil); err != nil {
		return fmt.Errorf("enable write-ahead logging: %v", err)
	}
	if err := sqlitex.ExecuteTransient(conn, "PRAGMA foreign_keys = on;", nil); err != nil {
		return fmt.Errorf("enable foreign keys: %v", err)
	}
	return nil
}

//go:embed sql/*.sql
//go:embed sql/schema/*.sql
var rawSQLFiles embed.FS

func sqlFiles() fs.FS {
	sub, err := fs.Sub(rawSQLFiles, "sql")
	if err != nil {
		panic(err)
	}
	return sub
}

var schemaState struct {
	init   sync.Once
	schema sqlitemigration.Schema
	err    error
}

func loadSchema() sqlitemigration.Schema {
	schemaState.init.Do(func() {
		for i := 1; ; i++ {
			migration, err := fs.ReadFile(sqlFiles(), fmt.Sprintf("schema/%02d.sql", i))
			if errors.Is(err, fs.ErrNotExist) {
				break
			}
			if err != nil {
				schemaState.err = err
				return
			}
			schemaState.schema.Migrations = append(schemaState.schema.Migrations, string(migration))
		}
	})

	if schemaState.err != nil {
		panic(schemaState.err)
	}
	return schemaState.schema
}
