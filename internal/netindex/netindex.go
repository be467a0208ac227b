// Copyright © 2025 Nalu contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/netindex/netindex.go
// Summary: In-memory SQLite index of variable full names backing the netlist
// filter. Rebuilt from the header on every load.

package netindex

import (
	"database/sql"
	"log"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	_ "modernc.org/sqlite"

	"github.com/framegrace/nalu/browser"
	"github.com/framegrace/nalu/vcd"
)

const schema = `
CREATE TABLE IF NOT EXISTS variables (
    id INTEGER PRIMARY KEY,
    path TEXT NOT NULL,
    scope TEXT NOT NULL,
    name TEXT NOT NULL,
    idcode INTEGER NOT NULL,
    width INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_variables_path ON variables(path);
`

// Index maps filters to the full names of matching variables.
type Index struct {
	mu sync.RWMutex
	db *sql.DB
}

// New opens an empty index.
func New() (*Index, error) {
	db, err := sql.Open("sqlite", ":memory:?_pragma=temp_store(MEMORY)")
	if err != nil {
		return nil, errors.Wrap(err, "open netlist index")
	}
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "create netlist schema")
	}
	return &Index{db: db}, nil
}

// Build replaces the indexed variables with those declared in h.
func (ix *Index) Build(h *vcd.Header) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	tx, err := ix.db.Begin()
	if err != nil {
		return errors.Wrap(err, "begin")
	}
	if _, err := tx.Exec("DELETE FROM variables"); err != nil {
		tx.Rollback()
		return errors.Wrap(err, "clear netlist index")
	}
	stmt, err := tx.Prepare("INSERT INTO variables (path, scope, name, idcode, width) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		tx.Rollback()
		return errors.Wrap(err, "prepare")
	}
	defer stmt.Close()

	var insertErr error
	n := 0
	h.Walk(func(path []string, v *vcd.Variable) {
		if insertErr != nil {
			return
		}
		scope := strings.Join(path[:len(path)-1], ".")
		_, insertErr = stmt.Exec(strings.Join(path, "."), scope, v.Name, v.Idcode, v.Width)
		n++
	})
	if insertErr != nil {
		tx.Rollback()
		return errors.Wrap(insertErr, "index variable")
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "commit")
	}
	log.Printf("Netindex: Indexed %d variables", n)
	return nil
}

// Query returns the sorted full names of variables matching f. An empty
// filter matches everything.
func (ix *Index) Query(f browser.Filter) ([]string, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	var rows *sql.Rows
	var err error
	if f.Empty() {
		rows, err = ix.db.Query("SELECT path FROM variables")
	} else {
		rows, err = ix.db.Query("SELECT path FROM variables WHERE path GLOB ?", f.Glob())
	}
	if err != nil {
		return nil, errors.Wrap(err, "query netlist index")
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, errors.Wrap(err, "scan")
		}
		paths = append(paths, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "query netlist index")
	}

	// GLOB lets '*' cross dots; Match confines each section to one segment.
	paths = lo.Filter(lo.Uniq(paths), func(p string, _ int) bool {
		return f.Match(strings.Split(p, "."))
	})
	sort.Strings(paths)
	return paths, nil
}

// Scopes returns every scope path that holds one of paths, including
// ancestors, so a filtered tree keeps its structure.
func Scopes(paths []string) map[string]bool {
	scopes := make(map[string]bool)
	for _, p := range paths {
		segs := strings.Split(p, ".")
		for i := 1; i < len(segs); i++ {
			scopes[strings.Join(segs[:i], ".")] = true
		}
	}
	return scopes
}

// Count is the number of indexed variables.
func (ix *Index) Count() (int, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	var n int
	err := ix.db.QueryRow("SELECT COUNT(*) FROM variables").Scan(&n)
	return n, errors.Wrap(err, "count")
}

// Close releases the database.
func (ix *Index) Close() error {
	return ix.db.Close()
}
