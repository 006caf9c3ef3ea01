// Copyright (C) 2025 CardinalHQ, Inc
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, version 3.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

// Package projection resolves a user-supplied column selection against a
// parquet schema. Resolution is pure computation over the footer, so an
// invalid column list fails before any row-group I/O is scheduled.
package projection

import (
	"fmt"
	"strings"

	"github.com/parquet-go/parquet-go"
)

// UnknownColumnError names a requested column that does not exist in the
// schema and was not marked tolerate-missing. Always fatal, raised before
// any row I/O.
type UnknownColumnError struct {
	Column string
}

func (e *UnknownColumnError) Error() string {
	return fmt.Sprintf("unknown column %q", e.Column)
}

// Entry is one requested column. A "?" prefix on the CLI marks the entry as
// tolerate-missing: absent columns are emitted as null instead of failing.
type Entry struct {
	Path     string
	Optional bool
}

// ParseSelection splits a comma-separated --columns value into entries,
// honoring the "?" tolerate-missing prefix. An empty value means all
// columns.
func ParseSelection(s string) []Entry {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	entries := make([]Entry, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if rest, ok := strings.CutPrefix(p, "?"); ok {
			entries = append(entries, Entry{Path: rest, Optional: true})
		} else {
			entries = append(entries, Entry{Path: p})
		}
	}
	return entries
}

// Column is one resolved output field, in the caller's requested order,
// which becomes the output field order.
type Column struct {
	// Path is the full dotted column path as requested (or as found in
	// the schema when the selection was empty). It is also the emitted
	// field name.
	Path string

	// Index is the leaf column index in the parquet schema. Meaningless
	// when Missing is true.
	Index int

	// MaxRepetitionLevel > 0 marks a repeated (list-shaped) column.
	MaxRepetitionLevel int

	// Node is the schema node for the leaf, used for logical-type aware
	// value conversion. Nil when Missing is true.
	Node parquet.Node

	// Missing marks a tolerate-missing entry absent from the schema: the
	// field is always emitted as null and its byte ranges never read.
	Missing bool
}

// Resolve maps the selection onto the schema. Matching is case-sensitive and
// exact on the full dotted path. An empty selection resolves to all leaf
// columns in schema order.
func Resolve(schema *parquet.Schema, entries []Entry) ([]Column, error) {
	if len(entries) == 0 {
		paths := schema.Columns()
		cols := make([]Column, 0, len(paths))
		for _, path := range paths {
			joined := strings.Join(path, ".")
			leaf, ok := schema.Lookup(path...)
			if !ok {
				// Columns() and Lookup() come from the same schema.
				return nil, &UnknownColumnError{Column: joined}
			}
			cols = append(cols, Column{
				Path:               joined,
				Index:              leaf.ColumnIndex,
				MaxRepetitionLevel: leaf.MaxRepetitionLevel,
				Node:               leaf.Node,
			})
		}
		return cols, nil
	}

	cols := make([]Column, 0, len(entries))
	for _, e := range entries {
		leaf, ok := schema.Lookup(strings.Split(e.Path, ".")...)
		if !ok {
			if !e.Optional {
				return nil, &UnknownColumnError{Column: e.Path}
			}
			cols = append(cols, Column{Path: e.Path, Missing: true})
			continue
		}
		cols = append(cols, Column{
			Path:               e.Path,
			Index:              leaf.ColumnIndex,
			MaxRepetitionLevel: leaf.MaxRepetitionLevel,
			Node:               leaf.Node,
		})
	}
	return cols, nil
}
