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

// Package jsonline writes decoded rows as one JSON object per line. Fields
// are emitted in the row's order, which a map-based marshal would not
// preserve, so objects are assembled field by field.
package jsonline

import (
	"bufio"
	"encoding/json"
	"io"

	"github.com/cardinalhq/parquet2json/internal/streamread"
)

// Emitter writes newline-delimited JSON to a buffered writer.
type Emitter struct {
	w            *bufio.Writer
	includeNulls bool
}

// New returns an emitter. When includeNulls is false, null fields are
// omitted from the emitted object entirely.
func New(w io.Writer, includeNulls bool) *Emitter {
	return &Emitter{
		w:            bufio.NewWriter(w),
		includeNulls: includeNulls,
	}
}

// Emit writes one row as a single JSON object followed by a newline.
func (e *Emitter) Emit(row streamread.Row) error {
	if err := e.w.WriteByte('{'); err != nil {
		return err
	}
	wroteField := false
	for _, f := range row {
		if f.Null && !e.includeNulls {
			continue
		}
		if wroteField {
			if err := e.w.WriteByte(','); err != nil {
				return err
			}
		}
		name, err := json.Marshal(f.Name)
		if err != nil {
			return err
		}
		if _, err := e.w.Write(name); err != nil {
			return err
		}
		if err := e.w.WriteByte(':'); err != nil {
			return err
		}
		if f.Null {
			if _, err := e.w.WriteString("null"); err != nil {
				return err
			}
		} else {
			value, err := json.Marshal(f.Value)
			if err != nil {
				return err
			}
			if _, err := e.w.Write(value); err != nil {
				return err
			}
		}
		wroteField = true
	}
	if err := e.w.WriteByte('}'); err != nil {
		return err
	}
	return e.w.WriteByte('\n')
}

// Flush drains the buffer to the underlying writer.
func (e *Emitter) Flush() error {
	return e.w.Flush()
}
