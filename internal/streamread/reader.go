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

// Package streamread drives the parquet decoder over only the planned row
// groups and selected columns, producing a single-pass sequence of decoded
// rows. For each row group it issues one range read per distinct selected
// column chunk; columns for tolerate-missing-absent entries are never
// fetched at all.
package streamread

import (
	"context"
	"fmt"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/format"
	"golang.org/x/sync/errgroup"

	"github.com/cardinalhq/parquet2json/internal/metadata"
	"github.com/cardinalhq/parquet2json/internal/projection"
	"github.com/cardinalhq/parquet2json/internal/rowwindow"
)

// prefetchConcurrency bounds concurrent column-chunk fetches within one row
// group. Chunk reads are independent; assembly order is fixed afterwards.
const prefetchConcurrency = 4

// DecodeError is fatal: a row group failed to decode. Rows already handed to
// the consumer cannot be retracted, which is why metadata and selection are
// validated before any row is emitted.
type DecodeError struct {
	RowGroup int
	Column   string
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding row group %d column %q: %v", e.RowGroup, e.Column, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Field is one decoded output value, tagged with explicit nullness. Whether
// null fields appear in the emitted line is the emitter's concern.
type Field struct {
	Name  string
	Value any
	Null  bool
}

// Row is one row's fields in the resolved selection order.
type Row []Field

// Reader streams rows for one invocation. Not restartable: one logical run.
type Reader struct {
	file *metadata.File
	cols []projection.Column
	plan []rowwindow.GroupSlice
}

// New assembles a reader over the planned row groups and resolved columns.
func New(file *metadata.File, cols []projection.Column, plan []rowwindow.GroupSlice) *Reader {
	return &Reader{file: file, cols: cols, plan: plan}
}

// Stream decodes the planned rows in ascending row-group order and hands
// each row to emit. It stops on context cancellation (checked between row
// groups) and on the first emit error, since the consumer is gone.
func (r *Reader) Stream(ctx context.Context, emit func(Row) error) error {
	src := r.file.Source()
	groups := r.file.RowGroups()
	meta := r.file.Metadata()

	for _, g := range r.plan {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.prefetchChunks(ctx, meta, g.Index); err != nil {
			return err
		}
		if err := r.emitGroup(groups[g.Index], g, emit); err != nil {
			return err
		}
		src.DropTransient()
	}
	return nil
}

// prefetchChunks pulls each distinct selected column chunk of the row group
// into the range cache with one range read per chunk, fetching concurrently.
func (r *Reader) prefetchChunks(ctx context.Context, meta *format.FileMetaData, groupIndex int) error {
	type span struct{ off, length int64 }
	seen := make(map[int]struct{}, len(r.cols))
	var spans []span
	for _, col := range r.cols {
		if col.Missing {
			continue
		}
		if _, ok := seen[col.Index]; ok {
			continue
		}
		seen[col.Index] = struct{}{}
		md := meta.RowGroups[groupIndex].Columns[col.Index].MetaData
		off := md.DataPageOffset
		if md.DictionaryPageOffset > 0 && md.DictionaryPageOffset < off {
			off = md.DictionaryPageOffset
		}
		spans = append(spans, span{off: off, length: md.TotalCompressedSize})
	}

	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(prefetchConcurrency)
	src := r.file.Source()
	for _, s := range spans {
		s := s
		eg.Go(func() error {
			return src.Prefetch(gctx, s.off, s.length)
		})
	}
	return eg.Wait()
}

// emitGroup decodes one row group slice and emits its rows. All page and
// value reads here are served from the prefetched chunk cache.
func (r *Reader) emitGroup(rg parquet.RowGroup, g rowwindow.GroupSlice, emit func(Row) error) (err error) {
	chunks := rg.ColumnChunks()

	scanners := make([]*columnScanner, len(r.cols))
	defer func() {
		for _, sc := range scanners {
			if sc != nil {
				if cerr := sc.Close(); cerr != nil && err == nil {
					err = cerr
				}
			}
		}
	}()

	for i, col := range r.cols {
		if col.Missing {
			continue
		}
		scanners[i] = newColumnScanner(chunks[col.Index].Pages())
		if g.Skip > 0 {
			if serr := scanners[i].skipRows(g.Skip); serr != nil {
				return &DecodeError{RowGroup: g.Index, Column: col.Path, Err: serr}
			}
		}
	}

	for rowIdx := int64(0); rowIdx < g.Take; rowIdx++ {
		row := make(Row, len(r.cols))
		for i, col := range r.cols {
			if col.Missing {
				row[i] = Field{Name: col.Path, Null: true}
				continue
			}
			vals, serr := scanners[i].nextRow()
			if serr != nil {
				return &DecodeError{RowGroup: g.Index, Column: col.Path, Err: serr}
			}
			value, null := fieldValue(col, vals)
			row[i] = Field{Name: col.Path, Value: value, Null: null}
		}
		if err := emit(row); err != nil {
			return err
		}
	}
	return nil
}
