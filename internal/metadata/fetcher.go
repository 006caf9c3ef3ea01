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

// Package metadata fetches and parses a parquet file's footer using the
// minimum number of range reads the format allows: one read for the 8-byte
// trailer (footer length + magic), one read sized exactly to the footer.
// Metadata is all-or-nothing; every downstream component depends on a
// complete row-group directory.
package metadata

import (
	"encoding/binary"
	"fmt"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/format"

	"github.com/cardinalhq/parquet2json/internal/source"
)

const (
	trailerSize = 8
	magic       = "PAR1"

	// minFileSize is leading magic + trailer; anything smaller cannot be
	// a parquet file.
	minFileSize = 4 + trailerSize
)

// MalformedFooterError means the input is not a valid parquet file: the
// magic marker is absent or the encoded footer length exceeds the file
// length. Always fatal.
type MalformedFooterError struct {
	Location string
	Reason   string
}

func (e *MalformedFooterError) Error() string {
	return fmt.Sprintf("%s: not a valid parquet file: %s", e.Location, e.Reason)
}

// File is the parsed footer plus the cached-range reader the row pipeline
// continues to read through. Immutable after Fetch.
type File struct {
	loc    source.Location
	src    *source.CachingReader
	pf     *parquet.File
	footer int64 // byte offset where the footer begins
}

// Fetch validates the trailer, pulls the footer in a single exactly-sized
// range read, and hands the decoder a reader that serves the footer region
// from memory so parsing costs no further round trips.
func Fetch(src source.RangeReader, loc source.Location) (*File, error) {
	size := src.Size()
	if size < minFileSize {
		return nil, &MalformedFooterError{Location: loc.Raw, Reason: fmt.Sprintf("file is only %d bytes", size)}
	}

	trailer := make([]byte, trailerSize)
	if _, err := src.ReadAt(trailer, size-trailerSize); err != nil {
		return nil, err
	}
	if string(trailer[4:]) != magic {
		return nil, &MalformedFooterError{Location: loc.Raw, Reason: "missing PAR1 magic marker"}
	}
	footerLen := int64(binary.LittleEndian.Uint32(trailer[:4]))
	if footerLen+minFileSize > size {
		return nil, &MalformedFooterError{
			Location: loc.Raw,
			Reason:   fmt.Sprintf("footer length %d exceeds file size %d", footerLen, size),
		}
	}

	footerOff := size - trailerSize - footerLen
	footer := make([]byte, footerLen)
	if _, err := src.ReadAt(footer, footerOff); err != nil {
		return nil, err
	}

	cached := source.NewCachingReader(src)
	cached.Pin(footerOff, footer)
	cached.Pin(size-trailerSize, trailer)

	pf, err := parquet.OpenFile(cached, size,
		parquet.SkipPageIndex(true),
		parquet.SkipBloomFilters(true),
	)
	if err != nil {
		return nil, &MalformedFooterError{Location: loc.Raw, Reason: err.Error()}
	}

	return &File{loc: loc, src: cached, pf: pf, footer: footerOff}, nil
}

// Schema returns the file's logical schema.
func (f *File) Schema() *parquet.Schema { return f.pf.Schema() }

// NumRows returns the file's total row count from the footer alone.
func (f *File) NumRows() int64 { return f.pf.NumRows() }

// RowGroups exposes the decoder's row group handles in file order.
func (f *File) RowGroups() []parquet.RowGroup { return f.pf.RowGroups() }

// RowGroupRowCounts returns the per-row-group row counts in file order.
func (f *File) RowGroupRowCounts() []int64 {
	groups := f.pf.RowGroups()
	counts := make([]int64, len(groups))
	for i, rg := range groups {
		counts[i] = rg.NumRows()
	}
	return counts
}

// Metadata returns the raw footer structure, including the byte ranges of
// every column chunk.
func (f *File) Metadata() *format.FileMetaData { return f.pf.Metadata() }

// Source returns the cached-range reader row reads should go through.
func (f *File) Source() *source.CachingReader { return f.src }

// Location returns the location the file was opened from.
func (f *File) Location() source.Location { return f.loc }
