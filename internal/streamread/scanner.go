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

package streamread

import (
	"errors"
	"io"

	"github.com/parquet-go/parquet-go"
)

const scannerBatchSize = 128

// columnScanner walks one column chunk's pages and regroups the flat value
// stream into rows. A value with repetition level zero starts a new row, so
// the scanner keeps a one-value lookahead to detect row boundaries.
type columnScanner struct {
	pages  parquet.Pages
	values parquet.ValueReader
	buf    []parquet.Value
	pos    int
	n      int
	peeked *parquet.Value
	row    []parquet.Value
}

func newColumnScanner(pages parquet.Pages) *columnScanner {
	return &columnScanner{
		pages: pages,
		buf:   make([]parquet.Value, scannerBatchSize),
	}
}

// next returns the next value in the chunk, advancing pages as needed.
// Returns io.EOF when the chunk is exhausted.
func (s *columnScanner) next() (parquet.Value, error) {
	for {
		if s.pos < s.n {
			v := s.buf[s.pos]
			s.pos++
			return v, nil
		}
		if s.values == nil {
			page, err := s.pages.ReadPage()
			if err != nil {
				return parquet.Value{}, err
			}
			s.values = page.Values()
		}
		n, err := s.values.ReadValues(s.buf)
		s.n, s.pos = n, 0
		if n > 0 {
			continue
		}
		if err == nil || errors.Is(err, io.EOF) {
			// page exhausted, move to the next one
			s.values = nil
			continue
		}
		return parquet.Value{}, err
	}
}

// nextRow returns all values belonging to the next row. io.EOF means the
// chunk has no more rows.
func (s *columnScanner) nextRow() ([]parquet.Value, error) {
	s.row = s.row[:0]

	var first parquet.Value
	if s.peeked != nil {
		first = *s.peeked
		s.peeked = nil
	} else {
		v, err := s.next()
		if err != nil {
			return nil, err
		}
		first = v
	}
	s.row = append(s.row, first)

	for {
		v, err := s.next()
		if errors.Is(err, io.EOF) {
			return s.row, nil
		}
		if err != nil {
			return nil, err
		}
		if v.RepetitionLevel() == 0 {
			peek := v
			s.peeked = &peek
			return s.row, nil
		}
		s.row = append(s.row, v)
	}
}

// skipRows discards n rows from the front of the chunk. The chunk bytes are
// already in memory, so the cost is decode only.
func (s *columnScanner) skipRows(n int64) error {
	for i := int64(0); i < n; i++ {
		if _, err := s.nextRow(); err != nil {
			return err
		}
	}
	return nil
}

func (s *columnScanner) Close() error {
	return s.pages.Close()
}
