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

package metadata

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"testing"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardinalhq/parquet2json/internal/source"
)

// memSource is an in-memory source.RangeReader recording every read span, so
// tests can assert which byte ranges the footer fetch actually touched.
type memSource struct {
	data    []byte
	fetched int64
	spans   [][2]int64
}

func (m *memSource) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off+int64(len(p)) > int64(len(m.data)) {
		return 0, &source.SourceError{Location: "mem", Err: fmt.Errorf("range [%d,+%d) out of bounds", off, len(p))}
	}
	m.spans = append(m.spans, [2]int64{off, int64(len(p))})
	m.fetched += int64(len(p))
	return copy(p, m.data[off:]), nil
}

func (m *memSource) Size() int64         { return int64(len(m.data)) }
func (m *memSource) BytesFetched() int64 { return m.fetched }
func (m *memSource) Close() error        { return nil }

type fetchRecord struct {
	ID   int64  `parquet:"id"`
	Name string `parquet:"name"`
}

func buildParquet(t *testing.T, rows int, rowsPerGroup int64) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := parquet.NewGenericWriter[fetchRecord](&buf, parquet.MaxRowsPerRowGroup(rowsPerGroup))
	for i := 0; i < rows; i++ {
		_, err := w.Write([]fetchRecord{{ID: int64(i), Name: fmt.Sprintf("row-%d", i)}})
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func testLocation(raw string) source.Location {
	return source.Location{Kind: source.KindLocal, Raw: raw, Path: raw}
}

func TestFetch(t *testing.T) {
	src := &memSource{data: buildParquet(t, 6, 2)}

	f, err := Fetch(src, testLocation("fixture.parquet"))
	require.NoError(t, err)

	assert.Equal(t, int64(6), f.NumRows())
	assert.Equal(t, []int64{2, 2, 2}, f.RowGroupRowCounts())
	assert.Len(t, f.RowGroups(), 3)
	require.NotNil(t, f.Schema())
	assert.Len(t, f.Schema().Columns(), 2)

	md := f.Metadata()
	require.NotNil(t, md)
	require.Len(t, md.RowGroups, 3)
	for _, rg := range md.RowGroups {
		require.Len(t, rg.Columns, 2)
		for _, cc := range rg.Columns {
			assert.Greater(t, cc.MetaData.TotalCompressedSize, int64(0))
		}
	}
}

func TestFetchReadsOnlyFooterRegion(t *testing.T) {
	data := buildParquet(t, 6, 2)
	src := &memSource{data: data}

	f, err := Fetch(src, testLocation("fixture.parquet"))
	require.NoError(t, err)

	size := int64(len(data))
	trailer := data[size-trailerSize:]
	footerLen := int64(binary.LittleEndian.Uint32(trailer[:4]))
	footerOff := size - trailerSize - footerLen

	// Every backend read must be the leading magic or within the footer
	// region; no row-group chunk bytes are touched by a footer fetch.
	for _, span := range src.spans {
		start, length := span[0], span[1]
		inMagic := start == 0 && length <= 4
		inFooter := start >= footerOff
		assert.True(t, inMagic || inFooter, "unexpected read span [%d,+%d)", start, length)
	}

	// Trailer, footer, leading magic. Nothing else.
	assert.Equal(t, trailerSize+footerLen+4, src.BytesFetched())
	assert.Equal(t, src.BytesFetched(), f.Source().BytesFetched())
}

func TestFetchTooSmall(t *testing.T) {
	src := &memSource{data: []byte("PAR1")}

	_, err := Fetch(src, testLocation("tiny"))
	var mfe *MalformedFooterError
	require.ErrorAs(t, err, &mfe)
	assert.Equal(t, int64(0), src.BytesFetched())
}

func TestFetchBadMagic(t *testing.T) {
	data := buildParquet(t, 2, 2)
	copy(data[len(data)-4:], "XXXX")
	src := &memSource{data: data}

	_, err := Fetch(src, testLocation("corrupt.parquet"))
	var mfe *MalformedFooterError
	require.ErrorAs(t, err, &mfe)
	assert.Contains(t, err.Error(), "magic")
}

func TestFetchFooterLengthExceedsFile(t *testing.T) {
	data := buildParquet(t, 2, 2)
	binary.LittleEndian.PutUint32(data[len(data)-8:], uint32(len(data)))
	src := &memSource{data: data}

	_, err := Fetch(src, testLocation("corrupt.parquet"))
	var mfe *MalformedFooterError
	require.ErrorAs(t, err, &mfe)
	assert.Contains(t, err.Error(), "footer length")
}

func TestFetchGarbageFooter(t *testing.T) {
	// Right size, right magic, but the footer bytes are not thrift.
	data := make([]byte, 64)
	copy(data, "PAR1")
	binary.LittleEndian.PutUint32(data[len(data)-8:], 32)
	copy(data[len(data)-4:], "PAR1")
	src := &memSource{data: data}

	_, err := Fetch(src, testLocation("garbage.parquet"))
	var mfe *MalformedFooterError
	require.ErrorAs(t, err, &mfe)
}
