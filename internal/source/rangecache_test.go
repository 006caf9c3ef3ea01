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

package source

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

// memReader is a RangeReader over a byte slice that records every delegated
// read span.
type memReader struct {
	data    []byte
	fetched int64
	spans   [][2]int64
}

func (m *memReader) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off+int64(len(p)) > int64(len(m.data)) {
		return 0, &SourceError{Location: "mem", Err: fmt.Errorf("range [%d,+%d) out of bounds", off, len(p))}
	}
	m.spans = append(m.spans, [2]int64{off, int64(len(p))})
	m.fetched += int64(len(p))
	return copy(p, m.data[off:]), nil
}

func (m *memReader) Size() int64         { return int64(len(m.data)) }
func (m *memReader) BytesFetched() int64 { return m.fetched }
func (m *memReader) Close() error        { return nil }

func TestCachingReaderServesPinnedSegments(t *testing.T) {
	inner := &memReader{data: []byte("0123456789abcdefghij")}
	c := NewCachingReader(inner)
	c.Pin(10, []byte("abcdefghij"))

	buf := make([]byte, 4)
	n, err := c.ReadAt(buf, 12)
	require.NoError(t, err)
	require.Equal(t, 4, n)
	require.Equal(t, "cdef", string(buf))
	require.Empty(t, inner.spans, "cached read must not touch the backend")
}

func TestCachingReaderDelegatesMisses(t *testing.T) {
	inner := &memReader{data: []byte("0123456789abcdefghij")}
	c := NewCachingReader(inner)
	c.Pin(10, []byte("abcdefghij"))

	buf := make([]byte, 4)
	n, err := c.ReadAt(buf, 2)
	require.NoError(t, err)
	require.Equal(t, 4, n)
	require.Equal(t, "2345", string(buf))
	require.Len(t, inner.spans, 1)

	// A read straddling the cached boundary also delegates.
	n, err = c.ReadAt(buf, 8)
	require.NoError(t, err)
	require.Equal(t, 4, n)
	require.Equal(t, "89ab", string(buf))
	require.Len(t, inner.spans, 2)
}

func TestCachingReaderPrefetchAndDrop(t *testing.T) {
	inner := &memReader{data: []byte("0123456789abcdefghij")}
	c := NewCachingReader(inner)

	require.NoError(t, c.Prefetch(context.Background(), 4, 8))
	require.Len(t, inner.spans, 1)
	require.Equal(t, [2]int64{4, 8}, inner.spans[0])

	buf := make([]byte, 8)
	_, err := c.ReadAt(buf, 4)
	require.NoError(t, err)
	require.Equal(t, "456789ab", string(buf))
	require.Len(t, inner.spans, 1, "prefetched read must be served from memory")

	c.DropTransient()
	_, err = c.ReadAt(buf, 4)
	require.NoError(t, err)
	require.Len(t, inner.spans, 2, "dropped segment misses go back to the backend")
}

func TestCachingReaderPrefetchPropagatesErrors(t *testing.T) {
	inner := &memReader{data: []byte("0123")}
	c := NewCachingReader(inner)

	err := c.Prefetch(context.Background(), 0, 100)
	var se *SourceError
	require.ErrorAs(t, err, &se)
}

func TestCachingReaderPrefetchCanceled(t *testing.T) {
	inner := &memReader{data: []byte("0123456789")}
	c := NewCachingReader(inner)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.Prefetch(ctx, 0, 4)
	require.ErrorIs(t, err, context.Canceled)
	require.Empty(t, inner.spans, "a canceled prefetch must not touch the backend")
}

func TestCachingReaderDelegatesAccounting(t *testing.T) {
	inner := &memReader{data: []byte("0123456789")}
	c := NewCachingReader(inner)

	require.Equal(t, int64(10), c.Size())
	require.NoError(t, c.Prefetch(context.Background(), 0, 4))
	require.Equal(t, int64(4), c.BytesFetched())
	require.NoError(t, c.Close())
}
