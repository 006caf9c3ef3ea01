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
	"sync"
)

// CachingReader layers a segment cache over a RangeReader. Reads that fall
// entirely inside a cached segment are served from memory; everything else
// delegates to the underlying reader. This is what turns the parquet
// decoder's many small footer and page reads into a handful of backend round
// trips: the footer and each selected column chunk are fetched once as whole
// ranges and decoded from the cache.
//
// Pinned segments (the footer) live for the reader's lifetime. Transient
// segments (column chunks) are dropped after each row group, bounding memory
// to one row group's selected chunks.
type CachingReader struct {
	r RangeReader

	mu        sync.Mutex
	pinned    []segment
	transient []segment
}

type segment struct {
	off  int64
	data []byte
}

func (s segment) contains(off int64, n int) bool {
	return off >= s.off && off+int64(n) <= s.off+int64(len(s.data))
}

// NewCachingReader wraps r with an empty cache.
func NewCachingReader(r RangeReader) *CachingReader {
	return &CachingReader{r: r}
}

// Pin adds a segment that is kept for the reader's lifetime.
func (c *CachingReader) Pin(off int64, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pinned = append(c.pinned, segment{off: off, data: data})
}

// Prefetch fetches [off, off+n) from the underlying reader in one round trip
// and caches it as a transient segment. The context gates the fetch:
// cancellation before the read starts skips it entirely.
func (c *CachingReader) Prefetch(ctx context.Context, off, n int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if n <= 0 {
		return nil
	}
	buf := make([]byte, n)
	if _, err := c.r.ReadAt(buf, off); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.transient = append(c.transient, segment{off: off, data: buf})
	return nil
}

// DropTransient releases all transient segments.
func (c *CachingReader) DropTransient() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.transient = nil
}

func (c *CachingReader) ReadAt(p []byte, off int64) (int, error) {
	c.mu.Lock()
	for _, s := range c.transient {
		if s.contains(off, len(p)) {
			n := copy(p, s.data[off-s.off:])
			c.mu.Unlock()
			return n, nil
		}
	}
	for _, s := range c.pinned {
		if s.contains(off, len(p)) {
			n := copy(p, s.data[off-s.off:])
			c.mu.Unlock()
			return n, nil
		}
	}
	c.mu.Unlock()
	return c.r.ReadAt(p, off)
}

func (c *CachingReader) Size() int64 { return c.r.Size() }

func (c *CachingReader) BytesFetched() int64 { return c.r.BytesFetched() }

func (c *CachingReader) Close() error { return c.r.Close() }
