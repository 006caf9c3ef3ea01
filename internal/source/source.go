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

// Package source provides range-addressed access to a parquet blob stored on
// the local filesystem, behind an HTTP server that supports Range requests,
// or in S3-compatible object storage. Each ReadAt is a single round trip to
// the backend; the parquet decoder drives which ranges are fetched.
package source

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/cardinalhq/parquet2json/internal/awsclient"
)

// DefaultTimeout bounds each individual range read unless overridden.
const DefaultTimeout = 60 * time.Second

// RangeReader is the uniform contract over a byte-addressable source.
//
// ReadAt must be called with offset+len(p) <= Size(); violating that is a
// programming error and fails as a SourceError rather than short-reading.
// Implementations carry the invocation context captured at Open because
// io.ReaderAt (which the parquet decoder requires) has no context parameter.
type RangeReader interface {
	io.ReaderAt

	// Size reports the total byte length of the source, learned with a
	// single round trip at Open and cached for the reader's lifetime.
	Size() int64

	// BytesFetched reports the running total of bytes served by the
	// backend. Selective reads should fetch far less than Size().
	BytesFetched() int64

	Close() error
}

// Config carries the per-invocation knobs a reader needs at construction.
type Config struct {
	// Timeout bounds each individual range read. Zero means DefaultTimeout.
	Timeout time.Duration

	// S3 overrides, for S3-compatible stores such as MinIO.
	S3Region    string
	S3Endpoint  string
	S3PathStyle bool
}

func (c Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return DefaultTimeout
	}
	return c.Timeout
}

// Open constructs the RangeReader variant for the location. The returned
// reader holds exactly one handle to its backing resource and is not safe to
// use after Close.
func Open(ctx context.Context, loc Location, cfg Config) (RangeReader, error) {
	switch loc.Kind {
	case KindLocal:
		return openLocal(ctx, loc)
	case KindHTTP:
		return openHTTP(ctx, loc, cfg.timeout())
	case KindS3:
		var opts []awsclient.S3Option
		if cfg.S3Region != "" {
			opts = append(opts, awsclient.WithRegion(cfg.S3Region))
		}
		if cfg.S3Endpoint != "" {
			opts = append(opts, awsclient.WithEndpoint(cfg.S3Endpoint))
		}
		if cfg.S3PathStyle {
			opts = append(opts, awsclient.WithPathStyle())
		}
		client, err := awsclient.NewS3(ctx, opts...)
		if err != nil {
			return nil, &SourceError{Location: loc.Raw, Err: err}
		}
		return openS3(ctx, loc, client, cfg.timeout())
	default:
		return nil, &SourceError{Location: loc.Raw, Err: fmt.Errorf("unsupported source kind %d", loc.Kind)}
	}
}

// checkRange enforces the ReadAt bounds invariant shared by all variants.
func checkRange(loc Location, off int64, n int, size int64) error {
	if off < 0 || off+int64(n) > size {
		return &SourceError{
			Location: loc.Raw,
			Err:      fmt.Errorf("range [%d,+%d) out of bounds for size %d", off, n, size),
		}
	}
	return nil
}
