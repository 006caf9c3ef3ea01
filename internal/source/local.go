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
	"os"
	"sync/atomic"
)

// localReader serves range reads with plain seek+read against an open file.
type localReader struct {
	loc     Location
	ctx     context.Context
	f       *os.File
	size    int64
	fetched atomic.Int64
}

func openLocal(ctx context.Context, loc Location) (RangeReader, error) {
	f, err := os.Open(loc.Path)
	if err != nil {
		return nil, &SourceError{Location: loc.Raw, Err: err}
	}
	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, &SourceError{Location: loc.Raw, Err: err}
	}
	if fi.IsDir() {
		_ = f.Close()
		return nil, &SourceError{Location: loc.Raw, Err: fmt.Errorf("%s is a directory", loc.Path)}
	}
	return &localReader{loc: loc, ctx: ctx, f: f, size: fi.Size()}, nil
}

func (r *localReader) ReadAt(p []byte, off int64) (int, error) {
	if err := checkRange(r.loc, off, len(p), r.size); err != nil {
		return 0, err
	}
	n, err := r.f.ReadAt(p, off)
	if err != nil {
		recordReadError(r.ctx, r.loc.Kind.String())
		return n, &SourceError{Location: r.loc.Raw, Err: err}
	}
	r.fetched.Add(int64(n))
	recordRead(r.ctx, r.loc.Kind.String(), int64(n))
	return n, nil
}

func (r *localReader) Size() int64 { return r.size }

func (r *localReader) BytesFetched() int64 { return r.fetched.Load() }

func (r *localReader) Close() error { return r.f.Close() }
