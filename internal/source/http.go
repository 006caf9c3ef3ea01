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
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

// probeSize is the suffix length requested when opening a remote source. It
// covers the parquet trailer (4-byte footer length + 4-byte magic), so the
// metadata fetch costs no extra round trip beyond the length probe.
const probeSize = 8

// httpReader serves range reads as ranged GETs against a single URL.
type httpReader struct {
	loc     Location
	ctx     context.Context
	client  *http.Client
	timeout time.Duration
	size    int64
	fetched atomic.Int64

	// tail holds the bytes returned by the open probe, served without
	// another round trip when a read falls entirely inside them.
	tail    []byte
	tailOff int64
}

func openHTTP(ctx context.Context, loc Location, timeout time.Duration) (RangeReader, error) {
	r := &httpReader{
		loc:     loc,
		ctx:     ctx,
		client:  &http.Client{},
		timeout: timeout,
	}

	// Suffix-range probe: learns the total length from Content-Range and
	// brings back the parquet trailer in the same round trip.
	body, contentRange, err := r.get(fmt.Sprintf("bytes=-%d", probeSize))
	if err != nil {
		return nil, err
	}
	total, err := parseContentRangeTotal(contentRange)
	if err != nil {
		return nil, &SourceError{Location: loc.Raw, Err: err}
	}
	r.size = total
	r.tail = body
	r.tailOff = total - int64(len(body))
	r.fetched.Add(int64(len(body)))
	recordRead(ctx, loc.Kind.String(), int64(len(body)))
	return r, nil
}

// get issues one ranged GET and returns the full body and Content-Range
// header. A server that ignores the Range header would force a full download,
// which defeats the point of this reader, so a 200 response is rejected.
func (r *httpReader) get(rangeHeader string) ([]byte, string, error) {
	ctx, cancel := context.WithTimeout(r.ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.loc.URL, nil)
	if err != nil {
		return nil, "", &SourceError{Location: r.loc.Raw, Err: err}
	}
	req.Header.Set("Range", rangeHeader)

	start := time.Now()
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, "", &TransientIOError{Backend: r.loc.Kind.String(), Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusOK {
		return nil, "", &SourceError{Location: r.loc.Raw, Err: errors.New("server does not support range requests")}
	}
	if resp.StatusCode != http.StatusPartialContent {
		return nil, "", &SourceError{Location: r.loc.Raw, Err: fmt.Errorf("unexpected status %s for range %q", resp.Status, rangeHeader)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", &TransientIOError{Backend: r.loc.Kind.String(), Err: err}
	}

	slog.Debug("http range read",
		slog.String("range", rangeHeader),
		slog.Int("bytes", len(body)),
		slog.Duration("elapsed", time.Since(start)))

	return body, resp.Header.Get("Content-Range"), nil
}

func (r *httpReader) ReadAt(p []byte, off int64) (int, error) {
	if err := checkRange(r.loc, off, len(p), r.size); err != nil {
		return 0, err
	}
	if len(p) == 0 {
		return 0, nil
	}
	if off >= r.tailOff && off+int64(len(p)) <= r.tailOff+int64(len(r.tail)) {
		return copy(p, r.tail[off-r.tailOff:]), nil
	}

	body, _, err := r.get(fmt.Sprintf("bytes=%d-%d", off, off+int64(len(p))-1))
	if err != nil {
		recordReadError(r.ctx, r.loc.Kind.String())
		var tioe *TransientIOError
		if errors.As(err, &tioe) {
			tioe.Offset = off
			tioe.Length = int64(len(p))
		}
		return 0, err
	}
	if len(body) != len(p) {
		recordReadError(r.ctx, r.loc.Kind.String())
		return 0, &SourceError{
			Location: r.loc.Raw,
			Err:      fmt.Errorf("short range read: asked for %d bytes at %d, got %d", len(p), off, len(body)),
		}
	}
	r.fetched.Add(int64(len(body)))
	recordRead(r.ctx, r.loc.Kind.String(), int64(len(body)))
	return copy(p, body), nil
}

func (r *httpReader) Size() int64 { return r.size }

func (r *httpReader) BytesFetched() int64 { return r.fetched.Load() }

func (r *httpReader) Close() error {
	r.client.CloseIdleConnections()
	return nil
}

// parseContentRangeTotal extracts the total length from a Content-Range
// header of the form "bytes 123-456/789".
func parseContentRangeTotal(header string) (int64, error) {
	rest, ok := strings.CutPrefix(header, "bytes ")
	if !ok {
		return 0, fmt.Errorf("missing or malformed Content-Range header %q", header)
	}
	_, totalStr, ok := strings.Cut(rest, "/")
	if !ok || totalStr == "*" {
		return 0, fmt.Errorf("Content-Range header %q does not carry a total length", header)
	}
	total, err := strconv.ParseInt(totalStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("Content-Range header %q: %w", header, err)
	}
	return total, nil
}
