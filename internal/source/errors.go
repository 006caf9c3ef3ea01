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

import "fmt"

// SourceError is fatal for the whole run: the location is unreachable,
// malformed, rejected the request, or returned fewer bytes than asked for.
// There is no internal retry; a selective parquet read issues a small, known
// number of ranges and a partial range corrupts a row group's decode.
type SourceError struct {
	Location string
	Err      error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("source %s: %v", e.Location, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// TransientIOError covers timeouts and transient network failures on a single
// range read. It is still fatal for the run; the type exists so the CLI can
// report it (and exit) distinctly from a hard source rejection.
type TransientIOError struct {
	Backend string
	Offset  int64
	Length  int64
	Err     error
}

func (e *TransientIOError) Error() string {
	return fmt.Sprintf("%s range read [%d,+%d): %v", e.Backend, e.Offset, e.Length, e.Err)
}

func (e *TransientIOError) Unwrap() error { return e.Err }
