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

// Package rowwindow converts a raw offset/limit row selection into a
// concrete row window and the subset of row groups that intersect it. Row
// groups outside the window are never fetched; that skip is the core
// cost-saving property of the whole design.
package rowwindow

// Window is the resolved half-open row range over the file's total rows.
type Window struct {
	Start int64
	End   int64 // exclusive
}

// Empty reports whether the window selects no rows.
func (w Window) Empty() bool { return w.Start >= w.End }

// GroupSlice names a row group intersecting the window: skip rows at the
// front of the group, then take rows.
type GroupSlice struct {
	Index int
	Skip  int64
	Take  int64
}

// Plan resolves offset/limit against the per-row-group row counts.
//
// Offset semantics: non-negative is an absolute 0-based starting row;
// negative -k means total-k, clamped to 0 (never wraps past the start).
// An offset at or past the end yields an empty window, not an error.
//
// Limit semantics: negative means no cap, zero means emit nothing and skip
// all row-group I/O.
func Plan(groupRows []int64, offset, limit int64) (Window, []GroupSlice) {
	var total int64
	for _, n := range groupRows {
		total += n
	}

	start := offset
	if start < 0 {
		start = total + start
		if start < 0 {
			start = 0
		}
	}
	if start > total {
		start = total
	}

	// limit < total-start guarantees start+limit cannot wrap: start is
	// already clamped to [0, total].
	end := total
	if limit >= 0 && limit < total-start {
		end = start + limit
	}

	w := Window{Start: start, End: end}
	if w.Empty() {
		return w, nil
	}

	var slices []GroupSlice
	var first int64 // first row index of the current group
	for i, n := range groupRows {
		groupEnd := first + n
		if groupEnd > w.Start && first < w.End {
			skip := w.Start - first
			if skip < 0 {
				skip = 0
			}
			take := min(groupEnd, w.End) - (first + skip)
			slices = append(slices, GroupSlice{Index: i, Skip: skip, Take: take})
		}
		first = groupEnd
		if first >= w.End {
			break
		}
	}
	return w, slices
}
