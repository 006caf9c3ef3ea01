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
	"github.com/parquet-go/parquet-go"

	"github.com/cardinalhq/parquet2json/internal/projection"
)

// fieldValue collapses one row's values for a column into a Go value plus an
// explicit null flag. Repeated columns become a slice; a repeated column
// whose only value is null (the list itself absent) is null.
func fieldValue(col projection.Column, vals []parquet.Value) (any, bool) {
	if col.Missing || len(vals) == 0 {
		return nil, true
	}

	if col.MaxRepetitionLevel > 0 {
		out := make([]any, 0, len(vals))
		for _, v := range vals {
			if v.IsNull() {
				continue
			}
			out = append(out, convertValue(col, v))
		}
		if len(out) == 0 && vals[0].IsNull() {
			return nil, true
		}
		return out, false
	}

	v := vals[0]
	if v.IsNull() {
		return nil, true
	}
	return convertValue(col, v), false
}

// convertValue maps a parquet value to the Go value the JSON emitter will
// serialize. Byte arrays with a string-shaped logical type (UTF8, JSON,
// enum) become strings; raw byte arrays stay []byte, which encoding/json
// renders as base64.
func convertValue(col projection.Column, v parquet.Value) any {
	switch v.Kind() {
	case parquet.Boolean:
		return v.Boolean()
	case parquet.Int32:
		return v.Int32()
	case parquet.Int64:
		return v.Int64()
	case parquet.Float:
		return v.Float()
	case parquet.Double:
		return v.Double()
	case parquet.ByteArray, parquet.FixedLenByteArray:
		if lt := col.Node.Type().LogicalType(); lt != nil {
			if lt.UTF8 != nil || lt.Json != nil || lt.Enum != nil {
				return v.String()
			}
		}
		data := v.ByteArray()
		return append([]byte(nil), data...)
	default:
		// Int96 and anything unexpected render through the decoder's
		// own formatting.
		return v.String()
	}
}
