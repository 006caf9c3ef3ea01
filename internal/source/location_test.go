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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLocation(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    Location
		wantErr bool
	}{
		{
			name: "local path",
			raw:  "/data/file.parquet",
			want: Location{Kind: KindLocal, Raw: "/data/file.parquet", Path: "/data/file.parquet"},
		},
		{
			name: "relative local path",
			raw:  "file.parquet",
			want: Location{Kind: KindLocal, Raw: "file.parquet", Path: "file.parquet"},
		},
		{
			name: "http URL",
			raw:  "http://example.com/file.parquet",
			want: Location{Kind: KindHTTP, Raw: "http://example.com/file.parquet", URL: "http://example.com/file.parquet"},
		},
		{
			name: "https URL",
			raw:  "https://example.com/a/b.parquet",
			want: Location{Kind: KindHTTP, Raw: "https://example.com/a/b.parquet", URL: "https://example.com/a/b.parquet"},
		},
		{
			name: "s3 URL",
			raw:  "s3://bucket/path/to/key.parquet",
			want: Location{Kind: KindS3, Raw: "s3://bucket/path/to/key.parquet", Bucket: "bucket", Key: "path/to/key.parquet"},
		},
		{
			name:    "s3 URL without key",
			raw:     "s3://bucket",
			wantErr: true,
		},
		{
			name:    "s3 URL with empty key",
			raw:     "s3://bucket/",
			wantErr: true,
		},
		{
			name:    "http URL without host",
			raw:     "http:///file.parquet",
			wantErr: true,
		},
		{
			name:    "empty",
			raw:     "",
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			loc, err := ParseLocation(tc.raw)
			if tc.wantErr {
				require.Error(t, err)
				var se *SourceError
				require.ErrorAs(t, err, &se)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, loc)
		})
	}
}

func TestKindString(t *testing.T) {
	require.Equal(t, "file", KindLocal.String())
	require.Equal(t, "http", KindHTTP.String())
	require.Equal(t, "s3", KindS3.String())
}
