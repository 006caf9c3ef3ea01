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
	"errors"
	"net/url"
	"strings"
)

// Kind identifies the backend a Location resolves to. The set is closed:
// there is no runtime registration of additional backends.
type Kind int

const (
	KindLocal Kind = iota
	KindHTTP
	KindS3
)

func (k Kind) String() string {
	switch k {
	case KindLocal:
		return "file"
	case KindHTTP:
		return "http"
	case KindS3:
		return "s3"
	default:
		return "unknown"
	}
}

// Location is the parsed form of the FILE argument. It is immutable once
// constructed and owned by the invocation for its entire lifetime.
type Location struct {
	Kind Kind
	Raw  string

	// KindLocal
	Path string

	// KindHTTP
	URL string

	// KindS3
	Bucket string
	Key    string
}

// ParseLocation classifies a raw CLI input as a local path, an http(s) URL,
// or an s3://bucket/key URL. Anything without a recognized scheme is treated
// as a local path.
func ParseLocation(raw string) (Location, error) {
	switch {
	case strings.HasPrefix(raw, "http://"), strings.HasPrefix(raw, "https://"):
		u, err := url.Parse(raw)
		if err != nil {
			return Location{}, &SourceError{Location: raw, Err: err}
		}
		if u.Host == "" {
			return Location{}, &SourceError{Location: raw, Err: errors.New("missing host in URL")}
		}
		return Location{Kind: KindHTTP, Raw: raw, URL: raw}, nil

	case strings.HasPrefix(raw, "s3://"):
		rest := strings.TrimPrefix(raw, "s3://")
		bucket, key, ok := strings.Cut(rest, "/")
		if !ok || bucket == "" || key == "" {
			return Location{}, &SourceError{Location: raw, Err: errors.New("s3 URL must be s3://bucket/key")}
		}
		return Location{Kind: KindS3, Raw: raw, Bucket: bucket, Key: key}, nil

	default:
		if raw == "" {
			return Location{}, &SourceError{Location: raw, Err: errors.New("empty location")}
		}
		return Location{Kind: KindLocal, Raw: raw, Path: raw}, nil
	}
}
