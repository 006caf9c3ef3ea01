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

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	readCount  metric.Int64Counter
	readBytes  metric.Int64Counter
	readErrors metric.Int64Counter
)

func init() {
	meter := otel.Meter("github.com/cardinalhq/parquet2json/internal/source")

	var err error
	readCount, err = meter.Int64Counter(
		"parquet2json.source.read.count",
		metric.WithDescription("Number of range reads issued to a backend"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create read.count counter: %w", err))
	}

	readBytes, err = meter.Int64Counter(
		"parquet2json.source.read.bytes",
		metric.WithDescription("Bytes fetched from a backend by range reads"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create read.bytes counter: %w", err))
	}

	readErrors, err = meter.Int64Counter(
		"parquet2json.source.read.errors",
		metric.WithDescription("Number of failed range reads"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create read.errors counter: %w", err))
	}
}

func recordRead(ctx context.Context, backend string, n int64) {
	attrs := metric.WithAttributes(attribute.String("backend", backend))
	readCount.Add(ctx, 1, attrs)
	readBytes.Add(ctx, n, attrs)
}

func recordReadError(ctx context.Context, backend string) {
	readErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("backend", backend)))
}
