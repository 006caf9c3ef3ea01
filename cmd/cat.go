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

package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cardinalhq/parquet2json/internal/jsonline"
	"github.com/cardinalhq/parquet2json/internal/projection"
	"github.com/cardinalhq/parquet2json/internal/rowwindow"
	"github.com/cardinalhq/parquet2json/internal/streamread"
)

func init() {
	cmd := &cobra.Command{
		Use:   "cat FILE",
		Short: "Output parquet rows as JSON lines",
		Long: `Reads the selected rows and columns of a parquet file and writes one
JSON object per line to standard output. Only the row groups and column
chunks the selection needs are fetched from the source.`,
		Args: cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			offset, err := c.Flags().GetInt64("offset")
			if err != nil {
				return err
			}
			limit, err := c.Flags().GetInt64("limit")
			if err != nil {
				return err
			}
			columns, err := c.Flags().GetString("columns")
			if err != nil {
				return err
			}
			nulls, err := c.Flags().GetBool("nulls")
			if err != nil {
				return err
			}
			return runCat(c.Context(), args[0], offset, limit, columns, nulls)
		},
	}

	cmd.Flags().Int64P("offset", "o", 0, "first row to output (negative counts back from the last row)")
	cmd.Flags().Int64P("limit", "l", -1, "maximum number of rows to output (negative for unlimited)")
	cmd.Flags().StringP("columns", "c", "", "comma-separated column names; prefix a name with ? to tolerate its absence")
	cmd.Flags().BoolP("nulls", "n", false, "include null fields in the output instead of omitting them")

	rootCmd.AddCommand(cmd)
}

func runCat(ctx context.Context, location string, offset, limit int64, columns string, nulls bool) error {
	file, src, err := openFile(ctx, location)
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()

	// Selection and window planning are pure computation over the footer;
	// both must succeed before any row-group byte is fetched.
	cols, err := projection.Resolve(file.Schema(), projection.ParseSelection(columns))
	if err != nil {
		return err
	}

	window, plan := rowwindow.Plan(file.RowGroupRowCounts(), offset, limit)
	if window.Empty() {
		return nil
	}

	emitter := jsonline.New(os.Stdout, nulls)
	reader := streamread.New(file, cols, plan)

	if err := reader.Stream(ctx, emitter.Emit); err != nil {
		// The consumer going away (head, broken pipe) is a normal way
		// for a stream to end, not a failure.
		if errors.Is(err, syscall.EPIPE) {
			return nil
		}
		// Flush whatever was already valid before the failure.
		_ = emitter.Flush()
		return err
	}
	if err := emitter.Flush(); err != nil {
		if errors.Is(err, syscall.EPIPE) {
			return nil
		}
		return fmt.Errorf("writing output: %w", err)
	}

	slog.Debug("cat complete",
		slog.Int64("rows", window.End-window.Start),
		slog.Int64("bytesFetched", src.BytesFetched()),
		slog.Int64("sourceSize", src.Size()))
	return nil
}
