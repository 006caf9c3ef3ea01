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
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cardinalhq/parquet2json/config"
	"github.com/cardinalhq/parquet2json/internal/metadata"
	"github.com/cardinalhq/parquet2json/internal/projection"
	"github.com/cardinalhq/parquet2json/internal/source"
	"github.com/cardinalhq/parquet2json/internal/streamread"
)

// Exit codes, one per fatal error category. Stable; documented in README.md.
const (
	exitOK              = 0
	exitGeneric         = 1
	exitSourceError     = 2
	exitMalformedFooter = 3
	exitUnknownColumn   = 4
	exitTransientIO     = 5
	exitDecodeError     = 6
)

var cfg *config.Config

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "parquet2json",
	Short: "Stream Parquet as newline-delimited JSON",
	Long: `Stream rows of a Parquet file as one JSON object per line, reading the
source from a local path, an http(s):// URL, or an s3://bucket/key URL
without downloading the whole file.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(c *cobra.Command, _ []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("loading configuration: %w", err)
		}
		if c.Flags().Changed("timeout") {
			timeout, ferr := c.Flags().GetInt("timeout")
			if ferr != nil {
				return ferr
			}
			cfg.TimeoutSeconds = timeout
		}

		level := slog.LevelWarn
		if verbose, _ := c.Flags().GetBool("verbose"); verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().Int("timeout", 60, "per-range-read timeout in seconds")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable debug logging to stderr")
}

// Execute runs the root command and exits with the code for the error
// category, so callers can distinguish a malformed file from, say, a
// timeout, without parsing stderr.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "parquet2json: %v\n", err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	var (
		sourceErr    *source.SourceError
		footerErr    *metadata.MalformedFooterError
		columnErr    *projection.UnknownColumnError
		transientErr *source.TransientIOError
		decodeErr    *streamread.DecodeError
	)
	switch {
	case errors.As(err, &footerErr):
		return exitMalformedFooter
	case errors.As(err, &columnErr):
		return exitUnknownColumn
	case errors.As(err, &transientErr):
		return exitTransientIO
	case errors.As(err, &decodeErr):
		return exitDecodeError
	case errors.As(err, &sourceErr):
		return exitSourceError
	default:
		return exitGeneric
	}
}

// openFile parses the location, opens the range source, and fetches the
// footer. Every subcommand starts here; none of them read any row-group
// bytes unless they go on to stream rows.
func openFile(ctx context.Context, raw string) (*metadata.File, source.RangeReader, error) {
	loc, err := source.ParseLocation(raw)
	if err != nil {
		return nil, nil, err
	}

	src, err := source.Open(ctx, loc, source.Config{
		Timeout:     time.Duration(cfg.TimeoutSeconds) * time.Second,
		S3Region:    cfg.S3.Region,
		S3Endpoint:  cfg.S3.Endpoint,
		S3PathStyle: cfg.S3.PathStyle,
	})
	if err != nil {
		return nil, nil, err
	}

	file, err := metadata.Fetch(src, loc)
	if err != nil {
		_ = src.Close()
		return nil, nil, err
	}
	return file, src, nil
}
