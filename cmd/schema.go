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
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "schema FILE",
		Short: "Print out the schema of a Parquet file",
		Long:  `Prints the parquet schema (field names, types, nesting) from the file footer. No row data is fetched.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return runSchema(c.Context(), args[0])
		},
	}

	rootCmd.AddCommand(cmd)
}

func runSchema(ctx context.Context, location string) error {
	file, src, err := openFile(ctx, location)
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()

	fmt.Println(file.Schema().String())
	return nil
}
