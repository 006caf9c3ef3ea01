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
		Use:   "rowcount FILE",
		Short: "Print the total row count of a Parquet file",
		Long:  `Prints the total row count from the file footer. No row-group content is ever fetched.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return runRowcount(c.Context(), args[0])
		},
	}

	rootCmd.AddCommand(cmd)
}

func runRowcount(ctx context.Context, location string) error {
	file, src, err := openFile(ctx, location)
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()

	fmt.Println(file.NumRows())
	return nil
}
