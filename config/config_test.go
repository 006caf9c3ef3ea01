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

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 60, cfg.TimeoutSeconds)
	assert.Empty(t, cfg.S3.Region)
	assert.Empty(t, cfg.S3.Endpoint)
	assert.False(t, cfg.S3.PathStyle)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PARQUET2JSON_TIMEOUT", "15")
	t.Setenv("PARQUET2JSON_S3_REGION", "eu-west-1")
	t.Setenv("PARQUET2JSON_S3_ENDPOINT", "http://localhost:9000")
	t.Setenv("PARQUET2JSON_S3_PATH_STYLE", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 15, cfg.TimeoutSeconds)
	assert.Equal(t, "eu-west-1", cfg.S3.Region)
	assert.Equal(t, "http://localhost:9000", cfg.S3.Endpoint)
	assert.True(t, cfg.S3.PathStyle)
}
