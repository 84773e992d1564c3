// Minitel Core
// Copyright (c) 2026 The Minitel Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Minitel Core.
//
// Minitel Core is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Minitel Core is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Minitel Core.  If not, see <http://www.gnu.org/licenses/>.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	t.Parallel()

	vals, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)

	assert.Equal(t, BaseDefaults, vals)
	assert.Equal(t, 1200, vals.BaudRate)
	assert.Equal(t, 32, vals.FIFOCapacity)
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "cfg.toml")
	content := "device = \"/dev/ttyUSB0\"\ndebug_trace = true\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	vals, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/dev/ttyUSB0", vals.Device)
	assert.True(t, vals.DebugTrace)
	assert.Equal(t, 1200, vals.BaudRate)
	assert.Equal(t, 1000, vals.DefaultTimeoutMS)
}

func TestLoadRejectsInvalidBaudRate(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "cfg.toml")
	require.NoError(t, os.WriteFile(path, []byte("baud_rate = 300\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestLoadRejectsFIFOOutOfRange(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "cfg.toml")
	require.NoError(t, os.WriteFile(path, []byte("fifo_capacity = 4\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadRejectsMalformedTOML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "cfg.toml")
	require.NoError(t, os.WriteFile(path, []byte("device = [broken\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "cfg.toml")

	vals := BaseDefaults
	vals.Device = "/dev/ttyAMA0"
	vals.BaudRate = 4800
	vals.FIFOCapacity = 64
	vals.DebugTrace = true

	require.NoError(t, Save(path, vals))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, vals, got)
}

func TestSaveRejectsInvalidValues(t *testing.T) {
	t.Parallel()

	vals := BaseDefaults
	vals.BaudRate = 75

	err := Save(filepath.Join(t.TempDir(), "cfg.toml"), vals)
	require.Error(t, err)
}
