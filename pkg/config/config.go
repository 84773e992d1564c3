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

// Package config holds the TOML-backed driver settings.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"
)

const SchemaVersion = 1

// Values is the on-disk configuration of one terminal connection. Baud
// rates above 1200 exist only on later terminals (Minitel 2 "turbo");
// they are accepted for forward compatibility.
type Values struct {
	Device           string `toml:"device" validate:"omitempty"`
	BaudRate         int    `toml:"baud_rate" validate:"oneof=1200 4800 9600"`
	FIFOCapacity     int    `toml:"fifo_capacity" validate:"gte=16,lte=64"`
	DefaultTimeoutMS int    `toml:"default_timeout_ms" validate:"gte=0"`
	ConfigSchema     int    `toml:"config_schema"`
	DebugTrace       bool   `toml:"debug_trace"`
}

// BaseDefaults is the configuration used when no file exists.
var BaseDefaults = Values{
	BaudRate:         1200,
	FIFOCapacity:     32,
	DefaultTimeoutMS: 1000,
	ConfigSchema:     SchemaVersion,
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field ranges.
func (v *Values) Validate() error {
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Load reads a TOML config file, applying defaults for absent fields. A
// missing file yields the defaults.
func Load(path string) (Values, error) {
	vals := BaseDefaults

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		log.Debug().Str("path", path).Msg("config: no file, using defaults")
		return vals, nil
	} else if err != nil {
		return vals, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := toml.Unmarshal(data, &vals); err != nil {
		return vals, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := vals.Validate(); err != nil {
		return vals, err
	}

	return vals, nil
}

// Save writes the config as TOML.
func Save(path string, vals Values) error {
	if err := vals.Validate(); err != nil {
		return err
	}

	data, err := toml.Marshal(vals)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
