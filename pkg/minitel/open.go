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

package minitel

import (
	"fmt"

	"github.com/MinitelProject/minitel-core/pkg/config"
	"github.com/MinitelProject/minitel-core/pkg/port"
	"github.com/rs/zerolog/log"
)

// Open connects to the terminal described by a configuration: it opens
// the serial device and builds a driver with the configured FIFO size
// and tracing. Extra options are applied last and win.
func Open(vals config.Values, opts ...Option) (*Driver, error) {
	if err := vals.Validate(); err != nil {
		return nil, err
	}

	mode := port.Mode()
	if vals.BaudRate != 0 {
		mode.BaudRate = vals.BaudRate
	}

	p, err := port.DefaultFactory(vals.Device, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open terminal device %s: %w", vals.Device, err)
	}

	all := make([]Option, 0, len(opts)+2)
	all = append(all,
		WithFIFOCapacity(vals.FIFOCapacity),
		WithTrace(vals.DebugTrace),
	)
	all = append(all, opts...)

	log.Info().
		Str("device", vals.Device).
		Int("baud", mode.BaudRate).
		Msg("minitel: connected")

	return New(p, all...), nil
}
