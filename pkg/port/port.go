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

// Package port abstracts the byte-level link to a Minitel terminal.
//
// The driver core never touches a serial device directly; it talks to a
// Port, which can be a real 1200 baud 7E1 serial line, a TCP bridge, or a
// scripted mock in tests.
package port

import (
	"fmt"
	"time"

	"go.bug.st/serial"
)

// Port is the byte sink/source a driver instance owns. Reads are
// non-blocking: TryReadByte returns immediately (or after the short link
// read timeout) with ok=false when no byte is pending.
type Port interface {
	Write(p []byte) (int, error)
	TryReadByte() (b byte, ok bool, err error)
	HasInput() bool
	Close() error
}

// Factory creates a port connection. Injecting a factory keeps drivers
// testable without hardware.
type Factory func(path string, mode *serial.Mode) (Port, error)

// Mode returns the STUM M1 link settings: 1200 baud, 7 data bits, even
// parity, one stop bit.
func Mode() *serial.Mode {
	return &serial.Mode{
		BaudRate: 1200,
		DataBits: 7,
		Parity:   serial.EvenParity,
		StopBits: serial.OneStopBit,
	}
}

// DefaultFactory opens a real serial port.
func DefaultFactory(path string, mode *serial.Mode) (Port, error) {
	p, err := serial.Open(path, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port: %w", err)
	}

	// A short timeout makes Read usable as a non-blocking probe. One byte
	// takes ~8.3ms on the wire at 1200 baud, so 1ms never stalls the caller
	// behind a full character time.
	if err := p.SetReadTimeout(time.Millisecond); err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("failed to set read timeout: %w", err)
	}

	return &serialPort{port: p}, nil
}

// Open opens path with the canonical STUM M1 mode.
func Open(path string) (Port, error) {
	return DefaultFactory(path, Mode())
}

// serialPort adapts go.bug.st/serial to the Port interface. The serial
// library has no portable "bytes pending" probe, so HasInput reads ahead
// one byte and stashes it.
type serialPort struct {
	port       serial.Port
	pending    byte
	hasPending bool
}

func (s *serialPort) Write(p []byte) (int, error) {
	n, err := s.port.Write(p)
	if err != nil {
		return n, fmt.Errorf("serial write: %w", err)
	}
	return n, nil
}

func (s *serialPort) TryReadByte() (byte, bool, error) {
	if s.hasPending {
		s.hasPending = false
		return s.pending, true, nil
	}

	var buf [1]byte
	n, err := s.port.Read(buf[:])
	if err != nil {
		return 0, false, fmt.Errorf("serial read: %w", err)
	}
	if n == 0 {
		return 0, false, nil
	}
	return buf[0], true, nil
}

func (s *serialPort) HasInput() bool {
	if s.hasPending {
		return true
	}
	b, ok, err := s.TryReadByte()
	if err != nil || !ok {
		return false
	}
	s.pending = b
	s.hasPending = true
	return true
}

func (s *serialPort) Close() error {
	if err := s.port.Close(); err != nil {
		return fmt.Errorf("serial close: %w", err)
	}
	return nil
}
