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

// Package minitel drives a French Minitel 1 videotex terminal over the
// STUM M1 protocol: a 1200 baud, 7-bit, even-parity serial link.
//
// A Driver owns one port.Port and is single-threaded and cooperative: the
// application calls Poll regularly to drain incoming bytes into a typed
// event FIFO and to tick the transaction engine. The blocking helpers
// (WaitEvent, ReadChar, ReadLine) are plain loops over Poll. The driver is
// not internally synchronised; wrap it yourself if you must share it.
package minitel

import (
	"errors"
	"time"

	"github.com/MinitelProject/minitel-core/pkg/port"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// Sentinel errors returned by the driver.
var (
	ErrTransactionActive = errors.New("a transaction is already active")
	ErrPortClosed        = errors.New("port is closed")
)

// SessionState tracks the PT-line session with the terminal.
type SessionState uint8

const (
	SessionClosed SessionState = iota
	SessionOpening
	SessionOpen
	SessionClosing
)

func (s SessionState) String() string {
	switch s {
	case SessionClosed:
		return "closed"
	case SessionOpening:
		return "opening"
	case SessionOpen:
		return "open"
	case SessionClosing:
		return "closing"
	default:
		return "unknown"
	}
}

// SessionLine is the optional PT/TP GPIO collaborator. The driver never
// touches pins itself; a host that wires the handshake lines implements
// this and the driver drives the session state machine through it.
type SessionLine interface {
	// SetPT asserts (true) or releases (false) the PT line.
	SetPT(active bool)
	// TerminalOn reports whether the TP line senses terminal power.
	TerminalOn() bool
}

type charSet uint8

const (
	setG0 charSet = iota
	setG1
)

// pollInterval paces the blocking helpers. One byte takes ~8.3ms on the
// wire at 1200 baud, so a 1ms sleep cannot miss input.
const pollInterval = time.Millisecond

// Driver is one Minitel terminal connection. Create it with New.
type Driver struct {
	port  port.Port
	clock clockwork.Clock
	line  SessionLine

	fifo eventFIFO

	// Parser state.
	waitingSepSecond bool
	escState         escState
	escBuf           [3]byte
	escLen           uint8

	// Transmit state.
	currentSet charSet

	// Single pending transaction.
	tx          transaction
	lastOutcome Outcome

	session SessionState

	trace bool
}

// Option configures a Driver at construction time.
type Option func(*Driver)

// WithClock injects a clock; tests pass a clockwork fake.
func WithClock(c clockwork.Clock) Option {
	return func(d *Driver) { d.clock = c }
}

// WithFIFOCapacity sizes the event ring. Values outside 16..64 are clamped.
func WithFIFOCapacity(n int) Option {
	return func(d *Driver) { d.fifo = newEventFIFO(n) }
}

// WithSessionLine attaches the PT/TP handshake collaborator.
func WithSessionLine(l SessionLine) Option {
	return func(d *Driver) { d.line = l }
}

// WithTrace enables byte-level RX/TX debug logging.
func WithTrace(enabled bool) Option {
	return func(d *Driver) { d.trace = enabled }
}

// New wraps an open port in a driver. The port is owned by the driver
// from here on.
func New(p port.Port, opts ...Option) *Driver {
	d := &Driver{
		port:       p,
		clock:      clockwork.NewRealClock(),
		fifo:       newEventFIFO(DefaultFIFOCapacity),
		currentSet: setG0,
		session:    SessionClosed,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Close releases the underlying port.
func (d *Driver) Close() error {
	return d.port.Close()
}

// Poll drains pending input bytes through the parser and ticks the
// transaction deadline. Non-blocking; call it often.
func (d *Driver) Poll() {
	for d.port.HasInput() {
		b, ok, err := d.port.TryReadByte()
		if err != nil {
			log.Error().Err(err).Msg("failed to read from port")
			break
		}
		if !ok {
			break
		}
		d.parseByte(b)
	}

	d.checkTransactionTimeout()
}

// EventAvailable reports whether ReadEvent would succeed.
func (d *Driver) EventAvailable() bool {
	return !d.fifo.isEmpty()
}

// ReadEvent pops the next parsed event, if any.
func (d *Driver) ReadEvent() (Event, bool) {
	return d.fifo.pop()
}

// WaitEvent blocks until an event arrives or timeout expires. A zero
// timeout waits forever. On expiry it returns a synthetic timeout event
// and false.
func (d *Driver) WaitEvent(timeout time.Duration) (Event, bool) {
	start := d.clock.Now()

	for {
		d.Poll()

		if ev, ok := d.fifo.pop(); ok {
			return ev, true
		}

		if timeout > 0 && d.clock.Since(start) > timeout {
			return Event{Type: EventTimeout}, false
		}

		d.clock.Sleep(pollInterval)
	}
}

// ReadChar blocks until a character event arrives or timeout expires.
// Non-character events are discarded.
func (d *Driver) ReadChar(timeout time.Duration) (byte, bool) {
	for {
		ev, ok := d.WaitEvent(timeout)
		if !ok {
			return 0, false
		}
		if ev.Type == EventChar {
			return ev.Code, true
		}
	}
}

type lineOptions struct {
	stopOnEnvoi bool
	echo        bool
}

// LineOption adjusts ReadLine behaviour.
type LineOption func(*lineOptions)

// WithoutEnvoi disables termination on the ENVOI key (SEP 4/1).
func WithoutEnvoi() LineOption {
	return func(o *lineOptions) { o.stopOnEnvoi = false }
}

// WithEcho echoes typed characters back to the terminal.
func WithEcho() LineOption {
	return func(o *lineOptions) { o.echo = true }
}

// ReadLine collects characters until CR/LF or the ENVOI key, up to max
// runes. On timeout it returns whatever was accumulated with ok=false. A
// max of zero or less fails immediately. A zero timeout waits forever.
func (d *Driver) ReadLine(max int, timeout time.Duration, opts ...LineOption) (string, bool) {
	o := lineOptions{stopOnEnvoi: true}
	for _, opt := range opts {
		opt(&o)
	}

	if max <= 0 {
		return "", false
	}

	start := d.clock.Now()
	buf := make([]byte, 0, max)

	for {
		if timeout > 0 && d.clock.Since(start) > timeout {
			return string(buf), false
		}

		// A short inner wait keeps the outer deadline responsive.
		ev, ok := d.WaitEvent(100 * time.Millisecond)
		if !ok {
			continue
		}

		switch ev.Type {
		case EventChar:
			switch {
			case ev.Code == codeCR || ev.Code == codeLF:
				if o.echo {
					d.Println("")
				}
				return string(buf), true
			case ev.Code == codeBS:
				if len(buf) > 0 {
					buf = buf[:len(buf)-1]
					if o.echo {
						_, _ = d.Write([]byte{codeBS, ' ', codeBS})
					}
				}
			case len(buf) < max && ev.Code >= 0x20 && ev.Code <= 0x7E:
				buf = append(buf, ev.Code)
				if o.echo {
					d.PutChar(ev.Code)
				}
			}
		case EventSep:
			if o.stopOnEnvoi && ev.Code == SepSend {
				if o.echo {
					d.Println("")
				}
				return string(buf), true
			}
		case EventEscSeq, EventControl, EventTimeout:
			// Ignored by the line reader.
		}
	}
}

// StartSession asserts PT (when a line is wired) and moves the session to
// Opening. The terminal confirms with SEP 5/4.
func (d *Driver) StartSession() {
	if d.line != nil {
		d.line.SetPT(true)
	}
	d.session = SessionOpening
	log.Debug().Msg("minitel: session opening")
}

// EndSession releases PT (when a line is wired) and moves the session to
// Closing. The terminal confirms with SEP 5/4.
func (d *Driver) EndSession() {
	if d.line != nil {
		d.line.SetPT(false)
	}
	d.session = SessionClosing
	log.Debug().Msg("minitel: session closing")
}

// SessionState returns the current session state.
func (d *Driver) SessionState() SessionState {
	return d.session
}

// TerminalOn reports TP-line power sense, or true when no line is wired.
func (d *Driver) TerminalOn() bool {
	if d.line == nil {
		return true
	}
	return d.line.TerminalOn()
}
