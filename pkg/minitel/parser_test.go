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
	"testing"

	"github.com/MinitelProject/minitel-core/pkg/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func newTestDriver(input ...byte) (*Driver, *testutils.MockPort) {
	p := testutils.NewMockPort(input...)
	return New(p), p
}

func drainEvents(d *Driver) []Event {
	var evs []Event
	for {
		ev, ok := d.ReadEvent()
		if !ok {
			return evs
		}
		evs = append(evs, ev)
	}
}

func TestParseSepWithParityBits(t *testing.T) {
	t.Parallel()

	// SEP 4/1 (SEND key) with the parity bit set on both bytes.
	d, _ := newTestDriver(0x93, 0xC1)
	d.Poll()

	evs := drainEvents(d)
	require.Len(t, evs, 1)
	assert.Equal(t, EventSep, evs[0].Type)
	assert.Equal(t, byte(0x41), evs[0].Code)
	assert.Equal(t, uint8(4), evs[0].Row)
	assert.Equal(t, uint8(1), evs[0].Col)

	// Parser back to idle.
	assert.False(t, d.waitingSepSecond)
	assert.Equal(t, escIdle, d.escState)
}

func TestParsePro3Echo(t *testing.T) {
	t.Parallel()

	d, _ := newTestDriver(0x1B, 0x3B, 0x61, 0x5F, 0x5F)
	d.Poll()

	evs := drainEvents(d)
	require.Len(t, evs, 1)
	assert.Equal(t, EventEscSeq, evs[0].Type)
	assert.Equal(t, byte(0x3B), evs[0].Code)
	assert.Equal(t, uint8(3), evs[0].EscLen)
	assert.Equal(t, [3]byte{0x61, 0x5F, 0x5F}, evs[0].EscData)

	assert.Equal(t, escIdle, d.escState)
}

func TestParseSingleByteEscSeq(t *testing.T) {
	t.Parallel()

	d, _ := newTestDriver(0x1B, 0x48) // ESC + flash attribute echo
	d.Poll()

	evs := drainEvents(d)
	require.Len(t, evs, 1)
	assert.Equal(t, EventEscSeq, evs[0].Type)
	assert.Equal(t, byte(0x48), evs[0].Code)
	assert.Equal(t, uint8(0), evs[0].EscLen)
}

func TestParseEscUnknownSecondByteDropped(t *testing.T) {
	t.Parallel()

	// ESC followed by a byte outside {0x3B, 0x40..0x7F} drops silently.
	d, _ := newTestDriver(0x1B, 0x05, 'A')
	d.Poll()

	evs := drainEvents(d)
	require.Len(t, evs, 1)
	assert.Equal(t, EventChar, evs[0].Type)
	assert.Equal(t, byte('A'), evs[0].Code)
	assert.Equal(t, escIdle, d.escState)
}

func TestParseEditingControlsConsumed(t *testing.T) {
	t.Parallel()

	d, _ := newTestDriver(codeHT, codeVT, codeCAN, codeRS, codeDEL, 'x')
	d.Poll()

	evs := drainEvents(d)
	require.Len(t, evs, 1)
	assert.Equal(t, byte('x'), evs[0].Code)
}

func TestParseUSDeliveredAsControl(t *testing.T) {
	t.Parallel()

	// US must stay observable: it prefixes the cursor position report.
	d, _ := newTestDriver(codeUS, 0x45, 0x4A)
	d.Poll()

	evs := drainEvents(d)
	require.Len(t, evs, 3)
	assert.Equal(t, EventControl, evs[0].Type)
	assert.Equal(t, codeUS, evs[0].Code)
	assert.Equal(t, EventChar, evs[1].Type)
	assert.Equal(t, byte(0x45), evs[1].Code)
	assert.Equal(t, EventChar, evs[2].Type)
	assert.Equal(t, byte(0x4A), evs[2].Code)
}

func TestParseCharClassification(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    byte
		wantType EventType
	}{
		{"carriage return is a char", 0x0D, EventChar},
		{"line feed is a char", 0x0A, EventChar},
		{"backspace is a char", 0x08, EventChar},
		{"printable low", 0x20, EventChar},
		{"printable high", 0x7E, EventChar},
		{"bell is a control", 0x07, EventControl},
		{"nul is a control", 0x00, EventControl},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			d, _ := newTestDriver(tt.input)
			d.Poll()

			evs := drainEvents(d)
			require.Len(t, evs, 1)
			assert.Equal(t, tt.wantType, evs[0].Type)
			assert.Equal(t, tt.input, evs[0].Code)
		})
	}
}

func TestParseSepUpdatesSession(t *testing.T) {
	t.Parallel()

	d, p := newTestDriver()
	d.StartSession()
	assert.Equal(t, SessionOpening, d.SessionState())

	p.Feed(0x13, 0x54) // SEP 5/4
	d.Poll()
	assert.Equal(t, SessionOpen, d.SessionState())

	d.EndSession()
	assert.Equal(t, SessionClosing, d.SessionState())

	p.Feed(0x13, 0x54)
	d.Poll()
	assert.Equal(t, SessionClosed, d.SessionState())
}

// Parser state must return to idle after every complete event emission.
func TestPropertyParserReturnsToIdle(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		second := rapid.Byte().Draw(t, "sepSecond")
		opcode := byte(rapid.IntRange(0x40, 0x7F).Draw(t, "escOpcode"))

		d, _ := newTestDriver(0x13, second, 0x1B, opcode)
		d.Poll()

		if d.waitingSepSecond {
			t.Fatal("waitingSepSecond still set after complete sequences")
		}
		if d.escState != escIdle {
			t.Fatalf("escState = %v, want idle", d.escState)
		}
	})
}

// SEP second bytes from a real terminal are 0x40-based; the decoded
// coordinates must reassemble into the code.
func TestPropertySepCodeLaw(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		second := byte(rapid.IntRange(0x40, 0x7F).Draw(t, "second"))

		d, _ := newTestDriver(0x13, second)
		d.Poll()

		ev, ok := d.ReadEvent()
		if !ok {
			t.Fatal("no event")
		}
		if ev.Type != EventSep {
			t.Fatalf("type = %v, want sep", ev.Type)
		}
		if ev.Row > 7 || ev.Col > 15 {
			t.Fatalf("coordinates out of range: %d/%d", ev.Row, ev.Col)
		}
		if 0x40|ev.Row<<4|ev.Col != second {
			t.Fatalf("code law broken: row=%d col=%d second=%#x", ev.Row, ev.Col, second)
		}
	})
}

// Printable bytes must come out as events in exact arrival order.
func TestPropertyEventOrder(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 16).Draw(t, "n")
		input := make([]byte, n)
		for i := range input {
			input[i] = byte(rapid.IntRange(0x20, 0x7E).Draw(t, "b"))
		}

		d, _ := newTestDriver(input...)
		d.Poll()

		for i, want := range input {
			ev, ok := d.ReadEvent()
			if !ok {
				t.Fatalf("missing event %d", i)
			}
			if ev.Type != EventChar || ev.Code != want {
				t.Fatalf("event %d = %v/%#x, want char/%#x", i, ev.Type, ev.Code, want)
			}
		}
	})
}
