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

import "github.com/rs/zerolog/log"

type escState uint8

const (
	escIdle escState = iota
	escGotEsc
	escCollectPro3
)

// parseByte feeds one received byte through the receive state machine.
// Dispatch is strict priority order; the first matching clause consumes
// the byte.
func (d *Driver) parseByte(b byte) {
	b &= 0x7F // strip parity bit

	if d.trace {
		log.Debug().Uint8("byte", b).Msg("minitel: rx")
	}

	// 1. A pending ESC sequence takes priority over everything.
	if d.escState != escIdle {
		d.handleEscByte(b)
		return
	}

	// 2. Second byte of a SEP sequence.
	if d.waitingSepSecond {
		d.waitingSepSecond = false
		d.handleSep(b)
		return
	}

	// 3. Local-echo editing and positioning controls the application never
	// needs to see. US stays observable: it prefixes the cursor position
	// report (US row col) that RequestCursorPosition reads back.
	switch b {
	case codeHT, codeVT, codeCAN, codeRS, codeDEL:
		return
	}

	// 4. Sequence openers.
	if b == codeESC {
		d.escState = escGotEsc
		return
	}
	if b == codeSEP {
		d.waitingSepSecond = true
		return
	}

	// 5. CR/LF/BS are chars so line readers consume them uniformly.
	if b == codeCR || b == codeLF || b == codeBS {
		d.pushEvent(Event{Type: EventChar, Code: b})
		return
	}

	// 6. Remaining C0 controls.
	if b < 0x20 {
		d.pushEvent(Event{Type: EventControl, Code: b})
		return
	}

	// 7. Printable range.
	if b <= 0x7E {
		d.pushEvent(Event{Type: EventChar, Code: b})
	}
}

// handleSep decodes the second byte of a 0x13 separator, feeds the
// transaction engine and the session state machine, then emits the event.
func (d *Driver) handleSep(second byte) {
	row := (second >> 4) & 0x07
	col := second & 0x0F

	d.onSepForTransaction(row, col)

	// SEP 5/4 acknowledges a PT-line session change.
	if row == 5 && col == 4 {
		switch d.session {
		case SessionOpening:
			d.session = SessionOpen
			log.Info().Msg("minitel: session open")
		case SessionClosing:
			d.session = SessionClosed
			log.Info().Msg("minitel: session closed")
		case SessionClosed, SessionOpen:
		}
	}

	d.pushEvent(Event{
		Type: EventSep,
		Code: second,
		Row:  row,
		Col:  col,
	})
}

// handleEscByte advances the ESC sub-state machine.
func (d *Driver) handleEscByte(b byte) {
	switch d.escState {
	case escGotEsc:
		switch {
		case b == 0x3B:
			d.escState = escCollectPro3
			d.escLen = 0
		case b >= 0x40 && b <= 0x7F:
			d.pushEvent(Event{Type: EventEscSeq, Code: b})
			d.escState = escIdle
		default:
			// Unknown second byte: drop the whole sequence.
			d.escState = escIdle
		}

	case escCollectPro3:
		d.escBuf[d.escLen] = b
		d.escLen++
		if d.escLen == 3 {
			ev := Event{Type: EventEscSeq, Code: 0x3B, EscLen: 3}
			copy(ev.EscData[:], d.escBuf[:])
			d.pushEvent(ev)
			d.escState = escIdle
			d.escLen = 0
		}

	case escIdle:
		// parseByte never routes here while idle.
	}
}

func (d *Driver) pushEvent(ev Event) {
	if d.trace {
		log.Debug().
			Stringer("type", ev.Type).
			Uint8("code", ev.Code).
			Uint8("row", ev.Row).
			Uint8("col", ev.Col).
			Msg("minitel: event")
	}
	d.fifo.push(ev)
}
