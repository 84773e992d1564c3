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
	"time"

	"github.com/rs/zerolog/log"
)

// REP run-length coding. A run shorter than the threshold costs less sent
// raw; the count byte encodes the number of additional repetitions as
// 0x40+n with n in 1..62, so one glyph plus REP covers at most 63 cells.
const (
	repThreshold   = 4
	repMaxRun      = 63
	repCountOffset = 0x40
)

// WriteRaw sends one byte, high bit stripped. The link layer adds parity.
func (d *Driver) WriteRaw(b byte) error {
	v := b & 0x7F
	if d.trace {
		log.Debug().Uint8("byte", v).Msg("minitel: tx")
	}
	if _, err := d.port.Write([]byte{v}); err != nil {
		return fmt.Errorf("write byte: %w", err)
	}
	return nil
}

// Write sends a buffer, stripping the high bit of every byte.
func (d *Driver) Write(p []byte) (int, error) {
	out := make([]byte, len(p))
	for i, b := range p {
		out[i] = b & 0x7F
	}
	if d.trace {
		log.Debug().Hex("bytes", out).Msg("minitel: tx")
	}
	n, err := d.port.Write(out)
	if err != nil {
		return n, fmt.Errorf("write: %w", err)
	}
	return n, nil
}

// ClearScreen wipes the display. The terminal resets attributes and the
// character set, so the shift tracker returns to G0.
func (d *Driver) ClearScreen() {
	_ = d.WriteRaw(codeFF)
	d.currentSet = setG0
}

// Home moves the cursor to row 1, column 1. Resets the tracker to G0.
func (d *Driver) Home() {
	_ = d.WriteRaw(codeRS)
	d.currentSet = setG0
}

// SetCursor moves the cursor to an absolute position, clamped to the
// 24x40 grid. US resets attributes, so the tracker returns to G0.
func (d *Driver) SetCursor(row, col uint8) {
	row = clamp(row, 1, Rows)
	col = clamp(col, 1, Cols)

	_, _ = d.Write([]byte{codeUS, 0x40 | row, 0x40 | col})
	d.currentSet = setG0
}

// SetCursorRow0 addresses the status row (row 0). Leaving it afterwards
// requires an LF.
func (d *Driver) SetCursorRow0(col uint8) {
	col = clamp(col, 1, Cols)

	_, _ = d.Write([]byte{codeUS, 0x40, 0x40 | col})
	d.currentSet = setG0
}

// PutChar writes one alphanumeric character, shifting to G0 first when
// needed.
func (d *Driver) PutChar(c byte) {
	if d.currentSet != setG0 {
		_ = d.WriteRaw(codeSI)
		d.currentSet = setG0
	}
	_ = d.WriteRaw(c & 0x7F)
}

// Print writes a string in G0 with REP run-length compression.
func (d *Driver) Print(s string) {
	if d.currentSet != setG0 {
		_ = d.WriteRaw(codeSI)
		d.currentSet = setG0
	}
	d.printOptimized([]byte(s))
}

// Println writes a string followed by CR LF.
func (d *Driver) Println(s string) {
	d.Print(s)
	_, _ = d.Write([]byte{codeCR, codeLF})
}

// Printf formats into the G0 stream.
func (d *Driver) Printf(format string, args ...any) {
	d.Print(fmt.Sprintf(format, args...))
}

// BeginSemiGraphics shifts to the G1 semi-graphic set if not already
// there.
func (d *Driver) BeginSemiGraphics() {
	if d.currentSet != setG1 {
		_ = d.WriteRaw(codeSO)
		d.currentSet = setG1
	}
}

// EndSemiGraphics shifts back to G0 if not already there.
func (d *Driver) EndSemiGraphics() {
	if d.currentSet != setG0 {
		_ = d.WriteRaw(codeSI)
		d.currentSet = setG0
	}
}

// PutSemiGraphic writes one G1 glyph, shifting to G1 first when needed.
func (d *Driver) PutSemiGraphic(code byte) {
	d.BeginSemiGraphics()
	_ = d.WriteRaw(code & 0x7F)
}

// PutSemiGraphicAt positions the cursor, writes one G1 glyph and returns
// to G0.
func (d *Driver) PutSemiGraphicAt(row, col uint8, code byte) {
	d.SetCursor(row, col)
	d.BeginSemiGraphics()
	_ = d.WriteRaw(code & 0x7F)
	d.EndSemiGraphics()
}

// PrintSemiGraphics writes a G1 glyph string with REP compression.
func (d *Driver) PrintSemiGraphics(s string) {
	d.BeginSemiGraphics()
	d.printOptimized([]byte(s))
}

// printOptimized emits a byte sequence assumed to already be in the right
// character set, compressing runs of identical bytes with REP.
func (d *Driver) printOptimized(p []byte) {
	i := 0
	for i < len(p) {
		c := p[i]
		j := i
		for j < len(p) && p[j] == c {
			j++
		}
		run := j - i

		if run < repThreshold {
			for k := 0; k < run; k++ {
				_ = d.WriteRaw(c)
			}
		} else {
			for run > 0 {
				chunk := run
				if chunk > repMaxRun {
					chunk = repMaxRun
				}
				if chunk < repThreshold {
					for k := 0; k < chunk; k++ {
						_ = d.WriteRaw(c)
					}
				} else {
					_ = d.WriteRaw(c)
					_, _ = d.Write([]byte{codeREP, repCountOffset + byte(chunk-1)})
				}
				run -= chunk
			}
		}

		i = j
	}
}

// SetCharColor sets the foreground colour attribute.
func (d *Driver) SetCharColor(c Color) {
	_, _ = d.Write([]byte{codeESC, 0x40 | byte(c&0x07)})
}

// SetBgColor sets the background colour attribute.
func (d *Driver) SetBgColor(c Color) {
	_, _ = d.Write([]byte{codeESC, 0x50 | byte(c&0x07)})
}

// SetFlash enables or disables the flashing attribute.
func (d *Driver) SetFlash(on bool) {
	b := byte(0x49)
	if on {
		b = 0x48
	}
	_, _ = d.Write([]byte{codeESC, b})
}

// SetLining starts or stops lining (underline in G0, disjoint mosaics in
// G1).
func (d *Driver) SetLining(on bool) {
	b := byte(0x59)
	if on {
		b = 0x4A
	}
	_, _ = d.Write([]byte{codeESC, b})
}

// SetConceal conceals (true) or reveals (false) subsequent characters.
func (d *Driver) SetConceal(on bool) {
	b := byte(0x5F)
	if on {
		b = 0x58
	}
	_, _ = d.Write([]byte{codeESC, b})
}

// SetTextSize sets the character size attribute.
func (d *Driver) SetTextSize(s Size) {
	_, _ = d.Write([]byte{codeESC, byte(s)})
}

// RequestCursorPosition asks the terminal where its cursor is (ESC 0x61)
// and reads back the US row col report. Any deviation from the expected
// reply, or the timeout elapsing, fails.
func (d *Driver) RequestCursorPosition(timeout time.Duration) (row, col uint8, ok bool) {
	_, _ = d.Write([]byte{codeESC, 0x61})

	start := d.clock.Now()
	remaining := func() time.Duration {
		if timeout == 0 {
			return 0
		}
		left := timeout - d.clock.Since(start)
		if left <= 0 {
			return time.Nanosecond // force immediate expiry in WaitEvent
		}
		return left
	}

	// The reply is US, then the row and column bytes (0x40|row, 0x40|col),
	// which parse as one control event and two char events.
	for {
		ev, got := d.WaitEvent(remaining())
		if !got {
			return 0, 0, false
		}
		if ev.Type == EventControl && ev.Code == codeUS {
			break
		}
		// Unrelated events queued ahead of the report are skipped.
	}

	rowEv, got := d.WaitEvent(remaining())
	if !got || rowEv.Type != EventChar {
		return 0, 0, false
	}
	colEv, got := d.WaitEvent(remaining())
	if !got || colEv.Type != EventChar {
		return 0, 0, false
	}

	return rowEv.Code & 0x1F, colEv.Code & 0x3F, true
}

func clamp(v, lo, hi uint8) uint8 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
