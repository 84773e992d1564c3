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

package gfx

import (
	"github.com/MinitelProject/minitel-core/pkg/minitel"
	"github.com/rs/zerolog/log"
)

// One-byte cursor moves that preserve the current character set, and the
// REP coding shared with the driver's text path: count byte 0x40+n for n
// additional repetitions, so one glyph plus REP covers at most 63 cells.
const (
	moveLeft  byte = 0x08 // BS
	moveRight byte = 0x09 // HT
	moveDown  byte = 0x0A // LF
	moveUp    byte = 0x0B // VT
	codeREP   byte = 0x12

	repThreshold   = 4
	repMaxRun      = 63
	repCountOffset = 0x40

	// US row col plus the SO needed to re-enter G1 afterwards.
	absoluteMoveCost = 4
)

// MaskToG1 converts a 6-bit sub-pixel mask to its G1 glyph code. The
// mapping is injective; 0x3F uses the 0x5F "trap" code the STUM reserves
// for the fully lit cell.
func MaskToG1(mask uint8) byte {
	mask &= 0x3F

	switch {
	case mask == 0:
		return 0x20
	case mask == 0x3F:
		return 0x5F
	case mask < 0x20:
		return 0x20 + mask
	default:
		return 0x60 + (mask - 0x20)
	}
}

// Flush pushes the framebuffer to the terminal and synchronises the
// shadow state.
func (c *Canvas) Flush(mode FlushMode) {
	if mode == FullRedraw {
		c.flushFull()
	} else {
		c.flushDiff()
	}

	copy(c.lastCellMask[:], c.cellMask[:])
	copy(c.lastCellColor[:], c.cellColor[:])
}

// flushFull repaints every row, grouping consecutive cells with the same
// glyph and colour into REP-coded runs.
func (c *Canvas) flushFull() {
	for row := 0; row < CellRows; row++ {
		termRow := uint8(row + 1)

		c.drv.SetCursor(termRow, 1)
		c.drv.BeginSemiGraphics()
		c.curRow = termRow
		c.curCol = 1
		c.hasCursor = true

		runCode := byte(0)
		runLen := 0
		runColor := uint8(c.termFg)

		for col := 0; col < CellCols; col++ {
			k := cellIndex(col, row)
			code := MaskToG1(c.cellMask[k])
			clr := c.cellColor[k]

			if runLen > 0 && code == runCode && clr == runColor && runLen < repMaxRun {
				runLen++
				continue
			}

			c.emitRun(runCode, runLen, runColor)
			runCode = code
			runLen = 1
			runColor = clr
		}

		c.emitRun(runCode, runLen, runColor)
		c.drv.EndSemiGraphics()
	}
}

// flushDiff walks each row for cells whose mask or colour differs from
// the shadow, groups contiguous dirty cells into segments, and repaints
// segment by segment. A single clean cell ends a segment.
func (c *Canvas) flushDiff() {
	changed := 0

	for row := 0; row < CellRows; row++ {
		termRow := uint8(row + 1)

		inSegment := false
		segStart := 0
		runCode := byte(0)
		runLen := 0
		runColor := uint8(0)

		emit := func() {
			if !inSegment || runLen == 0 {
				return
			}
			changed += runLen

			c.gotoCell(termRow, uint8(segStart+1))
			c.drv.BeginSemiGraphics()
			c.emitRun(runCode, runLen, runColor)

			inSegment = false
			runLen = 0
		}

		for col := 0; col < CellCols; col++ {
			k := cellIndex(col, row)
			dirty := c.cellMask[k] != c.lastCellMask[k] ||
				c.cellColor[k] != c.lastCellColor[k]

			if !dirty {
				emit()
				continue
			}

			code := MaskToG1(c.cellMask[k])
			clr := c.cellColor[k]

			switch {
			case !inSegment:
				inSegment = true
				segStart = col
				runCode = code
				runLen = 1
				runColor = clr
			case code == runCode && clr == runColor && runLen < repMaxRun:
				runLen++
			default:
				emit()
				inSegment = true
				segStart = col
				runCode = code
				runLen = 1
				runColor = clr
			}
		}

		emit()
	}

	// The set stays in G1 between diff flushes; the driver's shift tracker
	// drops back to G0 on the next text write anyway, and skipping the SI
	// here saves a byte per frame.
	if changed > 0 {
		log.Debug().Int("cells", changed).Msg("gfx: diff flush")
	}
}

// emitRun writes runLen copies of a glyph, changing the terminal
// foreground first when the run's colour differs from the tracker. The
// tracked cursor advances by the run length.
func (c *Canvas) emitRun(code byte, runLen int, colorIdx uint8) {
	if runLen == 0 {
		return
	}

	clr := minitel.Color(colorIdx)
	if clr != c.termFg {
		c.drv.SetCharColor(clr)
		c.termFg = clr
	}

	for runLen > 0 {
		chunk := runLen
		if chunk > repMaxRun {
			chunk = repMaxRun
		}

		if chunk < repThreshold {
			for i := 0; i < chunk; i++ {
				c.drv.PutSemiGraphic(code)
			}
		} else {
			c.drv.PutSemiGraphic(code)
			_ = c.drv.WriteRaw(codeREP)
			_ = c.drv.WriteRaw(repCountOffset + byte(chunk-1))
		}

		c.advanceCursor(chunk)
		runLen -= chunk
	}
}

// advanceCursor tracks the terminal's own cursor advance after n printed
// glyphs: right one column each, wrapping to the next row at column 41.
// Row 24 caps; scroll is not modelled.
func (c *Canvas) advanceCursor(n int) {
	for i := 0; i < n; i++ {
		c.curCol++
		if c.curCol > CellCols {
			c.curCol = 1
			if c.curRow < CellRows {
				c.curRow++
			}
		}
	}
}

// gotoCell moves the terminal cursor to a cell, choosing between one-byte
// relative moves (which keep G1 and attributes) and the four-byte
// absolute form US row col SO (US resets attributes, so G1 must be
// re-entered). Relative wins when it costs no more than the absolute
// form; the first move after startup is always absolute.
func (c *Canvas) gotoCell(row, col uint8) {
	if row < 1 {
		row = 1
	}
	if row > CellRows {
		row = CellRows
	}
	if col < 1 {
		col = 1
	}
	if col > CellCols {
		col = CellCols
	}

	if !c.hasCursor {
		c.drv.SetCursor(row, col)
		c.drv.BeginSemiGraphics()
		c.curRow = row
		c.curCol = col
		c.hasCursor = true
		return
	}

	dr := int(row) - int(c.curRow)
	dc := int(col) - int(c.curCol)

	if abs(dr)+abs(dc) <= absoluteMoveCost {
		// Vertical first, then horizontal.
		for ; dr > 0; dr-- {
			_ = c.drv.WriteRaw(moveDown)
		}
		for ; dr < 0; dr++ {
			_ = c.drv.WriteRaw(moveUp)
		}
		for ; dc > 0; dc-- {
			_ = c.drv.WriteRaw(moveRight)
		}
		for ; dc < 0; dc++ {
			_ = c.drv.WriteRaw(moveLeft)
		}
	} else {
		c.drv.SetCursor(row, col)
		c.drv.BeginSemiGraphics()
	}

	c.curRow = row
	c.curCol = col
}

// updateCellOnScreen repaints one cell in Immediate mode, skipping cells
// that already match their shadow.
func (c *Canvas) updateCellOnScreen(col, row int) {
	k := cellIndex(col, row)
	if c.cellMask[k] == c.lastCellMask[k] && c.cellColor[k] == c.lastCellColor[k] {
		return
	}

	c.gotoCell(uint8(row+1), uint8(col+1))
	c.drv.BeginSemiGraphics()

	clr := minitel.Color(c.cellColor[k])
	if clr != c.termFg {
		c.drv.SetCharColor(clr)
		c.termFg = clr
	}

	c.drv.PutSemiGraphic(MaskToG1(c.cellMask[k]))
	c.advanceCursor(1)

	c.lastCellMask[k] = c.cellMask[k]
	c.lastCellColor[k] = c.cellColor[k]
}
