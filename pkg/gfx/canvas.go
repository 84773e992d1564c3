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

// Package gfx overlays a bit-addressable 80x72 pixel canvas on the 40x24
// grid of G1 semi-graphic cells of a Minitel terminal.
//
// Each cell packs a 2x3 block of sub-pixels into a 6-bit mask plus a
// palette colour. Drawing mutates the in-memory framebuffer; Flush in
// OptimizedDiff mode sends only what changed since the last flush (FullRedraw
// repaints every cell), with REP run coding and
// cursor-path minimisation, because at 1200 baud every byte on the wire
// is visible redraw latency.
package gfx

import "github.com/MinitelProject/minitel-core/pkg/minitel"

// Canvas geometry: two sub-pixels per cell column, three per cell row.
const (
	CellCols = minitel.Cols
	CellRows = minitel.Rows
	PixelW   = CellCols * 2
	PixelH   = CellRows * 3

	cellCount = CellCols * CellRows
)

// DrawMode selects when drawing reaches the terminal.
type DrawMode uint8

const (
	// BitmapOnly mutates the framebuffer; nothing is sent until Flush.
	BitmapOnly DrawMode = iota
	// Immediate sends each touched cell to the terminal as it changes.
	Immediate
)

// FlushMode selects the redraw strategy.
type FlushMode uint8

const (
	// FullRedraw repaints every cell row by row.
	FullRedraw FlushMode = iota
	// OptimizedDiff repaints only cells that differ from the shadow state.
	OptimizedDiff
)

// Canvas is a pixel framebuffer bound to one driver. The canvas borrows
// the driver's transmit side; the driver knows nothing about it.
type Canvas struct {
	drv *minitel.Driver

	cellMask  [cellCount]uint8
	cellColor [cellCount]uint8

	// Shadows record what is on the glass; flush (and immediate per-cell
	// updates) keep them in sync.
	lastCellMask  [cellCount]uint8
	lastCellColor [cellCount]uint8

	drawColor minitel.Color
	termFg    minitel.Color

	// Tracked terminal cursor, 1-based. Until the first explicit placement
	// hasCursor is false and moves must be absolute.
	curRow    uint8
	curCol    uint8
	hasCursor bool

	mode DrawMode
}

// NewCanvas binds a fresh canvas to a driver. The shadow state is marked
// invalid so the first flush repaints everything.
func NewCanvas(drv *minitel.Driver) *Canvas {
	c := &Canvas{
		drv:       drv,
		drawColor: minitel.White,
		termFg:    minitel.White,
		curRow:    1,
		curCol:    1,
	}
	for i := range c.lastCellMask {
		c.lastCellMask[i] = 0xFF
		c.cellColor[i] = uint8(minitel.White)
		c.lastCellColor[i] = uint8(minitel.White)
	}
	return c
}

// SetDrawColor selects the colour stamped on cells by subsequent pixel
// sets.
func (c *Canvas) SetDrawColor(col minitel.Color) {
	c.drawColor = col & 0x07
}

// DrawColor returns the current drawing colour.
func (c *Canvas) DrawColor() minitel.Color {
	return c.drawColor
}

// SetDrawMode switches between buffered and immediate drawing.
func (c *Canvas) SetDrawMode(m DrawMode) {
	c.mode = m
}

// Clear empties the framebuffer and resynchronises the shadows. With
// updateScreen it also wipes the terminal, which is far cheaper than
// diffing a full-screen change.
func (c *Canvas) Clear(updateScreen bool) {
	for i := range c.cellMask {
		c.cellMask[i] = 0
		c.lastCellMask[i] = 0
		c.cellColor[i] = uint8(minitel.White)
		c.lastCellColor[i] = uint8(minitel.White)
	}

	c.hasCursor = false
	c.curRow = 1
	c.curCol = 1

	if updateScreen {
		c.drv.ClearScreen()
		c.drv.Home()
		c.termFg = minitel.White
	}
}

func cellIndex(col, row int) int {
	return row*CellCols + col
}

// subPixelIndex maps an in-cell coordinate to its mask bit:
// (0,0)->0 (1,0)->1 (0,1)->2 (1,1)->3 (0,2)->4 (1,2)->5.
func subPixelIndex(xInCell, yInCell int) uint {
	return uint(yInCell*2 + xInCell)
}

// DrawPixel sets or clears one pixel. Setting stamps the cell with the
// current draw colour; clearing leaves the colour alone so a partially
// lit cell keeps it.
func (c *Canvas) DrawPixel(x, y int, on bool) {
	if x < 0 || x >= PixelW || y < 0 || y >= PixelH {
		return
	}

	col := x / 2
	row := y / 3
	k := cellIndex(col, row)
	bit := uint8(1) << subPixelIndex(x%2, y%3)

	if on {
		c.cellMask[k] |= bit
		c.cellColor[k] = uint8(c.drawColor)
	} else {
		c.cellMask[k] &^= bit
	}

	if c.mode == Immediate {
		c.updateCellOnScreen(col, row)
	}
}

// Pixel reports whether a pixel is set. Out-of-range coordinates read as
// off.
func (c *Canvas) Pixel(x, y int) bool {
	if x < 0 || x >= PixelW || y < 0 || y >= PixelH {
		return false
	}
	k := cellIndex(x/2, y/3)
	return c.cellMask[k]&(1<<subPixelIndex(x%2, y%3)) != 0
}

// DrawLine draws with integer Bresenham between two points, clipping to
// the canvas.
func (c *Canvas) DrawLine(x0, y0, x1, y1 int, on bool) {
	dx := abs(x1 - x0)
	sx := 1
	if x0 >= x1 {
		sx = -1
	}
	dy := -abs(y1 - y0)
	sy := 1
	if y0 >= y1 {
		sy = -1
	}
	err := dx + dy

	for {
		c.DrawPixel(x0, y0, on)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// DrawRect draws an axis-aligned rectangle, outlined or filled with
// horizontal lines.
func (c *Canvas) DrawRect(x, y, w, h int, filled, on bool) {
	if w <= 0 || h <= 0 {
		return
	}

	x2 := x + w - 1
	y2 := y + h - 1

	if filled {
		for yy := y; yy <= y2; yy++ {
			c.DrawLine(x, yy, x2, yy, on)
		}
		return
	}

	c.DrawLine(x, y, x2, y, on)
	c.DrawLine(x, y2, x2, y2, on)
	c.DrawLine(x, y, x, y2, on)
	c.DrawLine(x2, y, x2, y2, on)
}

// DrawLineThick layers parallel offset lines along the minor axis.
func (c *Canvas) DrawLineThick(x0, y0, x1, y1, thickness int, on bool) {
	if thickness <= 1 {
		c.DrawLine(x0, y0, x1, y1, on)
		return
	}

	half := thickness / 2
	if abs(x1-x0) >= abs(y1-y0) {
		for o := -half; o <= half; o++ {
			c.DrawLine(x0, y0+o, x1, y1+o, on)
		}
	} else {
		for o := -half; o <= half; o++ {
			c.DrawLine(x0+o, y0, x1+o, y1, on)
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
