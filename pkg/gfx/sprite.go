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

import "math"

const (
	minSpriteScale = 1
	maxSpriteScale = 6
)

// Sprite is a multi-frame 1-bit image drawn onto the pixel canvas. Frames
// are stored row-major, one byte per pixel, frameCount frames back to
// back. DrawSprite erases the previous placement before drawing the new one,
// so moving a sprite only dirties the cells it actually crossed.
type Sprite struct {
	frames     []byte
	width      int
	height     int
	frameCount int

	x, y     int
	frame    int
	angleDeg int
	scale    int
	flipX    bool
	flipY    bool
	visible  bool

	prevX, prevY int
	prevFrame    int
	prevAngleDeg int
	prevScale    int
	prevFlipX    bool
	prevFlipY    bool
	firstDraw    bool
}

// NewSprite wraps frame data. frames must hold width*height*frameCount
// bytes; any nonzero byte is a lit pixel.
func NewSprite(frames []byte, width, height, frameCount int) *Sprite {
	return &Sprite{
		frames:     frames,
		width:      width,
		height:     height,
		frameCount: frameCount,
		scale:      1,
		prevScale:  1,
		visible:    true,
		firstDraw:  true,
	}
}

// SetPosition moves the sprite's top-left corner in pixel coordinates.
func (s *Sprite) SetPosition(x, y int) {
	s.x = x
	s.y = y
}

// Position returns the sprite's top-left corner.
func (s *Sprite) Position() (x, y int) {
	return s.x, s.y
}

// SetFrame selects a frame, clamped to the available range.
func (s *Sprite) SetFrame(frame int) {
	if s.frameCount == 0 {
		s.frame = 0
		return
	}
	if frame < 0 {
		frame = 0
	}
	if frame >= s.frameCount {
		frame = s.frameCount - 1
	}
	s.frame = frame
}

// NextFrame cycles to the following frame.
func (s *Sprite) NextFrame() {
	if s.frameCount == 0 {
		return
	}
	s.frame = (s.frame + 1) % s.frameCount
}

// SetAngle sets the rotation in degrees, normalised to [0,360).
func (s *Sprite) SetAngle(deg int) {
	s.angleDeg = normalizeAngle(deg)
}

// RotateBy adds to the rotation angle.
func (s *Sprite) RotateBy(deltaDeg int) {
	s.angleDeg = normalizeAngle(s.angleDeg + deltaDeg)
}

// SetScale sets the integer magnification, clamped to 1..6.
func (s *Sprite) SetScale(scale int) {
	if scale < minSpriteScale {
		scale = minSpriteScale
	}
	if scale > maxSpriteScale {
		scale = maxSpriteScale
	}
	s.scale = scale
}

// SetFlip mirrors the sprite on either axis.
func (s *Sprite) SetFlip(flipX, flipY bool) {
	s.flipX = flipX
	s.flipY = flipY
}

// Show toggles visibility. A hidden sprite is skipped by DrawSprite.
func (s *Sprite) Show(visible bool) {
	s.visible = visible
}

func normalizeAngle(deg int) int {
	r := deg % 360
	if r < 0 {
		r += 360
	}
	return r
}

// DrawSprite erases the sprite's previous placement and blits the current
// one into the framebuffer. Call Flush afterwards (or use Immediate mode)
// to reach the terminal.
func (c *Canvas) DrawSprite(s *Sprite) {
	if !s.visible {
		return
	}

	if !s.firstDraw {
		c.blitFrame(s, s.prevX, s.prevY, s.prevFrame, s.prevAngleDeg,
			s.prevScale, s.prevFlipX, s.prevFlipY, false)
	}

	c.blitFrame(s, s.x, s.y, s.frame, s.angleDeg, s.scale, s.flipX, s.flipY, true)

	s.prevX = s.x
	s.prevY = s.y
	s.prevFrame = s.frame
	s.prevAngleDeg = s.angleDeg
	s.prevScale = s.scale
	s.prevFlipX = s.flipX
	s.prevFlipY = s.flipY
	s.firstDraw = false
}

// blitFrame rasterises one sprite frame at a position with rotation,
// scale and flips, setting (on) or clearing (off) the covered pixels.
func (c *Canvas) blitFrame(s *Sprite, dstX, dstY, frame, angleDeg, scale int,
	flipX, flipY, on bool,
) {
	if len(s.frames) == 0 || s.width == 0 || s.height == 0 || s.frameCount == 0 {
		return
	}
	if scale < minSpriteScale {
		scale = minSpriteScale
	}
	if scale > maxSpriteScale {
		scale = maxSpriteScale
	}

	frame %= s.frameCount
	base := s.frames[frame*s.width*s.height:]

	angleDeg = normalizeAngle(angleDeg)
	outW := s.width * scale
	outH := s.height * scale

	// Fast path without rotation: each output pixel samples its
	// nearest-neighbour source pixel.
	if angleDeg == 0 {
		for oy := 0; oy < outH; oy++ {
			y := dstY + oy
			if y < 0 || y >= PixelH {
				continue
			}
			sy := oy / scale
			if flipY {
				sy = s.height - 1 - sy
			}
			for ox := 0; ox < outW; ox++ {
				x := dstX + ox
				if x < 0 || x >= PixelW {
					continue
				}
				sx := ox / scale
				if flipX {
					sx = s.width - 1 - sx
				}
				if base[sy*s.width+sx] != 0 {
					c.DrawPixel(x, y, on)
				}
			}
		}
		return
	}

	// General case: inverse-map every pixel of the bounding circle around
	// the scaled sprite's centre.
	angleRad := float64(angleDeg) * math.Pi / 180
	ca := math.Cos(angleRad)
	sa := math.Sin(angleRad)

	// Snap the cardinal angles exactly; sin(pi) is a hair above zero and
	// would push edge pixels just outside the sprite box.
	if math.Abs(ca) < 1e-9 {
		ca = 0
	}
	if math.Abs(sa) < 1e-9 {
		sa = 0
	}

	cx := float64(outW) / 2
	cy := float64(outH) / 2
	// The box centre in pixel-index coordinates, so a half or quarter turn
	// maps the box onto itself.
	pivotX := cx - 0.5
	pivotY := cy - 0.5
	centerX := float64(dstX) + pivotX
	centerY := float64(dstY) + pivotY
	r := math.Sqrt(cx*cx + cy*cy)

	minX := int(math.Floor(centerX - r))
	maxX := int(math.Ceil(centerX + r))
	minY := int(math.Floor(centerY - r))
	maxY := int(math.Ceil(centerY + r))

	if minX < 0 {
		minX = 0
	}
	if minY < 0 {
		minY = 0
	}
	if maxX >= PixelW {
		maxX = PixelW - 1
	}
	if maxY >= PixelH {
		maxY = PixelH - 1
	}

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			dx := float64(x) - centerX
			dy := float64(y) - centerY

			ox := ca*dx + sa*dy + pivotX
			oy := -sa*dx + ca*dy + pivotY
			if ox < 0 || oy < 0 || ox >= float64(outW) || oy >= float64(outH) {
				continue
			}

			sx := int(math.Floor(ox / float64(scale)))
			sy := int(math.Floor(oy / float64(scale)))
			if flipX {
				sx = s.width - 1 - sx
			}
			if flipY {
				sy = s.height - 1 - sy
			}
			if sx < 0 || sy < 0 || sx >= s.width || sy >= s.height {
				continue
			}

			if base[sy*s.width+sx] != 0 {
				c.DrawPixel(x, y, on)
			}
		}
	}
}
