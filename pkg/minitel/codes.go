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

// C0 control codes used by the STUM M1 protocol.
const (
	codeBS  byte = 0x08 // cursor left
	codeHT  byte = 0x09 // cursor right
	codeLF  byte = 0x0A // cursor down
	codeVT  byte = 0x0B // cursor up
	codeFF  byte = 0x0C // clear screen
	codeCR  byte = 0x0D
	codeSO  byte = 0x0E // shift out, select G1
	codeSI  byte = 0x0F // shift in, select G0
	codeREP byte = 0x12 // repeat last glyph
	codeSEP byte = 0x13 // two-byte separator prefix
	codeCAN byte = 0x18 // clear to end of line
	codeESC byte = 0x1B
	codeRS  byte = 0x1E // home
	codeUS  byte = 0x1F // absolute cursor prefix
	codeDEL byte = 0x7F
)

// Second bytes of the SEP sequences the core recognises. The value encodes
// 0x40 | row<<4 | col.
const (
	SepSend       byte = 0x41 // 4/1 SEND/ENVOI
	SepPrevious   byte = 0x42 // 4/2
	SepRepeat     byte = 0x43 // 4/3
	SepGuide      byte = 0x44 // 4/4
	SepCancel     byte = 0x45 // 4/5
	SepIndex      byte = 0x46 // 4/6
	SepCorrection byte = 0x47 // 4/7
	SepNext       byte = 0x48 // 4/8
	SepConnect    byte = 0x49 // 4/9
	SepStatus     byte = 0x54 // 5/4 session / PT status change
)

// PRO3 module routing codes (ESC 0x3B control rx tx).
const (
	Pro3Off byte = 0x60
	Pro3On  byte = 0x61

	ModScreenTX   byte = 0x50
	ModKeyboardTX byte = 0x51
	ModModemTX    byte = 0x52
	ModSocketTX   byte = 0x53

	ModScreenRX   byte = 0x58
	ModKeyboardRX byte = 0x59
	ModModemRX    byte = 0x5A
	ModSocketRX   byte = 0x5B
)

// Color is a terminal palette index. On a monochrome Minitel 1 these map
// to grey levels.
type Color uint8

const (
	Black   Color = 0
	Red     Color = 1
	Green   Color = 2
	Yellow  Color = 3
	Blue    Color = 4
	Magenta Color = 5
	Cyan    Color = 6
	White   Color = 7
)

// Size selects the character size attribute (ESC 0x4C..0x4F).
type Size uint8

const (
	SizeNormal       Size = 0x4C
	SizeDoubleHeight Size = 0x4D
	SizeDoubleWidth  Size = 0x4E
	SizeDouble       Size = 0x4F
)

// Screen geometry of a Minitel 1.
const (
	Rows = 24
	Cols = 40
)
