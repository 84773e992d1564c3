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

import "time"

// SendPRO3 emits one five-byte PRO3 routing frame: ESC 0x3B ctrl rx tx.
// ctrl is Pro3On or Pro3Off; rx and tx name the modules being connected
// or disconnected.
func (d *Driver) SendPRO3(ctrl, rx, tx byte) {
	_, _ = d.Write([]byte{codeESC, 0x3B, ctrl, rx, tx})
}

// EnablePRO3 switches the terminal into PRO3 routing mode.
func (d *Driver) EnablePRO3() {
	_, _ = d.Write([]byte{codeESC, 0x3B, Pro3On, 0x5F, 0x5F})
}

// ConfigureKeyboardToSocket reroutes the keyboard to the peripheral
// socket only: keyboard to modem off, modem to screen off, keyboard to
// socket on. PRO3 frames are fire-and-forget; pass waitAck to also start
// a transaction on the SEP 5/4 status change.
func (d *Driver) ConfigureKeyboardToSocket(waitAck bool, timeout time.Duration) error {
	if waitAck {
		if err := d.BeginWaitSep(5, 4, timeout); err != nil {
			return err
		}
	}

	d.SendPRO3(Pro3Off, ModModemRX, ModKeyboardTX)
	d.SendPRO3(Pro3Off, ModScreenRX, ModModemTX)
	d.SendPRO3(Pro3On, ModSocketRX, ModKeyboardTX)

	return nil
}
