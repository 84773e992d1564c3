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
	"time"

	"github.com/rs/zerolog/log"
)

// Outcome is the result of the most recent transaction.
type Outcome uint8

const (
	// OutcomeNone means no transaction has run (or the last was cancelled).
	OutcomeNone Outcome = iota
	// OutcomePending means a transaction is waiting for its SEP.
	OutcomePending
	// OutcomeSuccess means the expected SEP arrived in time.
	OutcomeSuccess
	// OutcomeTimeout means the deadline elapsed first.
	OutcomeTimeout
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNone:
		return "none"
	case OutcomePending:
		return "pending"
	case OutcomeSuccess:
		return "success"
	case OutcomeTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// transaction is the single pending wait-for-SEP record. At most one is
// active per driver; its deadline is checked on every Poll.
type transaction struct {
	active  bool
	row     uint8
	col     uint8
	start   time.Time
	timeout time.Duration
}

// BeginWaitSep starts a transaction that completes when SEP(row,col)
// arrives. A zero timeout never expires. Returns ErrTransactionActive if
// one is already pending.
func (d *Driver) BeginWaitSep(row, col uint8, timeout time.Duration) error {
	if d.tx.active {
		return ErrTransactionActive
	}

	d.tx = transaction{
		active:  true,
		row:     row,
		col:     col,
		start:   d.clock.Now(),
		timeout: timeout,
	}
	d.lastOutcome = OutcomePending

	return nil
}

// CancelTransaction aborts the pending transaction, if any.
func (d *Driver) CancelTransaction() {
	if !d.tx.active {
		return
	}
	d.tx.active = false
	d.lastOutcome = OutcomeNone
}

// TransactionActive reports whether a transaction is pending.
func (d *Driver) TransactionActive() bool {
	return d.tx.active
}

// LastOutcome returns the state of the most recent transaction.
func (d *Driver) LastOutcome() Outcome {
	return d.lastOutcome
}

// onSepForTransaction resolves the pending transaction when its expected
// SEP arrives. Called by the parser for every decoded SEP.
func (d *Driver) onSepForTransaction(row, col uint8) {
	if !d.tx.active {
		return
	}
	if d.tx.row != row || d.tx.col != col {
		return
	}

	d.tx.active = false
	d.lastOutcome = OutcomeSuccess
	log.Debug().Uint8("row", row).Uint8("col", col).Msg("minitel: transaction acknowledged")
}

// checkTransactionTimeout expires the pending transaction once its
// deadline elapses. clock.Since is monotonic, so wall-clock jumps and
// wrap-around cannot fire it early.
func (d *Driver) checkTransactionTimeout() {
	if !d.tx.active || d.tx.timeout == 0 {
		return
	}
	if d.clock.Since(d.tx.start) <= d.tx.timeout {
		return
	}

	d.tx.active = false
	d.lastOutcome = OutcomeTimeout
	log.Debug().
		Uint8("row", d.tx.row).
		Uint8("col", d.tx.col).
		Msg("minitel: transaction timed out")
}
