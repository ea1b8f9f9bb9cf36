// SPDX-FileCopyrightText: 2023 Martin Berlin
//
// SPDX-License-Identifier: MIT

package pca9535

// txState is the phase of the current bus transaction.
type txState int

const (
	txIdle txState = iota
	txConnectedRead
	txConnectedWrite
)

// OnConnect begins a bus transaction addressed to addr and resets the
// port cursor.
//
// The device always acknowledges, even when addr does not match its
// resolved address; the mismatch is reported as a diagnostic only, as
// anything on the simulated medium is assumed wired to this device.
//
// A connect for read snapshots the current input value as the new
// interrupt comparison baseline and releases the interrupt line before
// any byte is transferred.
func (d *Device) OnConnect(addr uint8, read bool) bool {
	if addr != d.addr {
		d.logger.Warn("connect for foreign address",
			"addr", hexByte(addr), "resolved", hexByte(d.addr))
	}
	d.cursor = 0
	if read {
		d.state = txConnectedRead
		d.lastRead = d.inputValue
		d.setInterrupt(false)
		return true
	}
	d.state = txConnectedWrite
	return true
}

// OnByteRead returns the active port of the input value and advances the
// port cursor.
func (d *Device) OnByteRead() byte {
	if d.state != txConnectedRead {
		d.logger.Warn("byte read outside a read transaction")
	}
	b := byte(d.inputValue >> (d.cursor * LinesPerPort))
	d.advanceCursor()
	return b
}

// OnByteWrite reclassifies the active port's lines from b and advances
// the port cursor. Always acknowledges.
func (d *Device) OnByteWrite(b byte) bool {
	if d.state != txConnectedWrite {
		d.logger.Warn("byte write outside a write transaction")
	}
	d.applyPortWrite(b, d.cursor)
	d.advanceCursor()
	return true
}

// OnDisconnect ends the current transaction. Everything of consequence
// has already been committed to device state.
func (d *Device) OnDisconnect() {
	d.state = txIdle
}

// advanceCursor toggles the active port between 0 and 1. Transfers of
// more than two bytes cycle over the two ports.
func (d *Device) advanceCursor() {
	d.cursor ^= 1
}

// applyPortWrite reclassifies the eight lines of one port from a written
// byte: a set bit makes the line a monitored input with a pull-up, a
// clear bit an output driven low. This is the only place classification
// changes, and it always rebuilds the full port, keeping the mask and
// the electrical modes in agreement.
func (d *Device) applyPortWrite(b byte, port int) {
	for bit := 0; bit < LinesPerPort; bit++ {
		offset := port*LinesPerPort + bit
		p := d.lines[offset]
		// cancel any existing subscription before reclassifying so a
		// line never notifies under a stale classification
		p.Unwatch()
		if b&(1<<bit) != 0 {
			d.classifyInput(offset)
			p.SetMode(ModeInputPullup)
			p.Watch(func(int) { d.onInputChanged() })
		} else {
			d.classifyOutput(offset)
			p.SetMode(ModeOutputLow)
		}
	}
	if port == NumPorts-1 {
		d.logger.Debug("input mask updated", "mask", hexWord(d.inputMask))
	}
}
