// SPDX-FileCopyrightText: 2023 Martin Berlin
//
// SPDX-License-Identifier: MIT

package pca9535

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
)

const (
	// DefaultBaseAddress is the fixed upper part of the 7-bit bus address.
	// The three select lines supply the low bits.
	DefaultBaseAddress uint8 = 0x20

	// NumLines is the number of quasi-bidirectional I/O lines.
	NumLines = 16

	// NumSelectLines is the number of address select inputs.
	NumSelectLines = 3

	// NumPorts is the number of 8-bit ports the I/O lines are grouped into.
	NumPorts = 2

	// LinesPerPort is the width of one port.
	LinesPerPort = NumLines / NumPorts
)

// Device emulates a single PCA9535.
//
// Each Device owns one set of pins in the host's electrical model for the
// lifetime of the simulation. All state is mutated only from the device's
// own event handlers, which the host must dispatch synchronously and in
// stimulus order; the device itself never blocks or buffers.
type Device struct {
	// The fixed part of the bus address, OR-combined with the select bits.
	base uint8

	// The currently resolved 7-bit bus address.
	addr uint8

	// Address select inputs, least significant bit first.
	selects [NumSelectLines]Pin

	// The open-drain interrupt output.
	nint Pin

	// The I/O lines, port 0 at offsets 0..7 and port 1 at offsets 8..15.
	lines [NumLines]Pin

	// Classification of each line; a set bit marks a monitored input,
	// a clear bit an output driven low. Kept in lockstep with the
	// electrical mode of the corresponding line.
	inputMask uint16

	// Combined input value as of the last monitored change. Bits of
	// output-classified lines are stale.
	inputValue uint16

	// Input value snapshot taken when a read transaction connected;
	// the interrupt comparison baseline.
	lastRead uint16

	// The phase of the current bus transaction.
	state txState

	// The port the next transferred byte addresses.
	cursor int

	logger *log.Logger
}

// New allocates the device's pins from host and powers up the chip.
//
// On power-up all sixteen I/O lines are monitored inputs with pull-ups,
// the interrupt line is released, and the bus address is resolved from
// the live levels of the select lines.
//
// The available options are [WithBaseAddress] and [WithLogger].
//
// Any pin allocation failure aborts initialization; there is no degraded
// mode.
func New(host Host, options ...Option) (*Device, error) {
	d := &Device{
		base:   DefaultBaseAddress,
		logger: log.New(io.Discard),
	}
	for _, o := range options {
		o.applyOption(d)
	}

	var err error
	for i := range d.selects {
		if d.selects[i], err = host.Pin(selectName(i), ModeInput); err != nil {
			return nil, errors.Wrapf(err, "allocating select line %s", selectName(i))
		}
		d.selects[i].Watch(func(int) { d.onSelectChanged() })
	}
	if d.nint, err = host.Pin("nINT", ModeInput); err != nil {
		return nil, errors.Wrap(err, "allocating interrupt line")
	}
	for i := range d.lines {
		if d.lines[i], err = host.Pin(lineName(i), ModeInputPullup); err != nil {
			return nil, errors.Wrapf(err, "allocating line %s", lineName(i))
		}
		d.lines[i].Watch(func(int) { d.onInputChanged() })
	}

	d.inputMask = 0xffff
	d.inputValue = 0xffff
	d.addr = d.resolveAddress()
	d.setInterrupt(false)
	d.logger.Info("device initialized", "address", hexByte(d.addr))
	return d, nil
}

// Close cancels all pin monitoring and releases the interrupt line.
//
// The device no longer reacts to pin changes once closed; bus handlers
// must not be invoked after Close.
func (d *Device) Close() {
	for _, p := range d.selects {
		p.Unwatch()
	}
	for _, p := range d.lines {
		p.Unwatch()
	}
	d.setInterrupt(false)
	d.state = txIdle
}

// Address returns the currently resolved 7-bit bus address.
func (d *Device) Address() uint8 {
	return d.addr
}

// InputMask returns the 16-bit classification mask. A set bit marks the
// corresponding line as a monitored input, a clear bit an output driven
// low.
func (d *Device) InputMask() uint16 {
	return d.inputMask
}

// InputValue returns the combined input value as of the last monitored
// change. Bits of output-classified lines are stale.
func (d *Device) InputValue() uint16 {
	return d.inputValue
}

// IsInput reports whether the line at offset is currently classified as
// a monitored input.
func (d *Device) IsInput(offset int) bool {
	return d.isInput(offset)
}

// resolveAddress combines the live select line levels, least significant
// bit first, with the base address.
func (d *Device) resolveAddress() uint8 {
	var sel uint8
	for i, p := range d.selects {
		if p.Level() == LevelHigh {
			sel |= 1 << i
		}
	}
	return d.base | sel
}

// onSelectChanged re-resolves the bus address whenever a select line
// changes level. Incoming connects are matched against the live address,
// so no bus-layer reconfiguration is needed.
func (d *Device) onSelectChanged() {
	d.addr = d.resolveAddress()
	d.logger.Debug("address resolved", "address", hexByte(d.addr))
}

// onInputChanged rebuilds the combined input value and re-evaluates the
// interrupt condition against the value last delivered to a bus read.
//
// The comparison runs on every monitored change, so the interrupt both
// raises and clears itself as the inputs diverge from and reconverge to
// the baseline. Transients between two evaluations read as "no change",
// as on the real chip.
func (d *Device) onInputChanged() {
	d.inputValue = d.readInputs()
	d.setInterrupt(d.inputValue != d.lastRead)
	d.logger.Debug("input changed",
		"value", hexWord(d.inputValue), "last", hexWord(d.lastRead))
}

// readInputs assembles the 16-bit input value from the live levels of
// the input-classified lines. Output-classified lines are not read and
// their bits are left clear.
func (d *Device) readInputs() uint16 {
	var v uint16
	for i, p := range d.lines {
		if !d.isInput(i) {
			continue
		}
		if p.Level() == LevelHigh {
			v |= 1 << i
		}
	}
	return v
}

// setInterrupt drives the open-drain interrupt line: low when asserted,
// released to high impedance otherwise.
func (d *Device) setInterrupt(assert bool) {
	if assert {
		d.nint.SetMode(ModeOutputLow)
		d.logger.Debug("interrupt asserted")
		return
	}
	d.nint.SetMode(ModeInput)
}

func (d *Device) isInput(offset int) bool {
	return d.inputMask&(1<<offset) != 0
}

func (d *Device) classifyInput(offset int) {
	d.inputMask |= 1 << offset
}

func (d *Device) classifyOutput(offset int) {
	d.inputMask &^= 1 << offset
}

// selectName returns the datasheet name for select line i ("A0".."A2").
func selectName(i int) string {
	return fmt.Sprintf("A%d", i)
}

// lineName returns the datasheet name for the I/O line at offset
// ("P00".."P07", "P10".."P17").
func lineName(offset int) string {
	return fmt.Sprintf("P%d%d", offset/LinesPerPort, offset%LinesPerPort)
}

func hexByte(v uint8) string {
	return fmt.Sprintf("0x%02x", v)
}

func hexWord(v uint16) string {
	return fmt.Sprintf("0x%04x", v)
}
