// SPDX-FileCopyrightText: 2023 Martin Berlin
//
// SPDX-License-Identifier: MIT

// Package i2cbus provides an in-memory I2C bus connecting periph.io
// masters to emulated devices.
//
// Bus implements periph.io/x/conn/v3/i2c.Bus, so host code written
// against periph, including its expander drivers, can run unmodified
// against an emulated chip.
package i2cbus

import (
	"github.com/pkg/errors"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

// Device is the device side of a bus transaction.
//
// *pca9535.Device satisfies this interface.
type Device interface {
	OnConnect(addr uint8, read bool) bool
	OnByteRead() byte
	OnByteWrite(b byte) bool
	OnDisconnect()
}

// Bus is an in-memory i2c.Bus.
//
// Every attached device sees every transaction, as on an open bus; it is
// up to each device whether to gate on the address. Read data is
// combined wired-AND across devices, matching open-drain electronics.
type Bus struct {
	name    string
	devices []Device
}

var _ i2c.Bus = (*Bus)(nil)

// New constructs an empty bus with the given name.
func New(name string) *Bus {
	return &Bus{name: name}
}

// Attach wires a device onto the bus.
func (b *Bus) Attach(dev Device) {
	b.devices = append(b.devices, dev)
}

// String returns the name of the bus.
func (b *Bus) String() string {
	return b.name
}

// SetSpeed is accepted and ignored; the bus has no timing model.
func (b *Bus) SetSpeed(f physic.Frequency) error {
	return nil
}

// Tx performs a write followed by a read as a single transaction, with a
// repeated start between the two phases and a single stop at the end,
// matching i2c.Bus semantics. Either phase may be empty, but not both.
//
// A byte or connect that no attached device acknowledges fails the
// transaction.
func (b *Bus) Tx(addr uint16, w, r []byte) error {
	if len(b.devices) == 0 {
		return errors.Errorf("%s: no devices attached", b.name)
	}
	if len(w) == 0 && len(r) == 0 {
		return errors.Errorf("%s: empty transaction", b.name)
	}
	defer b.disconnect()
	if len(w) > 0 {
		if !b.connect(addr, false) {
			return errors.Errorf("%s: no ack for write to %#02x", b.name, addr)
		}
		for _, by := range w {
			if !b.writeByte(by) {
				return errors.Errorf("%s: write to %#02x not acked", b.name, addr)
			}
		}
	}
	if len(r) > 0 {
		// repeated start
		if !b.connect(addr, true) {
			return errors.Errorf("%s: no ack for read from %#02x", b.name, addr)
		}
		for i := range r {
			r[i] = b.readByte()
		}
	}
	return nil
}

func (b *Bus) connect(addr uint16, read bool) bool {
	acked := false
	for _, dev := range b.devices {
		if dev.OnConnect(uint8(addr), read) {
			acked = true
		}
	}
	return acked
}

func (b *Bus) writeByte(by byte) bool {
	acked := false
	for _, dev := range b.devices {
		if dev.OnByteWrite(by) {
			acked = true
		}
	}
	return acked
}

// readByte combines the data supplied by every device wired-AND, the
// idle bus level being high.
func (b *Bus) readByte() byte {
	by := byte(0xff)
	for _, dev := range b.devices {
		by &= dev.OnByteRead()
	}
	return by
}

func (b *Bus) disconnect() {
	for _, dev := range b.devices {
		dev.OnDisconnect()
	}
}
