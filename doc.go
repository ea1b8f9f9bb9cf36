// SPDX-FileCopyrightText: 2023 Martin Berlin
//
// SPDX-License-Identifier: MIT

/*
Package pca9535 emulates the NXP PCA9535 16-bit I2C GPIO expander for use
inside digital circuit simulators.

The device owns twenty pins in the host's electrical model: three address
select inputs (A0..A2), sixteen quasi-bidirectional I/O lines (P00..P17,
grouped into two 8-bit ports) and the open-drain interrupt output nINT.
The host supplies these through the narrow [Host] and [Pin] capability
interfaces and dispatches pin and bus events synchronously into the
device's handlers, in stimulus order.

Writing a byte over the bus reclassifies the eight lines of the active
port: a set bit turns the line into a monitored input with a pull-up, a
clear bit into an output driven low. Reading returns the combined input
value, one port per byte. The active port toggles after every transferred
byte and resets to port 0 on each connect, so transfers longer than two
bytes simply cycle over the two ports.

Any change on a monitored input rebuilds the combined input value and
compares it to the value last delivered over the bus: the interrupt line
is driven low when they differ and released when they match again, so an
interrupt can both raise and clear itself without a read ever occurring.
A connect for read snapshots the comparison baseline and releases the
interrupt before the first byte is transferred. Changes that revert, or
that combine to reproduce the last delivered value, read as "no change";
the real chip behaves the same way.

The device never gates on its bus address: every connection is treated as
addressed to it and acknowledged, with a mismatch against the resolved
address reported as a diagnostic only.

The pinsim subpackage provides an in-memory pin fabric for exercising the
device without a full simulator, and i2cbus an in-memory implementation
of periph.io/x/conn/v3/i2c.Bus that delivers master transactions to
emulated devices.

# Example Usage

Power up a device on an in-memory circuit, configure the low port and
read back the input value:

	circuit := pinsim.New()
	dev, err := pca9535.New(circuit)

	dev.OnConnect(dev.Address(), false)
	dev.OnByteWrite(0xf0) // P00..P03 output low, P04..P07 input
	dev.OnByteWrite(0xff) // P10..P17 input
	dev.OnDisconnect()

	circuit.Pulldown("P05")

	dev.OnConnect(dev.Address(), true)
	port0 := dev.OnByteRead()
	port1 := dev.OnByteRead()
	dev.OnDisconnect()
*/
package pca9535
