// SPDX-FileCopyrightText: 2023 Martin Berlin
//
// SPDX-License-Identifier: MIT

package pca9535

// PinMode is an electrical mode the device applies to one of its pins.
type PinMode int

const (
	// ModeInput leaves the pin high impedance, neither driven nor pulled.
	ModeInput PinMode = iota

	// ModeInputPullup configures the pin as an input with a weak pull-up.
	ModeInputPullup

	// ModeOutputLow drives the pin to ground.
	ModeOutputLow
)

const (
	// LevelLow is ground.
	LevelLow int = iota

	// LevelHigh is the supply rail.
	LevelHigh
)

// Pin is the device's handle on a single electrical connection in the
// host's pin model.
//
// The device calls these methods only from within its own event handlers.
// Watch callbacks must be dispatched synchronously and in stimulus order;
// the pin model must not buffer a level change past a subsequent bus
// event.
type Pin interface {
	// SetMode applies an electrical mode to the pin.
	SetMode(mode PinMode)

	// Level returns the pin's current electrical level, LevelLow or
	// LevelHigh.
	Level() int

	// Watch subscribes fn to level changes on the pin, replacing any
	// previous subscription.
	Watch(fn func(level int))

	// Unwatch cancels any change subscription on the pin.
	Unwatch()
}

// Host allocates named pins within the simulated circuit.
//
// Pin is called once per device pin during [New], with the pin's
// power-up mode. A failure aborts device initialization.
type Host interface {
	Pin(name string, mode PinMode) (Pin, error)
}
