// SPDX-FileCopyrightText: 2023 Martin Berlin
//
// SPDX-License-Identifier: MIT

// Package pinsim provides an in-memory pin fabric for exercising emulated
// devices without a host simulator.
//
// A [Circuit] plays the electrical side of a device's pins. The device
// allocates pins through the pca9535.Host interface; the test, or any
// other code standing in for the rest of the circuit, applies external
// drive levels using [Circuit.SetPull] and related methods and inspects
// the results with [Circuit.Level] and [Circuit.Mode].
//
// Watch dispatch is synchronous: a level change caused by SetPull or by
// the device's own SetMode invokes the registered watcher before the
// call returns, so events are seen strictly in stimulus order.
package pinsim

import (
	"github.com/pkg/errors"

	pca9535 "github.com/martinberlin/wokwi-pca9535"
)

// floating marks a pin with no external drive applied.
const floating = -1

// Circuit is an in-memory pin fabric implementing pca9535.Host.
type Circuit struct {
	pins map[string]*pin
}

// New constructs an empty Circuit.
func New() *Circuit {
	return &Circuit{pins: make(map[string]*pin)}
}

// Pin allocates the named pin with the given power-up mode.
//
// Pin implements pca9535.Host. Allocating the same name twice is an
// error.
func (c *Circuit) Pin(name string, mode pca9535.PinMode) (pca9535.Pin, error) {
	if _, ok := c.pins[name]; ok {
		return nil, errors.Errorf("pin '%s' already allocated", name)
	}
	p := &pin{name: name, mode: mode, pull: floating}
	c.pins[name] = p
	return p, nil
}

// SetPull applies an external drive level to the named pin, as if a
// push-pull output elsewhere in the circuit were wired to it.
func (c *Circuit) SetPull(name string, level int) error {
	p, err := c.find(name)
	if err != nil {
		return err
	}
	p.update(func() { p.pull = level })
	return nil
}

// Pullup drives the named pin high externally.
func (c *Circuit) Pullup(name string) error {
	return c.SetPull(name, pca9535.LevelHigh)
}

// Pulldown drives the named pin low externally.
func (c *Circuit) Pulldown(name string) error {
	return c.SetPull(name, pca9535.LevelLow)
}

// Toggle externally drives the named pin to the opposite of its current
// resolved level.
func (c *Circuit) Toggle(name string) error {
	p, err := c.find(name)
	if err != nil {
		return err
	}
	target := pca9535.LevelHigh
	if p.level() == pca9535.LevelHigh {
		target = pca9535.LevelLow
	}
	p.update(func() { p.pull = target })
	return nil
}

// Release removes any external drive from the named pin, leaving it
// floating.
func (c *Circuit) Release(name string) error {
	p, err := c.find(name)
	if err != nil {
		return err
	}
	p.update(func() { p.pull = floating })
	return nil
}

// Level returns the resolved electrical level of the named pin.
func (c *Circuit) Level(name string) (int, error) {
	p, err := c.find(name)
	if err != nil {
		return pca9535.LevelLow, err
	}
	return p.level(), nil
}

// Mode returns the mode the device last applied to the named pin.
func (c *Circuit) Mode(name string) (pca9535.PinMode, error) {
	p, err := c.find(name)
	if err != nil {
		return pca9535.ModeInput, err
	}
	return p.mode, nil
}

// DrivenLow reports whether the device is driving the named pin low,
// i.e. whether an open-drain output on that pin is asserted.
func (c *Circuit) DrivenLow(name string) (bool, error) {
	m, err := c.Mode(name)
	return m == pca9535.ModeOutputLow, err
}

func (c *Circuit) find(name string) (*pin, error) {
	p, ok := c.pins[name]
	if !ok {
		return nil, errors.Errorf("no pin '%s' in circuit", name)
	}
	return p, nil
}

// pin is a single simulated electrical connection.
type pin struct {
	name string

	// The mode the device last applied.
	mode pca9535.PinMode

	// The externally applied level, or floating.
	pull int

	watcher func(level int)
}

func (p *pin) SetMode(mode pca9535.PinMode) {
	p.update(func() { p.mode = mode })
}

func (p *pin) Level() int {
	return p.level()
}

func (p *pin) Watch(fn func(level int)) {
	p.watcher = fn
}

func (p *pin) Unwatch() {
	p.watcher = nil
}

// level resolves the pin's electrical state: a device driving low wins,
// then any external drive, then the device's pull-up; a floating
// high-impedance input reads low.
func (p *pin) level() int {
	if p.mode == pca9535.ModeOutputLow {
		return pca9535.LevelLow
	}
	if p.pull != floating {
		return p.pull
	}
	if p.mode == pca9535.ModeInputPullup {
		return pca9535.LevelHigh
	}
	return pca9535.LevelLow
}

// update applies a mutation and notifies the watcher in-line if the
// resolved level changed.
func (p *pin) update(mutate func()) {
	before := p.level()
	mutate()
	after := p.level()
	if p.watcher != nil && before != after {
		p.watcher(after)
	}
}
