// SPDX-FileCopyrightText: 2023 Martin Berlin
//
// SPDX-License-Identifier: MIT

package pca9535

import "github.com/charmbracelet/log"

// Option defines the interface required to provide an option to New.
type Option interface {
	applyOption(*Device)
}

// BaseAddressOption defines the fixed part of the device's bus address.
type BaseAddressOption uint8

// WithBaseAddress returns an option that sets the fixed part of the
// device's bus address, replacing [DefaultBaseAddress]. The select lines
// are OR-combined into the low three bits.
func WithBaseAddress(base uint8) BaseAddressOption {
	return BaseAddressOption(base)
}

func (o BaseAddressOption) applyOption(d *Device) {
	d.base = uint8(o)
}

// LoggerOption defines the logger for device diagnostics.
type LoggerOption struct {
	logger *log.Logger
}

// WithLogger returns an option that directs the device's diagnostics to
// logger. Diagnostics never alter protocol behavior and are discarded by
// default.
func WithLogger(logger *log.Logger) LoggerOption {
	return LoggerOption{logger}
}

func (o LoggerOption) applyOption(d *Device) {
	d.logger = o.logger
}
