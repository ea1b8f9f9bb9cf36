// SPDX-FileCopyrightText: 2023 Martin Berlin
//
// SPDX-License-Identifier: MIT

package pca9535_test

import (
	"fmt"

	pca9535 "github.com/martinberlin/wokwi-pca9535"
	"github.com/martinberlin/wokwi-pca9535/pinsim"
)

func Example() {
	circuit := pinsim.New()
	dev, err := pca9535.New(circuit)
	if err != nil {
		panic(err)
	}
	defer dev.Close()

	// configure the low port: P00..P03 output low, P04..P07 input
	dev.OnConnect(dev.Address(), false)
	dev.OnByteWrite(0xf0)
	dev.OnByteWrite(0xff)
	dev.OnDisconnect()

	// a button elsewhere in the circuit pulls P05 to ground
	circuit.Pulldown("P05")

	dev.OnConnect(dev.Address(), true)
	fmt.Printf("port0 0x%02x\n", dev.OnByteRead())
	fmt.Printf("port1 0x%02x\n", dev.OnByteRead())
	dev.OnDisconnect()

	// Output:
	// port0 0xd0
	// port1 0xff
}
