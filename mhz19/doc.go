// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package mhz19 provides a driver for the Winsen MH-Z19 family of NDIR CO2
// sensors. The sensor speaks a fixed 9-byte framed protocol over a 9600 8N1
// UART.
//
// The driver operates on any io.ReadWriteCloser, so it can be backed by a
// serial port implementation of your choosing. Configure the port with a
// bounded read timeout; the driver gives up on a response after a fixed
// number of empty reads.
//
// Datasheet:
//
// https://www.winsen-sensor.com/d/files/infrared-gas-sensor/mh-z19b-co2-ver1_0.pdf
package mhz19
