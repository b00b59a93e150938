// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package mhz19

import (
	"errors"
	"fmt"
	"io"
	"time"
)

// Frame layout constants. Every request and response is exactly 9 bytes:
// a fixed start byte, the sensor number, a command byte, five data bytes
// and a trailing checksum over bytes 1..7.
const (
	frameLen  = 9
	startByte = 0xff
	sensorNum = 0x01
)

// Errors returned by the driver, usable with errors.Is. Transport failures
// are returned wrapped as-is.
var (
	// ErrChecksum means a response frame was received in full but its
	// trailing checksum byte does not match the payload.
	ErrChecksum = errors.New("mhz19: checksum mismatch")
	// ErrShortRead means the sensor stopped sending mid-frame, or did not
	// answer before the read budget ran out.
	ErrShortRead = errors.New("mhz19: short read")
)

type command struct {
	// The command byte placed at offset 2 of the request frame.
	code byte
	// True if the sensor answers with a 9-byte response frame.
	hasResponse bool
}

// The implemented subset of the MH-Z19 command set.

var cmdGasConcentration = command{code: 0x86, hasResponse: true}
var cmdCalibrateZero = command{code: 0x87}
var cmdSetRange = command{code: 0x99}
var cmdSelfCalibration = command{code: 0x79}

// Dev represents an MH-Z19 sensor on the other end of a byte stream.
//
// The driver holds exactly one transport handle and performs no retries or
// reconnects of its own. On any error the caller should Close() the device,
// discard it and construct a fresh one before trying again.
type Dev struct {
	t io.ReadWriteCloser
	// Number of zero-length reads tolerated while waiting for a response.
	// Each one represents a transport read timeout.
	maxReadAttempts int
	// Pause between read attempts for transports without a blocking
	// timeout of their own.
	readRetryDelay time.Duration
}

// New creates an MH-Z19 device from an open byte stream, typically a serial
// port configured for 9600 8N1 with a read timeout in the order of 100ms.
func New(t io.ReadWriteCloser) *Dev {
	return &Dev{
		t:               t,
		maxReadAttempts: 20,
		readRetryDelay:  time.Millisecond,
	}
}

// GasConcentration reads the current CO2 concentration in parts per million.
func (d *Dev) GasConcentration() (int, error) {
	resp, err := d.sendCommand(cmdGasConcentration, nil)
	if err != nil {
		return 0, err
	}
	return int(resp[2])<<8 | int(resp[3]), nil
}

// SetSelfCalibration enables or disables the automatic baseline correction
// the sensor performs every 24h. Disable it for use in spaces that are never
// ventilated down to outdoor CO2 levels.
func (d *Dev) SetSelfCalibration(enabled bool) error {
	data := []byte{0x00}
	if enabled {
		data[0] = 0xa0
	}
	_, err := d.sendCommand(cmdSelfCalibration, data)
	return err
}

// CalibrateZero makes the sensor take its current reading as the 400ppm
// baseline. Only use this after at least 20 minutes in outdoor air.
func (d *Dev) CalibrateZero() error {
	_, err := d.sendCommand(cmdCalibrateZero, nil)
	return err
}

// SetRange sets the detection range in ppm. The sensor supports 2000 or
// 5000.
func (d *Dev) SetRange(ppm int) error {
	if ppm != 2000 && ppm != 5000 {
		return fmt.Errorf("mhz19: unsupported range %dppm", ppm)
	}
	_, err := d.sendCommand(cmdSetRange, []byte{byte(ppm >> 8), byte(ppm)})
	return err
}

// Close closes the underlying transport.
func (d *Dev) Close() error {
	return d.t.Close()
}

func (d *Dev) String() string {
	return "mhz19"
}

// All sensor exchanges go through this function. It writes one request
// frame and, for commands that answer, reads and validates one response
// frame.
func (d *Dev) sendCommand(cmd command, data []byte) ([]byte, error) {
	req := buildFrame(cmd.code, data)
	if n, err := d.t.Write(req[:]); err != nil {
		return nil, fmt.Errorf("mhz19: cmd 0x%02x: %w", cmd.code, err)
	} else if n != len(req) {
		return nil, fmt.Errorf("mhz19: cmd 0x%02x: wrote %d of %d bytes", cmd.code, n, len(req))
	}
	if !cmd.hasResponse {
		return nil, nil
	}

	resp, err := d.readFrame()
	if err != nil {
		return nil, fmt.Errorf("mhz19: cmd 0x%02x: %w", cmd.code, err)
	}
	if resp[frameLen-1] != checksum(resp[1:frameLen-1]) {
		return nil, fmt.Errorf("mhz19: cmd 0x%02x: %w", cmd.code, ErrChecksum)
	}
	return resp, nil
}

// readFrame reads exactly one 9-byte frame. Serial transports with a read
// timeout return zero-length reads while the line is idle; a bounded number
// of those is tolerated before giving up.
func (d *Dev) readFrame() ([]byte, error) {
	buf := make([]byte, frameLen)
	read := 0
	for attempt := 0; read < frameLen; attempt++ {
		if attempt >= d.maxReadAttempts {
			return nil, fmt.Errorf("%w: %d of %d bytes", ErrShortRead, read, frameLen)
		}
		n, err := d.t.Read(buf[read:])
		if err == io.EOF && read+n < frameLen {
			return nil, fmt.Errorf("%w: %d of %d bytes", ErrShortRead, read+n, frameLen)
		} else if err != nil && err != io.EOF {
			return nil, err
		}
		read += n
		if n == 0 {
			time.Sleep(d.readRetryDelay)
		}
	}
	return buf, nil
}

// buildFrame assembles a request frame for the given command byte. data may
// hold up to five bytes and is zero-padded.
func buildFrame(code byte, data []byte) [frameLen]byte {
	frame := [frameLen]byte{startByte, sensorNum, code}
	copy(frame[3:frameLen-1], data)
	frame[frameLen-1] = checksum(frame[1 : frameLen-1])
	return frame
}

// checksum computes the MH-Z19 frame checksum over bytes 1..7 of a frame,
// which is the two's complement of their modular sum.
func checksum(payload []byte) byte {
	var sum byte
	for _, b := range payload {
		sum += b
	}
	return (0xff - sum) + 1
}
