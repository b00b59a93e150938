// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package termdisplay implements a 2D display.Drawer that outputs to
// terminal (stdout) using ANSI color codes, one block character per pixel.
//
// Useful for developing the monitor UI on a host machine without an actual
// panel attached.
package termdisplay

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io"

	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"periph.io/x/conn/v3/display"
)

// Opts represents the options available for this display.
type Opts struct {
	W, H    int
	Palette *ansi256.Palette

	_ struct{}
}

// Dev is a pixel display emulator that outputs to the console.
type Dev struct {
	w       io.Writer
	palette ansi256.Palette

	buffer *image.NRGBA
	buf    bytes.Buffer
}

// New returns a Dev that displays at the console.
//
// Permits local testing of the monitor UI.
func New(opts *Opts) *Dev {
	p := opts.Palette
	if p == nil {
		p = ansi256.Default
	}
	return &Dev{
		w:       colorable.NewColorableStdout(),
		palette: *p,
		buffer:  image.NewNRGBA(image.Rect(0, 0, opts.W, opts.H)),
	}
}

func (d *Dev) String() string {
	return "TermDisplay"
}

// Halt implements conn.Resource.
//
// It resets the terminal attributes so the shell is not left corrupted.
func (d *Dev) Halt() error {
	_, err := d.w.Write([]byte("\n\033[0m"))
	return err
}

// ColorModel implements display.Drawer.
func (d *Dev) ColorModel() color.Model {
	return color.NRGBAModel
}

// Bounds implements display.Drawer.
func (d *Dev) Bounds() image.Rectangle {
	return d.buffer.Bounds()
}

// Draw implements display.Drawer.
func (d *Dev) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	r = r.Intersect(d.Bounds())
	draw.Draw(d.buffer, r, src, sp, draw.Src)
	return d.refresh()
}

func (d *Dev) refresh() error {
	// Rewind to the top-left corner and repaint the whole frame.
	b := d.Bounds()
	d.buf.Reset()
	fmt.Fprintf(&d.buf, "\033[%dA\r", b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			_, _ = io.WriteString(&d.buf, d.palette.Block(d.buffer.NRGBAAt(x, y)))
		}
		d.buf.WriteString("\033[0m\n")
	}
	_, err := d.buf.WriteTo(d.w)
	return err
}

var _ display.Drawer = &Dev{}
var _ fmt.Stringer = &Dev{}
