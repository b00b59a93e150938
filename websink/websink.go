// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package websink provides a display driver implementing an HTTP request
// handler. Clients get a PNG snapshot of the graphics buffer; the index
// page embeds it with a periodic refresh.
//
// The primary use case is checking on a deployed monitor from a browser,
// or developing display output on a host machine.
package websink

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"net/http"
	"sync"

	"periph.io/x/conn/v3/display"
)

// Options for websink devices.
type Options struct {
	// Width and height of the image buffer.
	Width, Height int

	// RefreshInterval is the refresh period in seconds suggested to
	// browsers viewing the index page. Zero means 1 second.
	RefreshInterval int
}

type Display struct {
	refreshInterval int

	mu       sync.Mutex
	buffer   *image.RGBA
	snapshot []byte
}

var _ display.Drawer = (*Display)(nil)
var _ http.Handler = (*Display)(nil)

// New creates a new websink device instance.
func New(opt *Options) *Display {
	buffer := image.NewRGBA(image.Rect(0, 0, opt.Width, opt.Height))

	// By default the alpha channel is set to full transparency. The
	// following draw operation makes it opaque.
	draw.Draw(buffer, buffer.Bounds(), image.Black, image.Point{}, draw.Src)

	refresh := opt.RefreshInterval
	if refresh <= 0 {
		refresh = 1
	}
	return &Display{buffer: buffer, refreshInterval: refresh}
}

// String returns the name of the device.
func (d *Display) String() string {
	return "WebSink"
}

// Halt implements conn.Resource. There are no client resources to release;
// pending snapshot requests finish on their own.
func (d *Display) Halt() error {
	return nil
}

// ColorModel implements display.Drawer.
func (d *Display) ColorModel() color.Model {
	return d.buffer.ColorModel()
}

// Bounds implements display.Drawer.
func (d *Display) Bounds() image.Rectangle {
	return d.buffer.Bounds()
}

// Draw implements display.Drawer.
func (d *Display) Draw(dstRect image.Rectangle, src image.Image, srcPts image.Point) error {
	d.mu.Lock()
	draw.Draw(d.buffer, dstRect, src, srcPts, draw.Src)
	// Invalidate the encoded snapshot; it is re-encoded lazily on the
	// next request.
	d.snapshot = nil
	d.mu.Unlock()
	return nil
}

// ServeHTTP implements http.Handler. "/frame.png" returns the current
// frame; any other path returns a self-refreshing page embedding it.
func (d *Display) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/frame.png" {
		buf, err := d.encodeSnapshot()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "no-store")
		_, _ = w.Write(buf)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, `<!DOCTYPE html>
<title>%s</title>
<meta http-equiv="refresh" content="%d">
<img src="/frame.png" alt="display">
`, d.String(), d.refreshInterval)
}

func (d *Display) encodeSnapshot() ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.snapshot == nil {
		var buf bytes.Buffer
		if err := png.Encode(&buf, d.buffer); err != nil {
			return nil, err
		}
		d.snapshot = buf.Bytes()
	}
	return d.snapshot, nil
}
