// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package websink

import (
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestServeFrame(t *testing.T) {
	d := New(&Options{Width: 8, Height: 4})

	src := image.NewRGBA(d.Bounds())
	src.SetRGBA(1, 1, color.RGBA{R: 255, A: 255})
	if err := d.Draw(d.Bounds(), src, image.Point{}); err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	d.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/frame.png", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("unexpected content type %q", ct)
	}

	img, err := png.Decode(rec.Body)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds() != d.Bounds() {
		t.Errorf("unexpected frame bounds %v", img.Bounds())
	}
	r, _, _, _ := img.At(1, 1).RGBA()
	if r != 0xffff {
		t.Errorf("expected the drawn pixel to survive encoding, received r=%#x", r)
	}
}

func TestServeIndex(t *testing.T) {
	d := New(&Options{Width: 8, Height: 4, RefreshInterval: 5})

	rec := httptest.NewRecorder()
	d.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `src="/frame.png"`) {
		t.Errorf("expected the index page to embed the frame, body %q", body)
	}
	if !strings.Contains(body, `content="5"`) {
		t.Errorf("expected the configured refresh interval, body %q", body)
	}
}

func TestSnapshotInvalidation(t *testing.T) {
	d := New(&Options{Width: 8, Height: 4})

	first, err := d.encodeSnapshot()
	if err != nil {
		t.Fatal(err)
	}

	src := image.NewRGBA(d.Bounds())
	src.SetRGBA(0, 0, color.RGBA{G: 255, A: 255})
	if err := d.Draw(d.Bounds(), src, image.Point{}); err != nil {
		t.Fatal(err)
	}

	second, err := d.encodeSnapshot()
	if err != nil {
		t.Fatal(err)
	}
	if string(first) == string(second) {
		t.Error("expected a draw to invalidate the encoded snapshot")
	}
}
