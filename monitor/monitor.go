// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package monitor runs the measurement loop: one CO2 read, one climate
// read, one aggregation step and one render per cycle, followed by a fixed
// sleep. Everything is strictly sequential; no state is shared outside the
// loop.
//
// No failure is fatal. A CO2 driver error discards the transport handle and
// a fresh one is opened on the next cycle; climate and telemetry failures
// are logged and the loop continues, keeping the display as available as
// possible.
package monitor

import (
	"context"
	"fmt"
	"path"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/physic"

	"github.com/polyfloyd/sha2017-badge-co2-sensor/sampling"
	"github.com/polyfloyd/sha2017-badge-co2-sensor/timeaxis"
	"github.com/polyfloyd/sha2017-badge-co2-sensor/ui"
)

// CO2Sensor is the subset of the mhz19 driver the loop needs.
type CO2Sensor interface {
	GasConcentration() (int, error)
	Close() error
}

// ClimateSensor is satisfied by bmxx80 and the other periph environmental
// sensors.
type ClimateSensor interface {
	Sense(e *physic.Env) error
}

// Renderer is satisfied by ui.UI.
type Renderer interface {
	Draw(co2 float64, history []int, labels map[int]string, climate ui.Climate, message string) error
}

// Publisher delivers one stringified reading to a telemetry sink.
type Publisher interface {
	Publish(topic, value string) error
}

// Config holds the loop parameters.
type Config struct {
	// Interval is the cycle period, one sensor read per cycle.
	Interval time.Duration
	// HistoryRate admits one reading in every HistoryRate into the
	// history.
	HistoryRate int
	// HistoryLen is the history capacity, one reading per plot column.
	HistoryLen int
	// SmoothWindow is the number of readings averaged into the headline
	// figure.
	SmoothWindow int
	// TopicPrefix is prepended to the per-value telemetry topics.
	TopicPrefix string
}

// DefaultConfig matches a 128 column display polled once a second.
var DefaultConfig = Config{
	Interval:     time.Second,
	HistoryRate:  30,
	HistoryLen:   128,
	SmoothWindow: 4,
	TopicPrefix:  "sensors/co2monitor",
}

// Loop owns all mutable monitor state for the process lifetime.
type Loop struct {
	cfg        Config
	openSensor func() (CO2Sensor, error)
	climate    ClimateSensor
	renderer   Renderer
	publishers []Publisher
	now        func() time.Time

	sensor      CO2Sensor
	agg         *sampling.Aggregator
	lastClimate ui.Climate
	message     string
}

// New creates a monitor loop. openSensor is called whenever a fresh CO2
// transport handle is needed; climate may be nil if no climate sensor is
// attached.
func New(cfg Config, openSensor func() (CO2Sensor, error), climate ClimateSensor, renderer Renderer, publishers ...Publisher) *Loop {
	return &Loop{
		cfg:        cfg,
		openSensor: openSensor,
		climate:    climate,
		renderer:   renderer,
		publishers: publishers,
		now:        time.Now,
		agg:        sampling.NewAggregator(cfg.HistoryLen, cfg.HistoryRate, cfg.SmoothWindow),
	}
}

// Run cycles until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) {
	ticker := time.NewTicker(l.cfg.Interval)
	defer ticker.Stop()
	for {
		l.step()
		select {
		case <-ctx.Done():
			if l.sensor != nil {
				_ = l.sensor.Close()
			}
			return
		case <-ticker.C:
		}
	}
}

// step performs a single cycle.
func (l *Loop) step() {
	if l.sensor == nil {
		s, err := l.openSensor()
		if err != nil {
			log.Errorf("failed to open co2 sensor: %s", err)
			return
		}
		l.sensor = s
	}

	co2, err := l.sensor.GasConcentration()
	if err != nil {
		// The transport is not assumed self-healing; discard it and
		// have the next cycle start from a fresh handle.
		log.Errorf("failed to read co2 sensor: %s", err)
		_ = l.sensor.Close()
		l.sensor = nil
		return
	}
	log.Debugf("co2: %d ppm", co2)

	if l.climate != nil {
		var env physic.Env
		if err := l.climate.Sense(&env); err != nil {
			// Keep going with the last known reading.
			log.Errorf("failed to read climate sensor: %s", err)
			l.message = "climate sensor offline"
		} else {
			l.lastClimate = climateFromEnv(env)
			l.message = ""
			log.Debugf("temperature: %.2fC, pressure: %.2fhPa, humidity: %.2f%%",
				l.lastClimate.Temperature, l.lastClimate.Pressure, l.lastClimate.Humidity)
		}
	}

	l.agg.Push(co2)

	secondsPerSample := l.cfg.HistoryRate * int(l.cfg.Interval/time.Second)
	if secondsPerSample < 1 {
		secondsPerSample = 1
	}
	labels := timeaxis.Labels(l.now(), secondsPerSample, l.cfg.HistoryLen)

	current, _ := l.agg.Current()
	if err := l.renderer.Draw(current, l.agg.History(), labels, l.lastClimate, l.message); err != nil {
		log.Errorf("failed to draw: %s", err)
	}

	l.publish(co2)
}

// publish fans the cycle's readings out to all telemetry sinks. Failures
// are logged per sink and never interrupt the loop.
func (l *Loop) publish(co2 int) {
	values := map[string]string{
		"co2":         strconv.Itoa(co2),
		"temperature": fmt.Sprintf("%.2f", l.lastClimate.Temperature),
		"pressure":    fmt.Sprintf("%.2f", l.lastClimate.Pressure),
		"humidity":    fmt.Sprintf("%.2f", l.lastClimate.Humidity),
	}
	for _, p := range l.publishers {
		for name, value := range values {
			if err := p.Publish(path.Join(l.cfg.TopicPrefix, name), value); err != nil {
				log.Errorf("failed to publish %s: %s", name, err)
			}
		}
	}
}

func climateFromEnv(env physic.Env) ui.Climate {
	return ui.Climate{
		Temperature: env.Temperature.Celsius(),
		Pressure:    float64(env.Pressure) / (100 * float64(physic.Pascal)),
		Humidity:    float64(env.Humidity) / float64(physic.PercentRH),
	}
}
