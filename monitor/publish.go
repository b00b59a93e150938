// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package monitor

import (
	"errors"
	"fmt"
	"path"
	"strconv"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/prometheus/client_golang/prometheus"
)

// MQTTPublisher delivers readings to an MQTT broker as retained messages,
// so subscribers see the latest value immediately.
type MQTTPublisher struct {
	c       mqtt.Client
	timeout time.Duration
}

// NewMQTTPublisher connects to the broker at brokerURL, e.g.
// "tcp://broker.local:1883".
func NewMQTTPublisher(brokerURL, clientID string) (*MQTTPublisher, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(brokerURL).
		SetClientID(clientID).
		SetAutoReconnect(true)
	c := mqtt.NewClient(opts)
	t := c.Connect()
	if !t.WaitTimeout(10 * time.Second) {
		return nil, errors.New("monitor: mqtt connect timeout")
	}
	if err := t.Error(); err != nil {
		return nil, fmt.Errorf("monitor: mqtt connect: %w", err)
	}
	return &MQTTPublisher{c: c, timeout: 5 * time.Second}, nil
}

// Publish implements Publisher.
func (p *MQTTPublisher) Publish(topic, value string) error {
	t := p.c.Publish(topic, 0, true, value)
	if !t.WaitTimeout(p.timeout) {
		return fmt.Errorf("monitor: mqtt publish %s: timeout", topic)
	}
	if err := t.Error(); err != nil {
		return fmt.Errorf("monitor: mqtt publish %s: %w", topic, err)
	}
	return nil
}

// Close disconnects from the broker.
func (p *MQTTPublisher) Close() {
	p.c.Disconnect(250)
}

// PrometheusPublisher exposes the readings as gauges. The topic leaf
// selects the gauge; unknown topics are ignored.
type PrometheusPublisher struct {
	gauges map[string]prometheus.Gauge
}

// NewPrometheusPublisher creates the gauges and registers them with reg.
func NewPrometheusPublisher(reg prometheus.Registerer) *PrometheusPublisher {
	newGauge := func(name, help string) prometheus.Gauge {
		g := prometheus.NewGauge(prometheus.GaugeOpts{Name: name, Help: help})
		reg.MustRegister(g)
		return g
	}
	return &PrometheusPublisher{gauges: map[string]prometheus.Gauge{
		"co2":         newGauge("air_co2_level", "Air Carbon Dioxide level (units: ppm)"),
		"temperature": newGauge("air_temperature", "Air Temperature (units: degrees Celsius)"),
		"pressure":    newGauge("air_atm_pressure", "Atmospheric Pressure (units: hPa)"),
		"humidity":    newGauge("air_humidity", "Humidity (units: % of relative Humidity)"),
	}}
}

// Publish implements Publisher.
func (p *PrometheusPublisher) Publish(topic, value string) error {
	g, ok := p.gauges[path.Base(topic)]
	if !ok {
		return nil
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("monitor: unparseable value for %s: %w", topic, err)
	}
	g.Set(v)
	return nil
}
