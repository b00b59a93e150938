// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// co2monitor polls an MH-Z19 CO2 sensor and a BME280 climate sensor,
// renders a rolling history to a display and optionally publishes the
// readings over MQTT and Prometheus.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang/freetype/truetype"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.bug.st/serial"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/bmxx80"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/host/v3"

	"github.com/polyfloyd/sha2017-badge-co2-sensor/mhz19"
	"github.com/polyfloyd/sha2017-badge-co2-sensor/monitor"
	"github.com/polyfloyd/sha2017-badge-co2-sensor/termdisplay"
	"github.com/polyfloyd/sha2017-badge-co2-sensor/ui"
	"github.com/polyfloyd/sha2017-badge-co2-sensor/websink"
)

// CLI args
var (
	serialPort   = flag.String("serial-port", "/dev/ttyS0", "serial port the MH-Z19 is attached to")
	i2cBus       = flag.String("i2c-bus", "", "I2C bus for climate sensor and display, empty selects the first available")
	bmeAddr      = flag.Uint("bme280-addr", 0x76, "I2C address of the BME280, 0 disables the climate sensor")
	displayType  = flag.String("display", "ssd1306", "display backend: ssd1306, term or web")
	listenAddr   = flag.String("listen-address", ":8080", "address to listen on for /metrics and the web display")
	mqttBroker   = flag.String("mqtt-broker", "", "MQTT broker URL, e.g. tcp://broker.local:1883, empty disables MQTT")
	mqttPrefix   = flag.String("mqtt-prefix", "sensors/co2monitor", "topic prefix for published readings")
	readInterval = flag.Duration("read-int", time.Second, "time interval between sensor reads")
	historyRate  = flag.Int("history-rate", 30, "number of reads between history samples")
	smoothWindow = flag.Int("smooth-window", 4, "number of reads averaged into the displayed value")
	abc          = flag.Bool("self-calibration", true, "leave the sensor's automatic baseline correction enabled")
)

func init() {
	formatter := &log.TextFormatter{
		FullTimestamp: true,
	}
	log.SetFormatter(formatter)
}

func main() {
	flag.Parse()

	if _, err := host.Init(); err != nil {
		log.Fatalf("failed to initialize periph: %s", err)
	}

	dev, err := openDisplay()
	if err != nil {
		log.Fatalf("failed to initialize display: %s", err)
	}

	big, small, err := loadFonts()
	if err != nil {
		log.Fatalf("failed to load fonts: %s", err)
	}

	var climate monitor.ClimateSensor
	if *bmeAddr != 0 {
		b, err := i2creg.Open(*i2cBus)
		if err != nil {
			log.Fatalf("failed to open i2c bus: %s", err)
		}
		bme, err := bmxx80.NewI2C(b, uint16(*bmeAddr), &bmxx80.DefaultOpts)
		if err != nil {
			// The display keeps working without climate readings.
			log.Errorf("failed to initialize bme280: %s", err)
		} else {
			climate = bme
		}
	}

	cfg := monitor.DefaultConfig
	cfg.Interval = *readInterval
	cfg.HistoryRate = *historyRate
	cfg.HistoryLen = dev.Bounds().Dx()
	cfg.SmoothWindow = *smoothWindow
	cfg.TopicPrefix = *mqttPrefix

	publishers := []monitor.Publisher{
		monitor.NewPrometheusPublisher(prometheus.DefaultRegisterer),
	}
	if *mqttBroker != "" {
		p, err := monitor.NewMQTTPublisher(*mqttBroker, "co2monitor")
		if err != nil {
			log.Errorf("failed to connect to mqtt broker: %s", err)
		} else {
			defer p.Close()
			publishers = append(publishers, p)
		}
	}

	go func() {
		http.Handle("/metrics", promhttp.Handler())
		log.Panic(http.ListenAndServe(*listenAddr, nil))
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	loop := monitor.New(cfg, openSensor, climate, ui.New(dev, big, small), publishers...)
	loop.Run(ctx)

	if err := dev.Halt(); err != nil {
		log.Errorf("failed to halt display: %s", err)
	}
}

// openSensor opens the serial port and constructs a fresh MH-Z19 driver.
// Called by the loop on startup and again after every communication
// failure.
func openSensor() (monitor.CO2Sensor, error) {
	mode := &serial.Mode{
		BaudRate: 9600,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(*serialPort, mode)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", *serialPort, err)
	}
	if err := port.SetReadTimeout(100 * time.Millisecond); err != nil {
		_ = port.Close()
		return nil, err
	}
	dev := mhz19.New(port)
	if !*abc {
		if err := dev.SetSelfCalibration(false); err != nil {
			_ = dev.Close()
			return nil, err
		}
	}
	return dev, nil
}

func openDisplay() (display.Drawer, error) {
	switch *displayType {
	case "ssd1306":
		b, err := i2creg.Open(*i2cBus)
		if err != nil {
			return nil, err
		}
		return ssd1306.NewI2C(b, &ssd1306.DefaultOpts)
	case "term":
		return termdisplay.New(&termdisplay.Opts{W: 128, H: 64}), nil
	case "web":
		d := websink.New(&websink.Options{Width: 296, Height: 128})
		http.Handle("/", d)
		return d, nil
	}
	return nil, fmt.Errorf("unknown display type %q", *displayType)
}

// loadFonts parses the embedded typeface at the two sizes the UI uses.
func loadFonts() (big, small font.Face, err error) {
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, nil, err
	}
	big = truetype.NewFace(f, &truetype.Options{Size: 22})
	small = truetype.NewFace(f, &truetype.Options{Size: 10})
	return big, small, nil
}
