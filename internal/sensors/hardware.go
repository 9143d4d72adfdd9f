// ABOUTME: Sensor source backed by Linux IIO sysfs attributes
// ABOUTME: Reads raw values, scales them and keeps the last good reading on failure
package sensors

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/harperreed/nightchorus/internal/config"
)

// Hardware reads a temperature and an illuminance attribute, e.g.
// /sys/bus/iio/devices/iio:device0/in_temp_input.
type Hardware struct {
	cfg    config.HardwareSettings
	logger *slog.Logger

	mu          sync.Mutex
	temperature float64
	light       float64
}

func NewHardware(cfg config.HardwareSettings, defaults config.SensorDefaults, logger *slog.Logger) *Hardware {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.TemperatureScale == 0 {
		cfg.TemperatureScale = 1
	}
	if cfg.LightScale == 0 {
		cfg.LightScale = 1
	}
	return &Hardware{
		cfg:         cfg,
		logger:      logger,
		temperature: defaults.Temperature,
		light:       defaults.Light,
	}
}

func (h *Hardware) ReadTemperature() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()

	raw, err := readAttribute(h.cfg.TemperaturePath)
	if err != nil {
		h.logger.Warn("temperature read failed, using last value", "error", err, "last", h.temperature)
		return h.temperature
	}
	v := raw * h.cfg.TemperatureScale
	if h.cfg.TemperatureUnit != "F" {
		v = fahrenheit(v)
	}
	if _, err := checkFinite(v); err != nil {
		h.logger.Warn("temperature out of range, using last value", "error", err, "last", h.temperature)
		return h.temperature
	}
	h.temperature = v
	return v
}

func (h *Hardware) ReadLight() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()

	raw, err := readAttribute(h.cfg.LightPath)
	if err != nil {
		h.logger.Warn("light read failed, using last value", "error", err, "last", h.light)
		return h.light
	}
	v, err := checkFinite(raw * h.cfg.LightScale)
	if err != nil {
		h.logger.Warn("light out of range, using last value", "error", err, "last", h.light)
		return h.light
	}
	h.light = v
	return v
}

func (h *Hardware) Close() error { return nil }

func readAttribute(path string) (float64, error) {
	if path == "" {
		return 0, fmt.Errorf("no sysfs path configured")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	v, err := parseReading(string(data))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", path, err)
	}
	return v, nil
}
