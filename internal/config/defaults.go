// ABOUTME: Default configuration values and per-profile overlays
// ABOUTME: Common values apply everywhere; dev and prod override a few keys
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Sets default values for the configuration.
func setDefaults(v *viper.Viper) {
	v.SetDefault("profile", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("sensors.source", "simulated")
	v.SetDefault("sensors.defaults.temperature", 64.0)
	v.SetDefault("sensors.defaults.light", 50.0)
	v.SetDefault("sensors.daylight.enabled", false)
	v.SetDefault("sensors.daylight.latitude", 0.0)
	v.SetDefault("sensors.daylight.longitude", 0.0)
	v.SetDefault("sensors.daylight.day_level", 1000.0)
	v.SetDefault("sensors.daylight.night_level", 0.0)
	v.SetDefault("sensors.hardware.temperature_path", "/sys/bus/iio/devices/iio:device0/in_temp_input")
	v.SetDefault("sensors.hardware.light_path", "/sys/bus/iio/devices/iio:device1/in_illuminance_input")
	v.SetDefault("sensors.hardware.temperature_scale", 0.001)
	v.SetDefault("sensors.hardware.light_scale", 1.0)
	v.SetDefault("sensors.hardware.temperature_unit", "C")
	v.SetDefault("sensors.mqtt.broker", "tcp://localhost:1883")
	v.SetDefault("sensors.mqtt.client_id", "nightchorus")
	v.SetDefault("sensors.mqtt.username", "")
	v.SetDefault("sensors.mqtt.password", "")
	v.SetDefault("sensors.mqtt.temperature_topic", "nightchorus/sensors/temperature")
	v.SetDefault("sensors.mqtt.light_topic", "nightchorus/sensors/light")

	v.SetDefault("audio.volume", 75)
	v.SetDefault("audio.backend", "oto")
	v.SetDefault("audio.files", map[string]string{})

	v.SetDefault("playback.schedule", []map[string]any{
		{"species": "frogs", "start": []int{1, 15}, "end": []int{6, 30}},
		{"species": "crickets", "start": []int{7, 1}, "end": []int{11, 14}},
		{"species": "inactive", "start": []int{11, 15}, "end": []int{1, 14}},
	})
	v.SetDefault("playback.reference_temperature", 64.0)
	v.SetDefault("playback.light_threshold", 20.0)
	v.SetDefault("playback.loop", true)
	v.SetDefault("playback.timing.check_interval", 10*time.Second)
	v.SetDefault("playback.timing.playback_interval", 55*time.Second)
	v.SetDefault("playback.timing.fade_time", 5*time.Second)
	v.SetDefault("playback.timing.render_timeout", 30*time.Second)

	v.SetDefault("paths.data", "./data")
	v.SetDefault("paths.temp", "")

	v.SetDefault("ffmpeg.path", "")
	v.SetDefault("ffmpeg.sample_rate", 48000)

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.listen", ":9464")
}

// profileOverlays replace common defaults per profile. Lists are replaced
// wholesale, not merged.
var profileOverlays = map[string]map[string]any{
	ProfileDev: {
		"audio.volume": 50,
		"paths.data":   "./data/dev",
		"log.level":    "debug",
		"playback.schedule": []map[string]any{
			{"species": "frogs", "start": []int{1, 15}, "end": []int{6, 30}},
			{"species": "crickets", "start": []int{7, 1}, "end": []int{12, 31}},
			{"species": "inactive", "start": []int{1, 1}, "end": []int{1, 14}},
		},
	},
	ProfileProd: {
		"audio.volume": 100,
		"paths.data":   "./data/prod",
		"log.level":    "warn",
	},
}

// applyProfile layers the overlay as defaults so config files and the
// environment still take precedence over it.
func applyProfile(v *viper.Viper, profile string) error {
	overlay, ok := profileOverlays[profile]
	if !ok {
		return fmt.Errorf("%w: unknown profile %q", ErrInvalid, profile)
	}
	for key, value := range overlay {
		v.SetDefault(key, value)
	}
	return nil
}
