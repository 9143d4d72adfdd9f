// ABOUTME: Player configuration loaded through viper
// ABOUTME: Settings structs, config file discovery and profile selection
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/harperreed/nightchorus/internal/schedule"
	"github.com/spf13/viper"
)

// Profiles select an overlay on top of the common defaults.
const (
	ProfileDev  = "dev"
	ProfileProd = "prod"
)

// EnvPrefix is prepended to environment overrides, e.g. NIGHTCHORUS_PLAYBACK_LOOP.
const EnvPrefix = "NIGHTCHORUS"

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Settings is the complete player configuration.
type Settings struct {
	Profile  string           `mapstructure:"profile"`
	Log      LogSettings      `mapstructure:"log"`
	Sensors  SensorSettings   `mapstructure:"sensors"`
	Audio    AudioSettings    `mapstructure:"audio"`
	Playback PlaybackSettings `mapstructure:"playback"`
	Paths    PathSettings     `mapstructure:"paths"`
	FFmpeg   FFmpegSettings   `mapstructure:"ffmpeg"`
	Metrics  MetricsSettings  `mapstructure:"metrics"`
}

type LogSettings struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SensorSettings chooses and configures the temperature/light source.
type SensorSettings struct {
	Source   string           `mapstructure:"source"` // simulated, hardware or mqtt
	Defaults SensorDefaults   `mapstructure:"defaults"`
	Daylight DaylightSettings `mapstructure:"daylight"`
	Hardware HardwareSettings `mapstructure:"hardware"`
	MQTT     MQTTSettings     `mapstructure:"mqtt"`
}

type SensorDefaults struct {
	Temperature float64 `mapstructure:"temperature"`
	Light       float64 `mapstructure:"light"`
}

// DaylightSettings drives simulated light from the sun's position.
type DaylightSettings struct {
	Enabled    bool    `mapstructure:"enabled"`
	Latitude   float64 `mapstructure:"latitude"`
	Longitude  float64 `mapstructure:"longitude"`
	DayLevel   float64 `mapstructure:"day_level"`
	NightLevel float64 `mapstructure:"night_level"`
}

// HardwareSettings points at Linux IIO sysfs attributes.
type HardwareSettings struct {
	TemperaturePath  string  `mapstructure:"temperature_path"`
	LightPath        string  `mapstructure:"light_path"`
	TemperatureScale float64 `mapstructure:"temperature_scale"`
	LightScale       float64 `mapstructure:"light_scale"`
	TemperatureUnit  string  `mapstructure:"temperature_unit"` // unit the sensor reports in: C or F
}

type MQTTSettings struct {
	Broker           string `mapstructure:"broker"`
	ClientID         string `mapstructure:"client_id"`
	Username         string `mapstructure:"username"`
	Password         string `mapstructure:"password"`
	TemperatureTopic string `mapstructure:"temperature_topic"`
	LightTopic       string `mapstructure:"light_topic"`
}

type AudioSettings struct {
	Volume  int               `mapstructure:"volume"`
	Backend string            `mapstructure:"backend"`
	Files   map[string]string `mapstructure:"files"`
}

type PlaybackSettings struct {
	Schedule             []ScheduleEntry `mapstructure:"schedule"`
	ReferenceTemperature float64         `mapstructure:"reference_temperature"`
	LightThreshold       float64         `mapstructure:"light_threshold"`
	Loop                 bool            `mapstructure:"loop"`
	Timing               TimingSettings  `mapstructure:"timing"`
}

// ScheduleEntry is a species window as written in YAML: start/end are [month, day].
type ScheduleEntry struct {
	Species string `mapstructure:"species"`
	Start   []int  `mapstructure:"start"`
	End     []int  `mapstructure:"end"`
}

type TimingSettings struct {
	CheckInterval    time.Duration `mapstructure:"check_interval"`
	PlaybackInterval time.Duration `mapstructure:"playback_interval"`
	FadeTime         time.Duration `mapstructure:"fade_time"`
	RenderTimeout    time.Duration `mapstructure:"render_timeout"`
}

type PathSettings struct {
	Data string `mapstructure:"data"`
	Temp string `mapstructure:"temp"`
}

type FFmpegSettings struct {
	Path       string `mapstructure:"path"`
	SampleRate int    `mapstructure:"sample_rate"`
}

type MetricsSettings struct {
	Enabled bool   `mapstructure:"enabled"`
	Listen  string `mapstructure:"listen"`
}

// DefaultProfile picks prod on Linux (the Raspberry Pi deployment) and dev elsewhere.
func DefaultProfile(goos string) string {
	if goos == "linux" {
		return ProfileProd
	}
	return ProfileDev
}

// Load reads configuration from path, or from the first config.yaml found in
// the default search paths when path is empty. A missing default file is not
// an error; defaults apply.
func Load(path string) (*Settings, error) {
	v := viper.New()
	setDefaults(v)
	bindEnv(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		for _, p := range searchPaths() {
			v.AddConfigPath(p)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	profile := strings.ToLower(v.GetString("profile"))
	if profile == "" {
		profile = DefaultProfile(runtime.GOOS)
	}
	if err := applyProfile(v, profile); err != nil {
		return nil, err
	}
	v.Set("profile", profile)

	settings := &Settings{}
	if err := v.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	settings.normalize()

	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

// searchPaths lists config directories in lookup order.
func searchPaths() []string {
	paths := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "nightchorus"))
	}
	return append(paths, "/etc/nightchorus")
}

func (s *Settings) normalize() {
	if s.Paths.Temp == "" {
		s.Paths.Temp = os.TempDir()
	}
	s.Sensors.Source = strings.ToLower(s.Sensors.Source)
	s.Audio.Backend = strings.ToLower(s.Audio.Backend)
	s.Sensors.Hardware.TemperatureUnit = strings.ToUpper(s.Sensors.Hardware.TemperatureUnit)
}

// SourcePath returns the loop file for species: the audio.files entry when
// present, otherwise <data>/audio/<species>_recording_1min.wav.
func (s *Settings) SourcePath(species string) string {
	if p, ok := s.Audio.Files[species]; ok && p != "" {
		return p
	}
	return filepath.Join(s.Paths.Data, "audio", species+"_recording_1min.wav")
}

// BuildSchedule converts the configured windows, preserving order.
func (p PlaybackSettings) BuildSchedule() (schedule.Schedule, error) {
	out := make(schedule.Schedule, 0, len(p.Schedule))
	for i, e := range p.Schedule {
		start, err := schedule.FromSlice(e.Start)
		if err != nil {
			return nil, fmt.Errorf("schedule[%d] %s start: %w", i, e.Species, err)
		}
		end, err := schedule.FromSlice(e.End)
		if err != nil {
			return nil, fmt.Errorf("schedule[%d] %s end: %w", i, e.Species, err)
		}
		out = append(out, schedule.Entry{Species: e.Species, Start: start, End: end})
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}
