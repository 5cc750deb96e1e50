package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds every tunable of the navigator.
type Config struct {
	Server     ServerConfig     `toml:"server"`
	Data       DataConfig       `toml:"data"`
	Routing    RoutingConfig    `toml:"routing"`
	Guidance   GuidanceConfig   `toml:"guidance"`
	Simulation SimulationConfig `toml:"simulation"`
	Speech     SpeechConfig     `toml:"speech"`
}

type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

type DataConfig struct {
	NetworkPath   string `toml:"network_path"`
	LandmarksPath string `toml:"landmarks_path"`
	GraphCache    string `toml:"graph_cache"`
}

type RoutingConfig struct {
	MaxExpansions int `toml:"max_expansions"`
}

// GuidanceConfig groups the distance bands used to decide when to speak. All
// distances are meters.
type GuidanceConfig struct {
	ManeuverThresholdDeg float64 `toml:"maneuver_threshold_deg"`
	PrepareDistanceM     float64 `toml:"prepare_distance_m"`
	ExecuteDistanceM     float64 `toml:"execute_distance_m"`
	CameraTurnDistanceM  float64 `toml:"camera_turn_distance_m"`

	LandmarkRadiusM       float64 `toml:"landmark_radius_m"`
	PassedLandmarkRadiusM float64 `toml:"passed_landmark_radius_m"`
	LandmarkNearTurnM     float64 `toml:"landmark_near_turn_m"`

	TourTriggerRadiusM float64 `toml:"tour_trigger_radius_m"`
	TourLeaveRadiusM   float64 `toml:"tour_leave_radius_m"`
}

type SimulationConfig struct {
	SlowMPS   float64 `toml:"slow_mps"`
	NormalMPS float64 `toml:"normal_mps"`
	FastMPS   float64 `toml:"fast_mps"`

	HeadingSmoothing float64 `toml:"heading_smoothing"`
	SpeedSmoothing   float64 `toml:"speed_smoothing"`
	TurnSpeedFactor  float64 `toml:"turn_speed_factor"`
	ArrivalFraction  float64 `toml:"arrival_fraction"`
	TickRateHz       int     `toml:"tick_rate_hz"`
}

type SpeechConfig struct {
	SubtitleGraceMS  int    `toml:"subtitle_grace_ms"`
	WordsPerMinute   int    `toml:"words_per_minute"`
	MinUtteranceMS   int    `toml:"min_utterance_ms"`
	WelcomePhrase    string `toml:"welcome_phrase"`
	ArrivalPhrase    string `toml:"arrival_phrase"`
	AudioUnavailable bool   `toml:"audio_unavailable"`
}

// SubtitleGrace is the delay between the end of an utterance and clearing its subtitle.
func (s SpeechConfig) SubtitleGrace() time.Duration {
	return time.Duration(s.SubtitleGraceMS) * time.Millisecond
}

// TickInterval is the period of one animation frame.
func (s SimulationConfig) TickInterval() time.Duration {
	if s.TickRateHz <= 0 {
		return time.Second / 60
	}
	return time.Second / time.Duration(s.TickRateHz)
}

// Defaults returns a Config populated with built-in default values.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{Host: "0.0.0.0", Port: 8080},
		Data: DataConfig{
			NetworkPath:   "data/paths.geojson",
			LandmarksPath: "data/landmarks.geojson",
			GraphCache:    "data/paths.gob",
		},
		Routing:  RoutingConfig{MaxExpansions: 5000},
		Guidance: DefaultGuidance(),
		Simulation: SimulationConfig{
			SlowMPS:          0.9,
			NormalMPS:        1.4,
			FastMPS:          2.2,
			HeadingSmoothing: 0.08,
			SpeedSmoothing:   0.03,
			TurnSpeedFactor:  0.6,
			ArrivalFraction:  0.95,
			TickRateHz:       60,
		},
		Speech: SpeechConfig{
			SubtitleGraceMS: 1500,
			WordsPerMinute:  160,
			MinUtteranceMS:  800,
			WelcomePhrase:   "Welcome to the campus tour. Follow the path and I will tell you about the places you pass.",
			ArrivalPhrase:   "You have arrived at your destination.",
		},
	}
}

// DefaultGuidance returns the stock distance bands.
func DefaultGuidance() GuidanceConfig {
	return GuidanceConfig{
		ManeuverThresholdDeg:  35,
		PrepareDistanceM:      35,
		ExecuteDistanceM:      12,
		CameraTurnDistanceM:   30,
		LandmarkRadiusM:       25,
		PassedLandmarkRadiusM: 10,
		LandmarkNearTurnM:     30,
		TourTriggerRadiusM:    10,
		TourLeaveRadiusM:      50,
	}
}

// Load reads a TOML config file. If the file does not exist, built-in
// defaults are returned without error.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, cfg); err != nil {
				return nil, fmt.Errorf("decoding %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides file values with CAMPUS_NAV_* environment variables.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("CAMPUS_NAV_HOST"); v != "" {
		c.Server.Host = v
	}
	if v := os.Getenv("CAMPUS_NAV_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("CAMPUS_NAV_PORT: %w", err)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("CAMPUS_NAV_NETWORK"); v != "" {
		c.Data.NetworkPath = v
	}
	if v := os.Getenv("CAMPUS_NAV_LANDMARKS"); v != "" {
		c.Data.LandmarksPath = v
	}
	if v := os.Getenv("CAMPUS_NAV_GRAPH_CACHE"); v != "" {
		c.Data.GraphCache = v
	}
	return nil
}

// Validate rejects settings that would stall the simulation or silence guidance.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	for name, v := range map[string]float64{
		"simulation.slow_mps":   c.Simulation.SlowMPS,
		"simulation.normal_mps": c.Simulation.NormalMPS,
		"simulation.fast_mps":   c.Simulation.FastMPS,
	} {
		if v <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive", name))
		}
	}
	g := c.Guidance
	for name, v := range map[string]float64{
		"guidance.maneuver_threshold_deg": g.ManeuverThresholdDeg,
		"guidance.prepare_distance_m":     g.PrepareDistanceM,
		"guidance.execute_distance_m":     g.ExecuteDistanceM,
		"guidance.landmark_radius_m":      g.LandmarkRadiusM,
		"guidance.tour_trigger_radius_m":  g.TourTriggerRadiusM,
		"guidance.tour_leave_radius_m":    g.TourLeaveRadiusM,
	} {
		if v <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive", name))
		}
	}
	if g.ExecuteDistanceM >= g.PrepareDistanceM {
		errs = append(errs, errors.New("guidance.execute_distance_m must be below prepare_distance_m"))
	}
	if g.TourLeaveRadiusM <= g.TourTriggerRadiusM {
		errs = append(errs, errors.New("guidance.tour_leave_radius_m must exceed tour_trigger_radius_m"))
	}
	if f := c.Simulation.ArrivalFraction; f <= 0 || f > 1 {
		errs = append(errs, errors.New("simulation.arrival_fraction must be in (0, 1]"))
	}
	return errors.Join(errs...)
}
