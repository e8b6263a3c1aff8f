package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Round struct {
		TimeLimitSeconds int `yaml:"time_limit_seconds"`
		BufferSeconds    int `yaml:"buffer_seconds"`
	} `yaml:"round"`
	Simulation struct {
		FakeTeamCount int   `yaml:"fake_team_count"`
		Seed          int64 `yaml:"seed"`
	} `yaml:"simulation"`
}

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// TimeLimit returns the configured round length, defaulting to 5 minutes.
func (c Config) TimeLimit() time.Duration {
	if c.Round.TimeLimitSeconds <= 0 {
		return 300 * time.Second
	}
	return time.Duration(c.Round.TimeLimitSeconds) * time.Second
}

// BufferTime returns the server-side grace period, defaulting to 10 seconds.
func (c Config) BufferTime() time.Duration {
	if c.Round.BufferSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.Round.BufferSeconds) * time.Second
}

// FakeTeamCount defaults to the full simulated-team pool.
func (c Config) FakeTeamCount() int {
	if c.Simulation.FakeTeamCount <= 0 {
		return 36
	}
	return c.Simulation.FakeTeamCount
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
