package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds every configurable value for the agent. It is built once
// at startup and treated as read-only afterwards - components receive it
// through their constructors, never as ambient global state.
type Config struct {
	// Sampling
	Interval   int      `mapstructure:"interval"`    // seconds between ticks
	DiskPath   string   `mapstructure:"disk-path"`   // mount to report disk usage for
	NetCommand []string `mapstructure:"net-command"` // external network statistics tool
	ExcludeGPU bool     `mapstructure:"exclude-gpu"`

	// InfluxDB write endpoint
	InfluxDBURL    string `mapstructure:"influxdb-url"`
	InfluxDBToken  string `mapstructure:"influxdb-token"`
	InfluxDBOrg    string `mapstructure:"influxdb-org"`
	InfluxDBBucket string `mapstructure:"influxdb-bucket"`
	Measurement    string `mapstructure:"measurement"`

	// Bounds on external calls
	CommandTimeout time.Duration `mapstructure:"command-timeout"`
	HTTPTimeout    time.Duration `mapstructure:"http-timeout"`

	LogLevel string `mapstructure:"log-level"`

	// Hostname tags every published point; resolved at load time.
	Hostname string
}

// TickInterval returns the sampling interval as a duration.
func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.Interval) * time.Second
}

// Load builds the configuration from (in decreasing priority):
//  1. command-line flags (the given args, normally os.Args[1:])
//  2. environment variables (e.g. INFLUXDB_URL)
//  3. built-in defaults.
//
// It returns a fully populated, validated *Config or an error.
func Load(args []string) (*Config, error) {
	fs := pflag.NewFlagSet("sysagent", pflag.ContinueOnError)
	fs.Int("interval", 10, "interval for querying in seconds")
	fs.String("disk-path", defaultDiskPath, "filesystem mount to report disk usage for")
	fs.StringSlice("net-command", []string{"netstat", "-e"}, "network statistics command and arguments")
	fs.Bool("exclude-gpu", false, "skip GPU collection entirely")
	fs.String("influxdb-url", "", "InfluxDB base URL")
	fs.String("influxdb-token", "", "InfluxDB API token")
	fs.String("influxdb-org", "", "InfluxDB organization")
	fs.String("influxdb-bucket", "", "InfluxDB bucket")
	fs.String("measurement", "system_metrics", "measurement name for published points")
	fs.Duration("command-timeout", 5*time.Second, "bound on external tool invocations")
	fs.Duration("http-timeout", 10*time.Second, "bound on the InfluxDB write request")
	fs.String("log-level", "info", "debug|info|warn|error")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()

	// Environment variables: flag "influxdb-url" maps to INFLUXDB_URL.
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("cannot bind flags: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("cannot decode config: %w", err)
	}

	cfg.Hostname = hostname()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Interval < 1 {
		return fmt.Errorf("interval must be at least 1 second, got %d", c.Interval)
	}
	if c.InfluxDBURL == "" {
		return fmt.Errorf("influxdb-url must not be empty")
	}
	if u, err := url.Parse(c.InfluxDBURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("influxdb-url %q is not a valid URL", c.InfluxDBURL)
	}
	if c.InfluxDBToken == "" {
		return fmt.Errorf("influxdb-token must not be empty")
	}
	if c.InfluxDBOrg == "" {
		return fmt.Errorf("influxdb-org must not be empty")
	}
	if c.InfluxDBBucket == "" {
		return fmt.Errorf("influxdb-bucket must not be empty")
	}
	if len(c.NetCommand) == 0 {
		return fmt.Errorf("net-command must not be empty")
	}
	if c.CommandTimeout <= 0 || c.HTTPTimeout <= 0 {
		return fmt.Errorf("timeouts must be positive")
	}
	return nil
}

func hostname() string {
	h, err := os.Hostname()
	if err != nil || h == "" {
		return "localhost"
	}
	return h
}
