// Package config provides configuration management for podnet.
//
// Config file locations (priority order):
//  1. explicit --config flag
//  2. $PODNET_CONFIG
//  3. ./podnet.yaml
//  4. $XDG_CONFIG_HOME/podnet/config.yaml
//  5. ~/.config/podnet/config.yaml
//  6. /etc/podnet/config.yaml
//
// Every key can be overridden from the environment with the PODNET_
// prefix, e.g. PODNET_TOPOLOGY_PORTS_PER_NETWORK=12.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"podnet/internal/domain"
	"podnet/internal/topology"
)

// Config holds all configuration for podnet.
type Config struct {
	Topology  TopologyConfig  `mapstructure:"topology" yaml:"topology"`
	Database  DatabaseConfig  `mapstructure:"database" yaml:"database"`
	Logging   LoggingConfig   `mapstructure:"logging" yaml:"logging"`
	Metrics   MetricsConfig   `mapstructure:"metrics" yaml:"metrics"`
	Discovery DiscoveryConfig `mapstructure:"discovery" yaml:"discovery"`
}

// TopologyConfig holds the graph limits and allocator settings.
type TopologyConfig struct {
	PortsPerNetwork   int    `mapstructure:"ports_per_network" yaml:"ports_per_network"`
	AllocatorStart    int    `mapstructure:"allocator_start" yaml:"allocator_start"`
	PublicNetworkName string `mapstructure:"public_network_name" yaml:"public_network_name"`
	MaxHosts          int    `mapstructure:"max_hosts" yaml:"max_hosts"`
}

// DatabaseConfig holds the snapshot store location.
type DatabaseConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// MetricsConfig holds the Prometheus listener; an empty address disables it.
type MetricsConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

// DiscoveryConfig holds nmap discovery settings.
type DiscoveryConfig struct {
	Targets []string `mapstructure:"targets" yaml:"targets"`
	Ports   string   `mapstructure:"ports" yaml:"ports"`
}

// Load reads configuration from path, or from the first file found by
// FindConfigPath when path is empty. Missing files fall back to defaults
// and environment variables. The returned string is the file actually
// used, empty if none.
func Load(path string) (*Config, string, error) {
	v := viper.New()

	setDefaults(v)

	if path == "" {
		path = FindConfigPath()
	}
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("PODNET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		if err := v.ReadInConfig(); err != nil {
			return nil, path, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, path, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, path, err
	}

	return &cfg, path, nil
}

func setDefaults(v *viper.Viper) {
	// Topology
	v.SetDefault("topology.ports_per_network", domain.DefaultPortCount)
	v.SetDefault("topology.allocator_start", topology.DefaultAllocatorStart)
	v.SetDefault("topology.public_network_name", domain.PublicNetworkName)
	v.SetDefault("topology.max_hosts", 0)

	// Database
	v.SetDefault("database.path", "./podnet.db")

	// Logging
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Metrics
	v.SetDefault("metrics.addr", "")

	// Discovery
	v.SetDefault("discovery.targets", []string{})
	v.SetDefault("discovery.ports", "22,80,443")
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Topology: TopologyConfig{
			PortsPerNetwork:   domain.DefaultPortCount,
			AllocatorStart:    topology.DefaultAllocatorStart,
			PublicNetworkName: domain.PublicNetworkName,
		},
		Database:  DatabaseConfig{Path: "./podnet.db"},
		Logging:   LoggingConfig{Level: "info", Format: "json"},
		Discovery: DiscoveryConfig{Ports: "22,80,443"},
	}
}

// Validate checks value ranges that viper cannot express.
func (c *Config) Validate() error {
	if c.Topology.PortsPerNetwork < 1 {
		return fmt.Errorf("%w: topology.ports_per_network must be at least 1", domain.ErrValidation)
	}
	if c.Topology.AllocatorStart < 0 {
		return fmt.Errorf("%w: topology.allocator_start must not be negative", domain.ErrValidation)
	}
	if c.Topology.MaxHosts < 0 {
		return fmt.Errorf("%w: topology.max_hosts must not be negative", domain.ErrValidation)
	}
	if err := domain.ValidateNetworkName(c.Topology.PublicNetworkName); err != nil {
		return fmt.Errorf("topology.public_network_name: %w", err)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: unknown logging.level %q", domain.ErrValidation, c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("%w: unknown logging.format %q", domain.ErrValidation, c.Logging.Format)
	}
	return nil
}

// GraphOptions returns the topology options described by the config.
func (c *Config) GraphOptions() []topology.Option {
	return []topology.Option{
		topology.WithPortCount(c.Topology.PortsPerNetwork),
		topology.WithAllocatorStart(c.Topology.AllocatorStart),
		topology.WithPublicNetworkName(c.Topology.PublicNetworkName),
		topology.WithMaxHosts(c.Topology.MaxHosts),
	}
}

// Save writes config to the specified path
func (c *Config) Save(path string) error {
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}
