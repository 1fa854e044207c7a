// Package config defines the device configuration file format.
package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/quarklab/datadist/compress"
	"github.com/quarklab/datadist/wire"
)

// Config holds the configuration shared by the pipeline devices. CLI flags
// override values loaded from file.
type Config struct {
	InputChannelName  string `yaml:"input_channel_name"`
	OutputChannelName string `yaml:"output_channel_name"`

	CruCount     int  `yaml:"cru_count"`
	EpnNodeCount int  `yaml:"epn_node_count"`
	FlpNodeCount int  `yaml:"flp_node_count"`
	SendSlots    int  `yaml:"send_slots"`
	Gui          bool `yaml:"gui"`

	// Serialization selects the wire layout: "interleaved" or "split".
	Serialization string `yaml:"serialization"`

	Sink SinkConfig `yaml:"sink"`
}

// SinkConfig holds the file sink options.
type SinkConfig struct {
	Enable         bool   `yaml:"enable"`
	Dir            string `yaml:"dir"`
	FileName       string `yaml:"file_name"`
	MaxStfsPerFile uint64 `yaml:"max_stfs_per_file"`
	MaxFileSize    uint64 `yaml:"max_file_size"`
	Compression    string `yaml:"compression"`
}

// Default returns the documented defaults.
func Default() *Config {
	return &Config{
		InputChannelName:  "readout",
		OutputChannelName: "stf",
		CruCount:          1,
		EpnNodeCount:      1,
		FlpNodeCount:      1,
		SendSlots:         4,
		Serialization:     "interleaved",
		Sink: SinkConfig{
			FileName:       "%n",
			MaxStfsPerFile: 1,
			MaxFileSize:    4 << 30,
			Compression:    "none",
		},
	}
}

// Load reads configuration from a YAML file on top of the defaults.
// Unknown fields are rejected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	if err := decoder.Decode(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	return cfg, nil
}

// Validate checks the configuration. Invalid configuration is fatal at
// startup.
func (c *Config) Validate() error {
	if c.CruCount < 1 || c.CruCount > 32 {
		return fmt.Errorf("cru_count %d out of range [1, 32]", c.CruCount)
	}
	if c.EpnNodeCount < 1 {
		return fmt.Errorf("epn_node_count %d out of range", c.EpnNodeCount)
	}
	if c.FlpNodeCount < 1 {
		return fmt.Errorf("flp_node_count %d out of range", c.FlpNodeCount)
	}
	if c.SendSlots < 1 {
		return fmt.Errorf("send_slots %d out of range", c.SendSlots)
	}

	if _, err := wire.ParseLayout(c.Serialization); err != nil {
		return err
	}

	if c.Sink.Enable {
		if c.Sink.Dir == "" {
			return fmt.Errorf("sink enabled without a directory")
		}
		st, err := os.Stat(c.Sink.Dir)
		if err != nil {
			return fmt.Errorf("sink directory: %w", err)
		}
		if !st.IsDir() {
			return fmt.Errorf("sink directory %s is not a directory", c.Sink.Dir)
		}
	}
	if _, err := compress.ParseKind(c.Sink.Compression); err != nil {
		return fmt.Errorf("sink compression %q: %w", c.Sink.Compression, err)
	}

	return nil
}

// Layout returns the parsed wire layout. Validate must have succeeded.
func (c *Config) Layout() wire.Layout {
	l, _ := wire.ParseLayout(c.Serialization)
	return l
}

// SinkCompression returns the parsed sink codec kind. Validate must have
// succeeded.
func (c *Config) SinkCompression() compress.Kind {
	k, _ := compress.ParseKind(c.Sink.Compression)
	return k
}
