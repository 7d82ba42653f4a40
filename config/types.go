package config

import "fmt"

const DefaultStoreName = "default"

// Config is the root of a universal-model configuration file.
//
//	version: "1"
//	store:
//	  name: todos
//	  debug: true
//	scheduler:
//	  max_ticks_per_drain: 256
//	logging:
//	  level: debug
//	metrics:
//	  enabled: true
type Config struct {
	Version   string          `yaml:"version"`
	Store     StoreConfig     `yaml:"store"`
	Scheduler SchedulerConfig `yaml:"scheduler"`

	// Extensions holds every other top level section, decoded on demand by
	// the package that owns it.
	Extensions map[string]any `yaml:"-"`
}

type StoreConfig struct {
	// Name labels the store in logs and metrics.
	Name string `yaml:"name"`
	// Debug logs every record and flush at debug level.
	Debug bool `yaml:"debug"`
}

type SchedulerConfig struct {
	MaxTicksPerDrain int `yaml:"max_ticks_per_drain"`
}

func Default() *Config {
	c := &Config{Extensions: map[string]any{}}
	c.SetDefaults()
	return c
}

func (c *Config) SetDefaults() {
	if c.Version == "" {
		c.Version = "1"
	}
	if c.Store.Name == "" {
		c.Store.Name = DefaultStoreName
	}
	if c.Extensions == nil {
		c.Extensions = map[string]any{}
	}
}

func (c *Config) Validate() error {
	if c.Version != "1" {
		return fmt.Errorf("%w: unknown version %q", ErrInvalid, c.Version)
	}
	if c.Scheduler.MaxTicksPerDrain < 0 {
		return fmt.Errorf("%w: scheduler.max_ticks_per_drain must not be negative, got %d",
			ErrInvalid, c.Scheduler.MaxTicksPerDrain)
	}
	return nil
}

// UnmarshalExtension decodes the extension section named key into target.
// A missing section leaves target untouched.
func (c *Config) UnmarshalExtension(key string, target any) error {
	ext, ok := c.Extensions[key]
	if !ok {
		return nil
	}
	if err := decode(ext, target); err != nil {
		return fmt.Errorf("failed to decode extension config for '%s': %w", key, err)
	}
	return nil
}
