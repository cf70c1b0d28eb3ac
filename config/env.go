package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
)

// Config holds process settings read from the environment
type Config struct {
	TickHz     int    `env:"TANKARENA_TICK_HZ" envDefault:"60"`
	World      string `env:"TANKARENA_WORLD"`
	Player     uint8  `env:"TANKARENA_PLAYER" envDefault:"1"`
	NATSURL    string `env:"TANKARENA_NATS_URL"`
	NATSBucket string `env:"TANKARENA_NATS_BUCKET" envDefault:"arena-vars"`
	Debug      bool   `env:"TANKARENA_DEBUG"`
	Audio      bool   `env:"TANKARENA_AUDIO" envDefault:"true"`
	EventQueue int    `env:"TANKARENA_EVENT_QUEUE" envDefault:"1024"`
}

// ParseEnv loads configuration from environment variables
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return errors.Wrap(err, "parse env")
	}
	return nil
}

// Load reads and validates Config from the environment
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the simulation cannot run with
func (c Config) Validate() error {
	if c.TickHz <= 0 || c.TickHz > 1000 {
		return errors.Errorf("tick rate %d Hz out of range 1..1000", c.TickHz)
	}
	if c.EventQueue < 0 || c.EventQueue > 1<<16 {
		return errors.Errorf("event queue size %d out of range 0..65536", c.EventQueue)
	}
	if c.NATSURL != "" && c.NATSBucket == "" {
		return errors.New("nats url set without a bucket")
	}
	return nil
}

// TickInterval returns the duration of one simulation step
func (c Config) TickInterval() time.Duration {
	return time.Second / time.Duration(c.TickHz)
}

// TickSeconds returns the step length in seconds
func (c Config) TickSeconds() float64 {
	return 1 / float64(c.TickHz)
}
