package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// DefaultPath is where the battle config is looked up when no override is given.
const DefaultPath = "config/battle.yaml"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "TURNBATTLE_"

// Archive drivers.
const (
	DriverNone     = "none"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Battle holds all configuration for running battles.
type Battle struct {
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL"`

	Timers        Timers `yaml:"timers" envPrefix:"TIMERS_"`
	StunSkipsTurn bool   `yaml:"stun_skips_turn" env:"STUN_SKIPS_TURN"`

	// Seed for the battle rng. Zero picks a random seed.
	Seed uint64 `yaml:"seed" env:"SEED"`

	TickInterval time.Duration `yaml:"tick_interval" env:"TICK_INTERVAL"`
	MaxTurns     int           `yaml:"max_turns" env:"MAX_TURNS"` // simulation stalemate cutoff

	// Preset file; empty uses the built-in Hero vs Goblin preset.
	PresetPath string `yaml:"preset" env:"PRESET"`

	// Output artifacts, disabled when empty.
	JournalPath string `yaml:"journal_path" env:"JOURNAL_PATH"`
	ReportPath  string `yaml:"report_path" env:"REPORT_PATH"`

	Archive    Archive    `yaml:"archive" envPrefix:"ARCHIVE_"`
	Simulation Simulation `yaml:"simulation" envPrefix:"SIMULATION_"`
}

// Timers are the scheduler delays.
type Timers struct {
	PreBattleDelay  time.Duration `yaml:"pre_battle_delay" env:"PRE_BATTLE_DELAY"`
	ThinkTime       time.Duration `yaml:"think_time" env:"THINK_TIME"`
	ActionDelay     time.Duration `yaml:"action_delay" env:"ACTION_DELAY"`
	ProcessingDelay time.Duration `yaml:"processing_delay" env:"PROCESSING_DELAY"`
	TurnDelay       time.Duration `yaml:"turn_delay" env:"TURN_DELAY"`
	ActionTimeout   time.Duration `yaml:"action_timeout" env:"ACTION_TIMEOUT"` // 0 disables
}

// Archive selects where finished battles are recorded.
type Archive struct {
	Driver string `yaml:"driver" env:"DRIVER"`

	// DSN overrides Database for the postgres driver.
	DSN      string         `yaml:"dsn" env:"DSN"`
	Database DatabaseConfig `yaml:"database" envPrefix:"DB_"`

	// SQLite database file.
	Path string `yaml:"path" env:"PATH"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string `yaml:"host" env:"HOST"`
	Port     int    `yaml:"port" env:"PORT"`
	User     string `yaml:"user" env:"USER"`
	Password string `yaml:"password" env:"PASSWORD"`
	DBName   string `yaml:"dbname" env:"NAME"`
	SSLMode  string `yaml:"sslmode" env:"SSLMODE"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// PostgresDSN returns the explicit DSN if set, otherwise the one built from Database.
func (a Archive) PostgresDSN() string {
	if a.DSN != "" {
		return a.DSN
	}
	return a.Database.DSN()
}

// Enabled reports whether results are archived.
func (a Archive) Enabled() bool {
	return a.Driver != "" && a.Driver != DriverNone
}

// Simulation configures batch runs.
type Simulation struct {
	Battles     int `yaml:"battles" env:"BATTLES"`
	Concurrency int `yaml:"concurrency" env:"CONCURRENCY"`
}

// DefaultBattle returns Battle config with the stock timings.
func DefaultBattle() Battle {
	return Battle{
		LogLevel: "info",
		Timers: Timers{
			PreBattleDelay:  500 * time.Millisecond,
			ThinkTime:       time.Second,
			ActionDelay:     500 * time.Millisecond,
			ProcessingDelay: 300 * time.Millisecond,
			TurnDelay:       500 * time.Millisecond,
		},
		TickInterval: 50 * time.Millisecond,
		MaxTurns:     500,
		Archive: Archive{
			Driver: DriverNone,
			Database: DatabaseConfig{
				Host:     "127.0.0.1",
				Port:     5432,
				User:     "turnbattle",
				Password: "turnbattle",
				DBName:   "turnbattle",
				SSLMode:  "disable",
			},
			Path: "turnbattle.db",
		},
		Simulation: Simulation{
			Battles:     100,
			Concurrency: 4,
		},
	}
}

// Path returns the config path from TURNBATTLE_CONFIG or DefaultPath.
func Path() string {
	if p := os.Getenv(EnvPrefix + "CONFIG"); p != "" {
		return p
	}
	return DefaultPath
}

// LoadBattle loads battle config from a YAML file, then applies environment
// overrides. If the file doesn't exist, defaults are used.
func LoadBattle(path string) (Battle, error) {
	cfg := DefaultBattle()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return cfg, fmt.Errorf("parsing env overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("validating config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks value ranges and the archive driver.
func (c Battle) Validate() error {
	var errs []error

	timers := map[string]time.Duration{
		"pre_battle_delay": c.Timers.PreBattleDelay,
		"think_time":       c.Timers.ThinkTime,
		"action_delay":     c.Timers.ActionDelay,
		"processing_delay": c.Timers.ProcessingDelay,
		"turn_delay":       c.Timers.TurnDelay,
		"action_timeout":   c.Timers.ActionTimeout,
	}
	for name, d := range timers {
		if d < 0 {
			errs = append(errs, fmt.Errorf("timers.%s must not be negative, got %s", name, d))
		}
	}

	if c.TickInterval <= 0 {
		errs = append(errs, fmt.Errorf("tick_interval must be positive, got %s", c.TickInterval))
	}
	if c.MaxTurns <= 0 {
		errs = append(errs, fmt.Errorf("max_turns must be positive, got %d", c.MaxTurns))
	}

	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("unknown log_level %q", c.LogLevel))
	}

	switch c.Archive.Driver {
	case "", DriverNone, DriverPostgres:
	case DriverSQLite:
		if c.Archive.Path == "" {
			errs = append(errs, errors.New("archive.path is required for the sqlite driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown archive driver %q", c.Archive.Driver))
	}

	if c.Simulation.Battles < 0 {
		errs = append(errs, fmt.Errorf("simulation.battles must not be negative, got %d", c.Simulation.Battles))
	}
	if c.Simulation.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("simulation.concurrency must be at least 1, got %d", c.Simulation.Concurrency))
	}

	return errors.Join(errs...)
}
