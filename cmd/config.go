package cmd

import (
	"errors"
	"fmt"
	"time"

	"orderflow/internal/core/domain/services"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix prefixes every variable, e.g. ORDERFLOW_HTTP_PORT.
const EnvPrefix = "ORDERFLOW"

type Config struct {
	HTTPPort        string        `envconfig:"HTTP_PORT" default:"8080"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`

	DBDSN             string        `envconfig:"DB_DSN" required:"true"`
	DBMaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"20"`
	DBMaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"10"`
	DBConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"1h"`
	AutoMigrate       bool          `envconfig:"AUTO_MIGRATE" default:"true"`

	// RedisURL enables the distributed job lock. Without it jobs lock in-process.
	RedisURL string        `envconfig:"REDIS_URL"`
	LockTTL  time.Duration `envconfig:"LOCK_TTL" default:"55s"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`

	Strategy      string `envconfig:"ASSIGNMENT_STRATEGY" default:"round_robin"`
	Timezone      string `envconfig:"TIMEZONE" default:"UTC"`
	BacklogOnOpen bool   `envconfig:"BACKLOG_ON_OPEN" default:"false"`
	RescheduleAt  string `envconfig:"RESCHEDULE_AT" default:"09:00"`

	JobsEnabled       bool   `envconfig:"JOBS_ENABLED" default:"true"`
	ShiftSchedulePath string `envconfig:"SHIFT_SCHEDULE_PATH"`
	BacklogJobSpec    string `envconfig:"BACKLOG_JOB_SPEC" default:"0 */5 * * * *"`
}

// LoadConfig reads the environment and checks the values that other
// components would otherwise reject at startup.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.DBDSN == "" {
		return Config{}, errors.New("parsing config: DB_DSN is empty")
	}
	if _, err := cfg.Location(); err != nil {
		return Config{}, err
	}
	if _, err := cfg.Picker(); err != nil {
		return Config{}, err
	}
	if _, _, err := cfg.RescheduleClock(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Location is the business timezone every date boundary is computed in.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func (c Config) Picker() (services.AgentPicker, error) {
	return services.NewAgentPicker(c.Strategy)
}

// RescheduleClock is the time of day used for scheduled-today orders rescheduled at close.
func (c Config) RescheduleClock() (int, int, error) {
	t, err := time.Parse("15:04", c.RescheduleAt)
	if err != nil {
		return 0, 0, fmt.Errorf("parsing reschedule time %q: %w", c.RescheduleAt, err)
	}
	return t.Hour(), t.Minute(), nil
}
