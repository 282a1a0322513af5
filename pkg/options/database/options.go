// Package database provides relational store configuration options.
package database

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/kart-io/edurag/pkg/options"
)

var _ options.IOptions = (*Options)(nil)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// Options defines configuration options for the relational store.
type Options struct {
	// Driver is one of sqlite, postgres, mysql.
	Driver string `json:"driver" mapstructure:"driver"`
	// DSN overrides the host/port fields when set. For sqlite it is the file path.
	DSN                   string        `json:"-" mapstructure:"dsn"`
	Host                  string        `json:"host" mapstructure:"host"`
	Port                  int           `json:"port" mapstructure:"port"`
	Username              string        `json:"username" mapstructure:"username"`
	Password              string        `json:"-" mapstructure:"password"`
	Database              string        `json:"database" mapstructure:"database"`
	SSLMode               string        `json:"ssl-mode" mapstructure:"ssl-mode"`
	MaxIdleConnections    int           `json:"max-idle-connections" mapstructure:"max-idle-connections"`
	MaxOpenConnections    int           `json:"max-open-connections" mapstructure:"max-open-connections"`
	MaxConnectionLifeTime time.Duration `json:"max-connection-life-time" mapstructure:"max-connection-life-time"`
	// LogLevel is the gorm log level: 1 silent, 2 error, 3 warn, 4 info.
	LogLevel int `json:"log-level" mapstructure:"log-level"`
	// SlowThreshold marks queries slower than this as slow; 0 disables it.
	SlowThreshold time.Duration `json:"slow-threshold" mapstructure:"slow-threshold"`
	// AutoMigrate creates or updates tables at start-up.
	AutoMigrate bool `json:"auto-migrate" mapstructure:"auto-migrate"`
}

// NewOptions creates a new Options object with default values.
func NewOptions() *Options {
	return &Options{
		Driver:                DriverSQLite,
		DSN:                   "_output/edurag.db",
		Host:                  "127.0.0.1",
		SSLMode:               "disable",
		MaxIdleConnections:    10,
		MaxOpenConnections:    100,
		MaxConnectionLifeTime: 10 * time.Minute,
		LogLevel:              1,
		SlowThreshold:         200 * time.Millisecond,
		AutoMigrate:           true,
	}
}

// AddFlags adds flags for database options to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	p := options.Join(prefixes...)
	fs.StringVar(&o.Driver, p+"database.driver", o.Driver, "Database driver: sqlite, postgres or mysql.")
	fs.StringVar(&o.DSN, p+"database.dsn", o.DSN, "Full DSN (or sqlite file path); overrides host/port settings.")
	fs.StringVar(&o.Host, p+"database.host", o.Host, "Database host.")
	fs.IntVar(&o.Port, p+"database.port", o.Port, "Database port (0 uses the driver default).")
	fs.StringVar(&o.Username, p+"database.username", o.Username, "Database username.")
	fs.StringVar(&o.Password, p+"database.password", o.Password, "Database password.")
	fs.StringVar(&o.Database, p+"database.database", o.Database, "Database name.")
	fs.StringVar(&o.SSLMode, p+"database.ssl-mode", o.SSLMode, "PostgreSQL SSL mode.")
	fs.IntVar(&o.MaxIdleConnections, p+"database.max-idle-connections", o.MaxIdleConnections, "Maximum idle connections.")
	fs.IntVar(&o.MaxOpenConnections, p+"database.max-open-connections", o.MaxOpenConnections, "Maximum open connections.")
	fs.DurationVar(&o.MaxConnectionLifeTime, p+"database.max-connection-life-time", o.MaxConnectionLifeTime, "Maximum connection life time.")
	fs.IntVar(&o.LogLevel, p+"database.log-level", o.LogLevel, "Gorm log level (1 silent, 2 error, 3 warn, 4 info).")
	fs.DurationVar(&o.SlowThreshold, p+"database.slow-threshold", o.SlowThreshold, "Queries slower than this are logged as slow, 0 disables.")
	fs.BoolVar(&o.AutoMigrate, p+"database.auto-migrate", o.AutoMigrate, "Create or update tables at start-up.")
}

// Validate checks if the options are valid.
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	switch o.Driver {
	case DriverSQLite:
		if o.DSN == "" {
			errs = append(errs, fmt.Errorf("database.dsn is required for sqlite"))
		}
	case DriverPostgres, DriverMySQL:
		if o.DSN == "" && (o.Host == "" || o.Database == "") {
			errs = append(errs, fmt.Errorf("database.host and database.database are required for %s", o.Driver))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported database.driver %q", o.Driver))
	}
	if o.LogLevel < 1 || o.LogLevel > 4 {
		errs = append(errs, fmt.Errorf("database.log-level must be between 1 and 4"))
	}
	return errs
}

// Complete fills driver-specific defaults.
func (o *Options) Complete() error {
	if o.Port == 0 {
		switch o.Driver {
		case DriverPostgres:
			o.Port = 5432
		case DriverMySQL:
			o.Port = 3306
		}
	}
	return nil
}

// BuildDSN returns the connection string for the configured driver.
func (o *Options) BuildDSN() string {
	if o.DSN != "" {
		return o.DSN
	}
	switch o.Driver {
	case DriverPostgres:
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			o.Host, o.Port, o.Username, o.Password, o.Database, o.SSLMode)
	case DriverMySQL:
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			o.Username, o.Password, o.Host, o.Port, o.Database)
	default:
		return o.DSN
	}
}
