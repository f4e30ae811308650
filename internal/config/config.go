// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment overrides, e.g. THERMAL_PRINT_SERVER_PORT
const EnvPrefix = "THERMAL_PRINT"

// Config represents the application configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
	Printer PrinterConfig `mapstructure:"printer"`
	Windows WindowsConfig `mapstructure:"windows"`
	USB     USBConfig     `mapstructure:"usb"`
	Legacy  LegacyConfig  `mapstructure:"legacy"`
	App     AppConfig     `mapstructure:"app"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host           string        `mapstructure:"host"`
	Port           string        `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	MaxBodyBytes   int64         `mapstructure:"max_body_bytes"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	TLS            TLSConfig     `mapstructure:"tls"`
}

// TLSConfig represents TLS configuration. The server falls back to plain
// HTTP when enabled but the files are missing.
type TLSConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	CertFile string `mapstructure:"cert_file"`
	KeyFile  string `mapstructure:"key_file"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// PrinterConfig controls how jobs are rendered and dispatched
type PrinterConfig struct {
	// AcceptedNames are the queue/printer names that may receive tickets,
	// in preference order
	AcceptedNames   []string      `mapstructure:"accepted_names"`
	DevicePaths     []string      `mapstructure:"device_paths"`
	DeviceGlob      string        `mapstructure:"device_glob"`
	UseDefaultQueue bool          `mapstructure:"use_default_queue"`
	AttemptTimeout  time.Duration `mapstructure:"attempt_timeout"`
	CommandTimeout  time.Duration `mapstructure:"command_timeout"`
	LockFile        string        `mapstructure:"lock_file"`
	LockTimeout     time.Duration `mapstructure:"lock_timeout"`
	// Backends enables backends by kind; chain order is fixed regardless
	Backends         []string `mapstructure:"backends"`
	Profiles         []string `mapstructure:"profiles"`
	RawDeviceProfile string   `mapstructure:"raw_device_profile"`
	DefaultTitle     string   `mapstructure:"default_title"`
	LprBinary        string   `mapstructure:"lpr_binary"`
	LpstatBinary     string   `mapstructure:"lpstat_binary"`
	TempDir          string   `mapstructure:"temp_dir"`
	MaxJobBytes      int      `mapstructure:"max_job_bytes"`
	// SetupDeviceURI is used when a queue is recreated as raw and its
	// current device URI cannot be read
	SetupDeviceURI string `mapstructure:"setup_device_uri"`
}

// WindowsConfig holds the Windows spooler integration
type WindowsConfig struct {
	EnumerateCommand []string `mapstructure:"enumerate_command"`
	RawPrintHelper   string   `mapstructure:"raw_print_helper"`
}

// USBConfig controls the libusb protocol client
type USBConfig struct {
	// ExtraVendorIDs are hex vendor ids treated as printers in addition
	// to printer-class devices and the built-in vendor list
	ExtraVendorIDs []string      `mapstructure:"extra_vendor_ids"`
	Endpoint       int           `mapstructure:"endpoint"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
}

// LegacyConfig lists serial and network printers
type LegacyConfig struct {
	Endpoints []string `mapstructure:"endpoints"`
}

// AppConfig represents application metadata
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

var (
	validBackends     = []string{"protocol-client", "spooler", "raw-device", "legacy"}
	validEnvironments = []string{"development", "staging", "production", "test"}
	validLevels       = []string{"debug", "info", "warn", "error"}
)

// Load reads configuration from configFile, or from config.yaml in the
// search paths when configFile is empty, then applies THERMAL_PRINT_*
// environment overrides. A missing config.yaml is not an error.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/thermal-print-service")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", "20936")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "120s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.max_body_bytes", 10<<20)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.tls.enabled", false)
	v.SetDefault("server.tls.cert_file", "localhost+2.pem")
	v.SetDefault("server.tls.key_file", "localhost+2-key.pem")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("logging.max_size", 100)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age", 28)
	v.SetDefault("logging.compress", true)

	v.SetDefault("printer.accepted_names", []string{"Albaranes", "ALBARAN"})
	v.SetDefault("printer.device_paths", []string{
		"/dev/printer-albaran", "/dev/usb/lp0", "/dev/usb/lp1", "/dev/lp0", "/dev/lp1",
	})
	v.SetDefault("printer.device_glob", "/dev/usb/lp*")
	v.SetDefault("printer.use_default_queue", true)
	v.SetDefault("printer.attempt_timeout", "10s")
	v.SetDefault("printer.command_timeout", "15s")
	v.SetDefault("printer.lock_file", defaultLockFile())
	v.SetDefault("printer.lock_timeout", "60s")
	v.SetDefault("printer.backends", validBackends)
	v.SetDefault("printer.profiles", []string{"CP858", "WINDOWS-1252", "ISO-8859-15", "CP850"})
	v.SetDefault("printer.raw_device_profile", "CP858")
	v.SetDefault("printer.default_title", "=== TICKET ===")
	v.SetDefault("printer.lpr_binary", "lpr")
	v.SetDefault("printer.lpstat_binary", "lpstat")
	v.SetDefault("printer.temp_dir", "")
	v.SetDefault("printer.max_job_bytes", 10<<20)
	v.SetDefault("printer.setup_device_uri", "usb://Unknown/Printer")

	v.SetDefault("windows.enumerate_command", []string{})
	v.SetDefault("windows.raw_print_helper", "RawPrint.exe")

	v.SetDefault("usb.extra_vendor_ids", []string{})
	v.SetDefault("usb.endpoint", 0)
	v.SetDefault("usb.write_timeout", "5s")

	v.SetDefault("legacy.endpoints", []string{})

	v.SetDefault("app.name", "thermal-print-service")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.environment", "production")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Server.Port == "" {
		return fmt.Errorf("server.port is required")
	}
	if !contains(validEnvironments, config.App.Environment) {
		return fmt.Errorf("app.environment must be one of: %v", validEnvironments)
	}
	if !contains(validLevels, config.Logging.Level) {
		return fmt.Errorf("logging.level must be one of: %v", validLevels)
	}
	if config.Printer.AttemptTimeout <= 0 {
		return fmt.Errorf("printer.attempt_timeout must be positive")
	}
	if len(config.Printer.Backends) == 0 {
		return fmt.Errorf("printer.backends must enable at least one backend")
	}
	for _, b := range config.Printer.Backends {
		if !contains(validBackends, b) {
			return fmt.Errorf("printer.backends: unknown backend %q, expected one of %v", b, validBackends)
		}
	}
	if len(config.Printer.Profiles) == 0 {
		return fmt.Errorf("printer.profiles must list at least one code page")
	}
	if config.Printer.MaxJobBytes <= 0 {
		return fmt.Errorf("printer.max_job_bytes must be positive")
	}
	return nil
}

func defaultLockFile() string {
	return filepath.Join(os.TempDir(), "thermal-print-service.lock")
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}

// GetServerAddr returns the server address
func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}

// BackendEnabled reports whether a backend kind is enabled
func (c *Config) BackendEnabled(kind string) bool {
	return contains(c.Printer.Backends, kind)
}

// IsProduction checks if the environment is production
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}
