package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/cockroachdb/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Mode constants
	ModeStdio  = "stdio"
	ModeServer = "server"

	// Log output formats
	LogFormatConsole = "console"
	LogFormatJSON    = "json"

	// Default values
	DefaultPort        = 8080
	DefaultHost        = "127.0.0.1"
	DefaultLogLevel    = "info"
	DefaultLogFormat   = LogFormatConsole
	DefaultMaxFileSize = 20 * 1024 * 1024 // 20MB, certificates are a few pages

	// Directory permissions
	DefaultDirPerm = 0o750

	// EnvPrefix is prepended to every environment variable name
	EnvPrefix = "CERTIDAO"
)

// ErrVersionRequested is returned by LoadFromFlags when --version was passed
var ErrVersionRequested = errors.New("version requested")

var validLogLevels = []string{"debug", "info", "warn", "error"}

// Config holds all configuration for the certificate reader
type Config struct {
	// Server configuration
	Mode string // "server" or "stdio"
	Host string
	Port int

	// CertificateDirectory is the sandbox root for every file path a client
	// may ask about
	CertificateDirectory string

	// Application configuration
	Version     string
	ServerName  string
	LogLevel    string
	LogFormat   string
	MaxFileSize int64 // Maximum PDF file size in bytes
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	currentDir, err := os.Getwd()
	if err != nil {
		currentDir = "."
	}

	return &Config{
		Mode:                 ModeStdio, // MCP clients spawn the binary and talk over stdio
		Host:                 DefaultHost,
		Port:                 DefaultPort,
		CertificateDirectory: currentDir,
		Version:              "1.0.0",
		ServerName:           "certidao-reader",
		LogLevel:             DefaultLogLevel,
		LogFormat:            DefaultLogFormat,
		MaxFileSize:          DefaultMaxFileSize,
	}
}

// LoadFromFlags parses command line flags and returns a configuration
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()
	setupUsageMessage()

	if err := checkVersionFlag(); err != nil {
		return nil, err
	}

	pflag.Parse()

	populateConfigFromViper(cfg)

	if cfg.CertificateDirectory != "" {
		if expandedPath, err := filepath.Abs(cfg.CertificateDirectory); err == nil {
			cfg.CertificateDirectory = expandedPath
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(cfg *Config) {
	viper.SetEnvPrefix(EnvPrefix)
	viper.AutomaticEnv()

	viper.SetDefault("mode", cfg.Mode)
	viper.SetDefault("host", cfg.Host)
	viper.SetDefault("port", cfg.Port)
	viper.SetDefault("dir", cfg.CertificateDirectory)
	viper.SetDefault("loglevel", cfg.LogLevel)
	viper.SetDefault("logformat", cfg.LogFormat)
	viper.SetDefault("maxfilesize", cfg.MaxFileSize)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(cfg *Config) {
	pflag.String("mode", cfg.Mode, "Server mode: 'stdio' for MCP standard I/O, 'server' for HTTP server")
	pflag.String("host", cfg.Host, "Server host address (server mode only)")
	pflag.Int("port", cfg.Port, "Server port (server mode only)")
	pflag.String("dir", cfg.CertificateDirectory, "Directory containing certificate PDFs")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	pflag.String("logformat", cfg.LogFormat, "Log format (console, json)")
	pflag.Int64("maxfilesize", cfg.MaxFileSize, "Maximum PDF file size in bytes")
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper() {
	for _, name := range []string{"mode", "host", "port", "dir", "loglevel", "logformat", "maxfilesize"} {
		_ = viper.BindPFlag(name, pflag.Lookup(name))
	}
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nCertidão Reader - an MCP server that extracts fields from "+
			"Receita Federal, FGTS and SEFAZ certificates\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                                   "+
			"# stdio mode, current directory (default)\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --dir=/srv/certidoes             "+
			"# stdio mode with custom directory\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --loglevel=debug --logformat=json # verbose structured logs\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  CERTIDAO_MODE        Server mode\n")
		fmt.Fprintf(os.Stderr, "  CERTIDAO_HOST        Server host\n")
		fmt.Fprintf(os.Stderr, "  CERTIDAO_PORT        Server port\n")
		fmt.Fprintf(os.Stderr, "  CERTIDAO_DIR         Certificate directory\n")
		fmt.Fprintf(os.Stderr, "  CERTIDAO_LOGLEVEL    Log level\n")
		fmt.Fprintf(os.Stderr, "  CERTIDAO_LOGFORMAT   Log format\n")
		fmt.Fprintf(os.Stderr, "  CERTIDAO_MAXFILESIZE Maximum file size\n")
	}
}

// checkVersionFlag checks if version flag was requested
func checkVersionFlag() error {
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			return ErrVersionRequested
		}
	}
	return nil
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(cfg *Config) {
	cfg.Mode = viper.GetString("mode")
	cfg.Host = viper.GetString("host")
	cfg.Port = viper.GetInt("port")
	cfg.CertificateDirectory = viper.GetString("dir")
	cfg.LogLevel = viper.GetString("loglevel")
	cfg.LogFormat = viper.GetString("logformat")
	cfg.MaxFileSize = viper.GetInt64("maxfilesize")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Mode != ModeStdio && c.Mode != ModeServer {
		return errors.New("mode must be either 'stdio' or 'server'")
	}

	if c.Mode == ModeServer && (c.Port < 1 || c.Port > 65535) {
		return errors.New("port must be between 1 and 65535")
	}

	if c.CertificateDirectory == "" {
		return errors.New("certificate directory cannot be empty")
	}

	// Create the directory on first run so a fresh install can start
	if _, err := os.Stat(c.CertificateDirectory); os.IsNotExist(err) {
		if err := os.MkdirAll(c.CertificateDirectory, DefaultDirPerm); err != nil {
			return errors.Wrapf(err, "cannot create certificate directory %s", c.CertificateDirectory)
		}
	} else if err != nil {
		return errors.Wrapf(err, "cannot access certificate directory %s", c.CertificateDirectory)
	}

	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	if !slices.Contains(validLogLevels, c.LogLevel) {
		return errors.WithHint(
			errors.Newf("invalid log level: %s", c.LogLevel),
			"must be one of: debug, info, warn, error",
		)
	}

	if c.LogFormat != LogFormatConsole && c.LogFormat != LogFormatJSON {
		return errors.Newf("invalid log format: %s (must be console or json)", c.LogFormat)
	}

	return nil
}

// Address returns the server address as host:port
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, Host: %s, Port: %d, CertificateDirectory: %s, "+
		"LogLevel: %s, LogFormat: %s, MaxFileSize: %d}",
		c.Mode, c.Host, c.Port, c.CertificateDirectory, c.LogLevel, c.LogFormat, c.MaxFileSize)
}

// IsServerMode returns true if the server is running in HTTP server mode
func (c *Config) IsServerMode() bool {
	return c.Mode == ModeServer
}

// IsStdioMode returns true if the server is running in stdio mode
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}
