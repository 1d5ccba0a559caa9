package config

import (
	"os"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Helper function to reset pflag.CommandLine for testing
func resetFlags() {
	pflag.CommandLine = pflag.NewFlagSet(os.Args[0], pflag.ExitOnError)
	viper.Reset()
}

// Helper function to set os.Args for testing
func setArgs(args []string) {
	os.Args = args
}

// Helper function to clear environment variables
func clearEnvVars() {
	for _, name := range []string{"MODE", "HOST", "PORT", "DIR", "LOGLEVEL", "LOGFORMAT", "MAXFILESIZE"} {
		os.Unsetenv(EnvPrefix + "_" + name)
	}
}

func withCleanState(t *testing.T, args ...string) {
	t.Helper()
	originalArgs := os.Args
	t.Cleanup(func() {
		os.Args = originalArgs
		resetFlags()
		clearEnvVars()
	})

	setArgs(append([]string{"certidao-reader"}, args...))
	resetFlags()
	clearEnvVars()
}

func TestLoadFromFlags_DefaultConfig(t *testing.T) {
	withCleanState(t)

	cfg, err := LoadFromFlags()
	if err != nil {
		t.Fatalf("LoadFromFlags() unexpected error: %v", err)
	}

	if cfg.Mode != "stdio" {
		t.Errorf("LoadFromFlags() Mode = %v, want %v", cfg.Mode, "stdio")
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LoadFromFlags() LogLevel = %v, want %v", cfg.LogLevel, "info")
	}
	if cfg.LogFormat != "console" {
		t.Errorf("LoadFromFlags() LogFormat = %v, want %v", cfg.LogFormat, "console")
	}
	if cfg.CertificateDirectory == "" {
		t.Error("LoadFromFlags() CertificateDirectory should not be empty")
	}
}

func TestLoadFromFlags_ValidFlags(t *testing.T) {
	dir := t.TempDir()
	withCleanState(t,
		"--mode=server", "--host=0.0.0.0", "--port=9090", "--dir="+dir,
		"--loglevel=debug", "--logformat=json", "--maxfilesize=2048",
	)

	cfg, err := LoadFromFlags()
	if err != nil {
		t.Fatalf("LoadFromFlags() unexpected error: %v", err)
	}

	if cfg.Mode != "server" || cfg.Host != "0.0.0.0" || cfg.Port != 9090 {
		t.Errorf("LoadFromFlags() server settings = %s", cfg)
	}
	if cfg.CertificateDirectory != dir {
		t.Errorf("LoadFromFlags() CertificateDirectory = %v, want %v", cfg.CertificateDirectory, dir)
	}
	if cfg.LogLevel != "debug" || cfg.LogFormat != "json" {
		t.Errorf("LoadFromFlags() logging = %s/%s", cfg.LogLevel, cfg.LogFormat)
	}
	if cfg.MaxFileSize != 2048 {
		t.Errorf("LoadFromFlags() MaxFileSize = %v, want 2048", cfg.MaxFileSize)
	}
}

func TestLoadFromFlags_EnvironmentVariables(t *testing.T) {
	dir := t.TempDir()
	withCleanState(t)
	t.Setenv("CERTIDAO_DIR", dir)
	t.Setenv("CERTIDAO_LOGLEVEL", "warn")
	t.Setenv("CERTIDAO_LOGFORMAT", "json")

	cfg, err := LoadFromFlags()
	if err != nil {
		t.Fatalf("LoadFromFlags() unexpected error: %v", err)
	}

	if cfg.CertificateDirectory != dir {
		t.Errorf("LoadFromFlags() CertificateDirectory = %v, want %v", cfg.CertificateDirectory, dir)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LoadFromFlags() LogLevel = %v, want warn", cfg.LogLevel)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("LoadFromFlags() LogFormat = %v, want json", cfg.LogFormat)
	}
}

func TestLoadFromFlags_FlagOverridesEnvironment(t *testing.T) {
	withCleanState(t, "--loglevel=error", "--dir="+t.TempDir())
	t.Setenv("CERTIDAO_LOGLEVEL", "debug")

	cfg, err := LoadFromFlags()
	if err != nil {
		t.Fatalf("LoadFromFlags() unexpected error: %v", err)
	}
	if cfg.LogLevel != "error" {
		t.Errorf("LoadFromFlags() LogLevel = %v, want error", cfg.LogLevel)
	}
}

func TestLoadFromFlags_Invalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "mode", args: []string{"--mode=batch"}},
		{name: "port", args: []string{"--mode=server", "--port=0"}},
		{name: "log level", args: []string{"--loglevel=verbose"}},
		{name: "log format", args: []string{"--logformat=xml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withCleanState(t, append(tt.args, "--dir="+t.TempDir())...)

			cfg, err := LoadFromFlags()
			if err == nil {
				t.Fatalf("LoadFromFlags() expected error, got %s", cfg)
			}
		})
	}
}

func TestLoadFromFlags_VersionFlag(t *testing.T) {
	withCleanState(t, "--version")

	_, err := LoadFromFlags()
	if !errors.Is(err, ErrVersionRequested) {
		t.Errorf("LoadFromFlags() error = %v, want ErrVersionRequested", err)
	}
}
