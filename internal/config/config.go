package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// EnvPath names the environment variable that overrides the config location.
const EnvPath = "TK_CONFIG"

// Config is the root configuration for tk, stored in ~/.tk/config.toml.
type Config struct {
	// DataDir holds the database and lock files. Empty means ~/.tk.
	DataDir string `toml:"data_dir"`
	// User is the user id commands act for unless --user is given.
	User   string       `toml:"user"`
	Log    LogConfig    `toml:"log"`
	Daemon DaemonConfig `toml:"daemon"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// DaemonConfig drives the scheduled end-of-day rounding.
type DaemonConfig struct {
	// RoundAt is the UTC wall-clock time ("15:04") at which the previous
	// day is rounded.
	RoundAt string `toml:"round_at"`
	// Listen is the address of the /health and /metrics server.
	Listen  string `toml:"listen"`
	Metrics bool   `toml:"metrics"`
	// Users are rounded in addition to User.
	Users []string `toml:"users"`
}

const (
	DefaultUser      = "local"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
	DefaultRoundAt   = "00:05"
	DefaultListen    = "127.0.0.1:9464"
)

// Default returns a Config pre-filled with the built-in defaults.
func Default() Config {
	return Config{
		User: DefaultUser,
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Daemon: DaemonConfig{
			RoundAt: DefaultRoundAt,
			Listen:  DefaultListen,
			Metrics: true,
		},
	}
}

// configTemplate is the annotated config written on first run.
const configTemplate = `# tk configuration - ~/.tk/config.toml
#
# All settings are optional; the defaults shown below work out of the box.

# Directory holding tk.db and lock files. Empty means ~/.tk.
data_dir = ""

# User id that commands act for. Override per call with --user.
user = "local"

[log]
# debug, info, warn or error.
level = "info"
# text or json. Logs go to stderr.
format = "text"

[daemon]
# UTC time at which "tk daemon" rounds the previous day.
round_at = "00:05"

# Address serving /health and /metrics.
listen = "127.0.0.1:9464"
metrics = true

# Additional users rounded by the daemon, e.g. ["alice@example.com"].
users = []
`

// Path returns the config file location: $TK_CONFIG if set, else ~/.tk/config.toml.
func Path() (string, error) {
	if p := os.Getenv(EnvPath); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".tk", "config.toml"), nil
}

// Load reads the config from Path.
func Load() (Config, error) {
	path, err := Path()
	if err != nil {
		return Default(), err
	}
	return LoadFile(path)
}

// LoadFile reads the config at path, creating it with the annotated template
// on first run. Keys missing from the file keep their defaults.
func LoadFile(path string) (Config, error) {
	cfg := Default()

	md, err := toml.DecodeFile(path, &cfg)
	if errors.Is(err, fs.ErrNotExist) {
		if writeErr := writeDefault(path); writeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not create config file %s: %v\n", path, writeErr)
		}
		return Default(), nil
	}
	if err != nil {
		return Default(), fmt.Errorf("parsing config file %s: %w\nTip: delete the file to regenerate defaults", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Default(), fmt.Errorf("config file %s: unknown keys %s", path, strings.Join(keys, ", "))
	}

	if cfg.User == "" {
		cfg.User = DefaultUser
	}
	if cfg.Daemon.RoundAt == "" {
		cfg.Daemon.RoundAt = DefaultRoundAt
	}
	if _, err := cfg.Daemon.RoundAtTime(); err != nil {
		return Default(), fmt.Errorf("config file %s: %w", path, err)
	}
	return cfg, nil
}

// RoundAtTime parses RoundAt into an offset from midnight.
func (d DaemonConfig) RoundAtTime() (time.Duration, error) {
	t, err := time.Parse("15:04", d.RoundAt)
	if err != nil {
		return 0, fmt.Errorf("invalid daemon.round_at %q (want HH:MM)", d.RoundAt)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

// RoundUsers returns the configured user followed by the daemon's extra
// users, without duplicates.
func (c Config) RoundUsers() []string {
	seen := make(map[string]bool)
	var out []string
	for _, u := range append([]string{c.User}, c.Daemon.Users...) {
		u = strings.TrimSpace(u)
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
	}
	return out
}

// writeDefault creates the config directory and writes the annotated default
// config template.
func writeDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(configTemplate), 0o600); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}
