// Package config resolves where and how the task list is stored.
//
// Values are layered: defaults, then an optional .env file, then TASKLIST_*
// environment variables, then command-line flags.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/Makepad-fr/tasklist/internal/model"
)

const (
	// AppName is the data directory name.
	AppName = "tasklist"

	// DefaultKey is the storage key the collection lives under.
	DefaultKey = "todos"

	// DefaultMinLength mirrors store.DefaultMinLength for the rich profile.
	DefaultMinLength = 3

	// EnvPrefix prefixes every environment variable read by Load.
	EnvPrefix = "TASKLIST_"
)

// Backend names a Storage implementation.
type Backend string

const (
	BackendFile     Backend = "file"
	BackendMemory   Backend = "memory"
	BackendSQLite   Backend = "sqlite"
	BackendPostgres Backend = "postgres"
	BackendMySQL    Backend = "mysql"
)

// Config holds storage and display settings.
type Config struct {
	// EnvFile is the dotenv file read before the environment. Missing is fine.
	EnvFile string

	Backend Backend
	// DSN is the connection string for SQL backends. For sqlite an empty DSN
	// means <Dir>/tasklist.db.
	DSN string
	// Dir holds file-backed data. Load fills it from XDG_DATA_HOME or HOME
	// when nothing else set it; empty means the current directory.
	Dir string
	// Key is the storage key.
	Key string

	Profile model.Profile
	// MinLength is the creation threshold; -1 picks the profile default.
	MinLength int

	Theme    string
	Color    string // auto, always or never
	Group    bool
	HideDone bool
	Debug    bool
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		EnvFile:   ".env",
		Backend:   BackendFile,
		Key:       DefaultKey,
		Profile:   model.ProfileRich,
		MinLength: -1,
		Theme:     "classic",
		Color:     "auto",
	}
}

// DefaultDataDir uses XDG_DATA_HOME if set, otherwise $HOME/.local/share.
func DefaultDataDir(getenv func(string) string) string {
	if xdg := getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home := getenv("HOME")
	if home == "" {
		var err error
		if home, err = os.UserHomeDir(); err != nil {
			// Fallback to current directory if home can't be determined
			return "."
		}
	}
	return filepath.Join(home, ".local", "share", AppName)
}

// RegisterFlags binds root flags to c. Flag defaults are the current values,
// so call it after ApplyEnv.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.EnvFile, "env", c.EnvFile, "dotenv file to read")
	fs.Func("backend", "storage backend: file, memory, sqlite, postgres, mysql (default "+string(c.Backend)+")", func(s string) error {
		c.Backend = Backend(strings.ToLower(s))
		return nil
	})
	fs.StringVar(&c.DSN, "dsn", c.DSN, "connection string for sql backends")
	fs.StringVar(&c.Dir, "dir", c.Dir, "data directory for the file backend")
	fs.StringVar(&c.Key, "key", c.Key, "storage key")
	fs.Func("profile", "record profile: rich or minimal (default "+string(c.Profile)+")", func(s string) error {
		p, err := model.ParseProfile(s)
		if err != nil {
			return err
		}
		c.Profile = p
		return nil
	})
	fs.IntVar(&c.MinLength, "min-length", c.MinLength, "names must be longer than this (-1: profile default)")
	fs.StringVar(&c.Theme, "theme", c.Theme, "color theme: classic, neon, mono")
	fs.StringVar(&c.Color, "color", c.Color, "color output: auto, always, never")
	fs.BoolVar(&c.Group, "group", c.Group, "group output by pending/done")
	fs.BoolVar(&c.HideDone, "hide-done", c.HideDone, "hide completed tasks")
	fs.BoolVar(&c.Debug, "debug", c.Debug, "debug logging")
}

// LoadEnvFile reads c.EnvFile into the process environment without
// overriding variables that are already set.
func (c *Config) LoadEnvFile() error {
	if c.EnvFile == "" {
		return nil
	}
	if err := godotenv.Load(c.EnvFile); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", c.EnvFile, err)
	}
	return nil
}

// ApplyEnv overlays TASKLIST_* variables looked up through getenv.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	str := func(name string, dst *string) {
		if v := strings.TrimSpace(getenv(EnvPrefix + name)); v != "" {
			*dst = v
		}
	}
	boolean := func(name string, dst *bool) error {
		v := strings.TrimSpace(getenv(EnvPrefix + name))
		if v == "" {
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
		}
		*dst = b
		return nil
	}

	var backend, profile, minLen string
	str("BACKEND", &backend)
	str("DSN", &c.DSN)
	str("DIR", &c.Dir)
	str("KEY", &c.Key)
	str("PROFILE", &profile)
	str("MIN_LENGTH", &minLen)
	str("THEME", &c.Theme)
	str("COLOR", &c.Color)

	if backend != "" {
		c.Backend = Backend(strings.ToLower(backend))
	}
	if profile != "" {
		p, err := model.ParseProfile(profile)
		if err != nil {
			return fmt.Errorf("%sPROFILE: %w", EnvPrefix, err)
		}
		c.Profile = p
	}
	if minLen != "" {
		n, err := strconv.Atoi(minLen)
		if err != nil {
			return fmt.Errorf("%sMIN_LENGTH: %w", EnvPrefix, err)
		}
		c.MinLength = n
	}
	for name, dst := range map[string]*bool{"GROUP": &c.Group, "HIDE_DONE": &c.HideDone, "DEBUG": &c.Debug} {
		if err := boolean(name, dst); err != nil {
			return err
		}
	}
	return nil
}

// EffectiveMinLength resolves -1 to the profile default: 3 for rich,
// 0 (any non-blank name) for minimal.
func (c *Config) EffectiveMinLength() int {
	if c.MinLength >= 0 {
		return c.MinLength
	}
	if c.Profile == model.ProfileMinimal {
		return 0
	}
	return DefaultMinLength
}

// SQLitePath is the database file used when the sqlite backend has no DSN.
func (c *Config) SQLitePath() string {
	return filepath.Join(c.Dir, AppName+".db")
}

// EnsureDir creates the data directory if it doesn't exist.
func (c *Config) EnsureDir() error {
	if c.Dir == "" {
		return nil
	}
	return os.MkdirAll(c.Dir, 0o755)
}

// Validate reports settings that cannot work together.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendFile, BackendMemory, BackendSQLite:
	case BackendPostgres, BackendMySQL:
		if c.DSN == "" {
			return fmt.Errorf("backend %s needs a DSN (-dsn or %sDSN)", c.Backend, EnvPrefix)
		}
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	if strings.TrimSpace(c.Key) == "" {
		return errors.New("storage key must not be empty")
	}
	if c.Backend == BackendFile && strings.ContainsAny(c.Key, `/\`) {
		return fmt.Errorf("storage key %q must not contain path separators", c.Key)
	}
	switch c.Color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("color must be auto, always or never, got %q", c.Color)
	}
	if c.MinLength < -1 {
		return fmt.Errorf("min-length must be >= 0, got %d", c.MinLength)
	}
	if _, err := model.ParseProfile(string(c.Profile)); err != nil {
		return err
	}
	return nil
}

// Load resolves the full configuration from args (root flags only; the
// remaining positional arguments are returned). Flags are parsed twice: once
// to find -env, and again after the environment is applied so that flags win.
func Load(args []string, getenv func(string) string, usage func()) (*Config, []string, error) {
	probe := Default()
	pfs := flag.NewFlagSet(AppName, flag.ContinueOnError)
	pfs.SetOutput(io.Discard)
	probe.RegisterFlags(pfs)
	if err := pfs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) && usage != nil {
			usage()
		}
		return nil, nil, err
	}

	c := Default()
	c.EnvFile = probe.EnvFile
	if err := c.LoadEnvFile(); err != nil {
		return nil, nil, err
	}
	if err := c.ApplyEnv(getenv); err != nil {
		return nil, nil, err
	}
	// after the .env file, so XDG_DATA_HOME may come from it
	if c.Dir == "" {
		c.Dir = DefaultDataDir(getenv)
	}
	flags := flag.NewFlagSet(AppName, flag.ContinueOnError)
	flags.SetOutput(io.Discard)
	c.RegisterFlags(flags)
	if err := flags.Parse(args); err != nil {
		return nil, nil, err
	}
	return c, flags.Args(), nil
}
