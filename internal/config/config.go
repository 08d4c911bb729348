package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	log "github.com/sirupsen/logrus"
)

const (
	// EnvConfigPath overrides the default config file location.
	EnvConfigPath = "GORG_CONFIG"

	configDirName     = "gorg"
	configFileName    = "config.toml"
	projectsDirName   = "Projects"
	indexFileName     = ".gorg-db"
	defaultMaxItems   = 50
	defaultMaxDepth   = 8
	defaultGitCommand = "git"
	defaultRemoteName = "origin"
)

// Config represents the application configuration
type Config struct {
	ProjectsPath  string   `toml:"projects_path"`
	IndexFilePath string   `toml:"index_file_path"`
	GitCommand    string   `toml:"git_command"`
	GitRemoteName string   `toml:"git_remote_name"`
	MaxFindItems  int      `toml:"max_find_items"`
	ScanMaxDepth  int      `toml:"scan_max_depth"`
	ScanIgnore    []string `toml:"scan_ignore"`
}

// ConfigService handles configuration loading
type ConfigService interface {
	Load() (*Config, error)
	LoadFromPath(path string) (*Config, error)
	Path() string
}

// configService is the concrete implementation
type configService struct {
	filePath string
	homeDir  string
}

// NewConfigService creates a config service reading from the location given
// by GORG_CONFIG, XDG_CONFIG_HOME or ~/.config, in that order.
func NewConfigService() ConfigService {
	home := homeDir()
	return &configService{
		filePath: resolvePath(os.Getenv, home),
		homeDir:  home,
	}
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}

func resolvePath(getenv func(string) string, home string) string {
	if path := getenv(EnvConfigPath); path != "" {
		return path
	}
	base := getenv("XDG_CONFIG_HOME")
	if base == "" {
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, configDirName, configFileName)
}

// Path returns the file Load reads.
func (cs *configService) Path() string {
	return cs.filePath
}

// Load loads the configuration file, falling back to the defaults when it
// does not exist.
func (cs *configService) Load() (*Config, error) {
	log.Debugf("Reading config from path: %s", cs.filePath)

	data, err := os.ReadFile(cs.filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Debugf("Config not found from %s. Using default configuration.", cs.filePath)
			return defaultConfig(cs.homeDir), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return parse(data, cs.homeDir)
}

// LoadFromPath loads configuration from a specific path. The file must exist.
func (cs *configService) LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return parse(data, cs.homeDir)
}

func parse(data []byte, home string) (*Config, error) {
	cfg := Config{
		GitCommand:    defaultGitCommand,
		GitRemoteName: defaultRemoteName,
		MaxFindItems:  defaultMaxItems,
		ScanMaxDepth:  defaultMaxDepth,
	}

	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return nil, fmt.Errorf("failed to parse config: %s", strict.String())
		}
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.fill(home)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// fill applies the defaults that depend on other fields and expands home
// directory prefixes.
func (c *Config) fill(home string) {
	if c.ProjectsPath == "" {
		c.ProjectsPath = filepath.Join(home, projectsDirName)
	}
	c.ProjectsPath = expandHome(c.ProjectsPath, home)

	if c.IndexFilePath == "" {
		c.IndexFilePath = filepath.Join(c.ProjectsPath, indexFileName)
	}
	c.IndexFilePath = expandHome(c.IndexFilePath, home)

	if c.ScanIgnore == nil {
		c.ScanIgnore = defaultScanIgnore()
	}
}

// Validate reports settings that cannot be used.
func (c *Config) Validate() error {
	var errs []error
	if c.MaxFindItems <= 0 {
		errs = append(errs, fmt.Errorf("max_find_items must be positive, got %d", c.MaxFindItems))
	}
	if c.ScanMaxDepth <= 0 {
		errs = append(errs, fmt.Errorf("scan_max_depth must be positive, got %d", c.ScanMaxDepth))
	}
	if strings.TrimSpace(c.GitCommand) == "" {
		errs = append(errs, errors.New("git_command must not be empty"))
	}
	if strings.TrimSpace(c.GitRemoteName) == "" {
		errs = append(errs, errors.New("git_remote_name must not be empty"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func expandHome(path, home string) string {
	if path == "~" {
		return home
	}
	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		return filepath.Join(home, rest)
	}
	return path
}

func defaultScanIgnore() []string {
	return []string{"**/node_modules", "**/vendor"}
}

func defaultConfig(home string) *Config {
	cfg := &Config{
		GitCommand:    defaultGitCommand,
		GitRemoteName: defaultRemoteName,
		MaxFindItems:  defaultMaxItems,
		ScanMaxDepth:  defaultMaxDepth,
	}
	cfg.fill(home)
	return cfg
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return defaultConfig(homeDir())
}
