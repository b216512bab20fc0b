package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// ProjectConfigFile is the name of the project-level config file
	ProjectConfigFile = "semcode.yaml"
	// UserConfigDir is the directory for user-level config
	UserConfigDir = ".config/semcode"
	// UserConfigFile is the name of the user-level config file
	UserConfigFile = "config.yaml"
)

// Loader handles configuration loading with layered precedence
type Loader struct {
	logger *slog.Logger

	// home overrides the user's home directory; tests set it
	home string
}

// NewLoader creates a new configuration loader
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// LoadOptions selects what the loader reads.
type LoadOptions struct {
	// Root is the input root; the project config is searched upward from it
	Root string
	// ConfigPath replaces the project config search when set
	ConfigPath string
	// Overrides are applied last (CLI flags)
	Overrides *Config
}

// Load loads configuration with layered precedence:
// 1. Default config
// 2. User config (~/.config/semcode/config.yaml)
// 3. Project config (semcode.yaml in the root or its parents, or --config)
// 4. Overrides from the command line
func (l *Loader) Load(opts LoadOptions) (*Config, error) {
	// Start with defaults
	config := DefaultConfig()

	// Load user config
	userConfigPath := l.userConfigPath()
	if userConfigPath != "" {
		if userConfig, err := loadLayer(userConfigPath); err == nil {
			l.logger.Debug("Loaded user config", slog.String("path", userConfigPath))
			config.Merge(userConfig)
		} else if !errors.Is(err, fs.ErrNotExist) {
			l.logger.Warn("Failed to load user config", slog.String("path", userConfigPath), slog.String("error", err.Error()))
		}
	}

	// Resolve the input root before searching for the project config
	root := opts.Root
	if root == "" && opts.Overrides != nil {
		root = opts.Overrides.Root
	}

	// Load project config; an explicit path must load
	if opts.ConfigPath != "" {
		projectConfig, err := loadLayer(opts.ConfigPath)
		if err != nil {
			return nil, err
		}
		l.logger.Debug("Loaded config", slog.String("path", opts.ConfigPath))
		config.Merge(projectConfig)
	} else if projectConfigPath := l.findProjectConfig(root); projectConfigPath != "" {
		if projectConfig, err := loadLayer(projectConfigPath); err == nil {
			l.logger.Debug("Loaded project config", slog.String("path", projectConfigPath))
			config.Merge(projectConfig)
		} else {
			l.logger.Warn("Failed to load project config", slog.String("path", projectConfigPath), slog.String("error", err.Error()))
		}
	} else {
		l.logger.Debug("No project config found")
	}

	config.Merge(opts.Overrides)

	// Auto-detect the input root if not set
	if config.Root == "" {
		if gitRoot := l.detectGitRoot(); gitRoot != "" {
			config.Root = gitRoot
			l.logger.Debug("Auto-detected git root", slog.String("path", gitRoot))
		} else if cwd, err := os.Getwd(); err == nil {
			// Fall back to current directory
			config.Root = cwd
			l.logger.Debug("Using current directory as input root", slog.String("path", cwd))
		}
	}

	// Validate final config
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// loadLayer reads a config file without defaults so that merging it only
// overrides the keys it sets.
func loadLayer(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	var layer Config
	if err := yaml.Unmarshal(data, &layer); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return &layer, nil
}

// EnsureUserConfig creates the user config file with defaults if it doesn't exist
func (l *Loader) EnsureUserConfig() error {
	userConfigPath := l.userConfigPath()
	if userConfigPath == "" {
		return fmt.Errorf("no home directory")
	}

	// Check if it already exists
	if _, err := os.Stat(userConfigPath); err == nil {
		return nil // Already exists
	}

	// Create default config
	config := DefaultConfig()
	if err := config.SaveToFile(userConfigPath); err != nil {
		return err
	}

	l.logger.Info("Created default user config", slog.String("path", userConfigPath))
	return nil
}

// userConfigPath returns the path to the user config file
func (l *Loader) userConfigPath() string {
	home := l.home
	if home == "" {
		var err error
		if home, err = os.UserHomeDir(); err != nil {
			return ""
		}
	}
	return filepath.Join(home, UserConfigDir, UserConfigFile)
}

// findProjectConfig searches for semcode.yaml in start and its parent
// directories; start defaults to the current directory
func (l *Loader) findProjectConfig(start string) string {
	if start == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return ""
		}
		start = cwd
	}

	dir, err := filepath.Abs(start)
	if err != nil {
		return ""
	}
	for {
		configPath := filepath.Join(dir, ProjectConfigFile)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		// Move to parent directory
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			break
		}
		dir = parent
	}

	return ""
}

// detectGitRoot finds the git repository root from current directory
func (l *Loader) detectGitRoot() string {
	cmd := exec.Command("git", "rev-parse", "--show-toplevel")
	output, err := cmd.Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(output))
}
