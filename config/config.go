// Package config provides configuration loading and management for semcode.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Stage names in their fixed execution order.
const (
	StageLoad    = "load"
	StageFiles   = "files"
	StageContent = "content"
	StageCode    = "code"
	StagePersist = "persist"
)

// KnownStages lists every stage in execution order.
var KnownStages = []string{StageLoad, StageFiles, StageContent, StageCode, StagePersist}

// Config represents the complete semcode configuration
type Config struct {
	// Root is the input root (overridden by --repo)
	Root string `yaml:"root"`
	// Repository names the root when it is a single repository (default: base name)
	Repository string `yaml:"repository"`
	// Repositories are glob patterns under Root, each match being one repository
	Repositories []string `yaml:"repositories"`

	// Output is the N-Triples file read as merge base and overwritten at the end
	Output string `yaml:"output"`
	// Ontology is the ontology YAML file (empty = embedded default)
	Ontology string `yaml:"ontology"`
	// EntityNamespace is the base IRI of minted entities
	EntityNamespace string `yaml:"entity_namespace"`
	// QueryDir holds per-language query table overrides (<language>.yaml)
	QueryDir string `yaml:"query_dir"`

	// Languages maps file extensions to parser languages
	Languages map[string]string `yaml:"languages"`
	// ExcludedDirs are directory names skipped at every depth
	ExcludedDirs []string `yaml:"excluded_dirs"`
	// IgnorePatterns are globs for files skipped before classification
	IgnorePatterns []string `yaml:"ignore_patterns"`
	// Classifiers are ordered (class, regex) rules; the first match wins
	Classifiers []Classifier `yaml:"classifiers"`
	// DefaultClass is used when no classifier matches (empty = unknown)
	DefaultClass string `yaml:"default_class"`
	// Frameworks maps framework names to import module prefixes
	Frameworks map[string][]string `yaml:"frameworks"`

	// Stages enables a subset of KnownStages; order is always canonical
	Stages []string `yaml:"stages"`
	// Workers bounds parallel file extraction
	Workers int `yaml:"workers"`
	// FileTimeout bounds the extraction of one file (0 = no limit)
	FileTimeout time.Duration `yaml:"file_timeout"`
	// MaxLabelLength bounds rdfs:label values
	MaxLabelLength int `yaml:"max_label_length"`
	// MetricsFile receives a Prometheus text exposition at the end of a run
	MetricsFile string `yaml:"metrics_file"`
}

// Classifier maps files whose relative path matches Pattern to Class.
type Classifier struct {
	Class   string `yaml:"class"`
	Pattern string `yaml:"pattern"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Output:          "semcode.nt",
		EntityNamespace: "https://semcode.dev/entity/",
		Languages: map[string]string{
			".go":   "go",
			".py":   "python",
			".pyi":  "python",
			".java": "java",
			".js":   "javascript",
			".mjs":  "javascript",
			".cjs":  "javascript",
			".jsx":  "javascript",
			".ts":   "typescript",
			".mts":  "typescript",
			".tsx":  "tsx",
			".rs":   "rust",
		},
		ExcludedDirs: []string{
			".cache", ".git", ".gradle", ".hg", ".idea", ".mypy_cache", ".nox",
			".npm", ".pytest_cache", ".ruff_cache", ".svn", ".tox", ".venv",
			".vscode", ".yarn", "__pycache__", "bower_components", "build",
			"coverage", "dist", "node_modules", "target", "vendor", "venv",
		},
		IgnorePatterns: []string{
			"*.min.js", "*.min.css", "*.map", "*.lock", "*.pyc", "*.class",
			"*.log", ".DS_Store",
		},
		Classifiers: []Classifier{
			{Class: "BuildFile", Pattern: `(^|/)(Makefile|Dockerfile|go\.mod|go\.sum|package\.json|pom\.xml|build\.gradle(\.kts)?|Cargo\.toml|setup\.py|pyproject\.toml)$`},
			{Class: "TestFile", Pattern: `(_test\.go|(^|/)test_[^/]*\.py|_test\.py|\.(test|spec)\.[cm]?[jt]sx?|Tests?\.java)$`},
			{Class: "SourceCodeFile", Pattern: `\.(go|pyi?|java|[cm]?js|jsx|m?ts|tsx|rs)$`},
			{Class: "StylesheetFile", Pattern: `\.(css|scss|sass|less|styl)$`},
			{Class: "MarkupFile", Pattern: `\.(html?|xml|svg|vue|svelte)$`},
			{Class: "DocumentationFile", Pattern: `(\.(md|markdown|rst|adoc|txt)|(^|/)(LICENSE|NOTICE|AUTHORS))$`},
			{Class: "ConfigurationFile", Pattern: `\.(ya?ml|toml|ini|json|cfg|conf|properties|env)$`},
			{Class: "DataFile", Pattern: `\.(csv|tsv|parquet|sqlite3?|db|nt|ttl)$`},
			{Class: "MediaFile", Pattern: `\.(png|jpe?g|gif|webp|ico|bmp|mp3|mp4|wav|pdf|woff2?|ttf)$`},
		},
		Frameworks: map[string][]string{
			"angular":     {"@angular"},
			"cobra":       {"github.com/spf13/cobra"},
			"django":      {"django"},
			"express":     {"express"},
			"fastapi":     {"fastapi"},
			"flask":       {"flask"},
			"gin":         {"github.com/gin-gonic/gin"},
			"junit":       {"org.junit"},
			"numpy":       {"numpy"},
			"pandas":      {"pandas"},
			"pytest":      {"pytest"},
			"react":       {"react", "react-dom"},
			"serde":       {"serde"},
			"spring":      {"org.springframework"},
			"tokio":       {"tokio"},
			"vue":         {"vue"},
			"tree-sitter": {"github.com/smacker/go-tree-sitter", "tree_sitter"},
		},
		Stages:         append([]string(nil), KnownStages...),
		Workers:        4,
		FileTimeout:    30 * time.Second,
		MaxLabelLength: 80,
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Output == "" {
		return fmt.Errorf("output is required")
	}
	if c.EntityNamespace == "" {
		return fmt.Errorf("entity_namespace is required")
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1")
	}
	if c.FileTimeout < 0 {
		return fmt.Errorf("file_timeout must not be negative")
	}
	if c.MaxLabelLength < 16 {
		return fmt.Errorf("max_label_length must be at least 16")
	}
	for ext := range c.Languages {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("languages: extension %q must start with a dot", ext)
		}
	}
	for i, cl := range c.Classifiers {
		if cl.Class == "" {
			return fmt.Errorf("classifiers[%d]: class is required", i)
		}
		if _, err := regexp.Compile(cl.Pattern); err != nil {
			return fmt.Errorf("classifiers[%d]: %w", i, err)
		}
	}
	seen := make(map[string]bool, len(c.Stages))
	for _, s := range c.Stages {
		if !isKnownStage(s) {
			return fmt.Errorf("stages: unknown stage %q", s)
		}
		if seen[s] {
			return fmt.Errorf("stages: %q listed twice", s)
		}
		seen[s] = true
	}
	return nil
}

func isKnownStage(name string) bool {
	for _, s := range KnownStages {
		if s == name {
			return true
		}
	}
	return false
}

// StageEnabled reports whether the named stage runs.
func (c *Config) StageEnabled(name string) bool {
	for _, s := range c.Stages {
		if s == name {
			return true
		}
	}
	return false
}

// LanguageFor returns the parser language of a file extension.
func (c *Config) LanguageFor(ext string) (string, bool) {
	lang, ok := c.Languages[strings.ToLower(ext)]
	return lang, ok
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Input
	if other.Root != "" {
		c.Root = other.Root
	}
	if other.Repository != "" {
		c.Repository = other.Repository
	}
	if len(other.Repositories) > 0 {
		c.Repositories = other.Repositories
	}

	// Output and vocabulary
	if other.Output != "" {
		c.Output = other.Output
	}
	if other.Ontology != "" {
		c.Ontology = other.Ontology
	}
	if other.EntityNamespace != "" {
		c.EntityNamespace = other.EntityNamespace
	}
	if other.QueryDir != "" {
		c.QueryDir = other.QueryDir
	}

	// Discovery
	for ext, lang := range other.Languages {
		if c.Languages == nil {
			c.Languages = make(map[string]string)
		}
		c.Languages[ext] = lang
	}
	if len(other.ExcludedDirs) > 0 {
		c.ExcludedDirs = other.ExcludedDirs
	}
	if len(other.IgnorePatterns) > 0 {
		c.IgnorePatterns = other.IgnorePatterns
	}
	if len(other.Classifiers) > 0 {
		c.Classifiers = other.Classifiers
	}
	if other.DefaultClass != "" {
		c.DefaultClass = other.DefaultClass
	}
	for name, prefixes := range other.Frameworks {
		if c.Frameworks == nil {
			c.Frameworks = make(map[string][]string)
		}
		c.Frameworks[name] = prefixes
	}

	// Execution
	if len(other.Stages) > 0 {
		c.Stages = other.Stages
	}
	if other.Workers != 0 {
		c.Workers = other.Workers
	}
	if other.FileTimeout != 0 {
		c.FileTimeout = other.FileTimeout
	}
	if other.MaxLabelLength != 0 {
		c.MaxLabelLength = other.MaxLabelLength
	}
	if other.MetricsFile != "" {
		c.MetricsFile = other.MetricsFile
	}
}
