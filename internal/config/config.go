// Package config loads and saves the project's research settings.
//
// Settings live in hoofy-research.yaml at the project root. A missing file
// means defaults; fields absent from the file keep their default values.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/HendryAvila/hoofy-research/internal/research"
)

// FileName is the settings file looked up at the project root.
const FileName = "hoofy-research.yaml"

// Config is the on-disk settings document.
type Config struct {
	ConfidenceThreshold float64       `yaml:"confidence_threshold" json:"confidence_threshold"`
	SourceOrder         []string      `yaml:"source_order" json:"source_order"`
	PerSourceTimeout    time.Duration `yaml:"per_source_timeout" json:"per_source_timeout"`
	OverallDeadline     time.Duration `yaml:"overall_deadline" json:"overall_deadline"`
	Parallel            bool          `yaml:"parallel" json:"parallel"`

	KnowledgeGraph KnowledgeGraphConfig `yaml:"knowledge_graph" json:"knowledge_graph"`
	ProjectFiles   ProjectFilesConfig   `yaml:"project_files" json:"project_files"`
	WebSearch      WebSearchConfig      `yaml:"web_search" json:"web_search"`
}

// KnowledgeGraphConfig configures the knowledge-graph store and provider.
type KnowledgeGraphConfig struct {
	// DataDir holds knowledge.db. Empty uses ~/.hoofy-research.
	DataDir string `yaml:"data_dir,omitempty" json:"data_dir,omitempty"`
	// Project scopes searches to one project's nodes.
	Project string `yaml:"project,omitempty" json:"project,omitempty"`
}

// ProjectFilesConfig bounds the project-files walk.
type ProjectFilesConfig struct {
	MaxFiles    int   `yaml:"max_files" json:"max_files"`
	MaxFileSize int64 `yaml:"max_file_size" json:"max_file_size"`
}

// WebSearchConfig configures escalation suggestions.
type WebSearchConfig struct {
	MaxQueries int `yaml:"max_queries" json:"max_queries"`
}

// Default returns the settings used when no file exists.
func Default() *Config {
	rc := research.DefaultConfig()
	order := make([]string, len(rc.SourceOrder))
	for i, k := range rc.SourceOrder {
		order[i] = string(k)
	}
	return &Config{
		ConfidenceThreshold: rc.ConfidenceThreshold,
		SourceOrder:         order,
		PerSourceTimeout:    rc.PerSourceTimeout,
		OverallDeadline:     rc.OverallDeadline,
		ProjectFiles: ProjectFilesConfig{
			MaxFiles:    2000,
			MaxFileSize: 100 * 1024,
		},
		WebSearch: WebSearchConfig{MaxQueries: 3},
	}
}

// ToResearch converts the settings into a validated cascade configuration.
// Errors wrap research.ErrInvalidConfig.
func (c *Config) ToResearch() (research.Config, error) {
	order := make([]research.SourceKind, 0, len(c.SourceOrder))
	for _, s := range c.SourceOrder {
		k, err := research.ParseSourceKind(s)
		if err != nil {
			return research.Config{}, err
		}
		order = append(order, k)
	}
	rc := research.Config{
		ConfidenceThreshold: c.ConfidenceThreshold,
		SourceOrder:         order,
		PerSourceTimeout:    c.PerSourceTimeout,
		OverallDeadline:     c.OverallDeadline,
		Parallel:            c.Parallel,
	}
	if err := rc.Validate(); err != nil {
		return research.Config{}, err
	}
	return rc, nil
}

// Validate checks every field, cascade settings included.
func (c *Config) Validate() error {
	if _, err := c.ToResearch(); err != nil {
		return err
	}
	if c.ProjectFiles.MaxFiles < 0 || c.ProjectFiles.MaxFileSize < 0 {
		return fmt.Errorf("%w: project file limits must not be negative", research.ErrInvalidConfig)
	}
	if c.WebSearch.MaxQueries < 0 {
		return fmt.Errorf("%w: web search max_queries must not be negative", research.ErrInvalidConfig)
	}
	return nil
}

// Path returns the settings file path for a project root.
func Path(projectRoot string) string {
	return filepath.Join(projectRoot, FileName)
}

// Exists reports whether a settings file exists at projectRoot.
func Exists(projectRoot string) bool {
	_, err := os.Stat(Path(projectRoot))
	return err == nil
}

// Store abstracts settings persistence.
type Store interface {
	Load(projectRoot string) (*Config, error)
	Save(projectRoot string, cfg *Config) error
}

// FileStore reads and writes hoofy-research.yaml.
type FileStore struct{}

// NewFileStore creates a FileStore.
func NewFileStore() *FileStore {
	return &FileStore{}
}

// Load reads the settings at projectRoot. A missing file yields defaults.
func (s *FileStore) Load(projectRoot string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(Path(projectRoot))
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", FileName, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", FileName, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", FileName, err)
	}
	return cfg, nil
}

// Save validates cfg and writes it to projectRoot.
func (s *FileStore) Save(projectRoot string, cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", FileName, err)
	}
	if err := os.MkdirAll(projectRoot, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", projectRoot, err)
	}
	if err := os.WriteFile(Path(projectRoot), data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", FileName, err)
	}
	return nil
}

// FindProjectRoot walks up from start looking for a settings file or a .git
// directory. If neither is found it returns start.
func FindProjectRoot(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", start, err)
	}
	for current := dir; ; {
		if Exists(current) {
			return current, nil
		}
		if info, err := os.Stat(filepath.Join(current, ".git")); err == nil && info.IsDir() {
			return current, nil
		}
		parent := filepath.Dir(current)
		if parent == current {
			return dir, nil
		}
		current = parent
	}
}
