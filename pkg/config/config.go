package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// DefaultFile is the config file looked for when --config is not given.
const DefaultFile = "ragtel.yaml"

// Config holds all configuration for the ragtel tools.
// Configuration can come from a YAML file (ragtel.yaml) or environment
// variables. Environment variables always override YAML values. The file is
// optional: every field carries a default, so a bare environment works.
type Config struct {
	// DataDir is the directory holding the released CSV tables.
	DataDir string `yaml:"data_dir" env:"RAGTEL_DATA_DIR" env-default:"data"`

	// DictionaryFile is the data dictionary file name, resolved against the
	// release root (the parent of DataDir) first and DataDir second, since
	// the dictionary has lived in both places across releases.
	DictionaryFile string `yaml:"dictionary_file" env:"RAGTEL_DICTIONARY_FILE" env-default:"data_dictionary.csv"`

	// DocsDir is where generated documentation artifacts go (stats report,
	// dictionary copy).
	DocsDir string `yaml:"docs_dir" env:"RAGTEL_DOCS_DIR" env-default:"docs"`

	Checks   ChecksConfig   `yaml:"checks"`
	Checksum ChecksumConfig `yaml:"checksum"`

	// Database configuration (PostgreSQL), used only by `ragtel load`.
	Database DatabaseConfig `yaml:"database"`

	Version string `yaml:"-"` // Set at load time, not from config
}

// ChecksConfig tunes the row-count sanity check.
type ChecksConfig struct {
	// ExpectedRows maps table name to the row count documented for the
	// release. Empty means no expectation beyond non-emptiness.
	ExpectedRows map[string]int `yaml:"expected_rows"`

	// RowCountTolerance is the allowed relative deviation from an expected
	// row count before a warning is raised (0.5 = ±50%).
	RowCountTolerance float64 `yaml:"row_count_tolerance" env:"RAGTEL_ROW_COUNT_TOLERANCE" env-default:"0.5"`
}

// ChecksumConfig selects the files covered by the checksum manifest.
type ChecksumConfig struct {
	// Patterns are glob patterns relative to the release root. The defaults
	// mirror the documented release layout.
	Patterns []string `yaml:"patterns" env:"RAGTEL_CHECKSUM_PATTERNS" env-default:"data/*.csv,docs/*.csv,data_dictionary.csv,README.md,LICENSE,CITATION.cff,CHANGELOG.md"`

	// ManifestFile is the manifest path relative to the release root.
	ManifestFile string `yaml:"manifest_file" env:"RAGTEL_CHECKSUM_MANIFEST" env-default:"checksums.sha256"`
}

// DatabaseConfig holds PostgreSQL settings for the dataset loader.
// URL wins when set; otherwise the discrete PG* fields are assembled.
type DatabaseConfig struct {
	URL            string `yaml:"url" env:"RAGTEL_DATABASE_URL" env-default:""`
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"postgres"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"ragtel"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"4"`
}

// ConnectionString returns a PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode,
	)
}

// Load reads configuration from path (or ragtel.yaml when path is empty)
// with environment variable overrides. A missing default file is fine,
// since the environment plus defaults is a complete configuration. An
// explicitly given path must exist.
func Load(path, version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	explicit := path != ""
	if path == "" {
		path = DefaultFile
	}

	if _, err := os.Stat(path); err != nil {
		if explicit {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
		return cfg, cfg.validate()
	}

	if err := cleanenv.ReadConfig(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return cfg, cfg.validate()
}

func (c *Config) validate() error {
	if c.Checks.RowCountTolerance < 0 || c.Checks.RowCountTolerance > 1 {
		return fmt.Errorf("row_count_tolerance must be in [0,1], got %g", c.Checks.RowCountTolerance)
	}
	return nil
}
