// Package config loads application configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultEnvFile is the dotenv file read when no other file is given.
const DefaultEnvFile = ".env"

var (
	ErrMissingToken      = errors.New("github.token is required (set GITHUB_TOKEN)")
	ErrInvalidRepository = errors.New("github.repository must be in owner/name form (set GITHUB_REPOSITORY)")
)

// Config holds application configuration.
type Config struct {
	GitHub  GitHubConfig  `mapstructure:"github"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Report  ReportConfig  `mapstructure:"report"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// GitHubConfig describes the upstream repository and credentials.
type GitHubConfig struct {
	Token             string        `mapstructure:"token"`
	Repository        string        `mapstructure:"repository"`
	Org               string        `mapstructure:"org"`
	APIURL            string        `mapstructure:"api_url"`
	WebURL            string        `mapstructure:"web_url"`
	RateLimitMaxSleep time.Duration `mapstructure:"rate_limit_max_sleep"`
}

// HTTPConfig contains transport settings.
type HTTPConfig struct {
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// ReportConfig contains report generation settings.
type ReportConfig struct {
	Concurrency int          `mapstructure:"concurrency"`
	Labels      LabelsConfig `mapstructure:"labels"`
}

// LabelsConfig holds the heading line of each report section.
type LabelsConfig struct {
	Merged        string `mapstructure:"merged"`
	WaitingReview string `mapstructure:"waiting_review"`
	InProgress    string `mapstructure:"in_progress"`
	IssuesOpened  string `mapstructure:"issues_opened"`
}

// LoggingConfig contains logger preferences.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// Load reads configuration from the environment, seeded from envFile.
// Variables already present in the process environment take precedence over the file.
// Only the default file may be missing; any other file that cannot be loaded is an error.
func Load(envFile string) (*Config, error) {
	if err := godotenv.Load(envFile); err != nil {
		if envFile != DefaultEnvFile || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	}

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	bindEnvs(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("github.org", "samouraiworld")
	v.SetDefault("github.web_url", "https://github.com")
	v.SetDefault("github.rate_limit_max_sleep", time.Duration(0))

	v.SetDefault("http.request_timeout", 30*time.Second)

	v.SetDefault("report.concurrency", 8)
	v.SetDefault("report.labels.merged", "- **PRs merged this week:**")
	v.SetDefault("report.labels.waiting_review", "- **PRs waiting for review:**")
	v.SetDefault("report.labels.in_progress", "- **PRs in progress:**")
	v.SetDefault("report.labels.issues_opened", "- **Issues opened this week:**")

	v.SetDefault("logging.level", "info")
}

func bindEnvs(v *viper.Viper) {
	keys := []string{
		"github.token",
		"github.repository",
		"github.org",
		"github.api_url",
		"github.web_url",
		"github.rate_limit_max_sleep",
		"http.request_timeout",
		"report.concurrency",
		"report.labels.merged",
		"report.labels.waiting_review",
		"report.labels.in_progress",
		"report.labels.issues_opened",
		"logging.level",
	}

	for _, k := range keys {
		_ = v.BindEnv(k)
	}
}

// Validate ensures required fields are present and well formed.
func (c Config) Validate() error {
	if c.GitHub.Token == "" {
		return ErrMissingToken
	}
	if _, _, err := c.GitHub.OwnerRepo(); err != nil {
		return err
	}
	if c.GitHub.Org == "" {
		return errors.New("github.org is required")
	}
	if c.Report.Concurrency <= 0 {
		return fmt.Errorf("report.concurrency must be positive, got %d", c.Report.Concurrency)
	}
	return nil
}

// OwnerRepo splits the configured repository into owner and name.
func (g GitHubConfig) OwnerRepo() (string, string, error) {
	owner, name, ok := strings.Cut(g.Repository, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidRepository, g.Repository)
	}
	return owner, name, nil
}
