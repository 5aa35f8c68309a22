// Package config loads the runtime configuration from the environment.
//
// A local .env file is honored when present so development setups do
// not have to export the variables by hand. Validation happens once at
// load time; collaborators receive a fully checked Config and never
// consult the environment themselves.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Store backend selectors.
const (
	StoreGist = "gist"
	StoreDir  = "dir"
)

// Environment variable names.
const (
	EnvOpenAIAPIKey  = "OPENAI_API_KEY"
	EnvOpenAIModel   = "OPENAI_MODEL"
	EnvOpenAIBaseURL = "OPENAI_BASE_URL"
	EnvGitHubToken   = "GITHUB_TOKEN"
	EnvGistID        = "AUTOBRIEF_GIST_ID"
	EnvStore         = "AUTOBRIEF_STORE"
	EnvDataDir       = "AUTOBRIEF_DATA_DIR"
	EnvTimezone      = "AUTOBRIEF_TIMEZONE"
)

// Config holds everything the digest pipeline needs from the environment.
type Config struct {
	// OpenAIAPIKey authenticates summarization requests.
	OpenAIAPIKey string

	// OpenAIModel overrides the default summarization model when set.
	OpenAIModel string

	// OpenAIBaseURL overrides the OpenAI API base URL when set.
	OpenAIBaseURL string

	// Store selects the user document backend, "gist" or "dir".
	Store string

	// GitHubToken authenticates Gist API requests. Required for the
	// gist store.
	GitHubToken string

	// GistID is the Gist holding the per-user documents. Required for
	// the gist store.
	GistID string

	// DataDir is the local directory holding per-user documents.
	// Required for the dir store.
	DataDir string

	// Timezone is the IANA zone name schedules are interpreted in.
	Timezone string

	// Location is the loaded Timezone.
	Location *time.Location
}

// Load reads the configuration from the environment, honoring a .env
// file in the working directory when one exists.
func Load() (*Config, error) {
	// Missing .env is the normal production case
	_ = godotenv.Load()

	cfg := &Config{
		OpenAIAPIKey:  os.Getenv(EnvOpenAIAPIKey),
		OpenAIModel:   os.Getenv(EnvOpenAIModel),
		OpenAIBaseURL: os.Getenv(EnvOpenAIBaseURL),
		Store:         os.Getenv(EnvStore),
		GitHubToken:   os.Getenv(EnvGitHubToken),
		GistID:        os.Getenv(EnvGistID),
		DataDir:       os.Getenv(EnvDataDir),
		Timezone:      os.Getenv(EnvTimezone),
	}
	if cfg.Store == "" {
		cfg.Store = StoreGist
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required settings and resolves the timezone.
func (c *Config) Validate() error {
	if c.OpenAIAPIKey == "" {
		return fmt.Errorf("%s is required", EnvOpenAIAPIKey)
	}

	switch c.Store {
	case StoreGist:
		if c.GitHubToken == "" {
			return fmt.Errorf("%s is required for the gist store", EnvGitHubToken)
		}
		if c.GistID == "" {
			return fmt.Errorf("%s is required for the gist store", EnvGistID)
		}
	case StoreDir:
		if c.DataDir == "" {
			return fmt.Errorf("%s is required for the dir store", EnvDataDir)
		}
	default:
		return fmt.Errorf("invalid %s %q, must be one of: %s, %s", EnvStore, c.Store, StoreGist, StoreDir)
	}

	if c.Timezone == "" {
		c.Location = nil
		return nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", EnvTimezone, c.Timezone, err)
	}
	c.Location = loc
	return nil
}
