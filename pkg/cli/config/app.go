package config

import (
	"os"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"
)

// AppConfig represents the application configuration file
type AppConfig struct {
	Categories []Category `toml:"category"`

	path string
}

// Category represents a risk category configuration
type Category struct {
	Name        string `toml:"name"`
	Description string `toml:"description"`
}

// Validate checks if the Category is valid
func (c *Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return goerr.Wrap(ErrMissingName, "category name is required")
	}
	return nil
}

// Validate checks if the AppConfig is valid
func (a *AppConfig) Validate() error {
	seen := make(map[string]bool)
	for _, cat := range a.Categories {
		if err := cat.Validate(); err != nil {
			return goerr.Wrap(err, "invalid category")
		}
		key := strings.ToLower(cat.Name)
		if seen[key] {
			return goerr.Wrap(ErrDuplicateName, "duplicate category", goerr.V("name", cat.Name))
		}
		seen[key] = true
	}
	return nil
}

// Flags returns CLI flags for application configuration
func (a *AppConfig) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Usage:       "Path to TOML configuration file",
			Sources:     cli.EnvVars("RISKREGISTER_CONFIG"),
			Destination: &a.path,
		},
	}
}

// CategoryNames loads the config file when a path is set and returns the
// configured category names. An empty result means "use defaults".
func (a *AppConfig) CategoryNames() ([]string, error) {
	if a.path == "" {
		return nil, nil
	}

	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(a.path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V("path", a.path))
	}

	if err := toml.Unmarshal(data, a); err != nil {
		return nil, goerr.Wrap(ErrInvalidConfig, "failed to parse TOML config", goerr.V("path", a.path), goerr.V("cause", err.Error()))
	}

	if err := a.Validate(); err != nil {
		return nil, goerr.Wrap(err, "config validation failed", goerr.V("path", a.path))
	}

	names := make([]string, len(a.Categories))
	for i, cat := range a.Categories {
		names[i] = strings.TrimSpace(cat.Name)
	}
	return names, nil
}
