package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the ingester's feed configuration file.
type Config struct {
	Interval       time.Duration `yaml:"interval"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	RateLimit      float64       `yaml:"rate_limit"`
	LockTTL        time.Duration `yaml:"lock_ttl"`
	Feeds          []Feed        `yaml:"feeds"`
}

// Feed is a remote endpoint serving listing documents.
type Feed struct {
	Name   string `yaml:"name"`
	URL    string `yaml:"url"`
	APIKey string `yaml:"api_key"`
}

const DefaultConfigTemplate = `interval: 6h
request_timeout: 12s
rate_limit: 2
lock_ttl: 15m
feeds:
  - name: "agency-a"
    url: "https://feeds.example.com/agency-a/listings.json"
    api_key: ""
`

// Load reads a feed configuration from path. Feeds without a name or URL are
// rejected; duplicate names are rejected.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return Parse(b)
}

func Parse(b []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	seen := make(map[string]bool, len(cfg.Feeds))
	for i, f := range cfg.Feeds {
		if f.Name == "" || f.URL == "" {
			return nil, fmt.Errorf("feed %d: name and url are required", i)
		}
		if seen[f.Name] {
			return nil, fmt.Errorf("feed %q defined twice", f.Name)
		}
		seen[f.Name] = true
	}
	return &cfg, nil
}

// Find returns the feed with the given name.
func (c *Config) Find(name string) (Feed, bool) {
	for _, f := range c.Feeds {
		if f.Name == name {
			return f, true
		}
	}
	return Feed{}, false
}
