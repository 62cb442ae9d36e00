package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feeds.yaml")
	require.NoError(t, os.WriteFile(path, []byte(DefaultConfigTemplate), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 6*time.Hour, cfg.Interval)
	assert.Equal(t, 12*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 2.0, cfg.RateLimit)
	assert.Equal(t, 15*time.Minute, cfg.LockTTL)
	require.Len(t, cfg.Feeds, 1)

	f, ok := cfg.Find("agency-a")
	require.True(t, ok)
	assert.Equal(t, "https://feeds.example.com/agency-a/listings.json", f.URL)

	_, ok = cfg.Find("missing")
	assert.False(t, ok)
}

func TestParse_Invalid(t *testing.T) {
	tests := map[string]string{
		"no url":    "feeds:\n  - name: a\n",
		"duplicate": "feeds:\n  - name: a\n    url: http://x\n  - name: a\n    url: http://y\n",
		"bad yaml":  "feeds: [",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
