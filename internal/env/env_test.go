package env

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetters(t *testing.T) {
	t.Setenv("LISTING_PORT", "8081")
	t.Setenv("LISTING_BAD_PORT", "eighty")
	t.Setenv("LISTING_TTL", "90s")
	t.Setenv("LISTING_TTL_SECONDS", "30")
	t.Setenv("LISTING_FLAG", "Yes")

	assert.Equal(t, 8081, GetInt("LISTING_PORT", 1))
	assert.Equal(t, 1, GetInt("LISTING_BAD_PORT", 1))
	assert.Equal(t, 1, GetInt("LISTING_UNSET", 1))
	assert.Equal(t, 90*time.Second, GetDuration("LISTING_TTL", time.Minute))
	assert.Equal(t, 30*time.Second, GetDuration("LISTING_TTL_SECONDS", time.Minute))
	assert.Equal(t, time.Minute, GetDuration("LISTING_UNSET", time.Minute))
	assert.True(t, GetBool("LISTING_FLAG", false))
	assert.True(t, GetBool("LISTING_UNSET", true))
	assert.Equal(t, "def", Get("LISTING_UNSET", "def"))
	assert.Equal(t, "8081", Get("LISTING_PORT", "def"))
}
