package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "http://127.0.0.1:8080", c.ServerURL)
	assert.Equal(t, "http://127.0.0.1:8069", c.ERPHost)
	assert.Equal(t, "erp", c.ERPDatabase)
	assert.Equal(t, 2, c.BatchSize)
	assert.Equal(t, 1500*time.Millisecond, c.ConflictDelay)
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	c := LoadConfig()
	require.NotNil(t, c)
	assert.Equal(t, "http://127.0.0.1:8080", c.ServerURL)
	assert.Equal(t, 2, c.BatchSize)
}
