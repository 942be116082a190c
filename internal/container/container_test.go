package container

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"olynk/internal/config"
	"olynk/internal/errors"
)

func testConfig() *config.Config {
	return &config.Config{
		Engine:   config.DefaultEngine(),
		Server:   config.ServerConfig{Port: "0", GinMode: "test", MaxUploadBytes: 1 << 20},
		LogLevel: "ERROR",
	}
}

func TestNewWithoutDatabaseUsesMemory(t *testing.T) {
	c, err := New(context.Background(), testConfig())
	require.NoError(t, err)
	defer c.Shutdown(context.Background())

	assert.Nil(t, c.DB)
	require.NotNil(t, c.Reports)
	require.NotNil(t, c.Analysis)

	srv := c.Server()
	assert.Equal(t, ":0", srv.Addr)
	assert.NotNil(t, srv.Handler)
}

func TestNewRejectsInvalidEngineConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Engine.MultivariatePercentile = 2
	_, err := New(context.Background(), cfg)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))

	_, err = New(context.Background(), nil)
	assert.Error(t, err)
}
