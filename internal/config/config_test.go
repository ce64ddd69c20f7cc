package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	tempDir := t.TempDir()

	configContent := `
[rpc]
ip = "0.0.0.0"
port = 9010

[ws]
enabled = true
ip = "0.0.0.0"
port = 9011

[grpc]
enabled = true
address = "127.0.0.1:9050"

[offer_store]
type = "pebble"
path = "/tmp/test/offers"

[journal]
enabled = true
driver = "sqlite"
dsn = "/tmp/test/journal.db"

[[standalone.assets]]
asset = "gallery"
asset_id = "42"
owner = "alice"
`
	configPath := filepath.Join(tempDir, "marketd.toml")
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0644))

	config, err := LoadConfig(configPath)
	require.NoError(t, err)
	require.NotNil(t, config)

	assert.Equal(t, "0.0.0.0:9010", config.RPC.Address())
	assert.Equal(t, "0.0.0.0:9011", config.WS.Address())
	assert.True(t, config.Grpc.Enabled)
	assert.Equal(t, "127.0.0.1:9050", config.Grpc.Address)

	assert.Equal(t, "pebble", config.OfferStore.Type)
	assert.Equal(t, "/tmp/test/offers", config.OfferStore.Path)

	assert.True(t, config.Journal.Enabled)
	assert.Equal(t, "sqlite", config.Journal.Driver)

	require.Len(t, config.Standalone.Assets, 1)
	assert.Equal(t, SeedAsset{Asset: "gallery", AssetID: "42", Owner: "alice"}, config.Standalone.Assets[0])

	assert.Equal(t, configPath, config.GetConfigPath())
}

func TestLoadDefaultConfig(t *testing.T) {
	config, err := LoadDefaultConfig()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:7010", config.RPC.Address())
	assert.True(t, config.WS.Enabled)
	assert.False(t, config.Grpc.Enabled)
	assert.Equal(t, "memory", config.OfferStore.Type)
	assert.False(t, config.Journal.Enabled)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig("/nonexistent/marketd.toml")
	assert.Error(t, err)
}

func TestConfigValidation(t *testing.T) {
	base := func() *Config {
		config, err := LoadDefaultConfig()
		require.NoError(t, err)
		return config
	}

	config := base()
	assert.NoError(t, ValidateConfig(config))

	config = base()
	config.RPC.Port = 0
	assert.Error(t, ValidateConfig(config))

	config = base()
	config.WS.Port = config.RPC.Port
	assert.Error(t, ValidateConfig(config), "shared rpc/ws address must be rejected")

	config = base()
	config.OfferStore.Type = "pebble"
	assert.Error(t, ValidateConfig(config), "persistent store without path must be rejected")

	config = base()
	config.OfferStore.Type = "nudb"
	assert.Error(t, ValidateConfig(config))

	config = base()
	config.Journal.Enabled = true
	config.Journal.DSN = ""
	assert.Error(t, ValidateConfig(config))

	config = base()
	config.Grpc.Enabled = true
	config.Grpc.Address = "no-port"
	assert.Error(t, ValidateConfig(config))

	config = base()
	config.Standalone.Assets = []SeedAsset{{Asset: "gallery"}}
	assert.Error(t, ValidateConfig(config))
}

func TestEnvironmentOverride(t *testing.T) {
	t.Setenv("MARKETD_RPC_PORT", "9999")

	config, err := LoadDefaultConfig()
	require.NoError(t, err)
	assert.Equal(t, 9999, config.RPC.Port)
}
