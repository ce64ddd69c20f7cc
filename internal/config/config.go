// Package config loads the node configuration from marketd.toml, environment
// variables and built-in defaults.
package config

import (
	"fmt"
	"path/filepath"
)

// Config is the complete node configuration.
type Config struct {
	// RPC is the public JSON-RPC endpoint.
	RPC RpcConfig `toml:"rpc" mapstructure:"rpc"`

	// WS is the WebSocket event stream endpoint.
	WS WsConfig `toml:"ws" mapstructure:"ws"`

	// Grpc is the admin gRPC endpoint.
	Grpc GrpcConfig `toml:"grpc" mapstructure:"grpc"`

	// OfferStore selects how the offer book is persisted.
	OfferStore StoreConfig `toml:"offer_store" mapstructure:"offer_store"`

	// Journal configures the optional event journal.
	Journal JournalConfig `toml:"journal" mapstructure:"journal"`

	// Standalone seeds the in-memory collaborators when the node runs
	// without external registry and value-channel integrations.
	Standalone StandaloneConfig `toml:"standalone" mapstructure:"standalone"`

	configPath string `toml:"-" mapstructure:"-"`
}

// RpcConfig configures the JSON-RPC listener.
type RpcConfig struct {
	IP   string `toml:"ip" mapstructure:"ip"`
	Port int    `toml:"port" mapstructure:"port"`
}

// Address returns the listen address.
func (c RpcConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.IP, c.Port)
}

// WsConfig configures the WebSocket listener.
type WsConfig struct {
	Enabled bool   `toml:"enabled" mapstructure:"enabled"`
	IP      string `toml:"ip" mapstructure:"ip"`
	Port    int    `toml:"port" mapstructure:"port"`
}

// Address returns the listen address.
func (c WsConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.IP, c.Port)
}

// GrpcConfig configures the admin gRPC listener.
type GrpcConfig struct {
	Enabled        bool   `toml:"enabled" mapstructure:"enabled"`
	Address        string `toml:"address" mapstructure:"address"`
	MaxRecvMsgSize int    `toml:"max_recv_msg_size" mapstructure:"max_recv_msg_size"`
	MaxSendMsgSize int    `toml:"max_send_msg_size" mapstructure:"max_send_msg_size"`
}

// StoreConfig selects the offer book backend.
type StoreConfig struct {
	// Type is "pebble", "leveldb" or "memory".
	Type string `toml:"type" mapstructure:"type"`

	// Path is the on-disk location for persistent backends.
	Path string `toml:"path" mapstructure:"path"`
}

// JournalConfig configures the event journal.
type JournalConfig struct {
	Enabled bool `toml:"enabled" mapstructure:"enabled"`

	// Driver is "sqlite" or "postgres".
	Driver string `toml:"driver" mapstructure:"driver"`

	// DSN is the driver-specific data source name.
	DSN string `toml:"dsn" mapstructure:"dsn"`
}

// StandaloneConfig seeds in-memory collaborators.
type StandaloneConfig struct {
	// Assets are minted into the in-memory registry at startup.
	Assets []SeedAsset `toml:"assets" mapstructure:"assets"`
}

// SeedAsset is one pre-minted asset.
type SeedAsset struct {
	Asset   string `toml:"asset" mapstructure:"asset"`
	AssetID string `toml:"asset_id" mapstructure:"asset_id"`
	Owner   string `toml:"owner" mapstructure:"owner"`
}

// GetConfigPath returns the path the config was loaded from, or "" when built
// from defaults only.
func (c *Config) GetConfigPath() string {
	return c.configPath
}

// DefaultConfigPath returns the default config file location under dir.
func DefaultConfigPath(dir string) string {
	return filepath.Join(dir, "marketd.toml")
}
