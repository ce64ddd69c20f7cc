package config

import (
	"fmt"
	"net"
	"strconv"
)

// ValidateConfig checks the complete configuration for consistency.
func ValidateConfig(c *Config) error {
	if err := validatePort("rpc", c.RPC.Port); err != nil {
		return err
	}
	if c.WS.Enabled {
		if err := validatePort("ws", c.WS.Port); err != nil {
			return err
		}
		if c.WS.Port == c.RPC.Port && c.WS.IP == c.RPC.IP {
			return fmt.Errorf("ws and rpc cannot share address %s", c.RPC.Address())
		}
	}

	if c.Grpc.Enabled {
		if _, _, err := net.SplitHostPort(c.Grpc.Address); err != nil {
			return fmt.Errorf("invalid grpc address %q: %w", c.Grpc.Address, err)
		}
		if c.Grpc.MaxRecvMsgSize <= 0 || c.Grpc.MaxSendMsgSize <= 0 {
			return fmt.Errorf("grpc message size limits must be positive")
		}
	}

	switch c.OfferStore.Type {
	case "memory":
	case "pebble", "leveldb":
		if c.OfferStore.Path == "" {
			return fmt.Errorf("offer_store type %q requires a path", c.OfferStore.Type)
		}
	default:
		return fmt.Errorf("unknown offer_store type %q", c.OfferStore.Type)
	}

	if c.Journal.Enabled {
		switch c.Journal.Driver {
		case "sqlite", "postgres":
		default:
			return fmt.Errorf("unknown journal driver %q", c.Journal.Driver)
		}
		if c.Journal.DSN == "" {
			return fmt.Errorf("journal requires a dsn when enabled")
		}
	}

	for i, seed := range c.Standalone.Assets {
		if seed.Asset == "" || seed.AssetID == "" || seed.Owner == "" {
			return fmt.Errorf("standalone.assets[%d]: asset, asset_id and owner are all required", i)
		}
	}
	return nil
}

func validatePort(name string, port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("%s.port out of range: %s", name, strconv.Itoa(port))
	}
	return nil
}
