package config

import "github.com/spf13/viper"

// setDefaults sets every default value. A node started with no config file
// comes up standalone: memory-backed book, no journal, local listeners.
func setDefaults(v *viper.Viper) {
	v.SetDefault("rpc.ip", "127.0.0.1")
	v.SetDefault("rpc.port", 7010)

	v.SetDefault("ws.enabled", true)
	v.SetDefault("ws.ip", "127.0.0.1")
	v.SetDefault("ws.port", 7011)

	v.SetDefault("grpc.enabled", false)
	v.SetDefault("grpc.address", "127.0.0.1:50051")
	v.SetDefault("grpc.max_recv_msg_size", 4*1024*1024)
	v.SetDefault("grpc.max_send_msg_size", 4*1024*1024)

	v.SetDefault("offer_store.type", "memory")
	v.SetDefault("offer_store.path", "")

	v.SetDefault("journal.enabled", false)
	v.SetDefault("journal.driver", "sqlite")
	v.SetDefault("journal.dsn", "")
}
