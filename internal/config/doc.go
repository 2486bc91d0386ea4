// Package config handles configuration loading for chatfleet.
//
// # Configuration File
//
// The CLI looks for the file in this order:
//
//  1. Path from CHATFLEET_CONFIG environment variable
//  2. $XDG_CONFIG_HOME/chatfleet/fleet.yaml
//  3. ~/.config/chatfleet/fleet.yaml
//
// Files ending in .toml are decoded as TOML, everything else as YAML.
//
// # Environment Variable Expansion
//
// Values can reference environment variables, which keeps secrets out of
// the file:
//
//	auth:
//	  shared_secret: "${CHATFLEET_SHARED_SECRET}"
//
// Unset variables expand to the empty string.
//
// # Example
//
//	server:
//	  host: "play.example.net"
//	  port: 25565
//	master:
//	  identity: "MasterBot"
//	  credential: "${CHATFLEET_MASTER_PASSWORD}"
//	auth:
//	  shared_secret: "${CHATFLEET_SHARED_SECRET}"
//	allow_list: ["alice"]
//	registry:
//	  driver: "sqlite"          # or "redis"
//	  path: "data/slaves.db"
//	agents:
//	  retry_delay: "5s"
//	  retry_max_delay: "5s"     # larger than retry_delay enables backoff
//	  send_rate: 4              # lines per second, 0 disables pacing
//	logging:
//	  level: "info"
//	  format: "text"
//
// # Validation
//
// Load applies defaults and then calls Validate, which reports the first
// missing or malformed setting. Every field in server, master, auth and
// allow_list is required.
package config
