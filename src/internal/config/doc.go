// Package config handles configuration file parsing and validation for ripe-addrlist.
//
// Settings are resolved in this order, later sources winning:
//   - built-in defaults
//   - the TOML configuration file (a missing file is not an error)
//   - RIPE_ADDRLIST_* environment variables, optionally loaded from a .env file
//   - interactive prompts for the router host, username and list name
//
// # Example Usage
//
//	cfg, err := config.LoadConfig("/etc/ripe-addrlist/config.toml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := cfg.ApplyEnv(); err != nil {
//	    log.Fatal(err)
//	}
//	if err := cfg.ValidateConfig(); err != nil {
//	    log.Fatal(err)
//	}
//
// Example configuration:
//
//	[registry]
//	country = "RU"
//
//	[router]
//	host = "192.168.88.1"
//	username = "admin"
//	transport = "native"
//	identity_file = "/root/.ssh/id_ed25519"
//
//	[address_list]
//	name = "RU"
//	batch_size = 500
//	pause_seconds = 30
//
//	[service]
//	schedule = "0 0 4 * * *"
//	skip_unchanged = true
//	api_listen = "127.0.0.1:8089"
package config
