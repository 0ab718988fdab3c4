// Package commands implements CLI command handlers for ripe-addrlist.
//
// All commands follow a consistent pattern:
//   - Init(): Parse arguments and load configuration
//   - Run(): Execute command using the service layer
//   - Name(): Return command name for routing
//
// # Available Commands
//
//   - sync: fetch, normalize and replace the address-list once
//   - fetch: print the normalized CIDR blocks to stdout
//   - audit: cross-check the blocks against a GeoLite2 country database
//   - service: synchronize on a schedule and serve the status API
//   - config: print the effective configuration or write it to the config path
package commands
