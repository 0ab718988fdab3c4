package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/ripe-addrlist/ripe-addrlist/src/internal/commands"
	"github.com/ripe-addrlist/ripe-addrlist/src/internal/log"
)

var (
	version = "dev"
	commit  = "n/a"
	date    = "n/a"
)

func main() {
	ctx := &commands.AppContext{Version: version}

	flag.StringVar(&ctx.ConfigPath, "config", "/etc/ripe-addrlist/config.toml", "Path to configuration file")
	flag.StringVar(&ctx.EnvFile, "env", "", "Path to .env file (default: .env next to the configuration file)")
	flag.BoolVar(&ctx.Verbose, "verbose", false, "Enable debug logging")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "RIPE country address-list synchronizer for MikroTik RouterOS\n")
		fmt.Fprintf(os.Stderr, "Version: %s (Commit: %s, Date: %s)\n\n", version, commit, date)
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <command>\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  sync                    Fetch the country list and replace the router address-list\n")
		fmt.Fprintf(os.Stderr, "  fetch                   Print the normalized CIDR list without touching the router\n")
		fmt.Fprintf(os.Stderr, "  audit                   Check the normalized list against a GeoIP database\n")
		fmt.Fprintf(os.Stderr, "  service                 Run scheduled synchronization with optional status API\n")
		fmt.Fprintf(os.Stderr, "  config                  Show or write the effective configuration\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if ctx.Verbose {
		log.SetVerbose(true)
	}

	cmds := []commands.Runner{
		commands.CreateSyncCommand(),
		commands.CreateFetchCommand(),
		commands.CreateAuditCommand(),
		commands.CreateServiceCommand(),
		commands.CreateConfigCommand(),
	}

	args := flag.Args()

	if len(args) < 1 {
		flag.Usage()
		os.Exit(1)
	}

	subcommand := args[0]
	for _, cmd := range cmds {
		if cmd.Name() == subcommand {
			if err := cmd.Init(args[1:], ctx); err != nil {
				log.Fatalf("Failed to initialize command: %v", err)
			}

			if err := cmd.Run(); err != nil {
				log.Fatalf("Failed to run command: %v", err)
			}

			os.Exit(0)
		}
	}

	log.Fatalf("Unknown subcommand: %s", subcommand)
}
