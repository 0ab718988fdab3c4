package commands

import (
	"bufio"
	"context"
	"flag"
	"fmt"

	"github.com/ripe-addrlist/ripe-addrlist/src/internal/config"
	"github.com/ripe-addrlist/ripe-addrlist/src/internal/log"
)

func CreateFetchCommand() *FetchCommand {
	fc := &FetchCommand{
		fs: flag.NewFlagSet("fetch", flag.ExitOnError),
	}

	fc.fs.StringVar(&fc.Country, "country", "", "Country code (overrides registry.country)")
	fc.fs.BoolVar(&fc.Fingerprint, "fingerprint", false, "Print only the MD5 fingerprint of the set")

	return fc
}

type FetchCommand struct {
	fs          *flag.FlagSet
	cfg         *config.Config
	ctx         *AppContext
	Country     string
	Fingerprint bool
}

func (c *FetchCommand) Name() string {
	return c.fs.Name()
}

func (c *FetchCommand) Init(args []string, ctx *AppContext) error {
	c.ctx = ctx

	if err := c.fs.Parse(args); err != nil {
		return err
	}

	// stdout carries the CIDR list
	log.SetForceStdErr(true)

	cfg, err := loadConfigOrFail(ctx)
	if err != nil {
		return err
	}
	if c.Country != "" {
		cfg.Registry.Country = c.Country
		cfg.ApplyDefaults()
	}
	if err := cfg.ValidateConfig(); err != nil {
		return fmt.Errorf("configuration validation failed: %v", err)
	}
	c.cfg = cfg

	return nil
}

func (c *FetchCommand) Run() error {
	svc := newSyncService(c.ctx, c.cfg, nil)

	fetched, err := svc.Fetch(context.Background())
	if err != nil {
		return err
	}

	w := bufio.NewWriter(c.ctx.stdout())
	if c.Fingerprint {
		fmt.Fprintln(w, fetched.Fingerprint)
		return w.Flush()
	}
	for _, block := range fetched.CIDRs {
		fmt.Fprintln(w, block)
	}
	return w.Flush()
}
