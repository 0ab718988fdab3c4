package commands

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ripe-addrlist/ripe-addrlist/src/internal/addrlist"
	"github.com/ripe-addrlist/ripe-addrlist/src/internal/config"
	"github.com/ripe-addrlist/ripe-addrlist/src/internal/log"
	"github.com/ripe-addrlist/ripe-addrlist/src/internal/service"
)

func CreateSyncCommand() *SyncCommand {
	sc := &SyncCommand{
		fs: flag.NewFlagSet("sync", flag.ExitOnError),
	}

	sc.fs.BoolVar(&sc.NoPrompt, "no-prompt", false, "Fail instead of prompting for missing router host, username or list name")
	sc.fs.BoolVar(&sc.DryRun, "dry-run", false, "Fetch and normalize, print the batch plan, but do not touch the router")

	return sc
}

type SyncCommand struct {
	fs       *flag.FlagSet
	cfg      *config.Config
	ctx      *AppContext
	NoPrompt bool
	DryRun   bool
}

func (c *SyncCommand) Name() string {
	return c.fs.Name()
}

func (c *SyncCommand) Init(args []string, ctx *AppContext) error {
	c.ctx = ctx

	if err := c.fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadAndValidateConfigOrFail(ctx)
	if err != nil {
		return err
	}
	c.cfg = cfg

	if c.DryRun {
		return nil
	}

	if !c.NoPrompt {
		if err := config.NewPrompter(ctx.stdin(), ctx.stdout()).Complete(cfg); err != nil {
			return err
		}
	}

	return cfg.ValidateTarget()
}

func (c *SyncCommand) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	geo, closeGeo, err := openGeo(c.cfg, "")
	if err != nil {
		log.Warnf("Geo audit disabled: %v", err)
	}
	defer closeGeo()

	svc := newSyncService(c.ctx, c.cfg, geo)

	if c.DryRun {
		return c.plan(ctx, svc)
	}

	result, err := svc.Run(ctx)
	if err != nil {
		if result != nil && result.Sync != nil && result.Sync.BatchesApplied > 0 {
			log.Warnf("%d of %d batches (%d CIDR) remain on the router",
				result.Sync.BatchesApplied, result.Sync.Batches, result.Sync.EntriesApplied)
		}
		return err
	}
	return nil
}

func (c *SyncCommand) plan(ctx context.Context, svc *service.SyncService) error {
	fetched, err := svc.Fetch(ctx)
	if err != nil {
		return err
	}
	svc.Audit(fetched.CIDRs)

	opts := c.cfg.SyncOptions()
	batches := addrlist.Plan(fetched.CIDRs, opts.BatchSize)
	out := c.ctx.stdout()

	fmt.Fprintf(out, "Address-list %q: %d CIDR blocks in %d batch(es), %v apart\n",
		c.cfg.Target().ListName, len(fetched.CIDRs), len(batches), opts.Pause)
	offset := 0
	for i, batch := range batches {
		fmt.Fprintf(out, "  batch %d: CIDR %d-%d (%s .. %s)\n",
			i+1, offset+1, offset+len(batch), batch[0], batch[len(batch)-1])
		offset += len(batch)
	}
	return nil
}
