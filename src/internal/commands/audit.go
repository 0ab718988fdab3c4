package commands

import (
	"context"
	"flag"
	"fmt"

	"github.com/ripe-addrlist/ripe-addrlist/src/internal/config"
	"github.com/ripe-addrlist/ripe-addrlist/src/internal/geoaudit"
)

func CreateAuditCommand() *AuditCommand {
	ac := &AuditCommand{
		fs: flag.NewFlagSet("audit", flag.ExitOnError),
	}

	ac.fs.StringVar(&ac.Database, "db", "", "Path to a GeoLite2-Country database (overrides audit.geoip_db)")

	return ac
}

type AuditCommand struct {
	fs       *flag.FlagSet
	cfg      *config.Config
	ctx      *AppContext
	Database string

	// lookup replaces the database. Used by tests.
	lookup geoaudit.CountryLookup
}

func (c *AuditCommand) Name() string {
	return c.fs.Name()
}

func (c *AuditCommand) Init(args []string, ctx *AppContext) error {
	c.ctx = ctx

	if err := c.fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadAndValidateConfigOrFail(ctx)
	if err != nil {
		return err
	}
	c.cfg = cfg

	if c.lookup == nil && c.Database == "" && cfg.Audit.GeoIPDB == "" {
		return fmt.Errorf("no geoip database: set audit.geoip_db or pass -db")
	}

	return nil
}

func (c *AuditCommand) Run() error {
	geo := c.lookup
	if geo == nil {
		db, closeGeo, err := openGeo(c.cfg, c.Database)
		if err != nil {
			return err
		}
		defer closeGeo()
		geo = db
	}

	svc := newSyncService(c.ctx, c.cfg, geo)
	fetched, err := svc.Fetch(context.Background())
	if err != nil {
		return err
	}

	report := svc.Audit(fetched.CIDRs)
	out := c.ctx.stdout()
	for _, m := range report.Mismatches {
		fmt.Fprintf(out, "%s\t%s\n", m.CIDR, m.Country)
	}
	fmt.Fprintf(out, "# %d checked, %d in %s (%.1f%% of located), %d elsewhere, %d unknown\n",
		report.Checked, report.Matched, report.Country, report.MatchRatio()*100, len(report.Mismatches), report.Unknown)

	return nil
}
