package commands

import (
	"flag"
	"fmt"

	"github.com/ripe-addrlist/ripe-addrlist/src/internal/config"
	"github.com/ripe-addrlist/ripe-addrlist/src/internal/log"
)

func CreateConfigCommand() *ConfigCommand {
	cc := &ConfigCommand{
		fs: flag.NewFlagSet("config", flag.ExitOnError),
	}

	cc.fs.BoolVar(&cc.Write, "write", false, "Write the effective configuration to the config path")

	return cc
}

// ConfigCommand prints the effective configuration, defaults and environment overrides
// included.
type ConfigCommand struct {
	fs    *flag.FlagSet
	cfg   *config.Config
	ctx   *AppContext
	Write bool
}

func (c *ConfigCommand) Name() string {
	return c.fs.Name()
}

func (c *ConfigCommand) Init(args []string, ctx *AppContext) error {
	c.ctx = ctx

	if err := c.fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfigOrFail(ctx)
	if err != nil {
		return err
	}
	c.cfg = cfg

	if err := cfg.ValidateConfig(); err != nil {
		log.Warnf("%v", err)
	}
	return nil
}

func (c *ConfigCommand) Run() error {
	if c.Write {
		if err := c.cfg.WriteConfig(); err != nil {
			return fmt.Errorf("failed to write configuration: %w", err)
		}
		log.Infof("Configuration written to %s", c.ctx.ConfigPath)
		return nil
	}

	buf, err := c.cfg.SerializeConfig()
	if err != nil {
		return err
	}
	_, err = c.ctx.stdout().Write(buf.Bytes())
	return err
}
