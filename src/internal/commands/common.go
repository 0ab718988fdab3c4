package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ripe-addrlist/ripe-addrlist/src/internal/addrlist"
	"github.com/ripe-addrlist/ripe-addrlist/src/internal/config"
	"github.com/ripe-addrlist/ripe-addrlist/src/internal/geoaudit"
	"github.com/ripe-addrlist/ripe-addrlist/src/internal/log"
	"github.com/ripe-addrlist/ripe-addrlist/src/internal/remote"
	"github.com/ripe-addrlist/ripe-addrlist/src/internal/ripe"
	"github.com/ripe-addrlist/ripe-addrlist/src/internal/service"
)

type Runner interface {
	Init(args []string, globalArgs *AppContext) error
	Run() error
	Name() string
}

type AppContext struct {
	ConfigPath string
	// EnvFile is loaded before environment overrides are applied; missing files are skipped.
	EnvFile string
	Verbose bool
	Version string

	Stdin  io.Reader
	Stdout io.Writer

	// Channel replaces the transport selected by the configuration. Used by tests.
	Channel remote.Channel
	// Registry replaces the RIPEstat client. Used by tests.
	Registry ripe.Registry
	// Pacer replaces the pause between batches. Used by tests.
	Pacer addrlist.Pacer
}

func (ctx *AppContext) stdin() io.Reader {
	if ctx.Stdin != nil {
		return ctx.Stdin
	}
	return os.Stdin
}

func (ctx *AppContext) stdout() io.Writer {
	if ctx.Stdout != nil {
		return ctx.Stdout
	}
	return os.Stdout
}

// loadConfigOrFail loads the configuration file, the .env file and environment
// overrides, and configures the log file.
func loadConfigOrFail(ctx *AppContext) (*config.Config, error) {
	cfg, err := config.LoadConfig(ctx.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %v", err)
	}

	envFile := ctx.EnvFile
	if envFile == "" {
		envFile = filepath.Join(cfg.GetConfigDir(), ".env")
	}
	if err := config.LoadDotEnv(envFile); err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, fmt.Errorf("invalid environment override: %v", err)
	}

	if cfg.General.LogFile != "" {
		log.SetLogFile(log.FileOptions{
			Path:       cfg.GetAbsolutePath(cfg.General.LogFile),
			MaxSizeMB:  cfg.General.LogMaxSizeMB,
			MaxBackups: cfg.General.LogMaxBackups,
			MaxAgeDays: cfg.General.LogMaxAgeDays,
		})
	}

	return cfg, nil
}

// loadAndValidateConfigOrFail loads configuration and validates its structure.
// Target fields may still be missing; see config.ValidateTarget.
func loadAndValidateConfigOrFail(ctx *AppContext) (*config.Config, error) {
	cfg, err := loadConfigOrFail(ctx)
	if err != nil {
		return nil, err
	}

	if err := cfg.ValidateConfig(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %v", err)
	}

	return cfg, nil
}

// newChannel creates the remote transport selected by router.transport.
func newChannel(ctx *AppContext, cfg *config.Config) remote.Channel {
	if ctx.Channel != nil {
		return ctx.Channel
	}

	identityFile := cfg.GetAbsolutePath(cfg.Router.IdentityFile)
	if cfg.Router.Transport == config.TransportNative {
		return remote.NewNativeChannel(remote.NativeOptions{
			IdentityFile:   identityFile,
			UseAgent:       cfg.Router.UseAgent,
			ConnectTimeout: cfg.ConnectTimeout(),
		})
	}
	return remote.NewExecChannel(remote.ExecOptions{
		Binary:         cfg.Router.SSHBinary,
		IdentityFile:   identityFile,
		ConnectTimeout: cfg.ConnectTimeout(),
	}, nil)
}

func newRegistry(ctx *AppContext, cfg *config.Config) ripe.Registry {
	if ctx.Registry != nil {
		return ctx.Registry
	}
	ua := "ripe-addrlist"
	if ctx.Version != "" {
		ua += "/" + ctx.Version
	}
	return ripe.NewClient(cfg.Registry.Endpoint, cfg.RegistryTimeout()).WithUserAgent(ua)
}

// openGeo opens the configured geoip database. The returned close function is never nil.
func openGeo(cfg *config.Config, override string) (geoaudit.CountryLookup, func(), error) {
	path := override
	if path == "" {
		path = cfg.GetAbsolutePath(cfg.Audit.GeoIPDB)
	}
	if path == "" {
		return nil, func() {}, nil
	}

	db, err := geoaudit.Open(path)
	if err != nil {
		return nil, func() {}, err
	}
	return db, func() {
		if err := db.Close(); err != nil {
			log.Warnf("Failed to close geoip database: %v", err)
		}
	}, nil
}

// newSyncService wires the pipeline from configuration.
func newSyncService(ctx *AppContext, cfg *config.Config, geo geoaudit.CountryLookup) *service.SyncService {
	syncer := addrlist.New(newChannel(ctx, cfg), cfg.SyncOptions())
	if ctx.Pacer != nil {
		syncer.WithPacer(ctx.Pacer)
	}

	opts := service.Options{
		Country:       cfg.Registry.Country,
		Target:        cfg.Target(),
		SkipUnchanged: cfg.Service.SkipUnchanged,
		AuditLimit:    20,
	}

	return service.NewSyncService(newRegistry(ctx, cfg), syncer, geo, opts)
}
