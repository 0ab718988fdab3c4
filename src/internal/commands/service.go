package commands

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ripe-addrlist/ripe-addrlist/src/internal/api"
	"github.com/ripe-addrlist/ripe-addrlist/src/internal/config"
	"github.com/ripe-addrlist/ripe-addrlist/src/internal/log"
	"github.com/ripe-addrlist/ripe-addrlist/src/internal/scheduler"
)

const shutdownTimeout = 10 * time.Second

func CreateServiceCommand() *ServiceCommand {
	sc := &ServiceCommand{
		fs: flag.NewFlagSet("service", flag.ExitOnError),
	}

	sc.fs.StringVar(&sc.APIListen, "api", "", "Status API listen address, e.g. "+config.DefaultAPIListen+" (overrides service.api_listen)")
	sc.fs.BoolVar(&sc.NoAPI, "no-api", false, "Do not start the status API")

	return sc
}

type ServiceCommand struct {
	fs        *flag.FlagSet
	cfg       *config.Config
	ctx       *AppContext
	APIListen string
	NoAPI     bool

	// signals replaces SIGINT/SIGTERM handling. Used by tests.
	signals context.Context
}

func (s *ServiceCommand) Name() string {
	return s.fs.Name()
}

func (s *ServiceCommand) Init(args []string, ctx *AppContext) error {
	s.ctx = ctx

	if err := s.fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfigOrFail(ctx)
	if err != nil {
		return err
	}
	if s.APIListen != "" {
		cfg.Service.APIListen = s.APIListen
	}
	if s.NoAPI {
		cfg.Service.APIListen = ""
	}
	if err := cfg.ValidateConfig(); err != nil {
		return err
	}
	// Nobody can answer a prompt in service mode.
	cfg.AddressList.Name = cfg.Target().ListName
	if err := cfg.ValidateTarget(); err != nil {
		return err
	}
	s.cfg = cfg

	return nil
}

func (s *ServiceCommand) Run() error {
	log.Infof("Starting ripe-addrlist service...")

	ctx := s.signals
	if ctx == nil {
		var stop context.CancelFunc
		ctx, stop = signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
	}

	geo, closeGeo, err := openGeo(s.cfg, "")
	if err != nil {
		log.Warnf("Geo audit disabled: %v", err)
	}
	defer closeGeo()

	svc := newSyncService(s.ctx, s.cfg, geo)
	sched := scheduler.New(s.cfg.Service.Schedule, s.cfg.Service.RunOnStart, func(ctx context.Context) error {
		_, err := svc.TryRun(ctx)
		return err
	})

	var apiRunner *RestartableRunner
	if s.cfg.Service.APIListen != "" {
		server := api.NewServer(s.cfg.Service.APIListen, api.NewHandler(ctx, svc, sched, s.ctx.Version))
		apiRunner = NewRestartableRunner(RunnerConfig{Name: "API server"}, func(runCtx context.Context) error {
			errCh := make(chan error, 1)
			go func() { errCh <- server.Start() }()

			select {
			case err := <-errCh:
				return err
			case <-runCtx.Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				return server.Stop(shutdownCtx)
			}
		})
		if err := apiRunner.Start(ctx); err != nil {
			return err
		}
	}

	err = sched.Start(ctx)

	if apiRunner != nil {
		if stopErr := apiRunner.Stop(shutdownTimeout); stopErr != nil {
			log.Warnf("%v", stopErr)
		}
	}

	log.Infof("Service stopped")
	return err
}
