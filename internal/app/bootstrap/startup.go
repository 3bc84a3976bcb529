// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"

	"github.com/dalemusser/barangayhub/internal/app/features/catalog"
	"github.com/dalemusser/barangayhub/internal/app/resources"
	"github.com/dalemusser/barangayhub/internal/app/system/apiclient"
	"github.com/dalemusser/barangayhub/internal/app/system/clock"
	"github.com/dalemusser/barangayhub/internal/app/system/metrics"
	"github.com/dalemusser/barangayhub/internal/app/system/screens"
	"github.com/dalemusser/barangayhub/internal/app/system/timeouts"
	"github.com/dalemusser/barangayhub/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

// Services are the long-lived components shared by the HTTP handlers.
type Services struct {
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics
	API      *apiclient.Client
	Catalog  *catalog.Catalog
	Screens  *screens.Registry
	Sweep    *workers.ScreenSweep
}

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built. It loads
// the shared templates, builds the API client and screen catalog, and starts
// the idle-screen sweep.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if deps.Services == nil {
		return errors.New("bootstrap: ConnectDB did not allocate services")
	}
	resources.LoadSharedTemplates()

	timeouts.Configure(timeouts.Config{Fetch: appCfg.APITimeout})
	to := timeouts.Current()
	logger.Info("timeouts configured",
		zap.Duration("ping", to.Ping),
		zap.Duration("short", to.Short),
		zap.Duration("fetch", to.Fetch),
		zap.Duration("long", to.Long))

	svc, err := newServices(appCfg, clock.Real(), logger)
	if err != nil {
		return err
	}
	svc.Sweep.Start()
	*deps.Services = *svc

	logger.Info("screen catalog ready",
		zap.String("api", svc.API.BaseURL()),
		zap.Duration("idle_timeout", appCfg.ScreenIdleTimeout))
	return nil
}

// newServices wires the components without starting anything.
func newServices(appCfg AppConfig, clk clock.Clock, logger *zap.Logger) (*Services, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	api, err := apiclient.New(apiclient.Config{
		BaseURL:      appCfg.APIBaseURL,
		Token:        appCfg.APIToken,
		ClientID:     appCfg.APIClientID,
		ClientSecret: appCfg.APIClientSecret,
		TokenURL:     appCfg.APITokenURL,
		Timeout:      appCfg.APITimeout,
		Transport:    m.InstrumentTransport(nil),
	}, logger.Named("apiclient"))
	if err != nil {
		return nil, err
	}

	cat := catalog.New(catalog.Deps{
		Client:   api,
		Clock:    clk,
		Logger:   logger.Named("screens"),
		Observer: m,
		Defaults: catalog.Defaults{
			PageSize:     appCfg.PageSize,
			Debounce:     appCfg.SearchDebounce,
			PollInterval: appCfg.PollInterval,
			CacheTTL:     appCfg.CacheTTL,
		},
	})

	open := screens.NewRegistry(clk, logger, m)
	return &Services{
		Registry: reg,
		Metrics:  m,
		API:      api,
		Catalog:  cat,
		Screens:  open,
		Sweep:    workers.NewScreenSweep(open, logger, appCfg.ScreenSweepInterval, appCfg.ScreenIdleTimeout),
	}, nil
}
