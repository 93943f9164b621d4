package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/urfave/cli/v2"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/polymedia/polymedia-profile/internal/api"
	"github.com/polymedia/polymedia-profile/internal/config"
	"github.com/polymedia/polymedia-profile/pkg/profile"
	"github.com/polymedia/polymedia-profile/pkg/suiclient"
)

const shutdownTimeout = 10 * time.Second

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve profile lookups over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "listen", Usage: "Listen address; overrides server.listenAddress"},
		},
		Action: func(c *cli.Context) error {
			cfg := c.App.Metadata["config"].(*config.Config)
			log := c.App.Metadata["logger"].(*zap.Logger)
			if listen := c.String("listen"); listen != "" {
				cfg.Server.ListenAddress = listen
			}

			figure.NewFigure("Polymedia Profile", "", true).Print()

			app := newServeApp(cfg, log)
			if err := app.Start(c.Context); err != nil {
				return err
			}
			<-app.Done()

			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return app.Stop(ctx)
		},
	}
}

func newServeApp(cfg *config.Config, log *zap.Logger) *fx.App {
	return fx.New(serveOptions(cfg, log))
}

func serveOptions(cfg *config.Config, log *zap.Logger) fx.Option {
	return fx.Options(
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Named("fx")}
		}),
		fx.Supply(cfg, log),
		fx.Provide(
			func(cfg *config.Config) (config.NetworkConfig, error) {
				return cfg.Resolve()
			},
			newLedger,
			newLookupClient,
			func(client *profile.Client, log *zap.Logger) *api.Handler {
				return api.NewHandler(client, log)
			},
			newHTTPServer,
		),
		fx.Invoke(func(*http.Server) {}),
	)
}

func newLedger(lc fx.Lifecycle, nc config.NetworkConfig, log *zap.Logger) (*suiclient.Client, error) {
	ledger, err := suiclient.Dial(context.Background(), nc.RPCURL, log)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			ledger.Close()
			return nil
		},
	})
	return ledger, nil
}

func newLookupClient(ledger *suiclient.Client, nc config.NetworkConfig, cfg *config.Config, log *zap.Logger) (*profile.Client, error) {
	if nc.RegistryID == "" {
		return nil, profile.ErrNoRegistry
	}
	return profile.NewClient(ledger, profile.Config{
		PackageID:  nc.PackageID,
		RegistryID: nc.RegistryID,
		GasBudget:  cfg.Tx.GasBudget,
	}, log)
}

func newHTTPServer(lc fx.Lifecycle, cfg *config.Config, handler *api.Handler, log *zap.Logger) *http.Server {
	srv := &http.Server{
		Addr:              cfg.Server.ListenAddress,
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			log.Info("Starting server on", zap.String("address", ln.Addr().String()))
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
	return srv
}
