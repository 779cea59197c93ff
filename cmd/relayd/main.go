package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/votis/wallet-relay/common"
	"github.com/votis/wallet-relay/httpserver"
	"github.com/votis/wallet-relay/metrics"
	"github.com/votis/wallet-relay/relay"
	"github.com/votis/wallet-relay/session"
	"github.com/votis/wallet-relay/stamp"
	"github.com/votis/wallet-relay/transport"
)

var flags []cli.Flag = []cli.Flag{
	&cli.StringFlag{
		Name:  "listen-addr",
		Value: "127.0.0.1:8080",
		Usage: "address to listen on for API",
	},
	&cli.StringFlag{
		Name:  "metrics-addr",
		Value: "127.0.0.1:8090",
		Usage: "address to listen on for Prometheus metrics",
	},
	&cli.StringFlag{
		Name:  "provider-url",
		Value: "",
		Usage: "custody provider API base URL (overrides config file)",
	},
	&cli.StringFlag{
		Name:  "config",
		Value: "",
		Usage: "path to YAML config file",
	},
	&cli.StringFlag{
		Name:  "api-private-key",
		Value: "",
		Usage: "hex-encoded P-256 scalar of the provider-issued API key used to stamp session activities (overrides config file)",
	},
	&cli.IntFlag{
		Name:  "provider-timeout",
		Value: 10,
		Usage: "timeout in seconds for one upstream call",
	},
	&cli.BoolFlag{
		Name:  "log-json",
		Value: false,
		Usage: "log in JSON format",
	},
	&cli.BoolFlag{
		Name:  "log-debug",
		Value: false,
		Usage: "log debug messages",
	},
	&cli.BoolFlag{
		Name:  "log-uid",
		Value: false,
		Usage: "generate a uuid and add to all log messages",
	},
	&cli.StringFlag{
		Name:  "log-service",
		Value: common.PackageName,
		Usage: "add 'service' tag to logs",
	},
	&cli.BoolFlag{
		Name:  "pprof",
		Value: false,
		Usage: "enable pprof debug endpoint",
	},
	&cli.Int64Flag{
		Name:  "drain-seconds",
		Value: 45,
		Usage: "seconds to wait in drain HTTP request",
	},
}

func main() {
	app := &cli.App{
		Name:  "relayd",
		Usage: "Relay client-signed wallet activities to the custody provider and negotiate sessions",
		Flags: flags,
		Action: func(cCtx *cli.Context) error {
			listenAddr := cCtx.String("listen-addr")
			metricsAddr := cCtx.String("metrics-addr")
			providerURL := cCtx.String("provider-url")
			configPath := cCtx.String("config")
			apiPrivateKey := cCtx.String("api-private-key")
			providerTimeout := time.Duration(cCtx.Int("provider-timeout")) * time.Second
			logJSON := cCtx.Bool("log-json")
			logDebug := cCtx.Bool("log-debug")
			logUID := cCtx.Bool("log-uid")
			logService := cCtx.String("log-service")
			enablePprof := cCtx.Bool("pprof")
			drainDuration := time.Duration(cCtx.Int64("drain-seconds")) * time.Second

			logger := common.SetupLogger(&common.LoggingOpts{
				Debug:   logDebug,
				JSON:    logJSON,
				Service: logService,
				Version: common.Version,
			})

			if logUID {
				id := uuid.Must(uuid.NewRandom())
				logger = logger.With("uid", id.String())
			}

			// Optional config file; flags win over file values.
			if configPath != "" {
				cfg, err := common.LoadConfig(configPath)
				if err != nil {
					logger.Error("Failed to load config", "err", err)
					return err
				}
				if providerURL == "" {
					providerURL = cfg.Provider.BaseURL
				}
				if cfg.Provider.TimeoutSeconds > 0 && !cCtx.IsSet("provider-timeout") {
					providerTimeout = time.Duration(cfg.Provider.TimeoutSeconds) * time.Second
				}
				if apiPrivateKey == "" {
					apiPrivateKey, err = cfg.StamperKey()
					if err != nil {
						logger.Error("Failed to resolve stamping key", "err", err)
						return err
					}
				}
			}

			if providerURL == "" {
				logger.Error("provider-url is required (flag or config file)")
				return cli.Exit("provider-url is required", 1)
			}

			stamper, err := stamp.NewAPIKeyStamper(apiPrivateKey)
			if err != nil {
				logger.Error("Failed to initialize API key stamper", "err", err)
				return err
			}

			relayMetrics := metrics.New(nil)
			httpTransport := transport.New(providerTimeout)
			activityRelay := relay.New(httpTransport, providerURL, logger, relayMetrics)
			negotiator := session.New(activityRelay, stamper, logger, relayMetrics)

			handler := httpserver.NewHandler(activityRelay, negotiator, logger)
			server, err := httpserver.New(&httpserver.HTTPServerConfig{
				ListenAddr:               listenAddr,
				MetricsAddr:              metricsAddr,
				Log:                      logger,
				EnablePprof:              enablePprof,
				DrainDuration:            drainDuration,
				GracefulShutdownDuration: 30 * time.Second,
				ReadTimeout:              60 * time.Second,
				WriteTimeout:             30 * time.Second,
			}, handler)
			if err != nil {
				logger.Error("Failed to create server", "err", err)
				return err
			}

			logger.Info("Starting wallet relay", "provider", providerURL)
			server.RunInBackground()

			exit := make(chan os.Signal, 1)
			signal.Notify(exit, os.Interrupt, syscall.SIGTERM)
			<-exit

			logger.Info("Shutting down")
			server.Shutdown()
			return nil
		},
	}

	if err := app.Run(os.Args); err != nil {
		os.Exit(1)
	}
}
