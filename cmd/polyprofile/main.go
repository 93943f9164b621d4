package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/polymedia/polymedia-profile/internal/config"
	"github.com/polymedia/polymedia-profile/internal/logger"
)

func main() {
	var configPath string
	var network string
	var rootLogger *zap.Logger

	app := &cli.App{
		Name:  "polyprofile",
		Usage: "Look up, create and edit Polymedia profiles on Sui",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Value:       "config.yaml",
				Usage:       "Path to the config file",
				EnvVars:     []string{"POLYPROFILE_CONFIG"},
				Destination: &configPath,
			},
			&cli.StringFlag{
				Name:        "network",
				Usage:       "Network to use (mainnet, testnet, devnet, localnet); overrides the config file",
				EnvVars:     []string{"POLYPROFILE_NETWORK"},
				Destination: &network,
			},
		},
		Before: func(c *cli.Context) error {
			if c.Args().First() == "init" {
				return nil
			}
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if network != "" {
				cfg.Network = network
			}
			zapLogger, err := logger.NewConsole(cfg.Logger.Verbosity)
			if err != nil {
				return err
			}
			rootLogger = zapLogger.Named("cli")
			c.App.Metadata["config"] = cfg
			c.App.Metadata["logger"] = rootLogger
			return nil
		},
		After: func(c *cli.Context) error {
			if rootLogger != nil {
				_ = rootLogger.Sync()
			}
			return nil
		},
		Commands: []*cli.Command{
			initCommand(),
			accountCommands(),
			profileCommands(),
			registryCommands(),
			serveCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		if rootLogger != nil {
			rootLogger.Fatal("failed to run app", zap.Error(err))
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
}
