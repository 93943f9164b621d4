package main

import (
	"fmt"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/polymedia/polymedia-profile/internal/config"
	"github.com/polymedia/polymedia-profile/internal/keys"
)

func accountCommands() *cli.Command {
	return &cli.Command{
		Name:  "account",
		Usage: "Manage the local signing key",
		Subcommands: []*cli.Command{
			{
				Name:  "new",
				Usage: "Create a new secp256k1 key file",
				Action: func(c *cli.Context) error {
					cfg := c.App.Metadata["config"].(*config.Config)
					log := c.App.Metadata["logger"].(*zap.Logger)
					address, err := keys.GenerateKeyFile(cfg.Node.Keyfile)
					if err != nil {
						return err
					}
					log.Info("Created key file", zap.String("path", cfg.Node.Keyfile))
					fmt.Fprintln(c.App.Writer, address)
					return nil
				},
			},
			{
				Name:  "get",
				Usage: "Get the account address",
				Action: func(c *cli.Context) error {
					cfg := c.App.Metadata["config"].(*config.Config)
					_, address, err := keys.LoadPrivateKey(cfg.Node.Keyfile)
					if err != nil {
						return err
					}
					fmt.Fprintln(c.App.Writer, address)
					return nil
				},
			},
		},
	}
}
