package main

import (
	"github.com/urfave/cli/v2"

	"github.com/polymedia/polymedia-profile/pkg/profile"
)

func registryCommands() *cli.Command {
	return &cli.Command{
		Name:  "registry",
		Usage: "Manage profile registries",
		Subcommands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Create a new registry",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Usage: "Registry name", Required: true},
				},
				Action: func(c *cli.Context) error {
					return withSigner(c, func(client *profile.Client, signer profile.Signer) error {
						ref, err := client.CreateRegistry(c.Context, signer, c.String("name"))
						if err != nil {
							return err
						}
						return printJSON(c.App.Writer, ref)
					})
				},
			},
		},
	}
}
