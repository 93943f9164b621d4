package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/polymedia/polymedia-profile/internal/api"
	"github.com/polymedia/polymedia-profile/internal/config"
	"github.com/polymedia/polymedia-profile/internal/keys"
	"github.com/polymedia/polymedia-profile/pkg/profile"
)

var profileFieldFlags = []cli.Flag{
	&cli.StringFlag{Name: "name", Usage: "Display name"},
	&cli.StringFlag{Name: "image-url", Usage: "Image URL"},
	&cli.StringFlag{Name: "description", Usage: "Description"},
	&cli.StringFlag{Name: "data", Usage: "Arbitrary JSON data"},
}

func profileCommands() *cli.Command {
	return &cli.Command{
		Name:  "profile",
		Usage: "Look up and manage profiles",
		Subcommands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Get the profiles owned by one or more addresses",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{Name: "owner", Usage: "Owner address, repeatable", Required: true},
				},
				Action: func(c *cli.Context) error {
					client, ledger, err := newProfileClient(c)
					if err != nil {
						return err
					}
					defer ledger.Close()

					results, err := client.GetProfilesByOwner(c.Context, c.StringSlice("owner"), true)
					if err != nil {
						return err
					}
					out := make([]api.OwnerProfile, 0, results.Len())
					results.Range(func(address string, p *profile.Profile) bool {
						out = append(out, api.OwnerProfile{Address: address, Profile: p})
						return true
					})
					return printJSON(c.App.Writer, out)
				},
			},
			{
				Name:  "show",
				Usage: "Show a profile by object id",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "id", Usage: "Profile object id", Required: true},
				},
				Action: func(c *cli.Context) error {
					client, ledger, err := newProfileClient(c)
					if err != nil {
						return err
					}
					defer ledger.Close()

					p, err := client.GetProfileObjectByID(c.Context, c.String("id"))
					if err != nil {
						return err
					}
					if p == nil {
						return fmt.Errorf("profile %s not found", c.String("id"))
					}
					return printJSON(c.App.Writer, p)
				},
			},
			{
				Name:  "create",
				Usage: "Create a profile for the local account",
				Flags: profileFieldFlags,
				Action: func(c *cli.Context) error {
					fields, err := profileFields(c)
					if err != nil {
						return err
					}
					return withSigner(c, func(client *profile.Client, signer profile.Signer) error {
						resp, err := client.CreateProfile(c.Context, signer, fields)
						if err != nil {
							return err
						}
						return printJSON(c.App.Writer, resp)
					})
				},
			},
			{
				Name:  "edit",
				Usage: "Replace the fields of a profile owned by the local account",
				Flags: append([]cli.Flag{
					&cli.StringFlag{Name: "id", Usage: "Profile object id", Required: true},
				}, profileFieldFlags...),
				Action: func(c *cli.Context) error {
					fields, err := profileFields(c)
					if err != nil {
						return err
					}
					return withSigner(c, func(client *profile.Client, signer profile.Signer) error {
						resp, err := client.EditProfile(c.Context, signer, c.String("id"), fields)
						if err != nil {
							return err
						}
						return printJSON(c.App.Writer, resp)
					})
				},
			},
		},
	}
}

func profileFields(c *cli.Context) (profile.ProfileFields, error) {
	fields := profile.ProfileFields{
		Name:        c.String("name"),
		ImageURL:    c.String("image-url"),
		Description: c.String("description"),
	}
	if data := c.String("data"); data != "" {
		if !json.Valid([]byte(data)) {
			return fields, errors.New("--data is not valid JSON")
		}
		fields.Data = json.RawMessage(data)
	}
	return fields, nil
}

// withSigner runs fn with a profile client and the key file signer.
func withSigner(c *cli.Context, fn func(*profile.Client, profile.Signer) error) error {
	cfg := c.App.Metadata["config"].(*config.Config)
	signer, err := keys.LoadSigner(cfg.Node.Keyfile)
	if err != nil {
		return fmt.Errorf("failed to load key file: %w", err)
	}
	client, ledger, err := newProfileClient(c)
	if err != nil {
		return err
	}
	defer ledger.Close()
	return fn(client, signer)
}
