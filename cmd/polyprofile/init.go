package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/polymedia/polymedia-profile/fixtures"
)

// initCommand writes the config template. It runs without the root Before hook
// because the config it creates does not exist yet.
func initCommand() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Write a config file template",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Value: "config.yaml", Usage: "Where to write the config file"},
		},
		Action: func(c *cli.Context) error {
			path := c.String("path")
			f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
			if err != nil {
				return err
			}
			if _, err := f.Write(fixtures.ConfigTemplate); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, path)
			return nil
		},
	}
}
