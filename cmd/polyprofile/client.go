package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/polymedia/polymedia-profile/internal/config"
	"github.com/polymedia/polymedia-profile/pkg/profile"
	"github.com/polymedia/polymedia-profile/pkg/suiclient"
)

// newProfileClient dials the configured network. The caller closes the returned ledger.
func newProfileClient(c *cli.Context) (*profile.Client, *suiclient.Client, error) {
	cfg := c.App.Metadata["config"].(*config.Config)
	log := c.App.Metadata["logger"].(*zap.Logger)

	nc, err := cfg.Resolve()
	if err != nil {
		return nil, nil, err
	}
	ledger, err := suiclient.Dial(c.Context, nc.RPCURL, log)
	if err != nil {
		return nil, nil, err
	}
	client, err := profile.NewClient(ledger, profile.Config{
		PackageID:  nc.PackageID,
		RegistryID: nc.RegistryID,
		GasBudget:  cfg.Tx.GasBudget,
	}, log)
	if err != nil {
		ledger.Close()
		return nil, nil, err
	}
	return client, ledger, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}
