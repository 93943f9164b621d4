package profile

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/polymedia/polymedia-profile/internal/txbuilder"
	"github.com/polymedia/polymedia-profile/pkg/suiclient"
)

// RegistryTypeSuffix is the struct tag suffix of registry objects.
const RegistryTypeSuffix = "::profile::Registry"

// ProfileFields are the values written by CreateProfile and EditProfile.
type ProfileFields = txbuilder.ProfileFields

// Signer signs transaction bytes on behalf of Address. Wallet-backed signers
// return an error matching IsUserRejection when the user declines.
type Signer interface {
	Address() string
	SignTransaction(ctx context.Context, txBytes string) (signature string, err error)
}

var executeOptions = &suiclient.TransactionBlockResponseOptions{
	ShowEffects:       true,
	ShowObjectChanges: true,
}

// CreateRegistry creates a new registry and returns a reference to it.
func (c *Client) CreateRegistry(ctx context.Context, signer Signer, name string) (*suiclient.ObjectRef, error) {
	req := txbuilder.CreateRegistry(signer.Address(), c.packageID, name, c.gasBudget)
	resp, err := c.execute(ctx, signer, req)
	if err != nil {
		return nil, err
	}

	for _, change := range resp.ObjectChanges {
		if change.Type == "created" && strings.HasSuffix(change.ObjectType, RegistryTypeSuffix) {
			return &suiclient.ObjectRef{
				ObjectID: change.ObjectID,
				Version:  change.Version,
				Digest:   change.Digest,
			}, nil
		}
	}
	if resp.Effects != nil && len(resp.Effects.Created) == 1 {
		ref := resp.Effects.Created[0].Reference
		return &ref, nil
	}
	return nil, fmt.Errorf("transaction %s did not create a registry", resp.Digest)
}

// CreateProfile creates a profile for the signer in the client's registry.
func (c *Client) CreateProfile(ctx context.Context, signer Signer, fields ProfileFields) (*suiclient.TransactionBlockResponse, error) {
	if c.registryID == "" {
		return nil, ErrNoRegistry
	}
	req, err := txbuilder.CreateProfile(signer.Address(), c.packageID, c.registryID, fields, c.gasBudget)
	if err != nil {
		return nil, err
	}
	return c.execute(ctx, signer, req)
}

// EditProfile replaces the fields of an existing profile owned by the signer.
func (c *Client) EditProfile(ctx context.Context, signer Signer, profileID string, fields ProfileFields) (*suiclient.TransactionBlockResponse, error) {
	id, err := suiclient.NormalizeAddress(profileID)
	if err != nil {
		return nil, err
	}
	req, err := txbuilder.EditProfile(signer.Address(), c.packageID, id, fields, c.gasBudget)
	if err != nil {
		return nil, err
	}
	return c.execute(ctx, signer, req)
}

// execute builds, signs and submits a move call once. Failed executions are
// returned as *TransactionError; nothing is retried.
func (c *Client) execute(ctx context.Context, signer Signer, req suiclient.MoveCallRequest) (*suiclient.TransactionBlockResponse, error) {
	log := c.logger.With(zap.String("function", req.Function), zap.String("sender", req.Signer))

	txb, err := c.ledger.MoveCall(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s transaction: %w", req.Function, err)
	}

	sig, err := signer.SignTransaction(ctx, txb.TxBytes)
	if err != nil {
		if IsUserRejection(err) {
			log.Info("Transaction signing rejected by user")
		}
		return nil, fmt.Errorf("failed to sign %s transaction: %w", req.Function, err)
	}

	resp, err := c.ledger.ExecuteTransactionBlock(ctx, txb.TxBytes, []string{sig}, executeOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to execute %s transaction: %w", req.Function, err)
	}

	if len(resp.Errors) > 0 {
		log.Error("Transaction failed", zap.String("digest", resp.Digest), zap.Strings("errors", resp.Errors))
		return nil, &TransactionError{Digest: resp.Digest, Message: strings.Join(resp.Errors, "; ")}
	}
	if resp.Effects == nil {
		return nil, &TransactionError{Digest: resp.Digest, Message: "missing effects"}
	}
	if !resp.Effects.Status.IsSuccess() {
		log.Error("Transaction failed",
			zap.String("digest", resp.Digest),
			zap.String("status", resp.Effects.Status.Status),
			zap.String("error", resp.Effects.Status.Error))
		return nil, &TransactionError{
			Digest:  resp.Digest,
			Status:  resp.Effects.Status.Status,
			Message: resp.Effects.Status.Error,
		}
	}

	log.Info("Transaction executed", zap.String("digest", resp.Digest))
	return resp, nil
}
