// Package profile resolves wallet addresses and object ids to on-chain profiles,
// with batching, per-instance caching and order-preserving results, and submits
// the registry and profile write transactions.
package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/polymedia/polymedia-profile/internal/txbuilder"
	"github.com/polymedia/polymedia-profile/pkg/suiclient"
)

const (
	// MaxOwnerBatch bounds the addresses passed to one get_profiles simulation.
	MaxOwnerBatch = 30
	// MaxObjectBatch bounds the ids passed to one multi-get.
	MaxObjectBatch = 50

	DefaultGasBudget uint64 = 100_000_000
)

// Profile is a user-owned profile object.
type Profile struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	ImageURL    string          `json:"imageUrl"`
	Description string          `json:"description"`
	Data        json.RawMessage `json:"data"`
	Owner       string          `json:"owner"`
}

// Config selects the deployed package and registry the client reads and writes.
type Config struct {
	PackageID  string
	RegistryID string
	// RegistryInitialSharedVersion skips the registry lookup when set.
	RegistryInitialSharedVersion uint64
	GasBudget                    uint64
}

// Client looks up profiles by owner address or object id. Lookups are cached
// for the life of the Client; entries are only ever added or refreshed.
type Client struct {
	ledger     suiclient.SuiClient
	packageID  string
	registryID string
	gasBudget  uint64
	logger     *zap.Logger

	mu      sync.RWMutex
	byOwner map[string]*Profile
	byID    map[string]*Profile

	registryMu sync.Mutex
	registry   *txbuilder.SharedObjectRef
}

// NewClient creates a client bound to one network's package and registry.
func NewClient(ledger suiclient.SuiClient, cfg Config, logger *zap.Logger) (*Client, error) {
	packageID, err := suiclient.NormalizeAddress(cfg.PackageID)
	if err != nil {
		return nil, fmt.Errorf("invalid package id: %w", err)
	}
	// A client without a registry can only create one.
	var registryID string
	if cfg.RegistryID != "" {
		registryID, err = suiclient.NormalizeAddress(cfg.RegistryID)
		if err != nil {
			return nil, fmt.Errorf("invalid registry id: %w", err)
		}
	}
	gasBudget := cfg.GasBudget
	if gasBudget == 0 {
		gasBudget = DefaultGasBudget
	}

	c := &Client{
		ledger:     ledger,
		packageID:  packageID,
		registryID: registryID,
		gasBudget:  gasBudget,
		logger:     logger.Named("profile_client"),
		byOwner:    make(map[string]*Profile),
		byID:       make(map[string]*Profile),
	}
	if registryID != "" && cfg.RegistryInitialSharedVersion != 0 {
		c.registry = &txbuilder.SharedObjectRef{
			ObjectID:             registryID,
			InitialSharedVersion: cfg.RegistryInitialSharedVersion,
		}
	}
	return c, nil
}

func (c *Client) PackageID() string {
	return c.packageID
}

func (c *Client) RegistryID() string {
	return c.registryID
}

// CachedProfileByOwner reports the cached value for an address. ok is false when
// the address was never resolved; a nil profile with ok true means "no profile".
func (c *Client) CachedProfileByOwner(address string) (p *Profile, ok bool) {
	k, err := suiclient.NormalizeAddress(address)
	if err != nil {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok = c.byOwner[k]
	return p, ok
}

// CachedProfileByID is CachedProfileByOwner for the object id cache.
func (c *Client) CachedProfileByID(objectID string) (p *Profile, ok bool) {
	k, err := suiclient.NormalizeAddress(objectID)
	if err != nil {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok = c.byID[k]
	return p, ok
}

// registryRef returns the registry as a shared object input, reading its
// initial shared version from the ledger the first time.
func (c *Client) registryRef(ctx context.Context) (txbuilder.SharedObjectRef, error) {
	c.registryMu.Lock()
	defer c.registryMu.Unlock()
	if c.registry != nil {
		return *c.registry, nil
	}
	if c.registryID == "" {
		return txbuilder.SharedObjectRef{}, ErrNoRegistry
	}

	resp, err := c.ledger.GetObject(ctx, c.registryID, &suiclient.ObjectDataOptions{ShowOwner: true})
	if err != nil {
		c.logger.Error("Failed to fetch registry", zap.String("registryId", c.registryID), zap.Error(err))
		return txbuilder.SharedObjectRef{}, fmt.Errorf("failed to fetch registry %s: %w", c.registryID, err)
	}
	if resp.Error != nil || resp.Data == nil {
		return txbuilder.SharedObjectRef{}, fmt.Errorf("registry %s not found", c.registryID)
	}
	if resp.Data.Owner == nil || resp.Data.Owner.Kind != suiclient.OwnerShared {
		return txbuilder.SharedObjectRef{}, fmt.Errorf("registry %s is not a shared object", c.registryID)
	}

	c.registry = &txbuilder.SharedObjectRef{
		ObjectID:             c.registryID,
		InitialSharedVersion: resp.Data.Owner.InitialSharedVersion,
	}
	c.logger.Debug("Resolved registry",
		zap.String("registryId", c.registryID),
		zap.Uint64("initialSharedVersion", c.registry.InitialSharedVersion))
	return *c.registry, nil
}
