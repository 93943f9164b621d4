package profile

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/polymedia/polymedia-profile/internal/metrics"
	"github.com/polymedia/polymedia-profile/internal/txbuilder"
	"github.com/polymedia/polymedia-profile/pkg/suiclient"
)

var profileObjectOptions = &suiclient.ObjectDataOptions{ShowContent: true, ShowOwner: true}

// GetProfilesByOwner resolves each address to its profile in the registry.
// Repeated addresses are looked up once; the result iterates in first-occurrence order.
// A failed simulation fails the whole call and leaves the caches untouched.
func (c *Client) GetProfilesByOwner(ctx context.Context, addresses []string, useCache bool) (*Results, error) {
	keys, err := normalizeKeys(addresses)
	if err != nil {
		return nil, err
	}

	result := make(map[string]*Profile, len(keys))
	lookup := c.partitionCached(keys, c.byOwner, useCache, "owner", result)
	if len(lookup) == 0 {
		return newResults(keys, result), nil
	}

	resolved, err := c.lookupProfileIDs(ctx, lookup)
	if err != nil {
		return nil, err
	}

	var ids, unregistered []string
	seenIDs := make(map[string]struct{})
	pending := make(map[string]struct{})
	for _, addr := range lookup {
		id, ok := resolved[addr]
		if !ok {
			unregistered = append(unregistered, addr)
			continue
		}
		pending[addr] = struct{}{}
		if _, dup := seenIDs[id]; !dup {
			seenIDs[id] = struct{}{}
			ids = append(ids, id)
		}
	}

	byID := newResults(nil, nil)
	if len(ids) > 0 {
		byID, err = c.GetProfilesByID(ctx, ids, useCache)
		if err != nil {
			return nil, err
		}
	}

	// Nothing reaches the owner cache until every phase has succeeded.
	c.mu.Lock()
	for _, addr := range unregistered {
		c.byOwner[addr] = nil
		result[addr] = nil
	}
	byID.Range(func(id string, p *Profile) bool {
		if p == nil {
			return true
		}
		if _, ok := pending[p.Owner]; !ok {
			c.logger.Warn("Profile owner does not match lookup address",
				zap.String("profileId", id), zap.String("owner", p.Owner))
			return true
		}
		c.byOwner[p.Owner] = p
		result[p.Owner] = p
		delete(pending, p.Owner)
		return true
	})
	c.mu.Unlock()

	// Addresses whose registry entry did not yield a readable profile report
	// no profile but stay uncached so a later call retries them.
	for addr := range pending {
		result[addr] = nil
	}
	return newResults(keys, result), nil
}

// GetProfileByOwner is GetProfilesByOwner for a single address.
func (c *Client) GetProfileByOwner(ctx context.Context, address string, useCache bool) (*Profile, error) {
	results, err := c.GetProfilesByOwner(ctx, []string{address}, useCache)
	if err != nil {
		return nil, err
	}
	p, _ := results.Get(address)
	return p, nil
}

// HasProfile reports whether address owns a profile in the registry.
func (c *Client) HasProfile(ctx context.Context, address string, useCache bool) (bool, error) {
	p, err := c.GetProfileByOwner(ctx, address, useCache)
	if err != nil {
		return false, err
	}
	return p != nil, nil
}

// GetProfilesByID fetches profile objects by id. Ids that do not exist come back
// as nil; objects that are not profiles fail the call with a *DecodingError.
// Only the object id cache is populated.
func (c *Client) GetProfilesByID(ctx context.Context, objectIDs []string, useCache bool) (*Results, error) {
	keys, err := normalizeKeys(objectIDs)
	if err != nil {
		return nil, err
	}

	result := make(map[string]*Profile, len(keys))
	fetch := c.partitionCached(keys, c.byID, useCache, "object", result)
	if len(fetch) == 0 {
		return newResults(keys, result), nil
	}

	batches := chunk(fetch, MaxObjectBatch)
	fetched := make([][]*Profile, len(batches))
	g, gctx := errgroup.WithContext(ctx)
	for i, batch := range batches {
		g.Go(func() error {
			profiles, err := c.fetchProfileBatch(gctx, batch)
			if err != nil {
				return err
			}
			fetched[i] = profiles
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	for i, batch := range batches {
		for j, id := range batch {
			p := fetched[i][j]
			c.byID[id] = p
			result[id] = p
		}
	}
	c.mu.Unlock()

	return newResults(keys, result), nil
}

// GetProfileObjectByID fetches a single profile by object id, using the cache.
func (c *Client) GetProfileObjectByID(ctx context.Context, objectID string) (*Profile, error) {
	results, err := c.GetProfilesByID(ctx, []string{objectID}, true)
	if err != nil {
		return nil, err
	}
	p, _ := results.Get(objectID)
	return p, nil
}

// partitionCached copies cache hits into result and returns the keys that still need a fetch.
func (c *Client) partitionCached(keys []string, cache map[string]*Profile, useCache bool, cacheName string, result map[string]*Profile) []string {
	if !useCache {
		return keys
	}
	var missing []string
	c.mu.RLock()
	for _, k := range keys {
		if p, ok := cache[k]; ok {
			result[k] = p
			metrics.ProfileCacheLookups.WithLabelValues(cacheName, "hit").Inc()
			continue
		}
		metrics.ProfileCacheLookups.WithLabelValues(cacheName, "miss").Inc()
		missing = append(missing, k)
	}
	c.mu.RUnlock()
	return missing
}

// lookupProfileIDs runs get_profiles over concurrent batches and returns
// address -> profile id for the addresses that have a profile.
func (c *Client) lookupProfileIDs(ctx context.Context, addresses []string) (map[string]string, error) {
	registry, err := c.registryRef(ctx)
	if err != nil {
		return nil, err
	}

	batches := chunk(addresses, MaxOwnerBatch)
	found := make([][]txbuilder.LookupResult, len(batches))
	g, gctx := errgroup.WithContext(ctx)
	for i, batch := range batches {
		g.Go(func() error {
			results, err := c.lookupBatch(gctx, registry, batch)
			if err != nil {
				return err
			}
			found[i] = results
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	resolved := make(map[string]string)
	for _, results := range found {
		for _, r := range results {
			resolved[r.LookupAddress] = r.ProfileID
		}
	}
	return resolved, nil
}

func (c *Client) lookupBatch(ctx context.Context, registry txbuilder.SharedObjectRef, addresses []string) ([]txbuilder.LookupResult, error) {
	txKind, err := txbuilder.GetProfiles(c.packageID, registry, addresses)
	if err != nil {
		return nil, fmt.Errorf("failed to build get_profiles: %w", err)
	}

	metrics.ProfileBatches.WithLabelValues("owner").Inc()
	c.logger.Debug("Looking up profiles", zap.Int("addresses", len(addresses)))
	resp, err := c.ledger.DevInspectTransactionBlock(ctx, suiclient.ZeroAddress, txKind)
	if err != nil {
		return nil, fmt.Errorf("failed to simulate get_profiles: %w", err)
	}

	status := resp.Effects.Status
	if !status.IsSuccess() || resp.Error != "" {
		msg := status.Error
		if msg == "" {
			msg = resp.Error
		}
		c.logger.Error("get_profiles simulation failed", zap.String("status", status.Status), zap.String("error", msg))
		return nil, &LookupError{Status: status.Status, Message: msg}
	}
	if len(resp.Results) == 0 || len(resp.Results[0].ReturnValues) == 0 {
		return nil, &LookupError{Status: status.Status, Message: "get_profiles returned no value"}
	}

	results, err := txbuilder.DecodeLookupResults(resp.Results[0].ReturnValues[0].Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to decode get_profiles result: %w", err)
	}
	return results, nil
}

func (c *Client) fetchProfileBatch(ctx context.Context, ids []string) ([]*Profile, error) {
	metrics.ProfileBatches.WithLabelValues("object").Inc()
	c.logger.Debug("Fetching profile objects", zap.Int("ids", len(ids)))
	resp, err := c.ledger.MultiGetObjects(ctx, ids, profileObjectOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profile objects: %w", err)
	}
	if len(resp) != len(ids) {
		return nil, fmt.Errorf("fetched %d objects for %d ids", len(resp), len(ids))
	}

	profiles := make([]*Profile, len(ids))
	for i, id := range ids {
		p, err := decodeProfile(id, resp[i])
		if err != nil {
			c.logger.Error("Failed to decode profile", zap.String("objectId", id), zap.Error(err))
			return nil, err
		}
		profiles[i] = p
	}
	return profiles, nil
}
