package profile

import (
	"fmt"

	"github.com/polymedia/polymedia-profile/pkg/suiclient"
)

// Results maps addresses or object ids to profiles, iterating in the order the
// keys were first requested. A nil profile means "confirmed, no profile".
type Results struct {
	keys   []string
	values map[string]*Profile
}

func newResults(keys []string, values map[string]*Profile) *Results {
	return &Results{keys: keys, values: values}
}

// NewResults builds Results from already resolved entries, in the given order.
// Keys absent from values map to nil; values for other keys are dropped.
func NewResults(keys []string, values map[string]*Profile) (*Results, error) {
	normalized, err := normalizeKeys(keys)
	if err != nil {
		return nil, err
	}
	byKey := make(map[string]*Profile, len(values))
	for k, p := range values {
		nk, err := suiclient.NormalizeAddress(k)
		if err != nil {
			return nil, err
		}
		byKey[nk] = p
	}
	out := make(map[string]*Profile, len(normalized))
	for _, k := range normalized {
		out[k] = byKey[k]
	}
	return newResults(normalized, out), nil
}

// Keys returns the normalized keys in first-occurrence order.
func (r *Results) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

func (r *Results) Len() int {
	return len(r.keys)
}

// Get returns the profile for key; ok is false when key was not requested.
func (r *Results) Get(key string) (p *Profile, ok bool) {
	k, err := suiclient.NormalizeAddress(key)
	if err != nil {
		return nil, false
	}
	p, ok = r.values[k]
	return p, ok
}

// Range calls fn for each entry in order until fn returns false.
func (r *Results) Range(fn func(key string, p *Profile) bool) {
	for _, k := range r.keys {
		if !fn(k, r.values[k]) {
			return
		}
	}
}

// normalizeKeys normalizes addresses and drops repeats, keeping first-occurrence order.
func normalizeKeys(inputs []string) ([]string, error) {
	keys := make([]string, 0, len(inputs))
	seen := make(map[string]struct{}, len(inputs))
	for _, in := range inputs {
		k, err := suiclient.NormalizeAddress(in)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	return keys, nil
}

// chunk splits items into consecutive slices of at most size elements.
func chunk[T any](items []T, size int) [][]T {
	if size <= 0 {
		panic(fmt.Sprintf("chunk size must be positive, got %d", size))
	}
	chunks := make([][]T, 0, (len(items)+size-1)/size)
	for size < len(items) {
		items, chunks = items[size:], append(chunks, items[:size:size])
	}
	if len(items) > 0 {
		chunks = append(chunks, items)
	}
	return chunks
}
