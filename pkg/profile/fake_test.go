package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/polymedia/polymedia-profile/internal/txbuilder"
	"github.com/polymedia/polymedia-profile/pkg/suiclient"
)

const (
	testPackageID  = "0x00000000000000000000000000000000000000000000000000000000000000e1"
	testRegistryID = "0x00000000000000000000000000000000000000000000000000000000000000e2"
)

// fakeLedger is an in-memory full node holding one registry and its profiles.
type fakeLedger struct {
	mu sync.Mutex

	registryOwner suiclient.Owner
	// owner address -> profile object id
	registered map[string]string
	objects    map[string]suiclient.ObjectResponse

	inspectStatus suiclient.ExecutionStatus
	inspectDelay  func(addresses []string) time.Duration

	getObjectCalls  int
	inspectBatches  [][]string
	multiGetBatches [][]string

	moveCalls   []suiclient.MoveCallRequest
	executed    []string
	executeResp *suiclient.TransactionBlockResponse
	executeErr  error
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		registryOwner: suiclient.Owner{Kind: suiclient.OwnerShared, InitialSharedVersion: 7},
		registered:    make(map[string]string),
		objects:       make(map[string]suiclient.ObjectResponse),
		inspectStatus: suiclient.ExecutionStatus{Status: "success"},
	}
}

// addProfile registers a profile object for owner.
func (l *fakeLedger) addProfile(owner, objectID, name string) {
	l.registered[owner] = objectID
	l.objects[objectID] = profileObject(objectID, suiclient.Owner{Kind: suiclient.OwnerAddress, Address: owner}, name, `{"n":1}`)
}

func (l *fakeLedger) inspectCalls() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.inspectBatches)
}

func (l *fakeLedger) multiGetCalls() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.multiGetBatches)
}

func (l *fakeLedger) GetObject(_ context.Context, objectID string, _ *suiclient.ObjectDataOptions) (*suiclient.ObjectResponse, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.getObjectCalls++
	if objectID != testRegistryID {
		return &suiclient.ObjectResponse{Error: &suiclient.ObjectError{Code: "notExists", ObjectID: objectID}}, nil
	}
	owner := l.registryOwner
	return &suiclient.ObjectResponse{Data: &suiclient.ObjectData{ObjectID: objectID, Owner: &owner}}, nil
}

func (l *fakeLedger) MultiGetObjects(_ context.Context, objectIDs []string, opts *suiclient.ObjectDataOptions) ([]suiclient.ObjectResponse, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.multiGetBatches = append(l.multiGetBatches, objectIDs)

	out := make([]suiclient.ObjectResponse, len(objectIDs))
	for i, id := range objectIDs {
		obj, ok := l.objects[id]
		if !ok {
			out[i] = suiclient.ObjectResponse{Error: &suiclient.ObjectError{Code: "notExists", ObjectID: id}}
			continue
		}
		if obj.Data != nil {
			data := *obj.Data
			if !opts.ShowContent {
				data.Content = nil
			}
			if !opts.ShowOwner {
				data.Owner = nil
			}
			obj.Data = &data
		}
		out[i] = obj
	}
	return out, nil
}

func (l *fakeLedger) DevInspectTransactionBlock(ctx context.Context, _ string, txKind []byte) (*suiclient.DevInspectResults, error) {
	ref, addresses, err := txbuilder.ParseGetProfiles(txKind)
	if err != nil {
		return nil, err
	}
	if ref.ObjectID != testRegistryID || ref.InitialSharedVersion != l.registryOwner.InitialSharedVersion {
		return nil, fmt.Errorf("unexpected registry input %+v", ref)
	}

	if l.inspectDelay != nil {
		select {
		case <-time.After(l.inspectDelay(addresses)):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.inspectBatches = append(l.inspectBatches, addresses)

	if !l.inspectStatus.IsSuccess() {
		return &suiclient.DevInspectResults{Effects: suiclient.TransactionEffects{Status: l.inspectStatus}}, nil
	}

	var found []txbuilder.LookupResult
	for _, a := range addresses {
		if id, ok := l.registered[a]; ok {
			found = append(found, txbuilder.LookupResult{LookupAddress: a, ProfileID: id})
		}
	}
	encoded, err := txbuilder.EncodeLookupResults(found)
	if err != nil {
		return nil, err
	}
	return &suiclient.DevInspectResults{
		Effects: suiclient.TransactionEffects{Status: l.inspectStatus},
		Results: []suiclient.ExecutionResult{{
			ReturnValues: []suiclient.ReturnValue{{Bytes: encoded, Type: "vector<0x1::profile::LookupResult>"}},
		}},
	}, nil
}

func (l *fakeLedger) MoveCall(_ context.Context, req suiclient.MoveCallRequest) (*suiclient.TransactionBlockBytes, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.moveCalls = append(l.moveCalls, req)
	return &suiclient.TransactionBlockBytes{TxBytes: "dHg="}, nil
}

func (l *fakeLedger) ExecuteTransactionBlock(_ context.Context, txBytes string, signatures []string, _ *suiclient.TransactionBlockResponseOptions) (*suiclient.TransactionBlockResponse, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.executed = append(l.executed, signatures...)
	if l.executeErr != nil {
		return nil, l.executeErr
	}
	return l.executeResp, nil
}

func profileObject(objectID string, owner suiclient.Owner, name, data string) suiclient.ObjectResponse {
	str := func(s string) json.RawMessage {
		b, _ := json.Marshal(s)
		return b
	}
	return suiclient.ObjectResponse{Data: &suiclient.ObjectData{
		ObjectID: objectID,
		Version:  1,
		Owner:    &owner,
		Content: &suiclient.ParsedData{
			DataType: suiclient.DataTypeMoveObject,
			Type:     testPackageID + ProfileTypeSuffix,
			Fields: map[string]json.RawMessage{
				"id":          json.RawMessage(`{"id":"` + objectID + `"}`),
				"name":        str(name),
				"image_url":   str("https://img.example/" + name),
				"description": str(name + " description"),
				"data":        str(data),
			},
		},
	}}
}

// addr returns the normalized address for n.
func addr(t testing.TB, n int) string {
	a, err := suiclient.NormalizeAddress(fmt.Sprintf("0x%x", n))
	require.NoError(t, err)
	return a
}

func newTestClient(t testing.TB, ledger *fakeLedger) *Client {
	c, err := NewClient(ledger, Config{PackageID: testPackageID, RegistryID: testRegistryID}, zap.NewNop())
	require.NoError(t, err)
	return c
}

type fakeSigner struct {
	address string
	err     error
}

func (s fakeSigner) Address() string {
	return s.address
}

func (s fakeSigner) SignTransaction(_ context.Context, txBytes string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "sig:" + txBytes, nil
}
