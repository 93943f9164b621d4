// Package suiclient is a JSON-RPC client for a Sui full node covering the
// object, simulation and transaction methods the profile SDK relies on.
package suiclient

import (
	"context"
	"encoding/base64"
	"fmt"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"

	"github.com/polymedia/polymedia-profile/internal/metrics"
)

const (
	methodGetObject           = "sui_getObject"
	methodMultiGetObjects     = "sui_multiGetObjects"
	methodDevInspect          = "sui_devInspectTransactionBlock"
	methodExecuteTransaction  = "sui_executeTransactionBlock"
	methodUnsafeMoveCall      = "unsafe_moveCall"
	requestTypeLocalExecution = "WaitForLocalExecution"
)

// SuiClient is the subset of the full node API consumed by the profile client.
type SuiClient interface {
	GetObject(ctx context.Context, objectID string, opts *ObjectDataOptions) (*ObjectResponse, error)
	MultiGetObjects(ctx context.Context, objectIDs []string, opts *ObjectDataOptions) ([]ObjectResponse, error)
	DevInspectTransactionBlock(ctx context.Context, sender string, txKind []byte) (*DevInspectResults, error)
	MoveCall(ctx context.Context, req MoveCallRequest) (*TransactionBlockBytes, error)
	ExecuteTransactionBlock(ctx context.Context, txBytes string, signatures []string, opts *TransactionBlockResponseOptions) (*TransactionBlockResponse, error)
}

// Client talks JSON-RPC 2.0 to a full node over HTTP or WebSocket.
type Client struct {
	rpc    *rpc.Client
	logger *zap.Logger
}

var _ SuiClient = (*Client)(nil)

// Dial connects to the full node at url.
func Dial(ctx context.Context, url string, logger *zap.Logger) (*Client, error) {
	c, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to dial sui rpc %s: %w", url, err)
	}
	return NewClient(c, logger), nil
}

func NewClient(c *rpc.Client, logger *zap.Logger) *Client {
	return &Client{
		rpc:    c,
		logger: logger.Named("sui_client"),
	}
}

func (c *Client) Close() {
	c.rpc.Close()
}

func (c *Client) call(ctx context.Context, result interface{}, method string, args ...interface{}) error {
	start := time.Now()
	err := c.rpc.CallContext(ctx, result, method, args...)
	metrics.LedgerRequestDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.LedgerRequests.WithLabelValues(method, "error").Inc()
		c.logger.Error("Failed to call sui rpc", zap.String("method", method), zap.Error(err))
		return fmt.Errorf("failed to call %s: %w", method, err)
	}
	metrics.LedgerRequests.WithLabelValues(method, "ok").Inc()
	return nil
}

func (c *Client) GetObject(ctx context.Context, objectID string, opts *ObjectDataOptions) (*ObjectResponse, error) {
	var resp ObjectResponse
	if err := c.call(ctx, &resp, methodGetObject, objectID, opts); err != nil {
		return nil, err
	}
	return &resp, nil
}

// MultiGetObjects returns one response per requested id, in request order.
func (c *Client) MultiGetObjects(ctx context.Context, objectIDs []string, opts *ObjectDataOptions) ([]ObjectResponse, error) {
	var resp []ObjectResponse
	if err := c.call(ctx, &resp, methodMultiGetObjects, objectIDs, opts); err != nil {
		return nil, err
	}
	if len(resp) != len(objectIDs) {
		return nil, fmt.Errorf("%s returned %d objects for %d ids", methodMultiGetObjects, len(resp), len(objectIDs))
	}
	return resp, nil
}

// DevInspectTransactionBlock simulates a BCS-encoded TransactionKind without committing it.
func (c *Client) DevInspectTransactionBlock(ctx context.Context, sender string, txKind []byte) (*DevInspectResults, error) {
	var resp DevInspectResults
	if err := c.call(ctx, &resp, methodDevInspect, sender, base64.StdEncoding.EncodeToString(txKind)); err != nil {
		return nil, err
	}
	return &resp, nil
}

// MoveCall asks the node to assemble an unsigned transaction for a single move call.
func (c *Client) MoveCall(ctx context.Context, req MoveCallRequest) (*TransactionBlockBytes, error) {
	typeArgs := req.TypeArguments
	if typeArgs == nil {
		typeArgs = []string{}
	}
	args := req.Arguments
	if args == nil {
		args = []any{}
	}

	var resp TransactionBlockBytes
	err := c.call(ctx, &resp, methodUnsafeMoveCall,
		req.Signer,
		req.PackageObjectID,
		req.Module,
		req.Function,
		typeArgs,
		args,
		req.Gas,
		strconv.FormatUint(req.GasBudget, 10),
	)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// ExecuteTransactionBlock submits a signed transaction and waits for local execution.
func (c *Client) ExecuteTransactionBlock(ctx context.Context, txBytes string, signatures []string, opts *TransactionBlockResponseOptions) (*TransactionBlockResponse, error) {
	var resp TransactionBlockResponse
	if err := c.call(ctx, &resp, methodExecuteTransaction, txBytes, signatures, opts, requestTypeLocalExecution); err != nil {
		return nil, err
	}
	return &resp, nil
}
