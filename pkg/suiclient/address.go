package suiclient

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ErrInvalidAddress is returned for strings that are not a 32-byte hex address or object id.
var ErrInvalidAddress = errors.New("invalid sui address")

// ZeroAddress is used as the sender of read-only simulated calls.
var ZeroAddress = common.Hash{}.Hex()

// ParseAddress decodes an account address or object id. Short forms such as
// "0x2" are left-padded with zeros.
func ParseAddress(s string) (common.Hash, error) {
	raw := strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(s), "0x"), "0X")
	if raw == "" || len(raw) > 2*common.HashLength {
		return common.Hash{}, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}
	padded := strings.Repeat("0", 2*common.HashLength-len(raw)) + raw
	b, err := hexutil.Decode("0x" + padded)
	if err != nil {
		return common.Hash{}, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}
	return common.BytesToHash(b), nil
}

// NormalizeAddress returns the canonical "0x" + 64 lowercase hex form.
func NormalizeAddress(s string) (string, error) {
	h, err := ParseAddress(s)
	if err != nil {
		return "", err
	}
	return h.Hex(), nil
}
