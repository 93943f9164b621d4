package suiclient

import (
	"context"
	"crypto/ecdsa"
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/crypto/blake2b"
)

// Secp256k1Flag is the signature scheme flag for secp256k1 keys.
const Secp256k1Flag byte = 0x01

// transactionIntent is the intent prefix (scope, version, app id) for transaction data.
var transactionIntent = []byte{0, 0, 0}

// Secp256k1Signer signs transactions with a local secp256k1 key.
type Secp256k1Signer struct {
	key     *ecdsa.PrivateKey
	address string
}

func NewSecp256k1Signer(key *ecdsa.PrivateKey) *Secp256k1Signer {
	return &Secp256k1Signer{
		key:     key,
		address: Secp256k1Address(&key.PublicKey),
	}
}

// Secp256k1Address derives the account address of a public key:
// blake2b256(flag || compressed public key).
func Secp256k1Address(pub *ecdsa.PublicKey) string {
	h := blake2b.Sum256(append([]byte{Secp256k1Flag}, crypto.CompressPubkey(pub)...))
	return common.BytesToHash(h[:]).Hex()
}

func (s *Secp256k1Signer) Address() string {
	return s.address
}

// SignTransaction signs base64 transaction bytes and returns the serialized
// signature base64(flag || r || s || compressed public key).
func (s *Secp256k1Signer) SignTransaction(_ context.Context, txBytes string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(txBytes)
	if err != nil {
		return "", fmt.Errorf("failed to decode transaction bytes: %w", err)
	}

	digest := TransactionDigest(raw)
	hash := sha256.Sum256(digest[:])
	sig, err := crypto.Sign(hash[:], s.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign transaction: %w", err)
	}

	serialized := make([]byte, 0, 1+64+33)
	serialized = append(serialized, Secp256k1Flag)
	serialized = append(serialized, sig[:64]...)
	serialized = append(serialized, crypto.CompressPubkey(&s.key.PublicKey)...)
	return base64.StdEncoding.EncodeToString(serialized), nil
}

// TransactionDigest is the blake2b256 hash of the intent message that wraps raw transaction data.
func TransactionDigest(raw []byte) [32]byte {
	msg := make([]byte, 0, len(transactionIntent)+len(raw))
	msg = append(msg, transactionIntent...)
	msg = append(msg, raw...)
	return blake2b.Sum256(msg)
}
