package keys

import (
	"crypto/ecdsa"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/polymedia/polymedia-profile/pkg/suiclient"
)

// KeyFile is the on-disk form of a secp256k1 account key.
type KeyFile struct {
	Scheme     string `json:"scheme"`
	PublicKey  string `json:"public_key"`
	Address    string `json:"address"`
	PrivateKey string `json:"private_key"`
}

const SchemeSecp256k1 = "secp256k1"

// LoadPrivateKey reads a key file and returns the key with its derived account address.
// A stored address that does not match the key is rejected.
func LoadPrivateKey(keyfile string) (*ecdsa.PrivateKey, string, error) {
	data, err := os.ReadFile(keyfile)
	if err != nil {
		return nil, "", err
	}

	var key KeyFile
	if err := json.Unmarshal(data, &key); err != nil {
		return nil, "", err
	}
	if key.Scheme != "" && key.Scheme != SchemeSecp256k1 {
		return nil, "", fmt.Errorf("unsupported key scheme %q", key.Scheme)
	}

	privateKey, err := crypto.HexToECDSA(key.PrivateKey)
	if err != nil {
		return nil, "", err
	}

	address := suiclient.Secp256k1Address(&privateKey.PublicKey)
	if key.Address != "" {
		stored, err := suiclient.NormalizeAddress(key.Address)
		if err != nil || stored != address {
			return nil, "", errors.New("key file address does not match private key")
		}
	}

	return privateKey, address, nil
}

// LoadSigner loads a key file as a transaction signer.
func LoadSigner(keyfile string) (*suiclient.Secp256k1Signer, error) {
	privateKey, _, err := LoadPrivateKey(keyfile)
	if err != nil {
		return nil, err
	}
	return suiclient.NewSecp256k1Signer(privateKey), nil
}

// GenerateKeyFile writes a fresh key to path and returns its address.
// An existing file is never overwritten.
func GenerateKeyFile(path string) (string, error) {
	privateKey, err := crypto.GenerateKey()
	if err != nil {
		return "", err
	}

	address := suiclient.Secp256k1Address(&privateKey.PublicKey)
	keyFile := KeyFile{
		Scheme:     SchemeSecp256k1,
		PublicKey:  common.Bytes2Hex(crypto.CompressPubkey(&privateKey.PublicKey)),
		Address:    address,
		PrivateKey: common.Bytes2Hex(crypto.FromECDSA(privateKey)),
	}

	data, err := json.MarshalIndent(keyFile, "", "  ")
	if err != nil {
		return "", err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return "", err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return "", err
	}
	return address, f.Close()
}
