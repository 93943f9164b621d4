// Package txbuilder assembles the profile package's move calls: the read-only
// get_profiles lookup used for simulation, and the registry/profile writes.
package txbuilder

import (
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/polymedia/polymedia-profile/pkg/bcs"
	"github.com/polymedia/polymedia-profile/pkg/suiclient"
)

const (
	Module = "profile"

	FunctionGetProfiles    = "get_profiles"
	FunctionCreateRegistry = "create_registry"
	FunctionCreateProfile  = "create_profile"
	FunctionEditProfile    = "edit_profile"
)

// TransactionKind and CallArg variant tags.
const (
	kindProgrammableTransaction byte = 0

	callArgPure   byte = 0
	callArgObject byte = 1

	objectArgShared byte = 1

	commandMoveCall byte = 0

	argumentInput byte = 1
)

// SharedObjectRef identifies a shared object input of a programmable transaction.
type SharedObjectRef struct {
	ObjectID             string
	InitialSharedVersion uint64
	Mutable              bool
}

// GetProfiles returns the BCS TransactionKind of a programmable transaction that
// calls profile::get_profiles(registry, addresses).
func GetProfiles(packageID string, registry SharedObjectRef, addresses []string) ([]byte, error) {
	pkg, err := suiclient.ParseAddress(packageID)
	if err != nil {
		return nil, fmt.Errorf("invalid package id: %w", err)
	}
	registryID, err := suiclient.ParseAddress(registry.ObjectID)
	if err != nil {
		return nil, fmt.Errorf("invalid registry id: %w", err)
	}

	lookup := make([][bcs.AddressLength]byte, 0, len(addresses))
	for _, a := range addresses {
		h, err := suiclient.ParseAddress(a)
		if err != nil {
			return nil, err
		}
		lookup = append(lookup, h)
	}
	pure := bcs.NewEncoder().Addresses(lookup).Bytes()

	enc := bcs.NewEncoder().U8(kindProgrammableTransaction)

	// inputs
	enc.ULEB128(2)
	enc.U8(callArgObject).
		U8(objectArgShared).
		Address(registryID).
		U64(registry.InitialSharedVersion).
		Bool(registry.Mutable)
	enc.U8(callArgPure).Vector(pure)

	// commands
	enc.ULEB128(1)
	enc.U8(commandMoveCall).
		Address(pkg).
		String(Module).
		String(FunctionGetProfiles).
		ULEB128(0) // type arguments
	enc.ULEB128(2).
		U8(argumentInput).U16(0).
		U8(argumentInput).U16(1)

	return enc.Bytes(), nil
}

// LookupResult is one (lookup address, profile object id) pair returned by get_profiles.
type LookupResult struct {
	LookupAddress string
	ProfileID     string
}

// DecodeLookupResults decodes the BCS vector<LookupResult> returned by get_profiles.
func DecodeLookupResults(b []byte) ([]LookupResult, error) {
	d := bcs.NewDecoder(b)
	n, err := d.ULEB128()
	if err != nil {
		return nil, fmt.Errorf("failed to decode lookup results length: %w", err)
	}
	if int(n)*2*bcs.AddressLength > d.Remaining() {
		return nil, fmt.Errorf("lookup results truncated: %d entries, %d bytes", n, d.Remaining())
	}
	results := make([]LookupResult, 0, n)
	for i := uint32(0); i < n; i++ {
		lookupAddr, err := d.Address()
		if err != nil {
			return nil, fmt.Errorf("failed to decode lookup address %d: %w", i, err)
		}
		profileAddr, err := d.Address()
		if err != nil {
			return nil, fmt.Errorf("failed to decode profile id %d: %w", i, err)
		}
		results = append(results, LookupResult{
			LookupAddress: hexAddress(lookupAddr),
			ProfileID:     hexAddress(profileAddr),
		})
	}
	return results, nil
}

// EncodeLookupResults is the inverse of DecodeLookupResults. Nothing on the
// client path calls it; it lets in-memory ledgers answer get_profiles.
func EncodeLookupResults(results []LookupResult) ([]byte, error) {
	enc := bcs.NewEncoder().ULEB128(uint32(len(results)))
	for _, r := range results {
		lookupAddr, err := suiclient.ParseAddress(r.LookupAddress)
		if err != nil {
			return nil, err
		}
		profileID, err := suiclient.ParseAddress(r.ProfileID)
		if err != nil {
			return nil, err
		}
		enc.Address(lookupAddr).Address(profileID)
	}
	return enc.Bytes(), nil
}

// ProfileFields are the user-editable fields of a profile.
type ProfileFields struct {
	Name        string
	ImageURL    string
	Description string
	// Data is marshalled to JSON; nil stores an empty string.
	Data any
}

func (f ProfileFields) encodeData() (string, error) {
	if f.Data == nil {
		return "", nil
	}
	if raw, ok := f.Data.(json.RawMessage); ok {
		if !json.Valid(raw) {
			return "", fmt.Errorf("profile data is not valid JSON")
		}
		return string(raw), nil
	}
	b, err := json.Marshal(f.Data)
	if err != nil {
		return "", fmt.Errorf("failed to marshal profile data: %w", err)
	}
	return string(b), nil
}

// CreateRegistry builds profile::create_registry(name).
func CreateRegistry(sender, packageID, name string, gasBudget uint64) suiclient.MoveCallRequest {
	return suiclient.MoveCallRequest{
		Signer:          sender,
		PackageObjectID: packageID,
		Module:          Module,
		Function:        FunctionCreateRegistry,
		Arguments:       []any{name},
		GasBudget:       gasBudget,
	}
}

// CreateProfile builds profile::create_profile(registry, name, image_url, description, data).
func CreateProfile(sender, packageID, registryID string, fields ProfileFields, gasBudget uint64) (suiclient.MoveCallRequest, error) {
	data, err := fields.encodeData()
	if err != nil {
		return suiclient.MoveCallRequest{}, err
	}
	return suiclient.MoveCallRequest{
		Signer:          sender,
		PackageObjectID: packageID,
		Module:          Module,
		Function:        FunctionCreateProfile,
		Arguments:       []any{registryID, fields.Name, fields.ImageURL, fields.Description, data},
		GasBudget:       gasBudget,
	}, nil
}

// EditProfile builds profile::edit_profile(profile, name, image_url, description, data).
func EditProfile(sender, packageID, profileID string, fields ProfileFields, gasBudget uint64) (suiclient.MoveCallRequest, error) {
	data, err := fields.encodeData()
	if err != nil {
		return suiclient.MoveCallRequest{}, err
	}
	return suiclient.MoveCallRequest{
		Signer:          sender,
		PackageObjectID: packageID,
		Module:          Module,
		Function:        FunctionEditProfile,
		Arguments:       []any{profileID, fields.Name, fields.ImageURL, fields.Description, data},
		GasBudget:       gasBudget,
	}, nil
}

// ParseGetProfiles extracts the registry and lookup addresses from a TransactionKind built by GetProfiles.
// It is the ledger side of GetProfiles and exists for in-memory ledgers.
func ParseGetProfiles(txKind []byte) (SharedObjectRef, []string, error) {
	var ref SharedObjectRef
	d := bcs.NewDecoder(txKind)

	expectByte := func(want byte, what string) error {
		got, err := d.U8()
		if err != nil {
			return err
		}
		if got != want {
			return fmt.Errorf("unexpected %s tag %d", what, got)
		}
		return nil
	}

	if err := expectByte(kindProgrammableTransaction, "transaction kind"); err != nil {
		return ref, nil, err
	}
	if n, err := d.ULEB128(); err != nil || n != 2 {
		return ref, nil, fmt.Errorf("expected 2 inputs")
	}
	if err := expectByte(callArgObject, "call arg"); err != nil {
		return ref, nil, err
	}
	if err := expectByte(objectArgShared, "object arg"); err != nil {
		return ref, nil, err
	}
	id, err := d.Address()
	if err != nil {
		return ref, nil, err
	}
	version, err := d.U64()
	if err != nil {
		return ref, nil, err
	}
	mutable, err := d.Bool()
	if err != nil {
		return ref, nil, err
	}
	ref = SharedObjectRef{ObjectID: hexAddress(id), InitialSharedVersion: version, Mutable: mutable}

	if err := expectByte(callArgPure, "call arg"); err != nil {
		return ref, nil, err
	}
	pure, err := d.Vector()
	if err != nil {
		return ref, nil, err
	}
	pd := bcs.NewDecoder(pure)
	count, err := pd.ULEB128()
	if err != nil {
		return ref, nil, err
	}
	addresses := make([]string, 0, count)
	for i := uint32(0); i < count; i++ {
		a, err := pd.Address()
		if err != nil {
			return ref, nil, err
		}
		addresses = append(addresses, hexAddress(a))
	}
	return ref, addresses, nil
}

func hexAddress(a [bcs.AddressLength]byte) string {
	return common.Hash(a).Hex()
}
