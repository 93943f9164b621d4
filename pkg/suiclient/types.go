package suiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// SequenceNumber is a u64 the node renders either as a JSON number or a decimal string.
type SequenceNumber uint64

func (n *SequenceNumber) UnmarshalJSON(b []byte) error {
	s := string(bytes.Trim(b, `"`))
	if s == "null" || s == "" {
		*n = 0
		return nil
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid sequence number %s: %w", b, err)
	}
	*n = SequenceNumber(v)
	return nil
}

// OwnerKind enumerates the ownership forms of an object.
type OwnerKind int

const (
	OwnerUnknown OwnerKind = iota
	OwnerAddress
	OwnerObject
	OwnerShared
	OwnerImmutable
)

func (k OwnerKind) String() string {
	switch k {
	case OwnerAddress:
		return "AddressOwner"
	case OwnerObject:
		return "ObjectOwner"
	case OwnerShared:
		return "Shared"
	case OwnerImmutable:
		return "Immutable"
	default:
		return "Unknown"
	}
}

// Owner is the ownership metadata of an object. Address holds the owning
// account for OwnerAddress and the parent object id for OwnerObject.
type Owner struct {
	Kind                 OwnerKind
	Address              string
	InitialSharedVersion uint64
}

// IsOwned reports whether the object belongs to exactly one address or object.
func (o Owner) IsOwned() bool {
	return o.Kind == OwnerAddress || o.Kind == OwnerObject
}

func (o *Owner) UnmarshalJSON(b []byte) error {
	var tag string
	if err := json.Unmarshal(b, &tag); err == nil {
		if tag == "Immutable" {
			*o = Owner{Kind: OwnerImmutable}
		} else {
			*o = Owner{Kind: OwnerUnknown}
		}
		return nil
	}

	var variants struct {
		AddressOwner *string `json:"AddressOwner"`
		ObjectOwner  *string `json:"ObjectOwner"`
		Shared       *struct {
			InitialSharedVersion SequenceNumber `json:"initial_shared_version"`
		} `json:"Shared"`
	}
	if err := json.Unmarshal(b, &variants); err != nil {
		return fmt.Errorf("invalid owner %s: %w", b, err)
	}
	switch {
	case variants.AddressOwner != nil:
		*o = Owner{Kind: OwnerAddress, Address: *variants.AddressOwner}
	case variants.ObjectOwner != nil:
		*o = Owner{Kind: OwnerObject, Address: *variants.ObjectOwner}
	case variants.Shared != nil:
		*o = Owner{Kind: OwnerShared, InitialSharedVersion: uint64(variants.Shared.InitialSharedVersion)}
	default:
		*o = Owner{Kind: OwnerUnknown}
	}
	return nil
}

func (o Owner) MarshalJSON() ([]byte, error) {
	switch o.Kind {
	case OwnerAddress:
		return json.Marshal(map[string]string{"AddressOwner": o.Address})
	case OwnerObject:
		return json.Marshal(map[string]string{"ObjectOwner": o.Address})
	case OwnerShared:
		return json.Marshal(map[string]map[string]uint64{
			"Shared": {"initial_shared_version": o.InitialSharedVersion},
		})
	case OwnerImmutable:
		return json.Marshal("Immutable")
	default:
		return []byte("null"), nil
	}
}

// ObjectDataOptions selects which parts of an object the node returns.
type ObjectDataOptions struct {
	ShowType                bool `json:"showType,omitempty"`
	ShowOwner               bool `json:"showOwner,omitempty"`
	ShowPreviousTransaction bool `json:"showPreviousTransaction,omitempty"`
	ShowDisplay             bool `json:"showDisplay,omitempty"`
	ShowContent             bool `json:"showContent,omitempty"`
	ShowBcs                 bool `json:"showBcs,omitempty"`
	ShowStorageRebate       bool `json:"showStorageRebate,omitempty"`
}

type ObjectResponse struct {
	Data  *ObjectData  `json:"data,omitempty"`
	Error *ObjectError `json:"error,omitempty"`
}

// ObjectError is the per-object failure marker, e.g. code "notExists" or "deleted".
type ObjectError struct {
	Code     string `json:"code"`
	ObjectID string `json:"object_id,omitempty"`
	Error    string `json:"error,omitempty"`
}

type ObjectData struct {
	ObjectID string         `json:"objectId"`
	Version  SequenceNumber `json:"version"`
	Digest   string         `json:"digest"`
	Type     string         `json:"type,omitempty"`
	Owner    *Owner         `json:"owner,omitempty"`
	Content  *ParsedData    `json:"content,omitempty"`
}

const (
	DataTypeMoveObject = "moveObject"
	DataTypePackage    = "package"
)

// ParsedData is the decoded content of an object. Fields is only set for move objects.
type ParsedData struct {
	DataType          string                     `json:"dataType"`
	Type              string                     `json:"type,omitempty"`
	HasPublicTransfer bool                       `json:"hasPublicTransfer,omitempty"`
	Fields            map[string]json.RawMessage `json:"fields,omitempty"`
}

type ExecutionStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

func (s ExecutionStatus) IsSuccess() bool {
	return s.Status == "success"
}

type ObjectRef struct {
	ObjectID string         `json:"objectId"`
	Version  SequenceNumber `json:"version"`
	Digest   string         `json:"digest"`
}

type OwnedObjectRef struct {
	Owner     Owner     `json:"owner"`
	Reference ObjectRef `json:"reference"`
}

type TransactionEffects struct {
	Status  ExecutionStatus  `json:"status"`
	Created []OwnedObjectRef `json:"created,omitempty"`
	Mutated []OwnedObjectRef `json:"mutated,omitempty"`
}

// ReturnValue is one value returned by a simulated Move call: BCS bytes plus the Move type.
type ReturnValue struct {
	Bytes []byte
	Type  string
}

// UnmarshalJSON decodes the node's [[u8, ...], "type"] tuple.
func (v *ReturnValue) UnmarshalJSON(b []byte) error {
	var tuple []json.RawMessage
	if err := json.Unmarshal(b, &tuple); err != nil {
		return fmt.Errorf("invalid return value: %w", err)
	}
	if len(tuple) != 2 {
		return fmt.Errorf("invalid return value: expected 2 elements, got %d", len(tuple))
	}
	var raw []uint16
	if err := json.Unmarshal(tuple[0], &raw); err != nil {
		return fmt.Errorf("invalid return value bytes: %w", err)
	}
	out := make([]byte, len(raw))
	for i, n := range raw {
		if n > 0xff {
			return fmt.Errorf("invalid return value byte %d at %d", n, i)
		}
		out[i] = byte(n)
	}
	if err := json.Unmarshal(tuple[1], &v.Type); err != nil {
		return fmt.Errorf("invalid return value type: %w", err)
	}
	v.Bytes = out
	return nil
}

func (v ReturnValue) MarshalJSON() ([]byte, error) {
	raw := make([]uint16, len(v.Bytes))
	for i, b := range v.Bytes {
		raw[i] = uint16(b)
	}
	return json.Marshal([]any{raw, v.Type})
}

type ExecutionResult struct {
	ReturnValues []ReturnValue `json:"returnValues,omitempty"`
}

type DevInspectResults struct {
	Effects TransactionEffects `json:"effects"`
	Results []ExecutionResult  `json:"results,omitempty"`
	Error   string             `json:"error,omitempty"`
}

// MoveCallRequest describes a single move call assembled by the node.
type MoveCallRequest struct {
	Signer          string
	PackageObjectID string
	Module          string
	Function        string
	TypeArguments   []string
	Arguments       []any
	Gas             *string
	GasBudget       uint64
}

type TransactionBlockBytes struct {
	TxBytes string `json:"txBytes"`
}

type TransactionBlockResponseOptions struct {
	ShowInput          bool `json:"showInput,omitempty"`
	ShowRawInput       bool `json:"showRawInput,omitempty"`
	ShowEffects        bool `json:"showEffects,omitempty"`
	ShowEvents         bool `json:"showEvents,omitempty"`
	ShowObjectChanges  bool `json:"showObjectChanges,omitempty"`
	ShowBalanceChanges bool `json:"showBalanceChanges,omitempty"`
}

type ObjectChange struct {
	Type       string         `json:"type"`
	Sender     string         `json:"sender,omitempty"`
	Owner      *Owner         `json:"owner,omitempty"`
	ObjectType string         `json:"objectType,omitempty"`
	ObjectID   string         `json:"objectId,omitempty"`
	Version    SequenceNumber `json:"version"`
	Digest     string         `json:"digest,omitempty"`
}

type TransactionBlockResponse struct {
	Digest        string              `json:"digest"`
	Effects       *TransactionEffects `json:"effects,omitempty"`
	ObjectChanges []ObjectChange      `json:"objectChanges,omitempty"`
	Errors        []string            `json:"errors,omitempty"`
}
