package profile

import (
	"errors"
	"fmt"
	"strings"

	"github.com/polymedia/polymedia-profile/pkg/suiclient"
)

// ErrInvalidAddress is returned before any network I/O for malformed addresses or ids.
var ErrInvalidAddress = suiclient.ErrInvalidAddress

// ErrNoRegistry is returned by registry operations of a client created without a registry id.
var ErrNoRegistry = errors.New("no profile registry configured")

// ErrUserRejected is returned by signers when the user declines to sign.
var ErrUserRejected = errors.New("rejected from user")

// LookupError reports a get_profiles simulation that did not execute successfully.
type LookupError struct {
	Status  string
	Message string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("profile lookup failed (status %q): %s", e.Status, e.Message)
}

// DecodingError reports a fetched object that cannot be read as a Profile.
// It indicates a programming error (wrong fetch options or wrong object type), not missing data.
type DecodingError struct {
	ObjectID string
	Reason   string
}

func (e *DecodingError) Error() string {
	return fmt.Sprintf("failed to decode profile %s: %s", e.ObjectID, e.Reason)
}

// TransactionError reports a transaction that executed with a non-success status.
type TransactionError struct {
	Digest  string
	Status  string
	Message string
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("transaction %s failed (status %q): %s", e.Digest, e.Status, e.Message)
}

// IsUserRejection reports whether err is a signing request the user declined.
// Wallets are matched by message since they do not share an error type.
func IsUserRejection(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrUserRejected) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "rejected from user") || strings.Contains(msg, "user rejected")
}
