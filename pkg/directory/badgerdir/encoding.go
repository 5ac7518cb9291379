package badgerdir

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/musterio/muster/pkg/directory"
)

// ============================================================================
// Database Key Namespace Design
// ============================================================================
//
// BadgerDB is a key-value store, so prefixed keys organize the directory
// into logical namespaces. Account names are case-insensitive, so every
// name-derived key is folded to lower case; the stored record keeps the
// original casing.
//
// Key Namespace Prefixes:
//
// Data Type     Prefix   Key Format          Value Type
// =========================================================================
// Users         "u:"     u:<folded name>     directory.User (JSON)
// Groups        "g:"     g:<folded name>     directory.Group (JSON)
// Membership    "m:"     m:<folded group>    []directory.Member (JSON)
// Store Meta    "meta:"  meta:directory      storeMeta (JSON)
//
// A group's membership is one JSON value holding the ordered member list.
// Local groups stay small, and a single value keeps enumeration order and
// membership updates atomic without an extra order index.

const (
	prefixUser   = "u:"
	prefixGroup  = "g:"
	prefixMember = "m:"

	keyMetaStr = "meta:directory"
)

func fold(name string) string { return strings.ToLower(name) }

// keyUser generates a key for a user record: "u:<folded name>"
func keyUser(name string) []byte {
	return []byte(prefixUser + fold(name))
}

// keyGroup generates a key for a group record: "g:<folded name>"
func keyGroup(name string) []byte {
	return []byte(prefixGroup + fold(name))
}

// keyMembers generates a key for a group's member list: "m:<folded group>"
func keyMembers(group string) []byte {
	return []byte(prefixMember + fold(group))
}

// keyMeta generates the key for store metadata.
func keyMeta() []byte {
	return []byte(keyMetaStr)
}

// storeMeta holds the machine identity and the RID allocator state.
type storeMeta struct {
	Machine    string `json:"machine"`
	MachineSID string `json:"machine_sid"`
	NextRID    uint32 `json:"next_rid"`
}

// ============================================================================
// JSON Encoding/Decoding
// ============================================================================

func encodeUser(user *directory.User) ([]byte, error) {
	bytes, err := json.Marshal(user)
	if err != nil {
		return nil, fmt.Errorf("failed to encode user: %w", err)
	}
	return bytes, nil
}

func decodeUser(bytes []byte) (*directory.User, error) {
	var user directory.User
	if err := json.Unmarshal(bytes, &user); err != nil {
		return nil, fmt.Errorf("failed to decode user: %w", err)
	}
	return &user, nil
}

func encodeGroup(group *directory.Group) ([]byte, error) {
	bytes, err := json.Marshal(group)
	if err != nil {
		return nil, fmt.Errorf("failed to encode group: %w", err)
	}
	return bytes, nil
}

func decodeGroup(bytes []byte) (*directory.Group, error) {
	var group directory.Group
	if err := json.Unmarshal(bytes, &group); err != nil {
		return nil, fmt.Errorf("failed to decode group: %w", err)
	}
	return &group, nil
}

func encodeMembers(members []directory.Member) ([]byte, error) {
	bytes, err := json.Marshal(members)
	if err != nil {
		return nil, fmt.Errorf("failed to encode member list: %w", err)
	}
	return bytes, nil
}

func decodeMembers(bytes []byte) ([]directory.Member, error) {
	var members []directory.Member
	if err := json.Unmarshal(bytes, &members); err != nil {
		return nil, fmt.Errorf("failed to decode member list: %w", err)
	}
	return members, nil
}

func encodeMeta(meta *storeMeta) ([]byte, error) {
	bytes, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("failed to encode store meta: %w", err)
	}
	return bytes, nil
}

func decodeMeta(bytes []byte) (*storeMeta, error) {
	var meta storeMeta
	if err := json.Unmarshal(bytes, &meta); err != nil {
		return nil, fmt.Errorf("failed to decode store meta: %w", err)
	}
	return &meta, nil
}
