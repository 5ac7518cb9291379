// Package principal defines the security-principal value types used across
// muster: binary and string Security Identifiers (SIDs), canonical account
// identities, and the member references accepted from callers and roster
// documents.
//
// Identities are the unit of comparison for membership reconciliation: two
// principals are the same iff their canonical identity keys match. SIDs are
// the opaque tokens carried by observed members; directory adapters derive
// identities from them without any caller-side name parsing.
//
// The SID binary format follows MS-DTYP Section 2.4.2:
//
//	Revision(1) + SubAuthorityCount(1) + IdentifierAuthority(6, big-endian)
//	+ SubAuthorities(4*N, little-endian)
//
// The string format is "S-{Revision}-{Authority}-{SubAuth1}-...-{SubAuthN}".
package principal

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"slices"
	"strconv"
	"strings"
)

// SID is a Windows Security Identifier per MS-DTYP Section 2.4.2.
//
// Directory adapters hand SIDs around as the opaque per-member identity
// token; the reconciler never inspects one beyond equality.
type SID struct {
	// Revision is always 1.
	Revision uint8

	// SubAuthorityCount is the number of sub-authority values.
	SubAuthorityCount uint8

	// IdentifierAuthority is the top-level authority (6 bytes, big-endian).
	IdentifierAuthority [6]byte

	// SubAuthorities contains the sub-authority values.
	SubAuthorities []uint32
}

// BinarySize returns the encoded size of the SID in bytes.
func (s *SID) BinarySize() int {
	return 8 + 4*int(s.SubAuthorityCount)
}

// Bytes encodes the SID in its binary form per MS-DTYP Section 2.4.2.
func (s *SID) Bytes() []byte {
	out := make([]byte, 0, s.BinarySize())
	out = append(out, s.Revision, s.SubAuthorityCount)
	out = append(out, s.IdentifierAuthority[:]...)
	for _, sa := range s.SubAuthorities {
		out = binary.LittleEndian.AppendUint32(out, sa)
	}
	return out
}

// DecodeSID parses a binary SID from data per MS-DTYP Section 2.4.2.
// Returns the parsed SID and the number of bytes consumed.
func DecodeSID(data []byte) (*SID, int, error) {
	if len(data) < 8 {
		return nil, 0, fmt.Errorf("%w: SID too short: %d bytes", ErrInvalidSID, len(data))
	}

	sid := &SID{
		Revision:          data[0],
		SubAuthorityCount: data[1],
	}
	copy(sid.IdentifierAuthority[:], data[2:8])

	size := 8 + 4*int(sid.SubAuthorityCount)
	if len(data) < size {
		return nil, 0, fmt.Errorf("%w: SID data too short for %d sub-authorities: have %d, need %d",
			ErrInvalidSID, sid.SubAuthorityCount, len(data), size)
	}

	sid.SubAuthorities = make([]uint32, sid.SubAuthorityCount)
	for i := 0; i < int(sid.SubAuthorityCount); i++ {
		offset := 8 + 4*i
		sid.SubAuthorities[i] = binary.LittleEndian.Uint32(data[offset : offset+4])
	}

	return sid, size, nil
}

// String formats the SID in "S-1-5-21-..." form.
func (s *SID) String() string {
	// Compute the 48-bit authority value from big-endian 6 bytes
	var authority uint64
	for i := range 6 {
		authority = (authority << 8) | uint64(s.IdentifierAuthority[i])
	}

	var b strings.Builder
	fmt.Fprintf(&b, "S-%d-%d", s.Revision, authority)
	for _, sa := range s.SubAuthorities {
		fmt.Fprintf(&b, "-%d", sa)
	}
	return b.String()
}

// ParseSID parses a SID string in "S-1-5-21-..." form.
func ParseSID(s string) (*SID, error) {
	if !strings.HasPrefix(s, "S-") {
		return nil, fmt.Errorf("%w: must start with S-", ErrInvalidSID)
	}

	parts := strings.Split(s[2:], "-")
	if len(parts) < 2 {
		return nil, fmt.Errorf("%w: need at least revision and authority", ErrInvalidSID)
	}

	revision, err := strconv.ParseUint(parts[0], 10, 8)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid revision: %v", ErrInvalidSID, err)
	}

	authority, err := strconv.ParseUint(parts[1], 10, 48)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid authority: %v", ErrInvalidSID, err)
	}

	sid := &SID{
		Revision:          uint8(revision),
		SubAuthorityCount: uint8(len(parts) - 2),
	}

	// Encode authority as big-endian 6 bytes
	for i := 5; i >= 0; i-- {
		sid.IdentifierAuthority[i] = byte(authority & 0xFF)
		authority >>= 8
	}

	sid.SubAuthorities = make([]uint32, sid.SubAuthorityCount)
	for i := 0; i < int(sid.SubAuthorityCount); i++ {
		val, err := strconv.ParseUint(parts[i+2], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid sub-authority %d: %v", ErrInvalidSID, i, err)
		}
		sid.SubAuthorities[i] = uint32(val)
	}

	return sid, nil
}

// MustParseSID parses a SID string and panics on error. Used for the
// well-known SID table.
func MustParseSID(s string) *SID {
	sid, err := ParseSID(s)
	if err != nil {
		panic(fmt.Sprintf("invalid well-known SID %q: %v", s, err))
	}
	return sid
}

// NewMachineSID mints a fresh machine SID (S-1-5-21-a-b-c with random
// 32-bit sub-authorities), the way a newly installed machine gets one.
// Account SIDs are derived from it with WithRID.
func NewMachineSID() *SID {
	sid := &SID{
		Revision:          1,
		SubAuthorityCount: 4,
		SubAuthorities:    []uint32{21, rand.Uint32(), rand.Uint32(), rand.Uint32()},
	}
	sid.IdentifierAuthority[5] = 5 // NT authority
	return sid
}

// WithRID derives an account SID by appending a relative identifier to
// this SID's sub-authorities. The receiver is not modified.
func (s *SID) WithRID(rid uint32) *SID {
	return &SID{
		Revision:            s.Revision,
		SubAuthorityCount:   s.SubAuthorityCount + 1,
		IdentifierAuthority: s.IdentifierAuthority,
		SubAuthorities:      append(slices.Clone(s.SubAuthorities), rid),
	}
}

// MarshalJSON encodes the SID as its string form.
func (s *SID) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a SID from its string form.
func (s *SID) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	parsed, err := ParseSID(str)
	if err != nil {
		return err
	}
	*s = *parsed
	return nil
}

// Equal reports whether two SIDs are identical.
func (s *SID) Equal(other *SID) bool {
	if s == other {
		return true
	}
	if s == nil || other == nil {
		return false
	}
	if s.Revision != other.Revision {
		return false
	}
	if s.SubAuthorityCount != other.SubAuthorityCount {
		return false
	}
	if s.IdentifierAuthority != other.IdentifierAuthority {
		return false
	}
	if len(s.SubAuthorities) != len(other.SubAuthorities) {
		return false
	}
	for i := range s.SubAuthorities {
		if s.SubAuthorities[i] != other.SubAuthorities[i] {
			return false
		}
	}
	return true
}
