package sqldir

import (
	"fmt"
	"time"

	"github.com/musterio/muster/pkg/directory"
	"github.com/musterio/muster/pkg/principal"
)

// ============================================================================
// Table Models
// ============================================================================
//
// Rows are internal to this package; the exported types live in the
// directory package and rows convert to them on the way out. Name lookups
// are case-insensitive, so every named row carries a folded copy of its
// name under a unique index while the display form keeps the caller's
// case. SIDs are stored in string form ("S-1-5-21-...").

// userModel is a local user account row.
type userModel struct {
	ID          string    `gorm:"primaryKey;size:36"`
	Name        string    `gorm:"not null;size:256"`
	NameFold    string    `gorm:"uniqueIndex;not null;size:256"`
	SID         string    `gorm:"uniqueIndex;not null;size:255"`
	FullName    string    `gorm:"size:256"`
	Description string    `gorm:"size:1024"`
	Disabled    bool      `gorm:"not null;default:false"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

// TableName returns the table name for userModel.
func (userModel) TableName() string {
	return "users"
}

// toUser converts the row to the exported type. The owning domain is not
// stored per row; every local account belongs to the store's machine.
func (m *userModel) toUser(domain string) (*directory.User, error) {
	sid, err := principal.ParseSID(m.SID)
	if err != nil {
		return nil, fmt.Errorf("failed to decode stored SID for user %q: %w", m.Name, err)
	}
	return &directory.User{
		SID:         sid,
		Name:        m.Name,
		Domain:      domain,
		FullName:    m.FullName,
		Description: m.Description,
		Disabled:    m.Disabled,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}, nil
}

// groupModel is a local group row.
type groupModel struct {
	ID          string    `gorm:"primaryKey;size:36"`
	Name        string    `gorm:"not null;size:256"`
	NameFold    string    `gorm:"uniqueIndex;not null;size:256"`
	SID         string    `gorm:"uniqueIndex;not null;size:255"`
	Description string    `gorm:"size:1024"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

// TableName returns the table name for groupModel.
func (groupModel) TableName() string {
	return "groups"
}

func (m *groupModel) toGroup(domain string) (*directory.Group, error) {
	sid, err := principal.ParseSID(m.SID)
	if err != nil {
		return nil, fmt.Errorf("failed to decode stored SID for group %q: %w", m.Name, err)
	}
	return &directory.Group{
		SID:         sid,
		Name:        m.Name,
		Domain:      domain,
		Description: m.Description,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}, nil
}

// memberModel is one group-membership row. KeyFold is the member's
// canonical identity key (folded "domain\name", or the SID string for
// members without a resolvable name), so the composite primary key makes
// duplicate membership a constraint violation. Position preserves
// insertion order for enumeration.
type memberModel struct {
	GroupID  string `gorm:"primaryKey;size:36"`
	KeyFold  string `gorm:"primaryKey;size:512"`
	Position int    `gorm:"not null"`
	SID      string `gorm:"size:255"`
	Domain   string `gorm:"size:256"`
	Name     string `gorm:"size:256"`
}

// TableName returns the table name for memberModel.
func (memberModel) TableName() string {
	return "group_members"
}

func (m *memberModel) toMember() (directory.Member, error) {
	member := directory.Member{Domain: m.Domain, Name: m.Name}
	if m.SID != "" {
		sid, err := principal.ParseSID(m.SID)
		if err != nil {
			return directory.Member{}, fmt.Errorf("failed to decode stored member SID %q: %w", m.SID, err)
		}
		member.SID = sid
	}
	return member, nil
}

// metaModel is the single-row table holding the directory's machine
// identity and the RID allocation counter.
type metaModel struct {
	ID         int    `gorm:"primaryKey"`
	Machine    string `gorm:"not null;size:256"`
	MachineSID string `gorm:"not null;size:255"`
	NextRID    uint32 `gorm:"column:next_rid;not null"`
}

// TableName returns the table name for metaModel.
func (metaModel) TableName() string {
	return "directory_meta"
}

// metaRowID is the fixed key of the single directory_meta row.
const metaRowID = 1

// allModels returns every model for GORM auto-migration.
func allModels() []any {
	return []any{
		&userModel{},
		&groupModel{},
		&memberModel{},
		&metaModel{},
	}
}
