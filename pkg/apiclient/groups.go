package apiclient

import "time"

// Group represents a local group.
type Group struct {
	SID         string    `json:"sid"`
	Name        string    `json:"name"`
	Domain      string    `json:"domain"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
	UpdatedAt   time.Time `json:"updated_at,omitempty"`
}

// CreateGroupRequest is the request to create a group.
type CreateGroupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Member is one entry of a group's membership. Orphaned members carry a
// SID but no name; Display is always set.
type Member struct {
	SID     string `json:"sid,omitempty"`
	Domain  string `json:"domain,omitempty"`
	Name    string `json:"name,omitempty"`
	Display string `json:"display"`
}

// SetMembersRequest is the request to reconcile a group's membership.
type SetMembersRequest struct {
	// Members are the desired member references, bare or
	// domain-qualified.
	Members []string `json:"members"`

	// Policy is "exact" or "merge". Empty defaults to exact.
	Policy string `json:"policy,omitempty"`
}

// ListGroups returns all groups.
func (c *Client) ListGroups() ([]Group, error) {
	return listResources[Group](c, apiPath("groups"))
}

// GetGroup returns a group by name. Lookup is case-insensitive.
func (c *Client) GetGroup(name string) (*Group, error) {
	return getResource[Group](c, apiPath("groups", name))
}

// CreateGroup creates a new group.
func (c *Client) CreateGroup(req *CreateGroupRequest) (*Group, error) {
	return createResource[Group](c, apiPath("groups"), req)
}

// DeleteGroup deletes a group. Member accounts are untouched.
func (c *Client) DeleteGroup(name string) error {
	return deleteResource(c, apiPath("groups", name))
}

// ListMembers returns a group's membership in enumeration order.
func (c *Client) ListMembers(group string) ([]Member, error) {
	return listResources[Member](c, apiPath("groups", group, "members"))
}

// SetMembers reconciles a group to the desired member list and returns
// the journal entry describing what changed. The daemon validates and
// resolves every reference before touching the group.
func (c *Client) SetMembers(group string, req *SetMembersRequest) (*JournalEntry, error) {
	return updateResource[JournalEntry](c, apiPath("groups", group, "members"), req)
}

// AddMember adds one member to a group without touching the rest of the
// membership. The change bypasses the journal; use SetMembers for audited
// changes.
func (c *Client) AddMember(group, member string) (*Member, error) {
	req := map[string]string{"member": member}
	return createResource[Member](c, apiPath("groups", group, "members"), req)
}

// RemoveMember removes one member from a group. Orphaned members are
// addressed by their SID string.
func (c *Client) RemoveMember(group, member string) error {
	return deleteResource(c, apiPath("groups", group, "members", member))
}
