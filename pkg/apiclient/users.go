package apiclient

import "time"

// User represents a local user account.
type User struct {
	SID         string    `json:"sid"`
	Name        string    `json:"name"`
	Domain      string    `json:"domain"`
	FullName    string    `json:"full_name,omitempty"`
	Description string    `json:"description,omitempty"`
	Disabled    bool      `json:"disabled,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
	UpdatedAt   time.Time `json:"updated_at,omitempty"`
}

// CreateUserRequest is the request to create a user.
type CreateUserRequest struct {
	Name        string `json:"name"`
	FullName    string `json:"full_name,omitempty"`
	Description string `json:"description,omitempty"`
	Disabled    bool   `json:"disabled,omitempty"`
}

// UpdateUserRequest is the request to update a user. Nil fields are left
// unchanged.
type UpdateUserRequest struct {
	FullName    *string `json:"full_name,omitempty"`
	Description *string `json:"description,omitempty"`
	Disabled    *bool   `json:"disabled,omitempty"`
}

// ListUsers returns all users.
func (c *Client) ListUsers() ([]User, error) {
	return listResources[User](c, apiPath("users"))
}

// GetUser returns a user by name. Lookup is case-insensitive.
func (c *Client) GetUser(name string) (*User, error) {
	return getResource[User](c, apiPath("users", name))
}

// CreateUser creates a new user.
func (c *Client) CreateUser(req *CreateUserRequest) (*User, error) {
	return createResource[User](c, apiPath("users"), req)
}

// UpdateUser updates an existing user.
func (c *Client) UpdateUser(name string, req *UpdateUserRequest) (*User, error) {
	return updateResource[User](c, apiPath("users", name), req)
}

// DeleteUser deletes a user, dropping its group memberships. The user's
// profile directory, if any, stays on disk.
func (c *Client) DeleteUser(name string) error {
	return deleteResource(c, apiPath("users", name))
}
