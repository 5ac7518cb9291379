package apiclient

import "time"

// Profile is a local user-profile record.
type Profile struct {
	SID       string    `json:"sid"`
	LocalPath string    `json:"local_path"`
	Loaded    bool      `json:"loaded"`
	Special   bool      `json:"special,omitempty"`
	LastUse   time.Time `json:"last_use,omitempty"`
}

// ListProfiles returns the machine's user profiles. Only some platforms
// and directory backends can enumerate profiles; others answer 404.
func (c *Client) ListProfiles() ([]Profile, error) {
	return listResources[Profile](c, apiPath("profiles"))
}

// HealthStatus is the health endpoint envelope.
type HealthStatus struct {
	Status    string         `json:"status"`
	Timestamp time.Time      `json:"timestamp"`
	Data      map[string]any `json:"data,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// Health returns the daemon's liveness report.
func (c *Client) Health() (*HealthStatus, error) {
	return getResource[HealthStatus](c, "/health")
}

// Ready returns the daemon's readiness report. A daemon whose directory
// store is not answering returns an error.
func (c *Client) Ready() (*HealthStatus, error) {
	return getResource[HealthStatus](c, "/health/ready")
}
