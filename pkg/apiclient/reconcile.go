package apiclient

import (
	"net/url"
	"strconv"
	"time"
)

// JournalEntry is one recorded reconciliation run.
type JournalEntry struct {
	ID      string    `json:"id"`
	Time    time.Time `json:"time"`
	Group   string    `json:"group"`
	Policy  string    `json:"policy"`
	Trigger string    `json:"trigger"`
	DryRun  bool      `json:"dry_run,omitempty"`
	Added   []string  `json:"added,omitempty"`
	Removed []string  `json:"removed,omitempty"`
	Errors  []string  `json:"errors,omitempty"`
}

// PlanRequest is the request to compute a reconciliation plan.
type PlanRequest struct {
	Group   string   `json:"group"`
	Members []string `json:"members"`
	Policy  string   `json:"policy,omitempty"`
}

// Plan is a computed set of membership changes, in apply order, as
// display strings. Nothing has been applied.
type Plan struct {
	Group  string   `json:"group"`
	Policy string   `json:"policy"`
	Add    []string `json:"add,omitempty"`
	Remove []string `json:"remove,omitempty"`
}

// ComputePlan asks the daemon what reconciling the group would change,
// without applying anything.
func (c *Client) ComputePlan(req *PlanRequest) (*Plan, error) {
	return createResource[Plan](c, apiPath("plans"), req)
}

// Sweep reconciles every target of the daemon's configured roster and
// returns the resulting journal entries in roster order.
func (c *Client) Sweep() ([]JournalEntry, error) {
	var entries []JournalEntry
	if err := c.post(apiPath("sweep"), nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Journal returns recorded reconciliation runs, newest first. limit <= 0
// applies the server default.
func (c *Client) Journal(limit int) ([]JournalEntry, error) {
	path := apiPath("journal")
	if limit > 0 {
		path += "?" + url.Values{"limit": []string{strconv.Itoa(limit)}}.Encode()
	}
	return listResources[JournalEntry](c, path)
}
