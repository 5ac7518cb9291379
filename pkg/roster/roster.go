// Package roster loads desired-state documents. A roster names local
// groups and the members each should have; the agent reconciles group
// membership against it on changes and on schedule.
//
// Document format (YAML):
//
//	version: 1
//	targets:
//	  - group: Administrators
//	    policy: exact
//	    members:
//	      - alice
//	      - CORP\ops-team
//
// Target order is document order; directory loads enumerate files in
// lexical filename order, so iteration is deterministic either way.
package roster

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/musterio/muster/pkg/directory"
	"github.com/musterio/muster/pkg/principal"
	"github.com/musterio/muster/pkg/reconcile"
)

// ErrDuplicateTarget indicates the same group is named by more than one
// target, which would make the desired state ambiguous.
var ErrDuplicateTarget = errors.New("duplicate roster target")

// ErrNoRoster indicates a sweep was requested but no roster is configured.
var ErrNoRoster = errors.New("no roster configured")

// validate is shared; the validator is safe for concurrent use.
var validate = validator.New()

// Target is one group's desired membership.
type Target struct {
	// Group is the local group to reconcile.
	Group string `yaml:"group" validate:"required"`

	// Members are the desired member references, bare ("alice") or
	// domain-qualified ("CORP\ops-team").
	Members []string `yaml:"members"`

	// Policy is "exact" (authoritative: extra members are removed) or
	// "merge" (desired members are added, nothing is removed).
	// Defaults to exact, a roster being a desired-state document.
	Policy string `yaml:"policy" validate:"omitempty,oneof=exact merge"`
}

// ReconcilePolicy returns the target's policy, defaulting to exact.
func (t Target) ReconcilePolicy() reconcile.Policy {
	if t.Policy == "" {
		return reconcile.PolicyExact
	}
	policy, err := reconcile.ParsePolicy(t.Policy)
	if err != nil {
		// Validate() rejects anything else up front.
		return reconcile.PolicyExact
	}
	return policy
}

// Roster is a desired-state document.
type Roster struct {
	// Version guards against future format changes. Only version 1
	// exists; zero means unspecified and is accepted.
	Version int `yaml:"version" validate:"omitempty,eq=1"`

	// Targets lists the groups to reconcile, in document order.
	Targets []Target `yaml:"targets" validate:"dive"`
}

// Parse decodes and validates a roster document.
func Parse(data []byte) (*Roster, error) {
	var r Roster
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse roster: %w", err)
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &r, nil
}

// Load reads and validates a roster file.
func Load(path string) (*Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read roster %s: %w", path, err)
	}
	r, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

// LoadDir loads every *.yaml and *.yml file in dir (lexical filename
// order) and merges their targets into one roster. A group named in two
// files is rejected the same way as within one file.
func LoadDir(dir string) (*Roster, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read roster directory %s: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch filepath.Ext(entry.Name()) {
		case ".yaml", ".yml":
			names = append(names, entry.Name())
		}
	}
	slices.Sort(names)

	merged := &Roster{Version: 1}
	for _, name := range names {
		r, err := Load(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		merged.Targets = append(merged.Targets, r.Targets...)
	}
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return merged, nil
}

// LoadPath loads a roster from a file, or from every roster file in a
// directory.
func LoadPath(path string) (*Roster, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat roster path %s: %w", path, err)
	}
	if info.IsDir() {
		return LoadDir(path)
	}
	return Load(path)
}

// Validate checks structure (tags) and semantics: group names must be
// valid account names and unique, and every member reference must parse.
// Reference syntax is rejected here, before any reconciliation starts.
func (r *Roster) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("invalid roster: %w", err)
	}

	seen := make(map[string]struct{}, len(r.Targets))
	for _, t := range r.Targets {
		if err := directory.ValidateAccountName(t.Group); err != nil {
			return fmt.Errorf("target %q: %w", t.Group, err)
		}

		key := strings.ToLower(t.Group)
		if _, dup := seen[key]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateTarget, t.Group)
		}
		seen[key] = struct{}{}

		for _, member := range t.Members {
			if _, err := principal.ParseReference(member); err != nil {
				return fmt.Errorf("target %q: %w", t.Group, err)
			}
		}
	}
	return nil
}
