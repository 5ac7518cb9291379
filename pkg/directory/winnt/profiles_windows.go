//go:build windows

package winnt

import (
	"context"
	"fmt"
	"time"

	"github.com/yusufpapurcu/wmi"

	"github.com/musterio/muster/pkg/directory"
	"github.com/musterio/muster/pkg/principal"
)

// Win32_UserProfile mirrors the WMI class of the same name. Field names
// must match the WMI property names for the query mapper.
type Win32_UserProfile struct {
	SID         string
	LocalPath   string
	Loaded      bool
	Special     bool
	LastUseTime *time.Time
}

// ProfileLister enumerates local user profiles through WMI. Profiles are
// observed only; there is no mutation surface here.
type ProfileLister struct{}

var _ directory.ProfileLister = ProfileLister{}

// Profiles lists the machine's user profiles.
func (ProfileLister) Profiles(ctx context.Context) ([]directory.Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rows []Win32_UserProfile
	query := wmi.CreateQuery(&rows, "")
	if err := wmi.Query(query, &rows); err != nil {
		return nil, fmt.Errorf("failed to query user profiles: %w", err)
	}

	profiles := make([]directory.Profile, 0, len(rows))
	for _, row := range rows {
		sid, err := principal.ParseSID(row.SID)
		if err != nil {
			return nil, fmt.Errorf("failed to decode profile SID %q: %w", row.SID, err)
		}
		profile := directory.Profile{
			SID:       sid,
			LocalPath: row.LocalPath,
			Loaded:    row.Loaded,
			Special:   row.Special,
		}
		if row.LastUseTime != nil {
			profile.LastUse = *row.LastUseTime
		}
		profiles = append(profiles, profile)
	}
	return profiles, nil
}
