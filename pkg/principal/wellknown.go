package principal

// Well-known SID constants for the principals that show up in local group
// management. Locator rendering special-cases these: a well-known SID is
// addressed by its SID string, never by domain and account.

var (
	// WellKnownEveryone is the "Everyone" (World) SID: S-1-1-0.
	WellKnownEveryone = MustParseSID("S-1-1-0")

	// WellKnownAnonymous is the NT AUTHORITY\ANONYMOUS LOGON SID: S-1-5-7.
	WellKnownAnonymous = MustParseSID("S-1-5-7")

	// WellKnownAuthenticatedUsers is the NT AUTHORITY\Authenticated Users SID: S-1-5-11.
	WellKnownAuthenticatedUsers = MustParseSID("S-1-5-11")

	// WellKnownSystem is the NT AUTHORITY\SYSTEM SID: S-1-5-18.
	WellKnownSystem = MustParseSID("S-1-5-18")

	// WellKnownLocalService is the NT AUTHORITY\LOCAL SERVICE SID: S-1-5-19.
	WellKnownLocalService = MustParseSID("S-1-5-19")

	// WellKnownNetworkService is the NT AUTHORITY\NETWORK SERVICE SID: S-1-5-20.
	WellKnownNetworkService = MustParseSID("S-1-5-20")

	// WellKnownAdministrators is the BUILTIN\Administrators SID: S-1-5-32-544.
	WellKnownAdministrators = MustParseSID("S-1-5-32-544")

	// WellKnownUsers is the BUILTIN\Users SID: S-1-5-32-545.
	WellKnownUsers = MustParseSID("S-1-5-32-545")

	// WellKnownGuests is the BUILTIN\Guests SID: S-1-5-32-546.
	WellKnownGuests = MustParseSID("S-1-5-32-546")

	// WellKnownRemoteDesktopUsers is the BUILTIN\Remote Desktop Users SID: S-1-5-32-555.
	WellKnownRemoteDesktopUsers = MustParseSID("S-1-5-32-555")
)

// wellKnownNames maps well-known SID strings to display names.
var wellKnownNames = map[string]string{
	"S-1-1-0":      "Everyone",
	"S-1-5-7":      `NT AUTHORITY\ANONYMOUS LOGON`,
	"S-1-5-11":     `NT AUTHORITY\Authenticated Users`,
	"S-1-5-18":     `NT AUTHORITY\SYSTEM`,
	"S-1-5-19":     `NT AUTHORITY\LOCAL SERVICE`,
	"S-1-5-20":     `NT AUTHORITY\NETWORK SERVICE`,
	"S-1-5-32-544": `BUILTIN\Administrators`,
	"S-1-5-32-545": `BUILTIN\Users`,
	"S-1-5-32-546": `BUILTIN\Guests`,
	"S-1-5-32-555": `BUILTIN\Remote Desktop Users`,
}

// WellKnownName returns the display name for a well-known SID.
// Returns the name and true if the SID is well-known, or ("", false) otherwise.
func WellKnownName(s *SID) (string, bool) {
	name, ok := wellKnownNames[s.String()]
	return name, ok
}

// IsWellKnown reports whether the SID appears in the well-known table.
func (s *SID) IsWellKnown() bool {
	_, ok := wellKnownNames[s.String()]
	return ok
}
