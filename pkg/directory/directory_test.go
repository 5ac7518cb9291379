package directory

import (
	"errors"
	"strings"
	"testing"

	"github.com/musterio/muster/pkg/principal"
)

func TestMemberIdentity(t *testing.T) {
	sid := principal.MustParseSID("S-1-5-21-1-2-3-1001")

	named := Member{SID: sid, Domain: "HOST", Name: "alice"}
	if got := named.Identity().String(); got != `HOST\alice` {
		t.Errorf("named member identity = %q, want HOST\\alice", got)
	}

	// An orphaned SID is identified by its string form so reconciliation
	// can still match and remove it.
	orphan := Member{SID: sid}
	if got := orphan.Identity().Account(); got != "S-1-5-21-1-2-3-1001" {
		t.Errorf("orphan member identity account = %q, want the SID string", got)
	}
	if got := orphan.Identity().Domain(); got != "" {
		t.Errorf("orphan member identity domain = %q, want empty", got)
	}
}

func TestValidateAccountName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"Simple", "alice", false},
		{"WithDash", "svc-backup", false},
		{"WithDot", "john.doe", false},
		{"Empty", "", true},
		{"ForwardSlash", "a/b", true},
		{"Backslash", `a\b`, true},
		{"TooLong", strings.Repeat("x", maxAccountNameLen+1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAccountName(tt.input)
			if tt.wantErr {
				if !errors.Is(err, principal.ErrMalformedReference) {
					t.Errorf("ValidateAccountName(%q) = %v, want ErrMalformedReference", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Errorf("ValidateAccountName(%q) = %v, want nil", tt.input, err)
			}
		})
	}
}
