package winnt

import (
	"errors"
	"testing"

	"github.com/musterio/muster/pkg/principal"
)

func TestUserAndGroupLocators(t *testing.T) {
	tests := []struct {
		name    string
		id      principal.Identity
		user    string
		group   string
		wantErr bool
	}{
		{
			name:  "qualified account",
			id:    principal.NewIdentity("DOMAIN", "user1"),
			user:  "WinNT://DOMAIN/user1,user",
			group: "WinNT://DOMAIN/user1,group",
		},
		{
			name:  "machine-local account",
			id:    principal.NewIdentity("testcomputername", "user2"),
			user:  "WinNT://testcomputername/user2,user",
			group: "WinNT://testcomputername/user2,group",
		},
		{
			name:    "zero identity",
			id:      principal.Identity{},
			wantErr: true,
		},
		{
			name:    "missing domain",
			id:      principal.NewIdentity("", "user1"),
			wantErr: true,
		},
		{
			name:    "missing account",
			id:      principal.NewIdentity("DOMAIN", ""),
			wantErr: true,
		},
		{
			name:    "slash in account",
			id:      principal.NewIdentity("DOMAIN", "a/b"),
			wantErr: true,
		},
		{
			name:    "backslash in domain",
			id:      principal.NewIdentity(`DOM\AIN`, "user1"),
			wantErr: true,
		},
		{
			name:    "comma in account",
			id:      principal.NewIdentity("DOMAIN", "a,user"),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotUser, err := UserLocator(tt.id)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidPrincipal) {
					t.Fatalf("UserLocator() error = %v, want ErrInvalidPrincipal", err)
				}
			} else {
				if err != nil {
					t.Fatalf("UserLocator() error = %v", err)
				}
				if gotUser != tt.user {
					t.Errorf("UserLocator() = %q, want %q", gotUser, tt.user)
				}
			}

			gotGroup, err := GroupLocator(tt.id)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidPrincipal) {
					t.Fatalf("GroupLocator() error = %v, want ErrInvalidPrincipal", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("GroupLocator() error = %v", err)
			}
			if gotGroup != tt.group {
				t.Errorf("GroupLocator() = %q, want %q", gotGroup, tt.group)
			}
		})
	}
}

func TestComputerLocator(t *testing.T) {
	got, err := ComputerLocator("testcomputername")
	if err != nil {
		t.Fatalf("ComputerLocator() error = %v", err)
	}
	if want := "WinNT://testcomputername,computer"; got != want {
		t.Errorf("ComputerLocator() = %q, want %q", got, want)
	}

	for _, bad := range []string{"", "host/name", `host\name`} {
		if _, err := ComputerLocator(bad); !errors.Is(err, ErrInvalidPrincipal) {
			t.Errorf("ComputerLocator(%q) error = %v, want ErrInvalidPrincipal", bad, err)
		}
	}
}

func TestSIDLocator(t *testing.T) {
	got, err := SIDLocator(principal.WellKnownAdministrators)
	if err != nil {
		t.Fatalf("SIDLocator() error = %v", err)
	}
	if want := "WinNT://S-1-5-32-544"; got != want {
		t.Errorf("SIDLocator() = %q, want %q", got, want)
	}

	if _, err := SIDLocator(nil); !errors.Is(err, ErrInvalidPrincipal) {
		t.Errorf("SIDLocator(nil) error = %v, want ErrInvalidPrincipal", err)
	}
	if _, err := SIDLocator(&principal.SID{}); !errors.Is(err, ErrInvalidPrincipal) {
		t.Errorf("SIDLocator(zero) error = %v, want ErrInvalidPrincipal", err)
	}
}
