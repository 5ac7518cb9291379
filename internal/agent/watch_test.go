package agent

import (
	"testing"

	"github.com/fsnotify/fsnotify"
)

func TestRelevantRosterEvent_SingleFile(t *testing.T) {
	const rosterFile = "/etc/muster/roster.yaml"

	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{
			name:  "write to roster",
			event: fsnotify.Event{Name: "/etc/muster/roster.yaml", Op: fsnotify.Write},
			want:  true,
		},
		{
			name:  "rename-over recreate",
			event: fsnotify.Event{Name: "/etc/muster/roster.yaml", Op: fsnotify.Create},
			want:  true,
		},
		{
			name:  "unclean path still matches",
			event: fsnotify.Event{Name: "/etc/muster/../muster/roster.yaml", Op: fsnotify.Write},
			want:  true,
		},
		{
			name:  "sibling file in the watched directory",
			event: fsnotify.Event{Name: "/etc/muster/config.yaml", Op: fsnotify.Write},
			want:  false,
		},
		{
			name:  "chmod on roster",
			event: fsnotify.Event{Name: "/etc/muster/roster.yaml", Op: fsnotify.Chmod},
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := relevantRosterEvent(tt.event, rosterFile); got != tt.want {
				t.Errorf("relevantRosterEvent(%v) = %v, want %v", tt.event, got, tt.want)
			}
		})
	}
}

func TestRelevantRosterEvent_Directory(t *testing.T) {
	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{
			name:  "new yaml roster",
			event: fsnotify.Event{Name: "/etc/muster/rosters/teams.yaml", Op: fsnotify.Create},
			want:  true,
		},
		{
			name:  "yml extension",
			event: fsnotify.Event{Name: "/etc/muster/rosters/ops.yml", Op: fsnotify.Write},
			want:  true,
		},
		{
			name:  "removed roster",
			event: fsnotify.Event{Name: "/etc/muster/rosters/old.yaml", Op: fsnotify.Remove},
			want:  true,
		},
		{
			name:  "unrelated file",
			event: fsnotify.Event{Name: "/etc/muster/rosters/README.md", Op: fsnotify.Write},
			want:  false,
		},
		{
			name:  "editor swap file",
			event: fsnotify.Event{Name: "/etc/muster/rosters/.teams.yaml.swp", Op: fsnotify.Write},
			want:  false,
		},
		{
			name:  "chmod",
			event: fsnotify.Event{Name: "/etc/muster/rosters/teams.yaml", Op: fsnotify.Chmod},
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := relevantRosterEvent(tt.event, ""); got != tt.want {
				t.Errorf("relevantRosterEvent(%v) = %v, want %v", tt.event, got, tt.want)
			}
		})
	}
}
