package cmdutil

import (
	"bytes"
	"testing"

	"github.com/musterio/muster/internal/cli/output"
)

func TestParseCommaSeparatedList(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "empty string",
			input:    "",
			expected: nil,
		},
		{
			name:     "single item",
			input:    "alice",
			expected: []string{"alice"},
		},
		{
			name:     "multiple items",
			input:    "alice,bob,CORP\\ops",
			expected: []string{"alice", "bob", "CORP\\ops"},
		},
		{
			name:     "items with spaces",
			input:    "alice, bob , carol",
			expected: []string{"alice", "bob", "carol"},
		},
		{
			name:     "empty items filtered out",
			input:    "alice,,bob,",
			expected: []string{"alice", "bob"},
		},
		{
			name:     "only whitespace filtered out",
			input:    "alice, , bob",
			expected: []string{"alice", "bob"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ParseCommaSeparatedList(tt.input)
			if len(result) != len(tt.expected) {
				t.Fatalf("expected %v, got %v", tt.expected, result)
			}
			for i := range result {
				if result[i] != tt.expected[i] {
					t.Errorf("item %d: expected %q, got %q", i, tt.expected[i], result[i])
				}
			}
		})
	}
}

func TestBoolToYesNo(t *testing.T) {
	if got := BoolToYesNo(true); got != "yes" {
		t.Errorf("expected yes, got %q", got)
	}
	if got := BoolToYesNo(false); got != "no" {
		t.Errorf("expected no, got %q", got)
	}
}

func TestEmptyOr(t *testing.T) {
	if got := EmptyOr("", "-"); got != "-" {
		t.Errorf("expected fallback, got %q", got)
	}
	if got := EmptyOr("value", "-"); got != "value" {
		t.Errorf("expected value, got %q", got)
	}
}

func TestPrintOutputEmptyTable(t *testing.T) {
	Flags.Output = "table"
	defer func() { Flags.Output = "" }()

	var buf bytes.Buffer
	err := PrintOutput(&buf, nil, true, "Nothing here.", output.NewTableData("A"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if buf.String() != "Nothing here.\n" {
		t.Errorf("expected empty message, got %q", buf.String())
	}
}

func TestPrintOutputJSON(t *testing.T) {
	Flags.Output = "json"
	defer func() { Flags.Output = "" }()

	var buf bytes.Buffer
	err := PrintOutput(&buf, map[string]string{"name": "ops"}, false, "", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Contains(buf.Bytes(), []byte(`"name": "ops"`)) {
		t.Errorf("expected JSON output, got %q", buf.String())
	}
}
