package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestTextFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := InitWithWriter(&buf, Config{Level: "INFO", Format: "text"}); err != nil {
		t.Fatalf("InitWithWriter: %v", err)
	}

	Info("store opened", "backend", "memory", "machine", "WS01")

	line := buf.String()
	for _, want := range []string{"INFO", "store opened", "backend=memory", "machine=WS01"} {
		if !strings.Contains(line, want) {
			t.Errorf("output %q missing %q", line, want)
		}
	}
	if strings.Contains(line, "\033[") {
		t.Errorf("output %q contains ANSI sequences on a non-terminal writer", line)
	}
}

func TestTextQuotesValuesWithSpaces(t *testing.T) {
	var buf bytes.Buffer
	if err := InitWithWriter(&buf, Config{Level: "INFO", Format: "text"}); err != nil {
		t.Fatalf("InitWithWriter: %v", err)
	}

	Info("sweep done", "group", "Remote Users")

	if !strings.Contains(buf.String(), `group="Remote Users"`) {
		t.Errorf("output %q does not quote the spaced value", buf.String())
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := InitWithWriter(&buf, Config{Level: "INFO", Format: "json"}); err != nil {
		t.Fatalf("InitWithWriter: %v", err)
	}

	Warn("reconciliation failed", "group", "operators")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if rec["msg"] != "reconciliation failed" {
		t.Errorf("msg = %v", rec["msg"])
	}
	if rec["group"] != "operators" {
		t.Errorf("group = %v", rec["group"])
	}
}

func TestLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	if err := InitWithWriter(&buf, Config{Level: "WARN", Format: "text"}); err != nil {
		t.Fatalf("InitWithWriter: %v", err)
	}

	Debug("hidden")
	Info("hidden too")
	Error("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("output %q contains suppressed records", out)
	}
	if !strings.Contains(out, "visible") {
		t.Errorf("output %q missing ERROR record", out)
	}
}

func TestSetLevelAtRuntime(t *testing.T) {
	var buf bytes.Buffer
	if err := InitWithWriter(&buf, Config{Level: "INFO", Format: "text"}); err != nil {
		t.Fatalf("InitWithWriter: %v", err)
	}

	Debug("before")
	if err := SetLevel("DEBUG"); err != nil {
		t.Fatalf("SetLevel: %v", err)
	}
	Debug("after")

	out := buf.String()
	if strings.Contains(out, "before") {
		t.Errorf("debug record logged while level was INFO: %q", out)
	}
	if !strings.Contains(out, "after") {
		t.Errorf("debug record missing after SetLevel(DEBUG): %q", out)
	}
}

func TestInvalidConfig(t *testing.T) {
	var buf bytes.Buffer
	if err := InitWithWriter(&buf, Config{Level: "LOUD"}); err == nil {
		t.Error("expected error for unknown level")
	}
	if err := InitWithWriter(&buf, Config{Format: "xml"}); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestWithCarriesAttrs(t *testing.T) {
	var buf bytes.Buffer
	if err := InitWithWriter(&buf, Config{Level: "INFO", Format: "text"}); err != nil {
		t.Fatalf("InitWithWriter: %v", err)
	}

	l := With("component", "agent")
	l.Info("sweep starting")

	if !strings.Contains(buf.String(), "component=agent") {
		t.Errorf("output %q missing carried attribute", buf.String())
	}
}
