package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/urfave/cli/v2"
)

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := &cli.App{
		Name:     "uredno",
		Writer:   &out,
		Commands: []*cli.Command{quoteCommand()},
	}
	err := app.Run(append([]string{"uredno"}, args...))
	return out.String(), err
}

func TestQuoteCommand(t *testing.T) {
	out, err := runApp(t, "quote", "--service", "regular", "--size", "60", "--extra", "oven", "--locale", "en")
	if err != nil {
		t.Fatalf("quote failed: %v", err)
	}
	for _, want := range []string{"Base price", "48.00 €", "Total", "73.00 €"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestQuoteCommand_RequestFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "req.json")
	body := `{"serviceType":"regular","propertyType":"apartment","propertySize":60,"frequency":"weekly"}`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	out, err := runApp(t, "quote", "--request", path, "--json")
	if err != nil {
		t.Fatalf("quote failed: %v", err)
	}
	if !strings.Contains(out, `"total": "43.2"`) {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestQuoteCommand_Errors(t *testing.T) {
	tests := [][]string{
		{"quote", "--service", "laundry"},
		{"quote", "--extra", "oven:two"},
		{"quote", "--outdoor", "terrace"},
		{"quote", "--schedule", "flat"},
	}
	for _, args := range tests {
		if _, err := runApp(t, args...); err == nil {
			t.Errorf("%v: expected an error", args)
		}
	}
}

func TestSplitPair(t *testing.T) {
	id, v, err := splitPair("oven", "1")
	if err != nil || id != "oven" || v != "1" {
		t.Errorf("splitPair(oven) = %q, %q, %v", id, v, err)
	}
	id, v, err = splitPair("terrace:25.5", "")
	if err != nil || id != "terrace" || v != "25.5" {
		t.Errorf("splitPair(terrace:25.5) = %q, %q, %v", id, v, err)
	}
	if _, _, err := splitPair(":3", "1"); err == nil {
		t.Error("expected error for missing id")
	}
}
