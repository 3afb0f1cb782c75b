package main

import (
	"strings"
	"testing"
)

func TestRootRequiresArguments(t *testing.T) {
	out, err := executeCommand(t, "--yes")
	if err == nil {
		t.Fatal("expected an error when no files are given")
	}
	if !strings.Contains(err.Error(), "input and output files are required") {
		t.Errorf("err = %v, out = %s", err, out)
	}
}

func TestRootRejectsUnknownSubcommand(t *testing.T) {
	// A single non-file argument that matches no subcommand is treated as a
	// translate invocation with a missing output file.
	_, err := executeCommand(t, "translate")
	if err == nil {
		t.Fatal("expected an error for translate without files")
	}
}

func TestOverwriteFlagShorthand(t *testing.T) {
	out, err := executeCommand(t, "-y")
	if err == nil {
		t.Fatal("expected command error from missing required args")
	}
	if strings.Contains(out, "unknown shorthand flag: 'y'") {
		t.Fatalf("expected -y to be parsed, got output: %s", out)
	}
}

func TestLanguagesCommand(t *testing.T) {
	out, err := executeCommand(t, "languages")
	if err != nil {
		t.Fatalf("languages failed: %v", err)
	}
	for _, want := range []string{"fr", "French", "ja", "Japanese"} {
		if !strings.Contains(out, want) {
			t.Errorf("languages output missing %q", want)
		}
	}
}

func TestEstimateCommand(t *testing.T) {
	input := writeTempInput(t, strings.Repeat("abcd", 1000))

	out, err := executeCommand(t, "estimate", input, "--provider", "openai")
	if err != nil {
		t.Fatalf("estimate failed: %v", err)
	}
	if !strings.Contains(out, "Estimated tokens: 1000") {
		t.Errorf("estimate output = %s", out)
	}
	if !strings.Contains(out, "Estimated cost") {
		t.Errorf("estimate output = %s", out)
	}
}

func TestEstimateCommandMissingFile(t *testing.T) {
	_, err := executeCommand(t, "estimate", "/nonexistent/file.txt")
	if err == nil {
		t.Fatal("expected an error for a missing input file")
	}
}

func TestKeysRejectsUnknownProvider(t *testing.T) {
	_, err := executeCommand(t, "keys", "--provider", "aws")
	if err == nil || !strings.Contains(err.Error(), "invalid provider") {
		t.Errorf("err = %v, want invalid provider", err)
	}
}

func TestVersionFlag(t *testing.T) {
	out, err := executeCommand(t, "--version")
	if err != nil {
		t.Fatalf("--version failed: %v", err)
	}
	if !strings.Contains(out, "doctran") {
		t.Errorf("version output = %s", out)
	}
}
