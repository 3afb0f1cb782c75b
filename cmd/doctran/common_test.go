package main

import (
	"bytes"
	"strings"
	"testing"
)

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func withKeyStubs(t *testing.T, terminal bool, promptVal, keychainVal, envVal string) {
	t.Helper()

	prevIsTerminal := isTerminal
	prevPrompt := promptForKey
	prevGetKey := getKey

	isTerminal = func(_ int) bool { return terminal }
	promptForKey = func(_ string) (string, error) {
		return promptVal, nil
	}
	getKey = func(_ string, allowEnv bool) (string, string) {
		if keychainVal != "" {
			return keychainVal, "Keychain"
		}
		if allowEnv && envVal != "" {
			return envVal, "Environment Variable"
		}
		return "", ""
	}

	t.Cleanup(func() {
		isTerminal = prevIsTerminal
		promptForKey = prevPrompt
		getKey = prevGetKey
	})
}

func TestResolveAPIKey_KeychainWins(t *testing.T) {
	withKeyStubs(t, true, "", "keychain-key", "env-key")

	key, source, err := resolveAPIKey("gemini", true, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key != "keychain-key" || source != "Keychain" {
		t.Errorf("got key=%q source=%q", key, source)
	}
}

func TestResolveAPIKey_EnvFallback(t *testing.T) {
	withKeyStubs(t, true, "", "", "env-key")

	key, source, err := resolveAPIKey("openai", true, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key != "env-key" || source != "Environment Variable" {
		t.Errorf("got key=%q source=%q", key, source)
	}
}

func TestResolveAPIKey_EnvDisabledByDefault(t *testing.T) {
	withKeyStubs(t, false, "", "", "env-key")

	_, _, err := resolveAPIKey("gemini", false, false)
	if err == nil {
		t.Fatal("expected an error when env is disabled and keychain empty")
	}
}

func TestResolveAPIKey_TerminalPrompt(t *testing.T) {
	withKeyStubs(t, true, "typed-key", "", "")

	key, source, err := resolveAPIKey("gemini", false, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key != "typed-key" || source != "Terminal Prompt" {
		t.Errorf("got key=%q source=%q", key, source)
	}
}

func TestResolveAPIKey_EnvOnly(t *testing.T) {
	withKeyStubs(t, true, "typed-key", "keychain-key", "")

	_, _, err := resolveAPIKey("gemini", false, true)
	if err == nil || !strings.Contains(err.Error(), "GEMINI_API_KEY") {
		t.Errorf("err = %v, want env-only failure naming the variable", err)
	}
}

func TestResolveAPIKey_NonInteractiveNoKey(t *testing.T) {
	withKeyStubs(t, false, "", "", "")

	_, _, err := resolveAPIKey("gemini", false, false)
	if err == nil || !strings.Contains(err.Error(), "non-interactive") {
		t.Errorf("err = %v, want non-interactive failure", err)
	}
}
