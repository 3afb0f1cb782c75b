// Package auth stores provider API keys in the OS keychain, with an
// optional environment-variable fallback. Local providers need no key.
package auth

import (
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/zalando/go-keyring"
	"golang.org/x/term"
)

const serviceName = "doctran"

type provider struct {
	account string
	envVar  string
}

var providers = map[string]provider{
	"gemini": {account: "gemini-api-key", envVar: "GEMINI_API_KEY"},
	"openai": {account: "openai-api-key", envVar: "OPENAI_API_KEY"},
}

// NeedsKey reports whether the provider requires an API key at all.
func NeedsKey(name string) bool {
	_, ok := providers[name]
	return ok
}

// GetKey retrieves the API key for a provider and reports where it came
// from. The keychain wins over the environment; set allowEnv to false to
// ignore environment variables entirely.
func GetKey(name string, allowEnv bool) (string, string) {
	p, ok := providers[name]
	if !ok {
		return "", ""
	}

	key, err := keyring.Get(serviceName, p.account)
	if err == nil && key != "" {
		return strings.TrimSpace(key), "Keychain"
	}

	if allowEnv {
		if key := strings.TrimSpace(os.Getenv(p.envVar)); key != "" {
			return key, "Environment Variable"
		}
	}

	return "", ""
}

// SaveKey stores the key for a provider in the OS keychain.
func SaveKey(name, key string) error {
	p, ok := providers[name]
	if !ok {
		return fmt.Errorf("unknown provider %q", name)
	}
	return keyring.Set(serviceName, p.account, strings.TrimSpace(key))
}

// DeleteKey removes the key for a provider from the OS keychain.
func DeleteKey(name string) error {
	p, ok := providers[name]
	if !ok {
		return fmt.Errorf("unknown provider %q", name)
	}
	return keyring.Delete(serviceName, p.account)
}

// HasKey reports whether a key exists for the provider in the keychain.
func HasKey(name string) bool {
	p, ok := providers[name]
	if !ok {
		return false
	}
	key, err := keyring.Get(serviceName, p.account)
	return err == nil && key != ""
}

// PromptForAPIKey reads a key from the terminal without echoing it.
func PromptForAPIKey(prompt string) (string, error) {
	fmt.Print(prompt)
	raw, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", err
	}
	fmt.Println()
	return strings.TrimSpace(string(raw)), nil
}
