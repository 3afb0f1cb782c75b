package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oukeidos/doctran/internal/auth"
)

type keysOptions struct {
	provider string
}

func newKeysCmd() *cobra.Command {
	opts := keysOptions{}
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage API keys in OS Keychain",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeysStatus(cmd, &opts)
		},
	}

	cmd.SetUsageTemplate(keysUsageTemplate)
	cmd.PersistentFlags().StringVar(&opts.provider, "provider", "gemini", "Provider to manage (gemini or openai)")

	cmd.AddCommand(
		newKeysSetupCmd(&opts),
		newKeysDeleteCmd(&opts),
		newKeysStatusCmd(&opts),
	)
	return cmd
}

func newKeysSetupCmd(opts *keysOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Save API key to keychain (prompt only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeysSetup(cmd, opts)
		},
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	return cmd
}

func newKeysDeleteCmd(opts *keysOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete key from keychain",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeysDelete(cmd, opts)
		},
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	return cmd
}

func newKeysStatusCmd(opts *keysOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show key status (default if no action given)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeysStatus(cmd, opts)
		},
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	return cmd
}

func validProvider(name string) (string, error) {
	name = strings.ToLower(name)
	if !auth.NeedsKey(name) {
		return "", fmt.Errorf("invalid provider. Must be 'gemini' or 'openai'")
	}
	return name, nil
}

func runKeysSetup(cmd *cobra.Command, opts *keysOptions) error {
	provider, err := validProvider(opts.provider)
	if err != nil {
		return err
	}

	name := "Gemini"
	if provider == "openai" {
		name = "OpenAI"
	}
	promptKey, err := promptForKey(fmt.Sprintf("%s API Key: ", name))
	if err != nil {
		return fmt.Errorf("error reading key: %w", err)
	}
	key := strings.TrimSpace(promptKey)
	if key == "" {
		return fmt.Errorf("API key is required for setup")
	}
	if err := auth.SaveKey(provider, key); err != nil {
		return fmt.Errorf("error saving key: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved %s API key to keychain.\n", provider)
	return nil
}

func runKeysDelete(cmd *cobra.Command, opts *keysOptions) error {
	provider, err := validProvider(opts.provider)
	if err != nil {
		return err
	}
	if err := auth.DeleteKey(provider); err != nil {
		return fmt.Errorf("error deleting key: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s API key from keychain.\n", provider)
	return nil
}

func runKeysStatus(cmd *cobra.Command, opts *keysOptions) error {
	provider, err := validProvider(opts.provider)
	if err != nil {
		return err
	}

	if hasKey(provider) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s API Key: Found (source=Keychain)\n", provider)
		return nil
	}
	envVar := strings.ToUpper(provider) + "_API_KEY"
	if os.Getenv(envVar) != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "%s API Key: Found (source=Environment Variable; disabled by default, use --allow-env)\n", provider)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s API Key: Not Found (keychain empty, env not set)\n", provider)
	return nil
}
